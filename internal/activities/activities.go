package activities

import (
	"context"
	"errors"
	"path/filepath"

	"medrag/internal/config"
	"medrag/internal/ingest"
	"medrag/internal/models"
	"medrag/internal/storage"
	"medrag/internal/util"

	"go.temporal.io/sdk/temporal"
)

// Application error types the ingest workflows branch on.
const (
	ErrTypeNoText      = "NoExtractableText"
	ErrTypeUnsupported = "UnsupportedFormat"
)

type Activities struct {
	cfg    config.Config
	docs   ingest.DocumentWriter
	chunks ingest.ChunkWriter
}

func New(cfg config.Config, docs ingest.DocumentWriter, chunks ingest.ChunkWriter) *Activities {
	return &Activities{cfg: cfg, docs: docs, chunks: chunks}
}

func (a *Activities) ListSourcesActivity(ctx context.Context, in ListSourcesInput) (ListSourcesOutput, error) {
	_ = ctx
	paths, err := ingest.ListSources(in.InputDir)
	if err != nil {
		return ListSourcesOutput{}, err
	}
	return ListSourcesOutput{Paths: paths}, nil
}

func (a *Activities) ComputeDocIDActivity(ctx context.Context, in ComputeDocIDInput) (ComputeDocIDOutput, error) {
	_ = ctx
	id, err := ingest.DocumentID(in.Path)
	if err != nil {
		return ComputeDocIDOutput{}, err
	}
	return ComputeDocIDOutput{DocID: id}, nil
}

func (a *Activities) UpdateDocumentStatusActivity(ctx context.Context, in UpdateDocumentStatusInput) error {
	return a.docs.UpsertDocument(ctx, models.Document{
		DocID:      in.DocID,
		Filename:   in.Filename,
		Title:      in.Title,
		SourceURL:  in.SourceURL,
		Status:     in.Status,
		ChunkCount: in.ChunkCount,
		FailReason: in.FailReason,
	})
}

// ExtractTextActivity fails without retry when the file has no usable text.
func (a *Activities) ExtractTextActivity(ctx context.Context, in ExtractTextInput) (ExtractTextOutput, error) {
	_ = ctx
	text, err := ingest.ExtractText(in.Path)
	switch {
	case errors.Is(err, util.ErrNoExtractableText):
		return ExtractTextOutput{}, temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeNoText, err)
	case errors.Is(err, util.ErrUnsupportedFormat):
		return ExtractTextOutput{}, temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeUnsupported, err)
	case err != nil:
		return ExtractTextOutput{}, err
	}
	return ExtractTextOutput{Text: text}, nil
}

func (a *Activities) ChunkDocumentActivity(ctx context.Context, in ChunkDocumentInput) (ChunkDocumentOutput, error) {
	_ = ctx
	if in.ChunkSize <= 0 {
		in.ChunkSize = a.cfg.ChunkSize
	}
	if in.ChunkOverlap < 0 || in.ChunkOverlap >= in.ChunkSize {
		in.ChunkOverlap = a.cfg.ChunkOverlap
	}
	parsed := ingest.Parse(in.Path, in.Text)
	records := ingest.ChunkSections(in.DocID, parsed, in.ChunkSize, in.ChunkOverlap)
	if len(records) == 0 {
		return ChunkDocumentOutput{}, temporal.NewNonRetryableApplicationError(util.ErrNoExtractableText.Error(), ErrTypeNoText, util.ErrNoExtractableText)
	}
	out := ChunkDocumentOutput{
		Title:     parsed.Title,
		SourceURL: parsed.SourceURL,
		Sections:  make([]string, 0, len(parsed.Sections)),
		Chunks:    make([]ChunkItem, 0, len(records)),
	}
	for _, s := range parsed.Sections {
		out.Sections = append(out.Sections, s.Name)
	}
	for _, r := range records {
		out.Chunks = append(out.Chunks, ChunkItem{
			ChunkID:    r.ChunkID,
			DocID:      r.DocID,
			ChunkIndex: r.ChunkIndex,
			Title:      r.Title,
			Section:    r.Section,
			Content:    r.Content,
			URL:        r.SourceURL,
		})
	}
	return out, nil
}

// UpsertChunksActivity writes the chunks and drops rows beyond the new count.
func (a *Activities) UpsertChunksActivity(ctx context.Context, in UpsertChunksInput) error {
	records := make([]storage.ChunkRecord, 0, len(in.Chunks))
	for _, c := range in.Chunks {
		records = append(records, storage.ChunkRecord{
			ChunkID:    c.ChunkID,
			DocID:      c.DocID,
			ChunkIndex: c.ChunkIndex,
			Title:      c.Title,
			Section:    c.Section,
			Content:    c.Content,
			SourceURL:  c.URL,
		})
	}
	if err := a.chunks.UpsertChunks(ctx, records); err != nil {
		return err
	}
	return a.chunks.DeleteByDoc(ctx, in.DocID, len(records))
}

func (a *Activities) WriteIngestSummaryActivity(ctx context.Context, in WriteIngestSummaryInput) (WriteIngestSummaryOutput, error) {
	_ = ctx
	path := filepath.Join(a.cfg.DataOutRoot, "runs", in.RunID, "ingest_summary.json")
	if err := util.WriteJSONAtomic(path, in.Summary); err != nil {
		return WriteIngestSummaryOutput{}, err
	}
	return WriteIngestSummaryOutput{Path: path}, nil
}
