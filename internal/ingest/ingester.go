package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"medrag/internal/logging"
	"medrag/internal/models"
	"medrag/internal/storage"
	"medrag/internal/util"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
)

// DocumentWriter persists per-document status.
type DocumentWriter interface {
	UpsertDocument(ctx context.Context, d models.Document) error
}

// ChunkWriter persists chunk rows for the corpus scan.
type ChunkWriter interface {
	UpsertChunks(ctx context.Context, chunks []storage.ChunkRecord) error
	DeleteByDoc(ctx context.Context, docID string, keep int) error
}

// Result is the outcome for one file.
type Result struct {
	Path       string `json:"path"`
	DocID      string `json:"doc_id,omitempty"`
	Status     string `json:"status"`
	Chunks     int    `json:"chunks"`
	FailReason string `json:"fail_reason,omitempty"`
}

type Summary struct {
	RunID       string            `json:"run_id"`
	InputDir    string            `json:"input_dir"`
	Total       int               `json:"total"`
	Processed   int               `json:"processed"`
	Failed      int               `json:"failed"`
	Chunks      int               `json:"chunks"`
	PerDocument map[string]string `json:"per_document_status"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// Add folds one result into the summary.
func (s *Summary) Add(r Result) {
	if s.PerDocument == nil {
		s.PerDocument = map[string]string{}
	}
	s.PerDocument[filepath.Base(r.Path)] = r.Status
	if r.Status == storage.DocStatusProcessed {
		s.Processed++
		s.Chunks += r.Chunks
		return
	}
	s.Failed++
}

type Options struct {
	ChunkSize    int
	ChunkOverlap int
	Workers      int
	Logger       *slog.Logger
}

type Ingester struct {
	docs    DocumentWriter
	chunks  ChunkWriter
	size    int
	overlap int
	workers int
	logger  *slog.Logger
}

func New(docs DocumentWriter, chunks ChunkWriter, opts Options) (*Ingester, error) {
	if docs == nil || chunks == nil {
		return nil, errors.New("ingest: document and chunk writers are required")
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU() / 2
	}
	if workers < 1 {
		workers = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingester{
		docs:    docs,
		chunks:  chunks,
		size:    opts.ChunkSize,
		overlap: opts.ChunkOverlap,
		workers: workers,
		logger:  logger,
	}, nil
}

// IngestFile extracts, sections, chunks and stores one file. Failures are
// recorded on the document row and reported in the result, not returned.
func (in *Ingester) IngestFile(ctx context.Context, path string) Result {
	res := Result{Path: path, Status: storage.DocStatusFailed}
	docID, err := DocumentID(path)
	if err != nil {
		res.FailReason = err.Error()
		return res
	}
	res.DocID = docID
	doc := models.Document{DocID: docID, Filename: filepath.Base(path), Status: storage.DocStatusQueued}
	if err := in.docs.UpsertDocument(ctx, doc); err != nil {
		res.FailReason = err.Error()
		return res
	}

	records, parsed, err := in.prepare(path, docID)
	if err == nil {
		doc.Title = parsed.Title
		doc.SourceURL = parsed.SourceURL
		err = in.store(ctx, docID, records)
	}
	if err != nil {
		res.FailReason = err.Error()
		doc.Status = storage.DocStatusFailed
		doc.FailReason = res.FailReason
		if uerr := in.docs.UpsertDocument(ctx, doc); uerr != nil {
			in.logger.WarnContext(ctx, "document status update failed", "doc_id", docID, "error", uerr)
		}
		return res
	}

	doc.Status = storage.DocStatusProcessed
	doc.ChunkCount = len(records)
	if err := in.docs.UpsertDocument(ctx, doc); err != nil {
		res.FailReason = err.Error()
		return res
	}
	res.Status = storage.DocStatusProcessed
	res.Chunks = len(records)
	return res
}

func (in *Ingester) prepare(path, docID string) ([]storage.ChunkRecord, Parsed, error) {
	text, err := ExtractText(path)
	if err != nil {
		return nil, Parsed{}, err
	}
	parsed := Parse(path, text)
	records := ChunkSections(docID, parsed, in.size, in.overlap)
	if len(records) == 0 {
		return nil, parsed, util.ErrNoExtractableText
	}
	return records, parsed, nil
}

func (in *Ingester) store(ctx context.Context, docID string, records []storage.ChunkRecord) error {
	if err := in.chunks.UpsertChunks(ctx, records); err != nil {
		return err
	}
	return in.chunks.DeleteByDoc(ctx, docID, len(records))
}

// IngestDir runs IngestFile over every supported file in dir on a bounded
// pool and returns the aggregated summary.
func (in *Ingester) IngestDir(ctx context.Context, dir string) (Summary, error) {
	runID := uuid.NewString()
	ctx = logging.WithLogFields(ctx, logging.LogFields{RunID: runID, Component: "ingest"})
	summary := Summary{RunID: runID, InputDir: dir, PerDocument: map[string]string{}}

	paths, err := ListSources(dir)
	if err != nil {
		return summary, err
	}
	summary.Total = len(paths)

	pool, err := ants.NewPool(in.workers)
	if err != nil {
		return summary, fmt.Errorf("create ingest pool: %w", err)
	}
	defer pool.Release()

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, path := range paths {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			r := in.IngestFile(ctx, path)
			if r.Status != storage.DocStatusProcessed {
				in.logger.WarnContext(ctx, "document ingest failed", "path", path, "reason", r.FailReason)
			}
			mu.Lock()
			summary.Add(r)
			mu.Unlock()
		}); err != nil {
			wg.Done()
			mu.Lock()
			summary.Add(Result{Path: path, Status: storage.DocStatusFailed, FailReason: err.Error()})
			mu.Unlock()
		}
	}
	wg.Wait()
	summary.GeneratedAt = time.Now().UTC()
	in.logger.InfoContext(ctx, "ingest finished", "total", summary.Total, "processed", summary.Processed, "failed", summary.Failed)
	return summary, ctx.Err()
}

// WriteSummary stores the run summary under outRoot/runs/<run_id>/ingest_summary.json.
func WriteSummary(outRoot string, s Summary) (string, error) {
	path := filepath.Join(outRoot, "runs", s.RunID, "ingest_summary.json")
	if err := util.WriteJSONAtomic(path, s); err != nil {
		return "", err
	}
	return path, nil
}
