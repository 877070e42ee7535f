package activities

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"medrag/internal/config"
	"medrag/internal/models"
	"medrag/internal/storage"

	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"
)

type recordingStore struct {
	docs    []models.Document
	chunks  []storage.ChunkRecord
	keepDoc string
	keep    int
}

func (s *recordingStore) UpsertDocument(_ context.Context, d models.Document) error {
	s.docs = append(s.docs, d)
	return nil
}

func (s *recordingStore) UpsertChunks(_ context.Context, chunks []storage.ChunkRecord) error {
	s.chunks = append(s.chunks, chunks...)
	return nil
}

func (s *recordingStore) DeleteByDoc(_ context.Context, docID string, keep int) error {
	s.keepDoc, s.keep = docID, keep
	return nil
}

func newTestActivities(t *testing.T) (*Activities, *recordingStore) {
	t.Helper()
	store := &recordingStore{}
	cfg := config.Config{ChunkSize: 400, ChunkOverlap: 40, DataOutRoot: t.TempDir()}
	return New(cfg, store, store), store
}

func TestChunkDocumentActivity(t *testing.T) {
	a, _ := newTestActivities(t)
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestActivityEnvironment()
	env.RegisterActivity(a.ChunkDocumentActivity)

	val, err := env.ExecuteActivity(a.ChunkDocumentActivity, ChunkDocumentInput{
		DocID: "doc1",
		Path:  "/in/asthma.md",
		Text:  "# Asthma\n\nAsthma narrows the airways.\n\n## Treatment\nInhaled corticosteroids reduce inflammation.",
	})
	require.NoError(t, err)
	var out ChunkDocumentOutput
	require.NoError(t, val.Get(&out))
	require.Equal(t, "Asthma", out.Title)
	require.Equal(t, []string{"Overview", "Treatment"}, out.Sections)
	require.Len(t, out.Chunks, 2)
	require.Equal(t, "Treatment", out.Chunks[1].Section)
	require.Equal(t, 1, out.Chunks[1].ChunkIndex)
}

func TestExtractTextActivityNoTextIsNonRetryable(t *testing.T) {
	a, _ := newTestActivities(t)
	path := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o644))

	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestActivityEnvironment()
	env.RegisterActivity(a.ExtractTextActivity)
	_, err := env.ExecuteActivity(a.ExtractTextActivity, ExtractTextInput{Path: path})
	require.Error(t, err)

	var appErr *temporal.ApplicationError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, ErrTypeNoText, appErr.Type())
	require.True(t, appErr.NonRetryable())
}

func TestUpsertChunksActivityTrimsStaleRows(t *testing.T) {
	a, store := newTestActivities(t)
	err := a.UpsertChunksActivity(context.Background(), UpsertChunksInput{
		DocID: "doc1",
		Chunks: []ChunkItem{
			{ChunkID: "c0", DocID: "doc1", ChunkIndex: 0, Title: "Asthma", Section: "Overview", Content: "a", URL: "https://x"},
			{ChunkID: "c1", DocID: "doc1", ChunkIndex: 1, Title: "Asthma", Section: "Treatment", Content: "b"},
		},
	})
	require.NoError(t, err)
	require.Len(t, store.chunks, 2)
	require.Equal(t, "https://x", store.chunks[0].SourceURL)
	require.Equal(t, "doc1", store.keepDoc)
	require.Equal(t, 2, store.keep)
}

func TestWriteIngestSummaryActivity(t *testing.T) {
	a, _ := newTestActivities(t)
	out, err := a.WriteIngestSummaryActivity(context.Background(), WriteIngestSummaryInput{
		RunID:   "run-7",
		Summary: map[string]any{"total": 2},
	})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(a.cfg.DataOutRoot, "runs", "run-7", "ingest_summary.json"), out.Path)
	_, err = os.Stat(out.Path)
	require.NoError(t, err)
}
