package storage

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"medrag/internal/metrics"
	"medrag/internal/models"
)

// These tests run against a disposable database named by
// MEDRAG_TEST_POSTGRES_URL and are skipped otherwise.
func testDB(t *testing.T) *DB {
	t.Helper()
	dsn := os.Getenv("MEDRAG_TEST_POSTGRES_URL")
	if dsn == "" {
		t.Skip("MEDRAG_TEST_POSTGRES_URL not set")
	}
	ctx := context.Background()
	db, err := NewDB(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.Migrate(ctx))
	return db
}

func TestCorpusScanPages(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	docID := "doc-" + uuid.NewString()
	require.NoError(t, NewDocumentRepo(db).UpsertDocument(ctx, models.Document{DocID: docID, Filename: "flu.md", Status: DocStatusProcessed}))
	t.Cleanup(func() { _, _ = db.Pool.Exec(ctx, `DELETE FROM documents WHERE doc_id=$1`, docID) })

	chunks := make([]ChunkRecord, 0, 5)
	for i := 0; i < 5; i++ {
		chunks = append(chunks, ChunkRecord{ChunkID: fmt.Sprintf("%s-%02d", docID, i), DocID: docID, ChunkIndex: i, Title: "Flu", Section: "overview", Content: "text"})
	}
	require.NoError(t, NewChunkRepo(db).UpsertChunks(ctx, chunks))

	repo := NewCorpusRepo(db)
	seen := map[string]bool{}
	token := ""
	for {
		page, next, err := repo.ScanPage(ctx, token, 2)
		require.NoError(t, err)
		for _, it := range page {
			require.False(t, seen[it.ChunkID], "duplicate %s", it.ChunkID)
			seen[it.ChunkID] = true
		}
		if next == "" {
			break
		}
		token = next
	}
	for _, c := range chunks {
		require.True(t, seen[c.ChunkID])
	}
}

func TestCacheRepoExpiry(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewCacheRepo(db)
	hash := uuid.NewString()

	require.NoError(t, repo.Set(ctx, hash, "q", []byte(`{"query":"q"}`), time.Now().Add(time.Minute)))
	got, ok, err := repo.Get(ctx, hash)
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `{"query":"q"}`, string(got))

	require.NoError(t, repo.Set(ctx, hash, "q", []byte(`{"query":"q"}`), time.Now().Add(-time.Minute)))
	_, ok, err = repo.Get(ctx, hash)
	require.NoError(t, err)
	require.False(t, ok)

	n, err := repo.DeleteExpired(ctx)
	require.NoError(t, err)
	require.GreaterOrEqual(t, n, int64(1))
}

func TestMetricsAndAuditInserts(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	data := []metrics.Datum{
		{Name: "ResultsFound", Value: 2, Unit: metrics.UnitCount, Timestamp: time.Now()},
		{Name: "QueryByIntent", Value: 1, Unit: metrics.UnitCount, Timestamp: time.Now(), Dimensions: []metrics.Dimension{{Name: "Intent", Value: "Treatment"}}},
	}
	require.NoError(t, NewMetricsRepo(db).PutMetricData(ctx, metrics.DefaultNamespace, data))
	require.NoError(t, NewLLMAuditRepo(db).Insert(ctx, models.LLMCall{Operation: "medical_answer", ProviderName: "groq", Model: "m", Status: "too_short"}))
}
