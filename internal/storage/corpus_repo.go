package storage

import (
	"context"
	"fmt"

	"medrag/internal/models"
)

// CorpusRepo reads the medical_chunks table as a paginated scan. The
// continuation token is the last chunk_id of the previous page.
type CorpusRepo struct {
	db *DB
}

func NewCorpusRepo(db *DB) *CorpusRepo {
	return &CorpusRepo{db: db}
}

// ScanPage returns up to limit items after token and the token for the next
// page, which is empty once the table is exhausted.
func (r *CorpusRepo) ScanPage(ctx context.Context, token string, limit int) ([]models.CorpusItem, string, error) {
	if limit <= 0 {
		limit = 1000
	}
	rows, err := r.db.Pool.Query(ctx, `
SELECT chunk_id, COALESCE(title,''), COALESCE(section,''), COALESCE(content,''), COALESCE(url,'')
FROM medical_chunks
WHERE chunk_id > $1
ORDER BY chunk_id ASC
LIMIT $2`, token, limit)
	if err != nil {
		return nil, "", fmt.Errorf("scan medical chunks: %w", err)
	}
	defer rows.Close()

	out := make([]models.CorpusItem, 0, limit)
	for rows.Next() {
		var it models.CorpusItem
		if err := rows.Scan(&it.ChunkID, &it.Title, &it.Section, &it.Content, &it.SourceURL); err != nil {
			return nil, "", fmt.Errorf("scan medical chunk: %w", err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("iterate medical chunks: %w", err)
	}
	next := ""
	if len(out) == limit {
		next = out[len(out)-1].ChunkID
	}
	return out, next, nil
}

func (r *CorpusRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM medical_chunks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count medical chunks: %w", err)
	}
	return n, nil
}
