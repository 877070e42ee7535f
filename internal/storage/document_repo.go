package storage

import (
	"context"
	"fmt"

	"medrag/internal/models"
)

const (
	DocStatusQueued    = "queued"
	DocStatusProcessed = "processed"
	DocStatusFailed    = "failed"
)

type DocumentRepo struct {
	db *DB
}

func NewDocumentRepo(db *DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

func (r *DocumentRepo) UpsertDocument(ctx context.Context, d models.Document) error {
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO documents (doc_id, filename, title, url, status, chunk_count, fail_reason)
VALUES ($1, $2, NULLIF($3,''), NULLIF($4,''), $5, $6, NULLIF($7,''))
ON CONFLICT (doc_id)
DO UPDATE SET
  filename = EXCLUDED.filename,
  title = COALESCE(EXCLUDED.title, documents.title),
  url = COALESCE(EXCLUDED.url, documents.url),
  status = EXCLUDED.status,
  chunk_count = EXCLUDED.chunk_count,
  fail_reason = EXCLUDED.fail_reason,
  updated_at = NOW()`,
		d.DocID, d.Filename, d.Title, d.SourceURL, d.Status, d.ChunkCount, d.FailReason,
	)
	if err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	return nil
}

func (r *DocumentRepo) ListDocuments(ctx context.Context, status string) ([]models.Document, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT doc_id, filename, COALESCE(title,''), COALESCE(url,''), status, chunk_count,
       COALESCE(fail_reason,''), created_at, updated_at
FROM documents
WHERE $1 = '' OR status = $1
ORDER BY updated_at DESC`, status)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	out := make([]models.Document, 0)
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(&d.DocID, &d.Filename, &d.Title, &d.SourceURL, &d.Status, &d.ChunkCount, &d.FailReason, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return out, nil
}
