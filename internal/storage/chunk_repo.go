package storage

import (
	"context"
	"fmt"
)

type ChunkRecord struct {
	ChunkID    string
	DocID      string
	ChunkIndex int
	Title      string
	Section    string
	Content    string
	SourceURL  string
}

type ChunkRepo struct {
	db *DB
}

func NewChunkRepo(db *DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

func (r *ChunkRepo) UpsertChunks(ctx context.Context, chunks []ChunkRecord) error {
	if len(chunks) == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx upsert chunks: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	for _, c := range chunks {
		_, err := tx.Exec(ctx, `
INSERT INTO medical_chunks (chunk_id, doc_id, chunk_index, title, section, content, url)
VALUES ($1, NULLIF($2,''), $3, $4, $5, $6, NULLIF($7,''))
ON CONFLICT (chunk_id)
DO UPDATE SET
  title = EXCLUDED.title,
  section = EXCLUDED.section,
  content = EXCLUDED.content,
  url = COALESCE(EXCLUDED.url, medical_chunks.url),
  updated_at = NOW()`,
			c.ChunkID, c.DocID, c.ChunkIndex, c.Title, c.Section, c.Content, c.SourceURL,
		)
		if err != nil {
			return fmt.Errorf("upsert chunk %s: %w", c.ChunkID, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit chunks tx: %w", err)
	}
	return nil
}

// DeleteByDoc removes chunks left over from an earlier, longer version of a document.
func (r *ChunkRepo) DeleteByDoc(ctx context.Context, docID string, keep int) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM medical_chunks WHERE doc_id=$1 AND chunk_index >= $2`, docID, keep)
	if err != nil {
		return fmt.Errorf("delete stale chunks: %w", err)
	}
	return nil
}
