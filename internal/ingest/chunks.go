package ingest

import (
	"fmt"

	"medrag/internal/storage"
	"medrag/internal/util"
)

const (
	DefaultChunkSize    = 1500
	DefaultChunkOverlap = 150
)

// ChunkSections splits every section into overlapping windows. Chunk indexes
// run across the whole document so the IDs stay stable for unchanged input.
func ChunkSections(docID string, p Parsed, size, overlap int) []storage.ChunkRecord {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = DefaultChunkOverlap
	}
	out := make([]storage.ChunkRecord, 0)
	idx := 0
	for _, sec := range p.Sections {
		for _, part := range util.ChunkText(sec.Body, size, overlap) {
			part = util.SanitizeText(part)
			if part == "" {
				continue
			}
			hash := util.SHA256Hex([]byte(part))
			out = append(out, storage.ChunkRecord{
				ChunkID:    util.SHA256Hex([]byte(fmt.Sprintf("%s:%d:%s", docID, idx, hash))),
				DocID:      docID,
				ChunkIndex: idx,
				Title:      p.Title,
				Section:    sec.Name,
				Content:    part,
				SourceURL:  p.SourceURL,
			})
			idx++
		}
	}
	return out
}
