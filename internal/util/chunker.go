package util

import (
	"strings"
	"unicode"
)

// ChunkText splits text into windows of at most chunkSize runes that overlap
// by roughly overlap runes. A window that would cut a word is pulled back to
// the last sentence end, or failing that the last space, in its second half.
func ChunkText(text string, chunkSize, overlap int) []string {
	if chunkSize <= 0 {
		chunkSize = 1200
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}
	runes := []rune(text)
	out := make([]string, 0, len(runes)/chunkSize+1)
	for start := 0; start < len(runes); {
		end := min(start+chunkSize, len(runes))
		if end < len(runes) {
			end = breakPoint(runes, start, end)
		}
		if part := strings.TrimSpace(string(runes[start:end])); part != "" {
			out = append(out, part)
		}
		if end == len(runes) {
			break
		}
		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return out
}

func breakPoint(runes []rune, start, end int) int {
	if !unicode.IsSpace(runes[end]) && !unicode.IsSpace(runes[end-1]) {
		floor := start + (end-start)/2
		space := -1
		for i := end - 1; i > floor; i-- {
			if !unicode.IsSpace(runes[i]) {
				continue
			}
			if space < 0 {
				space = i
			}
			if p := runes[i-1]; p == '.' || p == '!' || p == '?' {
				return i
			}
		}
		if space > 0 {
			return space
		}
	}
	return end
}
