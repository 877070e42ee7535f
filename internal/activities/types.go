package activities

type ListSourcesInput struct {
	InputDir string `json:"input_dir"`
}

type ListSourcesOutput struct {
	Paths []string `json:"paths"`
}

type ComputeDocIDInput struct {
	Path string `json:"path"`
}

type ComputeDocIDOutput struct {
	DocID string `json:"doc_id"`
}

type UpdateDocumentStatusInput struct {
	DocID      string `json:"doc_id"`
	Filename   string `json:"filename"`
	Title      string `json:"title,omitempty"`
	SourceURL  string `json:"url,omitempty"`
	Status     string `json:"status"`
	ChunkCount int    `json:"chunk_count"`
	FailReason string `json:"fail_reason,omitempty"`
}

type ExtractTextInput struct {
	Path string `json:"path"`
}

type ExtractTextOutput struct {
	Text string `json:"text"`
}

type ChunkDocumentInput struct {
	DocID        string `json:"doc_id"`
	Path         string `json:"path"`
	Text         string `json:"text"`
	ChunkSize    int    `json:"chunk_size"`
	ChunkOverlap int    `json:"chunk_overlap"`
}

type ChunkItem struct {
	ChunkID    string `json:"chunk_id"`
	DocID      string `json:"doc_id"`
	ChunkIndex int    `json:"chunk_index"`
	Title      string `json:"title"`
	Section    string `json:"section"`
	Content    string `json:"content"`
	URL        string `json:"url,omitempty"`
}

type ChunkDocumentOutput struct {
	Title     string      `json:"title"`
	SourceURL string      `json:"url,omitempty"`
	Sections  []string    `json:"sections"`
	Chunks    []ChunkItem `json:"chunks"`
}

type UpsertChunksInput struct {
	DocID  string      `json:"doc_id"`
	Chunks []ChunkItem `json:"chunks"`
}

type WriteIngestSummaryInput struct {
	RunID   string         `json:"run_id"`
	Summary map[string]any `json:"summary"`
}

type WriteIngestSummaryOutput struct {
	Path string `json:"path"`
}
