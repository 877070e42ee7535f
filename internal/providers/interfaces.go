package providers

import "context"

type ProviderInfo struct {
	Name  string `json:"name"`
	Model string `json:"model"`
	Key   string `json:"key"`
}

type GenerateRequest struct {
	Operation   string   `json:"operation"`
	System      string   `json:"system"`
	Prompt      string   `json:"prompt"`
	Context     []string `json:"context"`
	Temperature float64  `json:"temperature"`
	MaxTokens   int      `json:"max_tokens"`
	TopP        float64  `json:"top_p"`
}

type GenerateResponse struct {
	Text       string `json:"text"`
	StatusCode int    `json:"status_code"`
}

// LLMProvider issues one chat completion. Any non-200 upstream status is
// returned as an error.
type LLMProvider interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, ProviderInfo, error)
}

// Configured reports whether a provider holds a usable credential.
type Configured interface {
	Configured() bool
}

func userContent(req GenerateRequest) string {
	prompt := req.Prompt
	if len(req.Context) > 0 {
		prompt += "\n\nContext:\n"
		for i, c := range req.Context {
			if i > 0 {
				prompt += "\n\n"
			}
			prompt += c
		}
	}
	return prompt
}
