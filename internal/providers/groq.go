package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const defaultGroqBaseURL = "https://api.groq.com/openai/v1"

type GroqOptions struct {
	Model   string
	BaseURL string
	Timeout time.Duration
}

// GroqProvider talks to Groq's OpenAI-compatible chat endpoint over plain HTTP.
type GroqProvider struct {
	keyName string
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

func NewGroqProvider(keyName string, opts GroqOptions) *GroqProvider {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "llama-3.1-8b-instant"
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultGroqBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 35 * time.Second
	}
	return &GroqProvider{
		keyName: keyName,
		apiKey:  resolveGroqKey(keyName),
		model:   model,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (g *GroqProvider) Configured() bool {
	return g.apiKey != ""
}

func (g *GroqProvider) info() ProviderInfo {
	return ProviderInfo{Name: "groq", Key: g.keyName, Model: g.model}
}

func (g *GroqProvider) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, ProviderInfo, error) {
	if g.apiKey == "" {
		return GenerateResponse{}, g.info(), fmt.Errorf("groq alias %q: %w", g.keyName, ErrMissingKey)
	}
	messages := make([]map[string]string, 0, 2)
	if req.System != "" {
		messages = append(messages, map[string]string{"role": "system", "content": req.System})
	}
	messages = append(messages, map[string]string{"role": "user", "content": userContent(req)})
	body := map[string]any{
		"model":    g.model,
		"messages": messages,
	}
	if req.Temperature > 0 {
		body["temperature"] = req.Temperature
	}
	if req.MaxTokens > 0 {
		body["max_tokens"] = req.MaxTokens
	}
	if req.TopP > 0 {
		body["top_p"] = req.TopP
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return GenerateResponse{}, g.info(), fmt.Errorf("encode groq request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return GenerateResponse{}, g.info(), fmt.Errorf("build groq request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := g.client.Do(httpReq)
	if err != nil {
		return GenerateResponse{}, g.info(), fmt.Errorf("groq generate request failed: %w", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return GenerateResponse{StatusCode: resp.StatusCode}, g.info(), &StatusError{Provider: "groq", StatusCode: resp.StatusCode, Body: string(raw)}
	}
	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return GenerateResponse{StatusCode: resp.StatusCode}, g.info(), fmt.Errorf("decode groq response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return GenerateResponse{StatusCode: resp.StatusCode}, g.info(), fmt.Errorf("groq returned empty choices")
	}
	return GenerateResponse{Text: parsed.Choices[0].Message.Content, StatusCode: resp.StatusCode}, g.info(), nil
}

func resolveGroqKey(alias string) string {
	if alias != "" {
		if v := os.Getenv("MEDRAG_GROQ_KEY_" + strings.ToUpper(alias)); v != "" {
			return v
		}
	}
	return os.Getenv("GROQ_API_KEY")
}
