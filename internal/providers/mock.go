package providers

import (
	"context"
	"strings"
	"sync"
)

// MockProvider is a deterministic test double. It cannot be selected through
// the provider list. A non-nil Err is returned from every call.
type MockProvider struct {
	mu    sync.Mutex
	Text  string
	Err   error
	Calls []GenerateRequest
}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) Configured() bool {
	return true
}

func (m *MockProvider) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, ProviderInfo, error) {
	_ = ctx
	m.mu.Lock()
	m.Calls = append(m.Calls, req)
	text, err := m.Text, m.Err
	m.mu.Unlock()

	info := ProviderInfo{Name: "mock", Model: "mock-llm-v1", Key: "mock"}
	if err != nil {
		return GenerateResponse{}, info, err
	}
	if text == "" {
		text = mockAnswer(req)
	}
	return GenerateResponse{Text: text, StatusCode: 200}, info, nil
}

func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

func mockAnswer(req GenerateRequest) string {
	b := strings.Builder{}
	b.WriteString("This is a deterministic mock answer assembled from the retrieved medical passages. ")
	b.WriteString("It restates the question, summarizes what the sources say, and reminds the reader that ")
	b.WriteString("only a qualified clinician can give advice for an individual situation. ")
	b.WriteString("The retrieved material covers the condition in general terms, and the details ")
	b.WriteString("always vary from one patient to the next.\n\n")
	for _, c := range req.Context {
		first, _, _ := strings.Cut(c, "\n")
		b.WriteString("- ")
		b.WriteString(first)
		b.WriteString("\n")
	}
	return b.String()
}
