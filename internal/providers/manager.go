package providers

import (
	"fmt"
	"strings"

	"medrag/internal/config"
)

// ProviderRef is one entry of the provider list, written "groq" or
// "groq:alias". The alias selects MEDRAG_<NAME>_KEY_<ALIAS> as the credential.
type ProviderRef struct {
	Name     string
	KeyAlias string
}

var knownProviders = map[string]bool{
	"groq":   true,
	"openai": true,
}

// ParseProviders reads a pipe-separated provider list. A blank list means no
// completion service is configured. Blank, unknown or alias-less "name:"
// entries are rejected.
func ParseProviders(raw string) ([]ProviderRef, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, "|")
	out := make([]ProviderRef, 0, len(parts))
	for i, p := range parts {
		name, alias, hasAlias := strings.Cut(strings.TrimSpace(p), ":")
		name = strings.ToLower(strings.TrimSpace(name))
		alias = strings.TrimSpace(alias)
		switch {
		case name == "":
			return nil, fmt.Errorf("provider entry %d is empty", i+1)
		case !knownProviders[name]:
			return nil, fmt.Errorf("unsupported provider: %s", name)
		case hasAlias && alias == "":
			return nil, fmt.Errorf("provider %s has an empty key alias", name)
		}
		out = append(out, ProviderRef{Name: name, KeyAlias: alias})
	}
	return out, nil
}

type NamedLLMProvider struct {
	Ref      ProviderRef
	Provider LLMProvider
}

type Manager struct {
	llmProviders []NamedLLMProvider
}

func NewManager(cfg config.Config) (*Manager, error) {
	refs, err := ParseProviders(cfg.LLMProviders)
	if err != nil {
		return nil, err
	}
	m := &Manager{}
	for _, ref := range refs {
		m.llmProviders = append(m.llmProviders, NamedLLMProvider{Ref: ref, Provider: buildProvider(ref, cfg)})
	}
	return m, nil
}

// Primary returns the first provider that holds a credential. ok is false
// when none does, and callers must then skip the completion service.
func (m *Manager) Primary() (p LLMProvider, ref ProviderRef, ok bool) {
	for _, np := range m.llmProviders {
		if c, isC := np.Provider.(Configured); isC && !c.Configured() {
			continue
		}
		return np.Provider, np.Ref, true
	}
	return nil, ProviderRef{}, false
}

func (m *Manager) LLMCount() int {
	return len(m.llmProviders)
}

func buildProvider(ref ProviderRef, cfg config.Config) LLMProvider {
	if ref.Name == "openai" {
		return NewOpenAIProvider(ref.KeyAlias, OpenAIOptions{Model: cfg.OpenAIModel, BaseURL: cfg.OpenAIBaseURL, Timeout: cfg.LLMTimeout()})
	}
	return NewGroqProvider(ref.KeyAlias, GroqOptions{Model: cfg.GroqModel, BaseURL: cfg.GroqBaseURL, Timeout: cfg.LLMTimeout()})
}
