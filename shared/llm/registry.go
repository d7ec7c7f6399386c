package llm

import (
	"log"
	"sync"

	"channelscout/shared/config"
)

// Registry selects the process-lifetime provider: candidates are tried in a
// fixed priority order and the first whose credentials are present wins.
// The pick is cached behind the mutex, so concurrent first access is safe.
type Registry struct {
	mu         sync.Mutex
	candidates []Provider
	active     Provider
}

// NewRegistry builds a registry over the given candidates in priority order.
func NewRegistry(candidates ...Provider) *Registry {
	return &Registry{candidates: candidates}
}

// NewRegistryFromConfig wires the standard priority list:
// OpenAI, then Anthropic, then Gemini.
func NewRegistryFromConfig(cfg *config.AIConfig) *Registry {
	return NewRegistry(
		NewOpenAIProvider(cfg),
		NewAnthropicProvider(cfg),
		NewGeminiProvider(cfg),
	)
}

// Active returns the cached provider, selecting it on first call.
// Fails with ErrNotConfigured when no candidate has credentials.
func (r *Registry) Active() (Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active != nil {
		return r.active, nil
	}
	for _, candidate := range r.candidates {
		if candidate.IsConfigured() {
			log.Printf("Using LLM provider %s (model %s)", candidate.Name(), candidate.DefaultModel())
			r.active = candidate
			return candidate, nil
		}
	}
	return nil, ErrNotConfigured
}
