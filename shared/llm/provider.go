// Package llm is a uniform capability boundary over heterogeneous LLM
// backends. Callers hand it an ordered message sequence and sampling options
// and get back the raw text of the model's first choice; everything
// vendor-specific stays behind the Provider interface.
package llm

import "context"

// Role identifies who authored a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a conversation. Messages are transient: built per
// request, passed by value, never persisted.
type Message struct {
	Role    Role
	Content string
}

// Options are the recognized sampling parameters for a completion call.
// Zero-valued fields take the documented defaults.
type Options struct {
	Temperature float64  // default 0.7
	MaxTokens   int      // default 4000
	TopP        float64  // default 1.0
	Stop        []string // optional stop sequences
}

const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 4000
	defaultTopP        = 1.0
)

// withDefaults resolves nil and zero-valued options to the defaults.
func (o *Options) withDefaults() Options {
	resolved := Options{
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
		TopP:        defaultTopP,
	}
	if o == nil {
		return resolved
	}
	if o.Temperature != 0 {
		resolved.Temperature = o.Temperature
	}
	if o.MaxTokens != 0 {
		resolved.MaxTokens = o.MaxTokens
	}
	if o.TopP != 0 {
		resolved.TopP = o.TopP
	}
	resolved.Stop = o.Stop
	return resolved
}

// Usage reports token counts when the backend exposes them.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Completion is the provider-neutral result of one completion call.
// Content is the untouched text of the model's first returned choice.
type Completion struct {
	Content  string `json:"content"`
	Model    string `json:"model"`
	Provider string `json:"provider"`
	Usage    *Usage `json:"usage,omitempty"`
}

// Provider is one LLM backend. Implementations perform exactly one network
// call per Complete invocation, hold no state beyond their credentials, and
// never retry.
type Provider interface {
	// Name identifies the backend (e.g. "openai").
	Name() string

	// IsConfigured reports whether credentials are present. Complete fails
	// with ErrNotConfigured when they are not.
	IsConfigured() bool

	// DefaultModel is the model used when the caller does not pick one.
	DefaultModel() string

	// Complete sends the message sequence to the backend. A leading
	// system-role message, when present, is injected as the backend's
	// priming instruction. Fails with *ProviderError on an upstream
	// non-success status and ErrEmptyResponse when the call succeeds but
	// returns zero choices.
	Complete(ctx context.Context, messages []Message, opts *Options) (*Completion, error)
}
