package llm

import (
	"testing"

	"github.com/anthropics/anthropic-sdk-go"

	"channelscout/shared/config"
)

func TestOptionsWithDefaults(t *testing.T) {
	tests := []struct {
		name     string
		input    *Options
		expected Options
	}{
		{
			name:     "Nil options",
			input:    nil,
			expected: Options{Temperature: 0.7, MaxTokens: 4000, TopP: 1.0},
		},
		{
			name:     "Zero values",
			input:    &Options{},
			expected: Options{Temperature: 0.7, MaxTokens: 4000, TopP: 1.0},
		},
		{
			name:     "Explicit values kept",
			input:    &Options{Temperature: 0.8, MaxTokens: 3000, TopP: 0.9, Stop: []string{"END"}},
			expected: Options{Temperature: 0.8, MaxTokens: 3000, TopP: 0.9, Stop: []string{"END"}},
		},
		{
			name:     "Partial overrides",
			input:    &Options{MaxTokens: 2000},
			expected: Options{Temperature: 0.7, MaxTokens: 2000, TopP: 1.0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.input.withDefaults()
			if got.Temperature != tt.expected.Temperature ||
				got.MaxTokens != tt.expected.MaxTokens ||
				got.TopP != tt.expected.TopP ||
				len(got.Stop) != len(tt.expected.Stop) {
				t.Errorf("withDefaults() = %+v, want %+v", got, tt.expected)
			}
		})
	}
}

func TestProvidersReportConfiguration(t *testing.T) {
	empty := &config.AIConfig{}
	full := &config.AIConfig{
		OpenAIAPIKey:    "sk-test",
		AnthropicAPIKey: "sk-ant-test",
		GeminiAPIKey:    "AIza-test",
	}

	tests := []struct {
		name     string
		provider Provider
		want     bool
	}{
		{name: "OpenAI without key", provider: NewOpenAIProvider(empty), want: false},
		{name: "OpenAI with key", provider: NewOpenAIProvider(full), want: true},
		{name: "Anthropic without key", provider: NewAnthropicProvider(empty), want: false},
		{name: "Anthropic with key", provider: NewAnthropicProvider(full), want: true},
		{name: "Gemini without key", provider: NewGeminiProvider(empty), want: false},
		{name: "Gemini with key", provider: NewGeminiProvider(full), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.provider.IsConfigured(); got != tt.want {
				t.Errorf("IsConfigured() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProviderModelOverrides(t *testing.T) {
	cfg := &config.AIConfig{
		OpenAIAPIKey: "sk-test",
		OpenAIModel:  "gpt-4o",
	}

	if got := NewOpenAIProvider(cfg).DefaultModel(); got != "gpt-4o" {
		t.Errorf("DefaultModel() = %q, want override gpt-4o", got)
	}
	if got := NewOpenAIProvider(&config.AIConfig{}).DefaultModel(); got != defaultOpenAIModel {
		t.Errorf("DefaultModel() = %q, want %q", got, defaultOpenAIModel)
	}
}

func TestAnthropicDefaultModelIsSDKConstant(t *testing.T) {
	// The default must be a model the pinned SDK actually defines.
	want := string(anthropic.ModelClaude3_5HaikuLatest)
	if got := NewAnthropicProvider(&config.AIConfig{}).DefaultModel(); got != want {
		t.Errorf("DefaultModel() = %q, want %q", got, want)
	}

	cfg := &config.AIConfig{AnthropicModel: "claude-sonnet-4-5"}
	if got := NewAnthropicProvider(cfg).DefaultModel(); got != "claude-sonnet-4-5" {
		t.Errorf("DefaultModel() = %q, want override claude-sonnet-4-5", got)
	}
}
