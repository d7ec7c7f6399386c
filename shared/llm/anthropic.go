package llm

import (
	"context"
	"errors"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"channelscout/shared/config"
)

const defaultAnthropicModel = string(anthropic.ModelClaude3_5HaikuLatest)

// AnthropicProvider talks to the Anthropic messages API. System-role
// messages are lifted into the API's out-of-band system blocks.
type AnthropicProvider struct {
	apiKey string
	model  string
	client anthropic.Client
}

func NewAnthropicProvider(cfg *config.AIConfig) *AnthropicProvider {
	model := cfg.AnthropicModel
	if model == "" {
		model = defaultAnthropicModel
	}
	return &AnthropicProvider{
		apiKey: cfg.AnthropicAPIKey,
		model:  model,
		client: anthropic.NewClient(option.WithAPIKey(cfg.AnthropicAPIKey)),
	}
}

func (p *AnthropicProvider) Name() string { return "anthropic" }

func (p *AnthropicProvider) IsConfigured() bool { return p.apiKey != "" }

func (p *AnthropicProvider) DefaultModel() string { return p.model }

func (p *AnthropicProvider) Complete(ctx context.Context, messages []Message, opts *Options) (*Completion, error) {
	if !p.IsConfigured() {
		return nil, ErrNotConfigured
	}
	resolved := opts.withDefaults()

	var system []anthropic.TextBlockParam
	var turns []anthropic.MessageParam
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			system = append(system, anthropic.TextBlockParam{Text: m.Content})
		case RoleAssistant:
			turns = append(turns, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			turns = append(turns, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(p.model),
		MaxTokens:   int64(resolved.MaxTokens),
		Temperature: anthropic.Float(resolved.Temperature),
		TopP:        anthropic.Float(resolved.TopP),
		Messages:    turns,
	}
	if len(system) > 0 {
		params.System = system
	}
	if len(resolved.Stop) > 0 {
		params.StopSequences = resolved.Stop
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		var apierr *anthropic.Error
		if errors.As(err, &apierr) {
			return nil, &ProviderError{Provider: p.Name(), StatusCode: apierr.StatusCode, Body: apierr.Error()}
		}
		return nil, err
	}

	if len(resp.Content) == 0 {
		return nil, ErrEmptyResponse
	}

	return &Completion{
		Content:  resp.Content[0].Text,
		Model:    string(resp.Model),
		Provider: p.Name(),
		Usage: &Usage{
			PromptTokens:     int(resp.Usage.InputTokens),
			CompletionTokens: int(resp.Usage.OutputTokens),
			TotalTokens:      int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
		},
	}, nil
}
