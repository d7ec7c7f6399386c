package llm

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"channelscout/shared/config"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIProvider talks to the OpenAI chat-completions API.
type OpenAIProvider struct {
	apiKey string
	model  string
	client openai.Client
}

func NewOpenAIProvider(cfg *config.AIConfig) *OpenAIProvider {
	model := cfg.OpenAIModel
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIProvider{
		apiKey: cfg.OpenAIAPIKey,
		model:  model,
		client: openai.NewClient(option.WithAPIKey(cfg.OpenAIAPIKey)),
	}
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) IsConfigured() bool { return p.apiKey != "" }

func (p *OpenAIProvider) DefaultModel() string { return p.model }

func (p *OpenAIProvider) Complete(ctx context.Context, messages []Message, opts *Options) (*Completion, error) {
	if !p.IsConfigured() {
		return nil, ErrNotConfigured
	}
	resolved := opts.withDefaults()

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(p.model),
		Messages:    toOpenAIMessages(messages),
		Temperature: openai.Float(resolved.Temperature),
		TopP:        openai.Float(resolved.TopP),
		MaxTokens:   openai.Int(int64(resolved.MaxTokens)),
	}
	if len(resolved.Stop) > 0 {
		params.Stop = openai.ChatCompletionNewParamsStopUnion{OfStringArray: resolved.Stop}
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apierr *openai.Error
		if errors.As(err, &apierr) {
			return nil, &ProviderError{Provider: p.Name(), StatusCode: apierr.StatusCode, Body: apierr.Message}
		}
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	return &Completion{
		Content:  resp.Choices[0].Message.Content,
		Model:    resp.Model,
		Provider: p.Name(),
		Usage: &Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}, nil
}

func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
