package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"google.golang.org/genai"

	"channelscout/shared/config"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiProvider talks to the Gemini API. The genai client is created on
// first use because construction requires a key that may be absent.
type GeminiProvider struct {
	apiKey string
	model  string

	mu     sync.Mutex
	client *genai.Client
}

func NewGeminiProvider(cfg *config.AIConfig) *GeminiProvider {
	model := cfg.GeminiModel
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiProvider{
		apiKey: cfg.GeminiAPIKey,
		model:  model,
	}
}

func (p *GeminiProvider) Name() string { return "gemini" }

func (p *GeminiProvider) IsConfigured() bool { return p.apiKey != "" }

func (p *GeminiProvider) DefaultModel() string { return p.model }

func (p *GeminiProvider) getClient(ctx context.Context) (*genai.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		return p.client, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: p.apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	p.client = client
	return client, nil
}

func (p *GeminiProvider) Complete(ctx context.Context, messages []Message, opts *Options) (*Completion, error) {
	if !p.IsConfigured() {
		return nil, ErrNotConfigured
	}
	client, err := p.getClient(ctx)
	if err != nil {
		return nil, err
	}
	resolved := opts.withDefaults()

	genConfig := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(resolved.Temperature)),
		TopP:            genai.Ptr(float32(resolved.TopP)),
		MaxOutputTokens: int32(resolved.MaxTokens),
	}
	if len(resolved.Stop) > 0 {
		genConfig.StopSequences = resolved.Stop
	}

	var contents []*genai.Content
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			// Gemini takes the priming instruction out-of-band.
			if genConfig.SystemInstruction == nil {
				genConfig.SystemInstruction = genai.NewContentFromText(m.Content, genai.RoleUser)
			} else {
				contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
			}
		case RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}

	result, err := client.Models.GenerateContent(ctx, p.model, contents, genConfig)
	if err != nil {
		var apierr genai.APIError
		if errors.As(err, &apierr) {
			return nil, &ProviderError{Provider: p.Name(), StatusCode: apierr.Code, Body: apierr.Message}
		}
		return nil, err
	}
	if len(result.Candidates) == 0 {
		return nil, ErrEmptyResponse
	}

	completion := &Completion{
		Content:  result.Text(),
		Model:    p.model,
		Provider: p.Name(),
	}
	if meta := result.UsageMetadata; meta != nil {
		completion.Usage = &Usage{
			PromptTokens:     int(meta.PromptTokenCount),
			CompletionTokens: int(meta.CandidatesTokenCount),
			TotalTokens:      int(meta.TotalTokenCount),
		}
	}
	return completion, nil
}
