// Package ai owns the ingest-to-profile pipeline: it renders bounded,
// deterministic prompts from activity summaries, sends them through the llm
// provider boundary, and parses the model's free-form reply back into
// validated domain values the rest of the application can trust.
package ai

import (
	"context"
	"errors"
	"fmt"

	"channelscout/internal/models"
	"channelscout/shared/llm"
)

// TasteAnalysisInput is the raw activity a taste analysis runs on.
type TasteAnalysisInput struct {
	Subscriptions []models.ChannelSummary
	LikedVideos   []models.VideoSummary
}

// RecommendationsInput is a normalized taste profile plus the channel titles
// to exclude from recommendations.
type RecommendationsInput struct {
	Categories            []models.TasteCategory
	AnalysisSummary       string
	ExistingSubscriptions []string
}

// Analyzer orchestrates the pipeline end to end. It is the only component
// that signals failure to the caller; the provider knows nothing about
// prompts or parsing.
type Analyzer struct {
	provider llm.Provider
}

func NewAnalyzer(provider llm.Provider) *Analyzer {
	return &Analyzer{provider: provider}
}

// AnalyzeTaste derives a weighted taste profile from the user's activity.
// Fails with ErrNoData before any network call when there is no activity.
func (a *Analyzer) AnalyzeTaste(ctx context.Context, input TasteAnalysisInput) (*models.TasteAnalysisResult, error) {
	if len(input.Subscriptions) == 0 && len(input.LikedVideos) == 0 {
		return nil, ErrNoData
	}

	prompt := BuildTasteAnalysisPrompt(input.Subscriptions, input.LikedVideos)
	completion, err := a.provider.Complete(ctx,
		[]llm.Message{{Role: llm.RoleUser, Content: prompt}},
		&llm.Options{Temperature: 0.7, MaxTokens: 2000},
	)
	if err != nil {
		return nil, classify(err, "failed to analyze taste")
	}

	result, err := ParseTasteAnalysisResponse(completion.Content)
	if err != nil {
		return nil, classify(err, "failed to analyze taste")
	}
	return result, nil
}

// GenerateRecommendations produces a recommendation batch from a taste
// profile. The higher temperature deliberately trades determinism for
// recommendation variety.
func (a *Analyzer) GenerateRecommendations(ctx context.Context, input RecommendationsInput) ([]models.RecommendationItem, error) {
	if len(input.Categories) == 0 {
		return nil, ErrNoTasteProfile
	}

	prompt := BuildRecommendationPrompt(input.Categories, input.AnalysisSummary, input.ExistingSubscriptions)
	completion, err := a.provider.Complete(ctx,
		[]llm.Message{{Role: llm.RoleUser, Content: prompt}},
		&llm.Options{Temperature: 0.8, MaxTokens: 3000},
	)
	if err != nil {
		return nil, classify(err, "failed to generate recommendations")
	}

	items, err := ParseRecommendationsResponse(completion.Content)
	if err != nil {
		return nil, classify(err, "failed to generate recommendations")
	}
	return items, nil
}

// classify passes recognized failure classifications through unchanged and
// wraps anything else behind a generic caller-visible message, keeping the
// cause in the chain for logs.
func classify(err error, message string) error {
	if isClassified(err) {
		return err
	}
	return fmt.Errorf("%s: %w", message, err)
}

func isClassified(err error) bool {
	if errors.Is(err, llm.ErrNotConfigured) ||
		errors.Is(err, llm.ErrEmptyResponse) ||
		errors.Is(err, ErrNoData) ||
		errors.Is(err, ErrNoTasteProfile) ||
		errors.Is(err, ErrNoValidRecommendations) {
		return true
	}
	var providerErr *llm.ProviderError
	var malformedErr *MalformedResponseError
	var shapeErr *ShapeError
	return errors.As(err, &providerErr) || errors.As(err, &malformedErr) || errors.As(err, &shapeErr)
}
