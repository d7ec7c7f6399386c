package ai

import (
	"encoding/json"
	"log"
	"strings"

	"channelscout/internal/models"
)

// stripCodeFence removes a single leading markdown fence (with optional
// language tag) and a single trailing fence. Best effort, not a markdown
// parser: text that does not start with a fence passes through untouched,
// and fences embedded mid-response are left alone.
func stripCodeFence(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[i+1:]
	} else {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
	}
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// ParseTasteAnalysisResponse turns raw model text into a validated,
// weight-normalized taste profile. Any malformed category fails the whole
// parse: a partially trusted weighted distribution is worse than none.
func ParseTasteAnalysisResponse(raw string) (*models.TasteAnalysisResult, error) {
	text := stripCodeFence(raw)

	var parsed any
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, &MalformedResponseError{Detail: err.Error(), Raw: text}
	}

	obj, ok := parsed.(map[string]any)
	if !ok {
		return nil, &ShapeError{Field: "response", Index: -1, Want: "a JSON object"}
	}
	rawCategories, ok := obj["categories"].([]any)
	if !ok {
		return nil, &ShapeError{Field: "categories", Index: -1, Want: "an array"}
	}
	summary, ok := obj["analysisSummary"].(string)
	if !ok {
		return nil, &ShapeError{Field: "analysisSummary", Index: -1, Want: "a string"}
	}

	categories := make([]models.TasteCategory, 0, len(rawCategories))
	var weightSum float64
	for i, rawCategory := range rawCategories {
		entry, ok := rawCategory.(map[string]any)
		if !ok {
			return nil, &ShapeError{Field: "categories", Index: i, Want: "an object"}
		}
		name, ok := entry["name"].(string)
		if !ok {
			return nil, &ShapeError{Field: "name", Index: i, Want: "a string"}
		}
		weight, ok := entry["weight"].(float64)
		if !ok {
			return nil, &ShapeError{Field: "weight", Index: i, Want: "a number"}
		}
		description, ok := entry["description"].(string)
		if !ok {
			return nil, &ShapeError{Field: "description", Index: i, Want: "a string"}
		}

		// Non-string subcategory entries are dropped, not an error.
		var subCategories []string
		if rawSubs, ok := entry["subCategories"].([]any); ok {
			for _, rawSub := range rawSubs {
				if sub, ok := rawSub.(string); ok {
					subCategories = append(subCategories, sub)
				}
			}
		}

		weight = clamp01(weight)
		weightSum += weight
		categories = append(categories, models.TasteCategory{
			Name:          name,
			Weight:        weight,
			Description:   description,
			SubCategories: subCategories,
		})
	}

	// Clamp first, normalize after: one wildly out-of-range weight must not
	// dominate beyond its clamped contribution. A zero sum is left alone.
	if weightSum != 0 {
		for i := range categories {
			categories[i].Weight /= weightSum
		}
	}

	return &models.TasteAnalysisResult{
		Categories:      categories,
		AnalysisSummary: summary,
	}, nil
}

// ParseRecommendationsResponse turns raw model text into a filtered,
// defaulted recommendation batch. Unlike taste analysis, malformed entries
// are skipped rather than failing the batch: a partial batch is still
// useful. Fails with ErrNoValidRecommendations when nothing survives.
func ParseRecommendationsResponse(raw string) ([]models.RecommendationItem, error) {
	text := stripCodeFence(raw)

	var parsed any
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, &MalformedResponseError{Detail: err.Error(), Raw: text}
	}

	obj, ok := parsed.(map[string]any)
	if !ok {
		return nil, &ShapeError{Field: "response", Index: -1, Want: "a JSON object"}
	}
	rawItems, ok := obj["recommendations"].([]any)
	if !ok {
		return nil, &ShapeError{Field: "recommendations", Index: -1, Want: "an array"}
	}

	items := make([]models.RecommendationItem, 0, len(rawItems))
	for i, rawItem := range rawItems {
		entry, ok := rawItem.(map[string]any)
		if !ok {
			log.Printf("Skipping recommendation %d: not an object", i)
			continue
		}
		channelTitle, ok := entry["channelTitle"].(string)
		if !ok || channelTitle == "" {
			log.Printf("Skipping recommendation %d: missing channelTitle", i)
			continue
		}
		reason, ok := entry["reason"].(string)
		if !ok || reason == "" {
			log.Printf("Skipping recommendation %d (%s): missing reason", i, channelTitle)
			continue
		}

		item := models.RecommendationItem{
			Type:            models.RecommendationChannel,
			ChannelTitle:    channelTitle,
			Reason:          reason,
			Category:        "General",
			ConfidenceScore: 0.7,
		}
		if kind, ok := entry["type"].(string); ok && models.RecommendationType(kind).Valid() {
			item.Type = models.RecommendationType(kind)
		}
		if category, ok := entry["category"].(string); ok {
			item.Category = category
		}
		if confidence, ok := entry["confidenceScore"].(float64); ok {
			item.ConfidenceScore = clamp01(confidence)
		}
		if channelID, ok := entry["channelId"].(string); ok {
			item.ChannelID = channelID
		}
		if subscriberCount, ok := entry["subscriberCount"].(float64); ok {
			item.SubscriberCount = int64(subscriberCount)
		}

		items = append(items, item)
	}

	if len(items) == 0 {
		return nil, ErrNoValidRecommendations
	}
	return items, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
