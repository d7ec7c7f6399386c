package ai

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"channelscout/internal/models"
)

// Prompt rendering is deterministic on purpose: hard prefix caps, input
// order preserved, no sampling. The JSON-shape instructions are embedded
// verbatim because the parsers depend on this wording staying stable.
const (
	maxPromptSubscriptions = 50
	maxPromptLikedVideos   = 30
	maxPromptExclusions    = 100
	maxDescriptionChars    = 100
)

const tasteAnalysisInstruction = `You are a YouTube taste analyst. Based on the channels a user subscribes to and the videos they have liked, identify their interest categories.

Respond with JSON only, no other text, in exactly this format:
{
  "categories": [
    {
      "name": "Category name",
      "weight": 0.35,
      "description": "One sentence describing this interest",
      "subCategories": ["optional", "narrower", "topics"]
    }
  ],
  "analysisSummary": "2-3 sentence overview of this user's taste"
}

Each weight is between 0.0 and 1.0 and reflects how dominant the interest is; weights should sum to 1.0.`

const recommendationInstruction = `You are a YouTube channel scout. Using the taste profile below, recommend channels the user does not already follow.

Recommend three kinds:
- "channel": a well-matched channel for one of the user's dominant interests (recommend 3-5)
- "hidden_gem": a smaller or underrated channel that fits closely (recommend 2-3)
- "content_gap": a channel in an adjacent area the user has not explored yet (recommend 2-3)

Respond with JSON only, no other text, in exactly this format:
{
  "recommendations": [
    {
      "type": "channel",
      "channelTitle": "Channel name",
      "channelId": "optional YouTube channel ID, only if certain",
      "reason": "Why this matches the user's taste",
      "category": "Which interest category this serves",
      "confidenceScore": 0.85,
      "subscriberCount": 120000
    }
  ]
}`

// BuildTasteAnalysisPrompt renders the single user-role block for taste
// analysis. The counts are the totals supplied, not the truncated sizes.
func BuildTasteAnalysisPrompt(subscriptions []models.ChannelSummary, likedVideos []models.VideoSummary) string {
	var b strings.Builder
	b.WriteString(tasteAnalysisInstruction)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "SUBSCRIPTIONS (%d total):\n", len(subscriptions))
	b.WriteString(formatSubscriptions(subscriptions))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "LIKED VIDEOS (%d total):\n", len(likedVideos))
	b.WriteString(formatLikedVideos(likedVideos))
	return b.String()
}

// BuildRecommendationPrompt renders the single user-role block for
// recommendation generation.
func BuildRecommendationPrompt(categories []models.TasteCategory, analysisSummary string, existingSubscriptions []string) string {
	var b strings.Builder
	b.WriteString(recommendationInstruction)
	b.WriteString("\n\nTASTE SUMMARY:\n")
	b.WriteString(analysisSummary)
	b.WriteString("\n\nINTEREST CATEGORIES:\n")
	b.WriteString(formatCategories(categories))
	b.WriteString("\n\nALREADY SUBSCRIBED (do not recommend these):\n")
	b.WriteString(formatExclusions(existingSubscriptions))
	return b.String()
}

func formatSubscriptions(subscriptions []models.ChannelSummary) string {
	if len(subscriptions) == 0 {
		return "No subscriptions available"
	}
	if len(subscriptions) > maxPromptSubscriptions {
		subscriptions = subscriptions[:maxPromptSubscriptions]
	}

	lines := make([]string, 0, len(subscriptions))
	for _, sub := range subscriptions {
		line := "- " + sub.Title
		if sub.Description != "" {
			// Truncate on a rune boundary so multi-byte descriptions
			// never leak invalid UTF-8 into the prompt.
			if runes := []rune(sub.Description); len(runes) > maxDescriptionChars {
				line += " (" + string(runes[:maxDescriptionChars]) + "...)"
			} else {
				line += " (" + sub.Description + ")"
			}
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func formatLikedVideos(videos []models.VideoSummary) string {
	if len(videos) == 0 {
		return "No liked videos available"
	}
	if len(videos) > maxPromptLikedVideos {
		videos = videos[:maxPromptLikedVideos]
	}

	lines := make([]string, 0, len(videos))
	for _, video := range videos {
		lines = append(lines, fmt.Sprintf("- \"%s\" by %s", video.Title, video.ChannelTitle))
	}
	return strings.Join(lines, "\n")
}

// formatCategories renders one line per category, heaviest first, so the
// model's attention lands on the dominant interests. The sort is stable:
// equal weights keep their original relative order.
func formatCategories(categories []models.TasteCategory) string {
	sorted := make([]models.TasteCategory, len(categories))
	copy(sorted, categories)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Weight > sorted[j].Weight
	})

	lines := make([]string, 0, len(sorted))
	for _, cat := range sorted {
		line := fmt.Sprintf("- %s (%d%%): %s", cat.Name, int(math.Round(cat.Weight*100)), cat.Description)
		if len(cat.SubCategories) > 0 {
			line += " (" + strings.Join(cat.SubCategories, ", ") + ")"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func formatExclusions(titles []string) string {
	if len(titles) == 0 {
		return "None"
	}
	if len(titles) > maxPromptExclusions {
		titles = titles[:maxPromptExclusions]
	}
	return strings.Join(titles, ", ")
}
