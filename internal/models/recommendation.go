package models

import "time"

// RecommendationType classifies what kind of match a recommendation is.
type RecommendationType string

const (
	// RecommendationChannel is a well-matched channel for a dominant interest.
	RecommendationChannel RecommendationType = "channel"
	// RecommendationHiddenGem is a smaller or underrated channel match.
	RecommendationHiddenGem RecommendationType = "hidden_gem"
	// RecommendationContentGap is an adjacent, unexplored interest area.
	RecommendationContentGap RecommendationType = "content_gap"
)

// Valid reports whether t is one of the three recognized kinds.
func (t RecommendationType) Valid() bool {
	switch t {
	case RecommendationChannel, RecommendationHiddenGem, RecommendationContentGap:
		return true
	}
	return false
}

// RecommendationItem is one validated channel recommendation. ChannelID and
// SubscriberCount are zero-valued when the model omitted them.
type RecommendationItem struct {
	Type            RecommendationType `json:"type"`
	ChannelTitle    string             `json:"channel_title"`
	ChannelID       string             `json:"channel_id,omitempty"`
	Reason          string             `json:"reason"`
	Category        string             `json:"category"`
	ConfidenceScore float64            `json:"confidence_score"`
	SubscriberCount int64              `json:"subscriber_count,omitempty"`
}

// RecommendationDigest is the payload for one emailed batch of
// recommendations, together with the taste categories that produced it.
type RecommendationDigest struct {
	Date       time.Time            `json:"date"`
	Categories []TasteCategory      `json:"categories"`
	Items      []RecommendationItem `json:"items"`
}
