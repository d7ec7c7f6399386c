package models

// ChannelSummary is the per-channel slice of a user's subscription list that
// feeds taste analysis. SubscriberCount and VideoCount are zero when the
// YouTube API did not expose statistics for the channel.
type ChannelSummary struct {
	Title           string `json:"title"`
	Description     string `json:"description,omitempty"`
	SubscriberCount int64  `json:"subscriber_count,omitempty"`
	VideoCount      int64  `json:"video_count,omitempty"`
}

// VideoSummary is the per-video slice of a user's liked-video history.
type VideoSummary struct {
	Title        string `json:"title"`
	ChannelTitle string `json:"channel_title"`
}

// TasteCategory is one weighted interest derived from a user's activity.
// Within a single analysis result the weights sum to 1.0 after normalization.
type TasteCategory struct {
	Name          string   `json:"name"`
	Weight        float64  `json:"weight"`
	Description   string   `json:"description"`
	SubCategories []string `json:"sub_categories,omitempty"`
}

// TasteAnalysisResult is the validated output of one taste analysis run.
// It is immutable once created; a later run supersedes it entirely.
type TasteAnalysisResult struct {
	Categories      []TasteCategory `json:"categories"`
	AnalysisSummary string          `json:"analysis_summary"`
}
