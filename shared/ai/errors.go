package ai

import (
	"errors"
	"fmt"
)

// ErrNoData means both the subscription and liked-video lists were empty, so
// there is nothing to analyze. Checked before any network call.
var ErrNoData = errors.New("no subscriptions or liked videos to analyze")

// ErrNoTasteProfile means the category list was empty, so there is nothing
// to recommend from.
var ErrNoTasteProfile = errors.New("no taste profile to generate recommendations from")

// ErrNoValidRecommendations means every entry in an otherwise well-formed
// recommendations batch was rejected.
var ErrNoValidRecommendations = errors.New("no valid recommendations in model response")

// MalformedResponseError is a JSON parse failure on model output. Raw holds
// the fence-stripped text for server-side diagnostics only.
type MalformedResponseError struct {
	Detail string
	Raw    string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed model response: %s", e.Detail)
}

// ShapeError is valid JSON with the wrong structure. Index is the offending
// list position, or -1 for a top-level field.
type ShapeError struct {
	Field string
	Index int
	Want  string
}

func (e *ShapeError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("invalid model response shape: %s at index %d is not %s", e.Field, e.Index, e.Want)
	}
	return fmt.Sprintf("invalid model response shape: %s is not %s", e.Field, e.Want)
}
