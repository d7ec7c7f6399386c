package ai

import (
	"errors"
	"math"
	"testing"

	"channelscout/internal/models"
)

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "No fence passes through",
			input:    `{"a":1}`,
			expected: `{"a":1}`,
		},
		{
			name:     "Fence with language tag",
			input:    "```json\n{\"a\":1}\n```",
			expected: `{"a":1}`,
		},
		{
			name:     "Fence without language tag",
			input:    "```\n{\"a\":1}\n```",
			expected: `{"a":1}`,
		},
		{
			name:     "Surrounding whitespace",
			input:    "  \n```json\n{\"a\":1}\n```\n  ",
			expected: `{"a":1}`,
		},
		{
			name:     "Mid-text fence left alone",
			input:    "prefix ```json\n{\"a\":1}\n```",
			expected: "prefix ```json\n{\"a\":1}\n```",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripCodeFence(tt.input); got != tt.expected {
				t.Errorf("stripCodeFence() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestParseTasteAnalysisResponse(t *testing.T) {
	raw := `{"categories":[{"name":"Tech","weight":0.5,"description":"x"},{"name":"Games","weight":0.5,"description":"y"}],"analysisSummary":"s"}`

	result, err := ParseTasteAnalysisResponse(raw)
	if err != nil {
		t.Fatalf("ParseTasteAnalysisResponse() error = %v", err)
	}
	if len(result.Categories) != 2 {
		t.Fatalf("got %d categories, want 2", len(result.Categories))
	}
	if result.AnalysisSummary != "s" {
		t.Errorf("summary = %q, want s", result.AnalysisSummary)
	}
	for i, cat := range result.Categories {
		if cat.Weight != 0.5 {
			t.Errorf("category %d weight = %v, want 0.5", i, cat.Weight)
		}
	}
}

func TestParseTasteAnalysisResponseNormalizesWeights(t *testing.T) {
	raw := `{"categories":[{"name":"A","weight":0.6,"description":"a"},{"name":"B","weight":0.2,"description":"b"},{"name":"C","weight":0.2,"description":"c"},{"name":"D","weight":0.5,"description":"d"}],"analysisSummary":"s"}`

	result, err := ParseTasteAnalysisResponse(raw)
	if err != nil {
		t.Fatalf("ParseTasteAnalysisResponse() error = %v", err)
	}

	var sum float64
	for _, cat := range result.Categories {
		sum += cat.Weight
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("weights sum to %v, want 1.0 within 1e-9", sum)
	}
	// Order must be preserved through normalization.
	wantOrder := []string{"A", "B", "C", "D"}
	for i, name := range wantOrder {
		if result.Categories[i].Name != name {
			t.Errorf("category %d = %s, want %s", i, result.Categories[i].Name, name)
		}
	}
}

func TestParseTasteAnalysisResponseClampsBeforeNormalizing(t *testing.T) {
	// 1.5 clamps to 1.0, -0.5 clamps to 0, then both normalize against the
	// post-clamp sum of 1.5.
	raw := `{"categories":[{"name":"A","weight":1.5,"description":"a"},{"name":"B","weight":-0.5,"description":"b"},{"name":"C","weight":0.5,"description":"c"}],"analysisSummary":"s"}`

	result, err := ParseTasteAnalysisResponse(raw)
	if err != nil {
		t.Fatalf("ParseTasteAnalysisResponse() error = %v", err)
	}

	if got := result.Categories[0].Weight; math.Abs(got-1.0/1.5) > 1e-9 {
		t.Errorf("clamped-high weight = %v, want %v", got, 1.0/1.5)
	}
	if got := result.Categories[1].Weight; got != 0 {
		t.Errorf("clamped-low weight = %v, want 0", got)
	}
}

func TestParseTasteAnalysisResponseZeroSumLeftAlone(t *testing.T) {
	raw := `{"categories":[{"name":"A","weight":0,"description":"a"},{"name":"B","weight":0,"description":"b"}],"analysisSummary":"s"}`

	result, err := ParseTasteAnalysisResponse(raw)
	if err != nil {
		t.Fatalf("ParseTasteAnalysisResponse() error = %v", err)
	}
	for i, cat := range result.Categories {
		if cat.Weight != 0 {
			t.Errorf("category %d weight = %v, want 0 (no normalization on zero sum)", i, cat.Weight)
		}
	}
}

func TestParseTasteAnalysisResponseFiltersSubCategories(t *testing.T) {
	raw := `{"categories":[{"name":"A","weight":1,"description":"a","subCategories":["x",42,"y",null]}],"analysisSummary":"s"}`

	result, err := ParseTasteAnalysisResponse(raw)
	if err != nil {
		t.Fatalf("ParseTasteAnalysisResponse() error = %v", err)
	}
	subs := result.Categories[0].SubCategories
	if len(subs) != 2 || subs[0] != "x" || subs[1] != "y" {
		t.Errorf("subCategories = %v, want [x y]", subs)
	}
}

func TestParseTasteAnalysisResponseStripsFence(t *testing.T) {
	raw := "```json\n{\"categories\":[{\"name\":\"A\",\"weight\":1,\"description\":\"a\"}],\"analysisSummary\":\"s\"}\n```"

	result, err := ParseTasteAnalysisResponse(raw)
	if err != nil {
		t.Fatalf("ParseTasteAnalysisResponse() error = %v", err)
	}
	if result.Categories[0].Name != "A" {
		t.Errorf("category name = %q", result.Categories[0].Name)
	}
}

func TestParseTasteAnalysisResponseMalformed(t *testing.T) {
	_, err := ParseTasteAnalysisResponse("not json {")

	var malformed *MalformedResponseError
	if !errors.As(err, &malformed) {
		t.Fatalf("error = %v (%T), want *MalformedResponseError", err, err)
	}
	if malformed.Raw != "not json {" {
		t.Errorf("Raw = %q, want the fence-stripped text", malformed.Raw)
	}
	if malformed.Detail == "" {
		t.Error("Detail should carry the parser message")
	}
}

func TestParseTasteAnalysisResponseShapeErrors(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantField string
		wantIndex int
	}{
		{
			name:      "Top level not an object",
			input:     `[1,2]`,
			wantField: "response",
			wantIndex: -1,
		},
		{
			name:      "Missing categories",
			input:     `{"analysisSummary":"s"}`,
			wantField: "categories",
			wantIndex: -1,
		},
		{
			name:      "Categories not a list",
			input:     `{"categories":{},"analysisSummary":"s"}`,
			wantField: "categories",
			wantIndex: -1,
		},
		{
			name:      "Summary not a string",
			input:     `{"categories":[],"analysisSummary":7}`,
			wantField: "analysisSummary",
			wantIndex: -1,
		},
		{
			name:      "Category not an object",
			input:     `{"categories":["x"],"analysisSummary":"s"}`,
			wantField: "categories",
			wantIndex: 0,
		},
		{
			name:      "Weight not a number",
			input:     `{"categories":[{"name":"A","weight":1,"description":"a"},{"name":"B","weight":"heavy","description":"b"}],"analysisSummary":"s"}`,
			wantField: "weight",
			wantIndex: 1,
		},
		{
			name:      "Name missing",
			input:     `{"categories":[{"weight":1,"description":"a"}],"analysisSummary":"s"}`,
			wantField: "name",
			wantIndex: 0,
		},
		{
			name:      "Description not a string",
			input:     `{"categories":[{"name":"A","weight":1,"description":3}],"analysisSummary":"s"}`,
			wantField: "description",
			wantIndex: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTasteAnalysisResponse(tt.input)

			var shape *ShapeError
			if !errors.As(err, &shape) {
				t.Fatalf("error = %v (%T), want *ShapeError", err, err)
			}
			if shape.Field != tt.wantField || shape.Index != tt.wantIndex {
				t.Errorf("ShapeError = {%s %d}, want {%s %d}", shape.Field, shape.Index, tt.wantField, tt.wantIndex)
			}
		})
	}
}

func TestParseRecommendationsResponseDefaults(t *testing.T) {
	raw := "```json\n{\"recommendations\":[{\"type\":\"bogus\",\"channelTitle\":\"A\",\"reason\":\"r\"}]}\n```"

	items, err := ParseRecommendationsResponse(raw)
	if err != nil {
		t.Fatalf("ParseRecommendationsResponse() error = %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}

	item := items[0]
	if item.Type != models.RecommendationChannel {
		t.Errorf("type = %q, want channel default", item.Type)
	}
	if item.Category != "General" {
		t.Errorf("category = %q, want General default", item.Category)
	}
	if item.ConfidenceScore != 0.7 {
		t.Errorf("confidenceScore = %v, want 0.7 default", item.ConfidenceScore)
	}
}

func TestParseRecommendationsResponseSkipSemantics(t *testing.T) {
	raw := `{"recommendations":[
		"not an object",
		{"reason":"missing title"},
		{"channelTitle":"","reason":"empty title"},
		{"channelTitle":"No Reason"},
		{"channelTitle":"Keeper","reason":"good","type":"hidden_gem","category":"Tech","confidenceScore":1.4,"channelId":"UC123","subscriberCount":5000},
		{"channelTitle":"Bad ID","reason":"ok","channelId":42,"subscriberCount":"many"}
	]}`

	items, err := ParseRecommendationsResponse(raw)
	if err != nil {
		t.Fatalf("ParseRecommendationsResponse() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}

	keeper := items[0]
	if keeper.Type != models.RecommendationHiddenGem {
		t.Errorf("type = %q, want hidden_gem", keeper.Type)
	}
	if keeper.ConfidenceScore != 1.0 {
		t.Errorf("confidenceScore = %v, want clamped 1.0", keeper.ConfidenceScore)
	}
	if keeper.ChannelID != "UC123" || keeper.SubscriberCount != 5000 {
		t.Errorf("optional fields not carried through: %+v", keeper)
	}

	badID := items[1]
	if badID.ChannelID != "" || badID.SubscriberCount != 0 {
		t.Errorf("wrong-typed optional fields should be omitted: %+v", badID)
	}
}

func TestParseRecommendationsResponseAllDropped(t *testing.T) {
	raw := `{"recommendations":[{"channelTitle":"A"},{"reason":"r"}]}`

	_, err := ParseRecommendationsResponse(raw)
	if !errors.Is(err, ErrNoValidRecommendations) {
		t.Errorf("error = %v, want ErrNoValidRecommendations", err)
	}
}

func TestParseRecommendationsResponseMalformed(t *testing.T) {
	_, err := ParseRecommendationsResponse("not json {")

	var malformed *MalformedResponseError
	if !errors.As(err, &malformed) {
		t.Fatalf("error = %v (%T), want *MalformedResponseError", err, err)
	}
}

func TestParseRecommendationsResponseShapeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "Top level not an object", input: `"text"`},
		{name: "Recommendations missing", input: `{}`},
		{name: "Recommendations not a list", input: `{"recommendations":"none"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRecommendationsResponse(tt.input)

			var shape *ShapeError
			if !errors.As(err, &shape) {
				t.Fatalf("error = %v (%T), want *ShapeError", err, err)
			}
		})
	}
}

func TestClamp01(t *testing.T) {
	tests := []struct {
		input    float64
		expected float64
	}{
		{input: -0.1, expected: 0},
		{input: 0, expected: 0},
		{input: 0.5, expected: 0.5},
		{input: 1, expected: 1},
		{input: 1.5, expected: 1},
	}

	for _, tt := range tests {
		if got := clamp01(tt.input); got != tt.expected {
			t.Errorf("clamp01(%v) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}
