package provider

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"
)

func TestGenerateSchema_ClosesObjects(t *testing.T) {
	t.Parallel()

	type inner struct {
		Label string `json:"label"`
	}
	type outer struct {
		Score float64 `json:"score"`
		Items []inner `json:"items"`
	}

	s := GenerateSchema[outer]()
	if s["additionalProperties"] != false {
		t.Fatalf("additionalProperties=%v, want false", s["additionalProperties"])
	}
	req, _ := s["required"].([]string)
	slices.Sort(req)
	if !slices.Equal(req, []string{"items", "score"}) {
		t.Fatalf("required=%v", s["required"])
	}

	props := s["properties"].(map[string]any)
	items := props["items"].(map[string]any)["items"].(map[string]any)
	if items["additionalProperties"] != false {
		t.Fatalf("nested additionalProperties=%v, want false", items["additionalProperties"])
	}
}

func TestScoreSchema_HasScoreProperty(t *testing.T) {
	t.Parallel()

	props, ok := scoreSchema["properties"].(map[string]any)
	if !ok {
		t.Fatalf("schema has no properties: %v", scoreSchema)
	}
	if _, ok := props["score"]; !ok {
		t.Fatalf("schema missing score: %v", props)
	}
}

func TestParseScore(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{in: `{"score": 0.5}`, want: 0.5},
		{in: "```json\n{\"score\": -1}\n```", want: -1},
		{in: `{"score": 0}`, want: 0},
		{in: `{"score": 1.5}`, wantErr: true},
		{in: `not json`, wantErr: true},
		{in: ``, wantErr: true},
	}
	for _, tc := range cases {
		got, err := ParseScore(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseScore(%q): expected error, got %v", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseScore(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseScore(%q)=%v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestRetryDelay(t *testing.T) {
	t.Parallel()

	if d, ok := retryDelay(errors.New("POST: 429 Too Many Requests"), 0); !ok || d != rateLimitWaits[0] {
		t.Fatalf("rate limit: d=%v ok=%v", d, ok)
	}
	if d, ok := retryDelay(errors.New("503 service unavailable"), 1); !ok || d != serverErrorWaits[1] {
		t.Fatalf("server error: d=%v ok=%v", d, ok)
	}
	if _, ok := retryDelay(errors.New("429"), maxAttempts-1); ok {
		t.Fatalf("last attempt must not retry")
	}
	if _, ok := retryDelay(errors.New("400 bad request"), 0); ok {
		t.Fatalf("client errors must not retry")
	}
}

func TestSleep_StopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("sleep err=%v, want context.Canceled", err)
	}
}

func TestNewOpenAIScorer_RequiresKey(t *testing.T) {
	t.Parallel()

	if _, err := NewOpenAIScorer("  ", ""); err == nil {
		t.Fatalf("expected error for empty key")
	}
	s, err := NewOpenAIScorer("sk-test", "")
	if err != nil {
		t.Fatalf("NewOpenAIScorer: %v", err)
	}
	if s.model != DefaultModel {
		t.Fatalf("model=%q, want %q", s.model, DefaultModel)
	}
	got, err := s.Score(context.Background(), "   ")
	if err != nil || got != 0 {
		t.Fatalf("blank text: got=%v err=%v", got, err)
	}
}
