package gemini

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/avoronov/talentdir/internal/ai"
)

func TestScoreParsesEntries(t *testing.T) {
	generator := &stubGenerator{response: "```json\n" + `{
  "scores": [
    {"id": "c1", "score": 87, "reason": "strong Go background"},
    {"id": "c2", "score": "42.5"},
    {"id": "", "score": 99},
    {"score": 10}
  ]
}` + "\n```"}

	scorer := NewScorer(generator, zap.NewNop(), 0)

	entries, err := scorer.Score(context.Background(), "golang backend", []ai.ScoringCandidate{
		{ID: "c1", Name: "One"},
		{ID: "c2", Name: "Two"},
	})
	if err != nil {
		t.Fatalf("Score error: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("entries without an id must be dropped, got %d entries", len(entries))
	}
	if entries[0].ID != "c1" || entries[0].Score != 87 || entries[0].Reason != "strong Go background" {
		t.Fatalf("first entry: %+v", entries[0])
	}
	if entries[1].ID != "c2" || entries[1].Score != 42.5 {
		t.Fatalf("string score not coerced: %+v", entries[1])
	}
}

func TestScoreEmbedsQueryAndCandidates(t *testing.T) {
	generator := &stubGenerator{response: `{"scores": []}`}
	scorer := NewScorer(generator, zap.NewNop(), 0)

	_, err := scorer.Score(context.Background(), "platform engineers", []ai.ScoringCandidate{
		{ID: "c7", Name: "Grace", Profession: "SRE", Skills: []string{"Terraform"}},
	})
	if err != nil {
		t.Fatalf("Score error: %v", err)
	}

	if len(generator.prompts) != 1 {
		t.Fatalf("expected one generation call, got %d", len(generator.prompts))
	}
	prompt := generator.prompts[0]
	for _, fragment := range []string{"platform engineers", `"c7"`, "Grace", "Terraform"} {
		if !strings.Contains(prompt, fragment) {
			t.Fatalf("prompt is missing %q", fragment)
		}
	}
	if strings.Contains(prompt, "{{QUERY}}") || strings.Contains(prompt, "{{CANDIDATES_JSON}}") {
		t.Fatal("template placeholders left unexpanded")
	}
}

func TestScoreEmptyBatchSkipsTheCall(t *testing.T) {
	generator := &stubGenerator{response: `{"scores": []}`}
	scorer := NewScorer(generator, zap.NewNop(), 0)

	entries, err := scorer.Score(context.Background(), "anything", nil)
	if err != nil {
		t.Fatalf("Score error: %v", err)
	}
	if entries != nil {
		t.Fatalf("expected no entries, got %v", entries)
	}
	if len(generator.prompts) != 0 {
		t.Fatal("no generation call should be made for an empty batch")
	}
}

func TestScoreRequiresQuery(t *testing.T) {
	scorer := NewScorer(&stubGenerator{}, zap.NewNop(), 0)

	if _, err := scorer.Score(context.Background(), " ", []ai.ScoringCandidate{{ID: "c1"}}); err == nil {
		t.Fatal("expected an error for a blank query")
	}
}

func TestExtractJSONUnwrapsFences(t *testing.T) {
	cases := map[string]string{
		"```json\n{\"a\": 1}\n```": `{"a": 1}`,
		"```\n{\"a\": 1}\n```":     `{"a": 1}`,
		`{"a": 1}`:                 `{"a": 1}`,
	}
	for input, want := range cases {
		if got := extractJSON(input); got != want {
			t.Fatalf("extractJSON(%q) = %q, want %q", input, got, want)
		}
	}
}
