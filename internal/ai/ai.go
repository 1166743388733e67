package ai

import (
	"context"

	"github.com/avoronov/talentdir/internal/filtering"
)

// ScoreEntry is one candidate's externally computed relevance against a
// query: a numeric rank plus rationale. Consulted only for sorting, never for
// filtering.
type ScoreEntry struct {
	ID     string  `json:"id"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

// ScoringCandidate carries the display and enrichment fields a scoring
// request needs for one candidate.
type ScoringCandidate struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Profession      string   `json:"profession"`
	YearsExperience float64  `json:"years_experience"`
	Skills          []string `json:"skills,omitempty"`
	Summary         string   `json:"summary,omitempty"`
}

// Translator turns a free-form natural-language prompt into a structured
// filter state.
type Translator interface {
	Translate(ctx context.Context, prompt string) (*filtering.State, error)
}

// Scorer ranks candidates against a query.
type Scorer interface {
	Score(ctx context.Context, query string, candidates []ScoringCandidate) ([]ScoreEntry, error)
}
