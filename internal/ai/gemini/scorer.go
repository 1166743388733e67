package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/avoronov/talentdir/internal/ai"
	"github.com/avoronov/talentdir/internal/utils"
)

//go:embed score_prompt.md
var scorePromptTemplate string

// Scorer ranks a batch of candidates against a query in a single Gemini call.
type Scorer struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewScorer(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Scorer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scorer{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (s *Scorer) Score(ctx context.Context, query string, candidates []ai.ScoringCandidate) ([]ai.ScoreEntry, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	candidatesJSON, err := json.MarshalIndent(candidates, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal candidates payload: %w", err)
	}

	prompt := buildScorePrompt(query, string(candidatesJSON))

	s.logger.Debug("gemini score request",
		zap.Int("candidates", len(candidates)),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, s.maxLogLen)),
	)

	raw, err := s.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("gemini score response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, s.maxLogLen)),
	)

	return parseScoreResponse(raw)
}

func buildScorePrompt(query, candidatesJSON string) string {
	template := scorePromptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Query:\n{{QUERY}}\n\nCandidates:\n{{CANDIDATES_JSON}}\n\nJSON Response:"
	}
	prompt := strings.ReplaceAll(template, "{{QUERY}}", query)
	prompt = strings.ReplaceAll(prompt, "{{CANDIDATES_JSON}}", candidatesJSON)
	return prompt
}

func parseScoreResponse(raw string) ([]ai.ScoreEntry, error) {
	cleaned := extractJSON(raw)

	var data struct {
		Scores []map[string]any `json:"scores"`
	}
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini score response: %w", err)
	}

	entries := make([]ai.ScoreEntry, 0, len(data.Scores))
	for _, item := range data.Scores {
		id := coerceString(item["id"])
		if id == "" {
			continue
		}
		score := coerceFloat(item["score"])
		if math.IsNaN(score) {
			score = 0
		}
		entries = append(entries, ai.ScoreEntry{
			ID:     id,
			Score:  score,
			Reason: coerceString(item["reason"]),
		})
	}

	return entries, nil
}
