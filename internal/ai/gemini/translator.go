package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/avoronov/talentdir/internal/filtering"
	"github.com/avoronov/talentdir/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

//go:embed translate_prompt.md
var translatePromptTemplate string

// Translator converts a natural-language search request into a filter state
// via Gemini.
type Translator struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

const defaultMaxLogLength = 200

func NewTranslator(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Translator {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Translator{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (t *Translator) Translate(ctx context.Context, prompt string) (*filtering.State, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, fmt.Errorf("prompt is required")
	}

	full := buildTranslatePrompt(prompt)

	t.logger.Debug("gemini translate request",
		zap.Int("prompt_length", utf8.RuneCountInString(full)),
		zap.String("prompt_preview", utils.TruncateForLog(full, t.maxLogLen)),
	)

	raw, err := t.generator.GenerateContent(ctx, full)
	if err != nil {
		return nil, err
	}

	t.logger.Debug("gemini translate response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, t.maxLogLen)),
	)

	return parseTranslateResponse(raw)
}

func buildTranslatePrompt(prompt string) string {
	template := translatePromptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Convert this resume search request into JSON filters:\n{{PROMPT}}\n\nJSON Response:"
	}
	return strings.ReplaceAll(template, "{{PROMPT}}", prompt)
}

// parseTranslateResponse maps the model output into a filter state, defaulting
// every dimension absent from the response to empty.
func parseTranslateResponse(raw string) (*filtering.State, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini translate response: %w", err)
	}

	state := &filtering.State{
		Professions:      coerceStrings(data["professions"]),
		ExperienceMin:    coerceBound(data["experience_min"]),
		ExperienceMax:    coerceBound(data["experience_max"]),
		Skills:           coerceStrings(data["skills"]),
		Keywords:         coerceStrings(data["keywords"]),
		ExcludedKeywords: coerceStrings(data["excluded_keywords"]),
	}

	return state, nil
}
