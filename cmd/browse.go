package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/avoronov/talentdir/internal/ai"
	"github.com/avoronov/talentdir/internal/ai/gemini"
	"github.com/avoronov/talentdir/internal/filtering"
	"github.com/avoronov/talentdir/internal/hydrate"
	"github.com/avoronov/talentdir/internal/logger"
	"github.com/avoronov/talentdir/internal/query"
	"github.com/avoronov/talentdir/internal/scoring"
	"github.com/avoronov/talentdir/internal/secrets"
	"github.com/avoronov/talentdir/internal/session"
	"github.com/avoronov/talentdir/internal/talent"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptNextPage     = "Next page"
	PromptPrevPage     = "Previous page"
	PromptGoToPage     = "Go to page"
	PromptAsk          = "Ask in natural language"
	PromptEditFilters  = "Edit filters"
	PromptTimeWindow   = "Change time window"
	PromptClearFilters = "Clear filters"
	PromptOpenDetail   = "Open candidate detail"
	PromptDelete       = "Delete candidate"
	PromptReport       = "Report by profession"
	PromptDumpPage     = "Dump current page to file"
	PromptQuit         = "Quit"
	PromptYes          = "Yes"
	PromptNo           = "No"
	PromptBack         = "back"
)

var errExit = errors.New("exit requested")

var browsePrompt = promptui.Select{
	Label: "Action?",
	Items: []string{
		PromptNextPage, PromptPrevPage, PromptGoToPage,
		PromptAsk, PromptEditFilters, PromptTimeWindow, PromptClearFilters,
		PromptOpenDetail, PromptDelete,
		PromptReport, PromptDumpPage, PromptQuit,
	},
}

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the resume directory interactively",
	Run: func(_ *cobra.Command, _ []string) {
		browse()
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

// browse is the main command for the cli.
func browse() {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the talentdir", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config == nil {
		logger.Fatal("config is required")
	}

	token, err := resolveToken(config)
	if err != nil {
		logger.Fatal(
			"loading talentbase token",
			zap.Error(err),
			zap.String("hint", "set TALENT_TOKEN_FILE environment variable or the 'token-file' key in the configuration file"),
		)
	}

	client := talent.New(ctx, logger, token)
	if config.UserAgent != "" {
		client.UserAgent = config.UserAgent
	}

	translator, scorer := prepareAI(ctx, config.AI, logger)

	sess := session.New(session.Config{
		Client:     client,
		Ranker:     scoring.NewRanker(scorer, scoring.NewCache(), logger, aiDebounce(config.AI)),
		Translator: query.NewAdapter(translator, logger),
		Logger:     logger,
		ListParams: config.List,
		PageSize:   config.PageSize,
	})
	defer sess.Close()

	// The hydrator merges into the store the session owns.
	sess.AttachHydrator(hydrate.New(client, sess.Store(), logger))

	if err := sess.Load(ctx); err != nil {
		logger.Fatal("loading the candidate directory", zap.Error(err))
	}

	for {
		printPage(sess, ctx)

		_, action, err := browsePrompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(ctx, action, sess, client, logger); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Error("action failed", zap.String("action", action), zap.Error(err))
		}
	}
}

func handleAction(ctx context.Context, action string, sess *session.Session, client *talent.Client, logger *zap.Logger) error {
	switch action {
	case PromptNextPage:
		sess.NextPage()
		return nil
	case PromptPrevPage:
		sess.PrevPage()
		return nil
	case PromptGoToPage:
		return goToPage(sess)
	case PromptAsk:
		return askQuery(ctx, sess)
	case PromptEditFilters:
		return editFilters(ctx, sess)
	case PromptTimeWindow:
		return changeWindow(ctx, sess)
	case PromptClearFilters:
		sess.SetFilters(ctx, &filtering.State{})
		sess.SetQuery(ctx, "")
		return nil
	case PromptOpenDetail:
		return openDetail(ctx, sess)
	case PromptDelete:
		return deleteCandidate(ctx, sess, logger)
	case PromptReport:
		filtered := &talent.Candidates{Items: sess.Filtered()}
		pretty, _ := json.MarshalIndent(filtered.ReportByProfession(), "", "  ")
		logger.Info(string(pretty), zap.Int("candidates count", filtered.Len()))
		return nil
	case PromptDumpPage:
		page := &talent.Candidates{Items: sess.Visible(ctx)}
		filename, err := page.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump page to file: %w", err)
		}
		logger.Info("dumping page to file", zap.String("filename", filename))
		return nil
	case PromptQuit:
		logger.Info("exiting", zap.String("reason", "got quit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func printPage(sess *session.Session, ctx context.Context) {
	page := sess.Visible(ctx)

	fmt.Printf("\npage %d/%d, %d candidates match\n",
		sess.CurrentPage(), sess.TotalPages(), len(sess.Filtered()))

	for _, candidate := range page {
		line := fmt.Sprintf("  %s  %s / %s / %g years",
			candidate.ID, candidate.Name, candidate.Profession, candidate.YearsExperience)
		if entry, ok := sess.Ranker().Cache().Get(candidate.ID); ok {
			line += fmt.Sprintf("  [score %.1f: %s]", entry.Score, entry.Reason)
		}
		fmt.Println(line)
	}
}

func goToPage(sess *session.Session) error {
	input := promptui.Prompt{Label: "Page number"}
	raw, err := input.Run()
	if err != nil {
		return err
	}

	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("not a page number: %q", raw)
	}

	sess.GoToPage(page)
	return nil
}

func askQuery(ctx context.Context, sess *session.Session) error {
	input := promptui.Prompt{Label: "Describe who you are looking for"}
	prompt, err := input.Run()
	if err != nil {
		return err
	}

	return sess.TranslateQuery(ctx, prompt)
}

func editFilters(ctx context.Context, sess *session.Session) error {
	state := sess.Filters()

	read := func(label string, current []string) ([]string, error) {
		input := promptui.Prompt{
			Label:   fmt.Sprintf("%s (comma-separated)", label),
			Default: strings.Join(current, ", "),
		}
		raw, err := input.Run()
		if err != nil {
			return nil, err
		}
		return splitTerms(raw), nil
	}

	var err error
	if state.Professions, err = read("Professions", state.Professions); err != nil {
		return err
	}
	if state.Skills, err = read("Required skills", state.Skills); err != nil {
		return err
	}
	if state.Keywords, err = read("Required keywords", state.Keywords); err != nil {
		return err
	}
	if state.ExcludedKeywords, err = read("Excluded keywords", state.ExcludedKeywords); err != nil {
		return err
	}
	if state.ExperienceMin, err = readBound("Min years of experience", state.ExperienceMin); err != nil {
		return err
	}
	if state.ExperienceMax, err = readBound("Max years of experience", state.ExperienceMax); err != nil {
		return err
	}

	sess.SetFilters(ctx, state)
	return nil
}

// splitTerms turns comma-separated prompt input into a clean term list.
func splitTerms(raw string) []string {
	terms := make([]string, 0)
	for _, term := range strings.Split(raw, ",") {
		if term = strings.TrimSpace(term); term != "" {
			terms = append(terms, term)
		}
	}
	return terms
}

func readBound(label string, current *float64) (*float64, error) {
	def := ""
	if current != nil {
		def = strconv.FormatFloat(*current, 'g', -1, 64)
	}

	input := promptui.Prompt{Label: fmt.Sprintf("%s (empty for none)", label), Default: def}
	raw, err := input.Run()
	if err != nil {
		return nil, err
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("not a number: %q", raw)
	}
	return &value, nil
}

func changeWindow(ctx context.Context, sess *session.Session) error {
	windowPrompt := promptui.Select{
		Label: "Time window",
		Items: []string{
			string(filtering.WindowAll), string(filtering.WindowToday),
			string(filtering.WindowWeek), string(filtering.WindowMonth),
		},
	}

	_, selected, err := windowPrompt.Run()
	if err != nil {
		return err
	}

	window, err := filtering.ParseWindow(selected)
	if err != nil {
		return err
	}

	sess.SetTimeWindow(ctx, window)
	return nil
}

func openDetail(ctx context.Context, sess *session.Session) error {
	page := sess.Visible(ctx)
	if len(page) == 0 {
		return errors.New("no candidates on the current page")
	}

	items := make([]string, 0, len(page)+1)
	for _, candidate := range page {
		items = append(items, fmt.Sprintf("%s %s / %s", candidate.ID, candidate.Name, candidate.Profession))
	}

	detailPrompt := promptui.Select{
		Label: "Choose a candidate and press ENTER",
		Items: append(items, PromptBack),
	}

	_, selected, err := detailPrompt.Run()
	if err != nil {
		return err
	}
	if selected == PromptBack {
		return nil
	}

	id := strings.Split(selected, " ")[0]
	record := sess.Store().Get(id)
	if record == nil {
		return fmt.Errorf("there is no such candidate id %s", id)
	}

	sess.OpenDetail(id)

	pretty, _ := json.MarshalIndent(record, "", "  ")
	fmt.Println(string(pretty))
	return nil
}

func deleteCandidate(ctx context.Context, sess *session.Session, logger *zap.Logger) error {
	input := promptui.Prompt{Label: "Candidate id to delete"}
	id, err := input.Run()
	if err != nil {
		return err
	}
	id = strings.TrimSpace(id)

	confirm := promptui.Select{
		Label: fmt.Sprintf("Really delete candidate %s?", id),
		Items: []string{PromptNo, PromptYes},
	}
	_, answer, err := confirm.Run()
	if err != nil {
		return err
	}
	if answer != PromptYes {
		return nil
	}

	if err := sess.Delete(ctx, id); err != nil {
		// surfaced to the user, local state untouched
		return err
	}

	logger.Info("candidate removed from the directory", zap.String("candidate_id", id))
	return nil
}

func resolveToken(config *Config) (string, error) {
	if config == nil {
		return "", errors.New("config is required")
	}

	tokenFile := strings.TrimSpace(config.TokenFile)
	if tokenFile == "" {
		tokenFile = strings.TrimSpace(viper.GetString("token-file"))
	}

	if tokenFile == "" {
		return "", errors.New("talentbase token file is not configured")
	}

	return secrets.Load(secrets.Source{
		Name: "talentbase token",
		File: tokenFile,
	})
}

// prepareAI builds the Gemini-backed translator and scorer when the ai
// section is enabled. Both are optional: without them the screen still
// filters and paginates, it just cannot translate prompts or rank by
// relevance.
func prepareAI(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (ai.Translator, ai.Scorer) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		logger.Warn("unsupported ai provider, continuing without AI", zap.String("provider", cfg.Provider))
		return nil, nil
	}

	if cfg.Gemini == nil {
		logger.Warn("gemini configuration is required when ai is enabled, continuing without AI")
		return nil, nil
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
	})
	if err != nil {
		logger.Warn("loading gemini api key, continuing without AI",
			zap.Error(err),
			zap.String("hint", "set ai.gemini.api-key-file or GEMINI_API_KEY_FILE"),
		)
		return nil, nil
	}

	genLogger := logger.With(
		zap.String("provider", "gemini"),
		zap.String("model", cfg.Gemini.Model),
	)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, genLogger)
	if err != nil {
		logger.Warn("building gemini generator, continuing without AI", zap.Error(err))
		return nil, nil
	}

	return gemini.NewTranslator(generator, genLogger, cfg.Gemini.MaxLogLength),
		gemini.NewScorer(generator, genLogger, cfg.Gemini.MaxLogLength)
}

func aiDebounce(cfg *AIConfig) time.Duration {
	if cfg == nil || strings.TrimSpace(cfg.Debounce) == "" {
		return scoring.DefaultDebounce
	}

	d, err := time.ParseDuration(strings.TrimSpace(cfg.Debounce))
	if err != nil || d <= 0 {
		return scoring.DefaultDebounce
	}
	return d
}
