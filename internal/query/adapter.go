package query

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/avoronov/talentdir/internal/ai"
	"github.com/avoronov/talentdir/internal/filtering"
)

// ErrBusy is returned while a prior submission is still in flight. Callers
// treat it as a no-op.
var ErrBusy = errors.New("translation already in flight")

// Adapter wraps the remote natural-language translator with a deterministic
// fallback: when translation fails the whole prompt becomes the sole keyword
// and the other dimensions stay untouched, so the screen never breaks.
type Adapter struct {
	mu         sync.Mutex
	busy       bool
	translator ai.Translator
	logger     *zap.Logger
}

func NewAdapter(translator ai.Translator, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{
		translator: translator,
		logger:     logger,
	}
}

// Submit translates the prompt into a replacement filter state. Only one
// submission runs at a time; concurrent calls get ErrBusy.
func (a *Adapter) Submit(ctx context.Context, prompt string, current *filtering.State) (*filtering.State, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, errors.New("prompt is required")
	}

	a.mu.Lock()
	if a.busy {
		a.mu.Unlock()
		return nil, ErrBusy
	}
	a.busy = true
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.busy = false
		a.mu.Unlock()
	}()

	if a.translator == nil {
		return a.fallback(prompt, current), nil
	}

	state, err := a.translator.Translate(ctx, prompt)
	if err != nil {
		a.logger.Warn("query translation failed, falling back to keyword filtering",
			zap.String("prompt", prompt),
			zap.Error(err),
		)
		return a.fallback(prompt, current), nil
	}

	if state == nil {
		state = &filtering.State{}
	}

	return state, nil
}

// Busy reports whether a submission is in flight.
func (a *Adapter) Busy() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.busy
}

func (a *Adapter) fallback(prompt string, current *filtering.State) *filtering.State {
	next := current.Clone()
	next.Keywords = []string{prompt}
	return next
}
