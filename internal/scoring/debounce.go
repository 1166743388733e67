package scoring

import (
	"context"
	"sync"
	"time"

	"github.com/avoronov/talentdir/internal/utils"
)

// Debouncer coalesces rapid reschedules into a single task run: every
// Schedule cancels the previous pending task and arms a fresh delay, so only
// the last scheduled task within the window actually fires.
type Debouncer struct {
	mu     sync.Mutex
	delay  time.Duration
	cancel context.CancelFunc
}

func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Schedule arms the task to run after the debounce delay, cancelling any
// pending invocation first.
func (d *Debouncer) Schedule(ctx context.Context, task func(ctx context.Context)) {
	d.mu.Lock()
	if d.cancel != nil {
		d.cancel()
	}
	taskCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.mu.Unlock()

	go func() {
		defer cancel()
		if err := utils.WaitFor(taskCtx, d.delay); err != nil {
			return
		}
		task(taskCtx)
	}()
}

// Stop cancels any pending invocation.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}
