package filtering

import (
	"fmt"
	"strings"
	"time"

	"github.com/avoronov/talentdir/internal/talent"
)

// TimeWindow restricts candidates by creation recency. Evaluated separately
// from the filter state: it never counts as an active dimension.
type TimeWindow string

const (
	WindowAll   TimeWindow = "all"
	WindowToday TimeWindow = "today"
	WindowWeek  TimeWindow = "week"
	WindowMonth TimeWindow = "month"
)

func ParseWindow(raw string) (TimeWindow, error) {
	switch TimeWindow(strings.ToLower(strings.TrimSpace(raw))) {
	case WindowAll, "":
		return WindowAll, nil
	case WindowToday:
		return WindowToday, nil
	case WindowWeek:
		return WindowWeek, nil
	case WindowMonth:
		return WindowMonth, nil
	default:
		return WindowAll, fmt.Errorf("unknown time window: %q", raw)
	}
}

func (w TimeWindow) maxDays() int {
	switch w {
	case WindowToday:
		return 1
	case WindowWeek:
		return 7
	case WindowMonth:
		return 30
	default:
		return -1
	}
}

// withinWindow checks the whole-day age of the record against the window. A
// missing or unparseable timestamp fails every non-all window.
func withinWindow(c *talent.Candidate, window TimeWindow, now time.Time) bool {
	if window == WindowAll || window == "" {
		return true
	}

	created, ok := c.CreatedTime()
	if !ok {
		return false
	}

	days := int(now.Sub(created).Hours() / 24)
	return days <= window.maxDays()
}
