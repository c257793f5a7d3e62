package doctor

import (
	"context"
	"fmt"
	"os"

	"github.com/hay-kot/abacus/internal/core/history"
	"github.com/hay-kot/abacus/pkg/fsutil"
)

// HistoryCheck verifies the saved history can be read, and looks for an
// oversized history and temp files left behind by an interrupted save.
type HistoryCheck struct {
	store      history.Store
	maxEntries int
	fix        bool
}

// NewHistoryCheck creates a history check. With fix set, stale temp files
// are deleted and an oversized history is trimmed to maxEntries.
func NewHistoryCheck(store history.Store, maxEntries int, fix bool) *HistoryCheck {
	return &HistoryCheck{store: store, maxEntries: maxEntries, fix: fix}
}

func (c *HistoryCheck) Name() string { return "History" }

func (c *HistoryCheck) Run(ctx context.Context) Report {
	report := Report{Name: c.Name()}

	if c.store == nil {
		report.add(fail("History store", "history store not configured"))
		return report
	}

	path := c.store.Path()
	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		report.add(pass("History file", "no history saved yet"))
	case err != nil:
		report.add(fail("History file", err.Error()))
	case info.IsDir():
		report.add(fail("History file", path+" is a directory"))
	default:
		report.add(c.inspect(ctx)...)
	}

	report.add(c.staleTemp(fsutil.TempPath(path)))
	return report
}

func (c *HistoryCheck) inspect(ctx context.Context) []Finding {
	calcs, err := c.store.Load(ctx)
	if err != nil {
		return []Finding{fail("History file", err.Error())}
	}

	out := []Finding{pass("History file", fmt.Sprintf("%d calculations in %s", len(calcs), c.store.Path()))}

	if c.maxEntries <= 0 || len(calcs) <= c.maxEntries {
		return out
	}

	if !c.fix {
		f := warn("History size", fmt.Sprintf("%d saved calculations exceed max_history_size %d; the oldest are dropped on load", len(calcs), c.maxEntries))
		f.Remedy = RemedyTrimHistory
		return append(out, f)
	}

	dropped := len(calcs) - c.maxEntries
	if err := c.store.Save(ctx, calcs[dropped:]); err != nil {
		return append(out, fail("History size", fmt.Sprintf("failed to trim: %v", err)))
	}
	return append(out, pass("History size", fmt.Sprintf("dropped the %d oldest calculations", dropped)))
}

func (c *HistoryCheck) staleTemp(tmp string) Finding {
	if _, err := os.Stat(tmp); os.IsNotExist(err) {
		return pass("No stale temp file", "")
	}

	if !c.fix {
		f := warn(tmp, "left behind by an interrupted save")
		f.Remedy = RemedyRemoveTemp
		return f
	}

	if err := os.Remove(tmp); err != nil {
		return fail(tmp, fmt.Sprintf("failed to delete: %v", err))
	}
	return pass(tmp, "deleted stale temp file")
}
