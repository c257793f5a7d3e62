// Package calculator orchestrates operations, history, undo/redo and
// observers.
package calculator

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/hay-kot/abacus/internal/core/calcerr"
	"github.com/hay-kot/abacus/internal/core/config"
	"github.com/hay-kot/abacus/internal/core/history"
	"github.com/hay-kot/abacus/internal/core/operation"
	"github.com/hay-kot/abacus/internal/core/validate"
)

// ErrObserverNotFound is returned by RemoveObserver for an observer that was
// never added.
var ErrObserverNotFound = errors.New("observer not registered")

// Calculator holds the current operation, the calculation history and the
// undo/redo stacks. All state is guarded by a single mutex.
type Calculator struct {
	cfg   *config.Config
	store history.Store
	log   zerolog.Logger

	mu        sync.Mutex
	op        operation.Operation
	history   []history.Calculation
	undoStack []history.Memento
	redoStack []history.Memento
	observers []Observer

	// unreadable is set when the stored history could not be loaded.
	// Automatic saves are held back so they do not replace that file.
	unreadable bool
}

// New creates a Calculator with an empty history. store may be nil, in which
// case SaveHistory and LoadHistory fail.
func New(cfg *config.Config, store history.Store, log zerolog.Logger) *Calculator {
	return &Calculator{
		cfg:   cfg,
		store: store,
		log:   log,
	}
}

// SetOperation sets the strategy used by the next PerformOperation call.
func (c *Calculator) SetOperation(op operation.Operation) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.op = op
	if op != nil {
		c.log.Debug().Str("operation", op.String()).Msg("operation set")
	}
}

// Operation returns the current strategy, or nil.
func (c *Calculator) Operation() operation.Operation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.op
}

// PerformOperation validates a and b, executes the current operation and
// records the result. Validation errors are returned unwrapped; every other
// failure is a *calcerr.OperationError.
func (c *Calculator) PerformOperation(ctx context.Context, a, b any) (string, error) {
	c.mu.Lock()

	if c.op == nil {
		c.mu.Unlock()
		return "", calcerr.Operationf("No operation set")
	}

	calc, err := c.compute(a, b)
	if err != nil {
		c.mu.Unlock()
		c.log.Debug().Err(err).Msg("operation rejected")
		return "", calcerr.WrapOperation("Operation failed", err)
	}

	c.pushUndo(history.NewMemento(c.history))
	c.redoStack = nil
	c.history = append(c.history, calc)
	c.evict()

	observers := slices.Clone(c.observers)
	c.mu.Unlock()

	c.log.Debug().Str("calculation", calc.String()).Msg("calculation recorded")

	// Observers run without the lock so they may call back into the
	// calculator (auto-save does).
	if err := notify(ctx, observers, calc); err != nil {
		return "", err
	}

	return calc.Result, nil
}

// compute runs the current operation. Callers must hold c.mu.
func (c *Calculator) compute(a, b any) (history.Calculation, error) {
	x, err := validate.Number(a, c.cfg)
	if err != nil {
		return history.Calculation{}, err
	}
	y, err := validate.Number(b, c.cfg)
	if err != nil {
		return history.Calculation{}, err
	}

	result, err := c.op.Execute(x, y)
	if err != nil {
		return history.Calculation{}, err
	}

	return history.New(c.op.String(), x, y, result), nil
}

// pushUndo adds m to the undo stack, dropping the oldest snapshot once the
// stack is deeper than the history limit. Callers must hold c.mu.
func (c *Calculator) pushUndo(m history.Memento) {
	c.undoStack = append(c.undoStack, m)
	if over := len(c.undoStack) - c.cfg.MaxHistorySize; over > 0 {
		c.undoStack = slices.Delete(c.undoStack, 0, over)
	}
}

// evict drops the oldest calculations beyond MaxHistorySize. Callers must
// hold c.mu.
func (c *Calculator) evict() {
	if over := len(c.history) - c.cfg.MaxHistorySize; over > 0 {
		c.history = slices.Delete(c.history, 0, over)
	}
}

// Undo restores the history to the state before the last change. It returns
// false when there is nothing to undo.
func (c *Calculator) Undo() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.undoStack) == 0 {
		return false
	}

	m := c.undoStack[len(c.undoStack)-1]
	c.undoStack = c.undoStack[:len(c.undoStack)-1]
	c.redoStack = append(c.redoStack, history.NewMemento(c.history))
	c.history = m.History()

	c.log.Debug().Int("history", len(c.history)).Msg("undo")
	return true
}

// Redo reapplies the last undone change. It returns false when there is
// nothing to redo.
func (c *Calculator) Redo() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.redoStack) == 0 {
		return false
	}

	m := c.redoStack[len(c.redoStack)-1]
	c.redoStack = c.redoStack[:len(c.redoStack)-1]
	c.pushUndo(history.NewMemento(c.history))
	c.history = m.History()

	c.log.Debug().Int("history", len(c.history)).Msg("redo")
	return true
}

// CanUndo reports whether Undo would succeed.
func (c *Calculator) CanUndo() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.undoStack) > 0
}

// CanRedo reports whether Redo would succeed.
func (c *Calculator) CanRedo() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.redoStack) > 0
}

// History returns a copy of the calculation history, oldest first.
func (c *Calculator) History() []history.Calculation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.history)
}

// ShowHistory returns one "Operation(a, b) = result" line per calculation.
func (c *Calculator) ShowHistory() []string {
	calcs := c.History()

	lines := make([]string, 0, len(calcs))
	for _, calc := range calcs {
		lines = append(lines, fmt.Sprintf("%s(%s, %s) = %s", calc.Operation, calc.Operand1, calc.Operand2, calc.Result))
	}
	return lines
}

// ClearHistory empties the history. The previous history can be restored
// with Undo.
func (c *Calculator) ClearHistory() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pushUndo(history.NewMemento(c.history))
	c.redoStack = nil
	c.history = nil

	c.log.Info().Msg("history cleared")
}

// AutoSaveEnabled reports whether automatic saves may write the store. It is
// false when auto_save is off, and after a failed LoadHistory until the next
// explicit SaveHistory.
func (c *Calculator) AutoSaveEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg.AutoSave && !c.unreadable
}

// SaveHistory writes the current history to the store, replacing whatever
// it held.
func (c *Calculator) SaveHistory(ctx context.Context) error {
	if c.store == nil {
		return calcerr.Operationf("Failed to save history: no history store configured")
	}

	calcs := c.History()
	if err := c.store.Save(ctx, calcs); err != nil {
		return &calcerr.OperationError{Msg: "Failed to save history", Err: err}
	}

	c.mu.Lock()
	c.unreadable = false
	c.mu.Unlock()

	c.log.Debug().Str("path", c.store.Path()).Int("count", len(calcs)).Msg("history saved")
	return nil
}

// LoadHistory replaces the history with the stored one, keeping only the
// newest MaxHistorySize entries. Both undo and redo stacks are reset. When
// the store cannot be read the history is left alone and automatic saves
// are paused, see AutoSaveEnabled.
func (c *Calculator) LoadHistory(ctx context.Context) error {
	if c.store == nil {
		return calcerr.Operationf("Failed to load history: no history store configured")
	}

	calcs, err := c.store.Load(ctx)
	if err != nil {
		c.mu.Lock()
		c.unreadable = true
		c.mu.Unlock()

		var opErr *calcerr.OperationError
		if errors.As(err, &opErr) {
			return err
		}
		return &calcerr.OperationError{Msg: "Failed to load history", Err: err}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.history = calcs
	c.evict()
	c.undoStack = nil
	c.redoStack = nil
	c.unreadable = false

	c.log.Info().Str("path", c.store.Path()).Int("count", len(c.history)).Msg("history loaded")
	return nil
}
