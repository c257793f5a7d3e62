package calculator

import (
	"context"
	"slices"

	"github.com/rs/zerolog"

	"github.com/hay-kot/abacus/internal/core/calcerr"
	"github.com/hay-kot/abacus/internal/core/history"
)

// Observer is notified after each calculation is recorded. Observers are
// compared by identity, so implementations should be pointer types.
type Observer interface {
	Update(ctx context.Context, calc history.Calculation) error
}

// AddObserver registers o. Observers are notified in registration order.
func (c *Calculator) AddObserver(o Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, o)
}

// RemoveObserver unregisters o. It returns ErrObserverNotFound when o was
// never added.
func (c *Calculator) RemoveObserver(o Observer) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := slices.Index(c.observers, o)
	if i < 0 {
		return ErrObserverNotFound
	}
	c.observers = slices.Delete(c.observers, i, i+1)
	return nil
}

// NotifyObservers calls every registered observer with calc. The first
// failure stops notification and is returned as a *calcerr.OperationError.
func (c *Calculator) NotifyObservers(ctx context.Context, calc history.Calculation) error {
	c.mu.Lock()
	observers := slices.Clone(c.observers)
	c.mu.Unlock()

	return notify(ctx, observers, calc)
}

func notify(ctx context.Context, observers []Observer, calc history.Calculation) error {
	for _, o := range observers {
		if err := o.Update(ctx, calc); err != nil {
			return calcerr.WrapOperation("Observer failed", err)
		}
	}
	return nil
}

// LoggingObserver writes one log line per calculation.
type LoggingObserver struct {
	log zerolog.Logger
}

func NewLoggingObserver(log zerolog.Logger) *LoggingObserver {
	return &LoggingObserver{log: log}
}

func (o *LoggingObserver) Update(_ context.Context, calc history.Calculation) error {
	o.log.Info().
		Str("operation", calc.Operation).
		Str("operand1", calc.Operand1.String()).
		Str("operand2", calc.Operand2.String()).
		Str("result", calc.Result).
		Msg("calculation performed")
	return nil
}

// AutoSaveObserver persists the history after every calculation while
// Calculator.AutoSaveEnabled holds.
type AutoSaveObserver struct {
	calc *Calculator
}

func NewAutoSaveObserver(c *Calculator) *AutoSaveObserver {
	return &AutoSaveObserver{calc: c}
}

func (o *AutoSaveObserver) Update(ctx context.Context, _ history.Calculation) error {
	if !o.calc.AutoSaveEnabled() {
		o.calc.log.Debug().Msg("auto-save skipped")
		return nil
	}
	if err := o.calc.SaveHistory(ctx); err != nil {
		return err
	}
	o.calc.log.Debug().Msg("history auto-saved")
	return nil
}
