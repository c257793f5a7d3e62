package history

import "context"

// Store defines persistence operations for calculation history.
type Store interface {
	// Load returns the persisted history in order, oldest first. A missing
	// file yields an empty history.
	Load(ctx context.Context) ([]Calculation, error)
	// Save replaces the persisted history. An empty history still writes a
	// valid, empty document.
	Save(ctx context.Context, calcs []Calculation) error
	// Path returns the backing file location.
	Path() string
}
