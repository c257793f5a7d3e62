// Package jsonfile stores calculation history as a single JSON memento
// document.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/hay-kot/abacus/internal/core/calcerr"
	"github.com/hay-kot/abacus/internal/core/history"
	"github.com/hay-kot/abacus/pkg/fsutil"
)

// HistoryStore implements history.Store on a file holding
// {"history": [...], "timestamp": "..."}.
type HistoryStore struct {
	path string
	mu   sync.RWMutex
}

func NewHistoryStore(path string) *HistoryStore {
	return &HistoryStore{path: path}
}

func (s *HistoryStore) Path() string { return s.path }

// Load returns the persisted history, oldest first. A missing or empty file
// is an empty history.
func (s *HistoryStore) Load(ctx context.Context) ([]history.Calculation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	data, err := os.ReadFile(s.path)
	s.mu.RUnlock()

	switch {
	case os.IsNotExist(err):
		return []history.Calculation{}, nil
	case err != nil:
		return nil, fmt.Errorf("read history file: %w", err)
	case len(data) == 0:
		return []history.Calculation{}, nil
	}

	var snapshot history.Memento
	if err := json.Unmarshal(data, &snapshot); err != nil {
		// Record-level failures already carry the calculator's error type.
		var opErr *calcerr.OperationError
		if errors.As(err, &opErr) {
			return nil, err
		}
		return nil, &calcerr.OperationError{Msg: "Invalid calculation data", Err: err}
	}

	return snapshot.History(), nil
}

// Save replaces the persisted history with a snapshot of calcs.
func (s *HistoryStore) Save(ctx context.Context, calcs []history.Calculation) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := fsutil.WriteAtomic(s.path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(history.NewMemento(calcs))
	})
	if err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}
