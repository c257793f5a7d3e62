// Package csvfile provides a CSV file-based calculation history store.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"

	"github.com/hay-kot/abacus/internal/core/calcerr"
	"github.com/hay-kot/abacus/internal/core/history"
	"github.com/hay-kot/abacus/pkg/fsutil"
)

// HistoryStore implements history.Store using a CSV file with one row per
// calculation, in history order, under a header of history.Columns.
type HistoryStore struct {
	path string
	enc  encoding.Encoding
	mu   sync.RWMutex
}

// NewHistoryStore creates a new CSV history store at the given path. The file
// is read and written in enc; a nil enc means UTF-8.
func NewHistoryStore(path string, enc encoding.Encoding) *HistoryStore {
	if enc == nil {
		enc = unicode.UTF8
	}
	return &HistoryStore{path: path, enc: enc}
}

// Path returns the backing file location.
func (s *HistoryStore) Path() string {
	return s.path
}

// Load returns the persisted history, oldest first.
func (s *HistoryStore) Load(ctx context.Context) ([]history.Calculation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []history.Calculation{}, nil
		}
		return nil, fmt.Errorf("open history file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return decode(ctx, s.enc.NewDecoder().Reader(f))
}

// Save replaces the persisted history with calcs. An empty history writes a
// header-only file.
func (s *HistoryStore) Save(ctx context.Context, calcs []history.Calculation) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := fsutil.WriteAtomic(s.path, func(w io.Writer) error {
		tw := s.enc.NewEncoder().Writer(w)
		if err := encode(tw, calcs); err != nil {
			return err
		}
		if c, ok := tw.(io.Closer); ok {
			return c.Close()
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

func encode(w io.Writer, calcs []history.Calculation) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(history.Columns); err != nil {
		return fmt.Errorf("write history header: %w", err)
	}
	for _, c := range calcs {
		if err := cw.Write(c.Record().Fields()); err != nil {
			return fmt.Errorf("write history row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}

func decode(ctx context.Context, r io.Reader) ([]history.Calculation, error) {
	invalid := func(err error) error {
		return &calcerr.OperationError{Msg: "Invalid calculation data", Err: err}
	}

	cr := csv.NewReader(r)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []history.Calculation{}, nil
	}
	if err != nil {
		return nil, invalid(fmt.Errorf("header: %w", err))
	}

	// Columns are located by name so files with reordered or extra columns
	// still load.
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}
	for _, col := range history.Columns {
		if _, ok := index[col]; !ok {
			return nil, invalid(fmt.Errorf("missing column %q", col))
		}
	}

	calcs := []history.Calculation{}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, invalid(err)
		}

		field := func(col string) string { return row[index[col]] }

		calc, err := history.FromRecord(history.Record{
			Operation: field("operation"),
			Operand1:  field("operand1"),
			Operand2:  field("operand2"),
			Result:    field("result"),
			Timestamp: field("timestamp"),
		})
		if err != nil {
			return nil, err
		}
		calcs = append(calcs, calc)
	}

	return calcs, nil
}
