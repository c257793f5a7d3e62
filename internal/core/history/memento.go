package history

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"
)

// Memento is a frozen snapshot of the calculation history used for undo and
// redo. The snapshot slice is private so holders cannot mutate it.
type Memento struct {
	history   []Calculation
	timestamp time.Time
}

// NewMemento snapshots a copy of h at the current time.
func NewMemento(h []Calculation) Memento {
	return Memento{
		history:   slices.Clone(h),
		timestamp: time.Now(),
	}
}

// History returns a copy of the snapshot.
func (m Memento) History() []Calculation {
	return slices.Clone(m.history)
}

// Len returns the number of calculations in the snapshot.
func (m Memento) Len() int {
	return len(m.history)
}

// Timestamp returns when the snapshot was taken.
func (m Memento) Timestamp() time.Time {
	return m.timestamp
}

// mementoDoc is the serialised form: {"history": [...], "timestamp": "..."}.
type mementoDoc struct {
	History   []Calculation `json:"history"`
	Timestamp string        `json:"timestamp"`
}

func (m Memento) MarshalJSON() ([]byte, error) {
	h := m.history
	if h == nil {
		h = []Calculation{}
	}
	return json.Marshal(mementoDoc{
		History:   h,
		Timestamp: m.timestamp.Format(time.RFC3339Nano),
	})
}

func (m *Memento) UnmarshalJSON(data []byte) error {
	var doc mementoDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	ts, err := parseTimestamp(doc.Timestamp)
	if err != nil {
		return fmt.Errorf("memento: %w", err)
	}

	m.history = doc.History
	m.timestamp = ts
	return nil
}
