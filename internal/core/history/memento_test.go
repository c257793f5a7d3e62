package history

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemento_SnapshotIsIsolated(t *testing.T) {
	h := []Calculation{
		New("Addition", dec("10"), dec("5"), "15"),
		New("Subtraction", dec("20"), dec("3"), "17"),
	}

	m := NewMemento(h)

	h[0] = New("Multiplication", dec("1"), dec("1"), "1")

	got := m.History()
	require.Len(t, got, 2)
	assert.Equal(t, "Addition", got[0].Operation)

	got[1] = Calculation{}
	assert.Equal(t, "Subtraction", m.History()[1].Operation, "History returns a copy")
	assert.False(t, m.Timestamp().IsZero())
}

func TestMemento_Empty(t *testing.T) {
	m := NewMemento(nil)
	assert.Equal(t, 0, m.Len())
	assert.Empty(t, m.History())

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"history":[]`)
}

func TestMemento_JSONRoundTrip(t *testing.T) {
	m := NewMemento([]Calculation{
		New("Addition", dec("10"), dec("5"), "15"),
		New("Percentage", dec("1"), dec("3"), "33.33%"),
	})

	data, err := json.Marshal(m)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "history")
	assert.Contains(t, raw, "timestamp")

	var got Memento
	require.NoError(t, json.Unmarshal(data, &got))

	require.Equal(t, 2, got.Len())
	assert.True(t, got.Timestamp().Equal(m.Timestamp()))
	for i, calc := range m.History() {
		assert.True(t, calc.Equal(got.History()[i]), "entry %d", i)
	}
}

func TestMemento_UnmarshalRejectsBadData(t *testing.T) {
	tests := map[string]string{
		"bad timestamp":   `{"history":[],"timestamp":"never"}`,
		"bad calculation": `{"history":[{"operation":"Addition","operand1":"x","operand2":"1","result":"1","timestamp":"2024-01-01T00:00:00Z"}],"timestamp":"2024-01-01T00:00:00Z"}`,
	}

	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			var m Memento
			assert.Error(t, json.Unmarshal([]byte(input), &m))
		})
	}
}
