package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverlaps(t *testing.T) {
	d := func(day int) Date { return NewDate(2026, time.March, day) }

	tests := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd     Date
		want                           bool
	}{
		{"identical ranges", d(1), d(5), d(1), d(5), true},
		{"contained range", d(1), d(10), d(3), d(5), true},
		{"partial overlap", d(1), d(5), d(4), d(8), true},
		{"shared single boundary day", d(1), d(5), d(5), d(9), true},
		{"single-day ranges on same day", d(3), d(3), d(3), d(3), true},
		{"adjacent but disjoint", d(1), d(5), d(6), d(9), false},
		{"fully disjoint", d(1), d(3), d(10), d(12), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Overlaps(tc.aStart, tc.aEnd, tc.bStart, tc.bEnd))
			// Overlap is symmetric in the two ranges.
			assert.Equal(t, tc.want, Overlaps(tc.bStart, tc.bEnd, tc.aStart, tc.aEnd))
		})
	}
}

func TestParseDateAndString(t *testing.T) {
	date, err := ParseDate("2026-03-15")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-15", date.String())

	_, err = ParseDate("15/03/2026")
	assert.Error(t, err)
}

func TestDateJSONRoundTrip(t *testing.T) {
	type payload struct {
		Start Date `json:"start"`
	}

	var decoded payload
	require.NoError(t, json.Unmarshal([]byte(`{"start":"2026-03-15"}`), &decoded))
	assert.Equal(t, NewDate(2026, time.March, 15), decoded.Start)

	encoded, err := json.Marshal(decoded)
	require.NoError(t, err)
	assert.JSONEq(t, `{"start":"2026-03-15"}`, string(encoded))
}

func TestDateScan(t *testing.T) {
	var date Date
	require.NoError(t, date.Scan(time.Date(2026, time.March, 15, 13, 45, 0, 0, time.UTC)))
	assert.Equal(t, "2026-03-15", date.String())

	require.NoError(t, date.Scan([]byte("2026-04-01")))
	assert.Equal(t, "2026-04-01", date.String())

	require.NoError(t, date.Scan(nil))
	assert.True(t, date.IsZero())

	assert.Error(t, date.Scan(42))
}

func TestDateOrdering(t *testing.T) {
	early := NewDate(2026, time.March, 1)
	late := NewDate(2026, time.March, 2)

	assert.True(t, early.Before(late))
	assert.True(t, late.After(early))
	assert.False(t, early.Before(early))
	assert.False(t, early.After(early))
}
