package booking

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverlaps(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b [2]string
		want bool
	}{
		{"partial overlap", [2]string{"09:00", "10:30"}, [2]string{"10:00", "11:00"}, true},
		{"touching end to start", [2]string{"09:00", "10:00"}, [2]string{"10:00", "11:00"}, false},
		{"touching start to end", [2]string{"10:00", "11:00"}, [2]string{"09:00", "10:00"}, false},
		{"contained", [2]string{"09:00", "12:00"}, [2]string{"10:00", "10:15"}, true},
		{"identical", [2]string{"14:00", "15:00"}, [2]string{"14:00", "15:00"}, true},
		{"disjoint", [2]string{"08:00", "09:00"}, [2]string{"13:00", "14:00"}, false},
		{"one minute overlap", [2]string{"08:00", "09:01"}, [2]string{"09:00", "10:00"}, true},
		{"full day", [2]string{"00:00", "24:00"}, [2]string{"23:59", "24:00"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a := mustWindow(t, tt.a[0], tt.a[1])
			b := mustWindow(t, tt.b[0], tt.b[1])

			assert.Equal(t, tt.want, Overlaps(a, b))
			assert.Equal(t, Overlaps(a, b), Overlaps(b, a), "overlap must be symmetric")
		})
	}
}

func TestOverlapsSymmetricExhaustive(t *testing.T) {
	t.Parallel()

	// every window on a 15 minute grid between 08:00 and 11:00
	var windows []Window
	for s := Clock(8 * 60); s < 11*60; s += 15 {
		for e := s + 15; e <= 11*60; e += 15 {
			windows = append(windows, Window{Start: s, End: e})
		}
	}

	for _, a := range windows {
		for _, b := range windows {
			require.Equal(t, Overlaps(a, b), Overlaps(b, a), "%s vs %s", a, b)
			if a.End == b.Start || b.End == a.Start {
				require.False(t, Overlaps(a, b), "touching %s and %s", a, b)
			}
		}
	}
}

func TestNewWindowValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		start, end string
		field      string
	}{
		{"end before start", "10:00", "09:00", "end_time"},
		{"empty window", "10:00", "10:00", "end_time"},
		{"bad start", "9am", "10:00", "start_time"},
		{"bad end", "09:00", "25:00", "end_time"},
		{"start at end of day", "24:00", "24:00", "start_time"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewWindow(tt.start, tt.end)
			require.Error(t, err)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestParseClock(t *testing.T) {
	t.Parallel()

	c, err := ParseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, Clock(570), c)
	assert.Equal(t, "09:30", c.String())

	c, err = ParseClock("14:05:00")
	require.NoError(t, err)
	assert.Equal(t, "14:05", c.String())

	c, err = ParseClock("24:00")
	require.NoError(t, err)
	assert.Equal(t, EndOfDay, c)

	_, err = ParseClock("noon")
	assert.Error(t, err)
}

func TestDateOrderingAndResolution(t *testing.T) {
	t.Parallel()

	a := mustDate(t, "2024-03-01")
	b := mustDate(t, "2024-03-08")

	assert.True(t, a.Before(b))
	assert.False(t, b.Before(a))
	assert.Equal(t, 0, a.Compare(mustDate(t, "2024-03-01")))
	assert.Equal(t, "2024-03-01", a.String())

	_, err := ParseDate("2024-3-1")
	assert.Error(t, err)

	start := a.At(Clock(9*60), nil)
	assert.Equal(t, 9, start.Hour())
	end := a.At(EndOfDay, nil)
	assert.Equal(t, 2, end.Day())
}
