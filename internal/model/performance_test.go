package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	for name, tc := range map[string]struct {
		in   string
		want int
	}{
		"hours minutes seconds": {in: "00:03:50", want: 230},
		"hours and minutes":     {in: "01:30", want: 5400},
		"long session":          {in: "25:00:01", want: 90001},
		"longest session":       {in: "999:59:59", want: 3599999},
		"surrounding spaces":    {in: " 00:00:05 ", want: 5},
	} {
		t.Run(name, func(t *testing.T) {
			got, err := ParseClock(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseClockRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "230", "00:60:00", "00:00:61", "aa:bb", "1:2:3:4", "-1:00", "00::10",
		"1000:00:00", "99999999999999999:00:00", "99999999999999999999:00"} {
		_, err := ParseClock(in)
		assert.ErrorIs(t, err, ErrInvalidClock, in)
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "00:03:50", FormatClock(230))
	assert.Equal(t, "01:00:00", FormatClock(3600))
	assert.Equal(t, "00:00:00", FormatClock(-5))

	seconds, err := ParseClock(FormatClock(4321))
	require.NoError(t, err)
	assert.Equal(t, 4321, seconds)
}
