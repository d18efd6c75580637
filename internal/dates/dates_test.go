package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRelaxed_ISO(t *testing.T) {
	d, ok := ParseRelaxed("2024-02-29")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), d)
}

func TestParseRelaxed_DayFirst(t *testing.T) {
	currentYear := time.Now().UTC().Year()

	tests := []struct {
		name  string
		input string
		want  time.Time
		ok    bool
	}{
		{name: "day and month only", input: "19/8", want: time.Date(currentYear, time.August, 19, 0, 0, 0, 0, time.UTC), ok: true},
		{name: "dashes", input: "5-12", want: time.Date(currentYear, time.December, 5, 0, 0, 0, 0, time.UTC), ok: true},
		{name: "two digit year", input: "1/6/24", want: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC), ok: true},
		{name: "four digit year", input: "15/03/2023", want: time.Date(2023, time.March, 15, 0, 0, 0, 0, time.UTC), ok: true},
		{name: "embedded in text", input: "delivered on 7/4 by noon", want: time.Date(currentYear, time.April, 7, 0, 0, 0, 0, time.UTC), ok: true},
		{name: "upper case and padding", input: "  Return 02/11/25  ", want: time.Date(2025, time.November, 2, 0, 0, 0, 0, time.UTC), ok: true},
		{name: "no pattern", input: "not a date", ok: false},
		{name: "empty", input: "", ok: false},
		{name: "whitespace only", input: "   ", ok: false},
		{name: "month out of range", input: "10/13", ok: false},
		{name: "day out of range", input: "32/1", ok: false},
		{name: "non leap february", input: "29/2/2023", ok: false},
		{name: "three digit year rejected", input: "1/1/202", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := ParseRelaxed(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, d)
			} else {
				assert.True(t, d.IsZero())
			}
		})
	}
}

func TestParseRelaxed_LeapYear(t *testing.T) {
	d, ok := ParseRelaxed("29/2/24")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), d)
}
