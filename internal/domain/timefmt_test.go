package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatElapsed(t *testing.T) {
	const (
		second = time.Second
		minute = time.Minute
		hour   = time.Hour
		day    = 24 * hour
		week   = 7 * day
		month  = 4 * week
		year   = 12 * month
	)

	tests := []struct {
		want string
		d    time.Duration
	}{
		{"0.01s", second / 100},
		{"1 second", second},
		{"1 minute, 3 seconds", minute + 3*second},
		{"2 minutes, 3 seconds", 2*minute + 3*second},
		{"2 hours, 3 seconds", 2*hour + 3*second},
		{"2 hours, 7.50 minutes", 2*hour + 7*minute + 30*second},
		{"2 days, 7.50 minutes", 2*day + 7*minute + 30*second},
		{"2 days, 7.50 hours", 2*day + 7*hour + 30*minute},
		{"2 weeks, 7.50 minutes", 2*week + 7*minute + 30*second},
		{"2 weeks, 4.50 days", 2*week + 4*day + 12*hour},
		{"2 months, 7.50 minutes", 2*month + 7*minute + 30*second},
		{"2 months, 2.50 weeks", 2*month + 2*week + 3*day + 12*hour},
		{"2 years, 7.50 minutes", 2*year + 7*minute + 30*second},
		{"2 years, 8.50 months", 2*year + 8*month + 2*week},
		{"1 year", year},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatElapsed(tt.d))
		})
	}
}

func TestFormatCountdown(t *testing.T) {
	assert.Equal(t, "00:00:00.00", FormatCountdown(0))
	assert.Equal(t, "00:00:00.00", FormatCountdown(-time.Second))
	assert.Equal(t, "00:00:05.00", FormatCountdown(5*time.Second))
	assert.Equal(t, "01:02:03.50", FormatCountdown(time.Hour+2*time.Minute+3500*time.Millisecond))
}
