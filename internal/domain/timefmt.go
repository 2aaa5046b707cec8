package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var timeUnits = []struct {
	name    string
	seconds float64
}{
	{"year", 12 * 4 * 7 * 24 * 3600},
	{"month", 4 * 7 * 24 * 3600},
	{"week", 7 * 24 * 3600},
	{"day", 24 * 3600},
	{"hour", 3600},
	{"minute", 60},
	{"second", 1},
}

// FormatElapsed renders a duration with at most two units, e.g. "2 hours, 7.50 minutes".
func FormatElapsed(d time.Duration) string {
	elapsed := math.Abs(d.Seconds())
	if elapsed < 1 {
		return fmt.Sprintf("%.2fs", elapsed)
	}

	var parts []string
	for _, u := range timeUnits {
		quotient := math.Floor(elapsed / u.seconds)
		if quotient < 1 {
			continue
		}
		if len(parts) == 0 {
			parts = append(parts, formatUnit(strconv.FormatFloat(quotient, 'f', -1, 64), quotient, u.name))
			elapsed -= quotient * u.seconds
			continue
		}
		final := elapsed / u.seconds
		value := strconv.FormatFloat(final, 'f', -1, 64)
		if elapsed-quotient*u.seconds != 0 {
			value = strconv.FormatFloat(final, 'f', 2, 64)
		}
		parts = append(parts, formatUnit(value, final, u.name))
		break
	}
	return strings.Join(parts, ", ")
}

func formatUnit(value string, n float64, unit string) string {
	if n > 1 {
		return value + " " + unit + "s"
	}
	return value + " " + unit
}

// FormatCountdown renders a wait as HH:MM:SS.ss.
func FormatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := d.Seconds()
	hours := math.Floor(total / 3600)
	minutes := math.Floor((total - hours*3600) / 60)
	seconds := total - hours*3600 - minutes*60
	return fmt.Sprintf("%02.0f:%02.0f:%05.2f", hours, minutes, seconds)
}
