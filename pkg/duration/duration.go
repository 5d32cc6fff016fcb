// Package duration renders the span between two canonical dates as text.
package duration

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize/english"

	"github.com/aretw0/loamcal/pkg/dates"
)

const day = 24 * time.Hour

// Between parses two canonical dates and returns end minus start.
func Between(start, end string) (time.Duration, bool) {
	s, ok := dates.Parse(start)
	if !ok {
		return 0, false
	}
	e, ok := dates.Parse(end)
	if !ok {
		return 0, false
	}
	return e.Sub(s), true
}

// Format returns the human readable span between two canonical dates,
// e.g. "1 hour 30 minutes". Unparseable input gives "".
func Format(start, end string) string {
	d, ok := Between(start, end)
	if !ok {
		return ""
	}
	return Text(d)
}

// Text renders d in days, hours and minutes. Seconds are dropped.
func Text(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}

	days := int(d / day)
	d -= time.Duration(days) * day
	hours := int(d / time.Hour)
	d -= time.Duration(hours) * time.Hour
	minutes := int(d / time.Minute)

	var parts []string
	if days > 0 {
		parts = append(parts, english.Plural(days, "day", ""))
	}
	if hours > 0 {
		parts = append(parts, english.Plural(hours, "hour", ""))
	}
	if minutes > 0 || len(parts) == 0 {
		parts = append(parts, english.Plural(minutes, "minute", ""))
	}
	return sign + strings.Join(parts, " ")
}
