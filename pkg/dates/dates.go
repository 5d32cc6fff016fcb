// Package dates implements the canonical record date format and date templates.
//
// Canonical dates are UTC timestamps written as YYYYMMDDhhmmssXXX, the
// format records store in their startDate and endDate fields.
package dates

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CanonicalLength is the number of digits of a fully specified canonical date.
const CanonicalLength = 17

// Stringify encodes t in the canonical date format.
func Stringify(t time.Time) string {
	u := t.UTC()
	return fmt.Sprintf("%04d%02d%02d%02d%02d%02d%03d",
		u.Year(), int(u.Month()), u.Day(), u.Hour(), u.Minute(), u.Second(), u.Nanosecond()/int(time.Millisecond))
}

// Parse decodes a canonical date. Between 8 and 17 digits are accepted, missing
// trailing components are zero. RFC 3339 strings are accepted as a fallback.
// The result is in UTC.
func Parse(s string) (time.Time, bool) {
	t, ok := ParseInZone(s)
	return t.UTC(), ok
}

// ParseInZone is Parse without the conversion to UTC: an RFC 3339 string keeps
// its offset, so calendar dates read from it stay those of the writer.
func ParseInZone(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if isDigits(s) {
		return parseCanonical(s)
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseCanonical(s string) (time.Time, bool) {
	if len(s) < 8 || len(s) > CanonicalLength {
		return time.Time{}, false
	}
	// Widths of year, month, day, hour, minute, second, millisecond.
	widths := [...]int{4, 2, 2, 2, 2, 2, 3}
	var parts [7]int
	pos := 0
	for i, w := range widths {
		if pos >= len(s) {
			break
		}
		end := min(pos+w, len(s))
		n, err := strconv.Atoi(s[pos:end])
		if err != nil {
			return time.Time{}, false
		}
		if i == 6 {
			// A short millisecond field is a leading fraction: "5" is 500ms.
			for k := end - pos; k < w; k++ {
				n *= 10
			}
		}
		parts[i] = n
		pos = end
	}
	if parts[1] < 1 || parts[1] > 12 || parts[2] < 1 || parts[2] > 31 ||
		parts[3] > 23 || parts[4] > 59 || parts[5] > 60 {
		return time.Time{}, false
	}
	t := time.Date(parts[0], time.Month(parts[1]), parts[2], parts[3], parts[4], parts[5],
		parts[6]*int(time.Millisecond), time.UTC)
	return t, true
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
