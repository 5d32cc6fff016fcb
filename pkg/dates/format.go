package dates

import (
	"strconv"
	"strings"
	"time"
)

type token struct {
	name   string
	render func(t time.Time) string
}

func pad(n, width int) string {
	s := strconv.Itoa(n)
	for len(s) < width {
		s = "0" + s
	}
	return s
}

func hour12(t time.Time) int {
	h := t.Hour() % 12
	if h == 0 {
		return 12
	}
	return h
}

func ordinal(n int) string {
	suffix := "th"
	switch {
	case n%100 >= 11 && n%100 <= 13:
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return strconv.Itoa(n) + suffix
}

// tokens are matched in order, so longer tokens come before their prefixes.
var tokens = []token{
	{"%Y", func(t time.Time) string { return pad(t.Year(), 4) }},
	{"%M", func(t time.Time) string { return pad(int(t.Month()), 2) }},
	{"%D", func(t time.Time) string { return pad(t.Day(), 2) }},
	{"%h", func(t time.Time) string { return pad(t.Hour(), 2) }},
	{"%m", func(t time.Time) string { return pad(t.Minute(), 2) }},
	{"%s", func(t time.Time) string { return pad(t.Second(), 2) }},
	{"0hh12", func(t time.Time) string { return pad(hour12(t), 2) }},
	{"wYYYY", func(t time.Time) string { y, _ := t.ISOWeek(); return strconv.Itoa(y) }},
	{"0WW", func(t time.Time) string { _, w := t.ISOWeek(); return pad(w, 2) }},
	{"WW", func(t time.Time) string { _, w := t.ISOWeek(); return strconv.Itoa(w) }},
	{"YYYY", func(t time.Time) string { return strconv.Itoa(t.Year()) }},
	{"YY", func(t time.Time) string { return pad(t.Year()%100, 2) }},
	{"MMM", func(t time.Time) string { return t.Month().String() }},
	{"mmm", func(t time.Time) string { return t.Month().String()[:3] }},
	{"0MM", func(t time.Time) string { return pad(int(t.Month()), 2) }},
	{"MM", func(t time.Time) string { return strconv.Itoa(int(t.Month())) }},
	{"0DD", func(t time.Time) string { return pad(t.Day(), 2) }},
	{"DDD", func(t time.Time) string { return t.Weekday().String() }},
	{"ddd", func(t time.Time) string { return t.Weekday().String()[:3] }},
	{"DDth", func(t time.Time) string { return ordinal(t.Day()) }},
	{"DD", func(t time.Time) string { return strconv.Itoa(t.Day()) }},
	{"0hh", func(t time.Time) string { return pad(t.Hour(), 2) }},
	{"hh12", func(t time.Time) string { return strconv.Itoa(hour12(t)) }},
	{"hh", func(t time.Time) string { return strconv.Itoa(t.Hour()) }},
	{"0mm", func(t time.Time) string { return pad(t.Minute(), 2) }},
	{"mm", func(t time.Time) string { return strconv.Itoa(t.Minute()) }},
	{"0ss", func(t time.Time) string { return pad(t.Second(), 2) }},
	{"ss", func(t time.Time) string { return strconv.Itoa(t.Second()) }},
	{"0XXX", func(t time.Time) string { return pad(t.Nanosecond()/int(time.Millisecond), 3) }},
	{"XXX", func(t time.Time) string { return strconv.Itoa(t.Nanosecond() / int(time.Millisecond)) }},
	{"am", func(t time.Time) string { return ampm(t, "am", "pm") }},
	{"pm", func(t time.Time) string { return ampm(t, "am", "pm") }},
	{"AM", func(t time.Time) string { return ampm(t, "AM", "PM") }},
	{"PM", func(t time.Time) string { return ampm(t, "AM", "PM") }},
	{"TZD", func(t time.Time) string { return t.Format("-07:00") }},
}

func ampm(t time.Time, am, pm string) string {
	if t.Hour() < 12 {
		return am
	}
	return pm
}

// Format renders t through a date template such as "YYYY-0MM-0DD" or "%Y-%M-%D".
// A leading "[UTC]" converts t to UTC first and a backslash emits the next
// character literally.
func Format(t time.Time, template string) string {
	if rest, ok := strings.CutPrefix(template, "[UTC]"); ok {
		t = t.UTC()
		template = rest
	}

	var sb strings.Builder
	for i := 0; i < len(template); {
		if template[i] == '\\' && i+1 < len(template) {
			sb.WriteByte(template[i+1])
			i += 2
			continue
		}
		matched := false
		for _, tok := range tokens {
			if strings.HasPrefix(template[i:], tok.name) {
				sb.WriteString(tok.render(t))
				i += len(tok.name)
				matched = true
				break
			}
		}
		if !matched {
			sb.WriteByte(template[i])
			i++
		}
	}
	return sb.String()
}
