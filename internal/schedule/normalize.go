// Package schedule turns free-text date and time fragments from the voice
// assistant into canonical calendar slots. Normalization is a pure
// function of the fragments and the reference "now": ambiguous weekday or
// month-day phrases resolve to the nearest occurrence at or after now.
// A fragment that cannot be parsed passes through verbatim so the
// conversation is never blocked; the confidence flags tell downstream
// code which fields were actually normalized.
package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Result is the outcome of normalizing one (date, time) phrase pair.
type Result struct {
	// Date is ISO "YYYY-MM-DD" when DateParsed, otherwise the raw phrase.
	Date string
	// Time is 24-hour "HH:MM" when TimeParsed, otherwise the raw phrase.
	Time string
	// Spoken is the human-readable echo for voice confirmation, e.g.
	// "Monday, November 15 at 2:00 PM".
	Spoken string
	// DateParsed and TimeParsed report whether each field holds a real
	// normalization or an unparsed passthrough.
	DateParsed bool
	TimeParsed bool
}

// Normalize resolves the phrase pair against now. An empty date phrase
// defaults to now's date. It never fails: unparseable fragments are
// passed through verbatim with their confidence flag unset.
func Normalize(datePhrase, timePhrase string, now time.Time) Result {
	var res Result

	day, dateOK := parseDate(datePhrase, now)
	hour, minute, timeOK := parseTime(timePhrase)

	if dateOK {
		res.Date = day.Format("2006-01-02")
		res.DateParsed = true
	} else {
		res.Date = strings.TrimSpace(datePhrase)
	}

	if timeOK {
		res.Time = fmt.Sprintf("%02d:%02d", hour, minute)
		res.TimeParsed = true
	} else {
		res.Time = strings.TrimSpace(timePhrase)
	}

	res.Spoken = speak(res, day, hour, minute)
	return res
}

func speak(res Result, day time.Time, hour, minute int) string {
	var datePart, timePart string

	if res.DateParsed {
		datePart = fmt.Sprintf("%s, %s %d", day.Weekday(), day.Month(), day.Day())
	} else {
		datePart = res.Date
	}

	if res.TimeParsed {
		clock := time.Date(2000, 1, 1, hour, minute, 0, 0, time.UTC)
		timePart = clock.Format("3:04 PM")
	} else {
		timePart = res.Time
	}

	switch {
	case datePart != "" && timePart != "":
		return datePart + " at " + timePart
	case datePart != "":
		return datePart
	default:
		return timePart
	}
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

var months = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may":  time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

var ordinalSuffix = regexp.MustCompile(`^(\d{1,2})(st|nd|rd|th)?$`)

func parseDate(phrase string, now time.Time) (time.Time, bool) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	cleaned := strings.ToLower(strings.TrimSpace(phrase))
	cleaned = strings.ReplaceAll(cleaned, ",", " ")
	cleaned = strings.TrimPrefix(cleaned, "on ")
	cleaned = strings.Join(strings.Fields(cleaned), " ")

	if cleaned == "" {
		return today, true
	}

	switch cleaned {
	case "today", "tonight":
		return today, true
	case "tomorrow":
		return today.AddDate(0, 0, 1), true
	case "day after tomorrow", "the day after tomorrow":
		return today.AddDate(0, 0, 2), true
	}

	// Weekday names, optionally prefixed with "this" or "next". A bare or
	// "this" weekday resolves to the nearest occurrence at or after today;
	// "next" on today's own weekday pushes a full week out.
	forceAhead := false
	wd := cleaned
	if rest, ok := strings.CutPrefix(wd, "next "); ok {
		wd, forceAhead = rest, true
	} else if rest, ok := strings.CutPrefix(wd, "this "); ok {
		wd = rest
	}
	if target, ok := weekdays[wd]; ok {
		delta := (int(target) - int(today.Weekday()) + 7) % 7
		if delta == 0 && forceAhead {
			delta = 7
		}
		return today.AddDate(0, 0, delta), true
	}

	if d, err := time.ParseInLocation("2006-01-02", cleaned, now.Location()); err == nil {
		return d, true
	}

	if d, ok := parseNumericDate(cleaned, today); ok {
		return d, true
	}
	if d, ok := parseMonthDay(cleaned, today); ok {
		return d, true
	}

	return time.Time{}, false
}

// parseNumericDate handles "M/D" and "M/D/YYYY". A yearless date that has
// already passed rolls into next year.
func parseNumericDate(s string, today time.Time) (time.Time, bool) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 && len(parts) != 3 {
		return time.Time{}, false
	}
	month, err1 := strconv.Atoi(parts[0])
	day, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	year := 0
	if len(parts) == 3 {
		year, err1 = strconv.Atoi(parts[2])
		if err1 != nil {
			return time.Time{}, false
		}
		if year < 100 {
			year += 2000
		}
	}
	return buildDate(year, time.Month(month), day, today)
}

// parseMonthDay handles "november 15", "november 15th 2027" and
// "15 november" forms.
func parseMonthDay(s string, today time.Time) (time.Time, bool) {
	fields := strings.Fields(s)
	if len(fields) != 2 && len(fields) != 3 {
		return time.Time{}, false
	}

	var month time.Month
	var day, year int
	var haveMonth, haveDay bool

	for i, f := range fields {
		if m, ok := months[f]; ok && !haveMonth {
			month, haveMonth = m, true
			continue
		}
		if m := ordinalSuffix.FindStringSubmatch(f); m != nil && !haveDay {
			day, _ = strconv.Atoi(m[1])
			haveDay = true
			continue
		}
		// Trailing 4-digit year only.
		if i == 2 {
			if y, err := strconv.Atoi(f); err == nil && y >= 1000 {
				year = y
				continue
			}
		}
		return time.Time{}, false
	}
	if !haveMonth || !haveDay || day < 1 || day > 31 {
		return time.Time{}, false
	}
	return buildDate(year, month, day, today)
}

// buildDate validates the calendar day and applies the prefer-future roll
// for yearless dates.
func buildDate(year int, month time.Month, day int, today time.Time) (time.Time, bool) {
	rolled := year == 0
	if year == 0 {
		year = today.Year()
	}
	d := time.Date(year, month, day, 0, 0, 0, 0, today.Location())
	if d.Month() != month || d.Day() != day {
		return time.Time{}, false // e.g. February 30 overflow
	}
	if rolled && d.Before(today) {
		d = time.Date(year+1, month, day, 0, 0, 0, 0, today.Location())
	}
	return d, true
}

var clockPattern = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?\s*(am|pm)?$`)

func parseTime(phrase string) (hour, minute int, ok bool) {
	cleaned := strings.ToLower(strings.TrimSpace(phrase))
	cleaned = strings.ReplaceAll(cleaned, "a.m.", "am")
	cleaned = strings.ReplaceAll(cleaned, "p.m.", "pm")
	cleaned = strings.TrimSuffix(cleaned, " o'clock")

	meridiem := ""
	for suffix, m := range map[string]string{
		"in the morning":   "am",
		"in the afternoon": "pm",
		"in the evening":   "pm",
		"at night":         "pm",
	} {
		if rest, found := strings.CutSuffix(cleaned, " "+suffix); found {
			cleaned, meridiem = rest, m
			break
		}
	}
	cleaned = strings.TrimSpace(cleaned)

	switch cleaned {
	case "":
		return 0, 0, false
	case "noon", "midday":
		return 12, 0, true
	case "midnight":
		return 0, 0, true
	}

	if rest, found := strings.CutPrefix(cleaned, "half past "); found {
		if h, _, hOK := parseTime(rest); hOK {
			return h, 30, true
		}
		return 0, 0, false
	}
	if rest, found := strings.CutPrefix(cleaned, "quarter past "); found {
		if h, _, hOK := parseTime(rest); hOK {
			return h, 15, true
		}
		return 0, 0, false
	}

	m := clockPattern.FindStringSubmatch(cleaned)
	if m == nil {
		return 0, 0, false
	}
	hour, _ = strconv.Atoi(m[1])
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	if m[3] != "" {
		meridiem = m[3]
	}
	if minute > 59 {
		return 0, 0, false
	}

	switch meridiem {
	case "am":
		if hour > 12 {
			return 0, 0, false
		}
		hour = hour % 12
	case "pm":
		if hour > 12 {
			return 0, 0, false
		}
		hour = hour%12 + 12
	default:
		if hour > 23 {
			return 0, 0, false
		}
		// Callers rarely book before 8 AM: a bare low hour means the
		// afternoon ("at 3" is 15:00, not 03:00).
		if hour >= 1 && hour <= 7 {
			hour += 12
		}
	}
	return hour, minute, true
}
