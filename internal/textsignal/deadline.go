package textsignal

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	quarterPattern  = regexp.MustCompile(`(?i)Q([1-4])\s+(\d{4})`)
	monthPattern    = regexp.MustCompile(`(?i)(\w+)\s+(\d{4})`)
	halfYearPattern = regexp.MustCompile(`(?i)(?:H([12])|(first|second)\s+half)\s+(?:of\s+)?(\d{4})`)
	mdyPattern      = regexp.MustCompile(`(\d{1,2})[/-](\d{1,2})[/-](\d{4})`)
	ymdPattern      = regexp.MustCompile(`(\d{4})[/-](\d{1,2})[/-](\d{1,2})`)
)

var monthsByName = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "jun": time.June, "jul": time.July,
	"aug": time.August, "sep": time.September, "oct": time.October,
	"nov": time.November, "dec": time.December,
}

// ResolveDeadline parses a captured timeline expression into a concrete
// date by trying quarter-end, month-end, half-year-end, and explicit-date
// forms in that order. Period forms resolve to the last calendar day of
// the period: a promise is satisfied any time up to end of period.
// Returns nil when nothing parses; an unresolvable deadline is not an
// error, the promise is simply open-ended.
func ResolveDeadline(text string) *time.Time {
	for _, resolve := range []func(string) *time.Time{
		resolveQuarter, resolveMonth, resolveHalfYear, resolveExplicit,
	} {
		if d := resolve(text); d != nil {
			return d
		}
	}
	return nil
}

func resolveQuarter(text string) *time.Time {
	m := quarterPattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	quarter, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[2])

	var d time.Time
	switch quarter {
	case 1:
		d = date(year, time.March, 31)
	case 2:
		d = date(year, time.June, 30)
	case 3:
		d = date(year, time.September, 30)
	case 4:
		d = date(year, time.December, 31)
	}
	return &d
}

func resolveMonth(text string) *time.Time {
	m := monthPattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	month, ok := monthsByName[strings.ToLower(m[1])]
	if !ok {
		return nil
	}
	year, _ := strconv.Atoi(m[2])
	d := date(year, month, lastDayOfMonth(year, month))
	return &d
}

// lastDayOfMonth uses the simplified year%4 leap rule for February.
// Known approximation carried over from the production calibration;
// do not switch to the full Gregorian rule without re-validating the
// downstream deadline comparisons.
func lastDayOfMonth(year int, month time.Month) int {
	switch month {
	case time.February:
		if year%4 == 0 {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}

func resolveHalfYear(text string) *time.Time {
	m := halfYearPattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	half := 2
	if m[1] == "1" || strings.EqualFold(m[2], "first") {
		half = 1
	}
	year, _ := strconv.Atoi(m[3])

	var d time.Time
	if half == 1 {
		d = date(year, time.June, 30)
	} else {
		d = date(year, time.December, 31)
	}
	return &d
}

func resolveExplicit(text string) *time.Time {
	if m := ymdPattern.FindStringSubmatch(text); m != nil {
		if d, ok := buildDate(m[1], m[2], m[3]); ok {
			return &d
		}
	}
	if m := mdyPattern.FindStringSubmatch(text); m != nil {
		if d, ok := buildDate(m[3], m[1], m[2]); ok {
			return &d
		}
	}
	return nil
}

func buildDate(yearStr, monthStr, dayStr string) (time.Time, bool) {
	year, _ := strconv.Atoi(yearStr)
	month, _ := strconv.Atoi(monthStr)
	day, _ := strconv.Atoi(dayStr)
	if month < 1 || month > 12 || day < 1 || day > lastDayOfMonth(year, time.Month(month)) {
		return time.Time{}, false
	}
	return date(year, time.Month(month), day), true
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
