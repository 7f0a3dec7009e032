package statement

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	numericDateRe = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{2,4})$`)
	monthDateRe   = regexp.MustCompile(`^(\d{1,2})\s+([A-Za-z]{3,9})\s+(\d{2,4})$`)
)

var monthNames = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// ParseDate parses the date forms banks print: DD/MM/YYYY, DD-MM-YYYY
// (2- or 4-digit years) and "D MMM YYYY". Two-digit years pivot at 50:
// <50 is 20xx, >=50 is 19xx.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)

	if m := numericDateRe.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		return makeDate(year, time.Month(month), day)
	}

	if m := monthDateRe.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, ok := monthNames[strings.ToLower(m[2])[:3]]
		if !ok {
			return time.Time{}, false
		}
		year, _ := strconv.Atoi(m[3])
		return makeDate(year, month, day)
	}

	return time.Time{}, false
}

func makeDate(year int, month time.Month, day int) (time.Time, bool) {
	if year < 100 {
		if year < 50 {
			year += 2000
		} else {
			year += 1900
		}
	}
	if month < time.January || month > time.December || day < 1 || day > 31 {
		return time.Time{}, false
	}
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	// Reject rollovers like 31/02.
	if d.Day() != day || d.Month() != month {
		return time.Time{}, false
	}
	return d, true
}

// leadingDate returns the date token at the start of a line along with the
// remainder of the line. Bank lines anchor on a leading date; lines without
// one are continuations.
func leadingDate(line string) (time.Time, string, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return time.Time{}, "", false
	}

	// Numeric form is a single token.
	if d, ok := ParseDate(fields[0]); ok {
		return d, strings.Join(fields[1:], " "), true
	}

	// "D MMM YYYY" spans three tokens.
	if len(fields) >= 3 {
		if d, ok := ParseDate(strings.Join(fields[:3], " ")); ok {
			return d, strings.Join(fields[3:], " "), true
		}
	}

	return time.Time{}, "", false
}
