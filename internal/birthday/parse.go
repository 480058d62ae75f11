package birthday

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// ErrMalformedBirthday is returned for birthday strings that cannot be
// decomposed into a month and a day. Callers exclude such contacts.
var ErrMalformedBirthday = errors.New("malformed birthday")

// MonthDay is the year-less part of a birthday.
type MonthDay struct {
	Month time.Month
	Day   int
}

// ParseMonthDay extracts month and day from a YYYY-MM-DD string. The year
// token is never inspected; month and day must be unsigned decimal numbers
// within 1..12 and 1..31.
func ParseMonthDay(value string) (MonthDay, error) {
	parts := strings.Split(value, "-")
	if len(parts) != 3 {
		return MonthDay{}, ErrMalformedBirthday
	}

	month, ok := parseDigits(parts[1])
	if !ok || month < 1 || month > 12 {
		return MonthDay{}, ErrMalformedBirthday
	}
	day, ok := parseDigits(parts[2])
	if !ok || day < 1 || day > 31 {
		return MonthDay{}, ErrMalformedBirthday
	}

	return MonthDay{Month: time.Month(month), Day: day}, nil
}

// Matches reports whether the birthday falls on the calendar day of t.
func (md MonthDay) Matches(t time.Time) bool {
	return md.Month == t.Month() && md.Day == t.Day()
}

// Label renders DD/MM.
func (md MonthDay) Label() string {
	return pad2(md.Day) + "/" + pad2(int(md.Month))
}

func parseDigits(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
