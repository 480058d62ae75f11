package birthday

import (
	"slices"
	"time"

	"whatsapp-disparador/internal/model"
)

// OnDay returns the contacts whose birthday shares day's month and
// day-of-month, in input order. The year of day is irrelevant.
func OnDay(contacts []model.Contact, day time.Time) []model.Contact {
	var out []model.Contact
	for _, c := range contacts {
		md, err := ParseMonthDay(c.Birthday)
		if err != nil {
			continue
		}
		if md.Matches(day) {
			out = append(out, c)
		}
	}
	return out
}

// TotalForMonth counts the contacts with a birthday in month.
func TotalForMonth(contacts []model.Contact, month time.Month) int {
	total := 0
	for _, c := range contacts {
		md, err := ParseMonthDay(c.Birthday)
		if err != nil {
			continue
		}
		if md.Month == month {
			total++
		}
	}
	return total
}

// MonthlyRoster returns the contacts with a birthday in month ordered by
// day-of-month. Ties keep input order.
func MonthlyRoster(contacts []model.Contact, month time.Month) []model.Contact {
	type entry struct {
		contact model.Contact
		day     int
	}

	var entries []entry
	for _, c := range contacts {
		md, err := ParseMonthDay(c.Birthday)
		if err != nil {
			continue
		}
		if md.Month == month {
			entries = append(entries, entry{contact: c, day: md.Day})
		}
	}

	slices.SortStableFunc(entries, func(a, b entry) int {
		return a.day - b.day
	})

	out := make([]model.Contact, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.contact)
	}
	return out
}

// DaysInMonth lists every date of ref's month at midnight in ref's location.
func DaysInMonth(ref time.Time) []time.Time {
	first := FirstOfMonth(ref)
	next := first.AddDate(0, 1, 0)

	var days []time.Time
	for d := first; d.Before(next); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// LeadingBlanks is the number of empty cells before day 1 in a Sunday-first
// seven column grid.
func LeadingBlanks(ref time.Time) int {
	return int(FirstOfMonth(ref).Weekday())
}

// FirstOfMonth truncates ref to midnight of day 1 of its month.
func FirstOfMonth(ref time.Time) time.Time {
	return time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
}
