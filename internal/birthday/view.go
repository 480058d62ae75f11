package birthday

import (
	"time"

	"whatsapp-disparador/internal/model"
)

const dateLayout = "2006-01-02"

// BuildMonth assembles the calendar page for ref's month. now marks the
// "today" cell; the label is left for the caller to localize.
func BuildMonth(contacts []model.Contact, ref, now time.Time) model.CalendarMonth {
	days := DaysInMonth(ref)
	view := model.CalendarMonth{
		Year:          ref.Year(),
		Month:         int(ref.Month()),
		LeadingBlanks: LeadingBlanks(ref),
		Days:          make([]model.CalendarDay, 0, len(days)),
		Total:         TotalForMonth(contacts, ref.Month()),
	}

	ny, nm, nd := now.Date()
	for _, d := range days {
		birthdays := OnDay(contacts, d)
		if birthdays == nil {
			birthdays = []model.Contact{}
		}
		y, m, dd := d.Date()
		view.Days = append(view.Days, model.CalendarDay{
			Date:      d.Format(dateLayout),
			Day:       dd,
			IsToday:   y == ny && m == nm && dd == nd,
			Birthdays: birthdays,
		})
	}

	roster := MonthlyRoster(contacts, ref.Month())
	view.Roster = make([]model.RosterEntry, 0, len(roster))
	for _, c := range roster {
		// Roster members parsed successfully above.
		md, _ := ParseMonthDay(c.Birthday)
		view.Roster = append(view.Roster, model.RosterEntry{
			Contact:     c,
			DisplayName: c.DisplayName(),
			DayMonth:    md.Label(),
		})
	}

	return view
}

// ParseMonth reads a YYYY-MM value into the first day of that month.
func ParseMonth(value string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01", value, loc)
}

// ParseDate reads a YYYY-MM-DD value.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(dateLayout, value, loc)
}
