package model

// CalendarMonth is the rendered birthday calendar for one month
type CalendarMonth struct {
	Year          int           `json:"year"`
	Month         int           `json:"month"`
	Label         string        `json:"label"`
	LeadingBlanks int           `json:"leading_blanks"`
	Days          []CalendarDay `json:"days"`
	Total         int           `json:"total"`
	Roster        []RosterEntry `json:"roster"`
}

// CalendarDay is one cell of the month grid
type CalendarDay struct {
	Date      string    `json:"date"` // YYYY-MM-DD
	Day       int       `json:"day"`
	IsToday   bool      `json:"is_today"`
	Birthdays []Contact `json:"birthdays"`
}

// RosterEntry is a line of the monthly birthday list
type RosterEntry struct {
	Contact     Contact `json:"contact"`
	DisplayName string  `json:"display_name"`
	DayMonth    string  `json:"day_month"` // DD/MM
}
