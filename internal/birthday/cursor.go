package birthday

import "time"

// Cursor is the month being viewed. The zero value is not useful; create
// one with NewCursor, which starts at the clock's current month.
type Cursor struct {
	clock Clock
	year  int
	month time.Month
}

// NewCursor returns a cursor positioned on the current month.
func NewCursor(clock Clock) *Cursor {
	c := &Cursor{clock: clock}
	c.Today()
	return c
}

// CursorAt returns a cursor positioned on the given month.
func CursorAt(clock Clock, year int, month time.Month) *Cursor {
	return &Cursor{clock: clock, year: year, month: month}
}

// Previous moves one month back, rolling the year down from January.
func (c *Cursor) Previous() {
	if c.month == time.January {
		c.month = time.December
		c.year--
		return
	}
	c.month--
}

// Next moves one month forward, rolling the year up from December.
func (c *Cursor) Next() {
	if c.month == time.December {
		c.month = time.January
		c.year++
		return
	}
	c.month++
}

// Today resets the cursor to the clock's current month.
func (c *Cursor) Today() {
	now := c.clock.Now()
	c.year, c.month = now.Year(), now.Month()
}

// Year returns the viewed year.
func (c *Cursor) Year() int { return c.year }

// Month returns the viewed month.
func (c *Cursor) Month() time.Month { return c.month }

// Reference returns midnight of day 1 of the viewed month in the clock's location.
func (c *Cursor) Reference() time.Time {
	return time.Date(c.year, c.month, 1, 0, 0, 0, 0, c.clock.Now().Location())
}

// Navigate applies a named transition: "previous", "next" or "today".
// Unknown names leave the cursor unchanged and return false.
func (c *Cursor) Navigate(action string) bool {
	switch action {
	case NavPrevious:
		c.Previous()
	case NavNext:
		c.Next()
	case NavToday:
		c.Today()
	default:
		return false
	}
	return true
}

// Navigation actions accepted by Cursor.Navigate.
const (
	NavPrevious = "previous"
	NavNext     = "next"
	NavToday    = "today"
)
