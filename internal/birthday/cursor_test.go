package birthday

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCursor_StartsToday(t *testing.T) {
	c := NewCursor(FixedClock(date(2026, time.October, 17)))

	assert.Equal(t, 2026, c.Year())
	assert.Equal(t, time.October, c.Month())
	assert.Equal(t, date(2026, time.October, 1), c.Reference())
}

func TestCursor_RollsYears(t *testing.T) {
	c := CursorAt(FixedClock(date(2026, time.October, 17)), 2025, time.January)

	c.Previous()
	assert.Equal(t, 2024, c.Year())
	assert.Equal(t, time.December, c.Month())

	c.Next()
	c.Next()
	assert.Equal(t, 2025, c.Year())
	assert.Equal(t, time.February, c.Month())

	c = CursorAt(FixedClock(date(2026, time.October, 17)), 2025, time.December)
	c.Next()
	assert.Equal(t, 2026, c.Year())
	assert.Equal(t, time.January, c.Month())
}

func TestCursor_Navigate(t *testing.T) {
	c := CursorAt(FixedClock(date(2026, time.October, 17)), 2020, time.May)

	assert.True(t, c.Navigate(NavNext))
	assert.Equal(t, time.June, c.Month())

	assert.False(t, c.Navigate("sideways"))
	assert.Equal(t, time.June, c.Month())

	assert.True(t, c.Navigate(NavToday))
	assert.Equal(t, 2026, c.Year())
	assert.Equal(t, time.October, c.Month())
}
