package birthday

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/emersion/go-ical"

	"whatsapp-disparador/internal/model"
)

const (
	icalProdID   = "-//Disparador//Birthday Calendar//PT"
	icalCalName  = "Aniversários"
	icalDomain   = "disparador"
	uidHashBytes = 8
)

// emptyCalendar is served when no contact has a usable birthday; the encoder
// refuses calendars without components.
const emptyCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + icalProdID + "\r\nEND:VCALENDAR\r\n"

// SummaryFunc renders the event title for a contact display name.
type SummaryFunc func(displayName string) string

// Feed renders an iCalendar document with one all-day event per contact
// birthday in year. Feb 29 birthdays fall on Mar 1 in common years.
func Feed(contacts []model.Contact, year int, clock Clock, summary SummaryFunc) ([]byte, error) {
	if summary == nil {
		summary = func(name string) string { return "Birthday: " + name }
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, icalProdID)
	cal.Props.SetText("X-WR-CALNAME", icalCalName)
	cal.Props.SetText(ical.PropCalendarScale, "GREGORIAN")
	cal.Props.SetText(ical.PropMethod, "PUBLISH")

	now := clock.Now()
	stamp := ical.NewProp(ical.PropDateTimeStamp)
	stamp.SetDateTime(now.UTC())

	for _, c := range contacts {
		md, err := ParseMonthDay(c.Birthday)
		if err != nil {
			continue
		}

		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, eventUID(c, year))
		event.Props.SetText(ical.PropSummary, summary(c.DisplayName()))
		event.Props.Set(stamp)

		start := ical.NewProp(ical.PropDateTimeStart)
		start.SetDate(time.Date(year, md.Month, md.Day, 0, 0, 0, 0, now.Location()))
		event.Props.Set(start)

		cal.Children = append(cal.Children, event.Component)
	}

	if len(cal.Children) == 0 {
		return []byte(emptyCalendar), nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("failed to encode iCalendar data: %w", err)
	}
	return buf.Bytes(), nil
}

// eventUID is stable across refreshes for the same contact and year.
func eventUID(c model.Contact, year int) string {
	hash := sha256.Sum256([]byte(c.ID + "|" + c.Birthday))
	return fmt.Sprintf("%x-%d@%s", hash[:uidHashBytes], year, icalDomain)
}
