package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"whatsapp-disparador/internal/birthday"
	"whatsapp-disparador/internal/i18n"
	"whatsapp-disparador/internal/model"
	"whatsapp-disparador/internal/service"
	"whatsapp-disparador/pkg/logger"
)

// ContactSource returns the contact snapshot behind the calendar
type ContactSource interface {
	ListWithBirthday(ctx context.Context, userID string) ([]model.Contact, error)
}

// CalendarHandler serves the birthday calendar, its ICS feed and the
// export of a day's birthdays to the campaign flow
type CalendarHandler struct {
	contacts   ContactSource
	handoffs   service.HandoffStore
	translator *i18n.Translator
	clock      birthday.Clock
	logger     *logger.Logger
}

// NewCalendarHandler creates a new calendar handler
func NewCalendarHandler(contacts ContactSource, handoffs service.HandoffStore, translator *i18n.Translator, clock birthday.Clock, log *logger.Logger) *CalendarHandler {
	return &CalendarHandler{
		contacts:   contacts,
		handoffs:   handoffs,
		translator: translator,
		clock:      clock,
		logger:     log,
	}
}

// ExportResult is returned after a day's birthdays are handed off
type ExportResult struct {
	HandoffKey string                 `json:"handoff_key"`
	Count      int                    `json:"count"`
	Clients    []model.ExportedClient `json:"clients"`
}

// GetMonth handles GET /api/v1/calendar?month=YYYY-MM&nav=previous|next|today
func (h *CalendarHandler) GetMonth(w http.ResponseWriter, r *http.Request) {
	loc := localizer(h.translator, r)
	query := r.URL.Query()

	cursor := birthday.NewCursor(h.clock)
	if month := query.Get("month"); month != "" {
		ref, err := birthday.ParseMonth(month, h.clock.Now().Location())
		if err != nil {
			sendErrorResponse(w, http.StatusBadRequest, "ERR_INVALID_PARAMETER", "month must be YYYY-MM",
				alert(loc.T(i18n.MsgErrorTitle, nil), loc.T(i18n.MsgBadRequest, nil)))
			return
		}
		cursor = birthday.CursorAt(h.clock, ref.Year(), ref.Month())
	}
	if nav := query.Get("nav"); nav != "" && !cursor.Navigate(nav) {
		sendErrorResponse(w, http.StatusBadRequest, "ERR_INVALID_PARAMETER", "nav must be previous, next or today",
			alert(loc.T(i18n.MsgErrorTitle, nil), loc.T(i18n.MsgBadRequest, nil)))
		return
	}

	contacts, ok := h.loadContacts(w, r, loc)
	if !ok {
		return
	}

	view := birthday.BuildMonth(contacts, cursor.Reference(), h.clock.Now())
	view.Label = loc.MonthLabel(cursor.Year(), cursor.Month())

	sendSuccessResponse(w, http.StatusOK, "Calendar loaded", view, nil)
}

// GetFeed handles GET /api/v1/calendar.ics?year=YYYY
func (h *CalendarHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	loc := localizer(h.translator, r)

	year := h.clock.Now().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 9999 {
			sendErrorResponse(w, http.StatusBadRequest, "ERR_INVALID_PARAMETER", "year must be a number",
				alert(loc.T(i18n.MsgErrorTitle, nil), loc.T(i18n.MsgBadRequest, nil)))
			return
		}
		year = parsed
	}

	contacts, ok := h.loadContacts(w, r, loc)
	if !ok {
		return
	}

	summary := func(name string) string {
		return loc.T(i18n.MsgEventSummary, map[string]any{"Name": name})
	}
	data, err := birthday.Feed(contacts, year, h.clock, summary)
	if err != nil {
		h.logger.WithUserID(userID(r)).WithError(err).Error("Failed to render calendar feed")
		sendErrorResponse(w, http.StatusInternalServerError, "ERR_INTERNAL_SERVER", "Failed to render calendar",
			alert(loc.T(i18n.MsgErrorTitle, nil), loc.T(i18n.MsgContactsLoadFailed, nil)))
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="aniversarios-%d.ics"`, year))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Export handles POST /api/v1/calendar/export?date=YYYY-MM-DD
func (h *CalendarHandler) Export(w http.ResponseWriter, r *http.Request) {
	loc := localizer(h.translator, r)
	uid := userID(r)

	day, err := birthday.ParseDate(r.URL.Query().Get("date"), h.clock.Now().Location())
	if err != nil {
		sendErrorResponse(w, http.StatusBadRequest, "ERR_INVALID_PARAMETER", "date must be YYYY-MM-DD",
			alert(loc.T(i18n.MsgErrorTitle, nil), loc.T(i18n.MsgBadRequest, nil)))
		return
	}

	contacts, ok := h.loadContacts(w, r, loc)
	if !ok {
		return
	}

	selected := birthday.OnDay(contacts, day)
	if len(selected) == 0 {
		sendErrorResponse(w, http.StatusNotFound, "ERR_NO_BIRTHDAYS", "No birthdays on this day",
			alert(loc.T(i18n.MsgNoBirthdaysTitle, nil), loc.T(i18n.MsgNoBirthdays, nil)))
		return
	}

	clients := birthday.ExportSelection(selected)
	key, err := h.handoffs.Put(r.Context(), uid, clients)
	if err != nil {
		h.logger.WithUserID(uid).WithError(err).Error("Failed to store export selection")
		sendErrorResponse(w, http.StatusInternalServerError, "ERR_INTERNAL_SERVER", "Failed to export selection",
			alert(loc.T(i18n.MsgErrorTitle, nil), loc.T(i18n.MsgCampaignFailed, nil)))
		return
	}

	h.logger.WithUserID(uid).Info("Birthdays exported", "date", day.Format("2006-01-02"), "count", len(clients))
	sendSuccessResponse(w, http.StatusCreated, "Birthdays exported",
		ExportResult{HandoffKey: key, Count: len(clients), Clients: clients},
		notice(loc.T(i18n.MsgBirthdaysExportedTitle, nil), loc.Count(i18n.MsgBirthdaysExported, len(clients))))
}

func (h *CalendarHandler) loadContacts(w http.ResponseWriter, r *http.Request, loc *i18n.Localizer) ([]model.Contact, bool) {
	uid := userID(r)
	contacts, err := h.contacts.ListWithBirthday(r.Context(), uid)
	if err != nil {
		h.logger.WithUserID(uid).WithError(err).Error("Failed to load contacts")
		sendErrorResponse(w, http.StatusInternalServerError, "ERR_CONTACTS_UNAVAILABLE", "Failed to load contacts",
			alert(loc.T(i18n.MsgErrorTitle, nil), loc.T(i18n.MsgContactsLoadFailed, nil)))
		return nil, false
	}
	return contacts, true
}
