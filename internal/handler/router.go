package handler

import (
	"net/http"

	"whatsapp-disparador/internal/middleware"
)

// Handlers groups every HTTP handler of the service
type Handlers struct {
	Health       *HealthHandler
	Diagnostic   *DiagnosticHandler
	Calendar     *CalendarHandler
	Handoff      *HandoffHandler
	Contacts     *ContactsHandler
	Campaign     *CampaignHandler
	Instance     *InstanceHandler
	Subscription *SubscriptionHandler
}

// NewRouter wires the route table
func NewRouter(h Handlers, auth *middleware.AuthMiddleware) *http.ServeMux {
	mux := http.NewServeMux()
	protected := func(next http.HandlerFunc) http.HandlerFunc {
		return middleware.CORS(auth.Authenticate(next))
	}

	// Public routes
	mux.HandleFunc("GET /health", h.Health.CheckHealth)
	mux.HandleFunc("/functions/v1/diagnostic-stripe", h.Diagnostic.Report)
	mux.HandleFunc("POST /api/v1/subscription/portal", middleware.CORS(h.Subscription.OpenPortal))

	// Protected routes
	mux.HandleFunc("GET /api/v1/calendar", protected(h.Calendar.GetMonth))
	mux.HandleFunc("GET /api/v1/calendar.ics", protected(h.Calendar.GetFeed))
	mux.HandleFunc("POST /api/v1/calendar/export", protected(h.Calendar.Export))
	mux.HandleFunc("GET /api/v1/handoff/{key}", protected(h.Handoff.Get))
	mux.HandleFunc("POST /api/v1/contacts/import", protected(h.Contacts.Import))
	mux.HandleFunc("GET /api/v1/dashboard", protected(h.Campaign.Dashboard))
	mux.HandleFunc("GET /api/v1/campaigns", protected(h.Campaign.List))
	mux.HandleFunc("POST /api/v1/campaigns", protected(h.Campaign.Launch))
	mux.HandleFunc("POST /api/v1/instance/refresh", protected(h.Instance.Refresh))
	mux.HandleFunc("POST /api/v1/instance/disconnect", protected(h.Instance.Disconnect))
	mux.HandleFunc("GET /api/v1/instance/qr", protected(h.Instance.QRCode))
	mux.HandleFunc("GET /api/v1/instance/events", protected(h.Instance.Events))

	// Browser preflight for the protected API
	mux.HandleFunc("OPTIONS /api/v1/", middleware.CORS(func(http.ResponseWriter, *http.Request) {}))

	return mux
}
