package model

import "encoding/json"

// Presence markers used by the diagnostic report
const (
	ValueSet    = "SET"
	ValueNotSet = "NOT_SET"
	NoOrigin    = "NO_ORIGIN"
)

// DiagnosticReport is the operator-facing configuration report
type DiagnosticReport struct {
	Timestamp      string               `json:"timestamp"`
	Environment    EnvironmentSection   `json:"environment"`
	Authentication AuthenticationReport `json:"authentication"`
	CORS           CORSSection          `json:"cors"`
	Stripe         StripeSection        `json:"stripe"`
}

// StripeSection reports billing credential presence with fragments only
type StripeSection struct {
	KeyConfigured bool   `json:"key_configured"`
	KeySuffix     string `json:"key_suffix"`
	KeyPrefix     string `json:"key_prefix"`
	OldKeyExists  bool   `json:"old_key_exists"`
	OldKeySuffix  string `json:"old_key_suffix"`
}

// EnvironmentSection reports SET / NOT_SET for required backend values
type EnvironmentSection struct {
	SupabaseURL    string `json:"supabase_url"`
	ServiceRoleKey string `json:"service_role_key"`
}

// AuthenticationReport describes the bearer credential on the request.
// Without a header only header_present is emitted; with one, every field is
// emitted and unknown values are null.
type AuthenticationReport struct {
	HeaderPresent bool
	ValidToken    *bool
	UserID        *string
	UserEmail     *string
	Error         *string
}

// MarshalJSON implements json.Marshaler
func (a AuthenticationReport) MarshalJSON() ([]byte, error) {
	if !a.HeaderPresent {
		return json.Marshal(struct {
			HeaderPresent bool `json:"header_present"`
		}{})
	}
	return json.Marshal(struct {
		HeaderPresent bool    `json:"header_present"`
		ValidToken    *bool   `json:"valid_token"`
		UserID        *string `json:"user_id"`
		UserEmail     *string `json:"user_email"`
		Error         *string `json:"error"`
	}{a.HeaderPresent, a.ValidToken, a.UserID, a.UserEmail, a.Error})
}

// CORSSection echoes the request origin and method
type CORSSection struct {
	Origin            string `json:"origin"`
	Method            string `json:"method"`
	HeadersConfigured bool   `json:"headers_configured"`
}

// DiagnosticFailure is returned with status 500 when the report cannot be assembled
type DiagnosticFailure struct {
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
}
