package model

// APIResponse is the JSON envelope of every API endpoint
type APIResponse struct {
	Status       string        `json:"status"`
	Message      string        `json:"message"`
	Data         any           `json:"data,omitempty"`
	Error        *APIError     `json:"error,omitempty"`
	Notification *Notification `json:"notification,omitempty"`
}

// APIError represents error response
type APIError struct {
	Code    string `json:"error_code"`
	Message string `json:"message"`
}

// Notification is a short localized toast for the end user
type Notification struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Variant     string `json:"variant,omitempty"`
}

// Notification variants
const (
	VariantDefault     = "default"
	VariantDestructive = "destructive"
)
