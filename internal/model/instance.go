package model

import "time"

// Instance statuses
const (
	InstanceConnected    = "connected"
	InstanceDisconnected = "disconnected"
)

// InstanceStatus describes the linked WhatsApp number
type InstanceStatus struct {
	Status      string    `json:"status"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Connected reports whether the instance is usable for sending
func (s InstanceStatus) Connected() bool {
	return s.Status == InstanceConnected
}

// Subscription is a user's billing state
type Subscription struct {
	UserID           string    `json:"user_id"`
	Status           string    `json:"status"`
	StripeCustomerID string    `json:"-"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// SubscriptionStatusActive marks a paid subscription
const SubscriptionStatusActive = "active"
