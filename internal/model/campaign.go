package model

import "time"

// Campaign statuses
const (
	CampaignStatusRunning   = "running"
	CampaignStatusCompleted = "completed"
	CampaignStatusCancelled = "cancelled"
)

// Campaign is a bulk-messaging run
type Campaign struct {
	ID          string    `json:"id"`
	UserID      string    `json:"-"`
	Name        string    `json:"name"`
	Message     string    `json:"message"`
	Total       int       `json:"total"`
	SentCount   int       `json:"sent_count"`
	FailedCount int       `json:"failed_count"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// CampaignStats aggregates a user's campaigns for the dashboard
type CampaignStats struct {
	Total  int `json:"total"`
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// LaunchRequest starts a campaign from a handoff selection
type LaunchRequest struct {
	Name       string `json:"name"`
	Message    string `json:"message"`
	HandoffKey string `json:"handoff_key"`
}

// Dashboard is the aggregate shown on the landing page
type Dashboard struct {
	Instance              InstanceStatus `json:"instance"`
	Campaigns             []Campaign     `json:"campaigns"`
	Stats                 CampaignStats  `json:"stats"`
	HasActiveSubscription bool           `json:"has_active_subscription"`
}
