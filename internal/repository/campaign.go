package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"whatsapp-disparador/internal/model"
)

// ErrCampaignNotFound is returned for unknown campaign IDs
var ErrCampaignNotFound = errors.New("campaign not found")

// CampaignRepository handles database operations for message campaigns
type CampaignRepository struct {
	db *sql.DB
}

// NewCampaignRepository creates a new campaign repository
func NewCampaignRepository(db *sql.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

// Create saves a new campaign
func (r *CampaignRepository) Create(ctx context.Context, c *model.Campaign) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO message_campaigns (id, user_id, name, message, total, sent_count, failed_count, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.UserID, c.Name, c.Message, c.Total, c.SentCount, c.FailedCount, c.Status, c.CreatedAt.UTC())
	return err
}

// Get returns a campaign by ID
func (r *CampaignRepository) Get(ctx context.Context, id string) (*model.Campaign, error) {
	var c model.Campaign
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, message, total, sent_count, failed_count, status, created_at
		FROM message_campaigns WHERE id = ?
	`, id).Scan(&c.ID, &c.UserID, &c.Name, &c.Message, &c.Total, &c.SentCount, &c.FailedCount, &c.Status, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCampaignNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns the user's campaigns, newest first
func (r *CampaignRepository) List(ctx context.Context, userID string) ([]model.Campaign, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, message, total, sent_count, failed_count, status, created_at
		FROM message_campaigns
		WHERE user_id = ?
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query campaigns: %w", err)
	}
	defer rows.Close()

	campaigns := []model.Campaign{}
	for rows.Next() {
		var c model.Campaign
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Message, &c.Total, &c.SentCount, &c.FailedCount, &c.Status, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan campaign: %w", err)
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

// Stats sums campaign counters for a user
func (r *CampaignRepository) Stats(ctx context.Context, userID string) (model.CampaignStats, error) {
	var stats model.CampaignStats
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(sent_count), 0), COALESCE(SUM(failed_count), 0)
		FROM message_campaigns WHERE user_id = ?
	`, userID).Scan(&stats.Total, &stats.Sent, &stats.Failed)
	return stats, err
}

// RecordResult increments the sent or failed counter of a campaign
func (r *CampaignRepository) RecordResult(ctx context.Context, id string, sent bool) error {
	column := "failed_count"
	if sent {
		column = "sent_count"
	}
	_, err := r.db.ExecContext(ctx, `UPDATE message_campaigns SET `+column+` = `+column+` + 1 WHERE id = ?`, id)
	return err
}

// Finish sets the final status of a campaign
func (r *CampaignRepository) Finish(ctx context.Context, id, status string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE message_campaigns SET status = ? WHERE id = ?`, status, id)
	return err
}
