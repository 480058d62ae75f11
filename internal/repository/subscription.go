package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"whatsapp-disparador/internal/model"
)

// SubscriptionRepository handles database operations for user subscriptions
type SubscriptionRepository struct {
	db *sql.DB
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db *sql.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// Active returns the user's active subscription, or nil when there is none
func (r *SubscriptionRepository) Active(ctx context.Context, userID string) (*model.Subscription, error) {
	var s model.Subscription
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, status, stripe_customer_id, updated_at
		FROM user_subscriptions
		WHERE user_id = ? AND status = ?
		LIMIT 1
	`, userID, model.SubscriptionStatusActive).Scan(&s.UserID, &s.Status, &s.StripeCustomerID, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Upsert saves the subscription state of a user
func (r *SubscriptionRepository) Upsert(ctx context.Context, s *model.Subscription) error {
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_subscriptions (user_id, status, stripe_customer_id, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			status = excluded.status,
			stripe_customer_id = excluded.stripe_customer_id,
			updated_at = excluded.updated_at
	`, s.UserID, s.Status, s.StripeCustomerID, s.UpdatedAt.UTC())
	return err
}
