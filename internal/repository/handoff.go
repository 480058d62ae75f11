package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mattn/go-sqlite3"
)

var (
	// ErrHandoffNotFound is returned for unknown or expired keys
	ErrHandoffNotFound = errors.New("handoff not found")
	// ErrHandoffExists is returned when a key is written twice
	ErrHandoffExists = errors.New("handoff already written")
)

// HandoffRecord is a transient payload passed between two user flows
type HandoffRecord struct {
	Key       string    `json:"key"`
	UserID    string    `json:"user_id"`
	Payload   string    `json:"payload"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// HandoffRepository stores write-once handoff payloads with expiry
type HandoffRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewHandoffRepository creates a new handoff repository
func NewHandoffRepository(db *sql.DB) *HandoffRepository {
	return &HandoffRepository{db: db, now: time.Now}
}

// Put saves a handoff record; a key can only be written once
func (r *HandoffRepository) Put(ctx context.Context, record *HandoffRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO handoffs (key, user_id, payload, expires_at)
		VALUES (?, ?, ?, ?)
	`, record.Key, record.UserID, record.Payload, record.ExpiresAt.UTC())
	if isConstraintViolation(err) {
		return ErrHandoffExists
	}
	return err
}

// Get gets a non-expired handoff owned by userID
func (r *HandoffRepository) Get(ctx context.Context, userID, key string) (*HandoffRecord, error) {
	var record HandoffRecord
	err := r.db.QueryRowContext(ctx, `
		SELECT key, user_id, payload, expires_at, created_at
		FROM handoffs
		WHERE key = ? AND user_id = ? AND expires_at > ?
		LIMIT 1
	`, key, userID, r.now().UTC()).Scan(
		&record.Key,
		&record.UserID,
		&record.Payload,
		&record.ExpiresAt,
		&record.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrHandoffNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Delete removes a live handoff owned by userID. A missing, foreign or
// expired key yields ErrHandoffNotFound, so a key is consumed at most once.
func (r *HandoffRepository) Delete(ctx context.Context, userID, key string) error {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM handoffs WHERE key = ? AND user_id = ? AND expires_at > ?
	`, key, userID, r.now().UTC())
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrHandoffNotFound
	}
	return nil
}

// CleanupExpired removes expired handoff records
func (r *HandoffRepository) CleanupExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM handoffs WHERE expires_at <= ?
	`, r.now().UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Count returns total active (non-expired) handoffs
func (r *HandoffRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM handoffs WHERE expires_at > ?
	`, r.now().UTC()).Scan(&count)
	return count, err
}

func isConstraintViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint
}
