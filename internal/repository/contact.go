package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"whatsapp-disparador/internal/model"
)

// ContactRepository handles database operations for contacts
type ContactRepository struct {
	db *sql.DB
}

// NewContactRepository creates a new contact repository
func NewContactRepository(db *sql.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

// ListWithBirthday returns the user's active contacts that have a birthday.
// The result is a fresh snapshot on every call.
func (r *ContactRepository) ListWithBirthday(ctx context.Context, userID string) ([]model.Contact, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, COALESCE(name, ''), phone_number, COALESCE(birthday, ''), status, created_at
		FROM contacts
		WHERE user_id = ? AND status = ? AND birthday IS NOT NULL AND birthday != ''
		ORDER BY rowid
	`, userID, model.ContactStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to query contacts: %w", err)
	}
	defer rows.Close()

	var contacts []model.Contact
	for rows.Next() {
		var c model.Contact
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.PhoneNumber, &c.Birthday, &c.Status, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

// Upsert inserts contacts or refreshes name and birthday of an existing
// phone number. Returns the number of rows written.
func (r *ContactRepository) Upsert(ctx context.Context, contacts []model.Contact) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO contacts (id, user_id, name, phone_number, birthday, status, created_at)
		VALUES (?, ?, NULLIF(?, ''), ?, NULLIF(?, ''), ?, ?)
		ON CONFLICT(user_id, phone_number) DO UPDATE SET
			name = COALESCE(excluded.name, contacts.name),
			birthday = COALESCE(excluded.birthday, contacts.birthday),
			status = excluded.status
	`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	written := 0
	now := time.Now().UTC()
	for _, c := range contacts {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		if c.Status == "" {
			c.Status = model.ContactStatusActive
		}
		if _, err := stmt.ExecContext(ctx, c.ID, c.UserID, c.Name, c.PhoneNumber, c.Birthday, c.Status, now); err != nil {
			return written, fmt.Errorf("failed to upsert contact %s: %w", c.PhoneNumber, err)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return written, nil
}

// Count returns the number of active contacts of a user
func (r *ContactRepository) Count(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM contacts WHERE user_id = ? AND status = ?
	`, userID, model.ContactStatusActive).Scan(&count)
	return count, err
}
