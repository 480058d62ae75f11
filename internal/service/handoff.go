package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"whatsapp-disparador/internal/repository"
	"whatsapp-disparador/pkg/logger"
)

// HandoffStore passes a payload from one user flow to the next.
// Each key is written once and readable until it expires or is consumed
// by Delete.
type HandoffStore interface {
	Put(ctx context.Context, userID string, payload any) (string, error)
	Get(ctx context.Context, userID, key string, dst any) error
	Delete(ctx context.Context, userID, key string) error
}

// HandoffService stores JSON payloads in the handoff table with a TTL
type HandoffService struct {
	repo   *repository.HandoffRepository
	ttl    time.Duration
	now    func() time.Time
	logger *logger.Logger
}

// NewHandoffService creates a handoff store whose entries live for ttl
func NewHandoffService(repo *repository.HandoffRepository, ttl time.Duration, log *logger.Logger) *HandoffService {
	return &HandoffService{
		repo:   repo,
		ttl:    ttl,
		now:    time.Now,
		logger: log.WithComponent("handoff"),
	}
}

// Put serializes payload under a fresh key and returns the key
func (s *HandoffService) Put(ctx context.Context, userID string, payload any) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal handoff payload: %w", err)
	}

	record := &repository.HandoffRecord{
		Key:       uuid.NewString(),
		UserID:    userID,
		Payload:   string(data),
		ExpiresAt: s.now().Add(s.ttl),
	}
	if err := s.repo.Put(ctx, record); err != nil {
		return "", fmt.Errorf("failed to save handoff: %w", err)
	}

	count, _ := s.repo.Count(ctx)
	s.logger.WithUserID(userID).Debug("Handoff stored",
		"key", record.Key,
		"expires_at", record.ExpiresAt,
		"active_count", count,
	)
	return record.Key, nil
}

// Get decodes the payload stored under key into dst.
// Unknown, foreign and expired keys all yield repository.ErrHandoffNotFound.
func (s *HandoffService) Get(ctx context.Context, userID, key string, dst any) error {
	record, err := s.repo.Get(ctx, userID, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(record.Payload), dst); err != nil {
		return fmt.Errorf("failed to decode handoff payload: %w", err)
	}
	return nil
}

// Delete consumes the handoff stored under key
func (s *HandoffService) Delete(ctx context.Context, userID, key string) error {
	return s.repo.Delete(ctx, userID, key)
}

// RunCleanup deletes expired handoffs every interval until ctx is done
func (s *HandoffService) RunCleanup(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			count, err := s.repo.CleanupExpired(ctx)
			if err != nil {
				s.logger.Error("Failed to cleanup expired handoffs", "error", err)
			} else if count > 0 {
				s.logger.Info("Cleaned up expired handoffs", "count", count)
			}
		}
	}
}
