package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"whatsapp-disparador/internal/model"
	"whatsapp-disparador/pkg/logger"
)

// ErrInvalidCampaign is returned for launch requests missing required fields
var ErrInvalidCampaign = errors.New("invalid campaign")

// NamePlaceholder is replaced with each recipient's display name
const NamePlaceholder = "{name}"

// Sender delivers text messages through the linked instance
type Sender interface {
	SendText(ctx context.Context, phone, text string) error
	Status() model.InstanceStatus
}

// CampaignStore persists campaigns and their counters
type CampaignStore interface {
	Create(ctx context.Context, c *model.Campaign) error
	List(ctx context.Context, userID string) ([]model.Campaign, error)
	Stats(ctx context.Context, userID string) (model.CampaignStats, error)
	RecordResult(ctx context.Context, id string, sent bool) error
	Finish(ctx context.Context, id, status string) error
}

// CampaignService launches rate-limited bulk sends
type CampaignService struct {
	sender        Sender
	campaigns     CampaignStore
	subscriptions SubscriptionStore
	handoffs      HandoffStore
	interval      time.Duration
	logger        *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewCampaignService creates a campaign service sending at most
// maxPerSecond messages per second per campaign
func NewCampaignService(sender Sender, campaigns CampaignStore, subscriptions SubscriptionStore, handoffs HandoffStore, maxPerSecond int, log *logger.Logger) *CampaignService {
	if maxPerSecond <= 0 {
		maxPerSecond = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &CampaignService{
		sender:        sender,
		campaigns:     campaigns,
		subscriptions: subscriptions,
		handoffs:      handoffs,
		interval:      time.Second / time.Duration(maxPerSecond),
		logger:        log.WithComponent("campaign"),
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Launch reads the recipients handed off under req.HandoffKey, records the
// campaign and starts delivery in the background.
func (s *CampaignService) Launch(ctx context.Context, userID string, req model.LaunchRequest) (*model.Campaign, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || strings.TrimSpace(req.Message) == "" || req.HandoffKey == "" {
		return nil, fmt.Errorf("%w: name, message and handoff_key are required", ErrInvalidCampaign)
	}
	if !s.sender.Status().Connected() {
		return nil, ErrNotConnected
	}

	var recipients []model.ExportedClient
	if err := s.handoffs.Get(ctx, userID, req.HandoffKey, &recipients); err != nil {
		return nil, err
	}
	if len(recipients) == 0 {
		return nil, fmt.Errorf("%w: no recipients", ErrInvalidCampaign)
	}
	// A selection launches one campaign; a concurrent launch of the same
	// key loses here with ErrHandoffNotFound.
	if err := s.handoffs.Delete(ctx, userID, req.HandoffKey); err != nil {
		return nil, err
	}

	campaign := &model.Campaign{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      req.Name,
		Message:   req.Message,
		Total:     len(recipients),
		Status:    model.CampaignStatusRunning,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.campaigns.Create(ctx, campaign); err != nil {
		return nil, fmt.Errorf("failed to create campaign: %w", err)
	}

	log := s.logger.WithUserID(userID).WithCampaign(campaign.ID)
	log.Info("Campaign started", "recipients", len(recipients))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.deliver(campaign, recipients, log)
	}()

	return campaign, nil
}

func (s *CampaignService) deliver(campaign *model.Campaign, recipients []model.ExportedClient, log *logger.Logger) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	status := model.CampaignStatusCompleted
	sent, failed := 0, 0

loop:
	for i, r := range recipients {
		if i > 0 {
			select {
			case <-s.ctx.Done():
				status = model.CampaignStatusCancelled
				break loop
			case <-ticker.C:
			}
		}

		text := strings.ReplaceAll(campaign.Message, NamePlaceholder, r.DisplayName)
		err := s.sender.SendText(s.ctx, r.PhoneNumber, text)
		if err != nil && s.ctx.Err() != nil {
			// interrupted by Close; the message was not refused
			status = model.CampaignStatusCancelled
			break loop
		}
		if err != nil {
			failed++
			log.WithError(err).Warn("Message delivery failed", "phone", r.PhoneNumber)
		} else {
			sent++
		}

		if err := s.campaigns.RecordResult(context.Background(), campaign.ID, err == nil); err != nil {
			log.WithError(err).Error("Failed to record delivery result")
		}
	}

	if err := s.campaigns.Finish(context.Background(), campaign.ID, status); err != nil {
		log.WithError(err).Error("Failed to finish campaign")
	}
	log.Info("Campaign finished", "status", status, "sent", sent, "failed", failed)
}

// List returns the user's campaigns, newest first
func (s *CampaignService) List(ctx context.Context, userID string) ([]model.Campaign, error) {
	return s.campaigns.List(ctx, userID)
}

// Dashboard aggregates instance, campaign and subscription state
func (s *CampaignService) Dashboard(ctx context.Context, userID string) (*model.Dashboard, error) {
	campaigns, err := s.campaigns.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	stats, err := s.campaigns.Stats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load campaign stats: %w", err)
	}
	sub, err := s.subscriptions.Active(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}

	return &model.Dashboard{
		Instance:              s.sender.Status(),
		Campaigns:             campaigns,
		Stats:                 stats,
		HasActiveSubscription: sub != nil,
	}, nil
}

// Close stops running campaigns and waits for their workers
func (s *CampaignService) Close() {
	s.cancel()
	s.wg.Wait()
}
