package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	qrcode "github.com/skip2/go-qrcode"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"

	"whatsapp-disparador/internal/config"
	"whatsapp-disparador/internal/model"
	"whatsapp-disparador/pkg/logger"
)

var (
	// ErrNotConnected is returned when a send is attempted without a live session
	ErrNotConnected = errors.New("whatsapp instance not connected")
	// ErrAlreadyPaired is returned by PairQR when a session already exists
	ErrAlreadyPaired = errors.New("whatsapp instance already paired")
	// ErrInvalidPhone is returned for numbers that cannot be turned into a JID
	ErrInvalidPhone = errors.New("invalid phone number")
	// ErrNoQRCode is returned when no pairing code is pending
	ErrNoQRCode = errors.New("no pairing code available")
)

// waClient is the part of *whatsmeow.Client the service drives
type waClient interface {
	Connect() error
	Disconnect()
	IsConnected() bool
	IsLoggedIn() bool
	Logout(ctx context.Context) error
	GetQRChannel(ctx context.Context) (<-chan whatsmeow.QRChannelItem, error)
	SendMessage(ctx context.Context, to types.JID, message *waE2E.Message, extra ...whatsmeow.SendRequestExtra) (whatsmeow.SendResponse, error)
	DeviceID() *types.JID
}

// meowClient exposes the stored device id of a whatsmeow client
type meowClient struct {
	*whatsmeow.Client
}

func (c meowClient) DeviceID() *types.JID {
	return c.Store.ID
}

// WhatsAppService owns the single linked WhatsApp instance
type WhatsAppService struct {
	client             waClient
	hub                *InstanceHub
	defaultCountryCode string
	logger             *logger.Logger

	// ctx bounds background pairing runs
	ctx context.Context

	mu        sync.Mutex
	qrCode    string
	qrUpdated time.Time
	pairing   bool
}

// NewWhatsAppService opens the session store and creates the client
func NewWhatsAppService(ctx context.Context, cfg *config.WhatsAppConfig, hub *InstanceHub, log *logger.Logger) (*WhatsAppService, error) {
	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	container, err := sqlstore.New(ctx, "sqlite3", fmt.Sprintf("file:%s?_foreign_keys=on", cfg.DBPath), waLog.Noop)
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	deviceStore, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	client := whatsmeow.NewClient(deviceStore, waLog.Stdout("Client", cfg.LogLevel, true))
	s := newWhatsAppService(ctx, meowClient{client}, cfg.DefaultCountryCode, hub, log)
	client.AddEventHandler(s.handleEvent)

	return s, nil
}

func newWhatsAppService(ctx context.Context, client waClient, countryCode string, hub *InstanceHub, log *logger.Logger) *WhatsAppService {
	return &WhatsAppService{
		client:             client,
		hub:                hub,
		defaultCountryCode: countryCode,
		logger:             log.WithComponent("whatsapp"),
		ctx:                ctx,
	}
}

// Paired reports whether a session is stored
func (s *WhatsAppService) Paired() bool {
	return s.client.DeviceID() != nil
}

// Start connects an existing session, or runs QR pairing in the background
// and keeps the latest code for the HTTP pairing flow.
func (s *WhatsAppService) Start(ctx context.Context) error {
	if s.Paired() {
		s.logger.Info("Existing session found, connecting...")
		if err := s.client.Connect(); err != nil {
			return fmt.Errorf("failed to connect: %w", err)
		}
		return nil
	}

	s.logger.Info("No session found, waiting for QR pairing")
	s.startPairing()
	return nil
}

// startPairing runs PairQR in the background and keeps the latest code for
// the HTTP pairing flow. It does nothing when a session is stored or a
// pairing run is active. A run ends on success, timeout or error; the next
// Refresh or QR request starts a new one.
func (s *WhatsAppService) startPairing() bool {
	if s.Paired() {
		return false
	}
	s.mu.Lock()
	if s.pairing {
		s.mu.Unlock()
		return false
	}
	s.pairing = true
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			s.pairing = false
			s.mu.Unlock()
		}()

		err := s.PairQR(s.ctx, func(code string) {
			s.mu.Lock()
			s.qrCode = code
			s.qrUpdated = time.Now()
			s.mu.Unlock()
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.WithError(err).Warn("QR pairing ended")
		}
	}()
	return true
}

// pairingActive reports whether a background pairing run is in progress
func (s *WhatsAppService) pairingActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pairing
}

// PairQR connects a fresh device and calls onCode for every QR code until
// the phone scans one. It blocks until pairing succeeds or fails.
func (s *WhatsAppService) PairQR(ctx context.Context, onCode func(code string)) error {
	if s.Paired() {
		return ErrAlreadyPaired
	}
	// An unpaired socket left over from an earlier run blocks a new QR channel.
	if s.client.IsConnected() {
		s.client.Disconnect()
	}

	qrChan, err := s.client.GetQRChannel(ctx)
	if err != nil {
		return fmt.Errorf("failed to get QR channel: %w", err)
	}
	if err := s.client.Connect(); err != nil {
		return fmt.Errorf("failed to connect to WhatsApp: %w", err)
	}

	qrCount := 0
	for evt := range qrChan {
		switch evt.Event {
		case whatsmeow.QRChannelEventCode:
			qrCount++
			s.logger.Info("QR code refreshed", "count", qrCount)
			onCode(evt.Code)
		case whatsmeow.QRChannelSuccess.Event:
			s.clearQR()
			s.logger.Info("Pairing successful")
			return nil
		case whatsmeow.QRChannelTimeout.Event:
			s.clearQR()
			return fmt.Errorf("QR code scan timeout")
		case whatsmeow.QRChannelEventError:
			s.clearQR()
			return fmt.Errorf("QR code error: %w", evt.Error)
		default:
			s.logger.Info("QR channel event", "event", evt.Event)
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if s.client.IsLoggedIn() {
		return nil
	}
	return fmt.Errorf("QR channel closed before pairing")
}

// QRPNG renders the pending pairing code as a PNG image. Without a code
// it starts a pairing run for an unpaired instance and returns ErrNoQRCode;
// the code is available on a later call.
func (s *WhatsAppService) QRPNG(size int) ([]byte, error) {
	s.mu.Lock()
	code := s.qrCode
	s.mu.Unlock()

	if code == "" {
		s.startPairing()
		return nil, ErrNoQRCode
	}
	return EncodeQR(code, size)
}

// EncodeQR renders a pairing code with medium error correction
func EncodeQR(code string, size int) ([]byte, error) {
	png, err := qrcode.Encode(code, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}
	return png, nil
}

func (s *WhatsAppService) clearQR() {
	s.mu.Lock()
	s.qrCode = ""
	s.mu.Unlock()
}

// Status returns the current instance state
func (s *WhatsAppService) Status() model.InstanceStatus {
	status := model.InstanceStatus{
		Status:    model.InstanceDisconnected,
		UpdatedAt: time.Now().UTC(),
	}
	if s.client.IsConnected() && s.client.IsLoggedIn() {
		status.Status = model.InstanceConnected
	}
	if id := s.client.DeviceID(); id != nil {
		status.PhoneNumber = id.User
	}
	return status
}

// Refresh reconnects a stored session that dropped, or starts QR pairing
// for an unpaired instance, and publishes the result
func (s *WhatsAppService) Refresh(ctx context.Context) (model.InstanceStatus, error) {
	switch {
	case s.Paired() && !s.client.IsConnected():
		s.logger.Info("Reconnecting stored session")
		if err := s.client.Connect(); err != nil {
			return s.Status(), fmt.Errorf("failed to reconnect: %w", err)
		}
	case !s.Paired():
		if s.startPairing() {
			s.logger.Info("Waiting for QR pairing")
		}
	}

	status := s.Status()
	s.hub.Publish(status)
	return status, nil
}

// Disconnect logs the device out, drops the stored session and starts
// pairing so a new number can be linked
func (s *WhatsAppService) Disconnect(ctx context.Context) error {
	if !s.Paired() {
		s.hub.Publish(model.InstanceStatus{Status: model.InstanceDisconnected})
		return nil
	}
	if err := s.client.Logout(ctx); err != nil {
		return fmt.Errorf("failed to log out: %w", err)
	}
	s.clearQR()

	s.logger.Info("WhatsApp instance disconnected")
	s.hub.Publish(model.InstanceStatus{Status: model.InstanceDisconnected})
	s.startPairing()
	return nil
}

// Close drops the websocket without logging out
func (s *WhatsAppService) Close() {
	s.client.Disconnect()
	s.logger.Info("WhatsApp client disconnected")
}

// SendText sends a plain conversation message to a phone number
func (s *WhatsAppService) SendText(ctx context.Context, phone, text string) error {
	if !s.client.IsConnected() || !s.client.IsLoggedIn() {
		return ErrNotConnected
	}

	number := NormalizePhone(phone, s.defaultCountryCode)
	if number == "" {
		return fmt.Errorf("%w: %q", ErrInvalidPhone, phone)
	}

	jid := types.NewJID(number, types.DefaultUserServer)
	message := &waE2E.Message{Conversation: proto.String(text)}

	if _, err := s.client.SendMessage(ctx, jid, message); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

func (s *WhatsAppService) handleEvent(evt any) {
	switch v := evt.(type) {
	case *events.Connected:
		s.logger.Info("WhatsApp client connected")
		s.hub.Publish(s.Status())
	case *events.Disconnected:
		s.logger.Warn("WhatsApp client disconnected")
		s.hub.Publish(s.Status())
	case *events.PairSuccess:
		s.logger.Info("Pairing successful", "jid", v.ID.String())
	case *events.LoggedOut:
		s.logger.Error("Device logged out", "reason", v.Reason.String())
		s.hub.Publish(model.InstanceStatus{Status: model.InstanceDisconnected})
	}
}

// NormalizePhone strips formatting and prepends countryCode to national
// numbers. A leading + marks an international number that is kept as is.
// Returns an empty string when the result cannot be a WhatsApp number.
func NormalizePhone(phone, countryCode string) string {
	phone = strings.TrimSpace(phone)
	international := strings.HasPrefix(phone, "+")

	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := strings.TrimLeft(b.String(), "0")

	if !international && countryCode != "" && len(digits) <= 11 {
		digits = countryCode + digits
	}

	if len(digits) < 10 || len(digits) > 15 {
		return ""
	}
	return digits
}
