package service

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"

	"whatsapp-disparador/internal/model"
	"whatsapp-disparador/pkg/logger"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		phone string
		want  string
	}{
		{"national mobile", "(11) 99999-0000", "5511999990000"},
		{"trunk zero", "011 99999-0000", "5511999990000"},
		{"international", "+55 11 99999-0000", "5511999990000"},
		{"already prefixed", "5511999990000", "5511999990000"},
		{"foreign", "+1 415 555 0100", "14155550100"},
		{"too short", "1234", ""},
		{"too long", "+1234567890123456", ""},
		{"garbage", "n/a", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePhone(tt.phone, "55"))
		})
	}
}

func TestEncodeQR(t *testing.T) {
	png, err := EncodeQR("2@abc,def,ghi", 256)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}

// fakeWAClient is an in-memory whatsmeow client; each GetQRChannel call
// opens a new pairing channel the test feeds through emit
type fakeWAClient struct {
	mu        sync.Mutex
	id        *types.JID
	connected bool
	loggedIn  bool
	qr        chan whatsmeow.QRChannelItem
	qrRuns    int
	sent      []string
}

func (f *fakeWAClient) Connect() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = true
	return nil
}

func (f *fakeWAClient) Disconnect() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = false
}

func (f *fakeWAClient) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *fakeWAClient) IsLoggedIn() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loggedIn
}

func (f *fakeWAClient) Logout(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.id, f.connected, f.loggedIn = nil, false, false
	return nil
}

func (f *fakeWAClient) GetQRChannel(ctx context.Context) (<-chan whatsmeow.QRChannelItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.connected {
		return nil, whatsmeow.ErrQRAlreadyConnected
	}
	f.qr = make(chan whatsmeow.QRChannelItem, 8)
	f.qrRuns++
	return f.qr, nil
}

func (f *fakeWAClient) SendMessage(ctx context.Context, to types.JID, message *waE2E.Message, extra ...whatsmeow.SendRequestExtra) (whatsmeow.SendResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, to.User+": "+message.GetConversation())
	return whatsmeow.SendResponse{}, nil
}

func (f *fakeWAClient) DeviceID() *types.JID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.id
}

func (f *fakeWAClient) runs() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.qrRuns
}

// emit sends item on the channel of the latest pairing run; a terminal
// item closes the channel like whatsmeow does
func (f *fakeWAClient) emit(item whatsmeow.QRChannelItem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.qr <- item
	if item.Event != whatsmeow.QRChannelEventCode {
		close(f.qr)
	}
}

func pairedClient() *fakeWAClient {
	jid := types.NewJID("5511999990000", types.DefaultUserServer)
	return &fakeWAClient{id: &jid, connected: true, loggedIn: true}
}

func TestWhatsAppService_DisconnectRestartsPairing(t *testing.T) {
	client := pairedClient()
	hub := NewInstanceHub()
	svc := newWhatsAppService(context.Background(), client, "55", hub, logger.Discard())
	require.Equal(t, model.InstanceConnected, svc.Status().Status)

	require.NoError(t, svc.Disconnect(context.Background()))
	assert.Equal(t, model.InstanceDisconnected, hub.Last().Status)
	assert.False(t, svc.Paired())

	require.Eventually(t, func() bool { return client.runs() == 1 }, time.Second, 5*time.Millisecond)
	client.emit(whatsmeow.QRChannelItem{Event: whatsmeow.QRChannelEventCode, Code: "2@first,code"})
	require.Eventually(t, func() bool {
		_, err := svc.QRPNG(128)
		return err == nil
	}, time.Second, 5*time.Millisecond)

	// The code expires unscanned; the next QR request starts a new run.
	client.emit(whatsmeow.QRChannelTimeout)
	require.Eventually(t, func() bool { return !svc.pairingActive() }, time.Second, 5*time.Millisecond)

	_, err := svc.QRPNG(128)
	assert.ErrorIs(t, err, ErrNoQRCode)
	require.Eventually(t, func() bool { return client.runs() == 2 }, time.Second, 5*time.Millisecond)

	client.emit(whatsmeow.QRChannelItem{Event: whatsmeow.QRChannelEventCode, Code: "2@second,code"})
	require.Eventually(t, func() bool {
		_, err := svc.QRPNG(128)
		return err == nil
	}, time.Second, 5*time.Millisecond)

	client.emit(whatsmeow.QRChannelSuccess)
	require.Eventually(t, func() bool { return !svc.pairingActive() }, time.Second, 5*time.Millisecond)
	_, err = svc.QRPNG(128)
	assert.ErrorIs(t, err, ErrNoQRCode, "a successful pairing clears the code")

	// Clean up the run started by the call above.
	require.Eventually(t, func() bool { return client.runs() == 3 }, time.Second, 5*time.Millisecond)
	client.emit(whatsmeow.QRChannelTimeout)
	require.Eventually(t, func() bool { return !svc.pairingActive() }, time.Second, 5*time.Millisecond)
}

func TestWhatsAppService_RefreshStartsOnePairingRun(t *testing.T) {
	client := &fakeWAClient{connected: true}
	svc := newWhatsAppService(context.Background(), client, "55", NewInstanceHub(), logger.Discard())

	status, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.InstanceDisconnected, status.Status)
	require.Eventually(t, func() bool { return client.runs() == 1 }, time.Second, 5*time.Millisecond)

	_, err = svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, client.runs(), "an active run is not restarted")

	client.emit(whatsmeow.QRChannelTimeout)
	require.Eventually(t, func() bool { return !svc.pairingActive() }, time.Second, 5*time.Millisecond)
}

func TestWhatsAppService_SendText(t *testing.T) {
	client := pairedClient()
	svc := newWhatsAppService(context.Background(), client, "55", NewInstanceHub(), logger.Discard())

	require.NoError(t, svc.SendText(context.Background(), "(11) 98888-0000", "oi"))
	assert.Equal(t, []string{"5511988880000: oi"}, client.sent)

	assert.ErrorIs(t, svc.SendText(context.Background(), "123", "oi"), ErrInvalidPhone)

	client.Disconnect()
	assert.ErrorIs(t, svc.SendText(context.Background(), "(11) 98888-0000", "oi"), ErrNotConnected)
}
