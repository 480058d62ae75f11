package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"whatsapp-disparador/internal/birthday"
	"whatsapp-disparador/internal/i18n"
	"whatsapp-disparador/internal/middleware"
	"whatsapp-disparador/internal/model"
	"whatsapp-disparador/internal/repository"
	"whatsapp-disparador/pkg/logger"
)

var testClock = birthday.FixedClock(time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC))

func newTranslator(t *testing.T) *i18n.Translator {
	t.Helper()
	tr, err := i18n.New([]string{"pt-BR", "en"}, logger.Discard())
	require.NoError(t, err)
	return tr
}

// authed returns a request carrying user-1 in its context
func authed(method, target string, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	req.Header.Set("Accept-Language", "pt-BR")
	return req.WithContext(middleware.WithUser(req.Context(), &model.User{ID: "user-1"}))
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) model.APIResponse {
	t.Helper()
	var resp model.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

type fakeContacts struct {
	contacts []model.Contact
	err      error
	upserted []model.Contact
}

func (f *fakeContacts) ListWithBirthday(ctx context.Context, userID string) ([]model.Contact, error) {
	return f.contacts, f.err
}

func (f *fakeContacts) Upsert(ctx context.Context, contacts []model.Contact) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.upserted = append(f.upserted, contacts...)
	return len(contacts), nil
}

// memoryHandoffs is an in-memory service.HandoffStore
type memoryHandoffs struct {
	mu      sync.Mutex
	entries map[string]string
	err     error
}

func newMemoryHandoffs() *memoryHandoffs {
	return &memoryHandoffs{entries: make(map[string]string)}
}

func (m *memoryHandoffs) Put(ctx context.Context, userID string, payload any) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	key := uuid.NewString()
	m.mu.Lock()
	m.entries[userID+"/"+key] = string(data)
	m.mu.Unlock()
	return key, nil
}

func (m *memoryHandoffs) Get(ctx context.Context, userID, key string, dst any) error {
	m.mu.Lock()
	data, ok := m.entries[userID+"/"+key]
	m.mu.Unlock()
	if !ok {
		return repository.ErrHandoffNotFound
	}
	return json.Unmarshal([]byte(data), dst)
}

func (m *memoryHandoffs) Delete(ctx context.Context, userID, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[userID+"/"+key]; !ok {
		return repository.ErrHandoffNotFound
	}
	delete(m.entries, userID+"/"+key)
	return nil
}

type mockCampaigns struct {
	mock.Mock
}

func (m *mockCampaigns) Launch(ctx context.Context, userID string, req model.LaunchRequest) (*model.Campaign, error) {
	args := m.Called(userID, req)
	c, _ := args.Get(0).(*model.Campaign)
	return c, args.Error(1)
}

func (m *mockCampaigns) List(ctx context.Context, userID string) ([]model.Campaign, error) {
	args := m.Called(userID)
	c, _ := args.Get(0).([]model.Campaign)
	return c, args.Error(1)
}

func (m *mockCampaigns) Dashboard(ctx context.Context, userID string) (*model.Dashboard, error) {
	args := m.Called(userID)
	d, _ := args.Get(0).(*model.Dashboard)
	return d, args.Error(1)
}

type mockIdentity struct {
	mock.Mock
}

func (m *mockIdentity) GetUser(ctx context.Context, token string) (*model.User, error) {
	args := m.Called(token)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

type mockPortal struct {
	mock.Mock
}

func (m *mockPortal) OpenPortal(ctx context.Context, token string) (string, error) {
	args := m.Called(token)
	return args.String(0), args.Error(1)
}

type fakeInstance struct {
	status        model.InstanceStatus
	refreshErr    error
	disconnectErr error
	png           []byte
	qrErr         error
}

func (f *fakeInstance) Status() model.InstanceStatus { return f.status }

func (f *fakeInstance) Refresh(ctx context.Context) (model.InstanceStatus, error) {
	return f.status, f.refreshErr
}

func (f *fakeInstance) Disconnect(ctx context.Context) error { return f.disconnectErr }

func (f *fakeInstance) QRPNG(size int) ([]byte, error) { return f.png, f.qrErr }

var errBoom = errors.New("boom")
