package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"whatsapp-disparador/internal/model"
	"whatsapp-disparador/internal/repository"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreCurrent(),
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

type mockSender struct {
	mock.Mock
}

func (m *mockSender) SendText(ctx context.Context, phone, text string) error {
	args := m.Called(phone, text)
	return args.Error(0)
}

func (m *mockSender) Status() model.InstanceStatus {
	args := m.Called()
	return args.Get(0).(model.InstanceStatus)
}

type mockIdentity struct {
	mock.Mock
}

func (m *mockIdentity) GetUser(ctx context.Context, token string) (*model.User, error) {
	args := m.Called(token)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

// fakeSecrets is a SecretSource backed by a map; err fails every lookup
type fakeSecrets struct {
	values map[string]string
	err    error
}

func (f fakeSecrets) Lookup(name string) (string, bool, error) {
	if f.err != nil {
		return "", false, f.err
	}
	v, ok := f.values[name]
	return v, ok && v != "", nil
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := repository.Open(t.TempDir() + "/app.db")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

var (
	connected    = model.InstanceStatus{Status: model.InstanceConnected, PhoneNumber: "5511999990000"}
	disconnected = model.InstanceStatus{Status: model.InstanceDisconnected}
)
