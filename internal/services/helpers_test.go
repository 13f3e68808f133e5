package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"cashflow/internal/auth"
	"cashflow/internal/core"
	"cashflow/internal/mail"
	"cashflow/internal/storage"

	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "cashflow.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newTestUser(t *testing.T, repo *storage.SQLiteRepository, name string) core.User {
	t.Helper()
	hash, err := auth.HashPassword("secret1")
	require.NoError(t, err)
	u, err := repo.CreateUser(context.Background(), core.User{
		Username:     name,
		Email:        name + "@example.com",
		PasswordHash: hash,
	})
	require.NoError(t, err)
	return u
}

// recordingMailer keeps every message it is asked to send.
type recordingMailer struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) last() mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return mail.Message{}
	}
	return m.sent[len(m.sent)-1]
}

var errMailDown = errors.New("mail provider unavailable")

func newTestAuthService(t *testing.T, repo *storage.SQLiteRepository) (*AuthService, *recordingMailer) {
	t.Helper()
	mailer := &recordingMailer{}
	svc := NewAuthService(repo,
		auth.NewTokenIssuer("test-secret-0123456789", time.Hour),
		auth.NewMemoryRevoker(100),
		mailer,
		15*time.Minute)
	return svc, mailer
}

func money(cents int64) core.Money { return core.Money{Cents: cents} }

func ptr[T any](v T) *T { return &v }
