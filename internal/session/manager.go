package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/curesight/client-go/internal/gateway"
	"github.com/curesight/client-go/pkg/logger"
)

type State string

const (
	Unauthenticated State = "unauthenticated"
	Authenticating  State = "authenticating"
	Authenticated   State = "authenticated"
)

// Manager owns the operator credential lifecycle. It is the only writer of
// the token; the gateway attaches it to console requests and reports
// credential rejections back through the auth-failure hook.
type Manager struct {
	gw *gateway.Client

	mu          sync.Mutex
	state       State
	token       string
	lastFailure string
}

func NewManager(gw *gateway.Client) *Manager {
	m := &Manager{gw: gw, state: Unauthenticated}
	gw.SetAuthFailureHook(m.Invalidate)
	return m
}

// Login verifies credentials with the backend. On success the token is stored
// and armed on the gateway; on failure the state returns to Unauthenticated
// with a readable message available via LastFailure.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	m.mu.Lock()
	if m.state == Authenticating {
		m.mu.Unlock()
		return &gateway.Failure{Kind: gateway.KindTransport, Detail: "login already in progress"}
	}
	m.state = Authenticating
	m.lastFailure = ""
	m.mu.Unlock()

	var resp struct {
		Token string `json:"token"`
	}
	err := m.gw.PostJSON(ctx, "/api/admin/login", map[string]string{
		"username": username,
		"password": password,
	}, &resp)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		m.state = Unauthenticated
		m.lastFailure = err.Error()
		logger.Warn("Operator login failed", zap.String("username", username), zap.Error(err))
		return err
	}

	m.state = Authenticated
	m.token = resp.Token
	m.gw.UseToken(resp.Token)
	logger.Info("Operator authenticated", zap.String("username", username))
	return nil
}

// Logout drops the credential and disarms the gateway.
func (m *Manager) Logout() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = Unauthenticated
	m.token = ""
	m.gw.ClearToken()
	logger.Info("Operator logged out")
}

// Invalidate handles a credential rejected by the backend: an expired or
// revoked token is only ever discovered this way.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Authenticated {
		return
	}
	m.state = Unauthenticated
	m.token = ""
	m.lastFailure = "session expired, log in again"
	m.gw.ClearToken()
	logger.Warn("Session invalidated by backend")
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

func (m *Manager) LastFailure() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastFailure
}
