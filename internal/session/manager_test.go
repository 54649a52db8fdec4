package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curesight/client-go/internal/gateway"
)

func newBackend(t *testing.T, handler http.HandlerFunc) *gateway.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return gateway.NewClient(server.URL, time.Second)
}

func TestLoginSuccess(t *testing.T) {
	gw := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		var creds struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "admin", creds.Username)
		assert.Equal(t, "curesight", creds.Password)

		w.Write([]byte(`{"token":"tok-abc"}`))
	})

	mgr := NewManager(gw)
	assert.Equal(t, Unauthenticated, mgr.State())

	require.NoError(t, mgr.Login(context.Background(), "admin", "curesight"))

	assert.Equal(t, Authenticated, mgr.State())
	assert.Equal(t, "tok-abc", mgr.Token())
	assert.Equal(t, "tok-abc", gw.Token())
}

func TestLoginFailure(t *testing.T) {
	gw := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"bad credentials"}`))
	})

	mgr := NewManager(gw)
	err := mgr.Login(context.Background(), "admin", "wrong")

	require.Error(t, err)
	assert.Equal(t, Unauthenticated, mgr.State())
	assert.Empty(t, mgr.Token())
	assert.Equal(t, "bad credentials", mgr.LastFailure())
}

func TestLogoutDropsCredential(t *testing.T) {
	gw := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token":"tok-abc"}`))
	})

	mgr := NewManager(gw)
	require.NoError(t, mgr.Login(context.Background(), "admin", "curesight"))

	mgr.Logout()

	assert.Equal(t, Unauthenticated, mgr.State())
	assert.Empty(t, mgr.Token())
	assert.Empty(t, gw.Token())
}

func TestExpiredTokenInvalidatesSession(t *testing.T) {
	gw := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/admin/login" {
			w.Write([]byte(`{"token":"tok-abc"}`))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"token expired"}`))
	})

	mgr := NewManager(gw)
	require.NoError(t, mgr.Login(context.Background(), "admin", "curesight"))

	// The expiry is only observed when a later console request is rejected.
	err := gw.GetJSON(context.Background(), "/api/admin/logs", nil, &struct{}{})
	require.Error(t, err)

	assert.Equal(t, Unauthenticated, mgr.State())
	assert.Empty(t, gw.Token())
	assert.NotEmpty(t, mgr.LastFailure())
}

func TestLoginFailureMessageClearedOnRetry(t *testing.T) {
	calls := 0
	gw := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail":"bad credentials"}`))
			return
		}
		w.Write([]byte(`{"token":"tok-2"}`))
	})

	mgr := NewManager(gw)
	require.Error(t, mgr.Login(context.Background(), "admin", "wrong"))
	require.NoError(t, mgr.Login(context.Background(), "admin", "right"))

	assert.Equal(t, Authenticated, mgr.State())
	assert.Empty(t, mgr.LastFailure())
}
