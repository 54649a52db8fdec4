package console

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curesight/client-go/internal/gateway"
	"github.com/curesight/client-go/internal/models"
)

// recordingBackend captures each request the console issues, in order.
type recordingBackend struct {
	mu       sync.Mutex
	requests []string
	bodies   []string

	server *httptest.Server
	gw     *gateway.Client

	rules   models.RuleSet
	content models.ContentConfig
}

func newRecordingBackend(t *testing.T) *recordingBackend {
	t.Helper()
	b := &recordingBackend{
		rules:   models.RuleSet{RedFlags: []any{"chest pain", "unconscious"}},
		content: models.ContentConfig{"disclaimer": "Not for emergencies"},
	}

	b.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		b.mu.Lock()
		b.requests = append(b.requests, r.Method+" "+r.URL.Path)
		b.bodies = append(b.bodies, string(body))
		b.mu.Unlock()

		switch r.Method + " " + r.URL.Path {
		case "GET /api/admin/rules":
			json.NewEncoder(w).Encode(b.rules)
		case "PUT /api/admin/rules":
			json.Unmarshal(body, &b.rules)
		case "GET /api/admin/content":
			json.NewEncoder(w).Encode(b.content)
		case "PUT /api/admin/content":
			json.Unmarshal(body, &b.content)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(b.server.Close)

	b.gw = gateway.NewClient(b.server.URL, time.Second)
	return b
}

func (b *recordingBackend) recorded() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.requests...)
}

func TestLoadReplacesDraft(t *testing.T) {
	backend := newRecordingBackend(t)
	ed := NewRulesEditor(backend.gw)

	require.NoError(t, ed.Load(context.Background()))
	assert.Equal(t, []any{"chest pain", "unconscious"}, ed.Draft().RedFlags)
}

func TestInvalidEditLeavesDraftUnchanged(t *testing.T) {
	backend := newRecordingBackend(t)
	ed := NewRulesEditor(backend.gw)
	require.NoError(t, ed.Load(context.Background()))

	err := ed.Edit(`{"red_flags": ["chest pain",`)
	require.Error(t, err, "the operator must see why the edit was rejected")

	assert.Equal(t, []any{"chest pain", "unconscious"}, ed.Draft().RedFlags)
}

func TestValidEditReplacesDraft(t *testing.T) {
	backend := newRecordingBackend(t)
	ed := NewRulesEditor(backend.gw)
	require.NoError(t, ed.Load(context.Background()))

	require.NoError(t, ed.Edit(`{"red_flags": ["seizure"]}`))
	assert.Equal(t, []any{"seizure"}, ed.Draft().RedFlags)
}

func TestSaveSendsDraftVerbatimThenReloads(t *testing.T) {
	backend := newRecordingBackend(t)
	ed := NewRulesEditor(backend.gw)
	require.NoError(t, ed.Load(context.Background()))
	require.NoError(t, ed.Edit(`{"red_flags": ["chest pain"]}`))

	require.NoError(t, ed.Save(context.Background()))

	recorded := backend.recorded()
	require.Equal(t, []string{
		"GET /api/admin/rules",
		"PUT /api/admin/rules",
		"GET /api/admin/rules",
	}, recorded, "save is always followed by a reload")

	assert.JSONEq(t, `{"red_flags": ["chest pain"]}`, backend.bodies[1])
	assert.Equal(t, []any{"chest pain"}, ed.Draft().RedFlags)
}

func TestSaveReloadsEvenWhenServerRewrites(t *testing.T) {
	backend := newRecordingBackend(t)
	ed := NewContentEditor(backend.gw)
	require.NoError(t, ed.Load(context.Background()))

	// The server's accepted value wins over the optimistic local draft.
	require.NoError(t, ed.Edit(`{"disclaimer": "Edited"}`))
	backend.content = models.ContentConfig{"disclaimer": "Edited", "added_by_server": "v2"}

	require.NoError(t, ed.Save(context.Background()))
	assert.Equal(t, "v2", ed.Draft()["added_by_server"])
}

func TestSaveFailureSkipsReload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"detail":"read-only"}`))
			return
		}
		json.NewEncoder(w).Encode(models.RuleSet{})
	}))
	defer server.Close()

	ed := NewRulesEditor(gateway.NewClient(server.URL, time.Second))
	require.NoError(t, ed.Load(context.Background()))

	err := ed.Save(context.Background())
	require.Error(t, err)
	assert.Equal(t, "read-only", err.Error())
}
