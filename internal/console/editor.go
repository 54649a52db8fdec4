package console

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/curesight/client-go/internal/gateway"
	"github.com/curesight/client-go/internal/models"
)

// Editor holds one machine-editable configuration blob. The backend owns the
// accepted value; the editor holds a draft, validates raw edits before
// applying them, and re-reads the accepted value after every save rather than
// trusting its own write.
type Editor[T any] struct {
	gw       *gateway.Client
	endpoint string

	mu    sync.Mutex
	draft T
}

func NewRulesEditor(gw *gateway.Client) *Editor[models.RuleSet] {
	return &Editor[models.RuleSet]{gw: gw, endpoint: "/api/admin/rules"}
}

func NewContentEditor(gw *gateway.Client) *Editor[models.ContentConfig] {
	return &Editor[models.ContentConfig]{gw: gw, endpoint: "/api/admin/content"}
}

// Load replaces the draft wholesale with the backend's current value.
func (e *Editor[T]) Load(ctx context.Context) error {
	var value T
	if err := e.gw.GetJSON(ctx, e.endpoint, nil, &value); err != nil {
		return err
	}

	e.mu.Lock()
	e.draft = value
	e.mu.Unlock()
	return nil
}

// Edit applies a raw-text edit to the draft. Malformed input leaves the draft
// untouched and reports why, so the operator sees the problem instead of a
// silently ignored keystroke.
func (e *Editor[T]) Edit(raw string) error {
	var value T
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return fmt.Errorf("invalid edit, draft unchanged: %w", err)
	}

	e.mu.Lock()
	e.draft = value
	e.mu.Unlock()
	return nil
}

// Save sends the draft as a full replacement, then unconditionally reloads so
// the draft reflects whatever the backend actually accepted.
func (e *Editor[T]) Save(ctx context.Context) error {
	e.mu.Lock()
	draft := e.draft
	e.mu.Unlock()

	if err := e.gw.PutJSON(ctx, e.endpoint, draft, nil); err != nil {
		return err
	}
	return e.Load(ctx)
}

func (e *Editor[T]) Draft() T {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft
}

// Raw renders the draft as indented JSON for editing.
func (e *Editor[T]) Raw() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	data, err := json.MarshalIndent(e.draft, "", "  ")
	if err != nil {
		return ""
	}
	return string(data)
}
