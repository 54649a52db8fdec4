package console

import (
	"context"
	"sync"

	"github.com/curesight/client-go/internal/gateway"
	"github.com/curesight/client-go/internal/models"
)

// Logbook lists submitted queries and tracks the single selected entry the
// note composer targets.
type Logbook struct {
	gw *gateway.Client

	mu       sync.Mutex
	entries  []models.QueryLogEntry
	selected string
}

func NewLogbook(gw *gateway.Client) *Logbook {
	return &Logbook{gw: gw}
}

// Refresh replaces the held list with the backend's current one, in server
// order. The selection survives only if its entry still exists.
func (b *Logbook) Refresh(ctx context.Context) error {
	var resp struct {
		Items []models.QueryLogEntry `json:"items"`
	}
	if err := b.gw.GetJSON(ctx, "/api/admin/logs", nil, &resp); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries = resp.Items
	if b.selected != "" && b.findLocked(b.selected) == nil {
		b.selected = ""
	}
	return nil
}

// Select sets the active entry; an unknown id clears the selection.
func (b *Logbook) Select(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.findLocked(id) == nil {
		b.selected = ""
		return
	}
	b.selected = id
}

// Selected returns the active entry, or nil when nothing is selected.
func (b *Logbook) Selected() *models.QueryLogEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.findLocked(b.selected)
}

func (b *Logbook) Entries() []models.QueryLogEntry {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries := make([]models.QueryLogEntry, len(b.entries))
	copy(entries, b.entries)
	return entries
}

func (b *Logbook) findLocked(id string) *models.QueryLogEntry {
	if id == "" {
		return nil
	}
	for i := range b.entries {
		if b.entries[i].ID == id {
			return &b.entries[i]
		}
	}
	return nil
}
