package console

import (
	"context"
	"sync"

	"github.com/curesight/client-go/internal/gateway"
	"github.com/curesight/client-go/internal/models"
)

// NoteComposer attaches an operator note to the logbook's selected entry.
// Notes are write-only: nothing is kept locally once the backend accepts one.
type NoteComposer struct {
	gw      *gateway.Client
	logbook *Logbook

	mu     sync.Mutex
	buffer string
}

func NewNoteComposer(gw *gateway.Client, logbook *Logbook) *NoteComposer {
	return &NoteComposer{gw: gw, logbook: logbook}
}

func (c *NoteComposer) SetText(text string) {
	c.mu.Lock()
	c.buffer = text
	c.mu.Unlock()
}

func (c *NoteComposer) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buffer
}

// Submit posts the buffered note against the selected entry. With no
// selection it is a no-op: no request, no error.
func (c *NoteComposer) Submit(ctx context.Context) error {
	entry := c.logbook.Selected()
	if entry == nil {
		return nil
	}

	c.mu.Lock()
	text := c.buffer
	c.mu.Unlock()

	note := models.Note{QueryID: entry.ID, Note: text}
	if err := c.gw.PostJSON(ctx, "/api/admin/notes", note, nil); err != nil {
		return err
	}

	c.mu.Lock()
	c.buffer = ""
	c.mu.Unlock()
	return nil
}
