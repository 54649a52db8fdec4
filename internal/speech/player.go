package speech

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/curesight/client-go/pkg/logger"
)

// Player turns a materialized audio file into sound. Playback is
// fire-and-forget from the cache's point of view.
type Player interface {
	Play(ctx context.Context, path string) error
}

// ExecPlayer shells out to a configured player command (e.g. "mpv
// --no-terminal" or "aplay"); the file path is appended as the last argument.
type ExecPlayer struct {
	command string
}

func NewExecPlayer(command string) *ExecPlayer {
	return &ExecPlayer{command: command}
}

func (p *ExecPlayer) Play(ctx context.Context, path string) error {
	if p.command == "" {
		logger.Debug("No player command configured, skipping playback", zap.String("path", path))
		return nil
	}

	parts := strings.Fields(p.command)
	args := append(parts[1:], path)

	cmd := exec.CommandContext(ctx, parts[0], args...)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to play audio: %w", err)
	}
	return nil
}

// NopPlayer discards playback, for headless and test use.
type NopPlayer struct{}

func (NopPlayer) Play(ctx context.Context, path string) error {
	return nil
}
