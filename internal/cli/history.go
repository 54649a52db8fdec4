package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/curesight/client-go/internal/history"
	"github.com/curesight/client-go/internal/intake"
	"github.com/curesight/client-go/pkg/logger"
)

func init() {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show this client's recent submissions",
		Run:   runHistory,
	}
	cmd.Flags().IntP("limit", "n", 20, "Maximum entries to show")
	RootCmd.AddCommand(cmd)
}

func runHistory(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := openHistory()
	if err != nil {
		exitErr("open history", err)
	}
	defer store.Close()

	subs, err := store.Recent(cmd.Context(), limit)
	if err != nil {
		exitErr("history", err)
	}

	b, _ := json.MarshalIndent(subs, "", "  ")
	fmt.Println(string(b))
}

func openHistory() (*history.Store, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.History.Path), 0755); err != nil {
		return nil, err
	}
	store, err := history.NewStore(cfg.History.Path)
	if err != nil {
		return nil, err
	}
	if err := store.InitSchema(); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

// openRecorder returns the history store as a recorder, or nil when the
// store cannot be opened; submissions proceed without a local trail.
func openRecorder() intake.Recorder {
	store, err := openHistory()
	if err != nil {
		logger.Warn("History disabled", zap.Error(err))
		return nil
	}
	return store
}
