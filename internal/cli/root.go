// Package cli implements the curesight CLI commands.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/curesight/client-go/internal/gateway"
	"github.com/curesight/client-go/internal/speech"
	"github.com/curesight/client-go/pkg/config"
	"github.com/curesight/client-go/pkg/logger"
)

var (
	backendFlag string
	langFlag    string

	cfg *config.Config
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "curesight",
	Short: "CureSight symptom-triage client",
	Long:  "Client for the CureSight triage service: patient intake (text, prescription image, voice), spoken verdicts, and the operator console.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		if backendFlag != "" {
			cfg.Backend.BaseURL = backendFlag
		}
		if langFlag == "" {
			langFlag = cfg.Speech.DefaultLang
		}
		return logger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&backendFlag, "backend", "b", "", "Backend base URL (default: $CURESIGHT_BACKEND_BASEURL or config)")
	RootCmd.PersistentFlags().StringVarP(&langFlag, "lang", "l", "", "Language code (default: en-US)")
}

func newGateway() *gateway.Client {
	return gateway.NewClient(cfg.Backend.BaseURL, time.Duration(cfg.Backend.TimeoutSec)*time.Second)
}

func newSpeech(gw *gateway.Client) (*speech.Service, error) {
	var player speech.Player = speech.NopPlayer{}
	if cfg.Speech.PlayerCommand != "" {
		player = speech.NewExecPlayer(cfg.Speech.PlayerCommand)
	}
	return speech.NewService(speech.NewSynthesizer(gw), player, cfg.Speech.CacheCapacity, nil)
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
