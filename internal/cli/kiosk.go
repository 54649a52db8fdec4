package cli

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/curesight/client-go/internal/cache/redis"
	"github.com/curesight/client-go/internal/intake"
	"github.com/curesight/client-go/internal/metrics"
	"github.com/curesight/client-go/internal/speech"
	"github.com/curesight/client-go/internal/status"
	"github.com/curesight/client-go/pkg/logger"
)

func init() {
	cmd := &cobra.Command{
		Use:   "kiosk",
		Short: "Run the patient intake loop",
		Long:  "Reads symptom descriptions from stdin, submits each for triage, prints and speaks the verdict. Hosts the local status server while running.",
		Run:   runKiosk,
	}
	RootCmd.AddCommand(cmd)
}

func runKiosk(cmd *cobra.Command, args []string) {
	metrics.Init()

	gw := newGateway()

	var remote speech.RemoteCache
	if cfg.Redis.Enabled {
		client, err := redis.NewClient(
			cfg.Redis.Host,
			cfg.Redis.Port,
			cfg.Redis.Password,
			cfg.Redis.DB,
			time.Duration(cfg.Redis.TTLHours)*time.Hour,
		)
		if err != nil {
			logger.Warn("Redis unavailable, continuing without shared audio cache", zap.Error(err))
		} else {
			defer client.Close()
			remote = client
		}
	}

	var player speech.Player = speech.NopPlayer{}
	if cfg.Speech.PlayerCommand != "" {
		player = speech.NewExecPlayer(cfg.Speech.PlayerCommand)
	}
	spk, err := speech.NewService(speech.NewSynthesizer(gw), player, cfg.Speech.CacheCapacity, remote)
	if err != nil {
		exitErr("speech setup", err)
	}
	defer spk.Close()

	orch := intake.NewOrchestrator(gw, spk, openRecorder())

	var srv *status.Server
	if cfg.Status.Enabled {
		srv = status.NewServer(orch)
		srv.Start(cfg.Status.Addr)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	fmt.Printf("CureSight kiosk (%s). Type symptoms and press enter; \"exit\" quits.\n", langFlag)

	for {
		fmt.Print("> ")
		select {
		case <-quit:
			shutdown(srv, spk)
			return
		case line, ok := <-lines:
			if !ok || strings.TrimSpace(line) == "exit" {
				shutdown(srv, spk)
				return
			}
			symptoms := strings.TrimSpace(line)
			if symptoms == "" {
				continue
			}

			result, err := orch.SubmitText(cmd.Context(), symptoms, langFlag)
			if err != nil {
				fmt.Printf("analysis failed: %v\n", err)
				continue
			}
			fmt.Printf("%s / %s\n%s\n", result.Category, result.Severity, result.Recommendation)
			if result.Reason != "" {
				fmt.Printf("reason: %s\n", result.Reason)
			}
		}
	}
}

func shutdown(srv *status.Server, spk *speech.Service) {
	logger.Info("Kiosk shutting down")
	if srv != nil {
		srv.Shutdown()
	}
	spk.Wait()
}
