package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/curesight/client-go/internal/intake"
	"github.com/curesight/client-go/internal/models"
	"github.com/curesight/client-go/internal/speech"
)

func init() {
	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "Submit symptoms for triage",
	}

	textCmd := &cobra.Command{
		Use:   "text <symptoms>",
		Short: "Analyze a typed symptom description",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			orch, spk := newOrchestrator()
			defer spk.Close()

			result, err := orch.SubmitText(cmd.Context(), args[0], langFlag)
			if err != nil {
				exitErr("analyze", err)
			}
			spk.Wait()
			printResult(result)
		},
	}

	imageCmd := &cobra.Command{
		Use:   "image <file>",
		Short: "Analyze a prescription image",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runUpload(cmd, args[0], models.InputImage)
		},
	}
	imageCmd.Flags().StringP("symptoms", "s", "", "Free-text symptom context")

	audioCmd := &cobra.Command{
		Use:   "audio <file>",
		Short: "Analyze a voice recording",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runUpload(cmd, args[0], models.InputAudio)
		},
	}
	audioCmd.Flags().StringP("symptoms", "s", "", "Free-text symptom context")

	analyzeCmd.AddCommand(textCmd, imageCmd, audioCmd)
	RootCmd.AddCommand(analyzeCmd)
}

func runUpload(cmd *cobra.Command, path string, modality models.InputType) {
	symptoms, _ := cmd.Flags().GetString("symptoms")

	file, err := os.Open(path)
	if err != nil {
		exitErr("open file", err)
	}
	defer file.Close()

	orch, spk := newOrchestrator()
	defer spk.Close()

	var result *models.AnalysisResult
	if modality == models.InputImage {
		result, err = orch.SubmitImage(cmd.Context(), file, filepath.Base(path), symptoms, langFlag)
	} else {
		result, err = orch.SubmitAudio(cmd.Context(), file, filepath.Base(path), symptoms, langFlag)
	}
	if err != nil {
		exitErr("analyze", err)
	}
	spk.Wait()
	printResult(result)
}

func newOrchestrator() (*intake.Orchestrator, *speech.Service) {
	gw := newGateway()
	spk, err := newSpeech(gw)
	if err != nil {
		exitErr("speech setup", err)
	}
	return intake.NewOrchestrator(gw, spk, openRecorder()), spk
}

func printResult(result *models.AnalysisResult) {
	b, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(b))
}
