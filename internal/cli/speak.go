package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "speak <text>",
		Short: "Synthesize and play a phrase",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			gw := newGateway()
			spk, err := newSpeech(gw)
			if err != nil {
				exitErr("speech setup", err)
			}
			defer spk.Close()

			if err := spk.EnsurePlayed(cmd.Context(), args[0], langFlag); err != nil {
				exitErr("speak", err)
			}
			spk.Wait()
		},
	}
	RootCmd.AddCommand(cmd)
}
