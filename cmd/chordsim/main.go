// Command chordsim is the experiment-driver CLI fronting the Chord
// discrete-event simulator core (internal/chord). It is explicitly an
// external collaborator per spec.md §1: it builds and drives scenarios
// and prints a human-readable summary, but never emits CSV or plots.
package main

import (
	"fmt"
	"os"

	"chordsim/cmd/chordsim/check"
	"chordsim/cmd/chordsim/internal/logging"
	"chordsim/cmd/chordsim/run"
	"chordsim/cmd/chordsim/warmup"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "chordsim",
		Short:         "Discrete-event Chord DHT simulator",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	var logFlags logging.Flags
	logging.Register(root, &logFlags)

	root.AddCommand(warmup.Cmd(&logFlags))
	root.AddCommand(run.Cmd(&logFlags))
	root.AddCommand(check.Cmd(&logFlags))

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
