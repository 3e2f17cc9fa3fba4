// Package warmup implements "chordsim warmup": build a ring of N nodes,
// snap it into the ideal Chord state, and print a ring summary table.
package warmup

import (
	"fmt"

	"chordsim/cmd/chordsim/internal/logging"
	"chordsim/cmd/chordsim/internal/scenario"
	"chordsim/cmd/chordsim/internal/ui"
	"chordsim/internal/chord"

	"github.com/spf13/cobra"
)

// Cmd returns the "chordsim warmup" command.
func Cmd(logFlags *logging.Flags) *cobra.Command {
	var (
		bits int
		n    int
		seed int64
	)

	cmd := &cobra.Command{
		Use:   "warmup",
		Short: "Build an N-node ring and snap it into the ideal Chord state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lgr, err := logFlags.Build()
			if err != nil {
				return err
			}
			params := chord.DefaultParams(bits)
			env := chord.NewEnvironment(seed, params, chord.WithLogger(lgr))

			nodes := scenario.BuildRing(env, n, false)
			chord.WarmUp(env)

			rows := make([][]string, 0, len(nodes))
			ring := env.LatestRing()
			for _, id := range ring {
				node, _ := env.NodeByID(id)
				rows = append(rows, []string{
					node.NodeID.Hex(),
					node.Successor().Hex(),
					node.Predecessor().Hex(),
				})
			}

			fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValues(
				ui.KV("bits", fmt.Sprintf("%d", bits)),
				ui.KV("nodes", fmt.Sprintf("%d", len(ring))),
				ui.KV("seed", fmt.Sprintf("%d", seed)),
			))
			fmt.Fprintln(cmd.OutOrStdout(), ui.Table([]string{"node_id", "successor", "predecessor"}, rows))
			return nil
		},
	}

	cmd.Flags().IntVar(&bits, "bits", 160, "identifier space width (m)")
	cmd.Flags().IntVar(&n, "nodes", 16, "number of nodes to create")
	cmd.Flags().Int64Var(&seed, "seed", 42, "RNG seed")
	return cmd
}
