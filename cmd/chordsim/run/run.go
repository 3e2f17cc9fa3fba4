// Package run implements "chordsim run": load a YAML scenario, build and
// drive a ring through it (optionally under steady churn), and print the
// resulting telemetry. It emits no CSV and no plots — that stays outside
// the core per spec.md §1; this command prints a human-readable summary.
package run

import (
	"fmt"

	"chordsim/cmd/chordsim/internal/logging"
	"chordsim/cmd/chordsim/internal/scenario"
	"chordsim/cmd/chordsim/internal/ui"
	"chordsim/internal/chord"
	"chordsim/internal/experiment"

	"github.com/spf13/cobra"
)

// Cmd returns the "chordsim run" command.
func Cmd(logFlags *logging.Flags) *cobra.Command {
	var (
		configPath string
		batched    bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a YAML scenario and print the resulting telemetry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := experiment.Load(configPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			lgr, err := logFlags.Build()
			if err != nil {
				return err
			}

			mode := chord.ModeAsync
			if batched {
				mode = chord.ModeBatched
			}

			space, err := cfg.Space()
			if err != nil {
				return err
			}
			params := chord.Params{
				Space:             space,
				BaseLatency:       cfg.BaseLatency,
				StabilizeInterval: cfg.StabilizeInterval,
				WarmupEnd:         cfg.WarmupEnd,
			}
			env := chord.NewEnvironment(cfg.Seed, params, chord.WithMode(mode), chord.WithLogger(lgr))

			scenario.BuildVirtualRing(env, cfg.NodeCount, cfg.VirtualNode, true)
			chord.WarmUp(env)

			if cfg.FaultRate > 0 {
				scenario.FailFraction(env, cfg.FaultRate)
				chord.WarmUp(env)
			}

			switch {
			case mode == chord.ModeBatched && cfg.Horizon > 0:
				// Batched mode drives maintenance directly against the
				// ring snapshot rather than the event queue (§4.8), so
				// event-driven churn scheduling doesn't compose with it
				// here; this mode covers the large-N warm-up/mass-failure
				// shape (exp_1-exp_3), not churn-through-the-queue.
				chord.GlobalStabilizer(env, cfg.Horizon)
			case cfg.Horizon > 0:
				if cfg.JoinRate > 0 || cfg.FailRate > 0 || cfg.LookupRate > 0 {
					driveChurn(env, cfg)
				}
				until := cfg.Horizon
				env.Run(&until)
			}

			printSummary(cmd, cfg, env)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a scenario YAML file")
	cmd.Flags().BoolVar(&batched, "batched", false, "use the synchronous global stabilizer instead of per-node ticks")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func driveChurn(env *chord.Environment, cfg experiment.Config) {
	ring := env.LatestRing()
	rng := env.Rand()
	space := env.Space()

	for _, ev := range experiment.MergedChurnSchedule(rng, cfg.JoinRate, cfg.FailRate, cfg.LookupRate, cfg.Horizon) {
		switch ev.Kind {
		case experiment.ChurnJoin:
			env.ScheduleEvent(ev.At-env.Now(), chord.NodeJoinEvent{})
		case experiment.ChurnFail:
			env.ScheduleEvent(ev.At-env.Now(), chord.NodeFailEvent{})
		case experiment.ChurnLookup:
			if len(ring) == 0 {
				continue
			}
			start := ring[rng.Intn(len(ring))]
			key := space.RandomID(rng)
			env.ScheduleEvent(ev.At-env.Now(), chord.LookupEvent{StartID: start, KeyID: key})
		}
	}
}

func printSummary(cmd *cobra.Command, cfg experiment.Config, env *chord.Environment) {
	var lookups, fails uint64
	for _, id := range env.LatestRing() {
		if node, ok := env.NodeByID(id); ok {
			lookups += node.Lookups()
			fails += node.LookupFail()
		}
	}
	successRate := 1.0
	if lookups > 0 {
		successRate = 1 - float64(fails)/float64(lookups)
	}

	fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValues(
		ui.KV("scenario", cfg.Name),
		ui.KV("now", fmt.Sprintf("%.3fs", env.Now())),
		ui.KV("active nodes", fmt.Sprintf("%d", env.ActiveCount())),
		ui.KV("registered nodes", fmt.Sprintf("%d", env.NodeCount())),
	))
	fmt.Fprintln(cmd.OutOrStdout(), ui.Table(
		[]string{"lookups", "lookup_fail", "success rate"},
		[][]string{{
			fmt.Sprintf("%d", lookups),
			fmt.Sprintf("%d", fails),
			fmt.Sprintf("%.4f", successRate),
		}},
	))
}
