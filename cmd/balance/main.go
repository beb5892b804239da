// balance runs Monte Carlo balance simulations over the combat engine and
// prints a statistics report with imbalance warnings.
//
// Usage:
//
//	balance quick                       - Run the small smoke scenario set
//	balance full                        - Run the exhaustive scenario set
//	balance custom --scenarios <file>   - Run scenarios from a YAML file
//
// Flags:
//
//	--config <path>      - Optional YAML configuration file
//	--iterations <n>     - Override iterations per scenario
//	--seed <value>       - Base random seed for reproducible runs
//	--scenarios <path>   - Scenario file, required for custom mode
//	--verbose            - Force debug-level console logging
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/game/balance"
	"github.com/cory-johannsen/skirmish/internal/observability"
)

var (
	flagConfig     string
	flagIterations int
	flagSeed       int64
	flagScenarios  string
	flagVerbose    bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "balance <quick|full|custom>",
	Short: "Monte Carlo balance testing for the combat engine",
	Long: `balance drives the combat engine and enemy AI through many complete
combats per scenario and reports win rates, pacing, miss rates, and
progression markers, flagging anything outside the configured thresholds.

Modes:
  quick    - a handful of representative fights
  full     - the exhaustive sweep, including the equal-level duel ladder
  custom   - scenarios loaded from a YAML file (--scenarios)`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  false,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVar(&flagConfig, "config", "", "path to YAML configuration file")
	rootCmd.Flags().IntVar(&flagIterations, "iterations", 0, "override iterations per scenario")
	rootCmd.Flags().Int64Var(&flagSeed, "seed", 0, "override the base random seed")
	rootCmd.Flags().StringVar(&flagScenarios, "scenarios", "", "scenario YAML file for custom mode")
	rootCmd.Flags().BoolVar(&flagVerbose, "verbose", false, "debug-level console logging")
}

func run(cmd *cobra.Command, args []string) error {
	var scenarios []balance.Scenario
	switch mode := args[0]; mode {
	case "quick":
		scenarios = balance.QuickScenarios()
	case "full":
		scenarios = balance.FullScenarios()
	case "custom":
		if flagScenarios == "" {
			return fmt.Errorf("custom mode requires --scenarios")
		}
		var err error
		scenarios, err = balance.LoadScenarios(flagScenarios)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown mode %q: expected quick, full, or custom", mode)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagVerbose {
		cfg.Logging.Level = "debug"
		cfg.Logging.Format = "console"
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logger.Sync()

	settings := cfg.Simulator.Settings()
	if flagIterations > 0 {
		settings.DefaultIterations = flagIterations
		// A command-line override beats per-scenario iteration counts too.
		for i := range scenarios {
			scenarios[i].Iterations = flagIterations
		}
	}
	seed := cfg.Simulator.Seed
	if cmd.Flags().Changed("seed") {
		seed = flagSeed
	}

	sim, err := balance.NewSimulator(settings, cfg.Combat.Tuning(), cfg.Balance.Thresholds(), logger)
	if err != nil {
		return err
	}

	logger.Info("starting balance run",
		zap.String("mode", args[0]),
		zap.Int("scenarios", len(scenarios)),
		zap.Int64("seed", seed),
	)
	sum, err := sim.Run(scenarios, seed)
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), balance.FormatReport(sum))
	return nil
}

func loadConfig() (config.Config, error) {
	if flagConfig == "" {
		return config.Default()
	}
	return config.Load(flagConfig)
}
