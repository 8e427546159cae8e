package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ovation22/TripleDerby-sub002/sim"
	"github.com/ovation22/TripleDerby-sub002/sim/runner"
	"github.com/ovation22/TripleDerby-sub002/sim/storage"
)

var (
	seed       int64  // Master seed; race i runs with seed+i
	configPath string // Optional YAML overlay for the modifier tables
	racecard   string // Racecard YAML file
	dbPath     string // Optional SQLite results database
	workers    int    // Worker pool size
	races      int    // Number of independent runs of the racecard
	maxTicks   int    // Optional override of the tick ceiling
	logLevel   string // Log verbosity level
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "triplederby",
	Short: "Discrete-tick race simulator",
}

// runCmd executes race simulations using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run race simulations from a racecard",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		if racecard == "" {
			logrus.Fatalf("No racecard provided. Exiting simulation.")
		}

		cfg, err := sim.LoadConfig(configPath)
		if err != nil {
			logrus.Fatalf("Configuration rejected: %v", err)
		}
		if maxTicks > 0 {
			cfg.MaxTicks = maxTicks
		}

		ctx := context.Background()
		card, err := storage.NewFileSource(racecard).Racecard(ctx)
		if err != nil {
			logrus.Fatalf("Could not load racecard: %v", err)
		}

		var store storage.ResultStore
		if dbPath != "" {
			store, err = storage.OpenSQLite(dbPath)
			if err != nil {
				logrus.Fatalf("Could not open results database: %v", err)
			}
			defer store.Close()
		}

		requests := make([]runner.Request, races)
		for i := range requests {
			requests[i] = runner.Request{
				Seed:       seed + int64(i),
				Definition: card.Definition,
				Entrants:   card.Entrants,
				Condition:  card.Condition,
			}
		}

		logrus.Infof("Starting %d run(s) of %q with %d workers, seed %d", races, card.Definition.Name, workers, seed)
		outcomes := runner.NewPool(cfg, workers).Run(ctx, requests)

		var notifier storage.Notifier = storage.LogNotifier{}
		for i, out := range outcomes {
			switch {
			case out.Skipped:
				logrus.Warnf("run %d skipped before starting", i)
			case out.Err != nil:
				logrus.Errorf("run %d: %v", i, out.Err)
			default:
				printResult(out.Result)
				if store != nil {
					if err := store.SaveResult(ctx, out.Result); err != nil {
						logrus.Errorf("run %d: persist failed: %v", i, err)
					}
				}
				notifier.RunCompleted(ctx, out.Result)
			}
		}
	},
}

// printResult writes the finish order, payouts, and race call to stdout.
func printResult(result *sim.RaceResult) {
	fmt.Printf("=== %s (%s, %s) run %s ===\n",
		result.Definition.Name, result.Definition.Surface, result.Condition, result.RunID)
	for _, r := range result.Order {
		finish := "did not finish"
		if r.Finished {
			finish = fmt.Sprintf("%.3f ticks", r.FinishTick)
		}
		fmt.Printf("%2d. %-20s %-14s $%d.%02d\n", r.Place, r.Name, finish, r.Payout/100, r.Payout%100)
	}
	for _, ev := range result.Commentary {
		fmt.Printf("  [tick %4d] %s\n", ev.Tick, ev.Text)
	}
	result.Metrics.Print()
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Master seed; race i runs with seed+i")
	runCmd.Flags().StringVar(&configPath, "config", "", "YAML overlay for the modifier tables")
	runCmd.Flags().StringVar(&racecard, "racecard", "", "Racecard YAML file (race, condition, entrants)")
	runCmd.Flags().StringVar(&dbPath, "db", "", "SQLite results database (omit to skip persistence)")
	runCmd.Flags().IntVar(&workers, "workers", 2, "Concurrent race runs")
	runCmd.Flags().IntVar(&races, "races", 1, "Number of independent runs of the racecard")
	runCmd.Flags().IntVar(&maxTicks, "max-ticks", 0, "Override the tick ceiling (0 keeps the configured value)")
	runCmd.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")

	rootCmd.AddCommand(runCmd)
}
