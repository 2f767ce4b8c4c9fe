package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-skybattle/internal/config"
	"github.com/vovakirdan/tui-skybattle/internal/level"
	"github.com/vovakirdan/tui-skybattle/internal/platform/tui"
	"github.com/vovakirdan/tui-skybattle/internal/sim"
)

var (
	simRuns      int
	simFireEvery int
	simNoTrack   bool
	simShield    float64
	simMaxTicks  int
	simRecord    bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate <level>",
	Short: "Fly a level headless with the autopilot",
	Long: `Plays a level without a terminal using a simple autopilot and prints
the outcome of every run. Useful for balancing level files.

Run i uses seed+i, so a fixed --seed reproduces the whole batch.

Examples:
  skybattle simulate first-contact
  skybattle simulate flagship --runs 50 --seed 1
  skybattle simulate wingmen --fire-every 1 --no-track`,
	Args: cobra.ExactArgs(1),
	RunE: runSimulate,
}

func init() {
	opts := sim.DefaultOptions()
	simulateCmd.Flags().IntVar(&simRuns, "runs", 10, "Number of attempts")
	simulateCmd.Flags().IntVar(&simFireEvery, "fire-every", opts.FireEvery, "Fire every N ticks (0 = never)")
	simulateCmd.Flags().BoolVar(&simNoTrack, "no-track", false, "Do not steer toward enemies")
	simulateCmd.Flags().Float64Var(&simShield, "shield-distance", opts.ShieldDistance, "Shield when a projectile is this close (0 = never)")
	simulateCmd.Flags().IntVar(&simMaxTicks, "max-ticks", opts.MaxTicks, "Give up after this many ticks")
	simulateCmd.Flags().BoolVar(&simRecord, "record", false, "Save attempts and best times to the database")
}

func runSimulate(_ *cobra.Command, args []string) error {
	catalog, err := loadCatalog()
	if err != nil {
		return err
	}
	def, err := catalog.Lookup(args[0])
	if err != nil {
		return fmt.Errorf("unknown level %q", args[0])
	}
	def = config.ApplyDifficulty(def, difficulty())

	logger := newLogger(os.Stderr, "sim")

	var deps level.Deps
	if simRecord {
		store := openStore(logger)
		if store != nil {
			defer store.Close()
			deps.BestTimes = store
			deps.Observer = store.AttemptRecorder(logger)
		}
	}

	opts := sim.Options{
		FireEvery:      simFireEvery,
		Track:          !simNoTrack,
		ShieldDistance: simShield,
		MaxTicks:       simMaxTicks,
	}

	seed := settings.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	cfg := runtimeConfig()

	fmt.Printf("Simulating %s (%s), %d runs, seed %d\n\n", def.ID, difficulty(), simRuns, seed)
	fmt.Printf("  %4s  %-7s  %8s  %5s  %6s  %5s  %5s\n", "Run", "Result", "Time", "Kills", "Ticks", "Shots", "Hits")

	var wins, timeouts int
	var winTime float64
	for i := 0; i < simRuns; i++ {
		cfg.Seed = seed + int64(i)
		out, err := sim.Run(def, cfg, deps, opts)
		result := "lost"
		switch {
		case errors.Is(err, sim.ErrTimeout):
			result = "timeout"
			timeouts++
		case err != nil:
			return err
		case out.Result.Won:
			result = "won"
			wins++
			winTime += out.Result.Elapsed
		}
		fmt.Printf("  %4d  %-7s  %8s  %5d  %6d  %5d  %5d\n",
			i+1, result, tui.FormatSeconds(out.Result.Elapsed), out.Result.Kills,
			out.Ticks, out.Shots, out.Stats.Collisions.PlayerHits)
	}

	printSummary(os.Stdout, simRuns, wins, timeouts, winTime)
	return nil
}

func printSummary(w io.Writer, runs, wins, timeouts int, winTime float64) {
	if runs == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Won %d of %d (%.0f%%)", wins, runs, 100*float64(wins)/float64(runs))
	if timeouts > 0 {
		fmt.Fprintf(w, ", %d timed out", timeouts)
	}
	fmt.Fprintln(w)
	if wins > 0 {
		fmt.Fprintf(w, "Average winning time: %s\n", tui.FormatSeconds(winTime/float64(wins)))
	}
}
