package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-skybattle/internal/platform/tui"
	"github.com/vovakirdan/tui-skybattle/internal/storage"
)

var (
	timesBoard bool
	timesLimit int
	timesClear bool
)

var timesCmd = &cobra.Command{
	Use:   "times [level]",
	Short: "Show best times and recent attempts",
	Long: `Shows the best time of every level, or the history of one level.

Examples:
  skybattle times
  skybattle times wingmen --limit 20
  skybattle times --board
  skybattle times wingmen --clear`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTimes,
}

func init() {
	timesCmd.Flags().BoolVar(&timesBoard, "board", false, "Open the interactive best-times board")
	timesCmd.Flags().IntVarP(&timesLimit, "limit", "n", 10, "Number of attempts to show")
	timesCmd.Flags().BoolVar(&timesClear, "clear", false, "Forget the best time of the level")
}

func runTimes(_ *cobra.Command, args []string) error {
	catalog, err := loadCatalog()
	if err != nil {
		return err
	}

	store, err := storage.Open(settings.DB)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer store.Close()

	if timesBoard {
		cfg := runtimeConfig()
		return tui.RunTimes(catalog, store, cfg.ScreenW, cfg.ScreenH)
	}

	if len(args) == 0 {
		if timesClear {
			return errors.New("--clear needs a level")
		}
		return printBestTimes(store)
	}

	levelID := args[0]
	if !catalog.Exists(levelID) {
		return fmt.Errorf("unknown level %q", levelID)
	}
	if timesClear {
		if err := store.ClearBestTime(levelID); err != nil {
			return err
		}
		log.New(os.Stderr).Info("best time cleared", "level", levelID)
		return nil
	}
	return printLevelTimes(store, levelID)
}

func printBestTimes(store *storage.Store) error {
	entries, err := store.BestTimes()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No best times yet. Win a level first!")
		return nil
	}

	maxIDLen := 5 // "Level" header
	for _, e := range entries {
		maxIDLen = max(maxIDLen, len(e.LevelID))
	}

	fmt.Println("Best times:")
	fmt.Println()
	fmt.Printf("  %-*s  %8s  %s\n", maxIDLen, "Level", "Time", "Date")
	fmt.Printf("  %-*s  %8s  %s\n", maxIDLen, "-----", "----", "----")
	for _, e := range entries {
		fmt.Printf("  %-*s  %8s  %s\n", maxIDLen, e.LevelID, tui.FormatSeconds(e.Seconds), e.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func printLevelTimes(store *storage.Store, levelID string) error {
	best, hasBest, err := store.BestTime(levelID)
	if err != nil {
		return err
	}
	stats, err := store.GetLevelStats(levelID)
	if err != nil {
		return err
	}
	attempts, err := store.RecentAttempts(levelID, timesLimit)
	if err != nil {
		return err
	}

	fmt.Printf("Level: %s\n", levelID)
	if hasBest {
		fmt.Printf("Best:  %s\n", tui.FormatSeconds(best))
	} else {
		fmt.Println("Best:  -")
	}
	if stats != nil {
		fmt.Printf("Wins:  %d of %d attempts, %d kills total\n", stats.Wins, stats.Attempts, stats.TotalKills)
	}
	fmt.Println()

	if len(attempts) == 0 {
		fmt.Println("No attempts yet.")
		return nil
	}

	fmt.Printf("  %-6s  %8s  %5s  %s\n", "Result", "Time", "Kills", "Date")
	fmt.Printf("  %-6s  %8s  %5s  %s\n", "------", "----", "-----", "----")
	for _, a := range attempts {
		result := "lost"
		if a.Won {
			result = "won"
		}
		fmt.Printf("  %-6s  %8s  %5d  %s\n", result, tui.FormatSeconds(a.Elapsed), a.Kills, a.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}
