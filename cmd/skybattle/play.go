package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-skybattle/internal/level"
	"github.com/vovakirdan/tui-skybattle/internal/platform/tui"
	"github.com/vovakirdan/tui-skybattle/internal/registry"
)

var playCmd = &cobra.Command{
	Use:   "play [level]",
	Short: "Fly a level",
	Long: `Start flying the specified level, or the first level of the campaign.
Winning continues with the next level.

Controls:
  W/S, Up/Down   - Climb / descend (X stops)
  Space/F        - Fire
  E              - Raise shield
  P/Esc          - Pause
  Backspace      - Leave the level
  Ctrl+S         - Save a screenshot
  Q/Ctrl+C       - Quit

Examples:
  skybattle play
  skybattle play wingmen --difficulty easy
  skybattle play flagship --seed 42`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

func runPlay(_ *cobra.Command, args []string) error {
	catalog, err := loadCatalog()
	if err != nil {
		return err
	}

	var def level.Definition
	if len(args) == 1 {
		def, err = catalog.Lookup(args[0])
		if errors.Is(err, registry.ErrUnknownLevel) {
			return fmt.Errorf("unknown level %q, run 'skybattle list' to see the campaign", args[0])
		}
		if err != nil {
			return err
		}
	} else {
		var ok bool
		if def, ok = catalog.First(); !ok {
			return errors.New("the campaign has no levels")
		}
	}

	logOut, closeLog := openLogFile()
	defer closeLog()
	logger := newLogger(logOut, "skybattle")

	store := openStore(logger)
	if store != nil {
		defer store.Close()
	}

	logger.Info("playing", "level", def.ID, "difficulty", difficulty())
	return tui.Run(newEnv(catalog, store, logger), def)
}
