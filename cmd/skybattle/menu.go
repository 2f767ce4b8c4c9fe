package main

import (
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-skybattle/internal/platform/tui"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Pick levels interactively",
	Long: `Opens the level menu with your best times.

Menu keys:
  Up/Down   - Navigate
  Enter     - Fly the selected level
  Tab/T     - Best-times board
  C         - Switch skin
  Q         - Quit`,
	RunE: runMenu,
}

func runMenu(_ *cobra.Command, _ []string) error {
	catalog, err := loadCatalog()
	if err != nil {
		return err
	}

	logOut, closeLog := openLogFile()
	defer closeLog()
	logger := newLogger(logOut, "skybattle")

	store := openStore(logger)
	if store != nil {
		defer store.Close()
	}

	return tui.RunSession(newEnv(catalog, store, logger))
}
