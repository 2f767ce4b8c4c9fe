package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the campaign levels",
	Long:  `Shows the levels of the campaign in the order they are flown.`,
	RunE:  runList,
}

func runList(_ *cobra.Command, _ []string) error {
	catalog, err := loadCatalog()
	if err != nil {
		return err
	}
	levels := catalog.List()

	if len(levels) == 0 {
		fmt.Println("No levels available.")
		return nil
	}

	fmt.Println("Campaign:")
	fmt.Println()

	// Calculate column widths
	maxIDLen := 2 // "ID" header
	for _, l := range levels {
		maxIDLen = max(maxIDLen, len(l.ID))
	}

	fmt.Printf("  %-*s  %-6s  %s\n", maxIDLen, "ID", "Goal", "Title")
	fmt.Printf("  %-*s  %-6s  %s\n", maxIDLen, "--", "----", "-----")
	for _, l := range levels {
		fmt.Printf("  %-*s  %-6s  %s\n", maxIDLen, l.ID, l.Goal, l.Title)
	}

	fmt.Println()
	fmt.Println("Run 'skybattle play <id>' to fly a level.")
	return nil
}
