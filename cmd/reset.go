package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/bellring/internal/cache"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the local resume cache",
	Long:  "Clears any unfinished quiz and remembered quiz settings. Server-side attempts are untouched.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		store, err := openCache(cfg)
		if err != nil {
			return fmt.Errorf("open cache: %w", err)
		}
		defer store.Close()

		ctx := cmd.Context()
		for _, slot := range []string{cache.SlotActiveQuiz, cache.SlotQuizConfig} {
			if err := store.Clear(ctx, slot); err != nil {
				return fmt.Errorf("clear %s: %w", slot, err)
			}
		}
		fmt.Println("Resume cache cleared.")
		return nil
	},
}
