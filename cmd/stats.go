package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show quiz statistics without opening the TUI",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		client, _, err := buildClient(cfg)
		if err != nil {
			return fmt.Errorf("build client: %w", err)
		}

		ctx := cmd.Context()
		user, err := client.Me(ctx)
		if err != nil {
			return fmt.Errorf("resolve user: %w", err)
		}
		stats, err := client.UserStats(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("fetch stats: %w", err)
		}

		fmt.Printf("User:            %s\n", user.Email)
		fmt.Printf("Attempts:        %d\n", stats.TotalAttempts)
		fmt.Printf("Completed:       %d\n", stats.CompletedAttempts)
		fmt.Printf("Incomplete:      %d\n", stats.IncompleteAttempts)
		fmt.Printf("Completion rate: %.0f%%\n", stats.CompletionRate*100)
		fmt.Printf("Success rate:    %.0f%%\n", stats.SuccessRate*100)
		return nil
	},
}
