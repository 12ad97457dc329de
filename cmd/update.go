package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/bellring/internal/selfupdate"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Check for a newer release",
	RunE: func(cmd *cobra.Command, args []string) error {
		checker := selfupdate.NewChecker(selfupdate.WithTimeout(30 * time.Second))

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		result, err := checker.Check(ctx, &selfupdate.CheckInput{Version: version})
		if errors.Is(err, selfupdate.ErrDevBuild) {
			fmt.Println("Running a development build; nothing to compare against.")
			return nil
		}
		if err != nil {
			return fmt.Errorf("check for updates: %w", err)
		}

		if !result.UpdateAvailable {
			fmt.Println("Already running the latest version.")
			return nil
		}
		fmt.Printf("New version available: %s (current %s)\n", result.LatestVersion, result.CurrentVersion)
		if result.ReleaseURL != "" {
			fmt.Println("Download:", result.ReleaseURL)
		}
		return nil
	},
}
