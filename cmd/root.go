package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/bellring/internal/api"
	"github.com/abhisek/bellring/internal/app"
	"github.com/abhisek/bellring/internal/auth"
	"github.com/abhisek/bellring/internal/cache"
	"github.com/abhisek/bellring/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "bellring",
	Short: "Terminal quiz client for Bell Ringer",
	Long:  "Bell Ringer — take quizzes from a Bell Ringer server in your terminal, with offline resume.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: XDG config dir)")
	rootCmd.PersistentFlags().String("server", "", "Base URL of the Bell Ringer server (overrides BELLRING_SERVER)")
	rootCmd.PersistentFlags().String("token-file", "", "Path to the bearer token file (overrides BELLRING_TOKEN_FILE)")
	rootCmd.PersistentFlags().String("db", "", "Path to the resume cache database (overrides BELLRING_DB)")

	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)
}

// loadConfig resolves the layered configuration: file, environment, flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if v, _ := cmd.Flags().GetString("server"); v != "" {
		cfg.Server.BaseURL = v
	}
	if v, _ := cmd.Flags().GetString("token-file"); v != "" {
		cfg.Auth.TokenFile = v
	}
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		cfg.Cache.Path = v
	}
	return cfg, nil
}

// buildClient wires the identity and API client from config.
func buildClient(cfg *config.Config) (*api.Client, auth.Identity, error) {
	tokenPath := cfg.Auth.TokenFile
	if tokenPath == "" {
		var err error
		tokenPath, err = auth.DefaultTokenPath()
		if err != nil {
			return nil, nil, err
		}
	}
	ident := auth.NewFileTokenSource(tokenPath)
	return api.New(cfg.Server.BaseURL, ident), ident, nil
}

// openCache opens the resume cache at the configured path.
func openCache(cfg *config.Config) (*cache.Store, error) {
	path := cfg.Cache.Path
	if path == "" {
		var err error
		path, err = cache.DefaultPath()
		if err != nil {
			return nil, err
		}
	} else if err := cache.EnsureDir(path); err != nil {
		return nil, err
	}
	return cache.Open(path)
}

func runApp(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	client, ident, err := buildClient(cfg)
	if err != nil {
		return fmt.Errorf("build client: %w", err)
	}

	// The cache is a convenience; the app still runs without it.
	store, err := openCache(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Resume cache unavailable:", err)
		fmt.Fprintln(os.Stderr, "Unfinished quizzes will not survive a restart.")
		store = nil
	} else {
		defer store.Close()
	}

	return app.Run(app.Options{
		API:      client,
		Identity: ident,
		Cache:    store,
		Config:   cfg,
		Version:  version,
	})
}
