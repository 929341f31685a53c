// Package main provides tripctl, a command-line trip planner that drives a
// planning session against the roadtrip backend.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"roadtrip/internal/client"
	"roadtrip/internal/config"
	"roadtrip/internal/directions"
)

// Global flag values.
var (
	flagAPIURL  string
	flagUserID  string
	flagVerbose bool
)

// cfg is loaded once by PersistentPreRunE.
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tripctl",
	Short: "tripctl plans road trips against the roadtrip backend",
	Long: `tripctl builds a trip from a list of stops, routes it, estimates its
budget and optionally saves it. It also lists, shows and deletes saved trips.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		if flagAPIURL != "" {
			cfg.Client.BaseURL = flagAPIURL
		}
		if flagUserID != "" {
			cfg.Client.UserID = flagUserID
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagAPIURL, "api", "", "backend base URL (default: $ROADTRIP_API_URL)")
	rootCmd.PersistentFlags().StringVar(&flagUserID, "user", "", "user id (default: $ROADTRIP_USER_ID)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log background planner activity")

	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(removeStopCmd)
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if flagVerbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func newBackend() *client.Client {
	return client.New(cfg.Client.BaseURL, cfg.Client.Timeout)
}

// newRouteService calls the provider directly when a key is configured and
// goes through the backend relay otherwise.
func newRouteService() (*directions.Service, error) {
	var provider directions.Provider = directions.NewRelayProvider(cfg.Client.BaseURL, cfg.Client.Timeout)
	if cfg.Directions.APIKey != "" {
		google, err := directions.NewGoogleProvider(cfg.Directions.APIKey, cfg.Directions.BaseURL, cfg.Directions.Timeout)
		if err != nil {
			return nil, err
		}
		provider = google
	}

	return directions.NewService(provider, directions.ServiceConfig{
		Mode:          cfg.Directions.Mode,
		RatePerSecond: cfg.Directions.RatePerSecond,
		Burst:         cfg.Directions.Burst,
	}), nil
}

func requireUser() (string, error) {
	if cfg.Client.UserID == "" {
		return "", fmt.Errorf("no user id: pass --user or set ROADTRIP_USER_ID")
	}
	return cfg.Client.UserID, nil
}
