package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/soulsync-ai/soulsync/internal/config"
	"github.com/soulsync-ai/soulsync/internal/drift"
	"github.com/soulsync-ai/soulsync/internal/logging"
	"github.com/soulsync-ai/soulsync/internal/report"
	"github.com/soulsync-ai/soulsync/internal/server"
	"github.com/soulsync-ai/soulsync/internal/store"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "soulsyncd",
		Short: "Emotion event pipeline service",
		Long:  "soulsyncd ingests classified emotion events, tracks emotional drift over time, and serves actions and media suggestions over HTTP.",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(stabilityCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(alertsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the service in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logging.Setup(cfg.Log.Level, cfg.Log.Pretty)

			srv, err := server.New(cfg)
			if err != nil {
				return err
			}

			ctx, stop := server.SignalContext(context.Background())
			defer stop()
			return srv.Run(ctx)
		},
	}
}

// resolveDBPath resolves the database path: --db flag beats config.
func resolveDBPath(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return "", fmt.Errorf("load config: %w", err)
	}
	return cfg.DB.Path, nil
}

func statusCmd() *cobra.Command {
	var (
		dbPath     string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Summarize the emotion log",
		Long: `Summarize the emotion event log: counts, last seen emotion, and the
current stability score.

Reads the SQLite database directly -- the service does not need to be running.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveDBPath(dbPath)
			if err != nil {
				return err
			}
			r, err := report.GenerateStatus(path)
			if err != nil {
				return fmt.Errorf("generate status: %w", err)
			}
			if jsonOutput {
				fmt.Println(report.FormatJSON(r))
			} else {
				fmt.Print(report.FormatStatus(r))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "Override database path (default: from config)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func stabilityCmd() *cobra.Command {
	var (
		dbPath     string
		jsonOutput bool
		limit      int
		threshold  int
	)

	cmd := &cobra.Command{
		Use:   "stability",
		Short: "Analyze emotional drift over the recent window",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveDBPath(dbPath)
			if err != nil {
				return err
			}
			r, err := report.GenerateStability(path, limit, threshold)
			if err != nil {
				return fmt.Errorf("generate stability: %w", err)
			}
			if jsonOutput {
				fmt.Println(report.FormatJSON(r))
			} else {
				fmt.Print(report.FormatStability(r))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "Override database path (default: from config)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().IntVar(&limit, "limit", store.DefaultLimit, "Number of recent events to analyze")
	cmd.Flags().IntVar(&threshold, "threshold", drift.DefaultThreshold, "Drift magnitude that counts as a swing")

	return cmd
}

func historyCmd() *cobra.Command {
	var (
		dbPath     string
		jsonOutput bool
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent emotion events, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveDBPath(dbPath)
			if err != nil {
				return err
			}
			events, err := report.GenerateHistory(path, limit)
			if err != nil {
				return fmt.Errorf("read history: %w", err)
			}
			if jsonOutput {
				fmt.Println(report.FormatJSON(events))
			} else {
				fmt.Print(report.FormatHistory(events))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "Override database path (default: from config)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().IntVar(&limit, "limit", store.DefaultLimit, "Number of events to show")

	return cmd
}

func alertsCmd() *cobra.Command {
	var (
		dbPath     string
		jsonOutput bool
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Show recent drift alerts, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveDBPath(dbPath)
			if err != nil {
				return err
			}
			alerts, err := report.GenerateAlerts(path, limit)
			if err != nil {
				return fmt.Errorf("read alerts: %w", err)
			}
			if jsonOutput {
				fmt.Println(report.FormatJSON(alerts))
			} else {
				fmt.Print(report.FormatAlerts(alerts))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "Override database path (default: from config)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().IntVar(&limit, "limit", store.DefaultLimit, "Number of alerts to show")

	return cmd
}
