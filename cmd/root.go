// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/naka-gawa/github-activity/internal/config"
	"github.com/naka-gawa/github-activity/internal/gateway"
	"github.com/naka-gawa/github-activity/internal/logger"
	"github.com/naka-gawa/github-activity/internal/usecase"
)

var rootCmd = &cobra.Command{
	Use:   "github-activity",
	Short: "A CLI tool to inspect a GitHub user's recent repository activity.",
	Long: `github-activity looks up a GitHub user, lists their repositories and
builds a per-day commit histogram for each of them over a trailing window
(30 days by default). Results can be printed as tables, charts or JSON, or
served to a browser front-end with the serve command.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().IntP("window", "w", 0, "Activity window in days (default from WINDOW_DAYS, or 30)")
}

// app bundles what every command needs.
type app struct {
	cfg        *config.Config
	logger     *logrus.Logger
	aggregator *usecase.Aggregator
}

// newApp loads configuration, applies the persistent flags and wires the aggregator.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if window, _ := cmd.Flags().GetInt("window"); window != 0 {
		cfg.WindowDays = window
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	level := cfg.LogLevel
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = "debug"
	}
	log := logger.New(os.Stderr, level, cfg.LogFormat)

	githubGateway, err := gateway.NewGitHubGateway(cfg.GitHubToken, cfg.GitHubAPIURL, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub gateway: %w", err)
	}

	return &app{
		cfg:        cfg,
		logger:     log,
		aggregator: usecase.NewAggregator(githubGateway, log, usecase.WithConcurrency(cfg.FetchConcurrency)),
	}, nil
}
