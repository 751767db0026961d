package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/github-activity/internal/presenter"
)

var chartCmd = &cobra.Command{
	Use:   "chart <handle> <repo>",
	Short: "Draws the daily commit chart of one repository",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		handle, name := args[0], args[1]

		repos, err := a.aggregator.Aggregate(cmd.Context(), handle, a.cfg.WindowDays)
		if err != nil {
			return fmt.Errorf("failed to aggregate repositories for %s: %w", handle, err)
		}
		for _, repo := range repos {
			if repo.Name == name {
				presenter.RenderActivity(cmd.OutOrStdout(), repo)
				return nil
			}
		}
		return fmt.Errorf("repository %s not found among the %d most recently updated repositories of %s", name, len(repos), handle)
	},
}

func init() {
	rootCmd.AddCommand(chartCmd)
}
