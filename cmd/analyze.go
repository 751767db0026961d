package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/github-activity/internal/domain"
	"github.com/naka-gawa/github-activity/internal/presenter"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <handle>",
	Short: "Shows a user's profile and the activity of their repositories",
	Long: `Looks up the user, then fetches their most recently updated repositories
and the commits of every non-fork repository within the window.
A repository whose commits cannot be fetched is listed with no activity.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		opts, err := readListOptions(cmd)
		if err != nil {
			return err
		}

		report, err := a.aggregator.Analyze(cmd.Context(), args[0], a.cfg.WindowDays)
		if err != nil {
			return fmt.Errorf("failed to analyze %s: %w", args[0], err)
		}
		report.Repositories = opts.apply(report.Repositories)

		out := cmd.OutOrStdout()
		if opts.json {
			return writeJSON(out, report)
		}
		presenter.RenderProfile(out, report.User)
		fmt.Fprintf(out, "\nRepositories (commit activity over the last %d days)\n\n", report.WindowDays)
		presenter.RenderRepositories(out, report.Repositories)
		return nil
	},
}

var reposCmd = &cobra.Command{
	Use:   "repos <handle>",
	Short: "Lists a user's repositories with their commit activity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		opts, err := readListOptions(cmd)
		if err != nil {
			return err
		}

		repos, err := a.aggregator.Aggregate(cmd.Context(), args[0], a.cfg.WindowDays)
		if err != nil {
			return fmt.Errorf("failed to aggregate repositories for %s: %w", args[0], err)
		}
		repos = opts.apply(repos)

		if opts.json {
			return writeJSON(cmd.OutOrStdout(), repos)
		}
		presenter.RenderRepositories(cmd.OutOrStdout(), repos)
		return nil
	},
}

// listOptions are the search and ordering flags shared by analyze and repos.
type listOptions struct {
	search string
	key    presenter.SortKey
	dir    presenter.Direction
	json   bool
}

func readListOptions(cmd *cobra.Command) (*listOptions, error) {
	search, _ := cmd.Flags().GetString("search")
	sortFlag, _ := cmd.Flags().GetString("sort")
	dirFlag, _ := cmd.Flags().GetString("direction")
	asJSON, _ := cmd.Flags().GetBool("json")

	key, err := presenter.ParseSortKey(sortFlag)
	if err != nil {
		return nil, err
	}
	dir, err := presenter.ParseDirection(dirFlag)
	if err != nil {
		return nil, err
	}
	return &listOptions{search: search, key: key, dir: dir, json: asJSON}, nil
}

func (o *listOptions) apply(repos []*domain.EnrichedRepository) []*domain.EnrichedRepository {
	return presenter.Sort(presenter.Filter(repos, o.search), o.key, o.dir)
}

func writeJSON(w io.Writer, v any) error {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results to JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(jsonData))
	return err
}

func addListFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("search", "s", "", "Only show repositories whose name or description contains this text")
	cmd.Flags().String("sort", "updated", "Sort by name, stars, forks, updated or commits")
	cmd.Flags().String("direction", "desc", "Sort direction (asc or desc)")
	cmd.Flags().Bool("json", false, "Output JSON instead of tables")
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(reposCmd)
	addListFlags(analyzeCmd)
	addListFlags(reposCmd)
}
