package presenter

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/olekukonko/tablewriter"

	"github.com/naka-gawa/github-activity/internal/domain"
)

const maxBarWidth = 40

// Summary describes a commit-activity sequence.
type Summary struct {
	Total      int     `json:"total"`
	ActiveDays int     `json:"active_days"`
	Mean       float64 `json:"mean"`
	Median     float64 `json:"median"`
	Max        int     `json:"max"`
}

// Summarize computes daily statistics over days. An empty sequence yields a zero Summary.
func Summarize(days []domain.CommitsByDay) Summary {
	if len(days) == 0 {
		return Summary{}
	}
	data := make(stats.Float64Data, len(days))
	var s Summary
	for i, d := range days {
		data[i] = float64(d.Count)
		s.Total += d.Count
		if d.Count > 0 {
			s.ActiveDays++
		}
	}
	// Errors only occur on empty input, which is handled above.
	s.Mean, _ = stats.Mean(data)
	s.Median, _ = stats.Median(data)
	peak, _ := stats.Max(data)
	s.Max = int(peak)
	return s
}

// RenderProfile writes the profile header as a two-column table.
func RenderProfile(w io.Writer, user *domain.UserProfile) {
	title := user.Login
	if user.Name != "" {
		title = fmt.Sprintf("%s (@%s)", user.Name, user.Login)
	}
	fmt.Fprintf(w, "\n%s\n", title)
	if user.Bio != "" {
		fmt.Fprintf(w, "%s\n", user.Bio)
	}
	fmt.Fprintln(w)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Field", "Value"})
	table.SetAutoWrapText(false)
	table.Append([]string{"Followers", strconv.Itoa(user.Followers)})
	table.Append([]string{"Following", strconv.Itoa(user.Following)})
	table.Append([]string{"Public Repositories", strconv.Itoa(user.PublicRepos)})
	table.Append([]string{"Public Gists", strconv.Itoa(user.PublicGists)})
	for _, row := range [][2]string{
		{"Location", user.Location},
		{"Company", user.Company},
		{"Blog", user.Blog},
	} {
		if row[1] != "" {
			table.Append([]string{row[0], row[1]})
		}
	}
	if !user.CreatedAt.IsZero() {
		table.Append([]string{"Joined", user.CreatedAt.Format("January 2006")})
	}
	table.Append([]string{"Profile", user.HTMLURL})
	table.Render()
}

// RenderRepositories writes one row per repository.
func RenderRepositories(w io.Writer, repos []*domain.EnrichedRepository) {
	if len(repos) == 0 {
		fmt.Fprintln(w, "No repositories found")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Repository", "Language", "Stars", "Forks", "Updated", "Commits", "Activity"})
	table.SetAutoWrapText(false)
	for _, repo := range repos {
		name := repo.Name
		if repo.Fork {
			name += " (fork)"
		}
		language := repo.Language
		if language == "" {
			language = "-"
		}
		table.Append([]string{
			name,
			language,
			strconv.Itoa(repo.StargazersCount),
			strconv.Itoa(repo.ForksCount),
			repo.UpdatedAt.Format(domain.DateLayout),
			strconv.Itoa(repo.TotalCommits),
			Sparkline(repo.Commits),
		})
	}
	table.Render()
}

var sparkLevels = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders days as a one-line bar per day. An empty sequence renders as "-".
func Sparkline(days []domain.CommitsByDay) string {
	if len(days) == 0 {
		return "-"
	}
	peak := 0
	for _, d := range days {
		if d.Count > peak {
			peak = d.Count
		}
	}
	var b strings.Builder
	for _, d := range days {
		if peak == 0 || d.Count == 0 {
			b.WriteRune(' ')
			continue
		}
		level := (d.Count*len(sparkLevels) - 1) / peak
		b.WriteRune(sparkLevels[level])
	}
	return b.String()
}

// RenderActivity writes a horizontal bar chart with one line per day,
// followed by a summary line.
func RenderActivity(w io.Writer, repo *domain.EnrichedRepository) {
	fmt.Fprintf(w, "\n%s\n\n", repo.Name)
	if len(repo.Commits) == 0 {
		fmt.Fprintln(w, "No recent commit data available")
		return
	}

	peak := 0
	for _, d := range repo.Commits {
		if d.Count > peak {
			peak = d.Count
		}
	}
	for _, d := range repo.Commits {
		width := 0
		if peak > 0 {
			width = d.Count * maxBarWidth / peak
		}
		fmt.Fprintf(w, "%s  %-*s %d\n", formatDay(d.Date), maxBarWidth, strings.Repeat("▇", width), d.Count)
	}

	s := Summarize(repo.Commits)
	fmt.Fprintf(w, "\n%d commits on %d of %d days (mean %.2f/day, median %.1f, max %d)\n",
		s.Total, s.ActiveDays, len(repo.Commits), s.Mean, s.Median, s.Max)
}

func formatDay(date string) string {
	t, err := time.Parse(domain.DateLayout, date)
	if err != nil {
		return "Invalid"
	}
	return t.Format("Jan 02")
}
