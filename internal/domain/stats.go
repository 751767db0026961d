// Package domain contains the core data structures and domain logic for the application.
package domain

import "time"

// DefaultWindowDays is the trailing period, in days, over which commit activity is measured.
const DefaultWindowDays = 30

// DateLayout is the calendar-day format used for CommitsByDay entries.
const DateLayout = "2006-01-02"

// CommitsByDay pairs one UTC calendar day with the number of commits authored on it.
type CommitsByDay struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// EnrichedRepository is a Repository together with its commit activity
// over the aggregation window. It is the core domain entity of this application.
type EnrichedRepository struct {
	Repository
	Commits      []CommitsByDay `json:"commits"`
	TotalCommits int            `json:"total_commits"`
}

// Report is the result of analyzing one handle: the profile and its
// enriched repositories, in the order the repository list was returned.
type Report struct {
	User         *UserProfile          `json:"user"`
	Repositories []*EnrichedRepository `json:"repositories"`
	WindowDays   int                   `json:"window_days"`
	GeneratedAt  time.Time             `json:"generated_at"`
}

// NormalizeWindow returns days, or DefaultWindowDays when days is not positive.
func NormalizeWindow(days int) int {
	if days < 1 {
		return DefaultWindowDays
	}
	return days
}
