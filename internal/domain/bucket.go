package domain

import (
	"fmt"
	"time"
)

// Window returns the windowDays consecutive UTC calendar days ending on
// now's UTC date, oldest first.
func Window(windowDays int, now time.Time) []string {
	windowDays = NormalizeWindow(windowDays)
	today := now.UTC().Truncate(24 * time.Hour)
	days := make([]string, windowDays)
	for i := range days {
		days[i] = today.AddDate(0, 0, i-(windowDays-1)).Format(DateLayout)
	}
	return days
}

// BucketCommits counts commits per UTC calendar day over the trailing window ending at now.
// The result always has one entry per day of the window, in ascending date order,
// including days without commits. Commits outside the window are ignored.
// Commits with a missing or malformed author date are skipped; one error per
// skipped commit is returned so the caller can log it.
func BucketCommits(commits []CommitRecord, windowDays int, now time.Time) ([]CommitsByDay, []error) {
	days := Window(windowDays, now)
	index := make(map[string]int, len(days))
	buckets := make([]CommitsByDay, len(days))
	for i, day := range days {
		index[day] = i
		buckets[i] = CommitsByDay{Date: day}
	}

	var skipped []error
	for _, c := range commits {
		if c.AuthorDate == "" {
			skipped = append(skipped, fmt.Errorf("commit %q has no author date", c.SHA))
			continue
		}
		day, err := authorDay(c.AuthorDate)
		if err != nil {
			skipped = append(skipped, fmt.Errorf("commit %q has malformed author date %q: %w", c.SHA, c.AuthorDate, err))
			continue
		}
		if i, ok := index[day]; ok {
			buckets[i].Count++
		}
	}
	return buckets, skipped
}

// offsetLayouts are timestamps carrying a zone offset; they are converted to UTC.
var offsetLayouts = []string{time.RFC3339, "2006-01-02T15:04:05-0700"}

// authorDay returns the UTC calendar day of an ISO 8601 timestamp. A timestamp
// without a usable offset contributes its own date part.
func authorDay(s string) (string, error) {
	for _, layout := range offsetLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format(DateLayout), nil
		}
	}
	if len(s) < len(DateLayout)+1 || s[len(DateLayout)] != 'T' {
		return "", fmt.Errorf("not an ISO 8601 timestamp")
	}
	d, err := time.Parse(DateLayout, s[:len(DateLayout)])
	if err != nil {
		return "", err
	}
	return d.Format(DateLayout), nil
}

// EmptyActivity returns the zero-activity sequence used for forks and for
// repositories whose commits could not be fetched.
func EmptyActivity() []CommitsByDay {
	return []CommitsByDay{}
}
