// Package presenter renders profiles and repository activity for the terminal,
// and provides the filtering and ordering used by every presentation surface.
package presenter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/naka-gawa/github-activity/internal/domain"
)

// SortKey selects the column repositories are ordered by.
type SortKey string

const (
	SortByName    SortKey = "name"
	SortByStars   SortKey = "stars"
	SortByForks   SortKey = "forks"
	SortByUpdated SortKey = "updated"
	SortByCommits SortKey = "commits"
)

// Direction is the sort direction.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// ParseSortKey parses s into a SortKey. An empty string selects SortByUpdated.
func ParseSortKey(s string) (SortKey, error) {
	switch key := SortKey(strings.ToLower(s)); key {
	case "":
		return SortByUpdated, nil
	case SortByName, SortByStars, SortByForks, SortByUpdated, SortByCommits:
		return key, nil
	default:
		return "", fmt.Errorf("unknown sort key %q (want name, stars, forks, updated or commits)", s)
	}
}

// ParseDirection parses s into a Direction. An empty string selects Descending.
func ParseDirection(s string) (Direction, error) {
	switch dir := Direction(strings.ToLower(s)); dir {
	case "":
		return Descending, nil
	case Ascending, Descending:
		return dir, nil
	default:
		return "", fmt.Errorf("unknown sort direction %q (want asc or desc)", s)
	}
}

// Filter returns the repositories whose name or description contains query,
// ignoring case. An empty query matches everything.
func Filter(repos []*domain.EnrichedRepository, query string) []*domain.EnrichedRepository {
	query = strings.ToLower(strings.TrimSpace(query))
	filtered := make([]*domain.EnrichedRepository, 0, len(repos))
	for _, repo := range repos {
		if query == "" ||
			strings.Contains(strings.ToLower(repo.Name), query) ||
			strings.Contains(strings.ToLower(repo.Description), query) {
			filtered = append(filtered, repo)
		}
	}
	return filtered
}

// Sort returns a sorted copy of repos. Ties keep their input order.
func Sort(repos []*domain.EnrichedRepository, key SortKey, dir Direction) []*domain.EnrichedRepository {
	sorted := make([]*domain.EnrichedRepository, len(repos))
	copy(sorted, repos)

	compare := func(a, b *domain.EnrichedRepository) int {
		switch key {
		case SortByName:
			return strings.Compare(a.Name, b.Name)
		case SortByStars:
			return a.StargazersCount - b.StargazersCount
		case SortByForks:
			return a.ForksCount - b.ForksCount
		case SortByCommits:
			return a.TotalCommits - b.TotalCommits
		default:
			return a.UpdatedAt.Compare(b.UpdatedAt)
		}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		c := compare(sorted[i], sorted[j])
		if dir == Ascending {
			return c < 0
		}
		return c > 0
	})
	return sorted
}
