// Package gateway provides a gateway to the GitHub REST API,
// translating transport failures into domain errors.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/naka-gawa/github-activity/internal/domain"
)

// pageSize is the single page fetched per resource; no further pagination is attempted.
const pageSize = 100

// Fetcher defines the behavior of a gateway for fetching information from GitHub.
type Fetcher interface {
	FetchUser(ctx context.Context, handle string) (*domain.UserProfile, error)
	FetchRepositories(ctx context.Context, handle string) ([]*domain.Repository, error)
	// FetchCommits returns commits authored during the last sinceDays days.
	// An empty repository yields an empty slice and no error.
	FetchCommits(ctx context.Context, handle, repo string, sinceDays int) ([]domain.CommitRecord, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient *github.Client
	logger     logrus.FieldLogger
	now        func() time.Time
}

// commitPayload is the subset of a commits listing entry that we read.
// The author date is kept raw so a bad value only affects its own commit.
type commitPayload struct {
	SHA    string `json:"sha"`
	Commit struct {
		Author *struct {
			Date json.RawMessage `json:"date"`
		} `json:"author"`
	} `json:"commit"`
}

// authorDate returns the author date as text. A JSON string is unquoted,
// any other non-null value is returned verbatim and later rejected as malformed.
func (p commitPayload) authorDate() string {
	if p.Commit.Author == nil {
		return ""
	}
	raw := p.Commit.Author.Date
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var date string
	if err := json.Unmarshal(raw, &date); err == nil {
		return date
	}
	return string(raw)
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
// The token is optional; without it requests are made anonymously.
// An empty baseURL targets api.github.com.
func NewGitHubGateway(token, baseURL string, logger logrus.FieldLogger) (Fetcher, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil,
		github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil),
		github_ratelimit.WithLimitDetectedCallback(func(cbCtx *github_ratelimit.CallbackContext) {
			entry := logger.WithField("component", "gateway")
			if cbCtx.SleepUntil != nil {
				entry = entry.WithField("sleep_until", cbCtx.SleepUntil.Format(time.RFC3339))
			}
			entry.Warn("secondary rate limit detected, waiting")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}

	var transport http.RoundTripper = rateLimitWaiter
	if token != "" {
		transport = &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
		}
	}

	restClient := github.NewClient(&http.Client{Transport: transport})
	if baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API URL %q: %w", baseURL, err)
		}
		restClient.BaseURL = u
	}

	return &GitHubGateway{
		restClient: restClient,
		logger:     logger,
		now:        time.Now,
	}, nil
}

// FetchUser retrieves the public profile of handle.
func (g *GitHubGateway) FetchUser(ctx context.Context, handle string) (*domain.UserProfile, error) {
	g.logger.WithField("handle", handle).Debug("Fetching user profile...")
	user, resp, err := g.restClient.Users.Get(ctx, handle)
	if err != nil {
		if statusCode(resp) == http.StatusNotFound {
			return nil, domain.NewNotFoundError("user", "user not found")
		}
		return nil, domain.NewFetchFailedError("user", "failed to fetch user data", err)
	}

	return &domain.UserProfile{
		Login:       user.GetLogin(),
		Name:        user.GetName(),
		AvatarURL:   user.GetAvatarURL(),
		Bio:         user.GetBio(),
		Followers:   user.GetFollowers(),
		Following:   user.GetFollowing(),
		PublicRepos: user.GetPublicRepos(),
		PublicGists: user.GetPublicGists(),
		Location:    user.GetLocation(),
		Company:     user.GetCompany(),
		Blog:        user.GetBlog(),
		CreatedAt:   user.GetCreatedAt().Time,
		HTMLURL:     user.GetHTMLURL(),
	}, nil
}

// FetchRepositories retrieves the first page of handle's repositories, most recently updated first.
func (g *GitHubGateway) FetchRepositories(ctx context.Context, handle string) ([]*domain.Repository, error) {
	g.logger.WithField("handle", handle).Debug("Fetching repositories...")
	opts := &github.RepositoryListByUserOptions{
		Sort:        "updated",
		ListOptions: github.ListOptions{PerPage: pageSize},
	}
	repos, _, err := g.restClient.Repositories.ListByUser(ctx, handle, opts)
	if err != nil {
		return nil, domain.NewFetchFailedError("repositories", "failed to fetch repositories", err)
	}

	result := make([]*domain.Repository, 0, len(repos))
	for _, repo := range repos {
		result = append(result, &domain.Repository{
			ID:              repo.GetID(),
			Name:            repo.GetName(),
			Description:     repo.GetDescription(),
			HTMLURL:         repo.GetHTMLURL(),
			StargazersCount: repo.GetStargazersCount(),
			ForksCount:      repo.GetForksCount(),
			Language:        repo.GetLanguage(),
			Fork:            repo.GetFork(),
			UpdatedAt:       repo.GetUpdatedAt().Time,
		})
	}
	g.logger.WithFields(logrus.Fields{"handle": handle, "count": len(result)}).Debug("Completed fetching repositories.")
	return result, nil
}

// FetchCommits retrieves the first page of commits to repo authored during the last sinceDays days.
// An empty repository yields no commits and no error.
func (g *GitHubGateway) FetchCommits(ctx context.Context, handle, repo string, sinceDays int) ([]domain.CommitRecord, error) {
	g.logger.WithFields(logrus.Fields{"handle": handle, "repo": repo}).Debug("Fetching commits...")
	since := g.now().UTC().AddDate(0, 0, -sinceDays)
	query := url.Values{}
	query.Set("since", since.Format(time.RFC3339))
	query.Set("per_page", fmt.Sprint(pageSize))
	u := fmt.Sprintf("repos/%s/%s/commits?%s", url.PathEscape(handle), url.PathEscape(repo), query.Encode())

	req, err := g.restClient.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, domain.NewFetchFailedError(repo, fmt.Sprintf("failed to fetch commits for %s", repo), err)
	}

	var payload []commitPayload
	resp, err := g.restClient.Do(ctx, req, &payload)
	if err != nil {
		// Empty repositories answer 409 Conflict.
		if statusCode(resp) == http.StatusConflict {
			return []domain.CommitRecord{}, nil
		}
		return nil, domain.NewFetchFailedError(repo, fmt.Sprintf("failed to fetch commits for %s", repo), err)
	}

	commits := make([]domain.CommitRecord, 0, len(payload))
	for _, p := range payload {
		commits = append(commits, domain.CommitRecord{SHA: p.SHA, AuthorDate: p.authorDate()})
	}
	return commits, nil
}

func statusCode(resp *github.Response) int {
	if resp == nil || resp.Response == nil {
		return 0
	}
	return resp.StatusCode
}
