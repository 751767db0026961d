// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/naka-gawa/github-activity/internal/domain"
	"github.com/naka-gawa/github-activity/internal/gateway"
)

// DefaultConcurrency bounds the number of commit fetches in flight at once.
const DefaultConcurrency = 8

// Aggregator is the use case for building commit activity per repository.
// It orchestrates the fetching and bucketing of data.
type Aggregator struct {
	fetcher     gateway.Fetcher
	logger      logrus.FieldLogger
	now         func() time.Time
	concurrency int
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithClock sets the source of the current instant. Defaults to time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// WithConcurrency bounds concurrent commit fetches. Values below 1 are ignored.
func WithConcurrency(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// NewAggregator creates a new Aggregator instance.
func NewAggregator(fetcher gateway.Fetcher, logger logrus.FieldLogger, opts ...Option) *Aggregator {
	a := &Aggregator{
		fetcher:     fetcher,
		logger:      logger,
		now:         time.Now,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate fetches handle's repositories and enriches every one of them with
// its commit activity over the trailing windowDays days.
//
// A failure to list repositories is returned. A failure for a single
// repository is logged and that repository gets zero activity instead.
// The result has the same length and order as the repository list.
func (a *Aggregator) Aggregate(ctx context.Context, handle string, windowDays int) ([]*domain.EnrichedRepository, error) {
	windowDays = domain.NormalizeWindow(windowDays)
	log := a.logger.WithField("handle", handle)
	log.Debug("Usecase: Starting data aggregation...")

	repos, err := a.fetcher.FetchRepositories(ctx, handle)
	if err != nil {
		return nil, err
	}

	// One instant for the whole batch so every repository shares the same window.
	now := a.now()
	results := make([]*domain.EnrichedRepository, len(repos))

	var eg errgroup.Group
	eg.SetLimit(a.concurrency)
	for i, repo := range repos {
		eg.Go(func() error {
			results[i] = a.enrich(ctx, log, handle, repo, windowDays, now)
			return nil
		})
	}
	// Tasks never return an error; Wait only joins them.
	_ = eg.Wait()

	log.WithField("repositories", len(results)).Debug("Usecase: Aggregation complete.")
	return results, nil
}

// enrich builds the activity for one repository. It never fails: any error,
// including a panic in the fetcher, degrades to zero activity.
func (a *Aggregator) enrich(ctx context.Context, log logrus.FieldLogger, handle string, repo *domain.Repository, windowDays int, now time.Time) (result *domain.EnrichedRepository) {
	if repo.Fork {
		return zeroActivity(repo)
	}

	log = log.WithField("repo", repo.Name)
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", fmt.Sprint(r)).Warn("commit fetch panicked, using zero activity")
			result = zeroActivity(repo)
		}
	}()

	commits, err := a.fetcher.FetchCommits(ctx, handle, repo.Name, windowDays)
	if err != nil {
		log.WithError(err).Warn("could not fetch commits, using zero activity")
		return zeroActivity(repo)
	}

	buckets, skipped := domain.BucketCommits(commits, windowDays, now)
	for _, skipErr := range skipped {
		log.WithError(skipErr).Warn("skipping commit")
	}

	// TotalCommits is the raw fetched count. It exceeds the sum of buckets when
	// commits were skipped or fell before the first day of the window.
	return &domain.EnrichedRepository{
		Repository:   *repo,
		Commits:      buckets,
		TotalCommits: len(commits),
	}
}

func zeroActivity(repo *domain.Repository) *domain.EnrichedRepository {
	return &domain.EnrichedRepository{
		Repository: *repo,
		Commits:    domain.EmptyActivity(),
	}
}

// Profile fetches handle's public profile.
func (a *Aggregator) Profile(ctx context.Context, handle string) (*domain.UserProfile, error) {
	return a.fetcher.FetchUser(ctx, handle)
}

// Analyze fetches handle's profile and, only when it exists, the enriched
// repositories. Both failures are returned to the caller.
func (a *Aggregator) Analyze(ctx context.Context, handle string, windowDays int) (*domain.Report, error) {
	windowDays = domain.NormalizeWindow(windowDays)

	user, err := a.fetcher.FetchUser(ctx, handle)
	if err != nil {
		return nil, err
	}

	repos, err := a.Aggregate(ctx, handle, windowDays)
	if err != nil {
		return nil, err
	}

	return &domain.Report{
		User:         user,
		Repositories: repos,
		WindowDays:   windowDays,
		GeneratedAt:  a.now().UTC(),
	}, nil
}
