package usecase

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/github-activity/internal/domain"
)

var fixedNow = time.Date(2024, time.June, 30, 12, 0, 0, 0, time.UTC)

// mockFetcher is a mock implementation of the gateway.Fetcher interface.
type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) FetchUser(ctx context.Context, handle string) (*domain.UserProfile, error) {
	args := m.Called(ctx, handle)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserProfile), args.Error(1)
}

func (m *mockFetcher) FetchRepositories(ctx context.Context, handle string) ([]*domain.Repository, error) {
	args := m.Called(ctx, handle)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Repository), args.Error(1)
}

func (m *mockFetcher) FetchCommits(ctx context.Context, handle, repo string, sinceDays int) ([]domain.CommitRecord, error) {
	args := m.Called(ctx, handle, repo, sinceDays)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CommitRecord), args.Error(1)
}

func newTestAggregator(fetcher *mockFetcher) *Aggregator {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewAggregator(fetcher, logger, WithClock(func() time.Time { return fixedNow }), WithConcurrency(2))
}

func countsByDate(days []domain.CommitsByDay) map[string]int {
	m := make(map[string]int)
	for _, d := range days {
		if d.Count > 0 {
			m[d.Date] = d.Count
		}
	}
	return m
}

func TestAggregator_Aggregate(t *testing.T) {
	ctx := context.Background()

	t.Run("octocat scenario - fork skipped, commits bucketed", func(t *testing.T) {
		fetcher := new(mockFetcher)
		fetcher.On("FetchRepositories", mock.Anything, "octocat").Return([]*domain.Repository{
			{Name: "hello-world"},
			{Name: "forked", Fork: true},
		}, nil)
		fetcher.On("FetchCommits", mock.Anything, "octocat", "hello-world", 30).Return([]domain.CommitRecord{
			{SHA: "1", AuthorDate: "2024-06-10T09:00:00Z"},
			{SHA: "2", AuthorDate: "2024-06-10T18:00:00Z"},
			{SHA: "3", AuthorDate: "2024-06-11T09:00:00Z"},
		}, nil)

		results, err := newTestAggregator(fetcher).Aggregate(ctx, "octocat", 30)

		require.NoError(t, err)
		require.Len(t, results, 2)

		assert.Equal(t, "hello-world", results[0].Name)
		assert.Len(t, results[0].Commits, 30)
		assert.Equal(t, map[string]int{"2024-06-10": 2, "2024-06-11": 1}, countsByDate(results[0].Commits))
		assert.Equal(t, 3, results[0].TotalCommits)

		assert.Equal(t, "forked", results[1].Name)
		assert.Empty(t, results[1].Commits)
		assert.Zero(t, results[1].TotalCommits)

		fetcher.AssertExpectations(t)
		fetcher.AssertNotCalled(t, "FetchCommits", mock.Anything, "octocat", "forked", mock.Anything)
	})

	t.Run("one failing repository is isolated", func(t *testing.T) {
		fetcher := new(mockFetcher)
		fetcher.On("FetchRepositories", mock.Anything, "octocat").Return([]*domain.Repository{
			{Name: "a"}, {Name: "broken"}, {Name: "c"},
		}, nil)
		fetcher.On("FetchCommits", mock.Anything, "octocat", "a", 30).Return([]domain.CommitRecord{
			{SHA: "1", AuthorDate: "2024-06-30T01:00:00Z"},
		}, nil)
		fetcher.On("FetchCommits", mock.Anything, "octocat", "broken", 30).
			Return(nil, domain.NewFetchFailedError("broken", "failed to fetch commits for broken", errors.New("boom")))
		fetcher.On("FetchCommits", mock.Anything, "octocat", "c", 30).Return([]domain.CommitRecord{
			{SHA: "2", AuthorDate: "2024-06-29T01:00:00Z"},
			{SHA: "3", AuthorDate: "2024-06-29T02:00:00Z"},
		}, nil)

		results, err := newTestAggregator(fetcher).Aggregate(ctx, "octocat", 30)

		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, []string{"a", "broken", "c"}, []string{results[0].Name, results[1].Name, results[2].Name})
		assert.Equal(t, 1, results[0].TotalCommits)
		assert.Equal(t, map[string]int{"2024-06-30": 1}, countsByDate(results[0].Commits))
		assert.Empty(t, results[1].Commits)
		assert.Zero(t, results[1].TotalCommits)
		assert.Equal(t, 2, results[2].TotalCommits)
		assert.Equal(t, map[string]int{"2024-06-29": 2}, countsByDate(results[2].Commits))
	})

	t.Run("a panicking commit fetch degrades to zero activity", func(t *testing.T) {
		fetcher := new(mockFetcher)
		fetcher.On("FetchRepositories", mock.Anything, "octocat").Return([]*domain.Repository{
			{Name: "a"}, {Name: "b"},
		}, nil)
		fetcher.On("FetchCommits", mock.Anything, "octocat", "a", 30).Panic("boom")
		fetcher.On("FetchCommits", mock.Anything, "octocat", "b", 30).Return([]domain.CommitRecord{
			{SHA: "1", AuthorDate: "2024-06-30T01:00:00Z"},
		}, nil)

		results, err := newTestAggregator(fetcher).Aggregate(ctx, "octocat", 30)

		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "a", results[0].Name)
		assert.Empty(t, results[0].Commits)
		assert.Zero(t, results[0].TotalCommits)
		assert.Equal(t, "b", results[1].Name)
		assert.Len(t, results[1].Commits, 30)
		assert.Equal(t, 1, results[1].TotalCommits)
		assert.Equal(t, map[string]int{"2024-06-30": 1}, countsByDate(results[1].Commits))
	})

	t.Run("repository list failure aborts before any commit fetch", func(t *testing.T) {
		fetcher := new(mockFetcher)
		fetcher.On("FetchRepositories", mock.Anything, "ghost").
			Return(nil, domain.NewFetchFailedError("repositories", "failed to fetch repositories", nil))

		results, err := newTestAggregator(fetcher).Aggregate(ctx, "ghost", 30)

		assert.ErrorIs(t, err, domain.ErrFetchFailed)
		assert.Nil(t, results)
		fetcher.AssertNotCalled(t, "FetchCommits", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("raw count is kept when commits are skipped", func(t *testing.T) {
		fetcher := new(mockFetcher)
		fetcher.On("FetchRepositories", mock.Anything, "octocat").Return([]*domain.Repository{{Name: "a"}}, nil)
		fetcher.On("FetchCommits", mock.Anything, "octocat", "a", 30).Return([]domain.CommitRecord{
			{SHA: "1", AuthorDate: "2024-06-30T01:00:00Z"},
			{SHA: "2", AuthorDate: "garbage"},
		}, nil)

		logger, hook := test.NewNullLogger()
		agg := NewAggregator(fetcher, logger, WithClock(func() time.Time { return fixedNow }))

		results, err := agg.Aggregate(ctx, "octocat", 30)

		require.NoError(t, err)
		assert.Equal(t, 2, results[0].TotalCommits)
		assert.Equal(t, map[string]int{"2024-06-30": 1}, countsByDate(results[0].Commits))
		require.NotNil(t, hook.LastEntry())
		assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
		assert.Equal(t, "a", hook.LastEntry().Data["repo"])
	})

	t.Run("empty repository list", func(t *testing.T) {
		fetcher := new(mockFetcher)
		fetcher.On("FetchRepositories", mock.Anything, "octocat").Return([]*domain.Repository{}, nil)

		results, err := newTestAggregator(fetcher).Aggregate(ctx, "octocat", 30)

		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("non-positive window uses the default", func(t *testing.T) {
		fetcher := new(mockFetcher)
		fetcher.On("FetchRepositories", mock.Anything, "octocat").Return([]*domain.Repository{{Name: "a"}}, nil)
		fetcher.On("FetchCommits", mock.Anything, "octocat", "a", domain.DefaultWindowDays).Return([]domain.CommitRecord{}, nil)

		results, err := newTestAggregator(fetcher).Aggregate(ctx, "octocat", 0)

		require.NoError(t, err)
		assert.Len(t, results[0].Commits, domain.DefaultWindowDays)
		fetcher.AssertExpectations(t)
	})
}

func TestAggregator_AggregatePreservesOrder(t *testing.T) {
	fetcher := new(mockFetcher)
	repos := make([]*domain.Repository, 20)
	for i := range repos {
		repos[i] = &domain.Repository{ID: int64(i), Name: string(rune('a' + i))}
		// Earlier repositories answer later.
		delay := time.Duration(len(repos)-i) * time.Millisecond
		fetcher.On("FetchCommits", mock.Anything, "octocat", repos[i].Name, 30).
			After(delay).Return([]domain.CommitRecord{}, nil)
	}
	fetcher.On("FetchRepositories", mock.Anything, "octocat").Return(repos, nil)

	agg := newTestAggregator(fetcher)
	agg.concurrency = len(repos)
	results, err := agg.Aggregate(context.Background(), "octocat", 30)

	require.NoError(t, err)
	require.Len(t, results, len(repos))
	for i, r := range results {
		assert.Equal(t, int64(i), r.ID)
	}
}

func TestAggregator_Analyze(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path - profile and repositories", func(t *testing.T) {
		fetcher := new(mockFetcher)
		user := &domain.UserProfile{Login: "octocat"}
		fetcher.On("FetchUser", mock.Anything, "octocat").Return(user, nil)
		fetcher.On("FetchRepositories", mock.Anything, "octocat").Return([]*domain.Repository{{Name: "fork", Fork: true}}, nil)

		report, err := newTestAggregator(fetcher).Analyze(ctx, "octocat", 14)

		require.NoError(t, err)
		assert.Same(t, user, report.User)
		assert.Len(t, report.Repositories, 1)
		assert.Equal(t, 14, report.WindowDays)
		assert.Equal(t, fixedNow, report.GeneratedAt)
	})

	t.Run("unknown user never lists repositories", func(t *testing.T) {
		fetcher := new(mockFetcher)
		fetcher.On("FetchUser", mock.Anything, "ghost").Return(nil, domain.NewNotFoundError("user", "user not found"))

		report, err := newTestAggregator(fetcher).Analyze(ctx, "ghost", 30)

		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Nil(t, report)
		fetcher.AssertNotCalled(t, "FetchRepositories", mock.Anything, mock.Anything)
	})
}
