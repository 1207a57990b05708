package progress

import (
	"context"
	"errors"
	"testing"

	"github.com/alexanderramin/coursegate/internal/domain"
	"github.com/alexanderramin/coursegate/internal/repository"
	"github.com/alexanderramin/coursegate/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	progress    *repository.SQLiteProgressRepo
	attempts    *repository.SQLiteAttemptRepo
	submissions *repository.SQLiteSubmissionRepo
	registry    *Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	database := testutil.NewTestDB(t)
	f := &fixture{
		progress:    repository.NewSQLiteProgressRepo(database),
		attempts:    repository.NewSQLiteAttemptRepo(database),
		submissions: repository.NewSQLiteSubmissionRepo(database),
	}
	f.registry = NewDefaultRegistry(f.progress, f.attempts, f.submissions, Options{})
	return f
}

func query(typ domain.ContentType, join, source string) Query {
	return Query{
		CourseID: "course-1",
		UserID:   "user-1",
		ClientID: "client-1",
		Type:     typ,
		Ref:      domain.ContentRef{JoinID: join, SourceID: source},
	}
}

func (f *fixture) upsert(t *testing.T, typ domain.ContentType, contentID string, delta domain.ProgressDelta) {
	t.Helper()
	_, err := f.progress.Upsert(context.Background(), testutil.NewTestKey("course-1", contentID, typ), delta)
	require.NoError(t, err)
}

func TestRegistry_UnknownTypeResolvesUnknown(t *testing.T) {
	f := newFixture(t)

	res, err := f.registry.Resolve(context.Background(), query("hologram", "j1", "s1"))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Percentage)
	assert.False(t, res.Completed)
	assert.Equal(t, domain.StatusUnknown, res.Status)
}

func TestRegistry_JoinIDWins(t *testing.T) {
	f := newFixture(t)
	f.upsert(t, domain.ContentVideo, "join-1", domain.ProgressDelta{Percentage: testutil.IntPtr(40)})
	f.upsert(t, domain.ContentVideo, "pkg-1", domain.ProgressDelta{Percentage: testutil.IntPtr(70)})

	res, err := f.registry.Resolve(context.Background(), query(domain.ContentVideo, "join-1", "pkg-1"))
	require.NoError(t, err)
	assert.Equal(t, 40, res.Percentage, "first non-zero key wins; results are never averaged")
	assert.Equal(t, "join-1", res.MatchedBy)
	assert.Equal(t, []string{"join-1"}, res.Tried)
}

func TestRegistry_FallsBackToSourceID(t *testing.T) {
	f := newFixture(t)
	f.upsert(t, domain.ContentScorm, "pkg-1", domain.ProgressDelta{Percentage: testutil.IntPtr(35)})

	res, err := f.registry.Resolve(context.Background(), query(domain.ContentScorm, "join-1", "pkg-1"))
	require.NoError(t, err)
	assert.Equal(t, 35, res.Percentage)
	assert.Equal(t, "pkg-1", res.MatchedBy)
	assert.Equal(t, []string{"join-1", "pkg-1"}, res.Tried)
}

func TestRegistry_NoMatchReturnsFirstKeyResult(t *testing.T) {
	f := newFixture(t)

	res, err := f.registry.Resolve(context.Background(), query(domain.ContentDocument, "join-1", "pkg-1"))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Percentage)
	assert.Equal(t, domain.StatusNotStarted, res.Status)
	assert.Empty(t, res.MatchedBy)
	assert.Equal(t, []string{"join-1", "pkg-1"}, res.Tried)
}

func TestRegistry_StoreErrorsPropagate(t *testing.T) {
	g := NewRegistry()
	boom := errors.New("disk gone")
	g.Register(domain.ContentVideo, ResolverFunc(func(context.Context, Query, string) (Resolution, error) {
		return Resolution{}, boom
	}))

	res, err := g.Resolve(context.Background(), query(domain.ContentVideo, "j", "s"))
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"j"}, res.Tried)
}

func TestRegistry_CompletedAlwaysReadsHundred(t *testing.T) {
	g := NewRegistry()
	g.Register(domain.ContentVideo, ResolverFunc(func(context.Context, Query, string) (Resolution, error) {
		return Resolution{Percentage: 12, Completed: true}, nil
	}))

	res, err := g.Resolve(context.Background(), query(domain.ContentVideo, "j", ""))
	require.NoError(t, err)
	assert.Equal(t, 100, res.Percentage)
	assert.Equal(t, domain.StatusCompleted, res.Status)
}

func TestRegistry_MeasuredCompletionKeepsPercentage(t *testing.T) {
	g := NewRegistry()
	g.Register(domain.ContentVideo, ResolverFunc(func(context.Context, Query, string) (Resolution, error) {
		return Resolution{Percentage: 93, Completed: true, Measured: true}, nil
	}))

	res, err := g.Resolve(context.Background(), query(domain.ContentVideo, "j", ""))
	require.NoError(t, err)
	assert.Equal(t, 93, res.Percentage)
	assert.True(t, res.Completed)
	assert.Equal(t, domain.StatusCompleted, res.Status)
}
