package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/coursegate/internal/domain"
	"github.com/alexanderramin/coursegate/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentRepo_ListOrdersByIndex(t *testing.T) {
	repo := NewSQLiteContentRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	second := testutil.NewTestModule("course-1", "Second", testutil.WithModuleOrder(2))
	first := testutil.NewTestModule("course-1", "First", testutil.WithModuleOrder(1))
	other := testutil.NewTestModule("course-2", "Other")
	for _, m := range []*domain.Module{second, first, other} {
		require.NoError(t, repo.CreateModule(ctx, m))
	}

	modules, err := repo.ListModules(ctx, "course-1")
	require.NoError(t, err)
	require.Len(t, modules, 2)
	assert.Equal(t, "First", modules[0].Title)
	assert.Equal(t, "Second", modules[1].Title)

	video := testutil.NewTestItem(first, domain.ContentVideo, testutil.WithItemOrder(2))
	quiz := testutil.NewTestItem(first, domain.ContentAssessment, testutil.WithItemOrder(1))
	require.NoError(t, repo.CreateItem(ctx, video))
	require.NoError(t, repo.CreateItem(ctx, quiz))

	items, err := repo.ListItems(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, quiz.JoinID, items[0].JoinID)
	assert.Equal(t, domain.ContentVideo, items[1].Type)
	assert.Equal(t, video.SourceID, items[1].SourceID)

	empty, err := repo.ListItems(ctx, second.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestContentRepo_FindItemByEitherIdentifier(t *testing.T) {
	repo := NewSQLiteContentRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	m := testutil.NewTestModule("course-1", "M")
	require.NoError(t, repo.CreateModule(ctx, m))
	pkg := testutil.NewTestItem(m, domain.ContentScorm, testutil.WithJoinID("join-1"), testutil.WithSourceID("pkg-1"))
	require.NoError(t, repo.CreateItem(ctx, pkg))

	byJoin, err := repo.FindItem(ctx, "course-1", "join-1")
	require.NoError(t, err)
	assert.Equal(t, "pkg-1", byJoin.SourceID)

	bySource, err := repo.FindItem(ctx, "course-1", "pkg-1")
	require.NoError(t, err)
	assert.Equal(t, "join-1", bySource.JoinID)

	_, err = repo.FindItem(ctx, "course-2", "join-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestContentRepo_RejectsUnknownType(t *testing.T) {
	repo := NewSQLiteContentRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	m := testutil.NewTestModule("course-1", "M")
	require.NoError(t, repo.CreateModule(ctx, m))

	err := repo.CreateItem(ctx, testutil.NewTestItem(m, domain.ContentType("hologram")))
	assert.Error(t, err)
}
