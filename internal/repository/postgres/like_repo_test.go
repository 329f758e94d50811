package postgres_test

import (
	"context"
	"testing"

	"github.com/aldis-z/notice-board/internal/domain"
	"github.com/aldis-z/notice-board/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// The composite primary key is the backstop for double-submits: the second
// insert of the same (notice, profile) pair fails typed instead of stacking.
func TestLikeRepository_CompositeKey(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ctx := context.Background()

	ts.DB.Truncate(t)
	_, author, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)
	category := testutil.CreateCategory(t, ts.DB.DB, "Electronics")
	notice := testutil.NewNoticeBuilder(author, category).Build(t, ts.DB.DB)

	like := &domain.NoticeLike{NoticeID: notice.ID, SourceProfileID: author.ID}
	require.NoError(t, ts.Repos.Like.Create(ctx, like))

	err := ts.Repos.Like.Create(ctx, &domain.NoticeLike{NoticeID: notice.ID, SourceProfileID: author.ID})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}
