package service_test

import (
	"context"
	"testing"

	"github.com/aldis-z/notice-board/internal/domain"
	"github.com/aldis-z/notice-board/internal/service"
	"github.com/aldis-z/notice-board/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentService_Create(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ctx := context.Background()

	t.Run("create bumps the notice counter", func(t *testing.T) {
		ts.DB.Truncate(t)
		_, author, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)
		_, commenter, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)
		category := testutil.CreateCategory(t, ts.DB.DB, "Services")
		notice := testutil.NewNoticeBuilder(author, category).Build(t, ts.DB.DB)

		view, err := ts.Services.Comment.Create(ctx, notice.ID, commenter.ID, service.CommentCreateInput{
			Text: "Is this still available?",
		})
		require.NoError(t, err)
		assert.Equal(t, "Is this still available?", view.Text)
		require.NotNil(t, view.Author)
		assert.Equal(t, commenter.Name, view.Author.Name)

		reloaded, err := ts.Repos.Notice.GetByID(ctx, notice.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, reloaded.CommentCount)
	})

	t.Run("reply carries a parent preview", func(t *testing.T) {
		ts.DB.Truncate(t)
		_, author, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)
		category := testutil.CreateCategory(t, ts.DB.DB, "Services")
		notice := testutil.NewNoticeBuilder(author, category).Build(t, ts.DB.DB)

		parent, err := ts.Services.Comment.Create(ctx, notice.ID, author.ID, service.CommentCreateInput{
			Text: "Top level",
		})
		require.NoError(t, err)

		reply, err := ts.Services.Comment.Create(ctx, notice.ID, author.ID, service.CommentCreateInput{
			Text:     "A reply",
			ParentID: &parent.ID,
		})
		require.NoError(t, err)
		require.NotNil(t, reply.Parent)
		assert.Equal(t, parent.ID, reply.Parent.ID)
		assert.Equal(t, "Top level", reply.Parent.Text)
		assert.Equal(t, author.Name, reply.Parent.AuthorName)
	})

	t.Run("parent on a different notice is rejected", func(t *testing.T) {
		ts.DB.Truncate(t)
		_, author, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)
		category := testutil.CreateCategory(t, ts.DB.DB, "Services")
		notice := testutil.NewNoticeBuilder(author, category).Build(t, ts.DB.DB)
		other := testutil.NewNoticeBuilder(author, category).Build(t, ts.DB.DB)

		parent := testutil.CreateComment(t, ts.DB.DB, other, author, "elsewhere", nil)

		_, err := ts.Services.Comment.Create(ctx, notice.ID, author.ID, service.CommentCreateInput{
			Text:     "A reply",
			ParentID: &parent.ID,
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("replies to replies are rejected", func(t *testing.T) {
		ts.DB.Truncate(t)
		_, author, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)
		category := testutil.CreateCategory(t, ts.DB.DB, "Services")
		notice := testutil.NewNoticeBuilder(author, category).Build(t, ts.DB.DB)

		top := testutil.CreateComment(t, ts.DB.DB, notice, author, "top", nil)
		reply := testutil.CreateComment(t, ts.DB.DB, notice, author, "reply", &top.ID)

		_, err := ts.Services.Comment.Create(ctx, notice.ID, author.ID, service.CommentCreateInput{
			Text:     "too deep",
			ParentID: &reply.ID,
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("empty text is rejected", func(t *testing.T) {
		ts.DB.Truncate(t)
		_, author, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)
		category := testutil.CreateCategory(t, ts.DB.DB, "Services")
		notice := testutil.NewNoticeBuilder(author, category).Build(t, ts.DB.DB)

		_, err := ts.Services.Comment.Create(ctx, notice.ID, author.ID, service.CommentCreateInput{
			Text: "   ",
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestCommentService_UpdateDelete(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ctx := context.Background()

	t.Run("only the author may edit", func(t *testing.T) {
		ts.DB.Truncate(t)
		_, author, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)
		_, stranger, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)
		category := testutil.CreateCategory(t, ts.DB.DB, "Services")
		notice := testutil.NewNoticeBuilder(author, category).Build(t, ts.DB.DB)
		comment := testutil.CreateComment(t, ts.DB.DB, notice, author, "mine", nil)

		_, err := ts.Services.Comment.Update(ctx, comment.ID, stranger.ID, "hijacked")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)

		updated, err := ts.Services.Comment.Update(ctx, comment.ID, author.ID, "edited")
		require.NoError(t, err)
		assert.Equal(t, "edited", updated.Text)
	})

	t.Run("delete decrements the counter", func(t *testing.T) {
		ts.DB.Truncate(t)
		_, author, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)
		category := testutil.CreateCategory(t, ts.DB.DB, "Services")
		notice := testutil.NewNoticeBuilder(author, category).Build(t, ts.DB.DB)

		view, err := ts.Services.Comment.Create(ctx, notice.ID, author.ID, service.CommentCreateInput{
			Text: "soon gone",
		})
		require.NoError(t, err)

		require.NoError(t, ts.Services.Comment.Delete(ctx, view.ID, author.ID))

		reloaded, err := ts.Repos.Notice.GetByID(ctx, notice.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, reloaded.CommentCount)
	})

	t.Run("only the author may delete", func(t *testing.T) {
		ts.DB.Truncate(t)
		_, author, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)
		_, stranger, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)
		category := testutil.CreateCategory(t, ts.DB.DB, "Services")
		notice := testutil.NewNoticeBuilder(author, category).Build(t, ts.DB.DB)
		comment := testutil.CreateComment(t, ts.DB.DB, notice, author, "mine", nil)

		err := ts.Services.Comment.Delete(ctx, comment.ID, stranger.ID)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}

func TestCommentService_ListByNotice(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ctx := context.Background()

	ts.DB.Truncate(t)
	_, author, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)
	category := testutil.CreateCategory(t, ts.DB.DB, "Services")
	notice := testutil.NewNoticeBuilder(author, category).Build(t, ts.DB.DB)

	top, err := ts.Services.Comment.Create(ctx, notice.ID, author.ID, service.CommentCreateInput{Text: "first"})
	require.NoError(t, err)
	_, err = ts.Services.Comment.Create(ctx, notice.ID, author.ID, service.CommentCreateInput{
		Text:     "a reply",
		ParentID: &top.ID,
	})
	require.NoError(t, err)

	views, err := ts.Services.Comment.ListByNotice(ctx, notice.ID)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Nil(t, views[0].Parent)
	require.NotNil(t, views[1].Parent)
	assert.Equal(t, "first", views[1].Parent.Text)

	// Deleting the parent keeps the reply; its preview disappears.
	require.NoError(t, ts.Services.Comment.Delete(ctx, top.ID, author.ID))

	views, err = ts.Services.Comment.ListByNotice(ctx, notice.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Nil(t, views[0].Parent)
}
