package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/aldis-z/notice-board/internal/domain"
	"github.com/aldis-z/notice-board/internal/service"
	"github.com/aldis-z/notice-board/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCreateInput(categoryID uuid.UUID) service.NoticeCreateInput {
	return service.NoticeCreateInput{
		Title:      testutil.ValidTitle("Selling a barely used mountain bike in great shape"),
		Text:       testutil.ValidText("Bought last spring, ridden twice, full service history included"),
		CategoryID: categoryID,
		Type:       domain.NoticeTypeOffer,
		Status:     domain.NoticeStatusPublished,
		Price:      250,
	}
}

func TestNoticeService_Create(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ctx := context.Background()

	t.Run("successful create reserves a slug", func(t *testing.T) {
		ts.DB.Truncate(t)
		_, author, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)
		category := testutil.CreateCategory(t, ts.DB.DB, "Vehicles")

		notice, err := ts.Services.Notice.Create(ctx, author.ID, validCreateInput(category.ID))
		require.NoError(t, err)
		assert.NotEmpty(t, notice.Slug)
		assert.Equal(t, author.ID, notice.AuthorID)
		assert.Equal(t, 0, notice.LikeCount)
	})

	t.Run("same title gets a distinct slug", func(t *testing.T) {
		ts.DB.Truncate(t)
		_, author, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)
		category := testutil.CreateCategory(t, ts.DB.DB, "Vehicles")

		input := validCreateInput(category.ID)
		first, err := ts.Services.Notice.Create(ctx, author.ID, input)
		require.NoError(t, err)
		second, err := ts.Services.Notice.Create(ctx, author.ID, input)
		require.NoError(t, err)

		assert.NotEqual(t, first.Slug, second.Slug)
		assert.True(t, strings.HasPrefix(second.Slug, first.Slug))
	})

	t.Run("validation failures", func(t *testing.T) {
		ts.DB.Truncate(t)
		_, author, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)
		category := testutil.CreateCategory(t, ts.DB.DB, "Vehicles")

		tests := []struct {
			name   string
			mutate func(*service.NoticeCreateInput)
		}{
			{"title too short", func(in *service.NoticeCreateInput) { in.Title = "short" }},
			{"title too long", func(in *service.NoticeCreateInput) { in.Title = strings.Repeat("a", 71) }},
			{"text too short", func(in *service.NoticeCreateInput) { in.Text = "short" }},
			{"negative price", func(in *service.NoticeCreateInput) { in.Price = -1 }},
			{"price too large", func(in *service.NoticeCreateInput) { in.Price = 10_000_000 }},
			{"bad type", func(in *service.NoticeCreateInput) { in.Type = "Trade" }},
			{"bad status", func(in *service.NoticeCreateInput) { in.Status = "Archived" }},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				input := validCreateInput(category.ID)
				tt.mutate(&input)
				_, err := ts.Services.Notice.Create(ctx, author.ID, input)
				assert.ErrorIs(t, err, domain.ErrValidation)
			})
		}
	})

	t.Run("unknown category", func(t *testing.T) {
		ts.DB.Truncate(t)
		_, author, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)

		_, err := ts.Services.Notice.Create(ctx, author.ID, validCreateInput(uuid.New()))
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestNoticeService_Update(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ctx := context.Background()

	t.Run("author updates mutable fields, slug survives", func(t *testing.T) {
		ts.DB.Truncate(t)
		_, author, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)
		category := testutil.CreateCategory(t, ts.DB.DB, "Vehicles")
		notice := testutil.NewNoticeBuilder(author, category).Build(t, ts.DB.DB)

		updated, err := ts.Services.Notice.Update(ctx, notice.ID, author.ID, service.NoticeUpdateInput{
			Text:       testutil.ValidText("Price dropped, still in excellent condition, pick up only"),
			CategoryID: category.ID,
			Type:       domain.NoticeTypeOffer,
			Status:     domain.NoticeStatusDraft,
			Price:      200,
		})
		require.NoError(t, err)
		assert.Equal(t, notice.Slug, updated.Slug)
		assert.Equal(t, notice.Title, updated.Title)
		assert.Equal(t, domain.NoticeStatusDraft, updated.Status)
		assert.EqualValues(t, 200, updated.Price)
	})

	t.Run("non-author is rejected", func(t *testing.T) {
		ts.DB.Truncate(t)
		_, author, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)
		_, stranger, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)
		category := testutil.CreateCategory(t, ts.DB.DB, "Vehicles")
		notice := testutil.NewNoticeBuilder(author, category).Build(t, ts.DB.DB)

		_, err := ts.Services.Notice.Update(ctx, notice.ID, stranger.ID, service.NoticeUpdateInput{
			Text:       testutil.ValidText("Trying to edit somebody else's listing here"),
			CategoryID: category.ID,
			Type:       domain.NoticeTypeOffer,
			Status:     domain.NoticeStatusPublished,
			Price:      1,
		})
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}

func TestNoticeService_Delete(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ctx := context.Background()

	t.Run("delete returns the image file ids", func(t *testing.T) {
		ts.DB.Truncate(t)
		_, author, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)
		category := testutil.CreateCategory(t, ts.DB.DB, "Vehicles")
		notice := testutil.NewNoticeBuilder(author, category).Build(t, ts.DB.DB)

		for _, fileID := range []string{"f1", "f2", "f3"} {
			_, err := ts.Services.Notice.AddImage(ctx, notice.ID, author.ID, "http://images.test/"+fileID, fileID)
			require.NoError(t, err)
		}

		fileIDs, err := ts.Services.Notice.Delete(ctx, notice.ID, author.ID)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"f1", "f2", "f3"}, fileIDs)

		_, err = ts.Services.Notice.GetBySlug(ctx, notice.Slug)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("non-author cannot delete", func(t *testing.T) {
		ts.DB.Truncate(t)
		_, author, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)
		_, stranger, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)
		category := testutil.CreateCategory(t, ts.DB.DB, "Vehicles")
		notice := testutil.NewNoticeBuilder(author, category).Build(t, ts.DB.DB)

		_, err := ts.Services.Notice.Delete(ctx, notice.ID, stranger.ID)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}

func TestNoticeService_SetMainImage(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ctx := context.Background()

	ts.DB.Truncate(t)
	_, author, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)
	category := testutil.CreateCategory(t, ts.DB.DB, "Vehicles")
	notice := testutil.NewNoticeBuilder(author, category).Build(t, ts.DB.DB)

	image, err := ts.Services.Notice.AddImage(ctx, notice.ID, author.ID, "http://images.test/main", "main")
	require.NoError(t, err)

	// A url the notice does not own is rejected.
	err = ts.Services.Notice.SetMainImage(ctx, notice.ID, author.ID, "http://images.test/other")
	assert.ErrorIs(t, err, domain.ErrValidation)

	require.NoError(t, ts.Services.Notice.SetMainImage(ctx, notice.ID, author.ID, image.URL))

	reloaded, err := ts.Repos.Notice.GetByID(ctx, notice.ID)
	require.NoError(t, err)
	assert.Equal(t, image.URL, reloaded.Image)
}

func TestNoticeService_Listing(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ctx := context.Background()

	ts.DB.Truncate(t)
	_, author, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)
	vehicles := testutil.CreateCategory(t, ts.DB.DB, "Vehicles")
	services := testutil.CreateCategory(t, ts.DB.DB, "Services")

	published := testutil.NewNoticeBuilder(author, vehicles).WithPrice(100).Build(t, ts.DB.DB)
	testutil.NewNoticeBuilder(author, services).WithPrice(500).Build(t, ts.DB.DB)
	draft := testutil.NewNoticeBuilder(author, vehicles).WithStatus(domain.NoticeStatusDraft).Build(t, ts.DB.DB)

	t.Run("public listing hides drafts", func(t *testing.T) {
		list, err := ts.Services.Notice.ListPublished(ctx, service.NoticeListInput{})
		require.NoError(t, err)
		assert.EqualValues(t, 2, list.Total)
		for _, n := range list.Notices {
			assert.Equal(t, domain.NoticeStatusPublished, n.Status)
		}
	})

	t.Run("category and price filters", func(t *testing.T) {
		max := int64(200)
		list, err := ts.Services.Notice.ListPublished(ctx, service.NoticeListInput{
			CategoryID: &vehicles.ID,
			PriceMax:   &max,
		})
		require.NoError(t, err)
		require.EqualValues(t, 1, list.Total)
		assert.Equal(t, published.ID, list.Notices[0].ID)
	})

	t.Run("own listing includes drafts", func(t *testing.T) {
		list, err := ts.Services.Notice.ListOwn(ctx, author.ID, service.NoticeListInput{}, nil)
		require.NoError(t, err)
		assert.EqualValues(t, 3, list.Total)
	})

	t.Run("own listing filtered by status", func(t *testing.T) {
		status := domain.NoticeStatusDraft
		list, err := ts.Services.Notice.ListOwn(ctx, author.ID, service.NoticeListInput{}, &status)
		require.NoError(t, err)
		require.EqualValues(t, 1, list.Total)
		assert.Equal(t, draft.ID, list.Notices[0].ID)
	})

	t.Run("drafts are not served by slug", func(t *testing.T) {
		_, err := ts.Services.Notice.GetBySlug(ctx, draft.Slug)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
