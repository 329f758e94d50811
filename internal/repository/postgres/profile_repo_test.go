package postgres_test

import (
	"context"
	"testing"

	"github.com/aldis-z/notice-board/internal/testutil"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

// The slug column's unique index is what turns a lost slug race into a typed
// duplicate-key error for the retry path.
func TestProfileRepository_SlugUniqueIndex(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ctx := context.Background()

	ts.DB.Truncate(t)
	_, first, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)
	_, second, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)

	second.Slug = first.Slug
	err := ts.Repos.Profile.Update(ctx, second)
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}
