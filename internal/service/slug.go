package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aldis-z/notice-board/internal/domain"
	slugify "github.com/gosimple/slug"
	"gorm.io/gorm"
)

// Suffix attempts before a slug reservation gives up with ErrConflict.
// Practically unreachable, but the outcome must be typed, not a hang.
const maxSlugAttempts = 100

// noticeSlugBase appends the current year and month to reduce collisions
// between similar titles posted in different periods.
func noticeSlugBase(title string, now time.Time) string {
	return fmt.Sprintf("%s-%d-%d", slugify.Make(title), now.Year(), int(now.Month()))
}

func profileSlugBase(name string) string {
	return slugify.Make(name)
}

// uniqueSlug probes base and then base-1, base-2, ... until exists reports a
// free slug. The caller runs this inside the same transaction as the insert;
// the unique index on the slug column backs the check, and an insert that
// still collides is retried once by the caller before surfacing ErrConflict.
func uniqueSlug(ctx context.Context, base string, exists func(context.Context, string) (bool, error)) (string, error) {
	candidate := base
	for i := 1; i <= maxSlugAttempts; i++ {
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", domain.ErrConflict
}

// retrySlugInsert runs attempt, retrying once when a concurrent writer won
// the slug between the existence probe and the insert. The unique index
// reports that as a duplicate-key error; a second loss surfaces as
// ErrConflict. Any other error passes through untouched.
func retrySlugInsert(attempt func() error) error {
	err := attempt()
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		err = attempt()
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrConflict
		}
	}
	return err
}
