package service

import (
	"context"
	"errors"

	"github.com/aldis-z/notice-board/internal/domain"
	"github.com/aldis-z/notice-board/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProfileService struct {
	repos *repository.Repositories
}

func NewProfileService(repos *repository.Repositories) *ProfileService {
	return &ProfileService{repos: repos}
}

type ProfileUpdateInput struct {
	Name  string `validate:"required,min=1,max=32"`
	About string `validate:"max=2000"`
}

// Update edits the display name and about text. A changed name regenerates
// the slug, excluding the profile's own row from the uniqueness probe so an
// unchanged name keeps its slug.
func (s *ProfileService) Update(ctx context.Context, profileID uuid.UUID, input ProfileUpdateInput) (*domain.Profile, error) {
	input.Name = sanitizeText(input.Name)
	input.About = sanitizeText(input.About)
	if err := checkInput(input); err != nil {
		return nil, err
	}

	var updated *domain.Profile
	err := retrySlugInsert(func() error {
		var renameErr error
		updated, renameErr = s.updateWithSlug(ctx, profileID, input)
		return renameErr
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// A renamer can lose its regenerated slug to a concurrent writer the same
// way a notice insert can; the unique index reports the loss and the caller
// retries with a fresh probe.
func (s *ProfileService) updateWithSlug(ctx context.Context, profileID uuid.UUID, input ProfileUpdateInput) (*domain.Profile, error) {
	var updated *domain.Profile
	err := s.repos.Tx.InTx(ctx, func(tx *repository.Repositories) error {
		profile, err := tx.Profile.GetByID(ctx, profileID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}

		if input.Name != profile.Name {
			exists := func(ctx context.Context, slug string) (bool, error) {
				return tx.Profile.SlugExists(ctx, slug, profileID)
			}
			slug, err := uniqueSlug(ctx, profileSlugBase(input.Name), exists)
			if err != nil {
				return err
			}
			profile.Slug = slug
		}

		profile.Name = input.Name
		profile.About = input.About
		if err := tx.Profile.Update(ctx, profile); err != nil {
			return err
		}
		updated = profile
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SetImage swaps the avatar reference and returns the replaced object's file
// id, empty when there was none. Deleting the old object from the image store
// is the caller's follow-up.
func (s *ProfileService) SetImage(ctx context.Context, profileID uuid.UUID, url, fileID string) (string, error) {
	var previous string
	err := s.repos.Tx.InTx(ctx, func(tx *repository.Repositories) error {
		profile, err := tx.Profile.GetByID(ctx, profileID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}

		if profile.ImageFileID != nil {
			previous = *profile.ImageFileID
		}
		profile.Image = &url
		profile.ImageFileID = &fileID
		return tx.Profile.Update(ctx, profile)
	})
	if err != nil {
		return "", err
	}
	return previous, nil
}

// GetBySlug is the public profile view.
func (s *ProfileService) GetBySlug(ctx context.Context, slug string) (*domain.Profile, error) {
	profile, err := s.repos.Profile.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return profile, nil
}

// GetOwn loads the caller's profile by user id.
func (s *ProfileService) GetOwn(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	profile, err := s.repos.Profile.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNoProfile
		}
		return nil, err
	}
	return profile, nil
}
