package service

import (
	"context"
	"errors"

	"github.com/aldis-z/notice-board/internal/domain"
	"github.com/aldis-z/notice-board/internal/repository"
	"github.com/google/uuid"
	slugify "github.com/gosimple/slug"
	"gorm.io/gorm"
)

// defaultCategories is the fixed taxonomy seeded on first start.
var defaultCategories = []string{
	"Electronics",
	"Home & Garden",
	"Vehicles",
	"Clothing",
	"Sports & Leisure",
	"Books & Media",
	"Services",
	"Jobs",
	"Real Estate",
	"Other",
}

type CategoryService struct {
	repos *repository.Repositories
}

func NewCategoryService(repos *repository.Repositories) *CategoryService {
	return &CategoryService{repos: repos}
}

func (s *CategoryService) List(ctx context.Context) ([]*domain.Category, error) {
	return s.repos.Category.List(ctx)
}

func (s *CategoryService) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	category, err := s.repos.Category.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return category, nil
}

// Seed inserts the default taxonomy if the table is empty.
func (s *CategoryService) Seed(ctx context.Context) error {
	count, err := s.repos.Category.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	categories := make([]*domain.Category, 0, len(defaultCategories))
	for _, name := range defaultCategories {
		categories = append(categories, &domain.Category{
			ID:   uuid.New(),
			Name: name,
			Slug: slugify.Make(name),
		})
	}
	return s.repos.Category.CreateMany(ctx, categories)
}
