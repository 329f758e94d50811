package postgres

import (
	"context"

	"github.com/aldis-z/notice-board/internal/domain"
	"github.com/aldis-z/notice-board/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type noticeRepository struct {
	db *gorm.DB
}

func NewNoticeRepository(db *gorm.DB) *noticeRepository {
	return &noticeRepository{db: db}
}

func (r *noticeRepository) Create(ctx context.Context, notice *domain.Notice) error {
	return r.db.WithContext(ctx).Create(notice).Error
}

func (r *noticeRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Notice, error) {
	var notice domain.Notice
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Category").
		Preload("Images").
		First(&notice, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &notice, nil
}

func (r *noticeRepository) GetBySlug(ctx context.Context, slug string) (*domain.Notice, error) {
	var notice domain.Notice
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Category").
		Preload("Images").
		First(&notice, "slug = ?", slug).Error
	if err != nil {
		return nil, err
	}
	return &notice, nil
}

func (r *noticeRepository) Update(ctx context.Context, notice *domain.Notice) error {
	return r.db.WithContext(ctx).
		Model(notice).
		Select("Text", "Type", "Price", "Status", "CategoryID").
		Updates(notice).Error
}

func (r *noticeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// NoticeImage, Comment and NoticeLike rows go with the notice.
	if err := r.db.WithContext(ctx).Delete(&domain.NoticeImage{}, "notice_id = ?", id).Error; err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Delete(&domain.Comment{}, "notice_id = ?", id).Error; err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Delete(&domain.NoticeLike{}, "notice_id = ?", id).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(&domain.Notice{}, "id = ?", id).Error
}

var noticeOrderBy = map[string]string{
	"newest":    "created_at DESC, id DESC",
	"oldest":    "created_at ASC, id ASC",
	"popular":   "like_count DESC, id DESC",
	"commented": "comment_count DESC, id DESC",
}

func (r *noticeRepository) List(ctx context.Context, filter repository.NoticeFilter) ([]*domain.Notice, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Notice{})

	if filter.AuthorID != nil {
		q = q.Where("author_id = ?", *filter.AuthorID)
	}
	if filter.CategoryID != nil {
		q = q.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.Type != nil {
		q = q.Where("type = ?", *filter.Type)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.PriceMin != nil {
		q = q.Where("price >= ?", *filter.PriceMin)
	}
	if filter.PriceMax != nil {
		q = q.Where("price <= ?", *filter.PriceMax)
	}
	if filter.Search != "" {
		q = q.Where("title ILIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy, ok := noticeOrderBy[filter.OrderBy]
	if !ok {
		orderBy = noticeOrderBy["newest"]
	}

	var notices []*domain.Notice
	err := q.Preload("Author").
		Preload("Category").
		Order(orderBy).
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&notices).Error
	if err != nil {
		return nil, 0, err
	}

	return notices, total, nil
}

func (r *noticeRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Notice{}).
		Where("slug = ?", slug).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *noticeRepository) SetMainImage(ctx context.Context, id uuid.UUID, url string) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Notice{}).
		Where("id = ?", id).
		Update("image", url)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Counter maintenance is a single UPDATE with RETURNING so concurrent
// writers cannot lose updates through a read-then-write window.
func (r *noticeRepository) AddLikeCount(ctx context.Context, id uuid.UUID, delta int) (int, error) {
	return r.addCounter(ctx, "like_count", id, delta)
}

func (r *noticeRepository) AddCommentCount(ctx context.Context, id uuid.UUID, delta int) (int, error) {
	return r.addCounter(ctx, "comment_count", id, delta)
}

func (r *noticeRepository) addCounter(ctx context.Context, column string, id uuid.UUID, delta int) (int, error) {
	var count int
	err := r.db.WithContext(ctx).
		Raw("UPDATE notices SET "+column+" = "+column+" + ? WHERE id = ? RETURNING "+column, delta, id).
		Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
