package postgres

import (
	"context"

	"github.com/aldis-z/notice-board/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type noticeImageRepository struct {
	db *gorm.DB
}

func NewNoticeImageRepository(db *gorm.DB) *noticeImageRepository {
	return &noticeImageRepository{db: db}
}

func (r *noticeImageRepository) Create(ctx context.Context, image *domain.NoticeImage) error {
	return r.db.WithContext(ctx).Create(image).Error
}

func (r *noticeImageRepository) ListByNotice(ctx context.Context, noticeID uuid.UUID) ([]*domain.NoticeImage, error) {
	var images []*domain.NoticeImage
	err := r.db.WithContext(ctx).
		Where("notice_id = ?", noticeID).
		Find(&images).Error
	if err != nil {
		return nil, err
	}
	return images, nil
}

func (r *noticeImageRepository) GetByIDs(ctx context.Context, noticeID uuid.UUID, ids []uuid.UUID) ([]*domain.NoticeImage, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var images []*domain.NoticeImage
	err := r.db.WithContext(ctx).
		Where("notice_id = ? AND id IN ?", noticeID, ids).
		Find(&images).Error
	if err != nil {
		return nil, err
	}
	return images, nil
}

func (r *noticeImageRepository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Delete(&domain.NoticeImage{}, "id IN ?", ids).Error
}
