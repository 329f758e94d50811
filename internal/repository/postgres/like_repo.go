package postgres

import (
	"context"

	"github.com/aldis-z/notice-board/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) *likeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) Exists(ctx context.Context, noticeID, profileID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.NoticeLike{}).
		Where("notice_id = ? AND source_profile_id = ?", noticeID, profileID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *likeRepository) Create(ctx context.Context, like *domain.NoticeLike) error {
	return r.db.WithContext(ctx).Create(like).Error
}

func (r *likeRepository) Delete(ctx context.Context, noticeID, profileID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("notice_id = ? AND source_profile_id = ?", noticeID, profileID).
		Delete(&domain.NoticeLike{}).Error
}
