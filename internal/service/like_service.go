package service

import (
	"context"
	"errors"

	"github.com/aldis-z/notice-board/internal/domain"
	"github.com/aldis-z/notice-board/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LikeService struct {
	repos *repository.Repositories
}

func NewLikeService(repos *repository.Repositories) *LikeService {
	return &LikeService{repos: repos}
}

// LikeState is the outcome of a toggle or a status read. LikeCount is the
// counter value after the operation.
type LikeState struct {
	IsLiked   bool `json:"isLiked"`
	LikeCount int  `json:"likeCount"`
}

// Toggle flips the caller's like on a notice. The like row and the notice
// counter move together in one transaction, so the counter never drifts from
// the row count and toggling twice restores the original state.
func (s *LikeService) Toggle(ctx context.Context, noticeID, callerProfileID uuid.UUID) (*LikeState, error) {
	var state LikeState
	err := s.repos.Tx.InTx(ctx, func(tx *repository.Repositories) error {
		if _, err := tx.Notice.GetByID(ctx, noticeID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}

		liked, err := tx.Like.Exists(ctx, noticeID, callerProfileID)
		if err != nil {
			return err
		}

		if liked {
			if err := tx.Like.Delete(ctx, noticeID, callerProfileID); err != nil {
				return err
			}
			count, err := tx.Notice.AddLikeCount(ctx, noticeID, -1)
			if err != nil {
				return err
			}
			state = LikeState{IsLiked: false, LikeCount: count}
			return nil
		}

		like := &domain.NoticeLike{NoticeID: noticeID, SourceProfileID: callerProfileID}
		if err := tx.Like.Create(ctx, like); err != nil {
			// A double-submit that raced past the existence check lands on
			// the composite key; the row stays single and the loser gets a
			// typed conflict.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrConflict
			}
			return err
		}
		count, err := tx.Notice.AddLikeCount(ctx, noticeID, 1)
		if err != nil {
			return err
		}
		state = LikeState{IsLiked: true, LikeCount: count}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// Status reports whether the caller has liked the notice and its current
// counter, without changing anything.
func (s *LikeService) Status(ctx context.Context, noticeID, callerProfileID uuid.UUID) (*LikeState, error) {
	notice, err := s.repos.Notice.GetByID(ctx, noticeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	liked := false
	if callerProfileID != uuid.Nil {
		liked, err = s.repos.Like.Exists(ctx, noticeID, callerProfileID)
		if err != nil {
			return nil, err
		}
	}
	return &LikeState{IsLiked: liked, LikeCount: notice.LikeCount}, nil
}
