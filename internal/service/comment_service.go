package service

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/aldis-z/notice-board/internal/domain"
	"github.com/aldis-z/notice-board/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const parentPreviewRunes = 100

type CommentService struct {
	repos *repository.Repositories
}

func NewCommentService(repos *repository.Repositories) *CommentService {
	return &CommentService{repos: repos}
}

type CommentCreateInput struct {
	Text     string `validate:"required,min=1,max=500"`
	ParentID *uuid.UUID
}

// ParentPreview is the quoted excerpt a reply carries in listings.
type ParentPreview struct {
	ID         uuid.UUID `json:"id"`
	AuthorName string    `json:"authorName"`
	Text       string    `json:"text"`
}

// CommentView is a comment with its author and, for replies, a preview of the
// parent. The preview is nil when the parent was deleted after the reply was
// written.
type CommentView struct {
	*domain.Comment
	Parent *ParentPreview `json:"parent,omitempty"`
}

// Create inserts the comment and bumps the notice's comment counter in the
// same transaction. Replies must target a top-level comment on the same
// notice.
func (s *CommentService) Create(ctx context.Context, noticeID, authorProfileID uuid.UUID, input CommentCreateInput) (*CommentView, error) {
	input.Text = sanitizeText(input.Text)
	if err := checkInput(input); err != nil {
		return nil, err
	}

	var view *CommentView
	err := s.repos.Tx.InTx(ctx, func(tx *repository.Repositories) error {
		if _, err := tx.Notice.GetByID(ctx, noticeID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}

		var parent *domain.Comment
		if input.ParentID != nil {
			var err error
			parent, err = tx.Comment.GetByID(ctx, *input.ParentID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return &domain.ValidationError{Field: "ParentID", Reason: "references an unknown comment"}
				}
				return err
			}
			if parent.NoticeID != noticeID {
				return &domain.ValidationError{Field: "ParentID", Reason: "belongs to a different notice"}
			}
			if parent.ParentID != nil {
				return &domain.ValidationError{Field: "ParentID", Reason: "replies cannot be nested further"}
			}
		}

		comment := &domain.Comment{
			ID:       uuid.New(),
			Text:     input.Text,
			AuthorID: authorProfileID,
			NoticeID: noticeID,
			ParentID: input.ParentID,
		}
		if err := tx.Comment.Create(ctx, comment); err != nil {
			return err
		}
		if _, err := tx.Notice.AddCommentCount(ctx, noticeID, 1); err != nil {
			return err
		}

		// Reload for the author preload.
		created, err := tx.Comment.GetByID(ctx, comment.ID)
		if err != nil {
			return err
		}
		view = &CommentView{Comment: created, Parent: previewOf(parent)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Update rewrites the comment text. Only the author may edit.
func (s *CommentService) Update(ctx context.Context, commentID, callerProfileID uuid.UUID, text string) (*domain.Comment, error) {
	text = sanitizeText(text)
	if err := checkInput(CommentCreateInput{Text: text}); err != nil {
		return nil, err
	}

	comment, err := s.repos.Comment.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if comment.AuthorID != callerProfileID {
		return nil, domain.ErrUnauthorized
	}

	comment.Text = text
	if err := s.repos.Comment.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// Delete removes the comment and decrements the notice counter in the same
// transaction. Replies to the deleted comment stay; their listings simply
// lose the parent preview.
func (s *CommentService) Delete(ctx context.Context, commentID, callerProfileID uuid.UUID) error {
	return s.repos.Tx.InTx(ctx, func(tx *repository.Repositories) error {
		comment, err := tx.Comment.GetByID(ctx, commentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		if comment.AuthorID != callerProfileID {
			return domain.ErrUnauthorized
		}

		if err := tx.Comment.Delete(ctx, commentID); err != nil {
			return err
		}
		_, err = tx.Notice.AddCommentCount(ctx, comment.NoticeID, -1)
		return err
	})
}

// ListByNotice returns all comments for a notice, oldest first, each reply
// annotated with its parent preview when the parent still exists.
func (s *CommentService) ListByNotice(ctx context.Context, noticeID uuid.UUID) ([]*CommentView, error) {
	comments, err := s.repos.Comment.ListByNotice(ctx, noticeID)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*domain.Comment, len(comments))
	for _, c := range comments {
		byID[c.ID] = c
	}

	views := make([]*CommentView, 0, len(comments))
	for _, c := range comments {
		view := &CommentView{Comment: c}
		if c.ParentID != nil {
			view.Parent = previewOf(byID[*c.ParentID])
		}
		views = append(views, view)
	}
	return views, nil
}

func previewOf(parent *domain.Comment) *ParentPreview {
	if parent == nil {
		return nil
	}
	preview := &ParentPreview{ID: parent.ID, Text: truncateRunes(parent.Text, parentPreviewRunes)}
	if parent.Author != nil {
		preview.AuthorName = parent.Author.Name
	}
	return preview
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "…"
}
