package service

import (
	"context"
	"errors"
	"time"

	"github.com/aldis-z/notice-board/internal/domain"
	"github.com/aldis-z/notice-board/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NoticeService struct {
	repos *repository.Repositories
}

func NewNoticeService(repos *repository.Repositories) *NoticeService {
	return &NoticeService{repos: repos}
}

type NoticeCreateInput struct {
	Title      string              `validate:"required,min=50,max=70"`
	Text       string              `validate:"required,min=50,max=2000"`
	CategoryID uuid.UUID           `validate:"required"`
	Type       domain.NoticeType   `validate:"required,oneof=Offer Request"`
	Status     domain.NoticeStatus `validate:"required,oneof=Draft Published"`
	Price      int64               `validate:"min=0,max=9999999"`
}

type NoticeUpdateInput struct {
	Text       string              `validate:"required,min=50,max=2000"`
	CategoryID uuid.UUID           `validate:"required"`
	Type       domain.NoticeType   `validate:"required,oneof=Offer Request"`
	Status     domain.NoticeStatus `validate:"required,oneof=Draft Published"`
	Price      int64               `validate:"min=0,max=9999999"`
}

// Create validates and persists a new notice with a reserved unique slug.
// Image uploads happen outside this transaction; if one fails the caller
// compensates with Delete so no imageless notice is left behind.
func (s *NoticeService) Create(ctx context.Context, authorProfileID uuid.UUID, input NoticeCreateInput) (*domain.Notice, error) {
	input.Title = sanitizeText(input.Title)
	input.Text = sanitizeText(input.Text)
	if err := checkInput(input); err != nil {
		return nil, err
	}

	if _, err := s.repos.Category.GetByID(ctx, input.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &domain.ValidationError{Field: "CategoryID", Reason: "references an unknown category"}
		}
		return nil, err
	}

	var notice *domain.Notice
	err := retrySlugInsert(func() error {
		var insertErr error
		notice, insertErr = s.insertWithSlug(ctx, authorProfileID, input)
		return insertErr
	})
	if err != nil {
		return nil, err
	}
	return notice, nil
}

func (s *NoticeService) insertWithSlug(ctx context.Context, authorProfileID uuid.UUID, input NoticeCreateInput) (*domain.Notice, error) {
	var notice *domain.Notice
	err := s.repos.Tx.InTx(ctx, func(tx *repository.Repositories) error {
		slug, err := uniqueSlug(ctx, noticeSlugBase(input.Title, time.Now()), tx.Notice.SlugExists)
		if err != nil {
			return err
		}

		notice = &domain.Notice{
			ID:         uuid.New(),
			AuthorID:   authorProfileID,
			CategoryID: input.CategoryID,
			Slug:       slug,
			Title:      input.Title,
			Text:       input.Text,
			Price:      input.Price,
			Type:       input.Type,
			Status:     input.Status,
		}
		return tx.Notice.Create(ctx, notice)
	})
	if err != nil {
		return nil, err
	}
	return notice, nil
}

// Update changes the mutable fields. The title, and with it the slug, is
// fixed at creation.
func (s *NoticeService) Update(ctx context.Context, noticeID, callerProfileID uuid.UUID, input NoticeUpdateInput) (*domain.Notice, error) {
	input.Text = sanitizeText(input.Text)
	if err := checkInput(input); err != nil {
		return nil, err
	}

	var updated *domain.Notice
	err := s.repos.Tx.InTx(ctx, func(tx *repository.Repositories) error {
		notice, err := tx.Notice.GetByID(ctx, noticeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		if notice.AuthorID != callerProfileID {
			return domain.ErrUnauthorized
		}

		notice.Text = input.Text
		notice.CategoryID = input.CategoryID
		notice.Type = input.Type
		notice.Status = input.Status
		notice.Price = input.Price

		if err := tx.Notice.Update(ctx, notice); err != nil {
			return err
		}
		updated = notice
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the notice and its child rows and returns the external
// file ids of its images. Deleting those objects from the image store is the
// caller's out-of-transaction, best-effort follow-up.
func (s *NoticeService) Delete(ctx context.Context, noticeID, callerProfileID uuid.UUID) ([]string, error) {
	var fileIDs []string
	err := s.repos.Tx.InTx(ctx, func(tx *repository.Repositories) error {
		notice, err := tx.Notice.GetByID(ctx, noticeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		if notice.AuthorID != callerProfileID {
			return domain.ErrUnauthorized
		}

		images, err := tx.NoticeImage.ListByNotice(ctx, noticeID)
		if err != nil {
			return err
		}
		for _, img := range images {
			fileIDs = append(fileIDs, img.FileID)
		}

		return tx.Notice.Delete(ctx, noticeID)
	})
	if err != nil {
		return nil, err
	}
	return fileIDs, nil
}

// SetMainImage mirrors one of the notice's image urls into the notice row.
// The caller chooses which url; it must belong to the notice.
func (s *NoticeService) SetMainImage(ctx context.Context, noticeID, callerProfileID uuid.UUID, url string) error {
	notice, err := s.repos.Notice.GetByID(ctx, noticeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		return err
	}
	if notice.AuthorID != callerProfileID {
		return domain.ErrUnauthorized
	}

	found := false
	for _, img := range notice.Images {
		if img.URL == url {
			found = true
			break
		}
	}
	if !found {
		return &domain.ValidationError{Field: "URL", Reason: "does not belong to this notice"}
	}

	return s.repos.Notice.SetMainImage(ctx, noticeID, url)
}

// AddImage records an already-uploaded image against the notice.
func (s *NoticeService) AddImage(ctx context.Context, noticeID, callerProfileID uuid.UUID, url, fileID string) (*domain.NoticeImage, error) {
	notice, err := s.repos.Notice.GetByID(ctx, noticeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if notice.AuthorID != callerProfileID {
		return nil, domain.ErrUnauthorized
	}

	image := &domain.NoticeImage{
		ID:       uuid.New(),
		URL:      url,
		FileID:   fileID,
		NoticeID: noticeID,
	}
	if err := s.repos.NoticeImage.Create(ctx, image); err != nil {
		return nil, err
	}
	return image, nil
}

// RemoveImages deletes image rows and returns their file ids for external
// cleanup.
func (s *NoticeService) RemoveImages(ctx context.Context, noticeID, callerProfileID uuid.UUID, imageIDs []uuid.UUID) ([]string, error) {
	notice, err := s.repos.Notice.GetByID(ctx, noticeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if notice.AuthorID != callerProfileID {
		return nil, domain.ErrUnauthorized
	}

	images, err := s.repos.NoticeImage.GetByIDs(ctx, noticeID, imageIDs)
	if err != nil {
		return nil, err
	}

	var fileIDs []string
	var ids []uuid.UUID
	for _, img := range images {
		fileIDs = append(fileIDs, img.FileID)
		ids = append(ids, img.ID)
	}

	if err := s.repos.NoticeImage.DeleteByIDs(ctx, ids); err != nil {
		return nil, err
	}
	return fileIDs, nil
}

type NoticeListInput struct {
	CategoryID *uuid.UUID
	Type       *domain.NoticeType
	PriceMin   *int64
	PriceMax   *int64
	Search     string
	OrderBy    string
	Page       int
	PageSize   int
}

type NoticeList struct {
	Notices []*domain.Notice
	Total   int64
}

// ListPublished is the public board view.
func (s *NoticeService) ListPublished(ctx context.Context, input NoticeListInput) (*NoticeList, error) {
	status := domain.NoticeStatusPublished
	filter := s.baseFilter(input)
	filter.Status = &status

	notices, total, err := s.repos.Notice.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &NoticeList{Notices: notices, Total: total}, nil
}

// ListOwn returns the caller's notices, drafts included.
func (s *NoticeService) ListOwn(ctx context.Context, callerProfileID uuid.UUID, input NoticeListInput, status *domain.NoticeStatus) (*NoticeList, error) {
	filter := s.baseFilter(input)
	filter.AuthorID = &callerProfileID
	filter.Status = status

	notices, total, err := s.repos.Notice.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &NoticeList{Notices: notices, Total: total}, nil
}

func (s *NoticeService) baseFilter(input NoticeListInput) repository.NoticeFilter {
	page := input.Page
	if page < 1 {
		page = 1
	}
	pageSize := input.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 12
	}

	return repository.NoticeFilter{
		CategoryID: input.CategoryID,
		Type:       input.Type,
		PriceMin:   input.PriceMin,
		PriceMax:   input.PriceMax,
		Search:     sanitizeText(input.Search),
		OrderBy:    input.OrderBy,
		Limit:      pageSize,
		Offset:     (page - 1) * pageSize,
	}
}

// GetBySlug is the public detail view with author, category and images.
// Drafts are not served here; the author reaches them through GetOwn.
func (s *NoticeService) GetBySlug(ctx context.Context, slug string) (*domain.Notice, error) {
	notice, err := s.repos.Notice.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if notice.Status != domain.NoticeStatusPublished {
		return nil, domain.ErrNotFound
	}
	return notice, nil
}

// GetOwn loads a notice for editing; only the author may see drafts this way.
func (s *NoticeService) GetOwn(ctx context.Context, noticeID, callerProfileID uuid.UUID) (*domain.Notice, error) {
	notice, err := s.repos.Notice.GetByID(ctx, noticeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if notice.AuthorID != callerProfileID {
		return nil, domain.ErrUnauthorized
	}
	return notice, nil
}
