package repository

import (
	"context"
	"time"

	"github.com/aldis-z/notice-board/internal/domain"
	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	MarkEmailVerified(ctx context.Context, id uuid.UUID) error
}

type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Profile, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Profile, error)
	Update(ctx context.Context, profile *domain.Profile) error
	// SlugExists reports whether another profile already holds slug.
	// excludeID skips the profile's own row when updating in place.
	SlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error)
}

type CategoryRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Category, error)
	List(ctx context.Context) ([]*domain.Category, error)
	CreateMany(ctx context.Context, categories []*domain.Category) error
	Count(ctx context.Context) (int64, error)
}

// NoticeFilter is the dynamic WHERE clause for notice listings.
type NoticeFilter struct {
	AuthorID   *uuid.UUID
	CategoryID *uuid.UUID
	Type       *domain.NoticeType
	Status     *domain.NoticeStatus
	PriceMin   *int64
	PriceMax   *int64
	Search     string
	OrderBy    string // newest | oldest | popular | commented
	Limit      int
	Offset     int
}

type NoticeRepository interface {
	Create(ctx context.Context, notice *domain.Notice) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Notice, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Notice, error)
	Update(ctx context.Context, notice *domain.Notice) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter NoticeFilter) ([]*domain.Notice, int64, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	SetMainImage(ctx context.Context, id uuid.UUID, url string) error
	// AddLikeCount and AddCommentCount apply the delta in a single atomic
	// UPDATE and return the resulting counter value.
	AddLikeCount(ctx context.Context, id uuid.UUID, delta int) (int, error)
	AddCommentCount(ctx context.Context, id uuid.UUID, delta int) (int, error)
}

type NoticeImageRepository interface {
	Create(ctx context.Context, image *domain.NoticeImage) error
	ListByNotice(ctx context.Context, noticeID uuid.UUID) ([]*domain.NoticeImage, error)
	GetByIDs(ctx context.Context, noticeID uuid.UUID, ids []uuid.UUID) ([]*domain.NoticeImage, error)
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) error
}

type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error)
	Update(ctx context.Context, comment *domain.Comment) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByNotice(ctx context.Context, noticeID uuid.UUID) ([]*domain.Comment, error)
}

type LikeRepository interface {
	Exists(ctx context.Context, noticeID, profileID uuid.UUID) (bool, error)
	Create(ctx context.Context, like *domain.NoticeLike) error
	Delete(ctx context.Context, noticeID, profileID uuid.UUID) error
}

type VerificationTokenRepository interface {
	Latest(ctx context.Context, identifier string) (*domain.VerificationToken, error)
	// Replace upserts on identifier, overwriting the existing row only when
	// it is older than cutoff. Exactly one of two racing issuers gets true;
	// false means the existing row survived and the caller is rate limited.
	Replace(ctx context.Context, token *domain.VerificationToken, cutoff time.Time) (bool, error)
	GetByHash(ctx context.Context, identifier, tokenHash string) (*domain.VerificationToken, error)
	Delete(ctx context.Context, identifier, tokenHash string) error
}

type PasswordResetTokenRepository interface {
	Latest(ctx context.Context, userID uuid.UUID) (*domain.PasswordResetToken, error)
	Replace(ctx context.Context, token *domain.PasswordResetToken, cutoff time.Time) (bool, error)
	GetByHash(ctx context.Context, email, tokenHash string) (*domain.PasswordResetToken, error)
	Delete(ctx context.Context, userID uuid.UUID, tokenHash string) error
}

// TxRunner executes fn inside a single database transaction. The
// Repositories handed to fn are bound to that transaction; the transaction
// commits when fn returns nil and rolls back on error, panic or context
// cancellation.
type TxRunner interface {
	InTx(ctx context.Context, fn func(repos *Repositories) error) error
}

type Repositories struct {
	Tx                 TxRunner
	User               UserRepository
	Profile            ProfileRepository
	Category           CategoryRepository
	Notice             NoticeRepository
	NoticeImage        NoticeImageRepository
	Comment            CommentRepository
	Like               LikeRepository
	VerificationToken  VerificationTokenRepository
	PasswordResetToken PasswordResetTokenRepository
}
