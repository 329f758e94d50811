package postgres

import (
	"context"

	"github.com/aldis-z/notice-board/internal/domain"
	"github.com/aldis-z/notice-board/internal/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewConnection(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// Unique-constraint violations surface as gorm.ErrDuplicatedKey so
		// callers can retry slug reservations instead of parsing pq errors.
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Profile{},
		&domain.Category{},
		&domain.Notice{},
		&domain.NoticeImage{},
		&domain.Comment{},
		&domain.NoticeLike{},
		&domain.VerificationToken{},
		&domain.PasswordResetToken{},
	)
}

func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		Tx:                 &txRunner{db: db},
		User:               NewUserRepository(db),
		Profile:            NewProfileRepository(db),
		Category:           NewCategoryRepository(db),
		Notice:             NewNoticeRepository(db),
		NoticeImage:        NewNoticeImageRepository(db),
		Comment:            NewCommentRepository(db),
		Like:               NewLikeRepository(db),
		VerificationToken:  NewVerificationTokenRepository(db),
		PasswordResetToken: NewPasswordResetTokenRepository(db),
	}
}

type txRunner struct {
	db *gorm.DB
}

func (r *txRunner) InTx(ctx context.Context, fn func(repos *repository.Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
