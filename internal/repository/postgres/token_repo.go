package postgres

import (
	"context"
	"time"

	"github.com/aldis-z/notice-board/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type verificationTokenRepository struct {
	db *gorm.DB
}

func NewVerificationTokenRepository(db *gorm.DB) *verificationTokenRepository {
	return &verificationTokenRepository{db: db}
}

func (r *verificationTokenRepository) Latest(ctx context.Context, identifier string) (*domain.VerificationToken, error) {
	var token domain.VerificationToken
	err := r.db.WithContext(ctx).
		Where("identifier = ?", identifier).
		Order("created_at DESC").
		First(&token).Error
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// Replace upserts on identifier. The DO UPDATE only fires when the existing
// row is older than cutoff, so the rate window holds even when two issuers
// race: exactly one of them replaces the row. Returns false when the
// existing row survived.
func (r *verificationTokenRepository) Replace(ctx context.Context, token *domain.VerificationToken, cutoff time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "identifier"}},
			Where:     clause.Where{Exprs: []clause.Expression{gorm.Expr("verification_tokens.created_at < ?", cutoff)}},
			DoUpdates: clause.AssignmentColumns([]string{"token", "expires", "user_id", "created_at"}),
		}).
		Create(token)
	return res.RowsAffected == 1, res.Error
}

func (r *verificationTokenRepository) GetByHash(ctx context.Context, identifier, tokenHash string) (*domain.VerificationToken, error) {
	var token domain.VerificationToken
	err := r.db.WithContext(ctx).
		Where("identifier = ? AND token = ?", identifier, tokenHash).
		First(&token).Error
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *verificationTokenRepository) Delete(ctx context.Context, identifier, tokenHash string) error {
	return r.db.WithContext(ctx).
		Where("identifier = ? AND token = ?", identifier, tokenHash).
		Delete(&domain.VerificationToken{}).Error
}

type passwordResetTokenRepository struct {
	db *gorm.DB
}

func NewPasswordResetTokenRepository(db *gorm.DB) *passwordResetTokenRepository {
	return &passwordResetTokenRepository{db: db}
}

func (r *passwordResetTokenRepository) Latest(ctx context.Context, userID uuid.UUID) (*domain.PasswordResetToken, error) {
	var token domain.PasswordResetToken
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&token).Error
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *passwordResetTokenRepository) Replace(ctx context.Context, token *domain.PasswordResetToken, cutoff time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			Where:     clause.Where{Exprs: []clause.Expression{gorm.Expr("password_reset_tokens.created_at < ?", cutoff)}},
			DoUpdates: clause.AssignmentColumns([]string{"token", "expires", "email", "created_at"}),
		}).
		Create(token)
	return res.RowsAffected == 1, res.Error
}

func (r *passwordResetTokenRepository) GetByHash(ctx context.Context, email, tokenHash string) (*domain.PasswordResetToken, error) {
	var token domain.PasswordResetToken
	err := r.db.WithContext(ctx).
		Where("email = ? AND token = ?", email, tokenHash).
		First(&token).Error
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *passwordResetTokenRepository) Delete(ctx context.Context, userID uuid.UUID, tokenHash string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND token = ?", userID, tokenHash).
		Delete(&domain.PasswordResetToken{}).Error
}
