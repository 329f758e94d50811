package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"
	"unicode"

	"github.com/aldis-z/notice-board/internal/config"
	"github.com/aldis-z/notice-board/internal/domain"
	"github.com/aldis-z/notice-board/internal/mail"
	"github.com/aldis-z/notice-board/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

const (
	// One code per identifier per window; a second request inside the
	// window is RateLimited with the remaining time.
	codeRateLimitWindow = 5 * time.Minute
	codeTTL             = time.Hour
)

// Responses for email-keyed flows are identical whether or not the address is
// registered, so the endpoints cannot be used to enumerate accounts.
const genericCodeSentMessage = "If your email is registered, you will receive a code"

type AuthService struct {
	repos  *repository.Repositories
	cfg    *config.Config
	mailer mail.Mailer
}

func NewAuthService(repos *repository.Repositories, cfg *config.Config, mailer mail.Mailer) *AuthService {
	return &AuthService{
		repos:  repos,
		cfg:    cfg,
		mailer: mailer,
	}
}

type SignUpInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8,max=32"`
}

type SignUpResult struct {
	Message string
}

type SignInInput struct {
	Email    string
	Password string
}

type AuthResult struct {
	User        *domain.User
	Profile     *domain.Profile
	AccessToken string
}

// SignUp creates the User and its Profile in one transaction, then issues an
// email verification code. A duplicate email produces the same outward result
// as a fresh sign-up, with no side effects.
func (s *AuthService) SignUp(ctx context.Context, input SignUpInput) (*SignUpResult, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := checkInput(input); err != nil {
		return nil, err
	}
	if err := checkPasswordStrength(input.Password); err != nil {
		return nil, err
	}

	if _, err := s.repos.User.GetByEmail(ctx, input.Email); err == nil {
		return &SignUpResult{Message: genericCodeSentMessage}, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	profileName := input.Email[:strings.Index(input.Email, "@")]

	var user *domain.User
	err = retrySlugInsert(func() error {
		var insertErr error
		user, insertErr = s.insertUserWithProfile(ctx, input.Email, string(hashed), profileName)
		return insertErr
	})
	if errors.Is(err, domain.ErrConflict) {
		// The losing duplicate can be the email itself when two sign-ups
		// race; that case keeps the enumeration-safe reply.
		if _, lookupErr := s.repos.User.GetByEmail(ctx, input.Email); lookupErr == nil {
			return &SignUpResult{Message: genericCodeSentMessage}, nil
		}
		return nil, domain.ErrConflict
	}
	if err != nil {
		return nil, err
	}

	code, err := s.IssueVerificationCode(ctx, user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	s.sendVerificationEmail(ctx, user.Email, code)

	return &SignUpResult{Message: genericCodeSentMessage}, nil
}

func (s *AuthService) insertUserWithProfile(ctx context.Context, email, passwordHash, profileName string) (*domain.User, error) {
	var user *domain.User
	err := s.repos.Tx.InTx(ctx, func(tx *repository.Repositories) error {
		user = &domain.User{
			ID:           uuid.New(),
			Email:        email,
			PasswordHash: passwordHash,
		}
		if err := tx.User.Create(ctx, user); err != nil {
			return err
		}

		slug, err := uniqueSlug(ctx, profileSlugBase(profileName), func(ctx context.Context, candidate string) (bool, error) {
			return tx.Profile.SlugExists(ctx, candidate, uuid.Nil)
		})
		if err != nil {
			return err
		}

		return tx.Profile.Create(ctx, &domain.Profile{
			ID:     uuid.New(),
			UserID: user.ID,
			Name:   profileName,
			Slug:   slug,
		})
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) SignIn(ctx context.Context, input SignInInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	user, err := s.repos.User.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	profile, err := s.repos.Profile.GetByUserID(ctx, user.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	token, err := s.generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Profile: profile, AccessToken: token}, nil
}

// IssueVerificationCode upserts the hashed code and returns the plaintext
// for emailing. The plaintext is never persisted. The rate window rides on
// the upsert itself: the conditional DO UPDATE refuses to overwrite a row
// younger than the window, so two racing issuers cannot both get a code.
func (s *AuthService) IssueVerificationCode(ctx context.Context, userID uuid.UUID, email string) (string, error) {
	code, err := randomCode()
	if err != nil {
		return "", err
	}

	replaced, err := s.repos.VerificationToken.Replace(ctx, &domain.VerificationToken{
		Identifier: email,
		Token:      hashCode(code),
		Expires:    time.Now().Add(codeTTL),
		UserID:     userID,
		CreatedAt:  time.Now(),
	}, time.Now().Add(-codeRateLimitWindow))
	if err != nil {
		return "", err
	}
	if !replaced {
		return "", s.rateLimited(ctx, func(ctx context.Context) (time.Time, error) {
			token, err := s.repos.VerificationToken.Latest(ctx, email)
			if err != nil {
				return time.Time{}, err
			}
			return token.CreatedAt, nil
		})
	}

	return code, nil
}

func (s *AuthService) IssuePasswordResetCode(ctx context.Context, userID uuid.UUID, email string) (string, error) {
	code, err := randomCode()
	if err != nil {
		return "", err
	}

	replaced, err := s.repos.PasswordResetToken.Replace(ctx, &domain.PasswordResetToken{
		UserID:    userID,
		Token:     hashCode(code),
		Expires:   time.Now().Add(codeTTL),
		Email:     email,
		CreatedAt: time.Now(),
	}, time.Now().Add(-codeRateLimitWindow))
	if err != nil {
		return "", err
	}
	if !replaced {
		return "", s.rateLimited(ctx, func(ctx context.Context) (time.Time, error) {
			token, err := s.repos.PasswordResetToken.Latest(ctx, userID)
			if err != nil {
				return time.Time{}, err
			}
			return token.CreatedAt, nil
		})
	}

	return code, nil
}

// rateLimited builds the RateLimited result from the row that survived the
// conditional upsert. If that row was consumed in the meantime the full
// window is reported.
func (s *AuthService) rateLimited(ctx context.Context, latest func(context.Context) (time.Time, error)) error {
	createdAt, err := latest(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &domain.RateLimitedError{RetryAfter: codeRateLimitWindow}
		}
		return err
	}

	remaining := codeRateLimitWindow - time.Since(createdAt)
	if remaining <= 0 {
		remaining = time.Second
	}
	return &domain.RateLimitedError{RetryAfter: remaining}
}

// ResendVerificationCode is enumeration-safe: unknown and already-verified
// addresses return nil without issuing anything.
func (s *AuthService) ResendVerificationCode(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.repos.User.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if user.EmailVerified != nil {
		return nil
	}

	code, err := s.IssueVerificationCode(ctx, user.ID, email)
	if err != nil {
		return err
	}
	s.sendVerificationEmail(ctx, email, code)
	return nil
}

// VerifyEmail consumes a code: a successful verification marks the email and
// deletes the row in one transaction, so a second attempt with the same code
// fails with ErrInvalidCode.
func (s *AuthService) VerifyEmail(ctx context.Context, email, code string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	tokenHash := hashCode(code)

	token, err := s.repos.VerificationToken.GetByHash(ctx, email, tokenHash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrInvalidCode
		}
		return err
	}

	if token.Expires.Before(time.Now()) {
		if err := s.repos.VerificationToken.Delete(ctx, email, tokenHash); err != nil {
			return err
		}
		return domain.ErrCodeExpired
	}

	return s.repos.Tx.InTx(ctx, func(tx *repository.Repositories) error {
		if err := tx.User.MarkEmailVerified(ctx, token.UserID); err != nil {
			return err
		}
		return tx.VerificationToken.Delete(ctx, email, tokenHash)
	})
}

// RequestPasswordReset is enumeration-safe; the caller always sees the same
// generic outcome.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.repos.User.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	code, err := s.IssuePasswordResetCode(ctx, user.ID, email)
	if err != nil {
		return err
	}

	s.sendMail(ctx, email, "Reset your password", resetEmailHTML(code))
	return nil
}

type ResetPasswordInput struct {
	Email    string `validate:"required,email"`
	Code     string `validate:"required,len=6,numeric"`
	Password string `validate:"required,min=8,max=32"`
}

func (s *AuthService) ResetPassword(ctx context.Context, input ResetPasswordInput) error {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := checkInput(input); err != nil {
		return err
	}
	if err := checkPasswordStrength(input.Password); err != nil {
		return err
	}

	tokenHash := hashCode(input.Code)
	token, err := s.repos.PasswordResetToken.GetByHash(ctx, input.Email, tokenHash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrInvalidCode
		}
		return err
	}

	if token.Expires.Before(time.Now()) {
		if err := s.repos.PasswordResetToken.Delete(ctx, token.UserID, tokenHash); err != nil {
			return err
		}
		return domain.ErrCodeExpired
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.repos.Tx.InTx(ctx, func(tx *repository.Repositories) error {
		if err := tx.User.UpdatePassword(ctx, token.UserID, string(hashed)); err != nil {
			return err
		}
		return tx.PasswordResetToken.Delete(ctx, token.UserID, tokenHash)
	})
}

func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, current, newPassword string) error {
	user, err := s.repos.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return ErrInvalidCredentials
	}

	if len(newPassword) < 8 || len(newPassword) > 32 {
		return &domain.ValidationError{Field: "Password", Reason: "must be 8-32 characters"}
	}
	if err := checkPasswordStrength(newPassword); err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repos.User.UpdatePassword(ctx, userID, string(hashed))
}

func (s *AuthService) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.repos.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetProfileID resolves the authenticated user to their profile. Every
// domain mutation goes through this before touching owned rows.
func (s *AuthService) GetProfileID(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	profile, err := s.repos.Profile.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, domain.ErrNoProfile
		}
		return uuid.Nil, err
	}
	return profile.ID, nil
}

func (s *AuthService) generateAccessToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"sub": user.ID.String(),
		"exp": time.Now().Add(time.Duration(s.cfg.JWTExpirationHours) * time.Hour).Unix(),
		"iat": time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) ValidateToken(tokenString string) (*jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return &claims, nil
	}

	return nil, errors.New("invalid token")
}

func (s *AuthService) sendVerificationEmail(ctx context.Context, email, code string) {
	s.sendMail(ctx, email, "Your Email Verification Code", verificationEmailHTML(code))
}

func (s *AuthService) sendMail(ctx context.Context, to, subject, html string) {
	if err := s.mailer.Send(ctx, mail.Message{To: to, Subject: subject, HTML: html}); err != nil {
		log.Printf("ERROR [AuthService] failed to send %q to %s: %v", subject, to, err)
	}
}

func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func hashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

func checkPasswordStrength(password string) error {
	var hasLetter, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}
	if !hasLetter || !hasDigit || !hasSpecial {
		return &domain.ValidationError{
			Field:  "Password",
			Reason: "must contain a letter, a digit and a special character",
		}
	}
	return nil
}

func verificationEmailHTML(code string) string {
	return fmt.Sprintf(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h1 style="text-align: center;">Verify your email address</h1>
  <p>Thank you for signing up! Please use the verification code below:</p>
  <div style="text-align: center; margin: 30px 0;">
    <div style="font-size: 32px; letter-spacing: 5px; font-weight: bold;">%s</div>
  </div>
  <p>This code will expire in 1 hour.</p>
  <p>If you didn't create an account, you can safely ignore this email.</p>
</div>`, code)
}

func resetEmailHTML(code string) string {
	return fmt.Sprintf(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h1 style="text-align: center;">Reset your password</h1>
  <p>You are receiving this email because you requested a password reset.</p>
  <div style="text-align: center; margin: 30px 0;">
    <div style="font-size: 32px; letter-spacing: 5px; font-weight: bold;">%s</div>
  </div>
  <p>If you didn't request a password reset, you can safely ignore this email.</p>
  <p>This code will expire in 1 hour.</p>
</div>`, code)
}
