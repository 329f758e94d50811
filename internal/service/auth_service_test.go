package service_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/aldis-z/notice-board/internal/domain"
	"github.com/aldis-z/notice-board/internal/service"
	"github.com/aldis-z/notice-board/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var codePattern = regexp.MustCompile(`\d{6}`)

func lastMailedCode(t *testing.T, ts *testutil.TestServer) string {
	t.Helper()
	code := codePattern.FindString(ts.Mail.Last(t).HTML)
	require.NotEmpty(t, code, "no 6-digit code in mail body")
	return code
}

func TestAuthService_SignUp(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ctx := context.Background()

	t.Run("creates user and profile together", func(t *testing.T) {
		ts.DB.Truncate(t)

		result, err := ts.Services.Auth.SignUp(ctx, service.SignUpInput{
			Email:    "New.Person@Example.com",
			Password: "sup3r-secret!",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, result.Message)

		// Email is normalized to lower case.
		user, err := ts.Repos.User.GetByEmail(ctx, "new.person@example.com")
		require.NoError(t, err)
		assert.Nil(t, user.EmailVerified)

		profile, err := ts.Repos.Profile.GetByUserID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "new.person", profile.Name)
		assert.NotEmpty(t, profile.Slug)

		// A verification code was mailed.
		assert.Equal(t, "new.person@example.com", ts.Mail.Last(t).To)
	})

	t.Run("duplicate email looks like a fresh sign-up", func(t *testing.T) {
		ts.DB.Truncate(t)
		existing, _, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)

		mailsBefore := len(ts.Mail.Sent)
		result, err := ts.Services.Auth.SignUp(ctx, service.SignUpInput{
			Email:    existing.Email,
			Password: "an0ther-secret!",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, result.Message)

		// No mail, no new rows.
		assert.Len(t, ts.Mail.Sent, mailsBefore)
		user, err := ts.Repos.User.GetByEmail(ctx, existing.Email)
		require.NoError(t, err)
		assert.Equal(t, existing.ID, user.ID)
	})

	t.Run("weak passwords are rejected", func(t *testing.T) {
		ts.DB.Truncate(t)

		tests := []struct {
			name     string
			password string
		}{
			{"too short", "a1!"},
			{"no digit", "password!!"},
			{"no letter", "12345678!"},
			{"no special", "password123"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := ts.Services.Auth.SignUp(ctx, service.SignUpInput{
					Email:    "weak@example.com",
					Password: tt.password,
				})
				assert.ErrorIs(t, err, domain.ErrValidation)
			})
		}
	})
}

func TestAuthService_SignIn(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ctx := context.Background()

	ts.DB.Truncate(t)
	user, profile, password := testutil.NewUserBuilder().Build(t, ts.DB.DB)

	t.Run("valid credentials", func(t *testing.T) {
		result, err := ts.Services.Auth.SignIn(ctx, service.SignInInput{
			Email:    user.Email,
			Password: password,
		})
		require.NoError(t, err)
		assert.Equal(t, user.ID, result.User.ID)
		assert.Equal(t, profile.ID, result.Profile.ID)
		assert.NotEmpty(t, result.AccessToken)

		claims, err := ts.Services.Auth.ValidateToken(result.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID.String(), (*claims)["sub"])
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := ts.Services.Auth.SignIn(ctx, service.SignInInput{
			Email:    user.Email,
			Password: "wrong-password1!",
		})
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := ts.Services.Auth.SignIn(ctx, service.SignInInput{
			Email:    "nobody@example.com",
			Password: password,
		})
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})
}

func TestAuthService_VerifyEmail(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ctx := context.Background()

	t.Run("code is single use", func(t *testing.T) {
		ts.DB.Truncate(t)
		user, _, _ := testutil.NewUserBuilder().Unverified().Build(t, ts.DB.DB)

		code, err := ts.Services.Auth.IssueVerificationCode(ctx, user.ID, user.Email)
		require.NoError(t, err)

		require.NoError(t, ts.Services.Auth.VerifyEmail(ctx, user.Email, code))

		verified, err := ts.Repos.User.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.NotNil(t, verified.EmailVerified)

		// Second use of the same code fails.
		err = ts.Services.Auth.VerifyEmail(ctx, user.Email, code)
		assert.ErrorIs(t, err, domain.ErrInvalidCode)
	})

	t.Run("wrong code", func(t *testing.T) {
		ts.DB.Truncate(t)
		user, _, _ := testutil.NewUserBuilder().Unverified().Build(t, ts.DB.DB)

		_, err := ts.Services.Auth.IssueVerificationCode(ctx, user.ID, user.Email)
		require.NoError(t, err)

		err = ts.Services.Auth.VerifyEmail(ctx, user.Email, "000000")
		assert.ErrorIs(t, err, domain.ErrInvalidCode)
	})

	t.Run("expired code is consumed", func(t *testing.T) {
		ts.DB.Truncate(t)
		user, _, _ := testutil.NewUserBuilder().Unverified().Build(t, ts.DB.DB)

		code, err := ts.Services.Auth.IssueVerificationCode(ctx, user.ID, user.Email)
		require.NoError(t, err)

		require.NoError(t, ts.DB.DB.Model(&domain.VerificationToken{}).
			Where("identifier = ?", user.Email).
			Update("expires", time.Now().Add(-time.Minute)).Error)

		err = ts.Services.Auth.VerifyEmail(ctx, user.Email, code)
		assert.ErrorIs(t, err, domain.ErrCodeExpired)

		// The row is gone; a retry reports invalid, not expired.
		err = ts.Services.Auth.VerifyEmail(ctx, user.Email, code)
		assert.ErrorIs(t, err, domain.ErrInvalidCode)
	})
}

func TestAuthService_CodeRateLimit(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ctx := context.Background()

	ts.DB.Truncate(t)
	user, _, _ := testutil.NewUserBuilder().Unverified().Build(t, ts.DB.DB)

	_, err := ts.Services.Auth.IssueVerificationCode(ctx, user.ID, user.Email)
	require.NoError(t, err)

	_, err = ts.Services.Auth.IssueVerificationCode(ctx, user.ID, user.Email)
	require.ErrorIs(t, err, domain.ErrRateLimited)

	var rateLimited *domain.RateLimitedError
	require.ErrorAs(t, err, &rateLimited)
	assert.Greater(t, rateLimited.RetryAfter, 4*time.Minute)
	assert.LessOrEqual(t, rateLimited.RetryAfter, 5*time.Minute)

	// Aging the stored row past the window opens it up again.
	require.NoError(t, ts.DB.DB.Model(&domain.VerificationToken{}).
		Where("identifier = ?", user.Email).
		Update("created_at", time.Now().Add(-6*time.Minute)).Error)

	code, err := ts.Services.Auth.IssueVerificationCode(ctx, user.ID, user.Email)
	require.NoError(t, err)

	// A rate-limited attempt leaves the live code untouched, so the one
	// issued above still verifies.
	_, err = ts.Services.Auth.IssueVerificationCode(ctx, user.ID, user.Email)
	require.ErrorIs(t, err, domain.ErrRateLimited)
	assert.NoError(t, ts.Services.Auth.VerifyEmail(ctx, user.Email, code))
}

func TestAuthService_PasswordReset(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ctx := context.Background()

	t.Run("full reset flow", func(t *testing.T) {
		ts.DB.Truncate(t)
		user, _, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)

		require.NoError(t, ts.Services.Auth.RequestPasswordReset(ctx, user.Email))
		code := lastMailedCode(t, ts)

		err := ts.Services.Auth.ResetPassword(ctx, service.ResetPasswordInput{
			Email:    user.Email,
			Code:     code,
			Password: "brand-new-pass1!",
		})
		require.NoError(t, err)

		// New password works, the code is spent.
		_, err = ts.Services.Auth.SignIn(ctx, service.SignInInput{
			Email:    user.Email,
			Password: "brand-new-pass1!",
		})
		require.NoError(t, err)

		err = ts.Services.Auth.ResetPassword(ctx, service.ResetPasswordInput{
			Email:    user.Email,
			Code:     code,
			Password: "another-pass1!",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidCode)
	})

	t.Run("unknown email stays silent", func(t *testing.T) {
		ts.DB.Truncate(t)
		mailsBefore := len(ts.Mail.Sent)

		require.NoError(t, ts.Services.Auth.RequestPasswordReset(ctx, "ghost@example.com"))
		assert.Len(t, ts.Mail.Sent, mailsBefore)
	})
}

func TestAuthService_ChangePassword(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ctx := context.Background()

	ts.DB.Truncate(t)
	user, _, password := testutil.NewUserBuilder().Build(t, ts.DB.DB)

	err := ts.Services.Auth.ChangePassword(ctx, user.ID, "not-the-password1!", "whatever-new1!")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	require.NoError(t, ts.Services.Auth.ChangePassword(ctx, user.ID, password, "replacement-pw1!"))

	_, err = ts.Services.Auth.SignIn(ctx, service.SignInInput{
		Email:    user.Email,
		Password: "replacement-pw1!",
	})
	assert.NoError(t, err)
}
