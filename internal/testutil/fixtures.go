package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/aldis-z/notice-board/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ValidTitle pads a stub to the minimum accepted notice title length.
func ValidTitle(stub string) string {
	const min = 50
	if len(stub) >= min {
		return stub
	}
	return stub + " " + strings.Repeat("x", min-len(stub)-1)
}

// ValidText pads a stub to the minimum accepted notice text length.
func ValidText(stub string) string {
	const min = 50
	if len(stub) >= min {
		return stub
	}
	return stub + " " + strings.Repeat("y", min-len(stub)-1)
}

// UserBuilder creates test users with their profile using a builder pattern
type UserBuilder struct {
	email    string
	password string
	name     string
	verified bool
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	suffix := uuid.New().String()[:8]
	return &UserBuilder{
		email:    fmt.Sprintf("testuser_%s@example.com", suffix),
		password: "testpassword123!",
		name:     fmt.Sprintf("testuser_%s", suffix),
		verified: true,
	}
}

// WithEmail sets the email
func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

// WithPassword sets the password
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// WithName sets the profile display name
func (b *UserBuilder) WithName(name string) *UserBuilder {
	b.name = name
	return b
}

// Unverified leaves the email unverified
func (b *UserBuilder) Unverified() *UserBuilder {
	b.verified = false
	return b
}

// Build creates the user and profile in the database and returns them with
// the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, *domain.Profile, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        b.email,
		PasswordHash: string(hashedPassword),
	}
	if b.verified {
		now := time.Now()
		user.EmailVerified = &now
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	profile := &domain.Profile{
		ID:     uuid.New(),
		UserID: user.ID,
		Name:   b.name,
		Slug:   fmt.Sprintf("%s-%s", strings.ToLower(b.name), uuid.New().String()[:8]),
	}

	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("failed to create profile: %v", err)
	}

	return user, profile, b.password
}

// CreateCategory inserts a category row
func CreateCategory(t *testing.T, db *gorm.DB, name string) *domain.Category {
	t.Helper()

	category := &domain.Category{
		ID:   uuid.New(),
		Name: name,
		Slug: fmt.Sprintf("%s-%s", strings.ToLower(name), uuid.New().String()[:8]),
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create category: %v", err)
	}
	return category
}

// NoticeBuilder creates test notices with a builder pattern
type NoticeBuilder struct {
	author   *domain.Profile
	category *domain.Category
	title    string
	text     string
	price    int64
	kind     domain.NoticeType
	status   domain.NoticeStatus
}

// NewNoticeBuilder creates a new NoticeBuilder with default values
func NewNoticeBuilder(author *domain.Profile, category *domain.Category) *NoticeBuilder {
	return &NoticeBuilder{
		author:   author,
		category: category,
		title:    ValidTitle(fmt.Sprintf("Test notice %s", uuid.New().String()[:8])),
		text:     ValidText("Something is on offer here, come and get it"),
		price:    100,
		kind:     domain.NoticeTypeOffer,
		status:   domain.NoticeStatusPublished,
	}
}

// WithTitle sets the title
func (b *NoticeBuilder) WithTitle(title string) *NoticeBuilder {
	b.title = title
	return b
}

// WithStatus sets the status
func (b *NoticeBuilder) WithStatus(status domain.NoticeStatus) *NoticeBuilder {
	b.status = status
	return b
}

// WithType sets the notice type
func (b *NoticeBuilder) WithType(kind domain.NoticeType) *NoticeBuilder {
	b.kind = kind
	return b
}

// WithPrice sets the price
func (b *NoticeBuilder) WithPrice(price int64) *NoticeBuilder {
	b.price = price
	return b
}

// Build creates the notice in the database
func (b *NoticeBuilder) Build(t *testing.T, db *gorm.DB) *domain.Notice {
	t.Helper()

	notice := &domain.Notice{
		ID:         uuid.New(),
		AuthorID:   b.author.ID,
		CategoryID: b.category.ID,
		Slug:       fmt.Sprintf("test-notice-%s", uuid.New().String()[:8]),
		Title:      b.title,
		Text:       b.text,
		Price:      b.price,
		Type:       b.kind,
		Status:     b.status,
	}
	if err := db.Create(notice).Error; err != nil {
		t.Fatalf("failed to create notice: %v", err)
	}
	return notice
}

// CreateComment inserts a comment row
func CreateComment(t *testing.T, db *gorm.DB, notice *domain.Notice, author *domain.Profile, text string, parentID *uuid.UUID) *domain.Comment {
	t.Helper()

	comment := &domain.Comment{
		ID:       uuid.New(),
		Text:     text,
		AuthorID: author.ID,
		NoticeID: notice.ID,
		ParentID: parentID,
	}
	if err := db.Create(comment).Error; err != nil {
		t.Fatalf("failed to create comment: %v", err)
	}
	return comment
}
