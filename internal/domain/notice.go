package domain

import (
	"time"

	"github.com/google/uuid"
)

type NoticeType string

const (
	NoticeTypeOffer   NoticeType = "Offer"
	NoticeTypeRequest NoticeType = "Request"
)

func (t NoticeType) IsValid() bool {
	return t == NoticeTypeOffer || t == NoticeTypeRequest
}

type NoticeStatus string

const (
	NoticeStatusDraft     NoticeStatus = "Draft"
	NoticeStatusPublished NoticeStatus = "Published"
)

func (s NoticeStatus) IsValid() bool {
	return s == NoticeStatusDraft || s == NoticeStatusPublished
}

type Category struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name      string    `json:"name" gorm:"not null"`
	Slug      string    `json:"slug" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Notice is a single classified listing. LikeCount and CommentCount are
// denormalized and must always equal the number of NoticeLike and Comment
// rows for the notice; they are only ever changed together with those rows
// inside one transaction.
type Notice struct {
	ID           uuid.UUID    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	AuthorID     uuid.UUID    `json:"authorId" gorm:"type:uuid;not null;index"`
	CategoryID   uuid.UUID    `json:"categoryId" gorm:"type:uuid;not null;index"`
	Slug         string       `json:"slug" gorm:"uniqueIndex;not null"`
	Title        string       `json:"title" gorm:"not null"`
	Text         string       `json:"text" gorm:"not null"`
	Price        int64        `json:"price" gorm:"not null;default:0"`
	Type         NoticeType   `json:"type" gorm:"not null"`
	Status       NoticeStatus `json:"status" gorm:"not null;default:'Draft'"`
	Image        string       `json:"image"`
	LikeCount    int          `json:"likeCount" gorm:"not null;default:0"`
	CommentCount int          `json:"commentCount" gorm:"not null;default:0"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`

	Author   *Profile      `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	Category *Category     `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Images   []NoticeImage `json:"images,omitempty" gorm:"foreignKey:NoticeID"`
}

// NoticeImage references an object in the external image store. FileID is
// required to request deletion from that store after the row is gone.
type NoticeImage struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	URL      string    `json:"url" gorm:"not null"`
	FileID   string    `json:"fileId" gorm:"not null"`
	NoticeID uuid.UUID `json:"noticeId" gorm:"type:uuid;not null;index;constraint:OnDelete:CASCADE"`
}

// NoticeLike rows are keyed by (notice, liker); the composite primary key
// makes a duplicate like a constraint violation rather than silent counter
// drift.
type NoticeLike struct {
	NoticeID        uuid.UUID `json:"noticeId" gorm:"type:uuid;primaryKey"`
	SourceProfileID uuid.UUID `json:"sourceProfileId" gorm:"type:uuid;primaryKey"`
	CreatedAt       time.Time `json:"createdAt"`
}
