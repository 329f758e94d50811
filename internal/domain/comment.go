package domain

import (
	"time"

	"github.com/google/uuid"
)

// Comment nesting is one level deep: ParentID, when set, must reference a
// top-level comment on the same notice. The schema itself would permit deeper
// chains; the single level is a product constraint enforced at write time.
type Comment struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Text      string     `json:"text" gorm:"not null"`
	AuthorID  uuid.UUID  `json:"authorId" gorm:"type:uuid;not null;index"`
	NoticeID  uuid.UUID  `json:"noticeId" gorm:"type:uuid;not null;index"`
	ParentID  *uuid.UUID `json:"parentId" gorm:"type:uuid"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`

	Author *Profile `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
}
