package domain

import (
	"time"

	"github.com/google/uuid"
)

// VerificationToken holds the SHA-256 hash of a 6-digit email verification
// code. At most one live row per identifier; the plaintext code is never
// persisted.
type VerificationToken struct {
	Identifier string    `json:"identifier" gorm:"primaryKey"`
	Token      string    `json:"-" gorm:"not null"`
	Expires    time.Time `json:"expires" gorm:"not null"`
	UserID     uuid.UUID `json:"userId" gorm:"type:uuid;not null"`
	CreatedAt  time.Time `json:"createdAt"`
}

// PasswordResetToken mirrors VerificationToken but is keyed by user id.
type PasswordResetToken struct {
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid;primaryKey"`
	Token     string    `json:"-" gorm:"not null"`
	Expires   time.Time `json:"expires" gorm:"not null"`
	Email     string    `json:"email" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
}
