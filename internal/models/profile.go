package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Profile holds the personal attributes of exactly one user. Avatar stores
// the object-storage key, not a URL; handlers resolve it on the way out.
type Profile struct {
	ID          uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	FirstName   string         `gorm:"size:100;not null" json:"first_name"`
	LastName    string         `gorm:"size:100;not null" json:"last_name"`
	Gender      string         `gorm:"size:10" json:"gender"`
	DateOfBirth datatypes.Date `json:"date_of_birth"`
	Info        string         `gorm:"type:text" json:"info"`
	Avatar      string         `gorm:"size:512" json:"-"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	User        User           `gorm:"foreignKey:UserID" json:"-"`
}
