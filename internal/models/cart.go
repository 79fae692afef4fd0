package models

import (
	"time"

	"github.com/google/uuid"
)

// Cart is created lazily on first use; one per user.
type Cart struct {
	ID     uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Items  []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	User   User       `gorm:"foreignKey:UserID" json:"-"`
}

// CartItem links a cart to a movie; a movie appears at most once per cart.
type CartItem struct {
	ID      uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID  uint      `gorm:"not null;uniqueIndex:uq_cart_items_cart_movie" json:"cart_id"`
	MovieID uint      `gorm:"not null;uniqueIndex:uq_cart_items_cart_movie" json:"movie_id"`
	AddedAt time.Time `gorm:"autoCreateTime" json:"added_at"`
	Movie   Movie     `gorm:"foreignKey:MovieID" json:"movie"`
}
