package services

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/kinohub/kinohub/internal/models"
	"github.com/kinohub/kinohub/internal/notifications"
	"gorm.io/gorm"
)

var (
	ErrCartItemExists   = errors.New("movie is already in the cart")
	ErrCartItemNotFound = errors.New("movie is not in the cart")
)

type CartService struct {
	db     *gorm.DB
	mailer notifications.EmailSender
}

func NewCartService(db *gorm.DB, mailer notifications.EmailSender) *CartService {
	return &CartService{db: db, mailer: mailer}
}

// Get returns the user's cart with item movies preloaded, creating the cart
// on first use.
func (s *CartService) Get(userID uuid.UUID) (*models.Cart, error) {
	cart, err := s.getOrCreate(userID)
	if err != nil {
		return nil, err
	}

	var loaded models.Cart
	err = s.db.
		Preload("Items.Movie.Genres").
		Preload("Items.Movie.Directors").
		Preload("Items.Movie.Stars").
		First(&loaded, cart.ID).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return &loaded, nil
}

// AddItem puts a movie into the user's cart. A movie can appear in a cart at
// most once.
func (s *CartService) AddItem(userID uuid.UUID, movieID uint) (*models.Cart, error) {
	var movie models.Movie
	if err := s.db.First(&movie, movieID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMovieNotFound
		}
		return nil, fmt.Errorf("failed to fetch movie: %w", err)
	}

	cart, err := s.getOrCreate(userID)
	if err != nil {
		return nil, err
	}

	var existing models.CartItem
	if err := s.db.Where("cart_id = ? AND movie_id = ?", cart.ID, movieID).First(&existing).Error; err == nil {
		return nil, ErrCartItemExists
	}

	item := models.CartItem{CartID: cart.ID, MovieID: movieID}
	if err := s.db.Create(&item).Error; err != nil {
		// Unique (cart_id, movie_id) lost a race.
		return nil, ErrCartItemExists
	}

	return s.Get(userID)
}

// RemoveItem deletes a movie from the cart and sends a removal notice.
func (s *CartService) RemoveItem(userID uuid.UUID, movieID uint) error {
	var cart models.Cart
	if err := s.db.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return ErrCartItemNotFound
	}

	var item models.CartItem
	if err := s.db.Preload("Movie").Where("cart_id = ? AND movie_id = ?", cart.ID, movieID).First(&item).Error; err != nil {
		return ErrCartItemNotFound
	}

	if err := s.db.Delete(&item).Error; err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err == nil {
		if err := s.mailer.SendCartItemRemoved(user.Email, item.Movie.Name, cart.ID); err != nil {
			slog.Error("cart removal email failed", "action", "cart_remove", "error", err.Error())
		}
	}
	return nil
}

func (s *CartService) getOrCreate(userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := s.db.Where("user_id = ?", userID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cart = models.Cart{UserID: userID}
		if err := s.db.Create(&cart).Error; err != nil {
			return nil, fmt.Errorf("failed to create cart: %w", err)
		}
		return &cart, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cart: %w", err)
	}
	return &cart, nil
}
