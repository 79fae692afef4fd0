package dto

import (
	"time"

	"github.com/kinohub/kinohub/internal/models"
)

type AddCartItemRequest struct {
	MovieID uint `json:"movie_id" validate:"required"`
}

type CartItemResponse struct {
	ID      uint          `json:"id"`
	Movie   MovieListItem `json:"movie"`
	AddedAt time.Time     `json:"added_at"`
}

type CartResponse struct {
	ID    uint               `json:"id"`
	Items []CartItemResponse `json:"items"`
}

// NewCartResponse projects a cart whose items carry preloaded movies.
func NewCartResponse(cart *models.Cart) CartResponse {
	items := make([]CartItemResponse, len(cart.Items))
	for i := range cart.Items {
		item := &cart.Items[i]
		items[i] = CartItemResponse{
			ID:      item.ID,
			Movie:   NewMovieListItem(&item.Movie),
			AddedAt: item.AddedAt,
		}
	}
	return CartResponse{ID: cart.ID, Items: items}
}
