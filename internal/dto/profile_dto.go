package dto

import (
	"github.com/google/uuid"
)

// ProfileCreateRequest is parsed from multipart form fields; the avatar file
// itself is read by the handler.
type ProfileCreateRequest struct {
	FirstName   string `form:"first_name" validate:"required"`
	LastName    string `form:"last_name" validate:"required"`
	Gender      string `form:"gender" validate:"omitempty,oneof=man woman"`
	DateOfBirth string `form:"date_of_birth" validate:"required,datetime=2006-01-02"`
	Info        string `form:"info"`
}

func (r *ProfileCreateRequest) Validate() error {
	return Validate(r)
}

type ProfileResponse struct {
	ID          uint      `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Gender      string    `json:"gender"`
	DateOfBirth string    `json:"date_of_birth"`
	Info        string    `json:"info"`
	Avatar      string    `json:"avatar"`
}
