package dto

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate runs struct-tag validation on any request DTO. Schema-level
// failures are surfaced before the request touches the database.
func Validate(req interface{}) error {
	return validate.Struct(req)
}

// ErrorResponse is the generic error envelope for account endpoints.
type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

// DetailResponse mirrors the catalog API's wire format: a single detail
// string for both errors and confirmations.
type DetailResponse struct {
	Detail string `json:"detail"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}

// maxMovieYear bounds the release year to next year at the latest.
func maxMovieYear() int {
	return time.Now().Year() + 1
}

func validateYear(year int) error {
	if max := maxMovieYear(); year > max {
		return fmt.Errorf("the year in 'year' cannot be greater than %d", max)
	}
	return nil
}
