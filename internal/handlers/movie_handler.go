package handlers

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/kinohub/kinohub/internal/dto"
	"github.com/kinohub/kinohub/internal/services"
)

type MovieHandler struct {
	movieService *services.MovieService
}

func NewMovieHandler(movieService *services.MovieService) *MovieHandler {
	return &MovieHandler{movieService: movieService}
}

// List handles GET /movies/ with filtering, search, sorting and pagination.
func (h *MovieHandler) List(c *fiber.Ctx) error {
	params := dto.MovieListParams{
		Page:     c.QueryInt("page", 1),
		PerPage:  c.QueryInt("per_page", 10),
		Genre:    c.Query("genre"),
		Director: c.Query("director"),
		Star:     c.Query("star"),
		Search:   c.Query("search"),
		SortBy:   c.Query("sort_by"),
	}
	if v := c.Query("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.DetailResponse{Detail: "Invalid 'year' parameter."})
		}
		params.Year = &year
	}
	if v := c.Query("min_imdb"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.DetailResponse{Detail: "Invalid 'min_imdb' parameter."})
		}
		params.MinIMDb = &f
	}
	if v := c.Query("max_imdb"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.DetailResponse{Detail: "Invalid 'max_imdb' parameter."})
		}
		params.MaxIMDb = &f
	}
	if err := params.Validate(); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.DetailResponse{Detail: err.Error()})
	}

	resp, err := h.movieService.List(&params)
	if err != nil {
		if errors.Is(err, services.ErrNoMovies) {
			return c.Status(fiber.StatusNotFound).JSON(dto.DetailResponse{Detail: "No movies found."})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.DetailResponse{Detail: "Internal server error."})
	}

	return c.JSON(resp)
}

// Create handles POST /movies/ (moderator/admin only).
func (h *MovieHandler) Create(c *fiber.Ctx) error {
	var req dto.MovieCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.DetailResponse{Detail: "Invalid request body."})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.DetailResponse{Detail: err.Error()})
	}

	movie, err := h.movieService.Create(&req)
	if err != nil {
		if errors.Is(err, services.ErrMovieExists) {
			return c.Status(fiber.StatusConflict).JSON(dto.DetailResponse{
				Detail: fmt.Sprintf(
					"A movie with the name '%s' and release year '%d' already exists.",
					req.Name, req.Year,
				),
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.DetailResponse{Detail: "Invalid input data."})
	}

	return c.Status(fiber.StatusCreated).JSON(dto.NewMovieDetail(movie))
}

// Get handles GET /movies/:id/.
func (h *MovieHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(fiber.StatusNotFound).JSON(dto.DetailResponse{Detail: "Movie with the given ID was not found."})
	}

	movie, err := h.movieService.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, services.ErrMovieNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.DetailResponse{Detail: "Movie with the given ID was not found."})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.DetailResponse{Detail: "Internal server error."})
	}

	return c.JSON(dto.NewMovieDetail(movie))
}

// Update handles PATCH /movies/:id/ with partial-field semantics.
func (h *MovieHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(fiber.StatusNotFound).JSON(dto.DetailResponse{Detail: "Movie with the given ID was not found."})
	}

	var req dto.MovieUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.DetailResponse{Detail: "Invalid request body."})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.DetailResponse{Detail: err.Error()})
	}

	if err := h.movieService.Update(uint(id), &req); err != nil {
		if errors.Is(err, services.ErrMovieNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.DetailResponse{Detail: "Movie with the given ID was not found."})
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.DetailResponse{Detail: "Invalid input data."})
	}

	return c.JSON(dto.DetailResponse{Detail: "Movie updated successfully."})
}

// Delete handles DELETE /movies/:id/.
func (h *MovieHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(fiber.StatusNotFound).JSON(dto.DetailResponse{Detail: "Movie with the given ID was not found."})
	}

	if err := h.movieService.Delete(uint(id)); err != nil {
		if errors.Is(err, services.ErrMovieNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.DetailResponse{Detail: "Movie with the given ID was not found."})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.DetailResponse{Detail: "Internal server error."})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ListGenres handles GET /genres/.
func (h *MovieHandler) ListGenres(c *fiber.Ctx) error {
	genres, err := h.movieService.ListGenres()
	if err != nil {
		if errors.Is(err, services.ErrNoGenres) {
			return c.Status(fiber.StatusNotFound).JSON(dto.DetailResponse{Detail: "No genres found."})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.DetailResponse{Detail: "Internal server error."})
	}

	return c.JSON(genres)
}
