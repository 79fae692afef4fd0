package handlers

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/kinohub/kinohub/internal/dto"
	"github.com/kinohub/kinohub/internal/middleware"
	"github.com/kinohub/kinohub/internal/services"
)

type ProfileHandler struct {
	profileService *services.ProfileService
}

func NewProfileHandler(profileService *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// Create handles POST /profiles/users/:user_id/profile/ as a multipart form
// with an avatar file. The requester must be the profile owner or hold a
// moderator/admin role.
func (h *ProfileHandler) Create(c *fiber.Ctx) error {
	targetID, err := uuid.Parse(c.Params("user_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user ID",
		})
	}

	requesterID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	allowed, err := h.profileService.RequesterMayEdit(requesterID, targetID)
	if err != nil || !allowed {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "You don't have permission to edit this profile.",
		})
	}

	req := dto.ProfileCreateRequest{
		FirstName:   c.FormValue("first_name"),
		LastName:    c.FormValue("last_name"),
		Gender:      c.FormValue("gender"),
		DateOfBirth: c.FormValue("date_of_birth"),
		Info:        c.FormValue("info"),
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Avatar file is required",
		})
	}
	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to read avatar file",
		})
	}
	defer file.Close()
	avatarData, err := io.ReadAll(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to read avatar file",
		})
	}

	resp, err := h.profileService.Create(
		c.Context(), targetID, &req,
		fileHeader.Filename, avatarData, fileHeader.Header.Get("Content-Type"),
	)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserInactive):
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "User not found or not active.",
			})
		case errors.Is(err, services.ErrProfileExists):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "User already has a profile.",
			})
		case errors.Is(err, services.ErrAvatarUpload):
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to upload avatar. Please try again later.",
			})
		default:
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}
