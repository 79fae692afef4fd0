package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/kinohub/kinohub/internal/config"
	"github.com/kinohub/kinohub/internal/dto"
	"github.com/kinohub/kinohub/internal/models"
	"gorm.io/gorm"
)

// ModeratorRequired gates catalog writes. The role claim is checked first;
// the DB role is the fallback so a role change takes effect before the token
// expires.
func ModeratorRequired(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := CurrentUserID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		role := CurrentRole(c)
		if role == models.RoleModerator || role == models.RoleAdmin {
			return c.Next()
		}

		var user models.User
		if err := db.First(&user, "id = ?", userID).Error; err == nil && user.IsModerator() {
			return c.Next()
		}

		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Moderator access required",
		})
	}
}
