package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/kinohub/kinohub/internal/config"
	"github.com/kinohub/kinohub/internal/handlers"
	"github.com/kinohub/kinohub/internal/middleware"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	movieHandler *handlers.MovieHandler,
	profileHandler *handlers.ProfileHandler,
	cartHandler *handlers.CartHandler,
) {
	// General rate limiter: 60 req/min per IP
	app.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	app.Get("/health", healthHandler.Check)

	// Accounts — public, with a stricter rate limit
	accounts := app.Group("/accounts")
	accounts.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	accounts.Post("/register/", authHandler.Register)
	accounts.Post("/activate/", authHandler.Activate)
	accounts.Post("/login/", authHandler.Login)
	accounts.Post("/refresh/", authHandler.Refresh)
	accounts.Post("/password-reset/request/", authHandler.RequestPasswordReset)
	accounts.Post("/password-reset/complete/", authHandler.ConfirmPasswordReset)
	app.Post("/accounts/logout/", middleware.JWTProtected(cfg), authHandler.Logout)

	// Catalog — reads are public, writes need a moderator or admin
	app.Get("/movies/", movieHandler.List)
	app.Get("/movies/:id/", movieHandler.Get)
	app.Get("/genres/", movieHandler.ListGenres)

	moderator := []fiber.Handler{middleware.JWTProtected(cfg), middleware.ModeratorRequired(db, cfg)}
	app.Post("/movies/", append(moderator, movieHandler.Create)...)
	app.Patch("/movies/:id/", append(moderator, movieHandler.Update)...)
	app.Delete("/movies/:id/", append(moderator, movieHandler.Delete)...)

	// Profiles — bearer token; ownership enforced in the handler
	app.Post("/profiles/users/:user_id/profile/", middleware.JWTProtected(cfg), profileHandler.Create)

	// Cart — always the authenticated user's own
	cart := app.Group("/cart", middleware.JWTProtected(cfg))
	cart.Get("/", cartHandler.Get)
	cart.Post("/items/", cartHandler.AddItem)
	cart.Delete("/items/:movie_id/", cartHandler.RemoveItem)
}
