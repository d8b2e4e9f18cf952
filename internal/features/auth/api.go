package auth

import (
	"go-agrofleet/internal/config"
	"go-agrofleet/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AuthApi struct {
	controller *AuthController
	config     *config.Config
}

func NewAuthApi(controller *AuthController, config *config.Config) *AuthApi {
	return &AuthApi{
		controller: controller,
		config:     config,
	}
}

// Setup registers all auth-related routes
func (h *AuthApi) Setup(app *fiber.App) {
	app.Post("/api/login", h.controller.Login)
	app.Post("/api/register",
		middleware.AuthMiddleware(h.config.SkipAuth),
		middleware.RequireRole(middleware.RoleAdmin),
		h.controller.Register,
	)
}
