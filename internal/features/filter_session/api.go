package filter_session

import (
	"go-agrofleet/internal/config"
	"go-agrofleet/internal/middleware"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type FilterSessionApi struct {
	controller *FilterSessionController
	config     *config.Config
}

func NewFilterSessionApi(controller *FilterSessionController, config *config.Config) *FilterSessionApi {
	return &FilterSessionApi{controller: controller, config: config}
}

// Setup registers filter session routes
func (h *FilterSessionApi) Setup(app *fiber.App) {
	sessions := app.Group("/api/filters/sessions", middleware.AuthMiddleware(h.config.SkipAuth))

	sessions.Post("/", h.controller.CreateSession)
	sessions.Get("/:id", h.controller.GetSession)
	sessions.Delete("/:id", h.controller.DeleteSession)
	sessions.Patch("/:id/fields", h.controller.SetFields)
	sessions.Post("/:id/apply", h.controller.Apply)
	sessions.Delete("/:id/tokens/:tokenId", h.controller.RemoveToken)
	sessions.Post("/:id/clear", h.controller.Clear)
	sessions.Post("/:id/options", h.controller.ReloadOptions)
	sessions.Get("/:id/results", h.controller.GetResults)
	sessions.Get("/:id/ws", h.controller.RequireUpgrade, websocket.New(h.controller.Stream))
}
