package inventory

import (
	"go-agrofleet/internal/config"
	"go-agrofleet/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type InventoryApi struct {
	controller *InventoryController
	config     *config.Config
}

func NewInventoryApi(controller *InventoryController, config *config.Config) *InventoryApi {
	return &InventoryApi{controller: controller, config: config}
}

// Setup registers inventory routes
func (h *InventoryApi) Setup(app *fiber.App) {
	inv := app.Group("/api/inventory", middleware.AuthMiddleware(h.config.SkipAuth))
	write := middleware.RequireRole(middleware.RoleAdmin, middleware.RoleMechanic)

	inv.Get("/:resource", h.controller.ListItems)
	inv.Post("/:resource", write, h.controller.CreateItem)
	inv.Get("/:resource/options", h.controller.GetOptions)
	inv.Get("/:resource/schema", h.controller.GetSchema)
	inv.Get("/:resource/:id", h.controller.GetItem)
	inv.Put("/:resource/:id", write, h.controller.UpdateItem)
	inv.Delete("/:resource/:id", write, h.controller.DeleteItem)
}
