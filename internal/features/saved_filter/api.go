package saved_filter

import (
	"go-agrofleet/internal/config"
	"go-agrofleet/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type SavedFilterApi struct {
	FilterController *SavedFilterController
	Config           *config.Config
}

func NewSavedFilterApi(filterController *SavedFilterController, config *config.Config) *SavedFilterApi {
	return &SavedFilterApi{
		FilterController: filterController,
		Config:           config,
	}
}

func (api *SavedFilterApi) Setup(app *fiber.App) {
	group := app.Group("/api/filters/saved", middleware.AuthMiddleware(api.Config.SkipAuth))

	group.Post("/", api.FilterController.CreateFilter)
	group.Get("/", api.FilterController.ListUserFilters)
	group.Get("/public", api.FilterController.ListPublicFilters)
	group.Get("/:id", api.FilterController.GetFilter)
	group.Put("/:id", api.FilterController.UpdateFilter)
	group.Delete("/:id", api.FilterController.DeleteFilter)
	group.Post("/:id/apply/:sessionId", api.FilterController.ApplyFilter)
}
