package export

import (
	"go-agrofleet/internal/config"
	"go-agrofleet/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ExportApi struct {
	ExportController *ExportController
	Config           *config.Config
}

func NewExportApi(exportController *ExportController, config *config.Config) *ExportApi {
	return &ExportApi{ExportController: exportController, Config: config}
}

func (api *ExportApi) Setup(app *fiber.App) {
	group := app.Group("/api/export", middleware.AuthMiddleware(api.Config.SkipAuth))

	group.Get("/sessions/:id", api.ExportController.ExportSession)
	group.Get("/:resource", api.ExportController.ExportResource)
}
