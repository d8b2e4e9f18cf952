package import_feature

import (
	"go-agrofleet/internal/config"
	"go-agrofleet/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ImportApi struct {
	ImportController *ImportController
	Config           *config.Config
}

func NewImportApi(importController *ImportController, config *config.Config) *ImportApi {
	return &ImportApi{
		ImportController: importController,
		Config:           config,
	}
}

func (api *ImportApi) Setup(app *fiber.App) {
	group := app.Group("/api/import",
		middleware.AuthMiddleware(api.Config.SkipAuth),
		middleware.RequireRole(middleware.RoleAdmin, middleware.RoleMechanic),
	)

	group.Post("/preview", api.ImportController.UploadAndPreview)
	group.Post("/jobs", api.ImportController.CreateImportJob)
	group.Get("/jobs", api.ImportController.ListImportJobs)
	group.Get("/jobs/:id", api.ImportController.GetImportJob)
}
