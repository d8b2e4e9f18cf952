package cron_feature

import (
	"go-agrofleet/internal/config"
	"go-agrofleet/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type CronApi struct {
	cronController *CronController
	config         *config.Config
}

func NewCronApi(cronController *CronController, config *config.Config) *CronApi {
	return &CronApi{
		cronController: cronController,
		config:         config,
	}
}

func (h *CronApi) Setup(app *fiber.App) {
	cronJobs := app.Group("/api/cron-jobs",
		middleware.AuthMiddleware(h.config.SkipAuth),
		middleware.RequireRole(middleware.RoleAdmin),
	)

	cronJobs.Get("/", h.cronController.ListCronJobs)
	cronJobs.Get("/:name", h.cronController.GetCronJob)
	cronJobs.Post("/:name/execute", h.cronController.ExecuteCronJob)
	cronJobs.Get("/:name/logs", h.cronController.GetCronJobLogs)
}
