package audit

import (
	"go-agrofleet/internal/config"
	"go-agrofleet/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AuditApi struct {
	controller *AuditController
	config     *config.Config
}

func NewAuditApi(controller *AuditController, config *config.Config) *AuditApi {
	return &AuditApi{
		controller: controller,
		config:     config,
	}
}

func (h *AuditApi) Setup(app *fiber.App) {
	audit := app.Group("/api/audit-logs",
		middleware.AuthMiddleware(h.config.SkipAuth),
		middleware.RequireRole(middleware.RoleAdmin, middleware.RoleMechanic),
	)

	audit.Get("/", h.controller.ListLogs)
}
