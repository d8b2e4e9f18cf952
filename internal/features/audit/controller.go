package audit

import (
	"github.com/gofiber/fiber/v2"
)

type AuditController struct {
	Service AuditService
}

func NewAuditController(service AuditService) *AuditController {
	return &AuditController{Service: service}
}

// ListLogs godoc
// @Summary List audit logs
// @Description Change history of inventory items, newest first
// @Tags audit
// @Produce json
// @Param resource query string false "Resource"
// @Param record_id query string false "Item ID"
// @Param actor_id query string false "User ID"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {array} AuditLog
// @Router /api/audit-logs [get]
func (ctrl *AuditController) ListLogs(c *fiber.Ctx) error {
	page := int64(c.QueryInt("page", 1))
	limit := int64(c.QueryInt("limit", 20))

	filters := map[string]string{
		"resource":  c.Query("resource"),
		"record_id": c.Query("record_id"),
		"actor_id":  c.Query("actor_id"),
	}

	logs, err := ctrl.Service.ListLogs(c.UserContext(), filters, page, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(logs)
}
