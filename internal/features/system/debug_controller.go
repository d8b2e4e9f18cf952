package system

import (
	"go-agrofleet/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type DebugController struct{}

func NewDebugController() *DebugController {
	return &DebugController{}
}

// GetCurrentUser godoc
// @Summary      Get current user info
// @Description  Get the current user's id and roles from the JWT
// @Tags         debug
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/debug/me [get]
func (c *DebugController) GetCurrentUser(ctx *fiber.Ctx) error {
	return ctx.JSON(fiber.Map{
		"user_id": middleware.CurrentUserID(ctx),
		"roles":   ctx.Locals("roles"),
	})
}
