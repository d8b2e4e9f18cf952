package system

import (
	"context"
	"sort"
	"time"

	"go-agrofleet/internal/database"

	"github.com/gofiber/fiber/v2"
)

// Check probes one backing store
type Check func(ctx context.Context) error

type HealthController struct {
	checks map[string]Check
}

// NewHealthController probes Mongo, and Postgres when it is configured
func NewHealthController(mongodb *database.MongodbDB, pg *database.PostgresDB) *HealthController {
	checks := map[string]Check{}
	if mongodb != nil && mongodb.DB != nil {
		checks["mongodb"] = func(ctx context.Context) error {
			return mongodb.DB.Client().Ping(ctx, nil)
		}
	}
	if pg != nil && pg.DB != nil {
		checks["postgres"] = pg.DB.PingContext
	}
	return &HealthController{checks: checks}
}

// HealthCheck godoc
// @Summary      Health Check
// @Description  Check if the server is up
// @Tags         health
// @Produce      plain
// @Success      200  {string}  string  "OK"
// @Router       /health [get]
func (h *HealthController) HealthCheck(c *fiber.Ctx) error {
	return c.SendString("OK")
}

// Ready godoc
// @Summary      Readiness Check
// @Description  Ping every configured store
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /health/ready [get]
func (h *HealthController) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := fiber.StatusOK
	stores := fiber.Map{}
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			status = fiber.StatusServiceUnavailable
			stores[name] = err.Error()
			continue
		}
		stores[name] = "ok"
	}
	return c.Status(status).JSON(fiber.Map{"ready": status == fiber.StatusOK, "stores": stores})
}
