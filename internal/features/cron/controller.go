package cron_feature

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
)

type CronController struct {
	Service CronService
}

func NewCronController(service CronService) *CronController {
	return &CronController{
		Service: service,
	}
}

// ListCronJobs godoc
// @Summary List cron jobs
// @Description List the maintenance jobs with their schedule and last run
// @Tags cron
// @Produce json
// @Success 200 {array} CronJob
// @Router /api/cron-jobs [get]
func (c *CronController) ListCronJobs(ctx *fiber.Ctx) error {
	return ctx.JSON(c.Service.ListCronJobs())
}

// GetCronJob godoc
// @Summary Get cron job
// @Tags cron
// @Produce json
// @Param name path string true "Job name"
// @Success 200 {object} CronJob
// @Failure 404 {object} map[string]interface{}
// @Router /api/cron-jobs/{name} [get]
func (c *CronController) GetCronJob(ctx *fiber.Ctx) error {
	job, err := c.Service.GetCronJob(ctx.Params("name"))
	if err != nil {
		return errorResponse(ctx, err)
	}
	return ctx.JSON(job)
}

// ExecuteCronJob godoc
// @Summary Execute cron job
// @Description Manually trigger a cron job execution
// @Tags cron
// @Produce json
// @Param name path string true "Job name"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/cron-jobs/{name}/execute [post]
func (c *CronController) ExecuteCronJob(ctx *fiber.Ctx) error {
	ctxt, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := c.Service.ExecuteCronJob(ctxt, ctx.Params("name")); err != nil {
		return errorResponse(ctx, err)
	}
	return ctx.JSON(fiber.Map{"message": "Cron job executed successfully"})
}

// GetCronJobLogs godoc
// @Summary Get cron job logs
// @Description Get execution logs for a cron job
// @Tags cron
// @Produce json
// @Param name path string true "Job name"
// @Param limit query int false "Max logs to return"
// @Success 200 {array} CronJobLog
// @Failure 404 {object} map[string]interface{}
// @Router /api/cron-jobs/{name}/logs [get]
func (c *CronController) GetCronJobLogs(ctx *fiber.Ctx) error {
	ctxt, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logs, err := c.Service.GetCronJobLogs(ctxt, ctx.Params("name"), ctx.QueryInt("limit", 50))
	if err != nil {
		return errorResponse(ctx, err)
	}
	return ctx.JSON(logs)
}

func errorResponse(ctx *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, ErrJobNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, ErrJobRunning):
		status = fiber.StatusConflict
	}
	return ctx.Status(status).JSON(fiber.Map{"error": err.Error()})
}
