package export

import (
	"errors"
	"fmt"

	"go-agrofleet/internal/features/filter_session"
	"go-agrofleet/internal/features/inventory"
	"go-agrofleet/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ExportController struct {
	ExportService ExportService
}

func NewExportController(exportService ExportService) *ExportController {
	return &ExportController{ExportService: exportService}
}

// ExportSession godoc
// @Summary Export the records matched by a filter session
// @Tags export
// @Produce octet-stream
// @Param id path string true "Session ID"
// @Param format query string false "csv or xlsx"
// @Success 200 {file} file
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/export/sessions/{id} [get]
func (c *ExportController) ExportSession(ctx *fiber.Ctx) error {
	file, err := c.ExportService.ExportSession(ctx.UserContext(), middleware.CurrentUserID(ctx), ctx.Params("id"), Format(ctx.Query("format", "csv")))
	if err != nil {
		return errorResponse(ctx, err)
	}
	return send(ctx, file)
}

// ExportResource godoc
// @Summary Export inventory records matching query filters
// @Tags export
// @Produce octet-stream
// @Param resource path string true "Resource"
// @Param format query string false "csv or xlsx"
// @Success 200 {file} file
// @Router /api/export/{resource} [get]
func (c *ExportController) ExportResource(ctx *fiber.Ctx) error {
	resource := inventory.Resource(ctx.Params("resource"))
	file, err := c.ExportService.ExportFiltered(ctx.UserContext(), resource, inventory.ParseFilters(ctx), Format(ctx.Query("format", "csv")))
	if err != nil {
		return errorResponse(ctx, err)
	}
	return send(ctx, file)
}

func send(ctx *fiber.Ctx, file *File) error {
	ctx.Set(fiber.HeaderContentType, file.ContentType)
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.Name))
	return ctx.Send(file.Data)
}

func errorResponse(ctx *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, filter_session.ErrSessionNotFound), errors.Is(err, inventory.ErrUnknownResource):
		status = fiber.StatusNotFound
	case errors.Is(err, filter_session.ErrForbidden):
		status = fiber.StatusForbidden
	case errors.Is(err, ErrUnsupportedFormat), errors.Is(err, inventory.ErrUnknownField), errors.Is(err, inventory.ErrInvalidValue):
		status = fiber.StatusBadRequest
	}
	return ctx.Status(status).JSON(fiber.Map{"error": err.Error()})
}
