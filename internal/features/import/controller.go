package import_feature

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go-agrofleet/internal/config"
	"go-agrofleet/internal/features/inventory"
	"go-agrofleet/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ImportController struct {
	ImportService ImportService
	UploadDir     string
	Logger        *zap.Logger
}

func NewImportController(importService ImportService, cfg *config.Config, logger *zap.Logger) *ImportController {
	if _, err := os.Stat(cfg.UploadPath); os.IsNotExist(err) {
		os.MkdirAll(cfg.UploadPath, 0755)
	}
	return &ImportController{
		ImportService: importService,
		UploadDir:     cfg.UploadPath,
		Logger:        logger,
	}
}

// UploadAndPreview godoc
// @Summary Preview import file
// @Description Upload a CSV/Excel file and preview its content
// @Tags import
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Import File"
// @Param resource formData string true "Inventory resource"
// @Success 200 {object} ImportPreview
// @Failure 400 {object} map[string]interface{}
// @Router /api/import/preview [post]
func (c *ImportController) UploadAndPreview(ctx *fiber.Ctx) error {
	resource := inventory.Resource(ctx.FormValue("resource"))
	if resource == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "resource is required"})
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file is required"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to open file"})
	}
	defer file.Close()

	preview, err := c.ImportService.PreviewFile(ctx.UserContext(), file, fileHeader.Filename, resource)
	if err != nil {
		return errorResponse(ctx, err)
	}
	return ctx.JSON(preview)
}

// CreateImportJob godoc
// @Summary Create and start import job
// @Tags import
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Import File"
// @Param resource formData string true "Inventory resource"
// @Param mapping formData string true "Column Mapping JSON"
// @Param script formData string false "Row transform script"
// @Success 202 {object} ImportJob
// @Failure 400 {object} map[string]interface{}
// @Router /api/import/jobs [post]
func (c *ImportController) CreateImportJob(ctx *fiber.Ctx) error {
	resource := inventory.Resource(ctx.FormValue("resource"))
	mappingJSON := ctx.FormValue("mapping")
	if resource == "" || mappingJSON == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "resource and mapping required"})
	}

	var mapping map[string]string
	if err := json.Unmarshal([]byte(mappingJSON), &mapping); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid mapping JSON"})
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file is required"})
	}

	originalName := filepath.Base(fileHeader.Filename)
	uniqueName := strings.ReplaceAll(fmt.Sprintf("%d_%s", time.Now().UnixNano(), originalName), " ", "_")
	dstPath := filepath.Join(c.UploadDir, uniqueName)
	if err := ctx.SaveFile(fileHeader, dstPath); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error saving file"})
	}

	job, err := c.ImportService.CreateJob(ctx.UserContext(), middleware.CurrentUserID(ctx), JobRequest{
		Resource: resource,
		FileName: originalName,
		FilePath: dstPath,
		Mapping:  mapping,
		Script:   ctx.FormValue("script"),
	})
	if err != nil {
		os.Remove(dstPath)
		return errorResponse(ctx, err)
	}

	go func(id string) {
		if err := c.ImportService.ProcessImport(context.Background(), id); err != nil {
			c.Logger.Error("import job stopped", zap.String("job_id", id), zap.Error(err))
		}
	}(job.ID)

	return ctx.Status(fiber.StatusAccepted).JSON(job)
}

// GetImportJob godoc
// @Summary Get import job
// @Tags import
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} ImportJob
// @Failure 404 {object} map[string]interface{}
// @Router /api/import/jobs/{id} [get]
func (c *ImportController) GetImportJob(ctx *fiber.Ctx) error {
	job, err := c.ImportService.GetJob(ctx.UserContext(), middleware.CurrentUserID(ctx), ctx.Params("id"))
	if err != nil {
		return errorResponse(ctx, err)
	}
	return ctx.JSON(job)
}

// ListImportJobs godoc
// @Summary List import jobs
// @Tags import
// @Produce json
// @Success 200 {array} ImportJob
// @Router /api/import/jobs [get]
func (c *ImportController) ListImportJobs(ctx *fiber.Ctx) error {
	jobs, err := c.ImportService.GetUserJobs(ctx.UserContext(), middleware.CurrentUserID(ctx))
	if err != nil {
		return errorResponse(ctx, err)
	}
	return ctx.JSON(jobs)
}

func errorResponse(ctx *fiber.Ctx, err error) error {
	status := fiber.StatusBadRequest
	switch {
	case errors.Is(err, ErrJobNotFound), errors.Is(err, inventory.ErrUnknownResource):
		status = fiber.StatusNotFound
	case errors.Is(err, ErrForbidden):
		status = fiber.StatusForbidden
	}
	return ctx.Status(status).JSON(fiber.Map{"error": err.Error()})
}
