package saved_filter

import (
	"errors"

	"go-agrofleet/internal/features/filter_session"
	"go-agrofleet/internal/features/inventory"
	"go-agrofleet/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type SavedFilterController struct {
	FilterService SavedFilterService
}

func NewSavedFilterController(filterService SavedFilterService) *SavedFilterController {
	return &SavedFilterController{
		FilterService: filterService,
	}
}

// CreateFilter godoc
// @Summary Save a filter
// @Description Saves the active tokens of a session, or explicit criteria, under a name
// @Tags saved-filters
// @Accept json
// @Produce json
// @Param body body CreateRequest true "Filter"
// @Success 201 {object} SavedFilter
// @Failure 400 {object} map[string]interface{}
// @Router /api/filters/saved [post]
func (c *SavedFilterController) CreateFilter(ctx *fiber.Ctx) error {
	var req CreateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}

	filter, err := c.FilterService.CreateFilter(ctx.UserContext(), middleware.CurrentUserID(ctx), req)
	if err != nil {
		return errorResponse(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(filter)
}

// GetFilter godoc
// @Summary Get a saved filter
// @Tags saved-filters
// @Produce json
// @Param id path string true "Filter ID"
// @Success 200 {object} SavedFilter
// @Failure 404 {object} map[string]interface{}
// @Router /api/filters/saved/{id} [get]
func (c *SavedFilterController) GetFilter(ctx *fiber.Ctx) error {
	filter, err := c.FilterService.GetFilter(ctx.UserContext(), middleware.CurrentUserID(ctx), ctx.Params("id"))
	if err != nil {
		return errorResponse(ctx, err)
	}
	return ctx.JSON(filter)
}

// UpdateFilter godoc
// @Summary Rename or share a saved filter
// @Tags saved-filters
// @Accept json
// @Produce json
// @Param id path string true "Filter ID"
// @Param body body UpdateRequest true "Changes"
// @Success 200 {object} SavedFilter
// @Router /api/filters/saved/{id} [put]
func (c *SavedFilterController) UpdateFilter(ctx *fiber.Ctx) error {
	var req UpdateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}

	filter, err := c.FilterService.UpdateFilter(ctx.UserContext(), middleware.CurrentUserID(ctx), ctx.Params("id"), req)
	if err != nil {
		return errorResponse(ctx, err)
	}
	return ctx.JSON(filter)
}

// DeleteFilter godoc
// @Summary Delete a saved filter
// @Tags saved-filters
// @Param id path string true "Filter ID"
// @Success 204
// @Router /api/filters/saved/{id} [delete]
func (c *SavedFilterController) DeleteFilter(ctx *fiber.Ctx) error {
	if err := c.FilterService.DeleteFilter(ctx.UserContext(), middleware.CurrentUserID(ctx), ctx.Params("id")); err != nil {
		return errorResponse(ctx, err)
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

// ListUserFilters godoc
// @Summary List my saved filters
// @Tags saved-filters
// @Produce json
// @Param resource query string true "Resource"
// @Success 200 {array} SavedFilter
// @Router /api/filters/saved [get]
func (c *SavedFilterController) ListUserFilters(ctx *fiber.Ctx) error {
	resource := inventory.Resource(ctx.Query("resource"))
	if resource == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "resource parameter required"})
	}

	filters, err := c.FilterService.GetUserFilters(ctx.UserContext(), middleware.CurrentUserID(ctx), resource)
	if err != nil {
		return errorResponse(ctx, err)
	}
	return ctx.JSON(filters)
}

// ListPublicFilters godoc
// @Summary List shared saved filters
// @Tags saved-filters
// @Produce json
// @Param resource query string true "Resource"
// @Success 200 {array} SavedFilter
// @Router /api/filters/saved/public [get]
func (c *SavedFilterController) ListPublicFilters(ctx *fiber.Ctx) error {
	resource := inventory.Resource(ctx.Query("resource"))
	if resource == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "resource parameter required"})
	}

	filters, err := c.FilterService.GetPublicFilters(ctx.UserContext(), resource)
	if err != nil {
		return errorResponse(ctx, err)
	}
	return ctx.JSON(filters)
}

// ApplyFilter godoc
// @Summary Restore a saved filter into a session
// @Tags saved-filters
// @Produce json
// @Param id path string true "Filter ID"
// @Param sessionId path string true "Session ID"
// @Success 200 {object} filter_session.Snapshot
// @Router /api/filters/saved/{id}/apply/{sessionId} [post]
func (c *SavedFilterController) ApplyFilter(ctx *fiber.Ctx) error {
	snap, err := c.FilterService.ApplyFilter(ctx.UserContext(), middleware.CurrentUserID(ctx), ctx.Params("id"), ctx.Params("sessionId"))
	if err != nil {
		return errorResponse(ctx, err)
	}
	return ctx.JSON(snap)
}

func errorResponse(ctx *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, ErrFilterNotFound), errors.Is(err, filter_session.ErrSessionNotFound),
		errors.Is(err, inventory.ErrUnknownResource):
		status = fiber.StatusNotFound
	case errors.Is(err, ErrForbidden), errors.Is(err, filter_session.ErrForbidden):
		status = fiber.StatusForbidden
	case errors.Is(err, ErrNameRequired), errors.Is(err, ErrEmptyFilter), errors.Is(err, ErrResourceMismatch),
		errors.Is(err, inventory.ErrUnknownField), errors.Is(err, inventory.ErrInvalidValue),
		errors.Is(err, filter_session.ErrFieldNotAllowed):
		status = fiber.StatusBadRequest
	}
	return ctx.Status(status).JSON(fiber.Map{"error": err.Error()})
}
