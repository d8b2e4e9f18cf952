package filter_session

import (
	"context"
	"errors"
	"strconv"

	"go-agrofleet/internal/features/inventory"
	"go-agrofleet/internal/middleware"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type FilterSessionController struct {
	Service FilterSessionService
	Logger  *zap.Logger
}

func NewFilterSessionController(service FilterSessionService, logger *zap.Logger) *FilterSessionController {
	return &FilterSessionController{Service: service, Logger: logger}
}

type createRequest struct {
	Resource inventory.Resource `json:"resource"`
}

type fieldsRequest struct {
	Fields map[string]string `json:"fields"`
}

// CreateSession godoc
// @Summary Open a filter session
// @Tags filters
// @Accept json
// @Produce json
// @Param body body createRequest true "Resource to filter"
// @Success 201 {object} Snapshot
// @Failure 400 {object} map[string]interface{}
// @Router /api/filters/sessions [post]
func (ctrl *FilterSessionController) CreateSession(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil || req.Resource == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "resource is required",
		})
	}

	snap, err := ctrl.Service.Create(c.UserContext(), middleware.CurrentUserID(c), req.Resource)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(snap)
}

// GetSession godoc
// @Summary Filter session state
// @Tags filters
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} Snapshot
// @Failure 404 {object} map[string]interface{}
// @Router /api/filters/sessions/{id} [get]
func (ctrl *FilterSessionController) GetSession(c *fiber.Ctx) error {
	snap, err := ctrl.Service.Get(c.UserContext(), middleware.CurrentUserID(c), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(snap)
}

// SetFields godoc
// @Summary Write temporary filter inputs
// @Tags filters
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param body body fieldsRequest true "Field values; empty string clears"
// @Success 200 {object} Snapshot
// @Failure 400 {object} map[string]interface{}
// @Router /api/filters/sessions/{id}/fields [patch]
func (ctrl *FilterSessionController) SetFields(c *fiber.Ctx) error {
	var req fieldsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	snap, err := ctrl.Service.SetFields(c.UserContext(), middleware.CurrentUserID(c), c.Params("id"), req.Fields)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(snap)
}

// Apply godoc
// @Summary Apply temporary inputs as tokens
// @Tags filters
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} Snapshot
// @Router /api/filters/sessions/{id}/apply [post]
func (ctrl *FilterSessionController) Apply(c *fiber.Ctx) error {
	snap, err := ctrl.Service.Apply(c.UserContext(), middleware.CurrentUserID(c), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(snap)
}

// RemoveToken godoc
// @Summary Remove one active token
// @Tags filters
// @Produce json
// @Param id path string true "Session ID"
// @Param tokenId path string true "Token ID"
// @Success 200 {object} Snapshot
// @Router /api/filters/sessions/{id}/tokens/{tokenId} [delete]
func (ctrl *FilterSessionController) RemoveToken(c *fiber.Ctx) error {
	snap, err := ctrl.Service.RemoveToken(c.UserContext(), middleware.CurrentUserID(c), c.Params("id"), c.Params("tokenId"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(snap)
}

// Clear godoc
// @Summary Clear inputs and tokens
// @Tags filters
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} Snapshot
// @Router /api/filters/sessions/{id}/clear [post]
func (ctrl *FilterSessionController) Clear(c *fiber.Ctx) error {
	snap, err := ctrl.Service.Clear(c.UserContext(), middleware.CurrentUserID(c), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(snap)
}

// ReloadOptions godoc
// @Summary Reload the options catalog
// @Tags filters
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} Snapshot
// @Router /api/filters/sessions/{id}/options [post]
func (ctrl *FilterSessionController) ReloadOptions(c *fiber.Ctx) error {
	snap, err := ctrl.Service.ReloadOptions(c.UserContext(), middleware.CurrentUserID(c), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(snap)
}

// GetResults godoc
// @Summary Fetch a page of results for the active filters
// @Tags filters
// @Produce json
// @Param id path string true "Session ID"
// @Param page query int false "Page number"
// @Success 200 {object} Snapshot
// @Router /api/filters/sessions/{id}/results [get]
func (ctrl *FilterSessionController) GetResults(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	snap, err := ctrl.Service.Page(c.UserContext(), middleware.CurrentUserID(c), c.Params("id"), page)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(snap)
}

// DeleteSession godoc
// @Summary Close a filter session
// @Tags filters
// @Param id path string true "Session ID"
// @Success 204
// @Router /api/filters/sessions/{id} [delete]
func (ctrl *FilterSessionController) DeleteSession(c *fiber.Ctx) error {
	if err := ctrl.Service.Delete(c.UserContext(), middleware.CurrentUserID(c), c.Params("id")); err != nil {
		return errorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RequireUpgrade rejects plain HTTP requests on the websocket route
func (ctrl *FilterSessionController) RequireUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Stream pushes a snapshot on every change of the session until either
// side goes away
func (ctrl *FilterSessionController) Stream(conn *websocket.Conn) {
	ctx := context.Background()
	id := conn.Params("id")
	owner, _ := conn.Locals("user_id").(string)

	updates, cancel, err := ctrl.Service.Subscribe(ctx, owner, id)
	if err != nil {
		_ = conn.WriteJSON(fiber.Map{"error": err.Error()})
		return
	}
	defer cancel()

	if snap, err := ctrl.Service.Get(ctx, owner, id); err == nil {
		if err := conn.WriteJSON(snap); err != nil {
			return
		}
	}

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case snap, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(snap); err != nil {
				ctrl.Logger.Debug("websocket write failed", zap.String("session_id", id), zap.Error(err))
				return
			}
		case <-closed:
			return
		}
	}
}

func errorResponse(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, inventory.ErrUnknownResource):
		status = fiber.StatusNotFound
	case errors.Is(err, ErrForbidden):
		status = fiber.StatusForbidden
	case errors.Is(err, ErrFieldNotAllowed):
		status = fiber.StatusBadRequest
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
