package inventory

import (
	"errors"
	"strconv"

	"go-agrofleet/internal/middleware"
	ft "go-agrofleet/pkg/filtertoken"

	"github.com/gofiber/fiber/v2"
)

type InventoryController struct {
	Service InventoryService
}

func NewInventoryController(service InventoryService) *InventoryController {
	return &InventoryController{Service: service}
}

// ListItems godoc
// @Summary List filtered inventory
// @Description Lists items of a resource matching consolidated filter parameters
// @Tags inventory
// @Produce json
// @Param resource path string true "maquinas, repuestos, proveedores, reparaciones or usuarios"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} Page
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/inventory/{resource} [get]
func (ctrl *InventoryController) ListItems(c *fiber.Ctx) error {
	resource := Resource(c.Params("resource"))
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	result, err := ctrl.Service.ListFiltered(c.UserContext(), resource, ParseFilters(c), page, limit)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(result)
}

// GetItem godoc
// @Summary Get inventory item
// @Tags inventory
// @Produce json
// @Param resource path string true "Resource"
// @Param id path string true "Item ID"
// @Success 200 {object} Item
// @Failure 404 {object} map[string]interface{}
// @Router /api/inventory/{resource}/{id} [get]
func (ctrl *InventoryController) GetItem(c *fiber.Ctx) error {
	item, err := ctrl.Service.Get(c.UserContext(), Resource(c.Params("resource")), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(item)
}

// CreateItem godoc
// @Summary Create inventory item
// @Tags inventory
// @Accept json
// @Produce json
// @Param resource path string true "Resource"
// @Param data body map[string]interface{} true "Item attributes"
// @Success 201 {object} Item
// @Failure 400 {object} map[string]interface{}
// @Router /api/inventory/{resource} [post]
func (ctrl *InventoryController) CreateItem(c *fiber.Ctx) error {
	var data map[string]any
	if err := c.BodyParser(&data); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	item, err := ctrl.Service.Create(c.UserContext(), Resource(c.Params("resource")), data, middleware.CurrentUserID(c))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// UpdateItem godoc
// @Summary Update inventory item
// @Tags inventory
// @Accept json
// @Produce json
// @Param resource path string true "Resource"
// @Param id path string true "Item ID"
// @Param data body map[string]interface{} true "Attributes to change"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/inventory/{resource}/{id} [put]
func (ctrl *InventoryController) UpdateItem(c *fiber.Ctx) error {
	var data map[string]any
	if err := c.BodyParser(&data); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := ctrl.Service.Update(c.UserContext(), Resource(c.Params("resource")), c.Params("id"), data, middleware.CurrentUserID(c)); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "Item updated successfully"})
}

// DeleteItem godoc
// @Summary Delete inventory item
// @Tags inventory
// @Param resource path string true "Resource"
// @Param id path string true "Item ID"
// @Success 204
// @Failure 404 {object} map[string]interface{}
// @Router /api/inventory/{resource}/{id} [delete]
func (ctrl *InventoryController) DeleteItem(c *fiber.Ctx) error {
	if err := ctrl.Service.Delete(c.UserContext(), Resource(c.Params("resource")), c.Params("id"), middleware.CurrentUserID(c)); err != nil {
		return errorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetOptions godoc
// @Summary Filter options catalog
// @Tags inventory
// @Produce json
// @Param resource path string true "Resource"
// @Success 200 {object} filtertoken.Catalog
// @Router /api/inventory/{resource}/options [get]
func (ctrl *InventoryController) GetOptions(c *fiber.Ctx) error {
	catalog, err := ctrl.Service.Options(c.UserContext(), Resource(c.Params("resource")))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(catalog)
}

// GetSchema godoc
// @Summary Resource schema
// @Tags inventory
// @Produce json
// @Param resource path string true "Resource"
// @Success 200 {object} map[string]interface{}
// @Router /api/inventory/{resource}/schema [get]
func (ctrl *InventoryController) GetSchema(c *fiber.Ctx) error {
	schema, err := ctrl.Service.Schema(Resource(c.Params("resource")))
	if err != nil {
		return errorResponse(c, err)
	}

	inputs := schema.FilterInputs()
	fields := make([]string, len(inputs))
	for i, f := range inputs {
		fields[i] = string(f)
	}

	return c.JSON(fiber.Map{
		"resource": schema.Resource,
		"columns":  schema.Columns,
		"required": schema.Required,
		"filters":  fields,
	})
}

// ParseFilters reads consolidated filters from the query string. Paging
// parameters are skipped.
func ParseFilters(c *fiber.Ctx) ft.Consolidated {
	values := make(map[string][]string)
	c.Context().QueryArgs().VisitAll(func(key, value []byte) {
		k := string(key)
		if k == "page" || k == "limit" || k == "format" {
			return
		}
		values[k] = append(values[k], string(value))
	})
	return ft.FromValues(values)
}

func errorResponse(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, ErrUnknownResource), errors.Is(err, ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, ErrUnknownField), errors.Is(err, ErrInvalidValue):
		status = fiber.StatusBadRequest
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
