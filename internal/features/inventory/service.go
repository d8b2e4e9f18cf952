package inventory

import (
	"context"
	"fmt"
	"sync"
	"time"

	ft "go-agrofleet/pkg/filtertoken"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type InventoryService interface {
	Schema(resource Resource) (Schema, error)
	ListFiltered(ctx context.Context, resource Resource, filters ft.Consolidated, page, limit int) (*Page, error)
	Get(ctx context.Context, resource Resource, id string) (*Item, error)
	Create(ctx context.Context, resource Resource, data map[string]any, userID string) (*Item, error)
	Update(ctx context.Context, resource Resource, id string, data map[string]any, userID string) error
	Delete(ctx context.Context, resource Resource, id string, userID string) error
	Options(ctx context.Context, resource Resource) (ft.Catalog, error)
	RefreshCatalogs(ctx context.Context) error
}

// Auditor receives every item change
type Auditor interface {
	LogChange(ctx context.Context, action, resource, recordID, actorID string, changes map[string]any) error
}

const (
	AuditCreate = "create"
	AuditUpdate = "update"
	AuditDelete = "delete"
)

// MaxPageSize caps the limit of a single listing
const MaxPageSize = 500

type InventoryServiceImpl struct {
	Repo    Repository
	Auditor Auditor
	Logger  *zap.Logger

	mu       sync.RWMutex
	catalogs map[Resource]ft.Catalog
}

func NewInventoryService(repo Repository, auditor Auditor, logger *zap.Logger) InventoryService {
	return &InventoryServiceImpl{
		Repo:     repo,
		Auditor:  auditor,
		Logger:   logger,
		catalogs: make(map[Resource]ft.Catalog),
	}
}

func (s *InventoryServiceImpl) Schema(resource Resource) (Schema, error) {
	return SchemaFor(resource)
}

func (s *InventoryServiceImpl) ListFiltered(ctx context.Context, resource Resource, filters ft.Consolidated, page, limit int) (*Page, error) {
	schema, err := SchemaFor(resource)
	if err != nil {
		return nil, err
	}
	q, err := BuildQuery(schema, filters)
	if err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	items, err := s.Repo.List(ctx, q, ListOptions{Limit: int64(limit), Offset: int64((page - 1) * limit)})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", resource, err)
	}
	total, err := s.Repo.Count(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to count %s: %w", resource, err)
	}

	data := make([]map[string]any, 0, len(items))
	for i := range items {
		data = append(data, items[i].Flatten())
	}

	s.Logger.Debug("inventory filtered",
		zap.String("resource", string(resource)),
		zap.Int("conditions", len(q.Conditions)),
		zap.Int64("total", total),
	)

	return &Page{Data: data, Total: total, Page: page, Limit: limit, Filters: filters.Clone()}, nil
}

func (s *InventoryServiceImpl) Get(ctx context.Context, resource Resource, id string) (*Item, error) {
	if _, err := SchemaFor(resource); err != nil {
		return nil, err
	}
	return s.Repo.Get(ctx, resource, id)
}

func (s *InventoryServiceImpl) Create(ctx context.Context, resource Resource, data map[string]any, userID string) (*Item, error) {
	schema, err := SchemaFor(resource)
	if err != nil {
		return nil, err
	}
	for _, attr := range schema.Required {
		if v, ok := data[attr]; !ok || FormatValue(v) == "" {
			return nil, fmt.Errorf("%w: %s is required", ErrInvalidValue, attr)
		}
	}
	if err := Normalize(schema, data); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	item := &Item{
		ID:        uuid.NewString(),
		Resource:  resource,
		Data:      data,
		CreatedBy: userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repo.Create(ctx, item); err != nil {
		return nil, err
	}
	s.invalidate(resource)
	s.audit(ctx, AuditCreate, resource, item.ID, userID, data)
	return item, nil
}

func (s *InventoryServiceImpl) Update(ctx context.Context, resource Resource, id string, data map[string]any, userID string) error {
	schema, err := SchemaFor(resource)
	if err != nil {
		return err
	}
	for _, attr := range schema.Required {
		if v, ok := data[attr]; ok && FormatValue(v) == "" {
			return fmt.Errorf("%w: %s cannot be empty", ErrInvalidValue, attr)
		}
	}
	if err := Normalize(schema, data); err != nil {
		return err
	}
	if err := s.Repo.Update(ctx, resource, id, data); err != nil {
		return err
	}
	s.invalidate(resource)
	s.audit(ctx, AuditUpdate, resource, id, userID, data)
	return nil
}

func (s *InventoryServiceImpl) Delete(ctx context.Context, resource Resource, id string, userID string) error {
	if _, err := SchemaFor(resource); err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, resource, id); err != nil {
		return err
	}
	s.invalidate(resource)
	s.audit(ctx, AuditDelete, resource, id, userID, nil)
	return nil
}

// audit failures are logged and never fail the write
func (s *InventoryServiceImpl) audit(ctx context.Context, action string, resource Resource, id, userID string, changes map[string]any) {
	if s.Auditor == nil {
		return
	}
	if err := s.Auditor.LogChange(ctx, action, string(resource), id, userID, changes); err != nil {
		s.Logger.Warn("failed to write audit log",
			zap.String("resource", string(resource)),
			zap.String("record_id", id),
			zap.Error(err),
		)
	}
}

// Options returns the options catalog of resource, building it on first use
func (s *InventoryServiceImpl) Options(ctx context.Context, resource Resource) (ft.Catalog, error) {
	s.mu.RLock()
	c, ok := s.catalogs[resource]
	s.mu.RUnlock()
	if ok {
		return c.Clone(), nil
	}

	c, err := s.buildCatalog(ctx, resource)
	if err != nil {
		return ft.Catalog{}, err
	}
	s.mu.Lock()
	s.catalogs[resource] = c
	s.mu.Unlock()
	return c.Clone(), nil
}

// RefreshCatalogs rebuilds the catalog of every resource. A failing resource
// keeps its previous catalog.
func (s *InventoryServiceImpl) RefreshCatalogs(ctx context.Context) error {
	var firstErr error
	for _, r := range Resources() {
		c, err := s.buildCatalog(ctx, r)
		if err != nil {
			s.Logger.Error("catalog refresh failed", zap.String("resource", string(r)), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		s.mu.Lock()
		s.catalogs[r] = c
		s.mu.Unlock()
	}
	return firstErr
}

func (s *InventoryServiceImpl) invalidate(resource Resource) {
	s.mu.Lock()
	delete(s.catalogs, resource)
	s.mu.Unlock()
}

func (s *InventoryServiceImpl) buildCatalog(ctx context.Context, resource Resource) (ft.Catalog, error) {
	schema, err := SchemaFor(resource)
	if err != nil {
		return ft.Catalog{}, err
	}

	var c ft.Catalog
	lists := map[ft.Field]*[]string{
		ft.FieldCategoria: &c.Categories,
		ft.FieldUbicacion: &c.Locations,
		ft.FieldEstado:    &c.States,
		ft.FieldTipo:      &c.Types,
		ft.FieldPrioridad: &c.Priorities,
	}
	for field, dst := range lists {
		attr, ok := schema.Fields[field]
		if !ok {
			continue
		}
		values, err := s.Repo.Distinct(ctx, resource, attr)
		if err != nil {
			return ft.Catalog{}, fmt.Errorf("distinct %s: %w", attr, err)
		}
		*dst = values
	}

	bounds := map[ft.Field]*ft.Bounds{
		ft.FieldAnio:   &c.Years,
		ft.FieldPrecio: &c.Prices,
		ft.FieldFecha:  &c.Dates,
	}
	for field, dst := range bounds {
		ra, ok := schema.Ranges[field]
		if !ok {
			continue
		}
		lo, hi, err := s.Repo.Bounds(ctx, resource, ra.Attr)
		if err != nil {
			return ft.Catalog{}, fmt.Errorf("bounds %s: %w", ra.Attr, err)
		}
		*dst = ft.Bounds{Min: FormatValue(lo), Max: FormatValue(hi)}
	}

	return c, nil
}
