package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	ft "go-agrofleet/pkg/filtertoken"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memoryRepository keeps items in memory and records the last query
type memoryRepository struct {
	mu        sync.Mutex
	items     map[string]*Item
	lastQuery Query
	lastOpts  ListOptions
	distinct  map[string][]string
	bounds    map[string][2]any
	failWith  error
	distincts int
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		items:    make(map[string]*Item),
		distinct: make(map[string][]string),
		bounds:   make(map[string][2]any),
	}
}

func (r *memoryRepository) Create(_ context.Context, item *Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.ID] = item
	return nil
}

func (r *memoryRepository) Get(_ context.Context, resource Resource, id string) (*Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok || item.Resource != resource || item.Deleted {
		return nil, ErrNotFound
	}
	return item, nil
}

func (r *memoryRepository) Update(_ context.Context, resource Resource, id string, data map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok || item.Resource != resource {
		return ErrNotFound
	}
	for k, v := range data {
		item.Data[k] = v
	}
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, resource Resource, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok || item.Resource != resource {
		return ErrNotFound
	}
	item.Deleted = true
	return nil
}

func (r *memoryRepository) List(_ context.Context, q Query, opts ListOptions) ([]Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastQuery, r.lastOpts = q, opts
	var out []Item
	for _, item := range r.items {
		if item.Resource == q.Resource && !item.Deleted {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *memoryRepository) Count(_ context.Context, q Query) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, item := range r.items {
		if item.Resource == q.Resource && !item.Deleted {
			n++
		}
	}
	return n, nil
}

func (r *memoryRepository) Distinct(_ context.Context, _ Resource, attr string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.distincts++
	if r.failWith != nil {
		return nil, r.failWith
	}
	return r.distinct[attr], nil
}

func (r *memoryRepository) Bounds(_ context.Context, _ Resource, attr string) (any, any, error) {
	b := r.bounds[attr]
	return b[0], b[1], nil
}

func (r *memoryRepository) EnsureIndexes(context.Context) error { return nil }

type auditEntry struct {
	action, resource, recordID, actorID string
}

type recordingAuditor struct {
	entries []auditEntry
}

func (a *recordingAuditor) LogChange(_ context.Context, action, resource, recordID, actorID string, _ map[string]any) error {
	a.entries = append(a.entries, auditEntry{action, resource, recordID, actorID})
	return nil
}

func newTestService() (*InventoryServiceImpl, *memoryRepository) {
	repo := newMemoryRepository()
	return NewInventoryService(repo, nil, zap.NewNop()).(*InventoryServiceImpl), repo
}

func TestListFilteredPagesAndCompiles(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, ResourceMachines, map[string]any{"codigo": "M1", "nombre": "Tractor", "categoria": "Tractores"}, "u1")
	require.NoError(t, err)

	page, err := svc.ListFiltered(ctx, ResourceMachines, ft.Consolidated{"categoria": []string{"Tractores"}}, 3, 10)
	require.NoError(t, err)

	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 3, page.Page)
	assert.Equal(t, ListOptions{Limit: 10, Offset: 20}, repo.lastOpts)
	require.Len(t, repo.lastQuery.Conditions, 1)
	assert.Equal(t, "Tractor", page.Data[0]["nombre"])
	assert.Equal(t, "u1", page.Data[0]["created_by"])
	assert.Equal(t, []string{"Tractores"}, page.Filters.Values("categoria"))
}

func TestListFilteredDefaults(t *testing.T) {
	svc, repo := newTestService()

	page, err := svc.ListFiltered(context.Background(), ResourceParts, nil, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.Limit)
	assert.Equal(t, ListOptions{Limit: 20}, repo.lastOpts)
}

func TestListLimitIsCapped(t *testing.T) {
	svc, repo := newTestService()
	ctrl := NewInventoryController(svc)
	app := fiber.New()
	app.Get("/api/inventory/:resource", ctrl.ListItems)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/inventory/maquinas?limit=100000000&page=2", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, ListOptions{Limit: MaxPageSize, Offset: MaxPageSize}, repo.lastOpts)
}

func TestSchemaRouteListsBounds(t *testing.T) {
	svc, _ := newTestService()
	ctrl := NewInventoryController(svc)
	app := fiber.New()
	app.Get("/api/inventory/:resource/schema", ctrl.GetSchema)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/inventory/repuestos/schema", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Filters []string `json:"filters"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body.Filters, "precioMin")
	assert.Contains(t, body.Filters, "precioMax")
	assert.NotContains(t, body.Filters, "precio")
}

func TestListFilteredRejectsUnknownField(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.ListFiltered(context.Background(), ResourceUsers, ft.Consolidated{"anioMin": "2000"}, 1, 10)
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestCreateValidates(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, ResourceMachines, map[string]any{"nombre": "Sin código"}, "")
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = svc.Create(ctx, ResourceMachines, map[string]any{"codigo": "M2", "nombre": "X", "anio": "nuevo"}, "")
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = svc.Create(ctx, "tractores", map[string]any{}, "")
	assert.ErrorIs(t, err, ErrUnknownResource)

	item, err := svc.Create(ctx, ResourceMachines, map[string]any{"codigo": "M3", "nombre": "Y", "anio": "2019"}, "")
	require.NoError(t, err)
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, 2019.0, item.Data["anio"])
	assert.WithinDuration(t, time.Now(), item.CreatedAt, time.Minute)
}

func TestUpdateAndDelete(t *testing.T) {
	svc, _ := newTestService()
	auditor := &recordingAuditor{}
	svc.Auditor = auditor
	ctx := context.Background()

	item, err := svc.Create(ctx, ResourceParts, map[string]any{"codigo": "R1", "nombre": "Filtro"}, "u1")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Update(ctx, ResourceParts, item.ID, map[string]any{"nombre": ""}, "u1"), ErrInvalidValue)
	require.NoError(t, svc.Update(ctx, ResourceParts, item.ID, map[string]any{"precio": "12.5"}, "u2"))

	got, err := svc.Get(ctx, ResourceParts, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 12.5, got.Data["precio"])

	require.NoError(t, svc.Delete(ctx, ResourceParts, item.ID, "u1"))
	_, err = svc.Get(ctx, ResourceParts, item.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, ResourceParts, "missing", "u1"), ErrNotFound)

	assert.Equal(t, []auditEntry{
		{AuditCreate, "repuestos", item.ID, "u1"},
		{AuditUpdate, "repuestos", item.ID, "u2"},
		{AuditDelete, "repuestos", item.ID, "u1"},
	}, auditor.entries)
}

func TestOptionsCachesAndInvalidates(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	repo.distinct["categoria"] = []string{"Cosechadoras", "Tractores"}
	repo.bounds["anio"] = [2]any{2001.0, 2024.0}
	repo.bounds["fecha_adquisicion"] = [2]any{time.Date(2010, 5, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)}

	c, err := svc.Options(ctx, ResourceMachines)
	require.NoError(t, err)
	assert.Equal(t, []string{"Cosechadoras", "Tractores"}, c.Categories)
	assert.Equal(t, ft.Bounds{Min: "2001", Max: "2024"}, c.Years)
	assert.Equal(t, ft.Bounds{Min: "2010-05-01", Max: "2024-02-01"}, c.Dates)
	assert.Equal(t, ft.Bounds{}, c.Prices)

	calls := repo.distincts
	_, err = svc.Options(ctx, ResourceMachines)
	require.NoError(t, err)
	assert.Equal(t, calls, repo.distincts, "second call served from cache")

	_, err = svc.Create(ctx, ResourceMachines, map[string]any{"codigo": "M9", "nombre": "Z"}, "")
	require.NoError(t, err)
	_, err = svc.Options(ctx, ResourceMachines)
	require.NoError(t, err)
	assert.Greater(t, repo.distincts, calls)
}

func TestRefreshCatalogsKeepsPreviousOnFailure(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	repo.distinct["estado"] = []string{"Operativa"}

	require.NoError(t, svc.RefreshCatalogs(ctx))
	repo.failWith = errors.New("mongo down")
	assert.Error(t, svc.RefreshCatalogs(ctx))

	c, err := svc.Options(ctx, ResourceMachines)
	require.NoError(t, err)
	assert.Equal(t, []string{"Operativa"}, c.States)
}

func TestControllerRoutes(t *testing.T) {
	svc, repo := newTestService()
	_, err := svc.Create(context.Background(), ResourceMachines, map[string]any{"codigo": "M1", "nombre": "T"}, "")
	require.NoError(t, err)

	ctrl := NewInventoryController(svc)
	app := fiber.New()
	app.Get("/api/inventory/:resource", ctrl.ListItems)
	app.Get("/api/inventory/:resource/:id", ctrl.GetItem)

	tests := []struct {
		name   string
		target string
		status int
	}{
		{"list with filters", "/api/inventory/maquinas?categoria=Tractores&categoria=Cosechadoras&anioMin=2010&page=2", fiber.StatusOK},
		{"unknown resource", "/api/inventory/tractores", fiber.StatusNotFound},
		{"bad bound", "/api/inventory/maquinas?precioMin=barato", fiber.StatusBadRequest},
		{"missing item", "/api/inventory/maquinas/nope", fiber.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", tt.target, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}

	require.Len(t, repo.lastQuery.Conditions, 2)
	assert.Equal(t, []string{"Tractores", "Cosechadoras"}, repo.lastQuery.Conditions[1].Values)
	assert.Equal(t, int64(20), repo.lastOpts.Offset)
}
