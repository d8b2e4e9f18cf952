package saved_filter

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"go-agrofleet/internal/features/filter_session"
	"go-agrofleet/internal/features/inventory"
	ft "go-agrofleet/pkg/filtertoken"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryRepository struct {
	filters map[string]*SavedFilter
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{filters: make(map[string]*SavedFilter)}
}

func (r *memoryRepository) Create(_ context.Context, f *SavedFilter) error {
	cp := *f
	r.filters[f.ID] = &cp
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (*SavedFilter, error) {
	f, ok := r.filters[id]
	if !ok {
		return nil, ErrFilterNotFound
	}
	cp := *f
	return &cp, nil
}

func (r *memoryRepository) Update(_ context.Context, f *SavedFilter) error {
	if _, ok := r.filters[f.ID]; !ok {
		return ErrFilterNotFound
	}
	cp := *f
	r.filters[f.ID] = &cp
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, id string) error {
	if _, ok := r.filters[id]; !ok {
		return ErrFilterNotFound
	}
	delete(r.filters, id)
	return nil
}

func (r *memoryRepository) FindByUser(_ context.Context, userID string, resource inventory.Resource) ([]SavedFilter, error) {
	var out []SavedFilter
	for _, f := range r.filters {
		if f.UserID == userID && f.Resource == resource {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *memoryRepository) FindPublic(_ context.Context, resource inventory.Resource) ([]SavedFilter, error) {
	var out []SavedFilter
	for _, f := range r.filters {
		if f.IsPublic && f.Resource == resource {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *memoryRepository) ClearDefault(_ context.Context, userID string, resource inventory.Resource) error {
	for _, f := range r.filters {
		if f.UserID == userID && f.Resource == resource {
			f.IsDefault = false
		}
	}
	return nil
}

// fakeSessions serves one session owned by "u1"
type fakeSessions struct {
	filter_session.FilterSessionService
	resource inventory.Resource
	tokens   []ft.Token
	restored []ft.Criterion
}

func (f *fakeSessions) Tokens(_ context.Context, owner, id string) (inventory.Resource, []ft.Token, error) {
	if id != "s1" {
		return "", nil, filter_session.ErrSessionNotFound
	}
	if owner != "u1" {
		return "", nil, filter_session.ErrForbidden
	}
	return f.resource, f.tokens, nil
}

func (f *fakeSessions) Restore(_ context.Context, _, id string, criteria []ft.Criterion) (*filter_session.Snapshot, error) {
	f.restored = criteria
	return &filter_session.Snapshot{ID: id, Resource: f.resource}, nil
}

func newTestService() (*SavedFilterServiceImpl, *memoryRepository, *fakeSessions) {
	repo := newMemoryRepository()
	sessions := &fakeSessions{
		resource: inventory.ResourceMachines,
		tokens: []ft.Token{
			{ID: "categoria_1", Field: ft.FieldCategoria, Value: "Tractores", Label: "Categoría: Tractores"},
			{ID: "anio_2", Field: ft.FieldAnio, Value: ft.Range{Min: "2010", Max: "2020"}, Label: "Años: 2010 - 2020"},
		},
	}
	svc := NewSavedFilterService(repo, sessions, zap.NewNop()).(*SavedFilterServiceImpl)
	return svc, repo, sessions
}

func TestCreateFromSession(t *testing.T) {
	svc, repo, _ := newTestService()

	f, err := svc.CreateFilter(context.Background(), "u1", CreateRequest{Name: "  Tractores nuevos ", SessionID: "s1"})
	require.NoError(t, err)

	assert.Equal(t, "Tractores nuevos", f.Name)
	assert.Equal(t, inventory.ResourceMachines, f.Resource)
	assert.Equal(t, []ft.Criterion{
		{Field: ft.FieldCategoria, Value: "Tractores"},
		{Field: ft.FieldAnio, Range: &ft.Range{Min: "2010", Max: "2020"}},
	}, f.Criteria)
	assert.Equal(t, []string{"Categoría: Tractores", "Años: 2010 - 2020"}, f.Labels)
	assert.Contains(t, repo.filters, f.ID)
}

func TestCreateValidation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	tests := []struct {
		name string
		user string
		req  CreateRequest
		want error
	}{
		{"missing name", "u1", CreateRequest{SessionID: "s1"}, ErrNameRequired},
		{"no criteria", "u1", CreateRequest{Name: "x", Resource: inventory.ResourceParts}, ErrEmptyFilter},
		{"foreign session", "u2", CreateRequest{Name: "x", SessionID: "s1"}, filter_session.ErrForbidden},
		{"field not on resource", "u1", CreateRequest{Name: "x", Resource: inventory.ResourceParts,
			Criteria: []ft.Criterion{{Field: ft.FieldAnio, Range: &ft.Range{Min: "2000"}}}}, inventory.ErrUnknownField},
		{"empty criterion", "u1", CreateRequest{Name: "x", Resource: inventory.ResourceParts,
			Criteria: []ft.Criterion{{Field: ft.FieldEstado}}}, inventory.ErrInvalidValue},
		{"range on scalar field", "u1", CreateRequest{Name: "x", Resource: inventory.ResourceParts,
			Criteria: []ft.Criterion{{Field: ft.FieldCategoria, Range: &ft.Range{Min: "a", Max: "b"}}}}, inventory.ErrInvalidValue},
		{"scalar on range family", "u1", CreateRequest{Name: "x", Resource: inventory.ResourceParts,
			Criteria: []ft.Criterion{{Field: ft.FieldPrecio, Value: "100"}}}, inventory.ErrInvalidValue},
		{"value and range", "u1", CreateRequest{Name: "x", Resource: inventory.ResourceParts,
			Criteria: []ft.Criterion{{Field: ft.FieldPrecio, Value: "100", Range: &ft.Range{Min: "100"}}}}, inventory.ErrInvalidValue},
		{"bound as field", "u1", CreateRequest{Name: "x", Resource: inventory.ResourceParts,
			Criteria: []ft.Criterion{{Field: ft.FieldPrecioMin, Value: "100"}}}, inventory.ErrUnknownField},
		{"unknown resource", "u1", CreateRequest{Name: "x", Resource: "tractores",
			Criteria: []ft.Criterion{{Field: ft.FieldEstado, Value: "Activo"}}}, inventory.ErrUnknownResource},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateFilter(ctx, tt.user, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDefaultIsExclusive(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	first, err := svc.CreateFilter(ctx, "u1", CreateRequest{Name: "a", SessionID: "s1", IsDefault: true})
	require.NoError(t, err)
	second, err := svc.CreateFilter(ctx, "u1", CreateRequest{Name: "b", SessionID: "s1", IsDefault: true})
	require.NoError(t, err)

	assert.False(t, repo.filters[first.ID].IsDefault)
	assert.True(t, repo.filters[second.ID].IsDefault)

	yes := true
	_, err = svc.UpdateFilter(ctx, "u1", first.ID, UpdateRequest{IsDefault: &yes})
	require.NoError(t, err)
	assert.True(t, repo.filters[first.ID].IsDefault)
	assert.False(t, repo.filters[second.ID].IsDefault)
}

func TestVisibilityAndOwnership(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	private, err := svc.CreateFilter(ctx, "u1", CreateRequest{Name: "mío", SessionID: "s1"})
	require.NoError(t, err)
	shared, err := svc.CreateFilter(ctx, "u1", CreateRequest{Name: "de todos", SessionID: "s1", IsPublic: true})
	require.NoError(t, err)

	_, err = svc.GetFilter(ctx, "u2", private.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := svc.GetFilter(ctx, "u2", shared.ID)
	require.NoError(t, err)
	assert.Len(t, got.Labels, 2)

	name := "otro"
	_, err = svc.UpdateFilter(ctx, "u2", shared.ID, UpdateRequest{Name: &name})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, svc.DeleteFilter(ctx, "u2", shared.ID), ErrForbidden)

	public, err := svc.GetPublicFilters(ctx, inventory.ResourceMachines)
	require.NoError(t, err)
	assert.Len(t, public, 1)

	mine, err := svc.GetUserFilters(ctx, "u1", inventory.ResourceMachines)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	require.NoError(t, svc.DeleteFilter(ctx, "u1", private.ID))
	_, err = svc.GetFilter(ctx, "u1", private.ID)
	assert.ErrorIs(t, err, ErrFilterNotFound)
}

func TestApplyFilter(t *testing.T) {
	svc, _, sessions := newTestService()
	ctx := context.Background()

	f, err := svc.CreateFilter(ctx, "u1", CreateRequest{Name: "a", SessionID: "s1"})
	require.NoError(t, err)

	snap, err := svc.ApplyFilter(ctx, "u1", f.ID, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", snap.ID)
	assert.Equal(t, f.Criteria, sessions.restored)

	sessions.resource = inventory.ResourceParts
	_, err = svc.ApplyFilter(ctx, "u1", f.ID, "s1")
	assert.ErrorIs(t, err, ErrResourceMismatch)
}

func TestControllerStatuses(t *testing.T) {
	svc, _, _ := newTestService()
	ctrl := NewSavedFilterController(svc)

	app := fiber.New()
	app.Post("/saved", ctrl.CreateFilter)
	app.Get("/saved", ctrl.ListUserFilters)
	app.Get("/saved/:id", ctrl.GetFilter)

	tests := []struct {
		name   string
		method string
		target string
		body   string
		status int
	}{
		{"create explicit criteria", "POST", "/saved", `{"name":"stock","resource":"repuestos","criteria":[{"field":"estado","value":"Disponible"}]}`, fiber.StatusCreated},
		{"create without name", "POST", "/saved", `{"resource":"repuestos","criteria":[{"field":"estado","value":"x"}]}`, fiber.StatusBadRequest},
		{"create from missing session", "POST", "/saved", `{"name":"x","session_id":"nope"}`, fiber.StatusNotFound},
		{"list needs resource", "GET", "/saved", "", fiber.StatusBadRequest},
		{"list", "GET", "/saved?resource=repuestos", "", fiber.StatusOK},
		{"missing filter", "GET", "/saved/none", "", fiber.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}
