package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go-agrofleet/internal/features/auth"
	"go-agrofleet/internal/features/inventory"
	ft "go-agrofleet/pkg/filtertoken"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingInventory struct {
	inventory.InventoryService
	existing map[inventory.Resource]int64
	created  map[inventory.Resource]int
}

func (c *countingInventory) ListFiltered(_ context.Context, r inventory.Resource, _ ft.Consolidated, page, limit int) (*inventory.Page, error) {
	return &inventory.Page{Total: c.existing[r], Page: page, Limit: limit}, nil
}

func (c *countingInventory) Create(_ context.Context, r inventory.Resource, data map[string]any, userID string) (*inventory.Item, error) {
	c.created[r]++
	return &inventory.Item{Resource: r, Data: data, CreatedBy: userID}, nil
}

func TestSeedInventorySkipsPopulatedResources(t *testing.T) {
	inv := &countingInventory{
		existing: map[inventory.Resource]int64{inventory.ResourceParts: 4},
		created:  map[inventory.Resource]int{},
	}
	items := map[inventory.Resource][]map[string]any{
		inventory.ResourceMachines: {{"codigo": "A"}, {"codigo": "B"}},
		inventory.ResourceParts:    {{"codigo": "P"}},
	}

	n := seedInventory(context.Background(), inv, items, zap.NewNop())
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, inv.created[inventory.ResourceMachines])
	assert.Zero(t, inv.created[inventory.ResourceParts])
}

type registeringAuth struct {
	auth.AuthService
	seen map[string]bool
}

func (r *registeringAuth) Register(_ context.Context, req auth.RegisterRequest) (*auth.Account, error) {
	if r.seen[req.Email] {
		return nil, auth.ErrAccountExists
	}
	r.seen[req.Email] = true
	return &auth.Account{Email: req.Email, Roles: req.Roles}, nil
}

func TestSeedDataFilesLoad(t *testing.T) {
	var registrations []auth.RegisterRequest
	require.NoError(t, readJSON(filepath.Join("data", "accounts.json"), &registrations))

	svc := &registeringAuth{seen: map[string]bool{}}
	assert.Equal(t, len(registrations), seedAccounts(context.Background(), svc, registrations, zap.NewNop()))
	assert.Zero(t, seedAccounts(context.Background(), svc, registrations, zap.NewNop()))

	var items map[inventory.Resource][]map[string]any
	require.NoError(t, readJSON(filepath.Join("data", "inventory.json"), &items))
	for resource, records := range items {
		schema, err := inventory.SchemaFor(resource)
		require.NoError(t, err)
		for _, rec := range records {
			for _, attr := range schema.Required {
				assert.NotEmpty(t, rec[attr], "%s.%s", resource, attr)
			}
			assert.NoError(t, inventory.Normalize(schema, rec))
		}
	}
}

func TestReadJSONMissingFile(t *testing.T) {
	var v any
	assert.ErrorIs(t, readJSON(filepath.Join(t.TempDir(), "nope.json"), &v), os.ErrNotExist)
}
