package inventory

import (
	"context"

	"go-agrofleet/internal/config"
	"go-agrofleet/internal/database"
)

type Repository interface {
	Create(ctx context.Context, item *Item) error
	Get(ctx context.Context, resource Resource, id string) (*Item, error)
	Update(ctx context.Context, resource Resource, id string, data map[string]any) error
	Delete(ctx context.Context, resource Resource, id string) error
	List(ctx context.Context, q Query, opts ListOptions) ([]Item, error)
	Count(ctx context.Context, q Query) (int64, error)
	Distinct(ctx context.Context, resource Resource, attr string) ([]string, error)
	Bounds(ctx context.Context, resource Resource, attr string) (min, max any, err error)
	EnsureIndexes(ctx context.Context) error
}

// NewRepository picks the item store configured by STORAGE
func NewRepository(cfg *config.Config, mongodb *database.MongodbDB, pg *database.PostgresDB) Repository {
	if cfg.Storage == "postgres" && pg.DB != nil {
		return NewPostgresRepository(pg.DB)
	}
	return NewMongoRepository(mongodb.DB.Collection("inventory_items"))
}
