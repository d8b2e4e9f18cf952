package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"path/filepath"

	"go-agrofleet/internal/config"
	"go-agrofleet/internal/database"
	"go-agrofleet/internal/features/audit"
	"go-agrofleet/internal/features/auth"
	"go-agrofleet/internal/features/inventory"
	"go-agrofleet/internal/logger"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

const seedUserID = "seed"

// Seed runs the database seeding
func Seed(
	lc fx.Lifecycle,
	accounts auth.AccountRepository,
	authService auth.AuthService,
	repo inventory.Repository,
	inventoryService inventory.InventoryService,
	logger *zap.Logger,
	shutdowner fx.Shutdowner,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer func() {
					if err := shutdowner.Shutdown(); err != nil {
						logger.Error("Failed to shutdown", zap.Error(err))
					}
				}()

				ctx := context.Background()
				dataDir := os.Getenv("SEED_DATA_DIR")
				if dataDir == "" {
					dataDir = "cmd/seed/data"
				}
				logger.Info("Starting database seeding", zap.String("dir", dataDir))

				if err := accounts.EnsureIndexes(ctx); err != nil {
					logger.Error("Failed to ensure account indexes", zap.Error(err))
				}
				if err := repo.EnsureIndexes(ctx); err != nil {
					logger.Error("Failed to ensure inventory indexes", zap.Error(err))
					return
				}

				var registrations []auth.RegisterRequest
				if err := readJSON(filepath.Join(dataDir, "accounts.json"), &registrations); err != nil {
					logger.Warn("Failed to read accounts.json, skipping account seeding", zap.Error(err))
				} else {
					seedAccounts(ctx, authService, registrations, logger)
				}

				var items map[inventory.Resource][]map[string]any
				if err := readJSON(filepath.Join(dataDir, "inventory.json"), &items); err != nil {
					logger.Error("Failed to read inventory.json", zap.Error(err))
					return
				}
				created := seedInventory(ctx, inventoryService, items, logger)

				if err := inventoryService.RefreshCatalogs(ctx); err != nil {
					logger.Warn("Catalog refresh failed", zap.Error(err))
				}
				logger.Info("Seeding complete", zap.Int("items", created))
			}()
			return nil
		},
	})
}

func readJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

func seedAccounts(ctx context.Context, authService auth.AuthService, registrations []auth.RegisterRequest, logger *zap.Logger) int {
	created := 0
	for _, req := range registrations {
		account, err := authService.Register(ctx, req)
		switch {
		case errors.Is(err, auth.ErrAccountExists):
			logger.Info("Account exists, skipping", zap.String("email", req.Email))
		case err != nil:
			logger.Error("Failed to create account", zap.String("email", req.Email), zap.Error(err))
		default:
			logger.Info("Account created", zap.String("email", account.Email), zap.Strings("roles", account.Roles))
			created++
		}
	}
	return created
}

// seedInventory fills every resource that has no records yet
func seedInventory(ctx context.Context, inventoryService inventory.InventoryService, items map[inventory.Resource][]map[string]any, logger *zap.Logger) int {
	created := 0
	for _, resource := range inventory.Resources() {
		records := items[resource]
		if len(records) == 0 {
			continue
		}
		page, err := inventoryService.ListFiltered(ctx, resource, nil, 1, 1)
		if err != nil {
			logger.Error("Failed to count records", zap.String("resource", string(resource)), zap.Error(err))
			continue
		}
		if page.Total > 0 {
			logger.Info("Resource already has records, skipping", zap.String("resource", string(resource)), zap.Int64("total", page.Total))
			continue
		}
		for _, data := range records {
			if _, err := inventoryService.Create(ctx, resource, data, seedUserID); err != nil {
				logger.Error("Failed to create record", zap.String("resource", string(resource)), zap.Error(err))
				continue
			}
			created++
		}
		logger.Info("Resource seeded", zap.String("resource", string(resource)), zap.Int("count", len(records)))
	}
	return created
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			database.NewDatabase,
			database.NewPostgres,
			logger.NewLogger,
			auth.NewAccountRepository,
			auth.NewAuthService,
			audit.NewAuditRepository,
			audit.NewAuditService,
			func(s audit.AuditService) inventory.Auditor { return s },
			inventory.NewRepository,
			inventory.NewInventoryService,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(Seed),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal(err)
	}

	<-app.Done()

	if err := app.Stop(context.Background()); err != nil {
		log.Fatal(err)
	}
}
