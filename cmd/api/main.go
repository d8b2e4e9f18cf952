package main

import (
	"context"
	"fmt"
	"time"

	common_api "go-agrofleet/internal/common/api"
	"go-agrofleet/internal/config"
	"go-agrofleet/internal/database"
	"go-agrofleet/internal/features/audit"
	"go-agrofleet/internal/features/auth"
	cron_feature "go-agrofleet/internal/features/cron"
	"go-agrofleet/internal/features/export"
	"go-agrofleet/internal/features/filter_session"
	import_feature "go-agrofleet/internal/features/import"
	"go-agrofleet/internal/features/inventory"
	"go-agrofleet/internal/features/saved_filter"
	"go-agrofleet/internal/features/system"
	"go-agrofleet/internal/logger"
	"go-agrofleet/internal/middleware"
	"go-agrofleet/pkg/utils"

	_ "go-agrofleet/docs" // Import swagger docs

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer(cfg *config.Config) *fiber.App {
	utils.SetSecret(cfg.JWTSecret)

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             32 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(middleware.CORSMiddleware())

	return app
}

// AsRoute tags the constructor so Fx adds it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),
		fx.ResultTags(`group:"routes"`),
	)
}

// RegisterAllRoutes calls Setup() on every member of the "routes" group.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route, log *zap.Logger) {
	for _, route := range routes {
		log.Debug("registering routes", zap.String("api", fmt.Sprintf("%T", route)))
		route.Setup(app)
	}
	log.Info("all routes registered", zap.Int("count", len(routes)))
}

var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`, ``),
)

// StartServer starts Fiber in a goroutine and shuts it down when the app exits.
func StartServer(lc fx.Lifecycle, shutdowner fx.Shutdowner, app *fiber.App, cfg *config.Config, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				log.Info("server listening", zap.String("addr", port))
				if err := app.Listen(port); err != nil {
					log.Error("server failed", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.ShutdownWithContext(ctx)
		},
	})
}

// InitializeIndexes prepares the account and item stores and warms the options catalogs
func InitializeIndexes(lc fx.Lifecycle, repo inventory.Repository, accounts auth.AccountRepository, inventoryService inventory.InventoryService, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				if err := accounts.EnsureIndexes(ctx); err != nil {
					log.Error("failed to ensure account indexes", zap.Error(err))
				}
				if err := repo.EnsureIndexes(ctx); err != nil {
					log.Error("failed to ensure inventory indexes", zap.Error(err))
					return
				}
				if err := inventoryService.RefreshCatalogs(ctx); err != nil {
					log.Warn("initial catalog refresh failed", zap.Error(err))
				}
			}()
			return nil
		},
	})
}

// StartScheduler runs the maintenance cron jobs for the lifetime of the app
func StartScheduler(lc fx.Lifecycle, cronService cron_feature.CronService) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return cronService.InitializeScheduler(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return cronService.StopScheduler()
		},
	})
}

// @title           AgroFleet API
// @version         1.0
// @description     Inventory and maintenance API for agricultural machinery fleets.

// @contact.name    API Support

// @host            localhost:8080
// @BasePath        /
func main() {
	app := fx.New(
		fx.Provide(
			// Load Config
			config.LoadConfig,

			// Initialize Databases
			database.NewDatabase,
			database.NewPostgres,

			// Initialize Logger
			logger.NewLogger,

			// Initialize Fiber Server
			NewFiberServer,

			// Initialize Repository
			inventory.NewRepository,
			auth.NewAccountRepository,
			audit.NewAuditRepository,
			saved_filter.NewSavedFilterRepository,
			import_feature.NewImportRepository,
			cron_feature.NewCronRepository,

			// Initialize Service
			auth.NewAuthService,
			audit.NewAuditService,
			inventory.NewInventoryService,
			filter_session.NewStore,
			filter_session.NewHub,
			filter_session.NewFilterSessionService,
			saved_filter.NewSavedFilterService,
			import_feature.NewImportService,
			export.NewExportService,
			cron_feature.NewCronService,

			// Interface Adapters
			func(s audit.AuditService) inventory.Auditor { return s },

			// Initialize Controller
			auth.NewAuthController,
			audit.NewAuditController,
			inventory.NewInventoryController,
			filter_session.NewFilterSessionController,
			saved_filter.NewSavedFilterController,
			import_feature.NewImportController,
			export.NewExportController,
			cron_feature.NewCronController,
			system.NewHealthController,
			system.NewDebugController,

			// Initialize API Routes
			AsRoute(auth.NewAuthApi),
			AsRoute(audit.NewAuditApi),
			AsRoute(inventory.NewInventoryApi),
			AsRoute(filter_session.NewFilterSessionApi),
			AsRoute(saved_filter.NewSavedFilterApi),
			AsRoute(import_feature.NewImportApi),
			AsRoute(export.NewExportApi),
			AsRoute(cron_feature.NewCronApi),
			AsRoute(system.NewHealthApi),
			AsRoute(system.NewDebugApi),
			AsRoute(system.NewSwaggerApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			// Register Routes & Start
			RegisterAllRoutesWithAnnotation,
			StartServer,
			StartScheduler,
			InitializeIndexes,
		),
	)

	app.Run()
}
