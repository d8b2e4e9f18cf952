package logger

import (
	"context"

	"go-agrofleet/internal/config"
	"go-agrofleet/internal/database"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewLogger builds the console logger and tees every entry into the Mongo log sink
func NewLogger(lc fx.Lifecycle, cfg *config.Config, mongodb *database.MongodbDB) (*zap.Logger, error) {
	var zapConfig zap.Config
	if cfg.Environment == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	// Caller is needed for the function name stored with each entry
	zapConfig.EncoderConfig.FunctionKey = "func"

	baseLogger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}

	sink := NewMongoSink(mongodb.DB.Collection("logs"), cfg.AppId)
	writer := NewDBLogWriter(sink, 1000)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			writer.Close()
			_ = baseLogger.Sync()
			return nil
		},
	})

	return zap.New(NewDBCore(baseLogger.Core(), writer), zap.AddCaller()), nil
}
