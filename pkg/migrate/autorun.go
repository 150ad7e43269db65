package migrate

import (
	"context"
	"fmt"

	"github.com/vintrack/vintrack-backend/pkg/config"
	"github.com/vintrack/vintrack-backend/pkg/db"
	"github.com/vintrack/vintrack-backend/pkg/db/models"
	"github.com/vintrack/vintrack-backend/pkg/logger"
)

// MaybeRunDev prepares the schema automatically when the app is running in dev
// mode and the feature flag is enabled. The embedded sqlite store is migrated
// through GORM's AutoMigrate; postgres goes through the goose SQL migrations.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	meta := map[string]any{"env": cfg.App.Env, "driver": cfg.DB.Driver}
	ctx = logg.WithFields(ctx, meta)

	if cfg.DB.Driver == config.DriverSQLite {
		logg.Info(ctx, "auto-migrating embedded sqlite schema")
		if err := AutoMigrate(client); err != nil {
			return fmt.Errorf("sqlite auto-migrate: %w", err)
		}
		logg.Info(ctx, "sqlite schema ready")
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	logg.Info(ctx, "running Goose migrations (dev auto-run)")
	if err := Run(ctx, sqlDB, cfg.DB.Driver, DefaultDir, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}
	logg.Info(ctx, "Goose migrations completed")
	return nil
}

// AutoMigrate creates or updates the schema for every tracked model.
func AutoMigrate(client *db.Client) error {
	return client.DB().AutoMigrate(
		&models.Wine{},
		&models.GrapeComposition{},
		&models.InventoryLog{},
		&models.TastingNote{},
	)
}
