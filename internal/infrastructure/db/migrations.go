package db

import (
	"fmt"

	"github.com/lighthouse/backend/internal/domain"
	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	err := db.AutoMigrate(
		&domain.Task{},
		&domain.AssetScope{},
		&domain.TimelineEvent{},
		&domain.SystemSetting{},
	)
	if err != nil {
		return err
	}

	// Result tables are written by the scan worker; the control plane only
	// needs them to exist for listing and cascading deletes.
	for _, c := range domain.ResultCollections {
		if err := db.Table(c).AutoMigrate(&domain.ResultRecord{}); err != nil {
			return fmt.Errorf("migrate result table %s: %w", c, err)
		}
	}

	return createCustomIndexes(db)
}

func createCustomIndexes(db *gorm.DB) error {
	// Substring filters on scope_array scan its elements.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_asset_scope_scope_array
		ON asset_scope USING GIN (scope_array)
	`).Error; err != nil {
		return err
	}

	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_timeline_events_resource
		ON timeline_events (resource_type, resource_id)
		WHERE deleted_at IS NULL
	`).Error; err != nil {
		return err
	}

	for _, c := range domain.ResultCollections {
		if err := db.Exec(fmt.Sprintf(
			`CREATE INDEX IF NOT EXISTS idx_%s_task_id ON %q (task_id)`, c, c,
		)).Error; err != nil {
			return err
		}
	}

	return nil
}
