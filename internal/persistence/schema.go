package persistence

import (
	"context"
	"fmt"

	"example.com/runtracker/internal/outbox"
)

func models() []any {
	return []any{&WorkoutRecord{}, &ActivityRecord{}, &outbox.Record{}}
}

// Migrate creates missing tables and columns without touching data.
func (d *Database) Migrate(ctx context.Context) error {
	if err := d.Gorm.WithContext(ctx).AutoMigrate(models()...); err != nil {
		return fmt.Errorf("persistence: migrate: %w", err)
	}
	return nil
}

// ResetSchema drops every table and recreates it empty. Development only.
func (d *Database) ResetSchema(ctx context.Context) error {
	migrator := d.Gorm.WithContext(ctx).Migrator()
	if err := migrator.DropTable(&outbox.Record{}, &ActivityRecord{}, &WorkoutRecord{}); err != nil {
		return fmt.Errorf("persistence: drop schema: %w", err)
	}
	return d.Migrate(ctx)
}
