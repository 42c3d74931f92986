// Package storage persists content records and answers OR-combined substring
// filters over their searchable fields.
package storage

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/pathshala/pathshala/internal/conditions"
	"github.com/pathshala/pathshala/internal/config"
	"github.com/pathshala/pathshala/internal/models"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// DefaultSelectLimit caps Select when the caller passes no limit.
const DefaultSelectLimit = 100

// Store defines record persistence operations.
type Store interface {
	// Put inserts rec or replaces the record with the same category and ID.
	Put(ctx context.Context, rec models.Record) error
	Get(ctx context.Context, category models.Category, id string) (models.Record, error)
	Delete(ctx context.Context, category models.Category, id string) error
	// DeleteBySource removes every record imported from source except the
	// ones named in keep.
	DeleteBySource(ctx context.Context, source string, keep ...Key) (int64, error)
	// Select returns up to limit records of category matching any of conds,
	// newest first. An empty condition list matches nothing.
	Select(ctx context.Context, category models.Category, conds conditions.List, limit int) ([]models.Record, error)
	Count(ctx context.Context, category models.Category) (int64, error)
	Close() error
}

// Key identifies a stored record.
type Key struct {
	Category models.Category
	ID       string
}

// KeyOf returns the key of rec.
func KeyOf(rec models.Record) Key {
	return Key{Category: rec.Category(), ID: rec.Meta().ID}
}

func keySet(keys []Key) map[Key]bool {
	set := make(map[Key]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set
}

// Open returns the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case config.DriverSQLite, "":
		return NewSQLiteStore(cfg.DatabasePath)
	case config.DriverPostgres:
		return NewPostgresStore(ctx, cfg)
	case config.DriverBleve:
		return NewBleveStore(cfg.BleveIndexPath)
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}

// Paths returns the on-disk locations used by cfg, for disk usage reporting.
func Paths(cfg config.StorageConfig) []string {
	switch cfg.Driver {
	case config.DriverBleve:
		return []string{cfg.BleveIndexPath}
	case config.DriverPostgres:
		return nil
	}
	return []string{cfg.DatabasePath, cfg.DatabasePath + "-wal", cfg.DatabasePath + "-shm"}
}

func validateRecord(rec models.Record) error {
	if rec == nil {
		return fmt.Errorf("record is nil")
	}
	if rec.Meta().ID == "" {
		return fmt.Errorf("record id is required")
	}
	if !rec.Category().Valid() {
		return fmt.Errorf("%w: %q", models.ErrUnknownCategory, rec.Category())
	}
	return nil
}

// checkConditions rejects fields outside the category whitelist, since
// field names end up in query text.
func checkConditions(category models.Category, conds conditions.List) error {
	allowed := conditions.Whitelist(category)
	if allowed == nil {
		return fmt.Errorf("%w: %q", models.ErrUnknownCategory, category)
	}
	for _, c := range conds {
		if !slices.Contains(allowed, c.Field) {
			return fmt.Errorf("field %q is not searchable for %s", c.Field, category)
		}
	}
	return nil
}
