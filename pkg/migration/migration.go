// Package migration runs and tracks database migrations.
//
// Define a migration in database/migrations and register it from init():
//
//	func init() {
//	    migration.Register("20260101000000_create_products_table", &CreateProductsTable{})
//	}
//
// Run from the CLI: dukaan migrate / migrate:rollback / migrate:status.
package migration

import (
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/dukaanlabs/dukaan/pkg/logger"
)

// Migration is the interface every migration must implement.
type Migration interface {
	Up(db *gorm.DB) error
	Down(db *gorm.DB) error
}

// record is the GORM model stored in the tracking table.
type record struct {
	ID    uint      `gorm:"primaryKey;autoIncrement"`
	Name  string    `gorm:"uniqueIndex;size:255;not null"`
	Batch int       `gorm:"not null"`
	RunAt time.Time `gorm:"autoCreateTime"`
}

func (record) TableName() string { return "dukaan_migrations" }

type registered struct {
	name string
	m    Migration
}

var registry []registered

// Register adds a migration to the global registry. Use a timestamp-prefixed
// name so registration order matches chronology.
func Register(name string, m Migration) {
	registry = append(registry, registered{name: name, m: m})
}

// Runner executes and tracks migrations.
type Runner struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Runner {
	return &Runner{db: db}
}

// EnsureTable creates the tracking table if it does not exist.
func (r *Runner) EnsureTable() error {
	return r.db.AutoMigrate(&record{})
}

// Up applies every pending migration as one batch.
func (r *Runner) Up() error {
	if err := r.EnsureTable(); err != nil {
		return fmt.Errorf("migration: ensure table: %w", err)
	}

	applied, err := r.appliedNames()
	if err != nil {
		return err
	}

	batch, err := r.nextBatch()
	if err != nil {
		return err
	}

	ran := 0
	for _, reg := range registry {
		if applied[reg.name] {
			continue
		}

		logger.Info("migrating", "name", reg.name)
		if err := reg.m.Up(r.db); err != nil {
			return fmt.Errorf("migration %q: %w", reg.name, err)
		}

		if err := r.db.Create(&record{Name: reg.name, Batch: batch}).Error; err != nil {
			return fmt.Errorf("migration: track %q: %w", reg.name, err)
		}
		ran++
	}

	if ran == 0 {
		logger.Info("nothing to migrate")
	}
	return nil
}

// Rollback reverses the most recent batch in reverse registration order.
func (r *Runner) Rollback() error {
	if err := r.EnsureTable(); err != nil {
		return fmt.Errorf("migration: ensure table: %w", err)
	}

	var last int
	if err := r.db.Model(&record{}).Select("COALESCE(MAX(batch), 0)").Scan(&last).Error; err != nil {
		return fmt.Errorf("migration: last batch: %w", err)
	}
	if last == 0 {
		logger.Info("nothing to rollback")
		return nil
	}

	var records []record
	if err := r.db.Where("batch = ?", last).Find(&records).Error; err != nil {
		return fmt.Errorf("migration: load batch %d: %w", last, err)
	}

	byName := make(map[string]Migration, len(registry))
	for _, reg := range registry {
		byName[reg.name] = reg.m
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Name > records[j].Name })

	for _, rec := range records {
		m, ok := byName[rec.Name]
		if !ok {
			return fmt.Errorf("migration: %q is recorded but not registered", rec.Name)
		}

		logger.Info("rolling back", "name", rec.Name)
		if err := m.Down(r.db); err != nil {
			return fmt.Errorf("rollback %q: %w", rec.Name, err)
		}

		if err := r.db.Delete(&record{}, rec.ID).Error; err != nil {
			return fmt.Errorf("migration: untrack %q: %w", rec.Name, err)
		}
	}
	return nil
}

// StatusEntry pairs a registered migration with its applied state.
type StatusEntry struct {
	Name    string
	Applied bool
	Batch   int
}

// Status returns every registered migration with its applied state.
func (r *Runner) Status() ([]StatusEntry, error) {
	if err := r.EnsureTable(); err != nil {
		return nil, fmt.Errorf("migration: ensure table: %w", err)
	}

	var records []record
	if err := r.db.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("migration: load records: %w", err)
	}

	batches := make(map[string]int, len(records))
	for _, rec := range records {
		batches[rec.Name] = rec.Batch
	}

	out := make([]StatusEntry, 0, len(registry))
	for _, reg := range registry {
		batch, ok := batches[reg.name]
		out = append(out, StatusEntry{Name: reg.name, Applied: ok, Batch: batch})
	}
	return out, nil
}

func (r *Runner) appliedNames() (map[string]bool, error) {
	var records []record
	if err := r.db.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("migration: load records: %w", err)
	}

	applied := make(map[string]bool, len(records))
	for _, rec := range records {
		applied[rec.Name] = true
	}
	return applied, nil
}

func (r *Runner) nextBatch() (int, error) {
	var last int
	if err := r.db.Model(&record{}).Select("COALESCE(MAX(batch), 0)").Scan(&last).Error; err != nil {
		return 0, fmt.Errorf("migration: last batch: %w", err)
	}
	return last + 1, nil
}
