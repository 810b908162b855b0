// Package seeders provides a registry of database seed functions.
//
// Define a seeder in any file in this package:
//
//	func init() {
//	    seeders.Register("products", SeedProducts)
//	}
//
// Then run via CLI: dukaan seed
package seeders

import (
	"fmt"
	"sync"

	"gorm.io/gorm"

	"github.com/dukaanlabs/dukaan/pkg/logger"
)

// SeederFunc is the signature for a seed function.
type SeederFunc func(db *gorm.DB) error

type entry struct {
	name string
	fn   SeederFunc
}

var (
	mu      sync.Mutex
	entries []entry
)

// Register adds a seeder to the global registry. Call from init().
func Register(name string, fn SeederFunc) {
	mu.Lock()
	defer mu.Unlock()
	entries = append(entries, entry{name: name, fn: fn})
}

// RunAll executes every registered seeder in registration order.
// It stops on the first error.
func RunAll(db *gorm.DB) error {
	mu.Lock()
	current := make([]entry, len(entries))
	copy(current, entries)
	mu.Unlock()

	if len(current) == 0 {
		logger.Info("no seeders registered")
		return nil
	}

	for _, e := range current {
		logger.Info("seeding", "name", e.name)
		if err := e.fn(db); err != nil {
			return fmt.Errorf("seeder %q: %w", e.name, err)
		}
	}
	return nil
}
