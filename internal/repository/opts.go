package repository

import (
	"groot/internal/config"

	"github.com/dgraph-io/badger/v4"
)

// dbOptions returns badger options for the repository database. The data
// set is tiny, so memory tables and goroutines are kept small.
func dbOptions(path string, cfg *config.Config) badger.Options {
	return badger.DefaultOptions(path).
		WithSyncWrites(cfg.SyncWrites()).
		WithNumVersionsToKeep(1).
		WithMemTableSize(8 << 20).
		WithNumGoroutines(1).
		WithLogger(nil) // Disable logging noise
}
