package flag

import (
	"context"
	"fmt"
)

// Repository defines the tick-indexed persistence interface consumed by the
// flag lifecycle protocol. Each (field, tick) pair is written once during
// placement and read back during redemption, possibly by a different process.
type Repository interface {
	// Put stores value under the given field and tick.
	Put(ctx context.Context, field string, tick int, value []byte) error

	// Get retrieves the value stored under the given field and tick.
	// Returns the value and true if present, or nil and false if absent.
	Get(ctx context.Context, field string, tick int) ([]byte, bool, error)

	// Close releases any resources held by the repository.
	Close() error
}

// RepositoryFactory is a function that creates a new Repository instance.
// Returns an error if initialization fails.
type RepositoryFactory func() (Repository, error)

// Key returns the storage key for a field at a tick, zero-padded so keys sort
// chronologically.
func Key(field string, tick int) string {
	return fmt.Sprintf("%s_%03d", field, tick)
}
