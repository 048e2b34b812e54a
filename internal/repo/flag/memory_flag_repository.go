package flag

import (
	"context"
	"sync"
)

// MemoryFlagRepository implements Repository with an in-process map. Used by
// tests and by schedulers that run placement and redemption in one process.
type MemoryFlagRepository struct {
	values map[string][]byte
	mutex  sync.RWMutex
}

var _ Repository = (*MemoryFlagRepository)(nil)

// MemoryFlagRepositoryFactory creates a factory function that returns a new
// MemoryFlagRepository.
func MemoryFlagRepositoryFactory() RepositoryFactory {
	return func() (Repository, error) {
		return NewMemoryFlagRepository(), nil
	}
}

// NewMemoryFlagRepository creates an empty in-memory flag repository.
func NewMemoryFlagRepository() *MemoryFlagRepository {
	return &MemoryFlagRepository{
		values: make(map[string][]byte),
	}
}

// Put implements Repository.Put.
func (r *MemoryFlagRepository) Put(_ context.Context, field string, tick int, value []byte) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	r.values[Key(field, tick)] = stored

	return nil
}

// Get implements Repository.Get.
func (r *MemoryFlagRepository) Get(_ context.Context, field string, tick int) ([]byte, bool, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	value, ok := r.values[Key(field, tick)]

	return value, ok, nil
}

// Close implements Repository.Close. It is a no-op for the in-memory store.
func (r *MemoryFlagRepository) Close() error {
	return nil
}
