package testutils

import (
	"errors"
	"sync"
)

// ErrBlobWrite is returned by MemoryBlobs.Set once FailWrites is set
var ErrBlobWrite = errors.New("blob write failed")

// MemoryBlobs is an in-memory blob store for tests
type MemoryBlobs struct {
	mu         sync.Mutex
	data       map[string]string
	Writes     int
	FailWrites bool
}

// NewMemoryBlobs creates a blob store seeded with the given entries
func NewMemoryBlobs(seed map[string]string) *MemoryBlobs {
	data := make(map[string]string, len(seed))
	for k, v := range seed {
		data[k] = v
	}
	return &MemoryBlobs{data: data}
}

func (m *MemoryBlobs) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryBlobs) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites {
		return ErrBlobWrite
	}
	m.data[key] = value
	m.Writes++
	return nil
}

// Value returns the raw stored value for key
func (m *MemoryBlobs) Value(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key]
}
