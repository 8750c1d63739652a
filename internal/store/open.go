package store

import (
	"fmt"

	"github.com/Githaiga22/movie-hub/internal/domain"
)

// Backend names accepted by Open
const (
	BackendBolt   = "bolt"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Open returns the key-value store for the configured backend.
// An empty backend selects bolt.
func Open(backend, dir string) (domain.KeyValueStore, error) {
	switch backend {
	case "", BackendBolt:
		s, err := NewBoltStore(dir)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendSQLite:
		s, err := NewSQLiteStore(dir)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendMemory:
		return NewBoltStore("")
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
