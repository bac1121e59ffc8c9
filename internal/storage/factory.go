package storage

import "fmt"

// NewStore builds a Store for the requested backend kind. An empty kind
// selects the in-memory backend.
func NewStore(kind, sqlitePath string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return newSQLiteStore(sqlitePath)
	default:
		return nil, fmt.Errorf("unknown store kind %q", kind)
	}
}

// CloseIfSupported closes stores that hold external resources.
func CloseIfSupported(s Store) error {
	type closer interface {
		Close() error
	}
	if c, ok := s.(closer); ok {
		return c.Close()
	}
	return nil
}
