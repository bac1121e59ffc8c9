//go:build !sqlite

package storage

import "errors"

// DefaultStoreKind reports the backend used when none is requested.
func DefaultStoreKind() string {
	return "memory"
}

func newSQLiteStore(path string) (Store, error) {
	return nil, errors.New("sqlite support is not compiled in, rebuild with -tags sqlite")
}
