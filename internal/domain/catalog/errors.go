package catalog

import "errors"

// Sentinel error kinds for catalog loading.
var (
	ErrReadCatalog    = errors.New("read catalog failed")
	ErrInvalidCatalog = errors.New("invalid catalog")
)
