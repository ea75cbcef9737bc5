package catalog

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrBadgeNotFound is returned for lookups of unknown badge ids.
	ErrBadgeNotFound = errors.New("badge not found")
	// ErrInvalidDefinition marks a badge whose requirement set failed
	// validation at load time.
	ErrInvalidDefinition = errors.New("invalid badge definition")
	// ErrLoadCatalog marks a failure reading or parsing the catalog file.
	ErrLoadCatalog = errors.New("load badge catalog failed")
)
