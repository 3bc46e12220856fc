package storage

import "errors"

var (
	ErrSnapshotNotFound = errors.New("snapshot not found")
	ErrLookupNotFound   = errors.New("lookup table not cached")
)
