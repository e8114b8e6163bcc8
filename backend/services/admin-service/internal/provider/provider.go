// Package provider implements the per-entity data providers behind the list
// views: in-memory collections, PostgreSQL tables and a Redis page cache.
package provider

import "errors"

// ErrNotFound is returned for an id that no longer exists.
var ErrNotFound = errors.New("provider: record not found")
