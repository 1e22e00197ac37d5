package storage

import (
	"context"
	"errors"
)

// Common errors.
var (
	ErrNotFound = errors.New("record not found")
)

// QueryOptions bounds a primary or secondary key range query.
type QueryOptions struct {
	// SortKeyPrefix restricts the range to sort keys with this prefix.
	SortKeyPrefix string
	// Limit caps the number of returned records. Zero means the store default.
	Limit int
}

// DefaultQueryLimit is applied when QueryOptions.Limit is zero.
const DefaultQueryLimit = 50

// Store is the wide-column store consumed by the lookup layer.
type Store interface {
	// Query returns records under a partition key, optionally restricted by
	// sort-key prefix, in sort-key order.
	Query(ctx context.Context, pk string, opts QueryOptions) ([]Record, error)
	// QueryIndex returns records via the secondary index partition key.
	QueryIndex(ctx context.Context, gsi1pk string, opts QueryOptions) ([]Record, error)
	// ScanEntities streams every record with the given entity type through fn.
	// Scanning stops when fn returns false.
	ScanEntities(ctx context.Context, entity EntityType, fn func(Record) bool) error
}
