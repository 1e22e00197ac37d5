package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is a deterministic in-memory Store used by tests and the
// local development profile. Records within a partition are kept in
// sort-key order.
type MemoryStore struct {
	mu         sync.RWMutex
	partitions map[string][]Record
	index      map[string][]Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		partitions: make(map[string][]Record),
		index:      make(map[string][]Record),
	}
}

// Put inserts or replaces a record, keyed by pk+sk.
func (s *MemoryStore) Put(rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pk, sk := rec.PK(), rec.SK()
	rows := s.partitions[pk]
	replaced := false
	for i, existing := range rows {
		if existing.SK() == sk {
			rows[i] = rec
			replaced = true
			break
		}
	}
	if !replaced {
		rows = append(rows, rec)
		sort.Slice(rows, func(i, j int) bool { return rows[i].SK() < rows[j].SK() })
	}
	s.partitions[pk] = rows

	if gpk := rec.Str(AttrGSI1PK); gpk != "" {
		entries := s.index[gpk]
		for i, existing := range entries {
			if existing.PK() == pk && existing.SK() == sk {
				entries = append(entries[:i], entries[i+1:]...)
				break
			}
		}
		s.index[gpk] = append(entries, rec)
	}
}

// PutAll inserts a batch of records.
func (s *MemoryStore) PutAll(recs ...Record) {
	for _, rec := range recs {
		s.Put(rec)
	}
}

// Query returns records under a partition key in sort-key order.
func (s *MemoryStore) Query(ctx context.Context, pk string, opts QueryOptions) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultQueryLimit
	}

	var out []Record
	for _, rec := range s.partitions[pk] {
		if opts.SortKeyPrefix != "" && !strings.HasPrefix(rec.SK(), opts.SortKeyPrefix) {
			continue
		}
		out = append(out, rec)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

// QueryIndex returns records via the secondary index partition key.
func (s *MemoryStore) QueryIndex(ctx context.Context, gsi1pk string, opts QueryOptions) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultQueryLimit
	}

	var out []Record
	for _, rec := range s.index[gsi1pk] {
		if opts.SortKeyPrefix != "" && !strings.HasPrefix(rec.Str(AttrGSI1SK), opts.SortKeyPrefix) {
			continue
		}
		out = append(out, rec)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

// ScanEntities streams every record with the given entity type.
func (s *MemoryStore) ScanEntities(ctx context.Context, entity EntityType, fn func(Record) bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	pks := make([]string, 0, len(s.partitions))
	for pk := range s.partitions {
		pks = append(pks, pk)
	}
	sort.Strings(pks)

	for _, pk := range pks {
		for _, rec := range s.partitions[pk] {
			if rec.Entity() != entity {
				continue
			}
			if !fn(rec) {
				return nil
			}
		}
	}
	return nil
}
