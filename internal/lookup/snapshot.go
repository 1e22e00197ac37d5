package lookup

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/omniretail-ai/support-engine/internal/observability"
	"github.com/omniretail-ai/support-engine/internal/storage"
)

// Entry is one snapshot record augmented with its precomputed search key.
type Entry struct {
	Record    storage.Record
	SearchKey string
}

// Snapshot holds the in-memory product and customer collections built from a
// full entity-filtered scan. Immutable after construction; a refresh
// publishes a whole new snapshot.
type Snapshot struct {
	Products  []Entry
	Customers []Entry
	BuiltAt   time.Time
}

// BuildSnapshot scans the store for product and customer records and builds
// the search index. Products carry a derived available_qty attribute
// (stock_qty minus reserved_qty, zero when either is non-numeric).
func BuildSnapshot(ctx context.Context, store storage.Store, logger *observability.Logger) (*Snapshot, error) {
	started := time.Now()
	snap := &Snapshot{BuiltAt: started}

	err := store.ScanEntities(ctx, storage.EntityProduct, func(rec storage.Record) bool {
		augmented := make(storage.Record, len(rec)+1)
		for k, v := range rec {
			augmented[k] = v
		}
		augmented["available_qty"] = availableQty(rec)
		snap.Products = append(snap.Products, Entry{
			Record:    augmented,
			SearchKey: Normalize(rec.Str("name")),
		})
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("scan products: %w", err)
	}

	err = store.ScanEntities(ctx, storage.EntityCustomer, func(rec storage.Record) bool {
		fullName := strings.TrimSpace(rec.Str("name") + " " + rec.Str("last_name1") + " " + rec.Str("last_name2"))
		snap.Customers = append(snap.Customers, Entry{
			Record:    rec,
			SearchKey: Normalize(fullName),
		})
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("scan customers: %w", err)
	}

	logger.Info().
		Int("products", len(snap.Products)).
		Int("customers", len(snap.Customers)).
		Dur("elapsed", time.Since(started)).
		Msg("Snapshot built")

	return snap, nil
}

func availableQty(rec storage.Record) int {
	stock, ok1 := numeric(rec["stock_qty"])
	reserved, ok2 := numeric(rec["reserved_qty"])
	if !ok1 || !ok2 {
		return 0
	}
	return stock - reserved
}

func numeric(v interface{}) (int, bool) {
	switch val := v.(type) {
	case float64:
		return int(val), true
	case int:
		return val, true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0, false
		}
		return n, true
	case nil:
		return 0, true
	default:
		return 0, false
	}
}
