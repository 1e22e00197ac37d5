package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omniretail-ai/support-engine/internal/audit"
	"github.com/omniretail-ai/support-engine/internal/config"
	"github.com/omniretail-ai/support-engine/internal/observability"
	"github.com/omniretail-ai/support-engine/internal/storage"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()

	store := storage.NewMemoryStore()
	store.PutAll(
		storage.Record{
			"pk": "PRODUCT#P1", "sk": "PROFILE", "entity": "product",
			"product_id": "P1", "name": "Monitor Curvo Samsung 27", "price": 1200.0,
			"stock_qty": 5.0, "reserved_qty": 1.0,
		},
		storage.Record{
			"pk": "CUSTOMER#C100", "sk": "PROFILE", "entity": "customer",
			"customer_id": "C100", "dni": "12345678",
			"name": "María José", "last_name1": "Gutiérrez", "last_name2": "Muñoz",
			"phone":  "+57 300 123 4567",
			"gsi1pk": "DNI#12345678", "gsi1sk": "CUSTOMER#C100",
		},
	)

	cfg := config.DefaultConfig()
	cfg.Cache.Driver = "memory"
	cfg.Analytics.Engine = "sql"
	cfg.Analytics.SQL.Driver = "sqlite3"
	cfg.Analytics.SQL.DSN = ":memory:"

	eng, err := NewWithStore(context.Background(), cfg, observability.Discard(), store)
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })

	return eng
}

func TestEngineLookupRecordsAudit(t *testing.T) {
	eng := testEngine(t)
	ctx := context.Background()

	out := eng.Lookup(ctx, "PRODUCTO:monitor samsung")
	assert.Contains(t, out, "Monitor Curvo Samsung 27")

	out = eng.Lookup(ctx, "sin formato")
	assert.Contains(t, out, "❌ Formato inválido")

	out = eng.Lookup(ctx, "PRODUCTO:zzzzzz")
	assert.Contains(t, out, "Sin resultados")

	events := eng.Audit().Recent(10)
	require.Len(t, events, 3)

	// Most recent first
	assert.Equal(t, audit.OutcomeNoResults, events[0].Outcome)
	assert.Equal(t, audit.OutcomeUserError, events[1].Outcome)
	assert.Equal(t, "INVALID", events[1].Subject)
	assert.Equal(t, audit.OutcomeOK, events[2].Outcome)
	assert.Equal(t, "PRODUCTO", events[2].Subject)
	for _, ev := range events {
		assert.Equal(t, audit.KindLookup, ev.Kind)
	}
}

func TestEngineReportRejectsUnsafeSQL(t *testing.T) {
	eng := testEngine(t)
	ctx := context.Background()

	out := eng.Report(ctx, "DELETE FROM orders")
	assert.Equal(t, "❌ Solo se permiten consultas SELECT.", out)

	out = eng.Report(ctx, "SELECT * FROM orders; DROP TABLE orders")
	assert.Equal(t, "❌ Consulta no permitida por razones de seguridad.", out)

	events := eng.Audit().Recent(10)
	require.Len(t, events, 2)
	for _, ev := range events {
		assert.Equal(t, audit.KindReport, ev.Kind)
		assert.Equal(t, audit.OutcomeUserError, ev.Outcome)
		assert.NotEmpty(t, ev.Subject)
	}
}

func TestEngineWarmAndSnapshot(t *testing.T) {
	eng := testEngine(t)

	// WarmOnStart already built one
	snap := eng.Snapshot()
	require.NotNil(t, snap)
	assert.Len(t, snap.Products, 1)
	assert.Len(t, snap.Customers, 1)

	snap2, err := eng.Warm(context.Background())
	require.NoError(t, err)
	assert.True(t, snap2.BuiltAt.After(snap.BuiltAt) || snap2.BuiltAt.Equal(snap.BuiltAt))
}
