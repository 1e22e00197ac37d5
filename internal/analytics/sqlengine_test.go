package analytics

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omniretail-ai/support-engine/internal/observability"
)

func sqliteEngine(t *testing.T) *SQLEngine {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE products (product_id TEXT, name TEXT, category TEXT, price REAL)`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO products VALUES
		('P1', 'Monitor 24', 'monitores', 450),
		('P2', 'Teclado', 'perifericos', 80),
		('P3', 'Mouse', 'perifericos', 35)`)
	require.NoError(t, err)

	return NewSQLEngineFromDB(db, observability.Discard())
}

func waitTerminal(t *testing.T, e *SQLEngine, jobID string) JobStatus {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for {
		status, err := e.Status(context.Background(), jobID)
		require.NoError(t, err)
		if status.State.Terminal() {
			return status
		}
		if time.Now().After(deadline) {
			t.Fatal("job did not reach a terminal state")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSQLEngineSubmitAndFetch(t *testing.T) {
	e := sqliteEngine(t)
	ctx := context.Background()

	jobID, err := e.Submit(ctx, "SELECT category, COUNT(*) AS total FROM products GROUP BY category ORDER BY category LIMIT 50")
	require.NoError(t, err)

	status := waitTerminal(t, e, jobID)
	require.Equal(t, StateSucceeded, status.State)

	rs, err := e.Results(ctx, jobID, 20)
	require.NoError(t, err)
	assert.Equal(t, []string{"category", "total"}, rs.Columns)

	// Header echo first, then the grouped rows
	require.Len(t, rs.Rows, 3)
	assert.Equal(t, []string{"category", "total"}, rs.Rows[0])
	assert.Equal(t, []string{"monitores", "1"}, rs.Rows[1])
	assert.Equal(t, []string{"perifericos", "2"}, rs.Rows[2])
}

func TestSQLEngineFailureCarriesReason(t *testing.T) {
	e := sqliteEngine(t)
	ctx := context.Background()

	jobID, err := e.Submit(ctx, "SELECT * FROM missing_table LIMIT 50")
	require.NoError(t, err)

	status := waitTerminal(t, e, jobID)
	assert.Equal(t, StateFailed, status.State)
	assert.NotEmpty(t, status.Reason)

	_, err = e.Results(ctx, jobID, 20)
	assert.Error(t, err)
}

func TestSQLEngineCapsResultRows(t *testing.T) {
	e := sqliteEngine(t)
	ctx := context.Background()

	jobID, err := e.Submit(ctx, "SELECT p1.product_id FROM products p1, products p2 LIMIT 50")
	require.NoError(t, err)

	status := waitTerminal(t, e, jobID)
	require.Equal(t, StateSucceeded, status.State)

	rs, err := e.Results(ctx, jobID, 5)
	require.NoError(t, err)
	assert.Len(t, rs.Rows, 6)
}

func TestSQLEngineUnknownJob(t *testing.T) {
	e := sqliteEngine(t)
	ctx := context.Background()

	_, err := e.Status(ctx, "nope")
	assert.Error(t, err)

	_, err = e.Results(ctx, "nope", 20)
	assert.Error(t, err)
}
