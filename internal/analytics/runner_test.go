package analytics

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omniretail-ai/support-engine/internal/cache"
	"github.com/omniretail-ai/support-engine/internal/observability"
)

// fakeEngine scripts an engine for runner tests.
type fakeEngine struct {
	submits     int
	statusCalls int
	// statuses served in order; the last repeats.
	statuses  []JobStatus
	result    *ResultSet
	submitErr error
}

func (f *fakeEngine) Submit(ctx context.Context, sql string) (string, error) {
	f.submits++
	if f.submitErr != nil {
		return "", f.submitErr
	}
	return "job-1", nil
}

func (f *fakeEngine) Status(ctx context.Context, jobID string) (JobStatus, error) {
	idx := f.statusCalls
	if idx >= len(f.statuses) {
		idx = len(f.statuses) - 1
	}
	f.statusCalls++
	return f.statuses[idx], nil
}

func (f *fakeEngine) Results(ctx context.Context, jobID string, maxRows int) (*ResultSet, error) {
	return f.result, nil
}

func newTestRunner(engine Engine, maxWait time.Duration) *Runner {
	rc := NewResultCache(cache.NewMemoryClient(100), observability.Discard(), time.Minute)
	return NewRunner(engine, rc, observability.Discard(), RunnerConfig{
		MaxWait: maxWait,
		MaxRows: 20,
	})
}

func TestRunner_ValidationShortCircuits(t *testing.T) {
	engine := &fakeEngine{}
	r := newTestRunner(engine, time.Second)

	out := r.Run(context.Background(), "DROP TABLE orders")
	assert.Equal(t, textOnlySelect, out)
	assert.Zero(t, engine.submits)
}

func TestRunner_Success(t *testing.T) {
	engine := &fakeEngine{
		statuses: []JobStatus{{State: StateSucceeded}},
		result: &ResultSet{
			Columns: []string{"name", "total"},
			Rows: [][]string{
				{"name", "total"}, // header echo, dropped
				{"Monitor", "4500"},
				{"Teclado", "1200"},
			},
		},
	}
	r := newTestRunner(engine, time.Second)

	out := r.Run(context.Background(), "SELECT name, total FROM v")
	assert.Equal(t, "name | total\nMonitor | 4500\nTeclado | 1200", out)
}

func TestRunner_ZeroRows(t *testing.T) {
	engine := &fakeEngine{
		statuses: []JobStatus{{State: StateSucceeded}},
		result: &ResultSet{
			Columns: []string{"name"},
			Rows:    [][]string{{"name"}}, // header echo only
		},
	}
	r := newTestRunner(engine, time.Second)

	out := r.Run(context.Background(), "SELECT name FROM v WHERE 1=0")
	assert.Equal(t, textZeroRows, out)
}

func TestRunner_EngineFailure(t *testing.T) {
	engine := &fakeEngine{
		statuses: []JobStatus{{State: StateFailed, Reason: "SYNTAX_ERROR: line 1"}},
	}
	r := newTestRunner(engine, time.Second)

	out := r.Run(context.Background(), "SELECT bogus FROM nowhere")
	assert.Equal(t, "Error SQL en Athena: SYNTAX_ERROR: line 1", out)
}

func TestRunner_FailureWithoutReason(t *testing.T) {
	engine := &fakeEngine{
		statuses: []JobStatus{{State: StateCancelled}},
	}
	r := newTestRunner(engine, time.Second)

	out := r.Run(context.Background(), "SELECT 1 FROM t")
	assert.Equal(t, "Error SQL en Athena: Error desconocido", out)
}

func TestRunner_TimeoutDistinctFromFailure(t *testing.T) {
	// Job never leaves SUBMITTED; the wall-clock budget expires.
	engine := &fakeEngine{
		statuses: []JobStatus{{State: StateSubmitted}},
	}
	r := newTestRunner(engine, 200*time.Millisecond)

	out := r.Run(context.Background(), "SELECT heavy FROM wide")
	assert.Equal(t, textTimeout, out)
	assert.Greater(t, engine.statusCalls, 1)
}

func TestRunner_TransportError(t *testing.T) {
	engine := &fakeEngine{submitErr: errors.New("connection refused")}
	r := newTestRunner(engine, time.Second)

	out := r.Run(context.Background(), "SELECT 1 FROM t")
	assert.Equal(t, "Excepción de conexión: connection refused", out)
}

func TestRunner_CacheHitSkipsSubmission(t *testing.T) {
	engine := &fakeEngine{
		statuses: []JobStatus{{State: StateSucceeded}},
		result: &ResultSet{
			Columns: []string{"n"},
			Rows:    [][]string{{"n"}, {"42"}},
		},
	}
	r := newTestRunner(engine, time.Second)

	first := r.Run(context.Background(), "SELECT n FROM t")
	second := r.Run(context.Background(), "SELECT n FROM t")

	assert.Equal(t, first, second)
	assert.Equal(t, 1, engine.submits)
}

func TestRunner_CacheKeyIsBoundQuery(t *testing.T) {
	engine := &fakeEngine{
		statuses: []JobStatus{{State: StateSucceeded}},
		result: &ResultSet{
			Columns: []string{"n"},
			Rows:    [][]string{{"n"}, {"42"}},
		},
	}
	r := newTestRunner(engine, time.Second)

	r.Run(context.Background(), "SELECT n FROM t")

	// The unlimited query was bound to LIMIT 50; the explicitly bounded
	// variant is a different key and submits again.
	r.Run(context.Background(), "SELECT n FROM t LIMIT 10")
	assert.Equal(t, 2, engine.submits)

	// The literal bound text hits the cache of the first call.
	r.Run(context.Background(), "SELECT n FROM t LIMIT 50")
	assert.Equal(t, 2, engine.submits)
}

func TestRunner_RowCap(t *testing.T) {
	rows := [][]string{{"n"}}
	for i := 0; i < 30; i++ {
		rows = append(rows, []string{"x"})
	}
	engine := &fakeEngine{
		statuses: []JobStatus{{State: StateSucceeded}},
		result:   &ResultSet{Columns: []string{"n"}, Rows: rows},
	}
	r := newTestRunner(engine, time.Second)

	out := r.Run(context.Background(), "SELECT n FROM wide")
	require.NotEmpty(t, out)
	// header line + 20 data rows
	assert.Len(t, strings.Split(out, "\n"), 21)
}
