package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/google/uuid"

	// Drivers for the local development profile.
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/omniretail-ai/support-engine/internal/observability"
)

// SQLEngine executes analytical queries against a local SQL database while
// mirroring the asynchronous submit/poll/fetch contract, so the runner
// stays engine-agnostic. Each submitted query runs in its own goroutine.
type SQLEngine struct {
	db     *sql.DB
	logger *observability.Logger

	mu   sync.Mutex
	jobs map[string]*sqlJob
}

type sqlJob struct {
	state  JobState
	reason string
	result *ResultSet
}

// NewSQLEngine opens the database and returns a local analytical engine.
// Supported drivers: postgres, sqlite3.
func NewSQLEngine(driver, dsn string, logger *observability.Logger) (*SQLEngine, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	return &SQLEngine{
		db:     db,
		logger: logger.WithComponent("sql-engine"),
		jobs:   make(map[string]*sqlJob),
	}, nil
}

// NewSQLEngineFromDB wraps an existing database handle. Used by tests.
func NewSQLEngineFromDB(db *sql.DB, logger *observability.Logger) *SQLEngine {
	return &SQLEngine{
		db:     db,
		logger: logger.WithComponent("sql-engine"),
		jobs:   make(map[string]*sqlJob),
	}
}

// Submit registers a job and runs the query on its own goroutine.
func (e *SQLEngine) Submit(ctx context.Context, sqlText string) (string, error) {
	jobID := uuid.NewString()

	e.mu.Lock()
	e.jobs[jobID] = &sqlJob{state: StateSubmitted}
	e.mu.Unlock()

	go e.run(jobID, sqlText)

	return jobID, nil
}

func (e *SQLEngine) run(jobID, sqlText string) {
	result, err := e.execute(sqlText)

	e.mu.Lock()
	defer e.mu.Unlock()

	job := e.jobs[jobID]
	if job == nil {
		return
	}
	if err != nil {
		job.state = StateFailed
		job.reason = err.Error()
		return
	}
	job.state = StateSucceeded
	job.result = result
}

func (e *SQLEngine) execute(sqlText string) (*ResultSet, error) {
	rows, err := e.db.Query(sqlText)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	// Synthetic header echo keeps parity with the Athena payload shape.
	rs := &ResultSet{Columns: columns, Rows: [][]string{columns}}

	values := make([]sql.NullString, len(columns))
	scanArgs := make([]interface{}, len(columns))
	for i := range values {
		scanArgs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(scanArgs...); err != nil {
			return nil, err
		}
		row := make([]string, len(columns))
		for i, v := range values {
			if v.Valid {
				row[i] = v.String
			}
		}
		rs.Rows = append(rs.Rows, row)
	}

	return rs, rows.Err()
}

// Status reports the state of a job.
func (e *SQLEngine) Status(ctx context.Context, jobID string) (JobStatus, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	job, ok := e.jobs[jobID]
	if !ok {
		return JobStatus{}, fmt.Errorf("unknown job %s", jobID)
	}
	return JobStatus{State: job.state, Reason: job.reason}, nil
}

// Results returns the payload of a succeeded job, capped to maxRows data
// rows plus the header echo.
func (e *SQLEngine) Results(ctx context.Context, jobID string, maxRows int) (*ResultSet, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	job, ok := e.jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("unknown job %s", jobID)
	}
	if job.state != StateSucceeded || job.result == nil {
		return nil, fmt.Errorf("job %s has no results", jobID)
	}

	rs := &ResultSet{Columns: job.result.Columns, Rows: job.result.Rows}
	if maxRows > 0 && len(rs.Rows) > maxRows+1 {
		rs.Rows = rs.Rows[:maxRows+1]
	}
	return rs, nil
}

// Close closes the underlying database handle.
func (e *SQLEngine) Close() error {
	return e.db.Close()
}
