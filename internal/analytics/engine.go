package analytics

import (
	"context"
	"errors"
)

// ErrTimeout indicates the poll loop exhausted its wall-clock budget before
// the job reached a terminal state.
var ErrTimeout = errors.New("query exceeded wait budget")

// JobState is the lifecycle state of an in-flight analytical query.
// Engine-native intermediate states (queued, running) map to StateSubmitted.
type JobState string

const (
	StateSubmitted JobState = "SUBMITTED"
	StateSucceeded JobState = "SUCCEEDED"
	StateFailed    JobState = "FAILED"
	StateCancelled JobState = "CANCELLED"
)

// Terminal reports whether a state ends the poll loop.
func (s JobState) Terminal() bool {
	return s == StateSucceeded || s == StateFailed || s == StateCancelled
}

// JobStatus is one observation of a job's state, with the engine's stated
// reason when the state is a failure.
type JobStatus struct {
	State  JobState
	Reason string
}

// ResultSet is the tabular payload of a succeeded query. The first row of
// Rows is the engine's header echo and is dropped before rendering; Columns
// carries the display labels.
type ResultSet struct {
	Columns []string
	Rows    [][]string
}

// Engine is an asynchronous analytical query service: submit a query,
// poll its status, fetch its results.
type Engine interface {
	Submit(ctx context.Context, sql string) (string, error)
	Status(ctx context.Context, jobID string) (JobStatus, error)
	Results(ctx context.Context, jobID string, maxRows int) (*ResultSet, error)
}
