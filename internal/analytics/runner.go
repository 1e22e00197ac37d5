package analytics

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/omniretail-ai/support-engine/internal/observability"
)

// User-facing texts of the analytical path.
const (
	textZeroRows = "La consulta se ejecutó correctamente pero no devolvió resultados (0 filas)."
	textTimeout  = "⏳ La consulta tardó demasiado tiempo. Intenta refinar la búsqueda."
)

// pollSchedule is the increasing backoff between status checks; the last
// interval repeats until the wall-clock budget runs out.
var pollSchedule = []time.Duration{
	150 * time.Millisecond,
	350 * time.Millisecond,
	700 * time.Millisecond,
	1 * time.Second,
	1500 * time.Millisecond,
	2 * time.Second,
	3 * time.Second,
}

// Runner drives one analytical query through its full lifecycle:
// Validate, EnsureLimit, CacheCheck, Submit, Poll, Parse, CachePut.
type Runner struct {
	engine  Engine
	cache   *ResultCache
	logger  *observability.Logger
	maxWait time.Duration
	maxRows int
}

// RunnerConfig bounds the poll loop and the rendered output.
type RunnerConfig struct {
	MaxWait time.Duration
	MaxRows int
}

// NewRunner creates a query runner over an engine and a result cache.
func NewRunner(engine Engine, cache *ResultCache, logger *observability.Logger, cfg RunnerConfig) *Runner {
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = 20 * time.Second
	}
	if cfg.MaxRows <= 0 {
		cfg.MaxRows = 20
	}
	return &Runner{
		engine:  engine,
		cache:   cache,
		logger:  logger.WithComponent("runner"),
		maxWait: cfg.MaxWait,
		maxRows: cfg.MaxRows,
	}
}

// Run executes one analytical query end to end. Every outcome is
// user-facing text; no error escapes to the caller.
func (r *Runner) Run(ctx context.Context, sqlText string) string {
	if msg := Validate(sqlText); msg != "" {
		return msg
	}

	sqlText = EnsureLimit(sqlText)

	if cached, ok := r.cache.Get(ctx, sqlText); ok {
		return cached
	}

	jobID, err := r.engine.Submit(ctx, sqlText)
	if err != nil {
		r.logger.Error().Err(err).Msg("Submit failed")
		return fmt.Sprintf("Excepción de conexión: %v", err)
	}

	status, err := r.poll(ctx, jobID)
	if errors.Is(err, ErrTimeout) {
		r.logger.Warn().Str("job_id", jobID).Dur("max_wait", r.maxWait).Msg("Query timed out")
		return textTimeout
	}
	if err != nil {
		r.logger.Error().Err(err).Str("job_id", jobID).Msg("Poll failed")
		return fmt.Sprintf("Excepción de conexión: %v", err)
	}

	if status.State != StateSucceeded {
		reason := status.Reason
		if reason == "" {
			reason = "Error desconocido"
		}
		r.logger.Warn().Str("job_id", jobID).Str("state", string(status.State)).Msg("Query failed")
		return fmt.Sprintf("Error SQL en Athena: %s", reason)
	}

	rs, err := r.engine.Results(ctx, jobID, r.maxRows)
	if err != nil {
		r.logger.Error().Err(err).Str("job_id", jobID).Msg("Fetch results failed")
		return fmt.Sprintf("Excepción de conexión: %v", err)
	}

	result := r.renderResults(rs)
	r.cache.Put(ctx, sqlText, result)
	return result
}

// poll waits for the job to reach a terminal state, sleeping through the
// backoff schedule between checks. Exceeding the wall-clock budget returns
// ErrTimeout, distinct from an engine-reported failure.
func (r *Runner) poll(ctx context.Context, jobID string) (JobStatus, error) {
	deadline := time.Now().Add(r.maxWait)

	for attempt := 0; ; attempt++ {
		status, err := r.engine.Status(ctx, jobID)
		if err != nil {
			return JobStatus{}, err
		}
		if status.State.Terminal() {
			return status, nil
		}

		if time.Now().After(deadline) {
			return JobStatus{}, ErrTimeout
		}

		wait := pollSchedule[len(pollSchedule)-1]
		if attempt < len(pollSchedule) {
			wait = pollSchedule[attempt]
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return JobStatus{}, ctx.Err()
		case <-timer.C:
		}
	}
}

// renderResults drops the header echo row, joins values with pipes, and
// caps the output to the configured row count. Zero data rows render the
// distinct empty-success text.
func (r *Runner) renderResults(rs *ResultSet) string {
	rows := rs.Rows
	if len(rows) > 0 {
		rows = rows[1:]
	}

	if len(rows) == 0 {
		return textZeroRows
	}

	lines := []string{strings.Join(rs.Columns, " | ")}
	for i, row := range rows {
		if i >= r.maxRows {
			break
		}
		lines = append(lines, strings.Join(row, " | "))
	}

	return strings.Join(lines, "\n")
}
