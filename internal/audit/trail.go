// Package audit records every dispatched query as a bounded in-memory
// trail backed by the structured log.
package audit

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/omniretail-ai/support-engine/internal/observability"
)

// Kind discriminates lookup and report events.
type Kind string

const (
	KindLookup Kind = "lookup"
	KindReport Kind = "report"
)

// Outcome classifies how a call ended.
type Outcome string

const (
	OutcomeOK           Outcome = "ok"
	OutcomeNoResults    Outcome = "no_results"
	OutcomeUserError    Outcome = "user_error"
	OutcomeBackendError Outcome = "backend_error"
	OutcomeTimeout      Outcome = "timeout"
)

// Event is one recorded query.
type Event struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"kind"`
	Subject    string    `json:"subject"` // operation code or query fingerprint
	Outcome    Outcome   `json:"outcome"`
	LatencyMs  int64     `json:"latencyMs"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Trail is a bounded ring of recent events. Recording never blocks the
// query path and never fails.
type Trail struct {
	logger *observability.Logger

	mu     sync.Mutex
	events []Event
	next   int
	filled bool
}

// NewTrail creates a trail keeping the most recent size events.
func NewTrail(logger *observability.Logger, size int) *Trail {
	if size <= 0 {
		size = 256
	}
	return &Trail{
		logger: logger.WithComponent("audit"),
		events: make([]Event, size),
	}
}

// Record appends an event to the ring and the structured log.
func (t *Trail) Record(kind Kind, subject string, outcome Outcome, latency time.Duration) {
	evt := Event{
		ID:         uuid.NewString(),
		Kind:       kind,
		Subject:    subject,
		Outcome:    outcome,
		LatencyMs:  latency.Milliseconds(),
		OccurredAt: time.Now(),
	}

	t.mu.Lock()
	t.events[t.next] = evt
	t.next = (t.next + 1) % len(t.events)
	if t.next == 0 {
		t.filled = true
	}
	t.mu.Unlock()

	t.logger.Info().
		Str("kind", string(kind)).
		Str("subject", subject).
		Str("outcome", string(outcome)).
		Int64("latency_ms", evt.LatencyMs).
		Msg("Query audited")
}

// Recent returns up to n events, most recent first.
func (t *Trail) Recent(n int) []Event {
	t.mu.Lock()
	defer t.mu.Unlock()

	size := len(t.events)
	count := t.next
	if t.filled {
		count = size
	}
	if n <= 0 || n > count {
		n = count
	}

	out := make([]Event, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, t.events[(t.next-i+size)%size])
	}
	return out
}
