// Package engine exposes the in-process facade the conversational layer
// consumes: two operations, lookup and report, over the full query core.
package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/omniretail-ai/support-engine/internal/analytics"
	"github.com/omniretail-ai/support-engine/internal/audit"
	"github.com/omniretail-ai/support-engine/internal/cache"
	"github.com/omniretail-ai/support-engine/internal/config"
	"github.com/omniretail-ai/support-engine/internal/lookup"
	"github.com/omniretail-ai/support-engine/internal/observability"
	"github.com/omniretail-ai/support-engine/internal/render"
	"github.com/omniretail-ai/support-engine/internal/storage"
)

// Engine wires the dispatcher, the analytical runner, the caches, and the
// audit trail behind the two-call contract.
type Engine struct {
	cfg        *config.Config
	logger     *observability.Logger
	store      storage.Store
	lookupSvc  *lookup.Service
	dispatcher *lookup.Dispatcher
	cacheCli   cache.Client
	runner     *analytics.Runner
	sqlEngine  *analytics.SQLEngine
	trail      *audit.Trail
}

// New builds an engine from configuration: DynamoDB store, the configured
// analytical engine, and the configured cache backend.
func New(ctx context.Context, cfg *config.Config, logger *observability.Logger) (*Engine, error) {
	store, err := storage.NewDynamoStore(ctx, storage.DynamoConfig{
		Region:    cfg.Dynamo.Region,
		Table:     cfg.Dynamo.Table,
		IndexName: cfg.Dynamo.IndexName,
		Endpoint:  cfg.Dynamo.Endpoint,
		PageSize:  cfg.Lookup.ScanPageSize,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}

	return NewWithStore(ctx, cfg, logger, store)
}

// NewWithStore builds an engine over an injected store. Tests and the local
// profile use this with a MemoryStore.
func NewWithStore(ctx context.Context, cfg *config.Config, logger *observability.Logger, store storage.Store) (*Engine, error) {
	e := &Engine{
		cfg:    cfg,
		logger: logger,
		store:  store,
	}

	var err error
	if cfg.Cache.Driver == "redis" {
		e.cacheCli, err = cache.NewRedisClient(cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			PoolSize: cfg.Cache.Redis.PoolSize,
		})
		if err != nil {
			return nil, fmt.Errorf("create redis cache: %w", err)
		}
	} else {
		e.cacheCli = cache.NewMemoryClient(cfg.Cache.MaxEntries)
	}

	var queryEngine analytics.Engine
	switch cfg.Analytics.Engine {
	case "sql":
		e.sqlEngine, err = analytics.NewSQLEngine(cfg.Analytics.SQL.Driver, cfg.Analytics.SQL.DSN, logger)
		if err != nil {
			return nil, fmt.Errorf("create sql engine: %w", err)
		}
		queryEngine = e.sqlEngine
	default:
		queryEngine, err = analytics.NewAthenaEngine(ctx, analytics.AthenaConfig{
			Region:         cfg.Dynamo.Region,
			Database:       cfg.Analytics.Database,
			OutputLocation: cfg.Analytics.OutputLocation,
			ResultReuseAge: cfg.Analytics.ResultReuseAge,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("create athena engine: %w", err)
		}
	}

	resultCache := analytics.NewResultCache(e.cacheCli, logger, cfg.Analytics.CacheTTL)
	e.runner = analytics.NewRunner(queryEngine, resultCache, logger, analytics.RunnerConfig{
		MaxWait: cfg.Analytics.MaxWait,
		MaxRows: cfg.Analytics.MaxRows,
	})

	e.lookupSvc = lookup.NewService(store, logger)
	e.dispatcher = lookup.NewDispatcher(e.lookupSvc, logger)
	e.trail = audit.NewTrail(logger, cfg.Audit.RingSize)

	if cfg.Lookup.WarmOnStart {
		if _, err := e.lookupSvc.Warm(ctx); err != nil {
			return nil, fmt.Errorf("warm snapshot: %w", err)
		}
	}

	return e, nil
}

// Lookup executes one "OPERACION:valor" request and returns user-facing
// text. Never returns an error; failures render as text.
func (e *Engine) Lookup(ctx context.Context, operation string) string {
	started := time.Now()
	out := e.dispatcher.Dispatch(ctx, operation)
	e.trail.Record(audit.KindLookup, opSubject(operation), classifyLookup(out), time.Since(started))
	return out
}

// Report executes one analytical SQL query and returns user-facing text.
// Never returns an error; failures render as text.
func (e *Engine) Report(ctx context.Context, sql string) string {
	started := time.Now()
	out := e.runner.Run(ctx, sql)
	e.trail.Record(audit.KindReport, analytics.Fingerprint(sql), classifyReport(out), time.Since(started))
	return out
}

// Warm builds the lookup snapshot now.
func (e *Engine) Warm(ctx context.Context) (*lookup.Snapshot, error) {
	return e.lookupSvc.Warm(ctx)
}

// Snapshot returns the current lookup snapshot, or nil before the first build.
func (e *Engine) Snapshot() *lookup.Snapshot {
	return e.lookupSvc.Snapshot()
}

// Audit returns the audit trail.
func (e *Engine) Audit() *audit.Trail {
	return e.trail
}

// Close releases the cache and local engine resources.
func (e *Engine) Close() error {
	if e.sqlEngine != nil {
		if err := e.sqlEngine.Close(); err != nil {
			return err
		}
	}
	return e.cacheCli.Close()
}

func opSubject(operation string) string {
	if idx := strings.Index(operation, ":"); idx >= 0 {
		return strings.ToUpper(strings.TrimSpace(operation[:idx]))
	}
	return "INVALID"
}

func classifyLookup(out string) audit.Outcome {
	switch {
	case strings.HasPrefix(out, "❌"):
		return audit.OutcomeUserError
	case strings.HasPrefix(out, "Error en consulta DynamoDB"):
		return audit.OutcomeBackendError
	case strings.HasPrefix(out, render.NoResults):
		return audit.OutcomeNoResults
	default:
		return audit.OutcomeOK
	}
}

func classifyReport(out string) audit.Outcome {
	switch {
	case strings.HasPrefix(out, "❌"):
		return audit.OutcomeUserError
	case strings.HasPrefix(out, "⏳"):
		return audit.OutcomeTimeout
	case strings.HasPrefix(out, "Error SQL en Athena"), strings.HasPrefix(out, "Excepción de conexión"):
		return audit.OutcomeBackendError
	case strings.HasPrefix(out, "La consulta se ejecutó correctamente pero no devolvió"):
		return audit.OutcomeNoResults
	default:
		return audit.OutcomeOK
	}
}
