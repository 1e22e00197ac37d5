package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/athena/types"

	"github.com/omniretail-ai/support-engine/internal/observability"
)

// AthenaEngine implements Engine against AWS Athena.
type AthenaEngine struct {
	client         *athena.Client
	database       string
	outputLocation string
	reuseAge       time.Duration
	logger         *observability.Logger
}

// AthenaConfig holds Athena connection configuration.
type AthenaConfig struct {
	Region         string
	Database       string
	OutputLocation string
	// ResultReuseAge allows the engine to reuse its own results up to this
	// age, an optimization layer beneath the local result cache.
	ResultReuseAge time.Duration
}

// NewAthenaEngine creates an Athena-backed analytical engine.
func NewAthenaEngine(ctx context.Context, cfg AthenaConfig, logger *observability.Logger) (*AthenaEngine, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	reuseAge := cfg.ResultReuseAge
	if reuseAge <= 0 {
		reuseAge = 60 * time.Minute
	}

	return &AthenaEngine{
		client:         athena.NewFromConfig(awsCfg),
		database:       cfg.Database,
		outputLocation: cfg.OutputLocation,
		reuseAge:       reuseAge,
		logger:         logger.WithComponent("athena"),
	}, nil
}

// Submit starts a query execution and returns its opaque execution ID.
func (e *AthenaEngine) Submit(ctx context.Context, sql string) (string, error) {
	out, err := e.client.StartQueryExecution(ctx, &athena.StartQueryExecutionInput{
		QueryString: aws.String(sql),
		QueryExecutionContext: &types.QueryExecutionContext{
			Database: aws.String(e.database),
		},
		ResultConfiguration: &types.ResultConfiguration{
			OutputLocation: aws.String(e.outputLocation),
		},
		ResultReuseConfiguration: &types.ResultReuseConfiguration{
			ResultReuseByAgeConfiguration: &types.ResultReuseByAgeConfiguration{
				Enabled:         true,
				MaxAgeInMinutes: aws.Int32(int32(e.reuseAge.Minutes())),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("start query execution: %w", err)
	}

	return aws.ToString(out.QueryExecutionId), nil
}

// Status reports the current state of an execution. Athena's QUEUED and
// RUNNING states map to StateSubmitted.
func (e *AthenaEngine) Status(ctx context.Context, jobID string) (JobStatus, error) {
	out, err := e.client.GetQueryExecution(ctx, &athena.GetQueryExecutionInput{
		QueryExecutionId: aws.String(jobID),
	})
	if err != nil {
		return JobStatus{}, fmt.Errorf("get query execution: %w", err)
	}

	status := out.QueryExecution.Status

	var state JobState
	switch status.State {
	case types.QueryExecutionStateSucceeded:
		state = StateSucceeded
	case types.QueryExecutionStateFailed:
		state = StateFailed
	case types.QueryExecutionStateCancelled:
		state = StateCancelled
	default:
		state = StateSubmitted
	}

	return JobStatus{
		State:  state,
		Reason: aws.ToString(status.StateChangeReason),
	}, nil
}

// Results fetches the tabular payload of a succeeded execution. The first
// returned row is Athena's header echo, preserved for the runner to drop.
func (e *AthenaEngine) Results(ctx context.Context, jobID string, maxRows int) (*ResultSet, error) {
	out, err := e.client.GetQueryResults(ctx, &athena.GetQueryResultsInput{
		QueryExecutionId: aws.String(jobID),
		MaxResults:       aws.Int32(int32(maxRows + 1)),
	})
	if err != nil {
		return nil, fmt.Errorf("get query results: %w", err)
	}

	rs := &ResultSet{}
	for _, col := range out.ResultSet.ResultSetMetadata.ColumnInfo {
		rs.Columns = append(rs.Columns, aws.ToString(col.Label))
	}
	for _, row := range out.ResultSet.Rows {
		values := make([]string, 0, len(row.Data))
		for _, datum := range row.Data {
			values = append(values, aws.ToString(datum.VarCharValue))
		}
		rs.Rows = append(rs.Rows, values)
	}

	return rs, nil
}
