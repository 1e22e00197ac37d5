package storage

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/omniretail-ai/support-engine/internal/observability"
)

// DynamoStore implements Store against a DynamoDB single-table layout.
type DynamoStore struct {
	client    *dynamodb.Client
	table     string
	indexName string
	pageSize  int32
	logger    *observability.Logger
}

// DynamoConfig holds DynamoDB connection configuration.
type DynamoConfig struct {
	Region    string
	Table     string
	IndexName string
	Endpoint  string // optional, for dynamodb-local
	PageSize  int
}

// NewDynamoStore creates a DynamoDB-backed store.
func NewDynamoStore(ctx context.Context, cfg DynamoConfig, logger *observability.Logger) (*DynamoStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	indexName := cfg.IndexName
	if indexName == "" {
		indexName = "GSI1"
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 500
	}

	return &DynamoStore{
		client:    client,
		table:     cfg.Table,
		indexName: indexName,
		pageSize:  int32(pageSize),
		logger:    logger.WithComponent("dynamo"),
	}, nil
}

// Query returns records under a partition key in sort-key order.
func (s *DynamoStore) Query(ctx context.Context, pk string, opts QueryOptions) ([]Record, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultQueryLimit
	}

	keyCond := "pk = :pk"
	values := map[string]types.AttributeValue{
		":pk": &types.AttributeValueMemberS{Value: pk},
	}
	if opts.SortKeyPrefix != "" {
		keyCond = "pk = :pk AND begins_with(sk, :skPrefix)"
		values[":skPrefix"] = &types.AttributeValueMemberS{Value: opts.SortKeyPrefix}
	}

	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(s.table),
		KeyConditionExpression:    aws.String(keyCond),
		ExpressionAttributeValues: values,
		Limit:                     aws.Int32(int32(limit)),
	})
	if err != nil {
		return nil, fmt.Errorf("dynamo query %q: %w", pk, err)
	}

	return unmarshalItems(out.Items)
}

// QueryIndex returns records via the secondary index partition key.
func (s *DynamoStore) QueryIndex(ctx context.Context, gsi1pk string, opts QueryOptions) ([]Record, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultQueryLimit
	}

	keyCond := "gsi1pk = :gpk"
	values := map[string]types.AttributeValue{
		":gpk": &types.AttributeValueMemberS{Value: gsi1pk},
	}
	if opts.SortKeyPrefix != "" {
		keyCond = "gsi1pk = :gpk AND begins_with(gsi1sk, :gskPrefix)"
		values[":gskPrefix"] = &types.AttributeValueMemberS{Value: opts.SortKeyPrefix}
	}

	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(s.table),
		IndexName:                 aws.String(s.indexName),
		KeyConditionExpression:    aws.String(keyCond),
		ExpressionAttributeValues: values,
		Limit:                     aws.Int32(int32(limit)),
	})
	if err != nil {
		return nil, fmt.Errorf("dynamo index query %q: %w", gsi1pk, err)
	}

	return unmarshalItems(out.Items)
}

// ScanEntities streams every record with the given entity type, following
// LastEvaluatedKey pagination across the full table.
func (s *DynamoStore) ScanEntities(ctx context.Context, entity EntityType, fn func(Record) bool) error {
	var startKey map[string]types.AttributeValue

	for {
		out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:        aws.String(s.table),
			FilterExpression: aws.String("#e = :entity"),
			ExpressionAttributeNames: map[string]string{
				"#e": AttrEntity,
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":entity": &types.AttributeValueMemberS{Value: string(entity)},
			},
			Limit:             aws.Int32(s.pageSize),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return fmt.Errorf("dynamo scan %s: %w", entity, err)
		}

		records, err := unmarshalItems(out.Items)
		if err != nil {
			return err
		}
		for _, rec := range records {
			if !fn(rec) {
				return nil
			}
		}

		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	return nil
}

func unmarshalItems(items []map[string]types.AttributeValue) ([]Record, error) {
	records := make([]Record, 0, len(items))
	for _, item := range items {
		var rec map[string]interface{}
		if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
			return nil, fmt.Errorf("unmarshal record: %w", err)
		}
		records = append(records, Record(rec))
	}
	return records, nil
}
