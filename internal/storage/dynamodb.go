package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dennisdiepolder/monti/salesmetrics/internal/types"
	"github.com/rs/zerolog"
)

const (
	attrWorkspaceID = "WorkspaceID"
	attrSortKey     = "SortKey"

	// sortKeyLayout is fixed width so keys order chronologically as strings
	sortKeyLayout = "2006-01-02T15:04:05.000000000Z"
)

// DynamoAPI is the subset of the DynamoDB client the store uses
type DynamoAPI interface {
	dynamodb.QueryAPIClient
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

// dynamoItem is a call record plus its table sort key
type dynamoItem struct {
	types.CallRecord
	SortKey string `dynamodbav:"SortKey"`
}

// DynamoDBStore implements Store using AWS DynamoDB. Records are partitioned
// by workspace and sorted by creation time.
type DynamoDBStore struct {
	client DynamoAPI
	config DynamoConfig
	retry  RetryConfig
	logger zerolog.Logger
}

// NewDynamoDBStore creates a new DynamoDB store
func NewDynamoDBStore(ctx context.Context, cfg DynamoConfig, retry RetryConfig, logger zerolog.Logger) (*DynamoDBStore, error) {
	var client *dynamodb.Client

	if cfg.Mode == DynamoModeLocal {
		// Build the client directly: LoadDefaultConfig queries the EC2 IMDS
		// endpoint which hangs when static credentials are intended.
		client = dynamodb.New(dynamodb.Options{
			Region:       cfg.Region,
			BaseEndpoint: aws.String(cfg.Endpoint),
			Credentials:  credentials.NewStaticCredentialsProvider("local", "local", ""),
		})
	} else {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		client = dynamodb.NewFromConfig(awsCfg)
	}

	if cfg.Mode == DynamoModeLocal {
		if err := CreateTablesIfNotExist(ctx, client, cfg, logger); err != nil {
			return nil, err
		}
	}

	logger.Info().
		Str("mode", string(cfg.Mode)).
		Str("region", cfg.Region).
		Str("table", cfg.CallRecordsTable).
		Msg("DynamoDB store initialized")

	return NewDynamoDBStoreWithClient(client, cfg, retry, logger), nil
}

// NewDynamoDBStoreWithClient wraps an existing client
func NewDynamoDBStoreWithClient(client DynamoAPI, cfg DynamoConfig, retry RetryConfig, logger zerolog.Logger) *DynamoDBStore {
	return &DynamoDBStore{
		client: client,
		config: cfg,
		retry:  retry,
		logger: logger,
	}
}

// SortKey builds the range key for a record
func SortKey(createdAt time.Time, callID string) string {
	return createdAt.UTC().Format(sortKeyLayout) + "#" + callID
}

func (s *DynamoDBStore) SaveCallRecord(ctx context.Context, record types.CallRecord) error {
	item, err := attributevalue.MarshalMap(dynamoItem{
		CallRecord: record,
		SortKey:    SortKey(record.CreatedAt, record.CallID),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal call record: %w", err)
	}

	err = withRetry(ctx, s.retry, func() error {
		_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName: aws.String(s.config.CallRecordsTable),
			Item:      item,
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to save call record: %w", err)
	}
	return nil
}

func (s *DynamoDBStore) FetchCallRecords(ctx context.Context, filter types.MetricsFilter) ([]types.CallRecord, error) {
	input, err := s.queryInput(filter)
	if err != nil {
		return nil, err
	}

	var records []types.CallRecord
	paginator := dynamodb.NewQueryPaginator(s.client, input)
	pages := 0
	for paginator.HasMorePages() {
		var page *dynamodb.QueryOutput
		err := withRetry(ctx, s.retry, func() error {
			var err error
			page, err = paginator.NextPage(ctx)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to query call records: %w", err)
		}
		pages++

		var items []dynamoItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal call records: %w", err)
		}
		for _, it := range items {
			records = append(records, it.CallRecord)
		}
	}

	s.logger.Debug().
		Str("workspace_id", filter.WorkspaceID()).
		Int("pages", pages).
		Int("records", len(records)).
		Msg("call records fetched")

	return records, nil
}

// queryInput maps the filter onto a key condition (workspace, date bounds)
// and a filter expression (traffic source, user, client).
func (s *DynamoDBStore) queryInput(filter types.MetricsFilter) (*dynamodb.QueryInput, error) {
	keyCond := expression.Key(attrWorkspaceID).Equal(expression.Value(filter.WorkspaceID()))

	from, hasFrom := filter.From()
	to, hasTo := filter.To()
	sk := expression.Key(attrSortKey)
	switch {
	case hasFrom && hasTo:
		keyCond = keyCond.And(sk.Between(expression.Value(lowerSortKey(from)), expression.Value(upperSortKey(to))))
	case hasFrom:
		keyCond = keyCond.And(sk.GreaterThanEqual(expression.Value(lowerSortKey(from))))
	case hasTo:
		keyCond = keyCond.And(sk.LessThanEqual(expression.Value(upperSortKey(to))))
	}

	var conds []expression.ConditionBuilder
	if ts, ok := filter.TrafficSource(); ok {
		conds = append(conds, expression.Name("TrafficSource").Equal(expression.Value(string(ts))))
	}
	if filter.UserID() != "" {
		conds = append(conds, expression.Name("UserID").Equal(expression.Value(filter.UserID())))
	}
	if filter.ClientID() != "" {
		conds = append(conds, expression.Name("ClientID").Equal(expression.Value(filter.ClientID())))
	}

	builder := expression.NewBuilder().WithKeyCondition(keyCond)
	switch len(conds) {
	case 0:
	case 1:
		builder = builder.WithFilter(conds[0])
	default:
		builder = builder.WithFilter(expression.And(conds[0], conds[1], conds[2:]...))
	}

	expr, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression: %w", err)
	}

	return &dynamodb.QueryInput{
		TableName:                 aws.String(s.config.CallRecordsTable),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}, nil
}

func lowerSortKey(t time.Time) string {
	return t.UTC().Format(sortKeyLayout)
}

// upperSortKey sorts after every "<t>#<call id>" key
func upperSortKey(t time.Time) string {
	return t.UTC().Format(sortKeyLayout) + "$"
}

// TruncateAll deletes all items from the call records table (scan + batch delete)
func (s *DynamoDBStore) TruncateAll(ctx context.Context) error {
	table := s.config.CallRecordsTable
	var lastKey map[string]dbtypes.AttributeValue

	for {
		input := &dynamodb.ScanInput{
			TableName:            aws.String(table),
			ProjectionExpression: aws.String("#pk, #sk"),
			ExpressionAttributeNames: map[string]string{
				"#pk": attrWorkspaceID,
				"#sk": attrSortKey,
			},
			Limit: aws.Int32(500),
		}
		if lastKey != nil {
			input.ExclusiveStartKey = lastKey
		}

		result, err := s.client.Scan(ctx, input)
		if err != nil {
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}

		// Batch delete in groups of 25
		for i := 0; i < len(result.Items); i += 25 {
			end := min(i+25, len(result.Items))

			requests := make([]dbtypes.WriteRequest, 0, end-i)
			for _, item := range result.Items[i:end] {
				requests = append(requests, dbtypes.WriteRequest{
					DeleteRequest: &dbtypes.DeleteRequest{
						Key: map[string]dbtypes.AttributeValue{
							attrWorkspaceID: item[attrWorkspaceID],
							attrSortKey:     item[attrSortKey],
						},
					},
				})
			}

			_, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
				RequestItems: map[string][]dbtypes.WriteRequest{
					table: requests,
				},
			})
			if err != nil {
				return fmt.Errorf("failed to truncate %s: %w", table, err)
			}
		}

		lastKey = result.LastEvaluatedKey
		if lastKey == nil {
			break
		}
	}

	s.logger.Info().Str("table", table).Msg("table truncated")
	return nil
}
