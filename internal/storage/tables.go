package storage

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog"
)

// CreateTablesIfNotExist creates the call records table for local development
func CreateTablesIfNotExist(ctx context.Context, client DynamoAPI, config DynamoConfig, logger zerolog.Logger) error {
	_, err := client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(config.CallRecordsTable),
	})
	if err == nil {
		logger.Info().Str("table", config.CallRecordsTable).Msg("table already exists")
		return nil
	}

	_, err = client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(config.CallRecordsTable),
		KeySchema: []dbtypes.KeySchemaElement{
			{AttributeName: aws.String(attrWorkspaceID), KeyType: dbtypes.KeyTypeHash},
			{AttributeName: aws.String(attrSortKey), KeyType: dbtypes.KeyTypeRange},
		},
		AttributeDefinitions: []dbtypes.AttributeDefinition{
			{AttributeName: aws.String(attrWorkspaceID), AttributeType: dbtypes.ScalarAttributeTypeS},
			{AttributeName: aws.String(attrSortKey), AttributeType: dbtypes.ScalarAttributeTypeS},
		},
		BillingMode: dbtypes.BillingModePayPerRequest,
	})
	if err != nil {
		return fmt.Errorf("failed to create table %s: %w", config.CallRecordsTable, err)
	}
	logger.Info().Str("table", config.CallRecordsTable).Msg("table created")

	return nil
}
