package storage

import (
	"os"
	"strconv"
	"time"
)

// Backend selects the record store implementation
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendDynamo Backend = "dynamo"
	BackendSQL    Backend = "sql"
)

// DynamoMode represents the DynamoDB connection mode
type DynamoMode string

const (
	DynamoModeLocal DynamoMode = "local"
	DynamoModeAWS   DynamoMode = "aws"
)

// Config holds record store configuration
type Config struct {
	Backend Backend
	Dynamo  DynamoConfig
	SQL     SQLConfig
	Retry   RetryConfig
}

// DynamoConfig holds DynamoDB configuration
type DynamoConfig struct {
	Mode             DynamoMode
	Endpoint         string // for local mode
	Region           string
	CallRecordsTable string
}

// SQLConfig holds gorm connection settings
type SQLConfig struct {
	Driver      string // postgres | mysql
	DSN         string
	Table       string
	AutoMigrate bool
}

// RetryConfig bounds the retries of a single store request
type RetryConfig struct {
	MaxRetries      uint64
	InitialInterval time.Duration
}

// LoadConfig loads store config from environment
func LoadConfig() Config {
	backend := Backend(getEnv("STORE_BACKEND", string(BackendMemory)))
	if backend != BackendDynamo && backend != BackendSQL {
		backend = BackendMemory
	}

	mode := DynamoMode(getEnv("DYNAMO_MODE", string(DynamoModeLocal)))
	if mode != DynamoModeAWS {
		mode = DynamoModeLocal
	}

	return Config{
		Backend: backend,
		Dynamo: DynamoConfig{
			Mode:             mode,
			Endpoint:         getEnv("DYNAMO_ENDPOINT", "http://localhost:8000"),
			Region:           getEnv("DYNAMO_REGION", "eu-central-1"),
			CallRecordsTable: getEnv("DYNAMO_CALL_RECORDS_TABLE", "salesmetrics-call-records"),
		},
		SQL: SQLConfig{
			Driver:      getEnv("SQL_DRIVER", "postgres"),
			DSN:         getEnv("SQL_DSN", ""),
			Table:       getEnv("SQL_TABLE", "call_records"),
			AutoMigrate: getEnv("SQL_AUTO_MIGRATE", "false") == "true",
		},
		Retry: RetryConfig{
			MaxRetries:      uint64(getEnvInt("STORE_MAX_RETRIES", 3)),
			InitialInterval: 100 * time.Millisecond,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v < 0 {
		return defaultValue
	}
	return v
}
