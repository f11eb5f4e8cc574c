package storage

import (
	"context"
	"fmt"

	"github.com/dennisdiepolder/monti/salesmetrics/internal/types"
	"github.com/rs/zerolog"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// SQLStore implements Store on a relational database through gorm
type SQLStore struct {
	db     *gorm.DB
	table  string
	logger zerolog.Logger
}

// predicate is one WHERE clause with its argument
type predicate struct {
	clause string
	arg    any
}

// NewSQLStore opens the database selected by cfg.Driver
func NewSQLStore(cfg SQLConfig, logger zerolog.Logger) (*SQLStore, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported SQL driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Driver, err)
	}

	if cfg.AutoMigrate {
		if err := db.Table(cfg.Table).AutoMigrate(&types.CallRecord{}); err != nil {
			return nil, fmt.Errorf("failed to migrate %s: %w", cfg.Table, err)
		}
	}

	logger.Info().
		Str("driver", cfg.Driver).
		Str("table", cfg.Table).
		Bool("auto_migrate", cfg.AutoMigrate).
		Msg("SQL store initialized")

	return NewSQLStoreWithDB(db, cfg.Table, logger), nil
}

// NewSQLStoreWithDB wraps an open gorm handle
func NewSQLStoreWithDB(db *gorm.DB, table string, logger zerolog.Logger) *SQLStore {
	return &SQLStore{db: db, table: table, logger: logger}
}

func (s *SQLStore) SaveCallRecord(ctx context.Context, record types.CallRecord) error {
	err := s.db.WithContext(ctx).
		Table(s.table).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "workspace_id"}, {Name: "id"}},
			UpdateAll: true,
		}).
		Create(&record).Error
	if err != nil {
		return fmt.Errorf("failed to save call record: %w", err)
	}
	return nil
}

func (s *SQLStore) FetchCallRecords(ctx context.Context, filter types.MetricsFilter) ([]types.CallRecord, error) {
	q := s.db.WithContext(ctx).Table(s.table)
	for _, p := range sqlPredicates(filter) {
		q = q.Where(p.clause, p.arg)
	}

	var records []types.CallRecord
	if err := q.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query call records: %w", err)
	}
	return records, nil
}

func (s *SQLStore) TruncateAll(ctx context.Context) error {
	err := s.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Table(s.table).
		Delete(&types.CallRecord{}).Error
	if err != nil {
		return fmt.Errorf("failed to truncate %s: %w", s.table, err)
	}
	s.logger.Info().Str("table", s.table).Msg("table truncated")
	return nil
}

// sqlPredicates translates the filter into WHERE clauses, one per set field,
// in the same order MetricsFilter.Matches evaluates them.
func sqlPredicates(f types.MetricsFilter) []predicate {
	preds := []predicate{{"workspace_id = ?", f.WorkspaceID()}}

	if ts, ok := f.TrafficSource(); ok {
		preds = append(preds, predicate{"traffic_source = ?", string(ts)})
	}
	if f.UserID() != "" {
		preds = append(preds, predicate{"user_id = ?", f.UserID()})
	}
	if f.ClientID() != "" {
		preds = append(preds, predicate{"client_id = ?", f.ClientID()})
	}
	if from, ok := f.From(); ok {
		preds = append(preds, predicate{"created_at >= ?", from})
	}
	if to, ok := f.To(); ok {
		preds = append(preds, predicate{"created_at <= ?", to})
	}
	return preds
}
