package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/amoylab/rentmanager/internal/common/config"
	"github.com/amoylab/rentmanager/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// store implements Database on top of any gorm dialector
type store struct {
	db      *gorm.DB
	lockRow bool
	logger  *zap.Logger
}

func open(dialector gorm.Dialector, cfg *config.DatabaseConfig, lg *zap.Logger) (*store, error) {
	gormDB, err := gorm.Open(dialector, &gorm.Config{
		Logger:                                   logger.NewGormLogger(lg),
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := gormDB.AutoMigrate(&Property{}, &Room{}, &Tenant{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	return &store{
		db:      gormDB,
		lockRow: gormDB.Dialector.Name() != "sqlite",
		logger:  lg.Named("database"),
	}, nil
}

// Close closes the database connection
func (s *store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks that the database is reachable
func (s *store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Transaction runs fn in a transaction, joining one already carried by ctx
func (s *store) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if TransactionFromContext(ctx) != nil {
		return fn(ctx)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ContextWithTransaction(ctx, tx))
	})
}

func (s *store) conn(ctx context.Context) *gorm.DB {
	return getDBFromContext(ctx, s.db)
}

// forUpdate is conn with row locking on dialects that support it
func (s *store) forUpdate(ctx context.Context) *gorm.DB {
	q := s.conn(ctx)
	if s.lockRow {
		q = q.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
	}
	return q
}

// ownerOf plucks a single owner id; a missing row is gorm.ErrRecordNotFound
func ownerOf(q *gorm.DB) (string, error) {
	var owners []string
	if err := q.Limit(1).Pluck("owner_id", &owners).Error; err != nil {
		return "", err
	}
	if len(owners) == 0 {
		return "", gorm.ErrRecordNotFound
	}
	return owners[0], nil
}

// likeEscaper makes user input match literally inside a LIKE pattern. The
// escape character is '!' because mysql and postgres disagree on backslash.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// likePattern builds a contains-pattern for use with likeEscape
func likePattern(search string) string {
	return "%" + likeEscaper.Replace(search) + "%"
}

const likeEscape = " ESCAPE '!'"
