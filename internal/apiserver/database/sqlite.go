package database

import (
	"github.com/amoylab/rentmanager/internal/common/config"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
)

// NewSQLite opens a pure-Go sqlite store. A single connection is used so
// writers are serialized and ":memory:" databases survive across queries.
func NewSQLite(cfg *config.DatabaseConfig, lg *zap.Logger) (Database, error) {
	s, err := open(sqlite.Open(cfg.GetDSN()), cfg, lg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return s, nil
}
