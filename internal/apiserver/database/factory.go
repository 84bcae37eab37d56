package database

import (
	"fmt"

	"github.com/amoylab/rentmanager/internal/common/cnst"
	"github.com/amoylab/rentmanager/internal/common/config"

	"go.uber.org/zap"
)

// NewDatabase creates a new database based on configuration
func NewDatabase(cfg *config.DatabaseConfig, lg *zap.Logger) (Database, error) {
	switch cfg.Type {
	case cnst.DBTypePostgres:
		return NewPostgres(cfg, lg)
	case cnst.DBTypeSQLite:
		return NewSQLite(cfg, lg)
	case cnst.DBTypeMySQL:
		return NewMySQL(cfg, lg)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
}
