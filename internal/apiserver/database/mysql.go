package database

import (
	"github.com/amoylab/rentmanager/internal/common/config"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
)

func NewMySQL(cfg *config.DatabaseConfig, lg *zap.Logger) (Database, error) {
	return open(mysql.Open(cfg.GetDSN()), cfg, lg)
}
