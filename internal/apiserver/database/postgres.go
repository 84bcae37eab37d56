package database

import (
	"github.com/amoylab/rentmanager/internal/common/config"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
)

func NewPostgres(cfg *config.DatabaseConfig, lg *zap.Logger) (Database, error) {
	return open(postgres.Open(cfg.GetDSN()), cfg, lg)
}
