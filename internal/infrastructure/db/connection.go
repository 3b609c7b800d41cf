package db

import (
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/lighthouse/backend/internal/config"
	"github.com/lighthouse/backend/internal/infrastructure/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewPostgresConnection opens the database, retrying with exponential
// backoff until cfg.ConnectTimeout elapses.
func NewPostgresConnection(cfg config.DatabaseConfig, log *logger.Logger) (*gorm.DB, error) {
	var database *gorm.DB

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = time.Second
	expBackoff.MaxElapsedTime = cfg.ConnectTimeout
	if expBackoff.MaxElapsedTime <= 0 {
		expBackoff.MaxElapsedTime = time.Minute
	}

	operation := func() error {
		conn, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		if err != nil {
			log.Warnw("db_connect_retry", "host", cfg.Host, "error", err)
			return err
		}
		sqlDB, err := conn.DB()
		if err != nil {
			return backoff.Permanent(err)
		}
		if err := sqlDB.Ping(); err != nil {
			log.Warnw("db_ping_retry", "host", cfg.Host, "error", err)
			_ = sqlDB.Close()
			return err
		}
		if cfg.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		}
		if cfg.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.ConnMaxLifetime > 0 {
			sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		}
		database = conn
		return nil
	}

	if err := backoff.Retry(operation, expBackoff); err != nil {
		return nil, fmt.Errorf("failed to connect to postgres after retries: %w", err)
	}
	log.Infow("db_connect_ok", "host", cfg.Host, "name", cfg.Name)
	return database, nil
}

func Close(database *gorm.DB) error {
	sqlDB, err := database.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
