package database

import (
	"fmt"
	"time"

	"github.com/devconnect-app/backend/config"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
)

// DSN builds a Postgres connection string for host from the SUPABASE_DB_* keys.
func DSN(c map[string]string, host string) string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		host,
		config.GetString(c, "SUPABASE_DB_USER", "postgres"),
		config.GetString(c, "SUPABASE_DB_PASSWORD", ""),
		config.GetString(c, "SUPABASE_DB_NAME", "postgres"),
		config.GetString(c, "SUPABASE_DB_PORT", "5432"),
		config.GetString(c, "SUPABASE_DB_SSLMODE", "require"),
	)
}

// Open connects to the primary database and, when SUPABASE_DB_REPLICA_HOST
// is set, registers it as a read replica. Writes and transactions always go
// to the primary.
func Open(c map[string]string) (*gorm.DB, error) {
	host := config.GetString(c, "SUPABASE_DB_HOST", "")
	if host == "" {
		return nil, fmt.Errorf("SUPABASE_DB_HOST is not set")
	}

	gormLogger := logger.New(
		&log.Logger,
		logger.Config{
			SlowThreshold:             config.GetDuration(c, "DB_SLOW_THRESHOLD_MS", time.Millisecond, 2000),
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  DSN(c, host),
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		PrepareStmt: false,
		Logger:      gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if replica := config.GetString(c, "SUPABASE_DB_REPLICA_HOST", ""); replica != "" {
		err := db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: []gorm.Dialector{postgres.New(postgres.Config{
				DSN:                  DSN(c, replica),
				PreferSimpleProtocol: true,
			})},
			Policy:            dbresolver.RandomPolicy{},
			TraceResolverMode: false,
		}))
		if err != nil {
			return nil, fmt.Errorf("registering read replica: %w", err)
		}
		log.Info().Str("replica", replica).Msg("read replica registered")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(config.GetInt(c, "DB_MAX_OPEN_CONNS", 20))
	sqlDB.SetMaxIdleConns(config.GetInt(c, "DB_MAX_IDLE_CONNS", 5))
	sqlDB.SetConnMaxLifetime(config.GetDuration(c, "DB_CONN_MAX_LIFETIME_MINUTES", time.Minute, 30))

	var result int
	if err := db.Raw("SELECT 1").Scan(&result).Error; err != nil {
		return nil, fmt.Errorf("testing database connection: %w", err)
	}

	return db, nil
}
