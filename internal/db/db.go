package db

import (
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"bed-request-backend/config"
	"bed-request-backend/internal/model"
)

// Init initializes the database connection and runs migrations. A DSN with a
// "sqlite:" prefix opens an embedded database; anything else is treated as a
// Postgres DSN.
func Init(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dialector := dialectorFor(cfg.DSN)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	// Unset pool knobs keep the driver defaults. Forcing zero here would
	// close every idle connection, which destroys a shared in-memory sqlite
	// database between statements.
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetimeMinutes > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)
	}

	log.Println("Running database migrations...")
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("automigrate failed: %w", err)
	}

	log.Println("Database initialization complete.")
	return db, nil
}

// Migrate creates or updates the schema for the ticketing core.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.BedRequest{},
		&model.RequestSequence{},
	)
}

func dialectorFor(dsn string) gorm.Dialector {
	if strings.HasPrefix(dsn, "sqlite:") {
		return sqlite.Open(strings.TrimPrefix(dsn, "sqlite:"))
	}
	return postgres.Open(dsn)
}
