package database

import (
	"context"
	"fmt"
	"strings"

	"notes-service/pkg/config"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// migrationLockKey serializes AutoMigrate across processes sharing a postgres database
const migrationLockKey int64 = 0x6e6f746573

// InitDB opens the database described by dbConfig and applies pool settings
func InitDB(dbConfig *config.DBConfig) (*gorm.DB, error) {
	dialector, err := newDialector(dbConfig)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(dbConfig.LogLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database object: %w", err)
	}

	if dbConfig.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(dbConfig.MaxIdleConns)
	}
	if dbConfig.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(dbConfig.MaxOpenConns)
	}
	if dbConfig.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(dbConfig.ConnMaxLifetime)
	}

	return db, nil
}

func newDialector(dbConfig *config.DBConfig) (gorm.Dialector, error) {
	switch dbConfig.Driver {
	case "postgres":
		return postgres.New(postgres.Config{
			DSN:                  dbConfig.GetDSN(),
			PreferSimpleProtocol: true, // Disables implicit prepared statement usage
		}), nil
	case "sqlite", "":
		return sqlite.Open(sqliteDSN(dbConfig.Path)), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", dbConfig.Driver)
	}
}

// sqliteDSN turns on foreign key enforcement and a busy timeout for path.
// Transactions begin IMMEDIATE so they take the write lock up front and wait
// on the busy timeout instead of failing a shared-to-write lock upgrade.
func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on&_busy_timeout=5000&_txlock=immediate"
}

// MigrateModels runs migrations for the provided models. On postgres the
// migration holds an advisory lock so concurrent starts do not race.
func MigrateModels(ctx context.Context, db *gorm.DB, models ...interface{}) error {
	if db == nil {
		return fmt.Errorf("database is not initialized")
	}

	if db.Dialector.Name() != "postgres" {
		if err := db.WithContext(ctx).AutoMigrate(models...); err != nil {
			return fmt.Errorf("failed to run database migrations: %w", err)
		}
		return nil
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", migrationLockKey).Error; err != nil {
			return fmt.Errorf("failed to acquire migration lock: %w", err)
		}
		if err := tx.AutoMigrate(models...); err != nil {
			return fmt.Errorf("failed to run database migrations: %w", err)
		}
		return nil
	})
}

// Ping checks that the database answers
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
