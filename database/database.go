// Package database opens the shared gorm connection used by the repositories.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ChadVezina/TP3-Prog-Web-Avance/config"
	"github.com/ChadVezina/TP3-Prog-Web-Avance/models"
	"github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Dialector returns the gorm dialector for the configured driver.
// Postgres goes through lib/pq so its errors surface as *pq.Error.
func Dialector(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case config.DriverMySQL:
		return mysql.Open(cfg.DSN()), nil
	case config.DriverPostgres:
		connector, err := pq.NewConnector(cfg.DSN())
		if err != nil {
			return nil, fmt.Errorf("postgres connector: %w", err)
		}
		return postgres.New(postgres.Config{Conn: sql.OpenDB(connector)}), nil
	default:
		return nil, fmt.Errorf("unsupported driver %q", cfg.Driver)
	}
}

// Open connects to the database and, when enabled, migrates the forfaits
// table. The pool is capped at one connection: every request shares it.
func Open(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}
	return OpenWith(dialector, cfg.AutoMigrate, log)
}

// OpenWith is Open for an already built dialector.
func OpenWith(dialector gorm.Dialector, autoMigrate bool, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: queryLogger(log),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if autoMigrate {
		if err := db.AutoMigrate(&models.Forfait{}); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("migrate forfaits: %w", err)
		}
	}

	log.Info("Connected to database", zap.String("dialect", dialector.Name()))
	return db, nil
}

// queryLogger sends gorm traces through zap. Statements are traced only when
// debug logging is on; otherwise only failures and slow queries are written.
// Not-found lookups are answered with a 404 and never logged.
func queryLogger(log *zap.Logger) gormlogger.Interface {
	level := gormlogger.Warn
	if log.Core().Enabled(zap.DebugLevel) {
		level = gormlogger.Info
	}
	return gormlogger.New(zap.NewStdLog(log.Named("gorm")), gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// Ping reports whether the database answers within ctx.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying connection.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
