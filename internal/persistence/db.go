// Package persistence stores activities and workouts. Writes go through gorm
// so workout creation can relink existing activities; reads are flat sqlx
// projections built with goqu.
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config selects the database to open.
type Config struct {
	Driver string
	URL    string
}

// Database bundles the gorm and sqlx handles, which share one *sql.DB.
type Database struct {
	Gorm        *gorm.DB
	SQL         *sqlx.DB
	Dialect     goqu.DialectWrapper
	DialectName string
	Driver      string

	pool *pgxpool.Pool
}

// Open connects to the configured database and verifies the connection.
func Open(ctx context.Context, cfg Config) (*Database, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("persistence: database url is required")
	}

	gormCfg := &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	}

	switch cfg.Driver {
	case DriverPostgres:
		return openPostgres(ctx, cfg.URL, gormCfg)
	case DriverSQLite, "":
		return openSQLite(ctx, cfg.URL, gormCfg)
	default:
		return nil, fmt.Errorf("persistence: unsupported driver %q", cfg.Driver)
	}
}

func openPostgres(ctx context.Context, url string, gormCfg *gorm.Config) (*Database, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("persistence: connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("persistence: ping postgres: %w", err)
	}

	sqlDB := stdlib.OpenDBFromPool(pool)
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gormCfg)
	if err != nil {
		_ = sqlDB.Close()
		pool.Close()
		return nil, fmt.Errorf("persistence: open gorm: %w", err)
	}

	return &Database{
		Gorm:        gdb,
		SQL:         sqlx.NewDb(sqlDB, "pgx"),
		Dialect:     goqu.Dialect("postgres"),
		DialectName: "postgres",
		Driver:      DriverPostgres,
		pool:        pool,
	}, nil
}

func openSQLite(ctx context.Context, url string, gormCfg *gorm.Config) (*Database, error) {
	gdb, err := gorm.Open(sqlite.Open(url), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("persistence: open sqlite: %w", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("persistence: sqlite handle: %w", err)
	}
	// Every connection to an in-memory database is a new database unless
	// the cache is shared, and even then writers contend on one lock.
	if isMemoryDSN(url) {
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("persistence: ping sqlite: %w", err)
	}

	return &Database{
		Gorm:        gdb,
		SQL:         sqlx.NewDb(sqlDB, "sqlite3"),
		Dialect:     goqu.Dialect("sqlite3"),
		DialectName: "sqlite3",
		Driver:      DriverSQLite,
	}, nil
}

func isMemoryDSN(url string) bool {
	return url == ":memory:" || strings.Contains(url, "mode=memory")
}

// DB exposes the shared connection pool.
func (d *Database) DB() *sql.DB {
	return d.SQL.DB
}

// Close releases the connection pool.
func (d *Database) Close() error {
	err := d.SQL.Close()
	if d.pool != nil {
		d.pool.Close()
	}
	return err
}
