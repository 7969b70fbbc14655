package repository

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"waguri-alarm/internal/config"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

var (
	sharedOnce sync.Once
	sharedDB   *sql.DB
	sharedErr  error
)

// SharedStore 进程级共享存储句柄
// 首次调用时打开，之后所有入口（服务层、触发路径、后台会话）复用同一句柄；
// 并发首次调用也只构造一次
func SharedStore(cfg *config.Config) (*sql.DB, error) {
	sharedOnce.Do(func() {
		sharedDB, sharedErr = OpenStore(cfg)
	})
	return sharedDB, sharedErr
}

// OpenStore 打开闹钟存储
// 默认使用本地 sqlite 文件；Backend = "postgres" 时连接 PostgreSQL
func OpenStore(cfg *config.Config) (*sql.DB, error) {
	switch cfg.Store.Backend {
	case "sqlite", "":
		return openSQLite(cfg.Store.Path)
	case "postgres":
		return openPostgres(cfg)
	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.Store.Backend)
	}
}

func openSQLite(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite store: %w", err)
	}

	if err := initSchema(db, sqliteSchema); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func openPostgres(cfg *config.Config) (*sql.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Store.Host,
		cfg.Store.Port,
		cfg.Store.User,
		cfg.Store.Password,
		cfg.Store.Database,
		cfg.Store.SSLMode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres store: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	if err := initSchema(db, postgresSchema); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func initSchema(db *sql.DB, statements []string) error {
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to init schema: %w", err)
		}
	}
	return nil
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS alarms (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		hour         INTEGER NOT NULL,
		minute       INTEGER NOT NULL,
		label        TEXT    NOT NULL DEFAULT 'Alarm',
		active       INTEGER NOT NULL DEFAULT 1,
		vibrate      INTEGER NOT NULL DEFAULT 1,
		days_of_week TEXT    NOT NULL DEFAULT '',
		challenge    TEXT    NOT NULL DEFAULT 'None',
		CHECK (hour BETWEEN 0 AND 23),
		CHECK (minute BETWEEN 0 AND 59)
	)`,
	`CREATE INDEX IF NOT EXISTS alarms_active_idx ON alarms (active)`,
	`CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS entitlements (
		product_id   TEXT PRIMARY KEY,
		purchased_at INTEGER NOT NULL
	)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS alarms (
		id           SERIAL PRIMARY KEY,
		hour         INTEGER NOT NULL CHECK (hour BETWEEN 0 AND 23),
		minute       INTEGER NOT NULL CHECK (minute BETWEEN 0 AND 59),
		label        TEXT    NOT NULL DEFAULT 'Alarm',
		active       BOOLEAN NOT NULL DEFAULT TRUE,
		vibrate      BOOLEAN NOT NULL DEFAULT TRUE,
		days_of_week TEXT    NOT NULL DEFAULT '',
		challenge    TEXT    NOT NULL DEFAULT 'None'
	)`,
	`CREATE INDEX IF NOT EXISTS alarms_active_idx ON alarms (active)`,
	`CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS entitlements (
		product_id   TEXT PRIMARY KEY,
		purchased_at BIGINT NOT NULL
	)`,
}
