package db

import (
	"database/sql"
	"fmt"
	"time"

	"sonique/config"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

// DB is the shared connection pool used by the repositories.
var DB *sql.DB

// Connect establishes the MySQL connection pool.
func Connect(cfg *config.Config) error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	var err error
	DB, err = sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	DB.SetMaxIdleConns(10)
	DB.SetMaxOpenConns(100)
	DB.SetConnMaxLifetime(time.Hour)

	if err = DB.Ping(); err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// Close closes the connection pool.
func Close() error {
	if DB == nil {
		return nil
	}
	return DB.Close()
}
