package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"contest_tracker/internal/platform/config"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
)

var DB *sql.DB

func Connect() {
	var err error
	DB, err = sql.Open("pgx", config.AppConfig.DBConnStr)
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}

	DB.SetMaxOpenConns(25)
	DB.SetMaxIdleConns(25)
	DB.SetConnMaxLifetime(5 * time.Minute)

	// Verify connection
	if err = DB.Ping(); err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}

	fmt.Println("Successfully connected to PostgreSQL database!")
}

// EnsureSchema creates the tables and indexes this service depends on. The
// unique index on contests.identity_key is load-bearing: concurrent inserts of
// the same contest resolve to a conflict instead of a duplicate row.
func EnsureSchema() {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			hashed_password TEXT NOT NULL,
			role TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS contests (
			id TEXT PRIMARY KEY,
			platform TEXT NOT NULL,
			title TEXT NOT NULL,
			slug TEXT NOT NULL,
			start_time TEXT NOT NULL,
			duration TEXT NOT NULL,
			url TEXT NOT NULL,
			solution_link TEXT,
			identity_key TEXT NOT NULL UNIQUE,
			added_at TIMESTAMPTZ NOT NULL,
			last_updated TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_contests_platform ON contests (platform)`,
	}
	for _, stmt := range schema {
		if _, err := DB.Exec(stmt); err != nil {
			log.Fatalf("Error ensuring schema: %v", err)
		}
	}
}

func Close() {
	if DB != nil {
		DB.Close()
		fmt.Println("Database connection closed.")
	}
}
