package database

import (
	"database/sql"
	"log"
	"time"

	_ "github.com/lib/pq"
)

var PostgresDB *sql.DB

// ConnectPostgres connects to PostgreSQL and initializes the schema.
func ConnectPostgres(postgresURI string) error {
	var err error

	PostgresDB, err = sql.Open("postgres", postgresURI)
	if err != nil {
		return err
	}

	PostgresDB.SetMaxOpenConns(25)
	PostgresDB.SetMaxIdleConns(5)
	PostgresDB.SetConnMaxLifetime(5 * time.Minute)

	if err = PostgresDB.Ping(); err != nil {
		return err
	}

	log.Println("Connected to PostgreSQL")

	return InitPostgresTables()
}

// InitPostgresTables creates the tables if they don't exist.
func InitPostgresTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL DEFAULT '',
			google_id VARCHAR(255) NOT NULL DEFAULT ''
		)`,

		// One row per friendship, pair stored in canonical order so the
		// mirrored edge is a single atomic insert/delete.
		`CREATE TABLE IF NOT EXISTS friendships (
			user_a UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			user_b UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			PRIMARY KEY (user_a, user_b),
			CHECK (user_a < user_b)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_users_email_lower ON users(LOWER(email))`,
		`CREATE INDEX IF NOT EXISTS idx_friendships_user_b ON friendships(user_b)`,
	}

	for _, query := range queries {
		if _, err := PostgresDB.Exec(query); err != nil {
			return err
		}
	}

	log.Println("PostgreSQL tables initialized")
	return nil
}

// DisconnectPostgres closes the PostgreSQL connection.
func DisconnectPostgres() error {
	if PostgresDB != nil {
		return PostgresDB.Close()
	}
	return nil
}
