package db

import (
	"fmt"

	"meetingbot/pkg/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

func NewPostgresDB(cfg *config.Config) (*sqlx.DB, error) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDB)

	db, err := sqlx.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	logrus.Info("Connected to PostgreSQL")
	return db, nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS author (
		id SERIAL PRIMARY KEY,
		author_name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS books (
		id SERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		author_id INTEGER REFERENCES author(id),
		published_year INTEGER,
		genre TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS userlist (
		id SERIAL PRIMARY KEY,
		username TEXT NOT NULL,
		user_id BIGINT UNIQUE,
		user_role TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS web_users (
		id BIGSERIAL PRIMARY KEY,
		login TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		email TEXT,
		phone TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS google_tokens (
		id SMALLINT PRIMARY KEY DEFAULT 1,
		access_token TEXT NOT NULL,
		refresh_token TEXT,
		token_type TEXT NOT NULL,
		expiry TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

func Migrate(db *sqlx.DB) error {
	for _, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply migration: %w", err)
		}
	}

	logrus.Info("Database schema is up to date")
	return nil
}
