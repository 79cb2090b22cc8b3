package config

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"
)

func InitDB() (*sql.DB, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

func RunMigrations(db *sql.DB) error {
	migrations := []string{
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			email VARCHAR(255) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			name VARCHAR(255) NOT NULL,
			totp_secret VARCHAR(255),
			totp_enabled BOOLEAN DEFAULT FALSE,
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS sessions (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			user_id UUID REFERENCES users(id) ON DELETE CASCADE,
			refresh_token VARCHAR(500) UNIQUE NOT NULL,
			expires_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS events (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			name VARCHAR(100) NOT NULL,
			description TEXT DEFAULT '',
			location VARCHAR(500) DEFAULT '',
			event_date TIMESTAMP,
			organizer UUID REFERENCES users(id) ON DELETE CASCADE,
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS event_members (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			event_id UUID REFERENCES events(id) ON DELETE CASCADE,
			user_id UUID REFERENCES users(id) ON DELETE CASCADE,
			joined_at TIMESTAMP DEFAULT NOW(),
			UNIQUE(event_id, user_id)
		)`,

		`CREATE TABLE IF NOT EXISTS user_pending_events (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			user_id UUID REFERENCES users(id) ON DELETE CASCADE,
			event_id UUID REFERENCES events(id) ON DELETE CASCADE,
			created_at TIMESTAMP DEFAULT NOW(),
			UNIQUE(user_id, event_id)
		)`,

		`CREATE TABLE IF NOT EXISTS items (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			event_id UUID REFERENCES events(id) ON DELETE CASCADE,
			name VARCHAR(255) NOT NULL,
			assigned_to UUID REFERENCES users(id) ON DELETE SET NULL,
			position INTEGER DEFAULT 0,
			created_at TIMESTAMP DEFAULT NOW(),
			UNIQUE(event_id, name)
		)`,

		`CREATE TABLE IF NOT EXISTS user_invites (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			email VARCHAR(255) NOT NULL,
			event_id UUID REFERENCES events(id) ON DELETE CASCADE,
			created_at TIMESTAMP DEFAULT NOW(),
			UNIQUE(email, event_id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_events_organizer ON events(organizer)`,
		`CREATE INDEX IF NOT EXISTS idx_event_members_event_id ON event_members(event_id)`,
		`CREATE INDEX IF NOT EXISTS idx_event_members_user_id ON event_members(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_user_pending_events_user_id ON user_pending_events(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_user_pending_events_event_id ON user_pending_events(event_id)`,
		`CREATE INDEX IF NOT EXISTS idx_items_event_id ON items(event_id)`,
		`CREATE INDEX IF NOT EXISTS idx_user_invites_email ON user_invites(email)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}

	return nil
}
