package database

import (
	"context"
	"database/sql"
	"fmt"
)

var guestsDDL = map[string]string{
	"mysql": `CREATE TABLE IF NOT EXISTS guests (
    id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
    number INT NOT NULL,
    name VARCHAR(255) NOT NULL,
    relation_cs VARCHAR(255) NOT NULL,
    relation_en VARCHAR(255) NOT NULL,
    about_cs TEXT NULL,
    about_en TEXT NULL,
    photo_path VARCHAR(255) NULL,
    audio_official_cs_path VARCHAR(255) NULL,
    audio_official_en_path VARCHAR(255) NULL,
    audio_funny_cs_path VARCHAR(255) NULL,
    audio_funny_en_path VARCHAR(255) NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    KEY idx_guests_number (number)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	"postgres": `CREATE TABLE IF NOT EXISTS guests (
    id BIGSERIAL PRIMARY KEY,
    number INTEGER NOT NULL,
    name TEXT NOT NULL,
    relation_cs TEXT NOT NULL,
    relation_en TEXT NOT NULL,
    about_cs TEXT NULL,
    about_en TEXT NULL,
    photo_path TEXT NULL,
    audio_official_cs_path TEXT NULL,
    audio_official_en_path TEXT NULL,
    audio_funny_cs_path TEXT NULL,
    audio_funny_en_path TEXT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
}

// Migrate creates the guests table when it does not exist yet.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	ddl, ok := guestsDDL[driver]
	if !ok {
		return fmt.Errorf("unsupported db driver %q", driver)
	}
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create guests: %w", err)
	}
	if driver == "postgres" {
		if _, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_guests_number ON guests (number)`); err != nil {
			return fmt.Errorf("create guests index: %w", err)
		}
	}
	return nil
}
