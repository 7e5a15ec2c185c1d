package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
)

// Params identifies the relational backend holding the guests table.
type Params struct {
	Driver  string // "mysql" or "postgres"
	User    string
	Pass    string
	Host    string
	Port    string
	Name    string
	SSLMode string // postgres only
}

// DSN builds the driver specific connection string.
func (p Params) DSN() (string, error) {
	switch p.Driver {
	case "mysql":
		auth := p.User
		if p.Pass != "" {
			auth = fmt.Sprintf("%s:%s", p.User, p.Pass)
		}
		// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
		// clientFoundRows=true -> RowsAffected counts matched rows, not changed ones
		return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC&clientFoundRows=true",
			auth, p.Host, p.Port, p.Name), nil
	case "postgres":
		ssl := p.SSLMode
		if ssl == "" {
			ssl = "require"
		}
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			p.Host, p.Port, p.User, p.Pass, p.Name, ssl), nil
	}
	return "", fmt.Errorf("unsupported db driver %q", p.Driver)
}

// Open connects to the configured database and verifies the connection.
func Open(p Params) (*sql.DB, error) {
	dsn, err := p.DSN()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(p.Driver, dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
