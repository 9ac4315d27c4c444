package database

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/mwalimu/darasa/core"
)

const schema = `
CREATE TABLE IF NOT EXISTS person (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    name       TEXT NOT NULL,
    email      TEXT NOT NULL UNIQUE,
    role       TEXT NOT NULL DEFAULT 'user',
    created_at TIMESTAMP NOT NULL
);
`

// Open opens the demo SQLite database and bootstraps its schema.
func Open(conf *core.Config) (*sqlx.DB, error) {
	dsn := conf.Database.Path + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "opening sqlite db")
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	if err := ping(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "bootstrapping schema")
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sqlx.DB) error {
	var err error
	maxAttempts := 10
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}
	return errors.Wrap(err, "DB ping")
}

// Seed inserts the demo directory rows if the table is empty.
func Seed(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(*) FROM person`); err != nil {
		return errors.Wrap(err, "checking person table")
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	seedRows := []struct {
		name, email, role string
	}{
		{"Alice Johnson", "alice@example.com", "admin"},
		{"Bob Smith", "bob@example.com", "user"},
		{"Carol White", "carol@example.com", "user"},
		{"David Brown", "david@example.com", "viewer"},
	}
	for _, row := range seedRows {
		_, err := db.ExecContext(ctx,
			`INSERT INTO person (name, email, role, created_at) VALUES (?, ?, ?, ?)`,
			row.name, row.email, row.role, now,
		)
		if err != nil {
			return errors.Wrapf(err, "seeding %s", row.email)
		}
	}
	return nil
}
