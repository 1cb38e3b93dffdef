// Package postgrestest opens a scratch database for repository tests. Tests
// are skipped unless TEST_DATABASE_URL points at a disposable PostgreSQL.
// Packages share the tables, so run them with -p 1.
package postgrestest

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/lib/pq"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS users (
	tg_id      BIGINT PRIMARY KEY,
	username   TEXT,
	name       TEXT,
	email      TEXT,
	phone      TEXT,
	language   TEXT,
	unit       TEXT,
	avatar_url TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS telegram_nonces (
	nonce          TEXT PRIMARY KEY,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	expires_at     TIMESTAMPTZ NOT NULL,
	used           BOOLEAN NOT NULL DEFAULT FALSE,
	admin_user_id  TEXT,
	tg_id          BIGINT,
	exchange_token TEXT
);

CREATE SCHEMA IF NOT EXISTS admin;

CREATE TABLE IF NOT EXISTS admin.admin_users (
	id        TEXT PRIMARY KEY,
	email     TEXT,
	tg_id     BIGINT,
	role      TEXT NOT NULL,
	is_active BOOLEAN NOT NULL DEFAULT TRUE
);

TRUNCATE users, telegram_nonces, admin.admin_users;
`

// Open returns a connection with fresh tables or skips the test.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping PostgreSQL test")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		t.Skipf("database not reachable: %v", err)
	}
	if _, err := db.ExecContext(ctx, schemaDDL); err != nil {
		db.Close()
		t.Fatalf("prepare schema: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}
