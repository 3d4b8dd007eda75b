package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// seq gives the directory a stable insertion order independent of the
// random uuid primary key.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	seq           BIGSERIAL UNIQUE,
	id            UUID PRIMARY KEY,
	name          TEXT NOT NULL CHECK (name <> ''),
	email         TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	role          TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'user')),
	education     TEXT NOT NULL DEFAULT '',
	skills        TEXT[] NOT NULL DEFAULT '{}',
	projects      JSONB NOT NULL DEFAULT '[]'::jsonb,
	work          TEXT[] NOT NULL DEFAULT '{}',
	links         TEXT[] NOT NULL DEFAULT '{}',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (email);
CREATE INDEX IF NOT EXISTS users_role_seq_idx ON users (role, seq);
CREATE INDEX IF NOT EXISTS users_skills_gin_idx ON users USING GIN (skills);
`

func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}
