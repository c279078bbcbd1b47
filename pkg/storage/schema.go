package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema creates the account and analysis tables. It is valid for SQLite
// and PostgreSQL alike. Timestamps are stored as Unix nanoseconds so both
// dialects order and compare them identically.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    api_key TEXT NOT NULL UNIQUE,
    plan TEXT NOT NULL DEFAULT 'free',
    requests_used INTEGER NOT NULL DEFAULT 0,
    requests_limit INTEGER NOT NULL DEFAULT 100,
    created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS analyses (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    text TEXT NOT NULL,
    sentiment TEXT NOT NULL,
    score INTEGER NOT NULL,
    suggestions TEXT NOT NULL,
    summary TEXT NOT NULL DEFAULT '',
    cached BOOLEAN NOT NULL DEFAULT FALSE,
    fallback BOOLEAN NOT NULL DEFAULT FALSE,
    created_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_analyses_user_created ON analyses(user_id, created_at);
CREATE INDEX IF NOT EXISTS idx_analyses_created ON analyses(created_at);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);
`

// InsertSchemaVersion records the schema version if it is not present yet.
const InsertSchemaVersion = `INSERT INTO schema_version (version) VALUES (?) ON CONFLICT (version) DO NOTHING`

// GetSchemaVersion returns the highest recorded schema version.
const GetSchemaVersion = `SELECT COALESCE(MAX(version), 0) FROM schema_version`

const accountColumns = `id, email, password_hash, api_key, plan, requests_used, requests_limit, created_at`

const analysisColumns = `id, user_id, text, sentiment, score, suggestions, summary, cached, fallback, created_at`
