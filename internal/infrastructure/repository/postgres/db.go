package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const schemaLockID = int64(2026083001)

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the documents table and the chunk table for the active
// embedding dimensionality. Each dimensionality gets its own table, so a
// profile switch starts from an empty searchable set instead of mixing vector
// sizes.
func EnsureSchema(ctx context.Context, db *sql.DB, dims int) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, schemaLockID); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `CREATE EXTENSION IF NOT EXISTS vector; CREATE EXTENSION IF NOT EXISTS pg_trgm;`); err != nil {
		return fmt.Errorf("create extensions: %w", err)
	}

	const documentsDDL = `
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	filename TEXT NOT NULL UNIQUE,
	format TEXT NOT NULL,
	storage_path TEXT NOT NULL,
	file_size BIGINT NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	error_message TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status);
CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents(created_at DESC);
`
	if _, err := tx.ExecContext(ctx, documentsDDL); err != nil {
		return fmt.Errorf("execute documents ddl: %w", err)
	}

	table := chunkTableName(dims)
	chunksDDL := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %[1]s (
	seq BIGSERIAL PRIMARY KEY,
	document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	chunk_index INT NOT NULL,
	content TEXT NOT NULL,
	token_count INT NOT NULL DEFAULT 0,
	embedding vector(%[2]d) NOT NULL,
	content_tsv tsvector GENERATED ALWAYS AS (to_tsvector('simple', content)) STORED,
	UNIQUE (document_id, chunk_index)
);

CREATE INDEX IF NOT EXISTS idx_%[1]s_document_id ON %[1]s(document_id);
CREATE INDEX IF NOT EXISTS idx_%[1]s_tsv ON %[1]s USING GIN (content_tsv);
CREATE INDEX IF NOT EXISTS idx_%[1]s_trgm ON %[1]s USING GIN (content gin_trgm_ops);
`, table, dims)
	if _, err := tx.ExecContext(ctx, chunksDDL); err != nil {
		return fmt.Errorf("execute chunks ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func chunkTableName(dims int) string {
	return fmt.Sprintf("chunks_%d", dims)
}
