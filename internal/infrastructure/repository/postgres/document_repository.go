package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/docqa-ai/docqa/internal/core/domain"
)

type DocumentRepository struct {
	db         *sql.DB
	chunkTable string
}

func NewDocumentRepository(db *sql.DB, dims int) *DocumentRepository {
	return &DocumentRepository{db: db, chunkTable: chunkTableName(dims)}
}

// CreateReplacing registers a document, replacing any previous document with
// the same filename. The advisory lock serializes concurrent uploads of one
// filename; the delete cascades to the old document's chunks. The displaced
// document's storage path is returned so the old blob can be removed.
func (r *DocumentRepository) CreateReplacing(ctx context.Context, doc *domain.Document) (string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin create tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, doc.Filename); err != nil {
		return "", fmt.Errorf("acquire filename lock: %w", err)
	}

	var displaced string
	err = tx.QueryRowContext(ctx, `
DELETE FROM documents WHERE filename = $1 RETURNING storage_path
`, doc.Filename).Scan(&displaced)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("delete replaced document: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
INSERT INTO documents (id, filename, format, storage_path, file_size, status, error_message, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`,
		doc.ID, doc.Filename, string(doc.Format), doc.StoragePath, doc.FileSize,
		string(doc.Status), doc.Error, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("insert document: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit create tx: %w", err)
	}
	return displaced, nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	query := fmt.Sprintf(`
SELECT d.id, d.filename, d.format, d.storage_path, d.file_size, d.status, d.error_message, d.created_at, d.updated_at,
	(SELECT COUNT(*) FROM %s c WHERE c.document_id = d.id) AS chunk_count
FROM documents d
WHERE d.id = $1
`, r.chunkTable)

	doc, err := scanDocument(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("query document: %w", err)
	}
	return doc, nil
}

func (r *DocumentRepository) List(ctx context.Context) ([]domain.Document, error) {
	query := fmt.Sprintf(`
SELECT d.id, d.filename, d.format, d.storage_path, d.file_size, d.status, d.error_message, d.created_at, d.updated_at,
	(SELECT COUNT(*) FROM %s c WHERE c.document_id = d.id) AS chunk_count
FROM documents d
ORDER BY d.created_at DESC
`, r.chunkTable)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrDocumentNotFound, "delete document", fmt.Errorf("id %s", id))
	}
	return nil
}

func (r *DocumentRepository) UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE documents SET status = $2, error_message = $3, updated_at = $4 WHERE id = $1
`, id, string(status), errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrDocumentNotFound, "update document status", fmt.Errorf("id %s", id))
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var format, status string

	err := row.Scan(
		&doc.ID, &doc.Filename, &format, &doc.StoragePath, &doc.FileSize,
		&status, &doc.Error, &doc.CreatedAt, &doc.UpdatedAt, &doc.ChunkCount,
	)
	if err != nil {
		return nil, err
	}
	doc.Format = domain.DocumentFormat(format)
	doc.Status = domain.DocumentStatus(status)
	return &doc, nil
}
