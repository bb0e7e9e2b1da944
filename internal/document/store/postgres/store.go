// Package postgres persists document records in PostgreSQL via pgx.
// Extracted data is stored as JSONB.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hsaonboard/internal/document/models"
	"hsaonboard/pkg/domain"
	dErrors "hsaonboard/pkg/domain-errors"
)

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Create(ctx context.Context, doc *models.Document) error {
	extracted, err := marshalExtracted(doc)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO documents (
			id, application_id, type, file_name, content_type, size_bytes,
			status, extracted, error_message, superseded, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = s.pool.Exec(ctx, query,
		uuid.UUID(doc.ID),
		uuid.UUID(doc.ApplicationID),
		string(doc.Type),
		doc.FileName,
		doc.ContentType,
		doc.SizeBytes,
		string(doc.Status),
		extracted,
		doc.ErrorMessage,
		doc.Superseded,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, doc *models.Document) error {
	extracted, err := marshalExtracted(doc)
	if err != nil {
		return err
	}
	query := `
		UPDATE documents
		SET status = $2, extracted = $3, error_message = $4, superseded = $5,
			updated_at = $6
		WHERE id = $1
	`
	tag, err := s.pool.Exec(ctx, query,
		uuid.UUID(doc.ID),
		string(doc.Status),
		extracted,
		doc.ErrorMessage,
		doc.Superseded,
		doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return dErrors.New(dErrors.CodeNotFound, "document not found")
	}
	return nil
}

func (s *Store) GetByID(ctx context.Context, id domain.DocumentID) (*models.Document, error) {
	row := s.pool.QueryRow(ctx, selectDocument+` WHERE id = $1`, uuid.UUID(id))
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dErrors.New(dErrors.CodeNotFound, "document not found")
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

func (s *Store) ListByApplication(ctx context.Context, id domain.ApplicationID) ([]*models.Document, error) {
	rows, err := s.pool.Query(ctx,
		selectDocument+` WHERE application_id = $1 ORDER BY created_at DESC`,
		uuid.UUID(id),
	)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

func (s *Store) LatestByType(ctx context.Context, id domain.ApplicationID, docType models.Type) (*models.Document, error) {
	query := selectDocument + `
		WHERE application_id = $1 AND type = $2 AND NOT superseded
		ORDER BY created_at DESC
		LIMIT 1
	`
	doc, err := scanDocument(s.pool.QueryRow(ctx, query, uuid.UUID(id), string(docType)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no document of this type for application")
		}
		return nil, fmt.Errorf("get latest document: %w", err)
	}
	return doc, nil
}

func (s *Store) MarkSuperseded(ctx context.Context, id domain.ApplicationID, docType models.Type) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE documents SET superseded = TRUE WHERE application_id = $1 AND type = $2`,
		uuid.UUID(id), string(docType),
	)
	if err != nil {
		return fmt.Errorf("supersede documents: %w", err)
	}
	return nil
}

const selectDocument = `
	SELECT id, application_id, type, file_name, content_type, size_bytes,
		   status, extracted, error_message, superseded, created_at, updated_at
	FROM documents
`

func marshalExtracted(doc *models.Document) ([]byte, error) {
	switch {
	case doc.GovernmentID != nil:
		b, err := json.Marshal(doc.GovernmentID)
		if err != nil {
			return nil, fmt.Errorf("marshal extracted data: %w", err)
		}
		return b, nil
	case doc.EmployerProof != nil:
		b, err := json.Marshal(doc.EmployerProof)
		if err != nil {
			return nil, fmt.Errorf("marshal extracted data: %w", err)
		}
		return b, nil
	}
	return nil, nil
}

func scanDocument(row pgx.Row) (*models.Document, error) {
	var (
		doc       models.Document
		rawID     uuid.UUID
		rawAppID  uuid.UUID
		extracted []byte
	)
	err := row.Scan(
		&rawID,
		&rawAppID,
		&doc.Type,
		&doc.FileName,
		&doc.ContentType,
		&doc.SizeBytes,
		&doc.Status,
		&extracted,
		&doc.ErrorMessage,
		&doc.Superseded,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	doc.ID = domain.DocumentID(rawID)
	doc.ApplicationID = domain.ApplicationID(rawAppID)

	if len(extracted) > 0 {
		switch doc.Type {
		case models.TypeGovernmentID:
			var data models.GovernmentIDData
			if err := json.Unmarshal(extracted, &data); err != nil {
				return nil, fmt.Errorf("unmarshal extracted data: %w", err)
			}
			doc.GovernmentID = &data
		case models.TypeEmployerProof:
			var data models.EmployerProofData
			if err := json.Unmarshal(extracted, &data); err != nil {
				return nil, fmt.Errorf("unmarshal extracted data: %w", err)
			}
			doc.EmployerProof = &data
		}
	}
	return &doc, nil
}
