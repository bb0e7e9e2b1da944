// Package postgres persists assistant Q&A history in PostgreSQL via pgx.
package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hsaonboard/internal/assistant/models"
	"hsaonboard/pkg/domain"
)

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Save(ctx context.Context, exchange *models.Exchange) error {
	var appID *uuid.UUID
	if !exchange.ApplicationID.IsNil() {
		raw := uuid.UUID(exchange.ApplicationID)
		appID = &raw
	}

	query := `
		INSERT INTO assistant_exchanges (
			id, application_id, question, context, answer, confidence_score,
			citations_count, source_documents, cached, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.pool.Exec(ctx, query,
		uuid.UUID(exchange.ID),
		appID,
		exchange.Question,
		exchange.Context,
		exchange.Answer,
		exchange.ConfidenceScore,
		exchange.CitationsCount,
		exchange.SourceDocuments,
		exchange.Cached,
		exchange.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert assistant exchange: %w", err)
	}
	return nil
}

func (s *Store) History(ctx context.Context, applicationID domain.ApplicationID, limit, offset int) ([]*models.Exchange, error) {
	query := selectExchange + `
		WHERE ($1::uuid IS NULL OR application_id = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	var appID *uuid.UUID
	if !applicationID.IsNil() {
		raw := uuid.UUID(applicationID)
		appID = &raw
	}

	rows, err := s.pool.Query(ctx, query, appID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list assistant history: %w", err)
	}
	defer rows.Close()

	var out []*models.Exchange
	for rows.Next() {
		exchange, err := scanExchange(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assistant exchange: %w", err)
		}
		out = append(out, exchange)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assistant history: %w", err)
	}
	return out, nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM assistant_exchanges`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count assistant exchanges: %w", err)
	}
	return count, nil
}

const selectExchange = `
	SELECT id, application_id, question, context, answer, confidence_score,
		   citations_count, source_documents, cached, created_at
	FROM assistant_exchanges
`

func scanExchange(row pgx.Row) (*models.Exchange, error) {
	var (
		exchange models.Exchange
		rawID    uuid.UUID
		rawAppID *uuid.UUID
	)
	err := row.Scan(
		&rawID,
		&rawAppID,
		&exchange.Question,
		&exchange.Context,
		&exchange.Answer,
		&exchange.ConfidenceScore,
		&exchange.CitationsCount,
		&exchange.SourceDocuments,
		&exchange.Cached,
		&exchange.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	exchange.ID = domain.ExchangeID(rawID)
	if rawAppID != nil {
		exchange.ApplicationID = domain.ApplicationID(*rawAppID)
	}
	return &exchange, nil
}
