// Package postgres persists decision records in PostgreSQL via pgx. The
// match trace and expiry result are stored as JSONB so audit queries can
// inspect per-field detail.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hsaonboard/internal/decision"
	"hsaonboard/pkg/domain"
	dErrors "hsaonboard/pkg/domain-errors"
)

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Save(ctx context.Context, record *decision.Record) error {
	matches, err := json.Marshal(record.Matches)
	if err != nil {
		return fmt.Errorf("marshal match trace: %w", err)
	}
	expiry, err := json.Marshal(record.Expiry)
	if err != nil {
		return fmt.Errorf("marshal expiry result: %w", err)
	}

	query := `
		INSERT INTO decisions (
			id, application_id, outcome, explanation, matches, expiry,
			risk_score, reference_date, evaluated_by, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = s.pool.Exec(ctx, query,
		uuid.UUID(record.ID),
		uuid.UUID(record.ApplicationID),
		string(record.Outcome),
		record.Explanation,
		matches,
		expiry,
		record.RiskScore,
		record.ReferenceDate,
		record.EvaluatedBy,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert decision: %w", err)
	}
	return nil
}

func (s *Store) LatestByApplication(ctx context.Context, id domain.ApplicationID) (*decision.Record, error) {
	query := selectDecision + `
		WHERE application_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	record, err := scanRecord(s.pool.QueryRow(ctx, query, uuid.UUID(id)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no decision found for application")
		}
		return nil, fmt.Errorf("get latest decision: %w", err)
	}
	return record, nil
}

func (s *Store) ListByApplication(ctx context.Context, id domain.ApplicationID) ([]*decision.Record, error) {
	query := selectDecision + `
		WHERE application_id = $1
		ORDER BY created_at DESC
	`
	rows, err := s.pool.Query(ctx, query, uuid.UUID(id))
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	defer rows.Close()

	var records []*decision.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate decisions: %w", err)
	}
	return records, nil
}

const selectDecision = `
	SELECT id, application_id, outcome, explanation, matches, expiry,
		   risk_score, reference_date, evaluated_by, created_at
	FROM decisions
`

func scanRecord(row pgx.Row) (*decision.Record, error) {
	var (
		record    decision.Record
		rawID     uuid.UUID
		rawAppID  uuid.UUID
		matchesJS []byte
		expiryJS  []byte
	)
	err := row.Scan(
		&rawID,
		&rawAppID,
		&record.Outcome,
		&record.Explanation,
		&matchesJS,
		&expiryJS,
		&record.RiskScore,
		&record.ReferenceDate,
		&record.EvaluatedBy,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	record.ID = domain.DecisionID(rawID)
	record.ApplicationID = domain.ApplicationID(rawAppID)

	if err := json.Unmarshal(matchesJS, &record.Matches); err != nil {
		return nil, fmt.Errorf("unmarshal match trace: %w", err)
	}
	if err := json.Unmarshal(expiryJS, &record.Expiry); err != nil {
		return nil, fmt.Errorf("unmarshal expiry result: %w", err)
	}
	return &record, nil
}
