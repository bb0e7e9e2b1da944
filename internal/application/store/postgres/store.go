// Package postgres persists applications in PostgreSQL via pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hsaonboard/internal/application/models"
	"hsaonboard/internal/application/service"
	"hsaonboard/pkg/domain"
	dErrors "hsaonboard/pkg/domain-errors"
)

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Create(ctx context.Context, app *models.Application) error {
	query := `
		INSERT INTO applications (
			id, full_name, date_of_birth, street, city, state, zip,
			ssn, ssn_hash, employer_name, status, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := s.pool.Exec(ctx, query,
		uuid.UUID(app.ID),
		app.FullName,
		app.DateOfBirth,
		app.Address.Street,
		app.Address.City,
		app.Address.State,
		app.Address.Zip,
		app.SSN.Digits(),
		app.SSN.Hash(),
		app.EmployerName,
		string(app.Status),
		app.CreatedAt,
		app.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

func (s *Store) GetByID(ctx context.Context, id domain.ApplicationID) (*models.Application, error) {
	query := `
		SELECT id, full_name, date_of_birth, street, city, state, zip,
			   ssn, employer_name, status, created_at, updated_at
		FROM applications
		WHERE id = $1
	`
	row := s.pool.QueryRow(ctx, query, uuid.UUID(id))
	app, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dErrors.New(dErrors.CodeNotFound, "application not found")
		}
		return nil, fmt.Errorf("get application: %w", err)
	}
	return app, nil
}

func (s *Store) List(ctx context.Context, filter service.ListFilter) ([]*models.Application, error) {
	query := `
		SELECT id, full_name, date_of_birth, street, city, state, zip,
			   ssn, employer_name, status, created_at, updated_at
		FROM applications
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := s.pool.Query(ctx, query, string(filter.Status), filter.Limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var apps []*models.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applications: %w", err)
	}
	return apps, nil
}

func (s *Store) Update(ctx context.Context, app *models.Application) error {
	query := `
		UPDATE applications
		SET full_name = $2, date_of_birth = $3, street = $4, city = $5,
			state = $6, zip = $7, ssn = $8, ssn_hash = $9,
			employer_name = $10, status = $11, updated_at = $12
		WHERE id = $1
	`
	tag, err := s.pool.Exec(ctx, query,
		uuid.UUID(app.ID),
		app.FullName,
		app.DateOfBirth,
		app.Address.Street,
		app.Address.City,
		app.Address.State,
		app.Address.Zip,
		app.SSN.Digits(),
		app.SSN.Hash(),
		app.EmployerName,
		string(app.Status),
		app.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return dErrors.New(dErrors.CodeNotFound, "application not found")
	}
	return nil
}

func (s *Store) UpdateStatus(ctx context.Context, id domain.ApplicationID, status models.Status) error {
	query := `UPDATE applications SET status = $2, updated_at = now() WHERE id = $1`
	tag, err := s.pool.Exec(ctx, query, uuid.UUID(id), string(status))
	if err != nil {
		return fmt.Errorf("update application status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return dErrors.New(dErrors.CodeNotFound, "application not found")
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id domain.ApplicationID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM applications WHERE id = $1`, uuid.UUID(id))
	if err != nil {
		return fmt.Errorf("delete application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return dErrors.New(dErrors.CodeNotFound, "application not found")
	}
	return nil
}

func (s *Store) ExistsBySSNHash(ctx context.Context, hash string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM applications WHERE ssn_hash = $1)`, hash,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check ssn hash: %w", err)
	}
	return exists, nil
}

func scanApplication(row pgx.Row) (*models.Application, error) {
	var (
		app      models.Application
		rawID    uuid.UUID
		rawSSN   string
		rawState string
	)
	err := row.Scan(
		&rawID,
		&app.FullName,
		&app.DateOfBirth,
		&app.Address.Street,
		&app.Address.City,
		&rawState,
		&app.Address.Zip,
		&rawSSN,
		&app.EmployerName,
		&app.Status,
		&app.CreatedAt,
		&app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	app.ID = domain.ApplicationID(rawID)
	app.Address.State = rawState

	ssn, err := domain.ParseSSN(rawSSN)
	if err != nil {
		return nil, fmt.Errorf("stored ssn invalid: %w", err)
	}
	app.SSN = ssn
	return &app, nil
}
