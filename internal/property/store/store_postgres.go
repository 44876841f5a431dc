package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"landregistry/internal/platform/postgres"
	"landregistry/internal/property/models"
	"landregistry/pkg/domain"
	"landregistry/pkg/platform/sentinel"
	"landregistry/pkg/platform/tx"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const propertyColumns = `id, owner, admin, revenue_department_id, location_id, survey_number, area,
	market_value, document_cid, state, rejection_reason, registered_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, p *models.Property) error {
	var id int64
	err := tx.ExecutorFor(ctx, s.db).QueryRowContext(ctx, `
		INSERT INTO properties (owner, admin, revenue_department_id, location_id, survey_number, area,
			market_value, document_cid, state, rejection_reason, registered_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`,
		p.Owner.String(), p.Admin.String(), int64(p.DepartmentID), int64(p.LocationID), p.SurveyNumber, p.Area,
		p.MarketValue, p.DocumentCID, string(p.State), p.RejectionReason, p.RegisteredAt, p.UpdatedAt,
	).Scan(&id)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert property: %w", err)
	}
	p.ID = domain.PropertyID(id)
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.PropertyID) (*models.Property, error) {
	return scanProperty(tx.ExecutorFor(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+propertyColumns+` FROM properties WHERE id = $1`, int64(id)))
}

func (s *PostgresStore) Execute(ctx context.Context, id domain.PropertyID, validate func(*models.Property) error, mutate func(*models.Property)) (*models.Property, error) {
	exec := tx.ExecutorFor(ctx, s.db)
	p, err := scanProperty(exec.QueryRowContext(ctx,
		`SELECT `+propertyColumns+` FROM properties WHERE id = $1 FOR UPDATE`, int64(id)))
	if err != nil {
		return nil, err
	}
	if err := validate(p); err != nil {
		return nil, err
	}
	mutate(p)
	_, err = exec.ExecContext(ctx, `
		UPDATE properties SET owner = $2, admin = $3, state = $4, rejection_reason = $5, updated_at = $6
		WHERE id = $1`,
		int64(p.ID), p.Owner.String(), p.Admin.String(), string(p.State), p.RejectionReason, p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update property: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) ListByOwner(ctx context.Context, owner domain.Address) ([]*models.Property, error) {
	return s.query(ctx, `SELECT `+propertyColumns+` FROM properties WHERE owner = $1 ORDER BY id`, owner.String())
}

func (s *PostgresStore) ListByDepartment(ctx context.Context, dept domain.DepartmentID, state models.State) ([]*models.Property, error) {
	return s.query(ctx, `
		SELECT `+propertyColumns+` FROM properties
		WHERE revenue_department_id = $1 AND ($2 = '' OR state = $2)
		ORDER BY id`, int64(dept), string(state))
}

func (s *PostgresStore) query(ctx context.Context, q string, args ...any) ([]*models.Property, error) {
	rows, err := tx.ExecutorFor(ctx, s.db).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query properties: %w", err)
	}
	defer rows.Close()

	var out []*models.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate properties: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProperty(row scanner) (*models.Property, error) {
	var (
		p                   models.Property
		id, dept, location  int64
		owner, admin, state string
	)
	err := row.Scan(&id, &owner, &admin, &dept, &location, &p.SurveyNumber, &p.Area,
		&p.MarketValue, &p.DocumentCID, &state, &p.RejectionReason, &p.RegisteredAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan property: %w", err)
	}
	p.ID = domain.PropertyID(id)
	p.Owner = domain.Address(owner)
	p.Admin = domain.Address(admin)
	p.DepartmentID = domain.DepartmentID(dept)
	p.LocationID = domain.LocationID(location)
	p.State = models.State(state)
	return &p, nil
}
