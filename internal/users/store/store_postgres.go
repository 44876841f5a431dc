package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"landregistry/internal/platform/postgres"
	"landregistry/internal/users/models"
	"landregistry/pkg/domain"
	"landregistry/pkg/platform/sentinel"
	"landregistry/pkg/platform/tx"
)

type PostgresUserStore struct {
	db *sql.DB
}

func NewPostgresUsers(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

const userColumns = `address, name, age, city, government_id, document_cid, email,
	revenue_department_id, status, rejection_reason, verified_by, registered_at, reviewed_at`

func (s *PostgresUserStore) Create(ctx context.Context, u *models.User) error {
	_, err := tx.ExecutorFor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO registry_users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		userArgs(u)...,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresUserStore) FindByAddress(ctx context.Context, addr domain.Address) (*models.User, error) {
	row := tx.ExecutorFor(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM registry_users WHERE address = $1`, addr.String())
	return scanUser(row)
}

func (s *PostgresUserStore) Execute(ctx context.Context, addr domain.Address, validate func(*models.User) error, mutate func(*models.User)) (*models.User, error) {
	exec := tx.ExecutorFor(ctx, s.db)
	u, err := scanUser(exec.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM registry_users WHERE address = $1 FOR UPDATE`, addr.String()))
	if err != nil {
		return nil, err
	}
	if err := validate(u); err != nil {
		return nil, err
	}
	mutate(u)
	_, err = exec.ExecContext(ctx, `
		UPDATE registry_users SET
			name = $2, age = $3, city = $4, government_id = $5, document_cid = $6, email = $7,
			revenue_department_id = $8, status = $9, rejection_reason = $10, verified_by = $11,
			registered_at = $12, reviewed_at = $13
		WHERE address = $1`,
		userArgs(u)...,
	)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

func (s *PostgresUserStore) ListByDepartment(ctx context.Context, dept domain.DepartmentID, status models.Status) ([]*models.User, error) {
	rows, err := tx.ExecutorFor(ctx, s.db).QueryContext(ctx, `
		SELECT `+userColumns+` FROM registry_users
		WHERE revenue_department_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY registered_at, address`, int64(dept), string(status))
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var out []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return out, nil
}

func userArgs(u *models.User) []any {
	var reviewed sql.NullTime
	if u.ReviewedAt != nil {
		reviewed = sql.NullTime{Time: *u.ReviewedAt, Valid: true}
	}
	return []any{
		u.Address.String(), u.Name, u.Age, u.City, u.GovernmentID, u.DocumentCID, u.Email,
		int64(u.DepartmentID), string(u.Status), u.RejectionReason, u.VerifiedBy.String(),
		u.RegisteredAt, reviewed,
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*models.User, error) {
	var (
		u                   models.User
		addr, status, admin string
		dept                int64
		reviewed            sql.NullTime
	)
	err := row.Scan(&addr, &u.Name, &u.Age, &u.City, &u.GovernmentID, &u.DocumentCID, &u.Email,
		&dept, &status, &u.RejectionReason, &admin, &u.RegisteredAt, &reviewed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.Address = domain.Address(addr)
	u.DepartmentID = domain.DepartmentID(dept)
	u.Status = models.Status(status)
	u.VerifiedBy = domain.Address(admin)
	if reviewed.Valid {
		t := reviewed.Time
		u.ReviewedAt = &t
	}
	return &u, nil
}

type PostgresAdminStore struct {
	db *sql.DB
}

func NewPostgresAdmins(db *sql.DB) *PostgresAdminStore {
	return &PostgresAdminStore{db: db}
}

const adminColumns = `address, name, revenue_department_id, designation, city, created_at`

func (s *PostgresAdminStore) Create(ctx context.Context, a *models.RegionalAdmin) error {
	_, err := tx.ExecutorFor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO regional_admins (`+adminColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		a.Address.String(), a.Name, int64(a.DepartmentID), a.Designation, a.City, a.CreatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert regional admin: %w", err)
	}
	return nil
}

func (s *PostgresAdminStore) FindByAddress(ctx context.Context, addr domain.Address) (*models.RegionalAdmin, error) {
	row := tx.ExecutorFor(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+adminColumns+` FROM regional_admins WHERE address = $1`, addr.String())
	return scanAdmin(row)
}

func (s *PostgresAdminStore) Delete(ctx context.Context, addr domain.Address) error {
	res, err := tx.ExecutorFor(ctx, s.db).ExecContext(ctx,
		`DELETE FROM regional_admins WHERE address = $1`, addr.String())
	if err != nil {
		return fmt.Errorf("delete regional admin: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresAdminStore) List(ctx context.Context) ([]*models.RegionalAdmin, error) {
	rows, err := tx.ExecutorFor(ctx, s.db).QueryContext(ctx,
		`SELECT `+adminColumns+` FROM regional_admins ORDER BY revenue_department_id, address`)
	if err != nil {
		return nil, fmt.Errorf("query regional admins: %w", err)
	}
	defer rows.Close()

	var out []*models.RegionalAdmin
	for rows.Next() {
		a, err := scanAdmin(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate regional admins: %w", err)
	}
	return out, nil
}

func scanAdmin(row scanner) (*models.RegionalAdmin, error) {
	var (
		a    models.RegionalAdmin
		addr string
		dept int64
	)
	err := row.Scan(&addr, &a.Name, &dept, &a.Designation, &a.City, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan regional admin: %w", err)
	}
	a.Address = domain.Address(addr)
	a.DepartmentID = domain.DepartmentID(dept)
	return &a, nil
}
