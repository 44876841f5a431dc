package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"landregistry/internal/exchange/models"
	"landregistry/internal/platform/postgres"
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

const saleColumns = `id, property_id, seller, price, state, accepted_request_id, accepted_for,
	accepted_price, payment_deadline, paid_at, created_at, updated_at`

const requestColumns = `id, sale_id, buyer, offered_price, state, created_at, updated_at`

// CreateSale relies on the partial unique index over open sales.
func (s *PostgresStore) CreateSale(ctx context.Context, sale *models.Sale) error {
	var id int64
	err := tx.ExecutorFor(ctx, s.db).QueryRowContext(ctx, `
		INSERT INTO sales (property_id, seller, price, state, accepted_for, accepted_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, '', 0, $5, $6)
		RETURNING id`,
		int64(sale.PropertyID), sale.Seller.String(), sale.Price, string(sale.State), sale.CreatedAt, sale.UpdatedAt,
	).Scan(&id)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	sale.ID = domain.SaleID(id)
	return nil
}

func (s *PostgresStore) FindSale(ctx context.Context, id domain.SaleID) (*models.Sale, error) {
	return scanSale(tx.ExecutorFor(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+saleColumns+` FROM sales WHERE id = $1`, int64(id)))
}

// FindSaleForUpdate holds the sale row lock until the surrounding
// transaction ends.
func (s *PostgresStore) FindSaleForUpdate(ctx context.Context, id domain.SaleID) (*models.Sale, error) {
	return scanSale(tx.ExecutorFor(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+saleColumns+` FROM sales WHERE id = $1 FOR UPDATE`, int64(id)))
}

func (s *PostgresStore) ExecuteSale(ctx context.Context, id domain.SaleID, validate func(*models.Sale) error, mutate func(*models.Sale)) (*models.Sale, error) {
	exec := tx.ExecutorFor(ctx, s.db)
	sale, err := scanSale(exec.QueryRowContext(ctx,
		`SELECT `+saleColumns+` FROM sales WHERE id = $1 FOR UPDATE`, int64(id)))
	if err != nil {
		return nil, err
	}
	if err := validate(sale); err != nil {
		return nil, err
	}
	mutate(sale)
	var acceptedReq sql.NullInt64
	if sale.AcceptedRequestID != 0 {
		acceptedReq = sql.NullInt64{Int64: int64(sale.AcceptedRequestID), Valid: true}
	}
	_, err = exec.ExecContext(ctx, `
		UPDATE sales SET state = $2, accepted_request_id = $3, accepted_for = $4, accepted_price = $5,
			payment_deadline = $6, paid_at = $7, updated_at = $8
		WHERE id = $1`,
		int64(sale.ID), string(sale.State), acceptedReq, sale.AcceptedFor.String(), sale.AcceptedPrice,
		nullTime(sale.PaymentDeadline), nullTime(sale.PaidAt), sale.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update sale: %w", err)
	}
	return sale, nil
}

func (s *PostgresStore) ListSales(ctx context.Context, filter models.SaleFilter) ([]*models.Sale, error) {
	var (
		where []string
		args  []any
	)
	if filter.State != "" {
		args = append(args, string(filter.State))
		where = append(where, fmt.Sprintf("state = $%d", len(args)))
	}
	if filter.Seller != "" {
		args = append(args, filter.Seller.String())
		where = append(where, fmt.Sprintf("seller = $%d", len(args)))
	}
	if filter.PropertyID != 0 {
		args = append(args, int64(filter.PropertyID))
		where = append(where, fmt.Sprintf("property_id = $%d", len(args)))
	}
	q := `SELECT ` + saleColumns + ` FROM sales`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	return s.querySales(ctx, q+` ORDER BY id`, args...)
}

func (s *PostgresStore) ListOverdue(ctx context.Context, now time.Time) ([]*models.Sale, error) {
	return s.querySales(ctx, `
		SELECT `+saleColumns+` FROM sales
		WHERE state = $1 AND payment_deadline < $2
		ORDER BY id`, string(models.SaleAccepted), now)
}

func (s *PostgresStore) querySales(ctx context.Context, q string, args ...any) ([]*models.Sale, error) {
	rows, err := tx.ExecutorFor(ctx, s.db).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query sales: %w", err)
	}
	defer rows.Close()

	var out []*models.Sale
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sales: %w", err)
	}
	return out, nil
}

// CreateRequest relies on the partial unique index over open requests.
func (s *PostgresStore) CreateRequest(ctx context.Context, req *models.PurchaseRequest) error {
	var id int64
	err := tx.ExecutorFor(ctx, s.db).QueryRowContext(ctx, `
		INSERT INTO purchase_requests (sale_id, buyer, offered_price, state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		int64(req.SaleID), req.Buyer.String(), req.OfferedPrice, string(req.State), req.CreatedAt, req.UpdatedAt,
	).Scan(&id)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert purchase request: %w", err)
	}
	req.ID = domain.RequestID(id)
	return nil
}

func (s *PostgresStore) FindRequest(ctx context.Context, id domain.RequestID) (*models.PurchaseRequest, error) {
	return scanRequest(tx.ExecutorFor(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM purchase_requests WHERE id = $1`, int64(id)))
}

func (s *PostgresStore) ExecuteRequest(ctx context.Context, id domain.RequestID, validate func(*models.PurchaseRequest) error, mutate func(*models.PurchaseRequest)) (*models.PurchaseRequest, error) {
	exec := tx.ExecutorFor(ctx, s.db)
	req, err := scanRequest(exec.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM purchase_requests WHERE id = $1 FOR UPDATE`, int64(id)))
	if err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}
	mutate(req)
	_, err = exec.ExecContext(ctx,
		`UPDATE purchase_requests SET state = $2, updated_at = $3 WHERE id = $1`,
		int64(req.ID), string(req.State), req.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("update purchase request: %w", err)
	}
	return req, nil
}

func (s *PostgresStore) ListRequests(ctx context.Context, filter models.RequestFilter) ([]*models.PurchaseRequest, error) {
	var (
		where []string
		args  []any
	)
	if filter.SaleID != 0 {
		args = append(args, int64(filter.SaleID))
		where = append(where, fmt.Sprintf("sale_id = $%d", len(args)))
	}
	if filter.Buyer != "" {
		args = append(args, filter.Buyer.String())
		where = append(where, fmt.Sprintf("buyer = $%d", len(args)))
	}
	if len(filter.States) > 0 {
		args = append(args, pq.Array(stateStrings(filter.States)))
		where = append(where, fmt.Sprintf("state = ANY($%d)", len(args)))
	}
	q := `SELECT ` + requestColumns + ` FROM purchase_requests`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	rows, err := tx.ExecutorFor(ctx, s.db).QueryContext(ctx, q+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query purchase requests: %w", err)
	}
	defer rows.Close()

	var out []*models.PurchaseRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate purchase requests: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) SetRequestStates(ctx context.Context, sale domain.SaleID, from []models.RequestState, next models.RequestState, now time.Time) (int, error) {
	res, err := tx.ExecutorFor(ctx, s.db).ExecContext(ctx, `
		UPDATE purchase_requests SET state = $3, updated_at = $4
		WHERE sale_id = $1 AND state = ANY($2)`,
		int64(sale), pq.Array(stateStrings(from)), string(next), now)
	if err != nil {
		return 0, fmt.Errorf("update purchase requests: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}

func stateStrings(states []models.RequestState) []string {
	out := make([]string, len(states))
	for i, st := range states {
		out[i] = string(st)
	}
	return out
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSale(row scanner) (*models.Sale, error) {
	var (
		sale                      models.Sale
		id, property              int64
		seller, state, acceptedTo string
		acceptedReq               sql.NullInt64
		deadline, paid            sql.NullTime
	)
	err := row.Scan(&id, &property, &seller, &sale.Price, &state, &acceptedReq, &acceptedTo,
		&sale.AcceptedPrice, &deadline, &paid, &sale.CreatedAt, &sale.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan sale: %w", err)
	}
	sale.ID = domain.SaleID(id)
	sale.PropertyID = domain.PropertyID(property)
	sale.Seller = domain.Address(seller)
	sale.State = models.SaleState(state)
	sale.AcceptedFor = domain.Address(acceptedTo)
	if acceptedReq.Valid {
		sale.AcceptedRequestID = domain.RequestID(acceptedReq.Int64)
	}
	if deadline.Valid {
		t := deadline.Time
		sale.PaymentDeadline = &t
	}
	if paid.Valid {
		t := paid.Time
		sale.PaidAt = &t
	}
	return &sale, nil
}

func scanRequest(row scanner) (*models.PurchaseRequest, error) {
	var (
		req          models.PurchaseRequest
		id, sale     int64
		buyer, state string
	)
	err := row.Scan(&id, &sale, &buyer, &req.OfferedPrice, &state, &req.CreatedAt, &req.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan purchase request: %w", err)
	}
	req.ID = domain.RequestID(id)
	req.SaleID = domain.SaleID(sale)
	req.Buyer = domain.Address(buyer)
	req.State = models.RequestState(state)
	return &req, nil
}
