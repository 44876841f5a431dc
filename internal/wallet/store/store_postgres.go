package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"landregistry/internal/platform/postgres"
	"landregistry/internal/wallet/models"
	"landregistry/pkg/domain"
	"landregistry/pkg/platform/sentinel"
	"landregistry/pkg/platform/tx"
)

// PostgresStore persists accounts in wallet_accounts and the ledger in
// wallet_transfers. Calls join the transaction carried by ctx.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const accountColumns = `address, passphrase_hash, balance, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, account *models.Account) error {
	_, err := tx.ExecutorFor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO wallet_accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5)`,
		account.Address.String(), string(account.PassphraseHash), account.Balance, account.CreatedAt, account.UpdatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert wallet account: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByAddress(ctx context.Context, addr domain.Address) (*models.Account, error) {
	row := tx.ExecutorFor(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM wallet_accounts WHERE address = $1`, addr.String())
	return scanAccount(row)
}

// Execute locks the row with FOR UPDATE, validates, mutates and writes back.
func (s *PostgresStore) Execute(ctx context.Context, addr domain.Address, validate func(*models.Account) error, mutate func(*models.Account)) (*models.Account, error) {
	exec := tx.ExecutorFor(ctx, s.db)
	row := exec.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM wallet_accounts WHERE address = $1 FOR UPDATE`, addr.String())
	acc, err := scanAccount(row)
	if err != nil {
		return nil, err
	}
	if err := validate(acc); err != nil {
		return nil, err
	}
	mutate(acc)
	_, err = exec.ExecContext(ctx,
		`UPDATE wallet_accounts SET balance = $2, updated_at = $3 WHERE address = $1`,
		acc.Address.String(), acc.Balance, acc.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update wallet account: %w", err)
	}
	return acc, nil
}

func (s *PostgresStore) RecordTransfer(ctx context.Context, t *models.Transfer) error {
	err := tx.ExecutorFor(ctx, s.db).QueryRowContext(ctx, `
		INSERT INTO wallet_transfers (from_address, to_address, amount, memo, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		t.From.String(), t.To.String(), t.Amount, t.Memo, t.CreatedAt,
	).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("insert wallet transfer: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListTransfers(ctx context.Context, addr domain.Address, limit int) ([]*models.Transfer, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := tx.ExecutorFor(ctx, s.db).QueryContext(ctx, `
		SELECT id, from_address, to_address, amount, memo, created_at
		FROM wallet_transfers
		WHERE from_address = $1 OR to_address = $1
		ORDER BY id DESC
		LIMIT $2`, addr.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("query wallet transfers: %w", err)
	}
	defer rows.Close()

	var out []*models.Transfer
	for rows.Next() {
		var (
			t        models.Transfer
			from, to string
		)
		if err := rows.Scan(&t.ID, &from, &to, &t.Amount, &t.Memo, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan wallet transfer: %w", err)
		}
		t.From, t.To = domain.Address(from), domain.Address(to)
		out = append(out, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallet transfers: %w", err)
	}
	return out, nil
}

func scanAccount(row *sql.Row) (*models.Account, error) {
	var (
		acc        models.Account
		addr, hash string
	)
	err := row.Scan(&addr, &hash, &acc.Balance, &acc.CreatedAt, &acc.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan wallet account: %w", err)
	}
	acc.Address = domain.Address(addr)
	acc.PassphraseHash = []byte(hash)
	return &acc, nil
}
