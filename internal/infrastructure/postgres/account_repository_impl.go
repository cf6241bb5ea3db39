package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/minibank/minibank/internal/domain/entity"
	"github.com/minibank/minibank/internal/domain/repository"
)

// AccountRepository persists ledger accounts. The accounts table carries a
// unique index on user_id and a CHECK (balance >= 0), the store-level
// backstops for the one-account-per-user and non-negative-balance rules.
type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

func (r *AccountRepository) Create(ctx context.Context, a *entity.Account) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO accounts (user_id, balance)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`, a.UserID, a.Balance)

	if err := row.Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *AccountRepository) GetByUserID(ctx context.Context, userID string) (*entity.Account, error) {
	a := &entity.Account{}
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, balance, created_at, updated_at
		FROM accounts
		WHERE user_id = $1
	`, userID)

	if err := row.Scan(&a.ID, &a.UserID, &a.Balance, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *AccountRepository) Update(ctx context.Context, a *entity.Account) error {
	a.UpdatedAt = time.Now().UTC()

	res, err := r.pool.Exec(ctx, `
		UPDATE accounts
		SET balance = $1, updated_at = $2
		WHERE id = $3
	`, a.Balance, a.UpdatedAt, a.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.AccountRepository = (*AccountRepository)(nil)
