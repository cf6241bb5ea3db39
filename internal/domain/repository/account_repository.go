package repository

import (
	"context"

	"github.com/minibank/minibank/internal/domain/entity"
)

// AccountRepository defines the ledger service's store operations. A user
// holds at most one account, so lookups are keyed by the owning user id.
type AccountRepository interface {
	Create(ctx context.Context, a *entity.Account) error
	GetByUserID(ctx context.Context, userID string) (*entity.Account, error)
	Update(ctx context.Context, a *entity.Account) error
}
