package repository

import (
	"context"
	"errors"

	"github.com/minibank/minibank/internal/domain/entity"
)

// Sentinel errors returned by store implementations. ErrDuplicate surfaces a
// uniqueness violation (email, account owner) so callers can map it to a
// conflict instead of a generic failure.
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate key")
)

// UserRepository defines the identity service's store operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
}
