package entity

import (
	"errors"
	"time"
)

var (
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// Account is the ledger aggregate. Balance is held in cents so arithmetic
// stays exact. The invariant balance >= 0 is enforced here and nowhere else;
// the aggregate knows nothing about storage or caching, callers re-persist it
// after a mutation.
type Account struct {
	ID        string
	UserID    string
	Balance   int64 // cents
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Open claims the account for userID. Callers must have checked that no
// account exists for that user; the store's unique index on user_id is the
// backstop against concurrent opens.
func (a *Account) Open(userID string) {
	now := time.Now().UTC()
	a.UserID = userID
	a.CreatedAt = now
	a.UpdatedAt = now
}

func (a *Account) Deposit(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	a.Balance += amount
	a.UpdatedAt = time.Now().UTC()
	return nil
}

func (a *Account) Withdraw(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if a.Balance < amount {
		return ErrInsufficientBalance
	}
	a.Balance -= amount
	a.UpdatedAt = time.Now().UTC()
	return nil
}
