package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/minibank/minibank/internal/domain/entity"
	repo "github.com/minibank/minibank/internal/domain/repository"
	"github.com/minibank/minibank/internal/events"
	"github.com/minibank/minibank/pkg/cache"
)

var (
	ErrAccountNotFound = errors.New("account not found for this user")
	ErrAccountExists   = errors.New("account already exists for this user")
)

// AccountProjection is what read paths return and what gets cached under
// account:<userId>. Balance is in cents.
type AccountProjection struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func projectAccount(a *entity.Account) AccountProjection {
	return AccountProjection{
		ID:        a.ID,
		UserID:    a.UserID,
		Balance:   a.Balance,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// AccountService orchestrates the ledger use cases.
type AccountService struct {
	Repo      repo.AccountRepository
	Cache     *cache.Cache
	Publisher *events.LedgerPublisher
	Logger    *logrus.Logger
}

func NewAccountService(r repo.AccountRepository, c *cache.Cache, pub *events.LedgerPublisher, logger *logrus.Logger) *AccountService {
	return &AccountService{Repo: r, Cache: c, Publisher: pub, Logger: logger}
}

// OpenAccount provisions the single account a user may hold. The existence
// check avoids a useless insert; the store's unique index on user_id is the
// real guard against a concurrent open. Delivered events may repeat, so a
// second open for the same user yields ErrAccountExists and no new record.
func (s *AccountService) OpenAccount(ctx context.Context, user events.UserView) (*entity.Account, error) {
	existing, err := s.Repo.GetByUserID(ctx, user.ID)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		s.Logger.WithField("user_id", user.ID).Warn("account already exists")
		return nil, ErrAccountExists
	}

	acc := &entity.Account{}
	acc.Open(user.ID)
	if err := s.Repo.Create(ctx, acc); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrAccountExists
		}
		return nil, err
	}
	s.Logger.WithFields(logrus.Fields{"account_id": acc.ID, "user_id": user.ID}).Info("account opened")

	s.Publisher.PublishAccountCreated(ctx, user)
	return acc, nil
}

// GetByUserID serves the account projection cache-aside.
func (s *AccountService) GetByUserID(ctx context.Context, userID string) (AccountProjection, error) {
	key := cache.AccountKey(userID)

	var proj AccountProjection
	ok, err := s.Cache.GetJSON(ctx, key, &proj)
	if err != nil {
		s.Logger.WithError(err).WithField("key", key).Warn("cache read failed")
	} else if ok {
		return proj, nil
	}

	acc, err := s.load(ctx, userID)
	if err != nil {
		return AccountProjection{}, err
	}

	proj = projectAccount(acc)
	if err := s.Cache.SetJSON(ctx, key, proj); err != nil {
		s.Logger.WithError(err).WithField("key", key).Warn("cache write failed")
	}
	return proj, nil
}

// Deposit credits the account and synchronously invalidates its cache entry.
func (s *AccountService) Deposit(ctx context.Context, userID string, amount int64) (*entity.Account, error) {
	acc, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := acc.Deposit(amount); err != nil {
		return nil, err
	}
	if err := s.Repo.Update(ctx, acc); err != nil {
		return nil, err
	}
	s.invalidate(ctx, cache.AccountKey(userID))
	s.Logger.WithFields(logrus.Fields{"user_id": userID, "amount": amount}).Info("deposit applied")
	return acc, nil
}

// Withdraw debits the account and synchronously invalidates its cache entry.
func (s *AccountService) Withdraw(ctx context.Context, userID string, amount int64) (*entity.Account, error) {
	acc, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := acc.Withdraw(amount); err != nil {
		return nil, err
	}
	if err := s.Repo.Update(ctx, acc); err != nil {
		return nil, err
	}
	s.invalidate(ctx, cache.AccountKey(userID))
	s.Logger.WithFields(logrus.Fields{"user_id": userID, "amount": amount}).Info("withdrawal applied")
	return acc, nil
}

func (s *AccountService) load(ctx context.Context, userID string) (*entity.Account, error) {
	acc, err := s.Repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return acc, nil
}

func (s *AccountService) invalidate(ctx context.Context, keys ...string) {
	if err := s.Cache.Invalidate(ctx, keys...); err != nil {
		s.Logger.WithError(err).Warn("cache invalidation failed")
	}
}

var _ events.AccountOpener = (*AccountService)(nil)
