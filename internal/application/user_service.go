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
	"github.com/minibank/minibank/pkg/helpers"
)

var (
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrUserNotFound          = errors.New("user not found")
	ErrEmailInUse            = errors.New("email is already in use")
	ErrEmailAlreadyConfirmed = errors.New("email already confirmed")
)

// UserService orchestrates the identity use cases: repository writes,
// cache-aside reads, and best-effort event publication.
type UserService struct {
	Repo      repo.UserRepository
	Cache     *cache.Cache
	Publisher *events.IdentityPublisher
	JWT       *helpers.JWTManager
	Logger    *logrus.Logger
}

func NewUserService(r repo.UserRepository, c *cache.Cache, pub *events.IdentityPublisher, jwt *helpers.JWTManager, logger *logrus.Logger) *UserService {
	return &UserService{Repo: r, Cache: c, Publisher: pub, JWT: jwt, Logger: logger}
}

type SignUpInput struct {
	Name     string
	Email    string
	Password string
}

// SignUp creates the user and announces it on queue_user_created. The publish
// happens after the insert has committed and must not roll it back on
// failure.
func (s *UserService) SignUp(ctx context.Context, in SignUpInput) (*entity.User, error) {
	existing, err := s.Repo.GetByEmail(ctx, in.Email)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		s.Logger.WithField("email", in.Email).Warn("email already in use")
		return nil, ErrEmailInUse
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := &entity.User{Name: in.Name, Email: in.Email, Password: hash}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrEmailInUse
		}
		return nil, err
	}
	s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "email": u.Email}).Info("user created")

	s.Publisher.PublishUserCreated(ctx, u)
	return u, nil
}

// SignIn validates credentials and issues an access token.
func (s *UserService) SignIn(ctx context.Context, email, password string) (*entity.User, string, time.Time, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil || u == nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	token, exp, err := s.JWT.GenerateToken(u.ID)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return u, token, exp, nil
}

// ConfirmEmail flips the confirmed flag, invalidates the cached projections
// and announces the confirmation on queue_email_confirmed.
func (s *UserService) ConfirmEmail(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if u.EmailConfirmed {
		s.Logger.WithField("user_id", u.ID).Warn("email already confirmed")
		return nil, ErrEmailAlreadyConfirmed
	}

	u.EmailConfirmed = true
	if err := s.Repo.Update(ctx, u); err != nil {
		return nil, err
	}
	s.invalidate(ctx, cache.UserKey(u.ID), cache.UserEmailKey(u.Email))
	s.Logger.WithField("user_id", u.ID).Info("email confirmed")

	s.Publisher.PublishEmailConfirmed(ctx, u)
	return u, nil
}

// GetByID serves the UserView projection cache-aside: a hit skips the store,
// a miss populates the cache for the TTL window.
func (s *UserService) GetByID(ctx context.Context, id string) (events.UserView, error) {
	return s.getView(ctx, cache.UserKey(id), func() (*entity.User, error) {
		return s.Repo.GetByID(ctx, id)
	})
}

// GetByEmail is the cache-aside read keyed by email.
func (s *UserService) GetByEmail(ctx context.Context, email string) (events.UserView, error) {
	return s.getView(ctx, cache.UserEmailKey(email), func() (*entity.User, error) {
		return s.Repo.GetByEmail(ctx, email)
	})
}

func (s *UserService) getView(ctx context.Context, key string, fetch func() (*entity.User, error)) (events.UserView, error) {
	var view events.UserView
	ok, err := s.Cache.GetJSON(ctx, key, &view)
	if err != nil {
		s.Logger.WithError(err).WithField("key", key).Warn("cache read failed")
	} else if ok {
		return view, nil
	}

	u, err := fetch()
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return events.UserView{}, ErrUserNotFound
		}
		return events.UserView{}, err
	}

	view = events.ViewOf(u)
	if err := s.Cache.SetJSON(ctx, key, view); err != nil {
		s.Logger.WithError(err).WithField("key", key).Warn("cache write failed")
	}
	return view, nil
}

// Cache invalidation failures are logged and swallowed: the entry still
// expires at the TTL, and the store remains the source of truth.
func (s *UserService) invalidate(ctx context.Context, keys ...string) {
	if err := s.Cache.Invalidate(ctx, keys...); err != nil {
		s.Logger.WithError(err).Warn("cache invalidation failed")
	}
}
