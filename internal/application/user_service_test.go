package application

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minibank/minibank/internal/domain/entity"
	repo "github.com/minibank/minibank/internal/domain/repository"
	"github.com/minibank/minibank/internal/events"
	"github.com/minibank/minibank/pkg/broker"
	"github.com/minibank/minibank/pkg/cache"
	"github.com/minibank/minibank/pkg/helpers"
)

type fakeUserRepo struct {
	mu      sync.Mutex
	byID    map[string]*entity.User
	getByID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[string]*entity.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.Email == u.Email {
			return repo.ErrDuplicate
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	r.byID[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getByID++
	u, ok := r.byID[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[u.ID]; !ok {
		return repo.ErrNotFound
	}
	cp := *u
	r.byID[u.ID] = &cp
	return nil
}

type failingBroker struct{}

func (failingBroker) Publish(context.Context, string, []byte) error {
	return errors.New("broker down")
}
func (failingBroker) Consume(string, broker.Handler) error {
	return errors.New("broker down")
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newUserService(t *testing.T, mb broker.MessageBroker) (*UserService, *fakeUserRepo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := cache.New(cache.NewClient(mr.Addr(), "", 0), cache.DefaultTTL)
	r := newFakeUserRepo()
	logger := testLogger()
	svc := NewUserService(r, c, events.NewIdentityPublisher(mb, logger), helpers.NewJWTManager("testsecret", time.Hour), logger)
	return svc, r, mr
}

func TestSignUpPublishesUserCreated(t *testing.T) {
	mb := broker.NewMemory()
	svc, _, _ := newUserService(t, mb)

	var mu sync.Mutex
	var got []events.UserView
	require.NoError(t, mb.Consume(events.QueueUserCreated, func(_ context.Context, body []byte) error {
		var v events.UserView
		require.NoError(t, json.Unmarshal(body, &v))
		mu.Lock()
		got = append(got, v)
		mu.Unlock()
		return nil
	}))

	u, err := svc.SignUp(context.Background(), SignUpInput{Name: "Alice", Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)
	assert.False(t, u.EmailConfirmed)

	require.True(t, mb.Drain(time.Second))
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 1)
	assert.Equal(t, u.ID, got[0].ID)
	assert.Equal(t, "alice@example.com", got[0].Email)
	assert.False(t, got[0].Confirmed)
}

func TestSignUpDuplicateEmail(t *testing.T) {
	svc, _, _ := newUserService(t, broker.NewMemory())

	_, err := svc.SignUp(context.Background(), SignUpInput{Name: "Alice", Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)

	_, err = svc.SignUp(context.Background(), SignUpInput{Name: "Alice Again", Email: "alice@example.com", Password: "password456"})
	assert.ErrorIs(t, err, ErrEmailInUse)
}

func TestSignUpSurvivesBrokerOutage(t *testing.T) {
	svc, repo, _ := newUserService(t, failingBroker{})

	u, err := svc.SignUp(context.Background(), SignUpInput{Name: "Bob", Email: "bob@example.com", Password: "password123"})
	require.NoError(t, err)

	stored, err := repo.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", stored.Email)
}

func TestSignIn(t *testing.T) {
	svc, _, _ := newUserService(t, broker.NewMemory())

	u, err := svc.SignUp(context.Background(), SignUpInput{Name: "Alice", Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)

	got, token, exp, err := svc.SignIn(context.Background(), "alice@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.NotEmpty(t, token)
	assert.True(t, exp.After(time.Now()))

	_, _, _, err = svc.SignIn(context.Background(), "alice@example.com", "wrongpassword")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, _, err = svc.SignIn(context.Background(), "nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestConfirmEmail(t *testing.T) {
	mb := broker.NewMemory()
	svc, _, _ := newUserService(t, mb)

	var mu sync.Mutex
	var confirmed []events.UserView
	require.NoError(t, mb.Consume(events.QueueEmailConfirmed, func(_ context.Context, body []byte) error {
		var v events.UserView
		require.NoError(t, json.Unmarshal(body, &v))
		mu.Lock()
		confirmed = append(confirmed, v)
		mu.Unlock()
		return nil
	}))

	u, err := svc.SignUp(context.Background(), SignUpInput{Name: "Alice", Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)

	got, err := svc.ConfirmEmail(context.Background(), u.ID)
	require.NoError(t, err)
	assert.True(t, got.EmailConfirmed)

	require.True(t, mb.Drain(time.Second))
	mu.Lock()
	require.Len(t, confirmed, 1)
	assert.True(t, confirmed[0].Confirmed)
	mu.Unlock()

	_, err = svc.ConfirmEmail(context.Background(), u.ID)
	assert.ErrorIs(t, err, ErrEmailAlreadyConfirmed)

	_, err = svc.ConfirmEmail(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetByIDCacheAside(t *testing.T) {
	svc, repo, _ := newUserService(t, broker.NewMemory())

	u, err := svc.SignUp(context.Background(), SignUpInput{Name: "Alice", Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)

	first, err := svc.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	hits := repo.getByID

	second, err := svc.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, hits, repo.getByID, "second read should be served from cache")
}

func TestGetByIDExpiredCacheFallsThrough(t *testing.T) {
	svc, repo, mr := newUserService(t, broker.NewMemory())

	u, err := svc.SignUp(context.Background(), SignUpInput{Name: "Alice", Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)

	_, err = svc.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	hits := repo.getByID

	mr.FastForward(cache.DefaultTTL + time.Second)

	_, err = svc.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, hits+1, repo.getByID)
}

func TestConfirmEmailInvalidatesCache(t *testing.T) {
	svc, _, _ := newUserService(t, broker.NewMemory())

	u, err := svc.SignUp(context.Background(), SignUpInput{Name: "Alice", Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)

	view, err := svc.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.False(t, view.Confirmed)

	_, err = svc.ConfirmEmail(context.Background(), u.ID)
	require.NoError(t, err)

	view, err = svc.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.True(t, view.Confirmed, "read after confirm must not see the stale cached view")
}

func TestGetByIDNotFound(t *testing.T) {
	svc, _, _ := newUserService(t, broker.NewMemory())

	_, err := svc.GetByID(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrUserNotFound)
}
