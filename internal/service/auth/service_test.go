package auth

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dermaclinic/clinic-api/internal/model"
	"github.com/dermaclinic/clinic-api/internal/repository"
	"github.com/dermaclinic/clinic-api/internal/token"
	pkgauth "github.com/dermaclinic/clinic-api/pkg/auth"
	"github.com/dermaclinic/clinic-api/pkg/errors"
	"github.com/dermaclinic/clinic-api/pkg/logger"
	"github.com/dermaclinic/clinic-api/pkg/security"
)

type fakeUsers struct {
	users map[uuid.UUID]*model.User
}

func (f *fakeUsers) Create(context.Context, *model.User) error { return nil }
func (f *fakeUsers) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	return f.users[id], nil
}
func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username && !u.IsDeleted() {
			return u, nil
		}
	}
	return nil, nil
}
func (f *fakeUsers) GetByEmail(context.Context, string) (*model.User, error) { return nil, nil }
func (f *fakeUsers) GetByPhone(context.Context, string) (*model.User, error) { return nil, nil }
func (f *fakeUsers) List(context.Context, repository.Page) ([]*model.User, int, error) {
	return nil, 0, nil
}
func (f *fakeUsers) Search(context.Context, string, repository.Page) ([]*model.User, int, error) {
	return nil, 0, nil
}
func (f *fakeUsers) Update(context.Context, *model.User) error { return nil }
func (f *fakeUsers) SoftDelete(context.Context, uuid.UUID, time.Time) error {
	return nil
}

func setup(t *testing.T) (Service, *model.User) {
	t.Helper()

	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("s3cret-password")
	require.NoError(t, err)

	u := &model.User{
		Base:         model.Base{ID: uuid.New()},
		Username:     "reception",
		PasswordHash: hash,
		FullName:     "Front Desk",
		Role:         model.RoleStaff,
		IsActive:     true,
	}
	users := &fakeUsers{users: map[uuid.UUID]*model.User{u.ID: u}}

	jwtSvc := pkgauth.NewJWTService(pkgauth.Config{
		Secret:        "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	})

	log := logger.NewLogger(&logger.Config{Output: io.Discard})
	return NewService(users, jwtSvc, hasher, token.NewMemoryStore(), log), u
}

func TestLoginSuccess(t *testing.T) {
	svc, u := setup(t)

	resp, err := svc.Login(context.Background(), &model.LoginRequest{
		Username: "reception",
		Password: "s3cret-password",
	})
	require.NoError(t, err)
	assert.Equal(t, u.ID, resp.User.ID)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := setup(t)

	_, err := svc.Login(context.Background(), &model.LoginRequest{
		Username: "reception",
		Password: "wrong",
	})
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindUnauthenticated))
}

func TestLoginUnknownUser(t *testing.T) {
	svc, _ := setup(t)

	_, err := svc.Login(context.Background(), &model.LoginRequest{
		Username: "nobody",
		Password: "s3cret-password",
	})
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindUnauthenticated))
}

func TestLoginInactiveAccount(t *testing.T) {
	svc, u := setup(t)
	u.IsActive = false

	_, err := svc.Login(context.Background(), &model.LoginRequest{
		Username: "reception",
		Password: "s3cret-password",
	})
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindUnauthenticated))
}

func TestRefreshIssuesNewAccessToken(t *testing.T) {
	svc, _ := setup(t)

	login, err := svc.Login(context.Background(), &model.LoginRequest{
		Username: "reception",
		Password: "s3cret-password",
	})
	require.NoError(t, err)

	resp, err := svc.Refresh(context.Background(), &model.RefreshRequest{
		RefreshToken: login.RefreshToken,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "bearer", resp.TokenType)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc, _ := setup(t)

	login, err := svc.Login(context.Background(), &model.LoginRequest{
		Username: "reception",
		Password: "s3cret-password",
	})
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), &model.RefreshRequest{
		RefreshToken: login.AccessToken,
	})
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindUnauthenticated))
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	svc, _ := setup(t)

	login, err := svc.Login(context.Background(), &model.LoginRequest{
		Username: "reception",
		Password: "s3cret-password",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), login.RefreshToken))

	_, err = svc.Refresh(context.Background(), &model.RefreshRequest{
		RefreshToken: login.RefreshToken,
	})
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindUnauthenticated))
}

func TestMe(t *testing.T) {
	svc, u := setup(t)

	found, err := svc.Me(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Username, found.Username)

	_, err = svc.Me(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindNotFound))
}
