package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dermaclinic/clinic-api/internal/model"
)

func testService() JWTService {
	return NewJWTService(Config{
		Secret:        "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	})
}

func testUser() *model.User {
	return &model.User{
		Base:        model.Base{ID: uuid.New()},
		Username:    "drhouse",
		FullName:    "Gregory House",
		Email:       "house@clinic.example",
		PhoneNumber: "+15550100",
		Role:        model.RoleDoctor,
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := testService()
	u := testUser()

	signed, err := svc.GenerateAccessToken(u)
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(signed)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, u.Username, claims.Username)
	assert.Equal(t, u.Email, claims.Email)
	assert.Equal(t, model.RoleDoctor, claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestRefreshTokenUsesSeparateSecret(t *testing.T) {
	svc := testService()
	u := testUser()

	refresh, claims, err := svc.GenerateRefreshToken(u)
	require.NoError(t, err)
	require.NotNil(t, claims)

	_, err = svc.ValidateAccessToken(refresh)
	assert.Error(t, err)

	parsed, err := svc.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, claims.ID, parsed.ID)
}

func TestValidateRejectsTamperedToken(t *testing.T) {
	svc := testService()
	other := NewJWTService(Config{
		Secret:        "different-secret",
		RefreshSecret: "different-refresh",
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	})

	signed, err := other.GenerateAccessToken(testUser())
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(signed)
	assert.Error(t, err)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	svc := NewJWTService(Config{
		Secret:        "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     -time.Minute,
		RefreshTTL:    time.Hour,
	})

	signed, err := svc.GenerateAccessToken(testUser())
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(signed)
	assert.Error(t, err)
}

func TestRefreshTokensHaveUniqueIDs(t *testing.T) {
	svc := testService()
	u := testUser()

	_, first, err := svc.GenerateRefreshToken(u)
	require.NoError(t, err)
	_, second, err := svc.GenerateRefreshToken(u)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}
