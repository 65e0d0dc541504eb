// internal/services/auth_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assetverse/assetverse-backend/internal/apperrors"
	"github.com/assetverse/assetverse-backend/internal/models"
	"github.com/assetverse/assetverse-backend/internal/utils"
)

func TestRegisterHRStartsOnFreeTier(t *testing.T) {
	db := setupTestDB(t)
	auth := NewAuthService(db, testConfig())
	utils.SetJWTSecret("test-secret")

	resp, err := auth.RegisterHR(&RegisterHRRequest{
		DisplayName: "Manager",
		Email:       nextEmail("newhr"),
		Password:    "Password1",
		CompanyName: "Acme Corp",
	})
	require.NoError(t, err)

	assert.Equal(t, models.UserRoleHR, resp.User.Role)
	assert.Equal(t, models.SubscriptionFree, resp.User.Subscription)
	assert.Equal(t, 5, resp.User.PackageLimit)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)

	claims, err := utils.ValidateJWT(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, string(models.UserRoleHR), claims.Role)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	auth := NewAuthService(db, testConfig())
	email := nextEmail("dup")

	_, err := auth.Register(&RegisterRequest{
		DisplayName: "First",
		Email:       email,
		Password:    "Password1",
	})
	require.NoError(t, err)

	_, err = auth.Register(&RegisterRequest{
		DisplayName: "Second",
		Email:       email,
		Password:    "Password1",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestRegisterEnforcesStrongPassword(t *testing.T) {
	db := setupTestDB(t)
	auth := NewAuthService(db, testConfig())

	_, err := auth.Register(&RegisterRequest{
		DisplayName: "Weak",
		Email:       nextEmail("weak"),
		Password:    "short",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestLoginChecksPassword(t *testing.T) {
	db := setupTestDB(t)
	auth := NewAuthService(db, testConfig())
	email := nextEmail("login")

	_, err := auth.Register(&RegisterRequest{
		DisplayName: "User",
		Email:       email,
		Password:    "Password1",
	})
	require.NoError(t, err)

	resp, err := auth.Login(&LoginRequest{Email: email, Password: "Password1"})
	require.NoError(t, err)
	assert.NotNil(t, resp.User.LastLoginAt)

	_, err = auth.Login(&LoginRequest{Email: email, Password: "WrongPass1"})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	auth := NewAuthService(db, testConfig())
	utils.SetJWTSecret("test-secret")

	registered, err := auth.Register(&RegisterRequest{
		DisplayName: "User",
		Email:       nextEmail("refresh"),
		Password:    "Password1",
	})
	require.NoError(t, err)

	refreshed, err := auth.RefreshToken(registered.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, refreshed.User.ID)

	_, err = auth.RefreshToken("not-a-token")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}
