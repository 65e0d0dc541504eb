// internal/services/testutil_test.go
package services

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/assetverse/assetverse-backend/internal/config"
	"github.com/assetverse/assetverse-backend/internal/database"
	"github.com/assetverse/assetverse-backend/internal/models"
	"github.com/assetverse/assetverse-backend/internal/utils"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps the in-memory database alive and serializes
	// access from notification goroutines.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db))
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		JWT: config.JWTConfig{
			SecretKey:       "test-secret",
			AccessTokenTTL:  1,
			RefreshTokenTTL: 24,
		},
		Payment: config.PaymentConfig{
			Currency: "usd",
		},
		Frontend: config.FrontendConfig{
			BaseURL: "http://localhost:5173",
		},
	}
}

type serviceSet struct {
	db            *gorm.DB
	assets        *AssetService
	credits       *CreditService
	affiliations  *AffiliationService
	notifications *NotificationService
	requests      *RequestService
	assignments   *AssignmentService
	employees     *EmployeeService
}

func buildServices(db *gorm.DB) *serviceSet {
	assets := NewAssetService(db, nil)
	credits := NewCreditService(db)
	affiliations := NewAffiliationService(db)
	notifications := NewNotificationService(db)
	return &serviceSet{
		db:            db,
		assets:        assets,
		credits:       credits,
		affiliations:  affiliations,
		notifications: notifications,
		requests:      NewRequestService(db, assets, credits, affiliations, notifications),
		assignments:   NewAssignmentService(db, assets, notifications),
		employees:     NewEmployeeService(db),
	}
}

func defaultParams() utils.PaginationParams {
	return utils.PaginationParams{Page: 1, Limit: 10, Sort: "created_at", Order: "desc"}
}

var emailSeq int

func nextEmail(prefix string) string {
	emailSeq++
	return fmt.Sprintf("%s%d@example.com", prefix, emailSeq)
}

func newHR(t *testing.T, db *gorm.DB, credits int) *models.User {
	t.Helper()
	hr := &models.User{
		DisplayName:  "Test Manager",
		Email:        nextEmail("hr"),
		Role:         models.UserRoleHR,
		CompanyName:  "Acme Corp",
		CompanyLogo:  "https://cdn.example.com/acme.png",
		Subscription: models.SubscriptionFree,
		PackageLimit: credits,
	}
	require.NoError(t, hr.SetPassword("Password1"))
	require.NoError(t, db.Create(hr).Error)
	return hr
}

func newEmployee(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{
		DisplayName: "Test Employee",
		Email:       nextEmail("emp"),
		PhotoURL:    "https://cdn.example.com/face.png",
		Role:        models.UserRoleEmployee,
	}
	require.NoError(t, user.SetPassword("Password1"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func newAsset(t *testing.T, db *gorm.DB, hr *models.User, name string, category models.AssetCategory, quantity int) *models.Asset {
	t.Helper()
	asset := &models.Asset{
		HRID:              hr.ID,
		Name:              name,
		Type:              category,
		TotalQuantity:     quantity,
		AvailableQuantity: quantity,
		CompanyName:       hr.CompanyName,
	}
	require.NoError(t, db.Create(asset).Error)
	return asset
}

func loadAsset(t *testing.T, db *gorm.DB, id uuid.UUID) *models.Asset {
	t.Helper()
	var asset models.Asset
	require.NoError(t, db.Where("id = ?", id).First(&asset).Error)
	return &asset
}

func loadUser(t *testing.T, db *gorm.DB, id uuid.UUID) *models.User {
	t.Helper()
	var user models.User
	require.NoError(t, db.Where("id = ?", id).First(&user).Error)
	return &user
}

func pendingRequest(t *testing.T, svc *serviceSet, employee *models.User, asset *models.Asset) *models.Request {
	t.Helper()
	request, err := svc.requests.Create(employee.ID, &CreateRequestRequest{
		AssetID: asset.ID,
		Note:    "need it for onboarding",
	})
	require.NoError(t, err)
	return request
}
