// internal/services/asset_service_test.go
package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assetverse/assetverse-backend/internal/apperrors"
	"github.com/assetverse/assetverse-backend/internal/models"
)

func TestCreateAssetStartsFullyAvailable(t *testing.T) {
	db := setupTestDB(t)
	svc := buildServices(db)
	hr := newHR(t, db, 5)

	asset, err := svc.assets.CreateAsset(hr.ID, &CreateAssetRequest{
		Name:     "Laptop",
		Type:     models.AssetCategoryReturnable,
		Quantity: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, asset.TotalQuantity)
	assert.Equal(t, 4, asset.AvailableQuantity)
	assert.Equal(t, hr.CompanyName, asset.CompanyName)
}

func TestCreateAssetRequiresHR(t *testing.T) {
	db := setupTestDB(t)
	svc := buildServices(db)
	employee := newEmployee(t, db)

	_, err := svc.assets.CreateAsset(employee.ID, &CreateAssetRequest{
		Name:     "Laptop",
		Type:     models.AssetCategoryReturnable,
		Quantity: 4,
	})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestCreateAssetQuantityBounds(t *testing.T) {
	db := setupTestDB(t)
	svc := buildServices(db)
	hr := newHR(t, db, 5)

	// Zero stock is a valid starting point.
	asset, err := svc.assets.CreateAsset(hr.ID, &CreateAssetRequest{
		Name:     "Projector",
		Type:     models.AssetCategoryReturnable,
		Quantity: 0,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, asset.AvailableQuantity)

	_, err = svc.assets.CreateAsset(hr.ID, &CreateAssetRequest{
		Name:     "Projector",
		Type:     models.AssetCategoryReturnable,
		Quantity: -1,
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestAdjustAvailableEnforcesBounds(t *testing.T) {
	db := setupTestDB(t)
	svc := buildServices(db)
	hr := newHR(t, db, 5)
	asset := newAsset(t, db, hr, "Laptop", models.AssetCategoryReturnable, 2)

	require.NoError(t, svc.assets.AdjustAvailable(db, asset.ID, -2))
	assert.Equal(t, 0, loadAsset(t, db, asset.ID).AvailableQuantity)

	// Debit below zero refuses.
	err := svc.assets.AdjustAvailable(db, asset.ID, -1)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientStock)

	// Credit back up to the total is fine; beyond it is a contract breach.
	require.NoError(t, svc.assets.AdjustAvailable(db, asset.ID, 2))
	err = svc.assets.AdjustAvailable(db, asset.ID, 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrInsufficientStock)
	assert.Equal(t, 2, loadAsset(t, db, asset.ID).AvailableQuantity)
}

func TestUpdateAssetShiftsAvailableByDelta(t *testing.T) {
	db := setupTestDB(t)
	svc := buildServices(db)
	hr := newHR(t, db, 5)
	employee := newEmployee(t, db)
	asset := newAsset(t, db, hr, "Laptop", models.AssetCategoryReturnable, 3)

	// One unit goes out the door.
	request := pendingRequest(t, svc, employee, asset)
	_, err := svc.requests.Decide(request.ID, hr.ID, &DecideRequestRequest{
		Decision: models.RequestStatusApproved,
	})
	require.NoError(t, err)

	// Growing the pool keeps the outstanding unit accounted for.
	updated, err := svc.assets.UpdateAsset(asset.ID, hr.ID, &UpdateAssetRequest{
		Name:     "Laptop Pro",
		Type:     models.AssetCategoryReturnable,
		Quantity: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.TotalQuantity)
	assert.Equal(t, 4, updated.AvailableQuantity)

	// Shrinking below the outstanding count refuses.
	_, err = svc.assets.UpdateAsset(asset.ID, hr.ID, &UpdateAssetRequest{
		Name:     "Laptop Pro",
		Type:     models.AssetCategoryReturnable,
		Quantity: 0,
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestUpdateAssetOfOtherHRNotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := buildServices(db)
	hr := newHR(t, db, 5)
	other := newHR(t, db, 5)
	asset := newAsset(t, db, hr, "Laptop", models.AssetCategoryReturnable, 3)

	_, err := svc.assets.UpdateAsset(asset.ID, other.ID, &UpdateAssetRequest{
		Name:     "Hijacked",
		Type:     models.AssetCategoryReturnable,
		Quantity: 3,
	})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDeleteAssetGuardedByOpenReferences(t *testing.T) {
	db := setupTestDB(t)
	svc := buildServices(db)
	hr := newHR(t, db, 5)
	employee := newEmployee(t, db)
	asset := newAsset(t, db, hr, "Laptop", models.AssetCategoryReturnable, 3)

	request := pendingRequest(t, svc, employee, asset)
	assert.ErrorIs(t, svc.assets.DeleteAsset(asset.ID, hr.ID), apperrors.ErrInvalidState)

	_, err := svc.requests.Decide(request.ID, hr.ID, &DecideRequestRequest{
		Decision: models.RequestStatusApproved,
	})
	require.NoError(t, err)
	assert.ErrorIs(t, svc.assets.DeleteAsset(asset.ID, hr.ID), apperrors.ErrInvalidState)

	var assignment models.Assignment
	require.NoError(t, db.Where("request_id = ?", request.ID).First(&assignment).Error)
	_, err = svc.assignments.Return(assignment.ID, employee.ID)
	require.NoError(t, err)

	require.NoError(t, svc.assets.DeleteAsset(asset.ID, hr.ID))
	_, err = svc.assets.GetAsset(asset.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListAvailableExcludesExhaustedStock(t *testing.T) {
	db := setupTestDB(t)
	svc := buildServices(db)
	hr := newHR(t, db, 5)
	employee := newEmployee(t, db)
	newAsset(t, db, hr, "Monitor", models.AssetCategoryReturnable, 2)
	scarce := newAsset(t, db, hr, "Laptop", models.AssetCategoryReturnable, 1)

	request := pendingRequest(t, svc, employee, scarce)
	_, err := svc.requests.Decide(request.ID, hr.ID, &DecideRequestRequest{
		Decision: models.RequestStatusApproved,
	})
	require.NoError(t, err)

	assets, err := svc.assets.ListAvailable(context.Background(), defaultParams())
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, "Monitor", assets[0].Name)
}

func TestListAssetsSearchAndType(t *testing.T) {
	db := setupTestDB(t)
	svc := buildServices(db)
	hr := newHR(t, db, 5)
	newAsset(t, db, hr, "Laptop", models.AssetCategoryReturnable, 2)
	newAsset(t, db, hr, "Notebook", models.AssetCategoryNonReturnable, 2)

	params := defaultParams()
	params.Type = string(models.AssetCategoryNonReturnable)
	result, err := svc.assets.ListAssets(hr.ID, params)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Total)

	params = defaultParams()
	params.Search = "lap"
	result, err = svc.assets.ListAssets(hr.ID, params)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Total)
}
