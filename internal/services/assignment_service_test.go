// internal/services/assignment_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assetverse/assetverse-backend/internal/apperrors"
	"github.com/assetverse/assetverse-backend/internal/models"
)

func approvedAssignment(t *testing.T, svc *serviceSet, employee *models.User, hr *models.User, asset *models.Asset) *models.Assignment {
	t.Helper()
	request := pendingRequest(t, svc, employee, asset)
	_, err := svc.requests.Decide(request.ID, hr.ID, &DecideRequestRequest{
		Decision: models.RequestStatusApproved,
	})
	require.NoError(t, err)

	var assignment models.Assignment
	require.NoError(t, svc.db.Where("request_id = ?", request.ID).First(&assignment).Error)
	return &assignment
}

func TestReturnRestoresStockAndSettlesRequest(t *testing.T) {
	db := setupTestDB(t)
	svc := buildServices(db)
	hr := newHR(t, db, 5)
	employee := newEmployee(t, db)
	asset := newAsset(t, db, hr, "Laptop", models.AssetCategoryReturnable, 3)
	assignment := approvedAssignment(t, svc, employee, hr, asset)
	assert.Equal(t, 2, loadAsset(t, db, asset.ID).AvailableQuantity)

	returned, err := svc.assignments.Return(assignment.ID, employee.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentStatusReturned, returned.Status)
	require.NotNil(t, returned.ReturnedAt)

	assert.Equal(t, 3, loadAsset(t, db, asset.ID).AvailableQuantity)

	request, err := svc.requests.Get(*assignment.RequestID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusReturned, request.Status)
}

func TestReturnTwiceFails(t *testing.T) {
	db := setupTestDB(t)
	svc := buildServices(db)
	hr := newHR(t, db, 5)
	employee := newEmployee(t, db)
	asset := newAsset(t, db, hr, "Laptop", models.AssetCategoryReturnable, 3)
	assignment := approvedAssignment(t, svc, employee, hr, asset)

	_, err := svc.assignments.Return(assignment.ID, employee.ID)
	require.NoError(t, err)

	_, err = svc.assignments.Return(assignment.ID, employee.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	// Stock credited exactly once.
	assert.Equal(t, 3, loadAsset(t, db, asset.ID).AvailableQuantity)
}

func TestReturnNonReturnableFails(t *testing.T) {
	db := setupTestDB(t)
	svc := buildServices(db)
	hr := newHR(t, db, 5)
	employee := newEmployee(t, db)
	asset := newAsset(t, db, hr, "Notebook", models.AssetCategoryNonReturnable, 3)
	assignment := approvedAssignment(t, svc, employee, hr, asset)

	_, err := svc.assignments.Return(assignment.ID, employee.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotReturnable)
	assert.Equal(t, 2, loadAsset(t, db, asset.ID).AvailableQuantity)
}

func TestReturnByNonHolderForbidden(t *testing.T) {
	db := setupTestDB(t)
	svc := buildServices(db)
	hr := newHR(t, db, 5)
	employee := newEmployee(t, db)
	stranger := newEmployee(t, db)
	asset := newAsset(t, db, hr, "Laptop", models.AssetCategoryReturnable, 3)
	assignment := approvedAssignment(t, svc, employee, hr, asset)

	_, err := svc.assignments.Return(assignment.ID, stranger.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestListAssignments(t *testing.T) {
	db := setupTestDB(t)
	svc := buildServices(db)
	hr := newHR(t, db, 5)
	employee := newEmployee(t, db)
	laptop := newAsset(t, db, hr, "Laptop", models.AssetCategoryReturnable, 3)
	chair := newAsset(t, db, hr, "Chair", models.AssetCategoryNonReturnable, 3)

	approvedAssignment(t, svc, employee, hr, laptop)
	approvedAssignment(t, svc, employee, hr, chair)

	mine, err := svc.assignments.ListForEmployee(employee.ID, defaultParams())
	require.NoError(t, err)
	assert.Equal(t, int64(2), mine.Total)

	params := defaultParams()
	params.Search = "lap"
	mine, err = svc.assignments.ListForEmployee(employee.ID, params)
	require.NoError(t, err)
	assert.Equal(t, int64(1), mine.Total)

	issued, err := svc.assignments.ListForHR(hr.ID, models.AssignmentStatusAssigned, defaultParams())
	require.NoError(t, err)
	assert.Equal(t, int64(2), issued.Total)
}
