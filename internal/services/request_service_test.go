// internal/services/request_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assetverse/assetverse-backend/internal/apperrors"
	"github.com/assetverse/assetverse-backend/internal/models"
)

func TestCreateRequestDenormalizesAsset(t *testing.T) {
	db := setupTestDB(t)
	svc := buildServices(db)
	hr := newHR(t, db, 5)
	employee := newEmployee(t, db)
	asset := newAsset(t, db, hr, "Laptop", models.AssetCategoryReturnable, 3)

	request := pendingRequest(t, svc, employee, asset)

	assert.Equal(t, models.RequestStatusPending, request.Status)
	assert.Equal(t, "Laptop", request.AssetName)
	assert.Equal(t, hr.CompanyName, request.CompanyName)
	assert.Equal(t, employee.Email, request.EmployeeEmail)
	assert.Equal(t, 1, request.Quantity)

	// Stock is untouched until approval.
	assert.Equal(t, 3, loadAsset(t, db, asset.ID).AvailableQuantity)
}

func TestRequestQuantityFlowsThroughApproval(t *testing.T) {
	db := setupTestDB(t)
	svc := buildServices(db)
	hr := newHR(t, db, 5)
	employee := newEmployee(t, db)
	asset := newAsset(t, db, hr, "Laptop", models.AssetCategoryReturnable, 5)

	request, err := svc.requests.Create(employee.ID, &CreateRequestRequest{
		AssetID:  asset.ID,
		Quantity: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, request.Quantity)

	_, err = svc.requests.Decide(request.ID, hr.ID, &DecideRequestRequest{
		Decision: models.RequestStatusApproved,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, loadAsset(t, db, asset.ID).AvailableQuantity)

	var assignment models.Assignment
	require.NoError(t, db.Where("request_id = ?", request.ID).First(&assignment).Error)
	assert.Equal(t, 3, assignment.Quantity)

	// The return settles all three units at once.
	_, err = svc.assignments.Return(assignment.ID, employee.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, loadAsset(t, db, asset.ID).AvailableQuantity)
}

func TestCreateRequestQuantityBounds(t *testing.T) {
	db := setupTestDB(t)
	svc := buildServices(db)
	hr := newHR(t, db, 5)
	employee := newEmployee(t, db)
	asset := newAsset(t, db, hr, "Laptop", models.AssetCategoryReturnable, 2)

	_, err := svc.requests.Create(employee.ID, &CreateRequestRequest{AssetID: asset.ID, Quantity: -1})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = svc.requests.Create(employee.ID, &CreateRequestRequest{AssetID: asset.ID, Quantity: 3})
	assert.ErrorIs(t, err, apperrors.ErrInsufficientStock)
}

func TestCreateRequestRejectsHRAccounts(t *testing.T) {
	db := setupTestDB(t)
	svc := buildServices(db)
	hr := newHR(t, db, 5)
	asset := newAsset(t, db, hr, "Laptop", models.AssetCategoryReturnable, 3)

	_, err := svc.requests.Create(hr.ID, &CreateRequestRequest{AssetID: asset.ID})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestApproveRequestDebitsEverythingAtomically(t *testing.T) {
	db := setupTestDB(t)
	svc := buildServices(db)
	hr := newHR(t, db, 5)
	employee := newEmployee(t, db)
	asset := newAsset(t, db, hr, "Laptop", models.AssetCategoryReturnable, 3)
	request := pendingRequest(t, svc, employee, asset)

	decided, err := svc.requests.Decide(request.ID, hr.ID, &DecideRequestRequest{
		Decision: models.RequestStatusApproved,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusApproved, decided.Status)
	require.NotNil(t, decided.DecidedAt)

	assert.Equal(t, 2, loadAsset(t, db, asset.ID).AvailableQuantity)
	assert.Equal(t, 4, loadUser(t, db, hr.ID).PackageLimit)

	var assignment models.Assignment
	require.NoError(t, db.Where("request_id = ?", request.ID).First(&assignment).Error)
	assert.Equal(t, models.AssignmentStatusAssigned, assignment.Status)
	assert.Equal(t, employee.ID, assignment.EmployeeID)
	assert.Equal(t, 1, assignment.Quantity)

	var affiliation models.Affiliation
	require.NoError(t, db.Where("employee_id = ? AND hr_id = ?", employee.ID, hr.ID).First(&affiliation).Error)
	assert.Equal(t, models.AffiliationStatusActive, affiliation.Status)
	assert.Equal(t, employee.DisplayName, affiliation.EmployeeName)
}

func TestRejectRequestHasNoSideEffects(t *testing.T) {
	db := setupTestDB(t)
	svc := buildServices(db)
	hr := newHR(t, db, 5)
	employee := newEmployee(t, db)
	asset := newAsset(t, db, hr, "Laptop", models.AssetCategoryReturnable, 3)
	request := pendingRequest(t, svc, employee, asset)

	decided, err := svc.requests.Decide(request.ID, hr.ID, &DecideRequestRequest{
		Decision: models.RequestStatusRejected,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusRejected, decided.Status)

	assert.Equal(t, 3, loadAsset(t, db, asset.ID).AvailableQuantity)
	assert.Equal(t, 5, loadUser(t, db, hr.ID).PackageLimit)

	var assignments int64
	db.Model(&models.Assignment{}).Where("request_id = ?", request.ID).Count(&assignments)
	assert.Zero(t, assignments)
}

func TestDecideTwiceFails(t *testing.T) {
	db := setupTestDB(t)
	svc := buildServices(db)
	hr := newHR(t, db, 5)
	employee := newEmployee(t, db)
	asset := newAsset(t, db, hr, "Laptop", models.AssetCategoryReturnable, 3)
	request := pendingRequest(t, svc, employee, asset)

	_, err := svc.requests.Decide(request.ID, hr.ID, &DecideRequestRequest{
		Decision: models.RequestStatusApproved,
	})
	require.NoError(t, err)

	_, err = svc.requests.Decide(request.ID, hr.ID, &DecideRequestRequest{
		Decision: models.RequestStatusRejected,
	})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyProcessed)

	// The first approval's effects stand untouched.
	assert.Equal(t, 2, loadAsset(t, db, asset.ID).AvailableQuantity)
	assert.Equal(t, 4, loadUser(t, db, hr.ID).PackageLimit)
}

func TestDecideWrongHRForbidden(t *testing.T) {
	db := setupTestDB(t)
	svc := buildServices(db)
	hr := newHR(t, db, 5)
	other := newHR(t, db, 5)
	employee := newEmployee(t, db)
	asset := newAsset(t, db, hr, "Laptop", models.AssetCategoryReturnable, 3)
	request := pendingRequest(t, svc, employee, asset)

	_, err := svc.requests.Decide(request.ID, other.ID, &DecideRequestRequest{
		Decision: models.RequestStatusApproved,
	})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestApproveWithoutCreditRollsBack(t *testing.T) {
	db := setupTestDB(t)
	svc := buildServices(db)
	hr := newHR(t, db, 0)
	employee := newEmployee(t, db)
	asset := newAsset(t, db, hr, "Laptop", models.AssetCategoryReturnable, 3)
	request := pendingRequest(t, svc, employee, asset)

	_, err := svc.requests.Decide(request.ID, hr.ID, &DecideRequestRequest{
		Decision: models.RequestStatusApproved,
	})
	assert.ErrorIs(t, err, apperrors.ErrInsufficientCredit)

	// Nothing moved: the request is still pending and decidable later.
	reloaded, err := svc.requests.Get(request.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, reloaded.Status)
	assert.Equal(t, 3, loadAsset(t, db, asset.ID).AvailableQuantity)

	var assignments int64
	db.Model(&models.Assignment{}).Count(&assignments)
	assert.Zero(t, assignments)
}

func TestApproveWithoutStockRollsBack(t *testing.T) {
	db := setupTestDB(t)
	svc := buildServices(db)
	hr := newHR(t, db, 5)
	first := newEmployee(t, db)
	second := newEmployee(t, db)
	asset := newAsset(t, db, hr, "Monitor", models.AssetCategoryReturnable, 1)

	firstReq := pendingRequest(t, svc, first, asset)
	secondReq := pendingRequest(t, svc, second, asset)

	_, err := svc.requests.Decide(firstReq.ID, hr.ID, &DecideRequestRequest{
		Decision: models.RequestStatusApproved,
	})
	require.NoError(t, err)

	_, err = svc.requests.Decide(secondReq.ID, hr.ID, &DecideRequestRequest{
		Decision: models.RequestStatusApproved,
	})
	assert.ErrorIs(t, err, apperrors.ErrInsufficientStock)

	// The failed approval must not burn a credit.
	assert.Equal(t, 4, loadUser(t, db, hr.ID).PackageLimit)
	reloaded, err := svc.requests.Get(secondReq.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, reloaded.Status)
}

func TestApproveReusesActiveAffiliation(t *testing.T) {
	db := setupTestDB(t)
	svc := buildServices(db)
	hr := newHR(t, db, 5)
	employee := newEmployee(t, db)
	laptop := newAsset(t, db, hr, "Laptop", models.AssetCategoryReturnable, 3)
	monitor := newAsset(t, db, hr, "Monitor", models.AssetCategoryReturnable, 3)

	for _, asset := range []*models.Asset{laptop, monitor} {
		request := pendingRequest(t, svc, employee, asset)
		_, err := svc.requests.Decide(request.ID, hr.ID, &DecideRequestRequest{
			Decision: models.RequestStatusApproved,
		})
		require.NoError(t, err)
	}

	var affiliations int64
	db.Model(&models.Affiliation{}).
		Where("employee_id = ? AND hr_id = ?", employee.ID, hr.ID).
		Count(&affiliations)
	assert.Equal(t, int64(1), affiliations)
}

func TestAssignBindsEmployeeRecord(t *testing.T) {
	db := setupTestDB(t)
	svc := buildServices(db)
	hr := newHR(t, db, 5)
	employee := newEmployee(t, db)
	asset := newAsset(t, db, hr, "Laptop", models.AssetCategoryReturnable, 3)
	request := pendingRequest(t, svc, employee, asset)

	record, err := svc.employees.Create(&CreateEmployeeRequest{
		Name:  employee.DisplayName,
		Email: employee.Email,
	})
	require.NoError(t, err)
	record, err = svc.employees.Decide(record.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.WorkStatusAvailable, record.WorkStatus)

	assigned, err := svc.requests.Assign(request.ID, hr.ID, &AssignRequestRequest{
		EmployeeRecordID: &record.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusAssigned, assigned.Status)
	require.NotNil(t, assigned.AssignedAt)
	require.NotNil(t, assigned.AssignedEmployeeID)

	reloaded, err := svc.employees.Get(record.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WorkStatusBusy, reloaded.WorkStatus)

	assert.Equal(t, 2, loadAsset(t, db, asset.ID).AvailableQuantity)
	assert.Equal(t, 4, loadUser(t, db, hr.ID).PackageLimit)
}

func TestAssignBusyEmployeeFails(t *testing.T) {
	db := setupTestDB(t)
	svc := buildServices(db)
	hr := newHR(t, db, 5)
	employee := newEmployee(t, db)
	asset := newAsset(t, db, hr, "Laptop", models.AssetCategoryReturnable, 3)

	record, err := svc.employees.Create(&CreateEmployeeRequest{
		Name:  employee.DisplayName,
		Email: employee.Email,
	})
	require.NoError(t, err)
	_, err = svc.employees.Decide(record.ID, true)
	require.NoError(t, err)

	first := pendingRequest(t, svc, employee, asset)
	_, err = svc.requests.Assign(first.ID, hr.ID, &AssignRequestRequest{EmployeeRecordID: &record.ID})
	require.NoError(t, err)

	second := pendingRequest(t, svc, employee, asset)
	_, err = svc.requests.Assign(second.ID, hr.ID, &AssignRequestRequest{EmployeeRecordID: &record.ID})
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	// The failed assignment rolled back entirely.
	reloaded, err := svc.requests.Get(second.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, reloaded.Status)
	assert.Equal(t, 2, loadAsset(t, db, asset.ID).AvailableQuantity)
	assert.Equal(t, 4, loadUser(t, db, hr.ID).PackageLimit)
}

func TestCompleteApprovedRequest(t *testing.T) {
	db := setupTestDB(t)
	svc := buildServices(db)
	hr := newHR(t, db, 5)
	employee := newEmployee(t, db)
	asset := newAsset(t, db, hr, "Office Chair", models.AssetCategoryNonReturnable, 2)
	request := pendingRequest(t, svc, employee, asset)

	_, err := svc.requests.Decide(request.ID, hr.ID, &DecideRequestRequest{
		Decision: models.RequestStatusApproved,
	})
	require.NoError(t, err)

	completed, err := svc.requests.SetStatus(request.ID, hr.ID, models.RequestStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusCompleted, completed.Status)

	// Completion consumes the stock permanently.
	assert.Equal(t, 1, loadAsset(t, db, asset.ID).AvailableQuantity)

	// Terminal: cannot complete twice.
	_, err = svc.requests.SetStatus(request.ID, hr.ID, models.RequestStatusCompleted)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestCompletePendingRequestFails(t *testing.T) {
	db := setupTestDB(t)
	svc := buildServices(db)
	hr := newHR(t, db, 5)
	employee := newEmployee(t, db)
	asset := newAsset(t, db, hr, "Laptop", models.AssetCategoryReturnable, 3)
	request := pendingRequest(t, svc, employee, asset)

	_, err := svc.requests.SetStatus(request.ID, hr.ID, models.RequestStatusCompleted)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestRejectAssignedRequestRestoresStock(t *testing.T) {
	db := setupTestDB(t)
	svc := buildServices(db)
	hr := newHR(t, db, 5)
	employee := newEmployee(t, db)
	asset := newAsset(t, db, hr, "Laptop", models.AssetCategoryReturnable, 3)
	request := pendingRequest(t, svc, employee, asset)

	_, err := svc.requests.Assign(request.ID, hr.ID, &AssignRequestRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, loadAsset(t, db, asset.ID).AvailableQuantity)

	rejected, err := svc.requests.SetStatus(request.ID, hr.ID, models.RequestStatusRejected)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusRejected, rejected.Status)

	// Stock goes back; the assignment is closed; the credit stays spent.
	assert.Equal(t, 3, loadAsset(t, db, asset.ID).AvailableQuantity)
	assert.Equal(t, 4, loadUser(t, db, hr.ID).PackageLimit)

	var assignment models.Assignment
	require.NoError(t, db.Where("request_id = ?", request.ID).First(&assignment).Error)
	assert.Equal(t, models.AssignmentStatusReturned, assignment.Status)
}

func TestRejectApprovedRequestFails(t *testing.T) {
	db := setupTestDB(t)
	svc := buildServices(db)
	hr := newHR(t, db, 5)
	employee := newEmployee(t, db)
	asset := newAsset(t, db, hr, "Laptop", models.AssetCategoryReturnable, 3)
	request := pendingRequest(t, svc, employee, asset)

	_, err := svc.requests.Decide(request.ID, hr.ID, &DecideRequestRequest{
		Decision: models.RequestStatusApproved,
	})
	require.NoError(t, err)

	_, err = svc.requests.SetStatus(request.ID, hr.ID, models.RequestStatusRejected)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestDeleteRequestOnlyWhilePending(t *testing.T) {
	db := setupTestDB(t)
	svc := buildServices(db)
	hr := newHR(t, db, 5)
	employee := newEmployee(t, db)
	stranger := newEmployee(t, db)
	asset := newAsset(t, db, hr, "Laptop", models.AssetCategoryReturnable, 3)

	request := pendingRequest(t, svc, employee, asset)
	assert.ErrorIs(t, svc.requests.Delete(request.ID, stranger.ID), apperrors.ErrForbidden)
	require.NoError(t, svc.requests.Delete(request.ID, employee.ID))

	request = pendingRequest(t, svc, employee, asset)
	_, err := svc.requests.Decide(request.ID, hr.ID, &DecideRequestRequest{
		Decision: models.RequestStatusApproved,
	})
	require.NoError(t, err)
	assert.ErrorIs(t, svc.requests.Delete(request.ID, employee.ID), apperrors.ErrAlreadyProcessed)
}

func TestListForHRFiltersByStatus(t *testing.T) {
	db := setupTestDB(t)
	svc := buildServices(db)
	hr := newHR(t, db, 5)
	employee := newEmployee(t, db)
	asset := newAsset(t, db, hr, "Laptop", models.AssetCategoryReturnable, 3)

	first := pendingRequest(t, svc, employee, asset)
	pendingRequest(t, svc, employee, asset)

	_, err := svc.requests.Decide(first.ID, hr.ID, &DecideRequestRequest{
		Decision: models.RequestStatusApproved,
	})
	require.NoError(t, err)

	result, err := svc.requests.ListForHR(hr.ID, models.RequestStatusPending, defaultParams())
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Total)

	result, err = svc.requests.ListForHR(hr.ID, "", defaultParams())
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Total)
}
