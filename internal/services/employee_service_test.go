// internal/services/employee_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assetverse/assetverse-backend/internal/apperrors"
	"github.com/assetverse/assetverse-backend/internal/models"
)

func TestEmployeeApprovalPromotesLinkedUser(t *testing.T) {
	db := setupTestDB(t)
	employees := NewEmployeeService(db)
	user := &models.User{
		DisplayName: "Applicant",
		Email:       nextEmail("applicant"),
		Role:        models.UserRoleUser,
	}
	require.NoError(t, user.SetPassword("Password1"))
	require.NoError(t, db.Create(user).Error)

	record, err := employees.Create(&CreateEmployeeRequest{
		Name:  user.DisplayName,
		Email: user.Email,
	})
	require.NoError(t, err)
	require.NotNil(t, record.UserID)
	assert.Equal(t, models.EmployeeStatusPending, record.Status)
	assert.Equal(t, models.WorkStatusInactive, record.WorkStatus)

	record, err = employees.Decide(record.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.EmployeeStatusApproved, record.Status)
	assert.Equal(t, models.WorkStatusAvailable, record.WorkStatus)
	require.NotNil(t, record.ApprovedAt)

	assert.Equal(t, models.UserRoleEmployee, loadUser(t, db, *record.UserID).Role)
}

func TestEmployeeDecideTwiceFails(t *testing.T) {
	db := setupTestDB(t)
	employees := NewEmployeeService(db)

	record, err := employees.Create(&CreateEmployeeRequest{
		Name:  "Applicant",
		Email: nextEmail("applicant"),
	})
	require.NoError(t, err)

	_, err = employees.Decide(record.ID, false)
	require.NoError(t, err)

	_, err = employees.Decide(record.ID, true)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyProcessed)
}

func TestDuplicateOpenApplicationRefused(t *testing.T) {
	db := setupTestDB(t)
	employees := NewEmployeeService(db)
	email := nextEmail("applicant")

	_, err := employees.Create(&CreateEmployeeRequest{Name: "Applicant", Email: email})
	require.NoError(t, err)

	_, err = employees.Create(&CreateEmployeeRequest{Name: "Applicant", Email: email})
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestDeleteBusyEmployeeRefused(t *testing.T) {
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

	request := pendingRequest(t, svc, employee, asset)
	_, err = svc.requests.Assign(request.ID, hr.ID, &AssignRequestRequest{EmployeeRecordID: &record.ID})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.employees.Delete(record.ID), apperrors.ErrInvalidState)

	// Returning the asset frees the record for deletion.
	var assignment models.Assignment
	require.NoError(t, db.Where("request_id = ?", request.ID).First(&assignment).Error)
	_, err = svc.assignments.Return(assignment.ID, employee.ID)
	require.NoError(t, err)

	require.NoError(t, svc.employees.Delete(record.ID))
}

func TestListEmployeesFilters(t *testing.T) {
	db := setupTestDB(t)
	employees := NewEmployeeService(db)

	approved, err := employees.Create(&CreateEmployeeRequest{Name: "Alice", Email: nextEmail("alice")})
	require.NoError(t, err)
	_, err = employees.Decide(approved.ID, true)
	require.NoError(t, err)

	_, err = employees.Create(&CreateEmployeeRequest{Name: "Bob", Email: nextEmail("bob")})
	require.NoError(t, err)

	result, err := employees.List(models.EmployeeStatusPending, "", defaultParams())
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Total)

	result, err = employees.List("", models.WorkStatusAvailable, defaultParams())
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Total)
}
