// internal/services/affiliation_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assetverse/assetverse-backend/internal/apperrors"
	"github.com/assetverse/assetverse-backend/internal/models"
)

func TestEnsureActiveCreatesThenReuses(t *testing.T) {
	db := setupTestDB(t)
	affiliations := NewAffiliationService(db)
	hr := newHR(t, db, 5)
	employee := newEmployee(t, db)

	first, err := affiliations.EnsureActive(db, employee, hr)
	require.NoError(t, err)
	assert.Equal(t, employee.DisplayName, first.EmployeeName)
	assert.Equal(t, hr.CompanyName, first.CompanyName)

	second, err := affiliations.EnsureActive(db, employee, hr)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	db.Model(&models.Affiliation{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestDeactivateThenReapproveCreatesFreshRow(t *testing.T) {
	db := setupTestDB(t)
	affiliations := NewAffiliationService(db)
	hr := newHR(t, db, 5)
	employee := newEmployee(t, db)

	first, err := affiliations.EnsureActive(db, employee, hr)
	require.NoError(t, err)
	require.NoError(t, affiliations.Deactivate(first.ID, hr.ID))

	// Removing again is a silent no-op.
	require.NoError(t, affiliations.Deactivate(first.ID, hr.ID))

	second, err := affiliations.EnsureActive(db, employee, hr)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, models.AffiliationStatusActive, second.Status)

	// The inactive row survives for history.
	var total int64
	db.Model(&models.Affiliation{}).Where("employee_id = ?", employee.ID).Count(&total)
	assert.Equal(t, int64(2), total)
}

func TestDeactivateByOtherHRLeavesRowActive(t *testing.T) {
	db := setupTestDB(t)
	affiliations := NewAffiliationService(db)
	hr := newHR(t, db, 5)
	other := newHR(t, db, 5)
	employee := newEmployee(t, db)

	aff, err := affiliations.EnsureActive(db, employee, hr)
	require.NoError(t, err)

	// Another HR's removal does not match the row and does not touch it.
	require.NoError(t, affiliations.Deactivate(aff.ID, other.ID))

	var reloaded models.Affiliation
	require.NoError(t, db.Where("id = ?", aff.ID).First(&reloaded).Error)
	assert.Equal(t, models.AffiliationStatusActive, reloaded.Status)
}

func TestListForEmployeeCountsTeammates(t *testing.T) {
	db := setupTestDB(t)
	affiliations := NewAffiliationService(db)
	hr := newHR(t, db, 5)
	alice := newEmployee(t, db)
	bob := newEmployee(t, db)

	_, err := affiliations.EnsureActive(db, alice, hr)
	require.NoError(t, err)
	_, err = affiliations.EnsureActive(db, bob, hr)
	require.NoError(t, err)

	memberships, err := affiliations.ListForEmployee(alice.ID)
	require.NoError(t, err)
	require.Len(t, memberships, 1)
	assert.Equal(t, int64(2), memberships[0].TeamSize)

	teammates, err := affiliations.Teammates(alice.ID, hr.ID)
	require.NoError(t, err)
	require.Len(t, teammates, 1)
	assert.Equal(t, bob.ID, teammates[0].EmployeeID)
}

func TestTeammatesRequiresMembership(t *testing.T) {
	db := setupTestDB(t)
	affiliations := NewAffiliationService(db)
	hr := newHR(t, db, 5)
	outsider := newEmployee(t, db)

	_, err := affiliations.Teammates(outsider.ID, hr.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}
