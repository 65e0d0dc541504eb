// internal/services/affiliation_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/assetverse/assetverse-backend/internal/apperrors"
	"github.com/assetverse/assetverse-backend/internal/models"
	"github.com/assetverse/assetverse-backend/internal/utils"
)

// AffiliationService maintains the employee-to-company registry. Rows are
// created by the first approval, reused by later ones, and deactivated rather
// than deleted so history survives.
type AffiliationService struct {
	db *gorm.DB
}

func NewAffiliationService(db *gorm.DB) *AffiliationService {
	return &AffiliationService{db: db}
}

// EnsureActive returns the active affiliation between employee and hr,
// creating one inside the caller's transaction when none exists. Display
// metadata is captured only on creation.
func (s *AffiliationService) EnsureActive(tx *gorm.DB, employee *models.User, hr *models.User) (*models.Affiliation, error) {
	var aff models.Affiliation
	err := tx.Where("employee_id = ? AND hr_id = ? AND status = ?",
		employee.ID, hr.ID, models.AffiliationStatusActive).First(&aff).Error
	if err == nil {
		return &aff, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up affiliation: %w", err)
	}

	aff = models.Affiliation{
		EmployeeID:    employee.ID,
		HRID:          hr.ID,
		EmployeeName:  employee.DisplayName,
		EmployeePhoto: employee.PhotoURL,
		EmployeeEmail: employee.Email,
		CompanyName:   hr.CompanyName,
		CompanyLogo:   hr.CompanyLogo,
		Status:        models.AffiliationStatusActive,
		AffiliatedAt:  time.Now(),
	}
	if err := tx.Create(&aff).Error; err != nil {
		return nil, fmt.Errorf("failed to create affiliation: %w", err)
	}
	return &aff, nil
}

// Deactivate removes an employee from the HR account's team. The row is kept
// and flipped to inactive; a later approval creates a fresh active row.
// Removing a row that is missing, already inactive, or owned by another HR
// account is a silent no-op.
func (s *AffiliationService) Deactivate(affiliationID, hrID uuid.UUID) error {
	now := time.Now()
	result := s.db.Model(&models.Affiliation{}).
		Where("id = ? AND hr_id = ? AND status = ?", affiliationID, hrID, models.AffiliationStatusActive).
		Updates(map[string]interface{}{
			"status":     models.AffiliationStatusInactive,
			"removed_at": now,
			"removed_by": hrID,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to deactivate affiliation: %w", result.Error)
	}
	return nil
}

// ListTeam returns the HR account's active roster.
func (s *AffiliationService) ListTeam(hrID uuid.UUID, params utils.PaginationParams) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.Affiliation{}).
		Where("hr_id = ? AND status = ?", hrID, models.AffiliationStatusActive)

	if params.Search != "" {
		query = query.Where("LOWER(employee_name) LIKE LOWER(?) OR LOWER(employee_email) LIKE LOWER(?)",
			"%"+params.Search+"%", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count team members: %w", err)
	}

	var affiliations []models.Affiliation
	query = utils.ApplySort(query, params, []string{"created_at", "employee_name", "affiliated_at"})
	query = utils.ApplyPagination(query, params)
	if err := query.Find(&affiliations).Error; err != nil {
		return nil, fmt.Errorf("failed to list team: %w", err)
	}

	result := utils.CreatePaginationResult(affiliations, total, params)
	return &result, nil
}

// TeamMembership is an employee's view of one company they belong to,
// projected with the teammate head count.
type TeamMembership struct {
	Affiliation models.Affiliation `json:"affiliation"`
	TeamSize    int64              `json:"team_size"`
}

// ListForEmployee returns every company the employee is actively affiliated
// with, each carrying the size of that company's active roster.
func (s *AffiliationService) ListForEmployee(employeeID uuid.UUID) ([]TeamMembership, error) {
	var affiliations []models.Affiliation
	if err := s.db.Where("employee_id = ? AND status = ?", employeeID, models.AffiliationStatusActive).
		Order("affiliated_at DESC").Find(&affiliations).Error; err != nil {
		return nil, fmt.Errorf("failed to list affiliations: %w", err)
	}

	memberships := make([]TeamMembership, 0, len(affiliations))
	for _, aff := range affiliations {
		var teamSize int64
		if err := s.db.Model(&models.Affiliation{}).
			Where("hr_id = ? AND status = ?", aff.HRID, models.AffiliationStatusActive).
			Count(&teamSize).Error; err != nil {
			return nil, fmt.Errorf("failed to count teammates: %w", err)
		}
		memberships = append(memberships, TeamMembership{Affiliation: aff, TeamSize: teamSize})
	}
	return memberships, nil
}

// Teammates lists the other active members of a company the employee belongs
// to. The employee must be on the roster themselves.
func (s *AffiliationService) Teammates(employeeID, hrID uuid.UUID) ([]models.Affiliation, error) {
	var self models.Affiliation
	err := s.db.Where("employee_id = ? AND hr_id = ? AND status = ?",
		employeeID, hrID, models.AffiliationStatusActive).First(&self).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrForbidden
		}
		return nil, fmt.Errorf("failed to verify membership: %w", err)
	}

	var teammates []models.Affiliation
	if err := s.db.Where("hr_id = ? AND status = ? AND employee_id <> ?",
		hrID, models.AffiliationStatusActive, employeeID).
		Order("employee_name ASC").Find(&teammates).Error; err != nil {
		return nil, fmt.Errorf("failed to list teammates: %w", err)
	}
	return teammates, nil
}

// IsAffiliated reports whether an active link exists between the pair.
func (s *AffiliationService) IsAffiliated(employeeID, hrID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.Model(&models.Affiliation{}).
		Where("employee_id = ? AND hr_id = ? AND status = ?", employeeID, hrID, models.AffiliationStatusActive).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check affiliation: %w", err)
	}
	return count > 0, nil
}
