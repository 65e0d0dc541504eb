// internal/services/employee_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/assetverse/assetverse-backend/internal/apperrors"
	"github.com/assetverse/assetverse-backend/internal/database"
	"github.com/assetverse/assetverse-backend/internal/models"
	"github.com/assetverse/assetverse-backend/internal/utils"
)

// EmployeeService manages the onboarding roster: people apply, HR approves or
// rejects, and approved records become eligible for explicit assignment.
type EmployeeService struct {
	db *gorm.DB
}

type CreateEmployeeRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	PhotoURL string `json:"photo_url" validate:"omitempty,max=512"`
}

func NewEmployeeService(db *gorm.DB) *EmployeeService {
	return &EmployeeService{db: db}
}

// Create files a pending onboarding application, linked to an existing user
// account when one matches the email.
func (s *EmployeeService) Create(req *CreateEmployeeRequest) (*models.Employee, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}

	var open int64
	err := s.db.Model(&models.Employee{}).
		Where("email = ? AND status IN ?", req.Email,
			[]models.EmployeeStatus{models.EmployeeStatusPending, models.EmployeeStatusApproved}).
		Count(&open).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check existing applications: %w", err)
	}
	if open > 0 {
		return nil, fmt.Errorf("%w: an open application already exists for this email", apperrors.ErrInvalidState)
	}

	employee := &models.Employee{
		Name:       req.Name,
		Email:      req.Email,
		PhotoURL:   req.PhotoURL,
		Status:     models.EmployeeStatusPending,
		WorkStatus: models.WorkStatusInactive,
	}

	var user models.User
	if err := s.db.Where("email = ?", req.Email).First(&user).Error; err == nil {
		employee.UserID = &user.ID
	}

	if err := s.db.Create(employee).Error; err != nil {
		return nil, fmt.Errorf("failed to create employee record: %w", err)
	}
	return employee, nil
}

// Decide approves or rejects a pending application exactly once. Approval
// marks the record available for work and promotes the linked user account to
// the employee role.
func (s *EmployeeService) Decide(employeeID uuid.UUID, approve bool) (*models.Employee, error) {
	var employee models.Employee
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", employeeID).First(&employee).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound
			}
			return fmt.Errorf("failed to load employee record: %w", err)
		}

		updates := map[string]interface{}{
			"status": models.EmployeeStatusRejected,
		}
		if approve {
			now := time.Now()
			updates["status"] = models.EmployeeStatusApproved
			updates["work_status"] = models.WorkStatusAvailable
			updates["approved_at"] = now
		}

		result := tx.Model(&models.Employee{}).
			Where("id = ? AND status = ?", employeeID, models.EmployeeStatusPending).
			Updates(updates)
		if result.Error != nil {
			return fmt.Errorf("failed to decide application: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperrors.ErrAlreadyProcessed
		}

		if approve && employee.UserID != nil {
			if err := tx.Model(&models.User{}).
				Where("id = ? AND role = ?", *employee.UserID, models.UserRoleUser).
				UpdateColumn("role", models.UserRoleEmployee).Error; err != nil {
				return fmt.Errorf("failed to promote user: %w", err)
			}
		}

		return tx.Where("id = ?", employeeID).First(&employee).Error
	})
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

// Delete removes an onboarding record that is not currently holding an
// assignment.
func (s *EmployeeService) Delete(employeeID uuid.UUID) error {
	var employee models.Employee
	if err := s.db.Where("id = ?", employeeID).First(&employee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to load employee record: %w", err)
	}
	if employee.WorkStatus == models.WorkStatusBusy {
		return fmt.Errorf("%w: employee holds an active assignment", apperrors.ErrInvalidState)
	}

	return s.db.Delete(&employee).Error
}

// List returns onboarding records filtered by status and work status.
func (s *EmployeeService) List(status models.EmployeeStatus, workStatus models.WorkStatus, params utils.PaginationParams) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.Employee{})

	if status != "" {
		query = query.Where("status = ?", status)
	}
	if workStatus != "" {
		query = query.Where("work_status = ?", workStatus)
	}
	if params.Search != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?)",
			"%"+params.Search+"%", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count employees: %w", err)
	}

	var employees []models.Employee
	query = utils.ApplySort(query, params, []string{"created_at", "name", "status"})
	query = utils.ApplyPagination(query, params)
	if err := query.Find(&employees).Error; err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	result := utils.CreatePaginationResult(employees, total, params)
	return &result, nil
}

func (s *EmployeeService) Get(employeeID uuid.UUID) (*models.Employee, error) {
	var employee models.Employee
	if err := s.db.Where("id = ?", employeeID).First(&employee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load employee record: %w", err)
	}
	return &employee, nil
}
