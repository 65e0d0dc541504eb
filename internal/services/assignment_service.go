// internal/services/assignment_service.go
package services

import (
	"context"
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

// AssignmentService tracks assets in employee hands and settles returns.
type AssignmentService struct {
	db            *gorm.DB
	assets        *AssetService
	notifications *NotificationService
}

func NewAssignmentService(db *gorm.DB, assets *AssetService, notifications *NotificationService) *AssignmentService {
	return &AssignmentService{
		db:            db,
		assets:        assets,
		notifications: notifications,
	}
}

// Return gives a returnable asset back: the assignment flips to returned
// exactly once, the stock is credited in the same transaction, and the source
// request (if any) is settled. Only the holder may return.
func (s *AssignmentService) Return(assignmentID, employeeID uuid.UUID) (*models.Assignment, error) {
	var assignment models.Assignment
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", assignmentID).First(&assignment).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound
			}
			return fmt.Errorf("failed to load assignment: %w", err)
		}
		if assignment.EmployeeID != employeeID {
			return apperrors.ErrForbidden
		}
		if assignment.Status != models.AssignmentStatusAssigned {
			return fmt.Errorf("%w: assignment already returned", apperrors.ErrInvalidState)
		}
		if !assignment.AssetType.Returnable() {
			return apperrors.ErrNotReturnable
		}

		now := time.Now()
		result := tx.Model(&models.Assignment{}).
			Where("id = ? AND status = ?", assignmentID, models.AssignmentStatusAssigned).
			Updates(map[string]interface{}{
				"status":      models.AssignmentStatusReturned,
				"returned_at": now,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to return assignment: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: assignment already returned", apperrors.ErrInvalidState)
		}
		assignment.Status = models.AssignmentStatusReturned
		assignment.ReturnedAt = &now

		if err := s.assets.AdjustAvailable(tx, assignment.AssetID, assignment.Quantity); err != nil {
			return err
		}

		if assignment.RequestID != nil {
			return s.settleRequest(tx, *assignment.RequestID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.assets.InvalidateCache(context.Background())
	go s.notifications.SendAssetReturned(&assignment)
	return &assignment, nil
}

// settleRequest moves the source request to returned and frees any onboarding
// record bound to it.
func (s *AssignmentService) settleRequest(tx *gorm.DB, requestID uuid.UUID) error {
	var request models.Request
	if err := tx.Where("id = ?", requestID).First(&request).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load source request: %w", err)
	}

	result := tx.Model(&models.Request{}).
		Where("id = ? AND status IN ?", requestID,
			[]models.RequestStatus{models.RequestStatusApproved, models.RequestStatusAssigned}).
		UpdateColumn("status", models.RequestStatusReturned)
	if result.Error != nil {
		return fmt.Errorf("failed to settle source request: %w", result.Error)
	}

	if request.AssignedEmployeeID != nil {
		return tx.Model(&models.Employee{}).
			Where("id = ? AND work_status = ?", *request.AssignedEmployeeID, models.WorkStatusBusy).
			UpdateColumn("work_status", models.WorkStatusAvailable).Error
	}
	return nil
}

func (s *AssignmentService) Get(assignmentID uuid.UUID) (*models.Assignment, error) {
	var assignment models.Assignment
	if err := s.db.Where("id = ?", assignmentID).First(&assignment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load assignment: %w", err)
	}
	return &assignment, nil
}

// ListForEmployee returns the employee's assignments with search and type
// filters. Open assignments sort first by default.
func (s *AssignmentService) ListForEmployee(employeeID uuid.UUID, params utils.PaginationParams) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.Assignment{}).Where("employee_id = ?", employeeID)

	if params.Search != "" {
		query = query.Where("LOWER(asset_name) LIKE LOWER(?)", "%"+params.Search+"%")
	}
	if params.Type != "" {
		query = query.Where("asset_type = ?", params.Type)
	}

	return s.paginate(query, params)
}

// ListForHR returns every assignment issued by the HR account.
func (s *AssignmentService) ListForHR(hrID uuid.UUID, status models.AssignmentStatus, params utils.PaginationParams) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.Assignment{}).Where("hr_id = ?", hrID)

	if status != "" {
		query = query.Where("status = ?", status)
	}
	if params.Search != "" {
		query = query.Where("LOWER(asset_name) LIKE LOWER(?) OR LOWER(employee_name) LIKE LOWER(?)",
			"%"+params.Search+"%", "%"+params.Search+"%")
	}

	return s.paginate(query, params)
}

func (s *AssignmentService) paginate(query *gorm.DB, params utils.PaginationParams) (*utils.PaginationResult, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count assignments: %w", err)
	}

	var assignments []models.Assignment
	query = utils.ApplySort(query, params, []string{"created_at", "asset_name", "assigned_at", "status"})
	query = utils.ApplyPagination(query, params)
	if err := query.Find(&assignments).Error; err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	result := utils.CreatePaginationResult(assignments, total, params)
	return &result, nil
}
