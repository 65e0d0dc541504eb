// internal/services/request_service.go
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

// RequestService drives the request lifecycle:
//
//	pending -> approved -> returned | completed
//	pending -> assigned -> returned | completed | rejected
//	pending -> rejected
//
// Approval is the only path that creates assignments, debits stock and
// credits, and registers affiliations; all of it happens in one transaction
// guarded by conditional updates, so a request is consumed at most once.
type RequestService struct {
	db            *gorm.DB
	assets        *AssetService
	credits       *CreditService
	affiliations  *AffiliationService
	notifications *NotificationService
}

type CreateRequestRequest struct {
	AssetID  uuid.UUID `json:"asset_id" validate:"required"`
	Quantity int       `json:"quantity" validate:"omitempty,min=1"`
	Note     string    `json:"note" validate:"omitempty,max=1000"`
}

type DecideRequestRequest struct {
	Decision models.RequestStatus `json:"decision" validate:"required,oneof=approved rejected"`
}

type AssignRequestRequest struct {
	// EmployeeRecordID optionally binds an approved onboarding record whose
	// work status is flipped to busy for the duration of the assignment.
	EmployeeRecordID *uuid.UUID `json:"employee_record_id"`
}

func NewRequestService(db *gorm.DB, assets *AssetService, credits *CreditService, affiliations *AffiliationService, notifications *NotificationService) *RequestService {
	return &RequestService{
		db:            db,
		assets:        assets,
		credits:       credits,
		affiliations:  affiliations,
		notifications: notifications,
	}
}

// Create files a pending request for a number of units of an asset; a missing
// quantity means one unit. Asset and company details are denormalized onto the
// row as the employee saw them. Stock is untouched until approval, but a
// request for more units than are currently on the shelf is refused outright.
func (s *RequestService) Create(employeeID uuid.UUID, req *CreateRequestRequest) (*models.Request, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}

	var requester models.User
	if err := s.db.Where("id = ?", employeeID).First(&requester).Error; err != nil {
		return nil, apperrors.ErrNotFound
	}
	if requester.Role == models.UserRoleHR {
		return nil, fmt.Errorf("%w: HR accounts cannot file requests", apperrors.ErrForbidden)
	}

	var asset models.Asset
	if err := s.db.Where("id = ?", req.AssetID).First(&asset).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load asset: %w", err)
	}

	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity > asset.AvailableQuantity {
		return nil, fmt.Errorf("%w: requested %d units, %d available",
			apperrors.ErrInsufficientStock, quantity, asset.AvailableQuantity)
	}

	var hr models.User
	if err := s.db.Where("id = ?", asset.HRID).First(&hr).Error; err != nil {
		return nil, fmt.Errorf("failed to load asset owner: %w", err)
	}

	request := &models.Request{
		AssetID:       asset.ID,
		AssetName:     asset.Name,
		AssetImage:    asset.Image,
		AssetType:     asset.Type,
		Quantity:      quantity,
		EmployeeID:    requester.ID,
		EmployeeName:  requester.DisplayName,
		EmployeeEmail: requester.Email,
		HRID:          hr.ID,
		CompanyName:   hr.CompanyName,
		CompanyLogo:   hr.CompanyLogo,
		Note:          req.Note,
		Status:        models.RequestStatusPending,
	}

	if err := s.db.Create(request).Error; err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return request, nil
}

// Decide approves or rejects a pending request. Rejection only flips the
// status. Approval additionally, in the same transaction: debits one HR
// credit, debits asset stock, creates the assignment, and ensures the
// employee's affiliation with the company. Any failure rolls back everything.
func (s *RequestService) Decide(requestID, hrID uuid.UUID, req *DecideRequestRequest) (*models.Request, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}

	request, err := s.loadForHR(requestID, hrID)
	if err != nil {
		return nil, err
	}
	if request.Status != models.RequestStatusPending {
		return nil, apperrors.ErrAlreadyProcessed
	}

	now := time.Now()
	err = database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := s.consumePending(tx, request, req.Decision, now); err != nil {
			return err
		}
		if req.Decision == models.RequestStatusRejected {
			return nil
		}
		return s.fulfill(tx, request, nil, now)
	})
	if err != nil {
		return nil, err
	}

	s.afterDecision(request)
	return request, nil
}

// Assign approves a pending request and hands the asset out in one step,
// optionally binding an onboarded employee record which is marked busy.
func (s *RequestService) Assign(requestID, hrID uuid.UUID, req *AssignRequestRequest) (*models.Request, error) {
	request, err := s.loadForHR(requestID, hrID)
	if err != nil {
		return nil, err
	}
	if request.Status != models.RequestStatusPending {
		return nil, apperrors.ErrAlreadyProcessed
	}

	now := time.Now()
	err = database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := s.consumePending(tx, request, models.RequestStatusAssigned, now); err != nil {
			return err
		}
		return s.fulfill(tx, request, req.EmployeeRecordID, now)
	})
	if err != nil {
		return nil, err
	}

	s.afterDecision(request)
	return request, nil
}

// consumePending flips the request out of pending exactly once. Losing the
// conditional update means another decision got there first.
func (s *RequestService) consumePending(tx *gorm.DB, request *models.Request, decision models.RequestStatus, now time.Time) error {
	updates := map[string]interface{}{
		"status":       decision,
		"decided_at":   now,
		"processed_by": request.HRID,
	}
	if decision == models.RequestStatusAssigned {
		updates["assigned_at"] = now
	}

	result := tx.Model(&models.Request{}).
		Where("id = ? AND status = ?", request.ID, models.RequestStatusPending).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update request: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrAlreadyProcessed
	}

	request.Status = decision
	request.DecidedAt = &now
	request.ProcessedBy = &request.HRID
	if decision == models.RequestStatusAssigned {
		request.AssignedAt = &now
	}
	return nil
}

// fulfill performs the side effects of a successful approval inside tx:
// credit debit, stock debit, assignment creation, affiliation registration,
// and optionally flipping an onboarding record to busy.
func (s *RequestService) fulfill(tx *gorm.DB, request *models.Request, employeeRecordID *uuid.UUID, now time.Time) error {
	if err := s.credits.TryDebit(tx, request.HRID, 1); err != nil {
		return err
	}

	if err := s.assets.AdjustAvailable(tx, request.AssetID, -request.Quantity); err != nil {
		return err
	}

	var employee, hr models.User
	if err := tx.Where("id = ?", request.EmployeeID).First(&employee).Error; err != nil {
		return fmt.Errorf("failed to load requester: %w", err)
	}
	if err := tx.Where("id = ?", request.HRID).First(&hr).Error; err != nil {
		return fmt.Errorf("failed to load hr account: %w", err)
	}

	assignment := &models.Assignment{
		AssetID:      request.AssetID,
		RequestID:    &request.ID,
		AssetName:    request.AssetName,
		AssetImage:   request.AssetImage,
		AssetType:    request.AssetType,
		Quantity:     request.Quantity,
		EmployeeID:   request.EmployeeID,
		EmployeeName: request.EmployeeName,
		HRID:         request.HRID,
		CompanyName:  request.CompanyName,
		CompanyLogo:  request.CompanyLogo,
		Status:       models.AssignmentStatusAssigned,
		RequestedAt:  request.CreatedAt,
		ApprovedAt:   now,
		AssignedAt:   now,
	}
	if err := tx.Create(assignment).Error; err != nil {
		return fmt.Errorf("failed to create assignment: %w", err)
	}

	if _, err := s.affiliations.EnsureActive(tx, &employee, &hr); err != nil {
		return err
	}

	if employeeRecordID != nil {
		result := tx.Model(&models.Employee{}).
			Where("id = ? AND status = ? AND work_status = ?",
				*employeeRecordID, models.EmployeeStatusApproved, models.WorkStatusAvailable).
			UpdateColumn("work_status", models.WorkStatusBusy)
		if result.Error != nil {
			return fmt.Errorf("failed to reserve employee: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: employee is not available for assignment", apperrors.ErrInvalidState)
		}

		result = tx.Model(&models.Request{}).
			Where("id = ?", request.ID).
			UpdateColumn("assigned_employee_id", *employeeRecordID)
		if result.Error != nil {
			return fmt.Errorf("failed to bind employee record: %w", result.Error)
		}
		request.AssignedEmployeeID = employeeRecordID
	}

	return nil
}

func (s *RequestService) afterDecision(request *models.Request) {
	s.assets.InvalidateCache(context.Background())
	go func(r models.Request) {
		if r.Status == models.RequestStatusAssigned {
			s.notifications.SendRequestAssigned(&r)
			return
		}
		s.notifications.SendRequestDecided(&r)
	}(*request)
}

// SetStatus moves a decided request along the tail of its lifecycle:
//
//	approved|assigned -> completed
//	assigned          -> rejected (cancels the assignment and restores stock)
//
// The returned status is reachable only through AssignmentService.Return,
// which is the operation that settles stock for returnable assets.
func (s *RequestService) SetStatus(requestID, hrID uuid.UUID, status models.RequestStatus) (*models.Request, error) {
	request, err := s.loadForHR(requestID, hrID)
	if err != nil {
		return nil, err
	}

	switch status {
	case models.RequestStatusCompleted:
		err = s.complete(request)
	case models.RequestStatusRejected:
		err = s.cancelAssigned(request)
	default:
		return nil, fmt.Errorf("%w: cannot set status %s directly", apperrors.ErrInvalidInput, status)
	}
	if err != nil {
		return nil, err
	}

	if err := s.db.Where("id = ?", requestID).First(request).Error; err != nil {
		return nil, fmt.Errorf("failed to reload request: %w", err)
	}
	return request, nil
}

func (s *RequestService) complete(request *models.Request) error {
	return database.WithTransaction(s.db, func(tx *gorm.DB) error {
		result := tx.Model(&models.Request{}).
			Where("id = ? AND status IN ?", request.ID,
				[]models.RequestStatus{models.RequestStatusApproved, models.RequestStatusAssigned}).
			UpdateColumn("status", models.RequestStatusCompleted)
		if result.Error != nil {
			return fmt.Errorf("failed to complete request: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: only approved or assigned requests can be completed", apperrors.ErrInvalidState)
		}
		return s.releaseEmployee(tx, request)
	})
}

// cancelAssigned rejects a request after assignment: the assignment is closed
// and the stock goes back on the shelf. The approval credit stays spent.
func (s *RequestService) cancelAssigned(request *models.Request) error {
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		result := tx.Model(&models.Request{}).
			Where("id = ? AND status = ?", request.ID, models.RequestStatusAssigned).
			UpdateColumn("status", models.RequestStatusRejected)
		if result.Error != nil {
			return fmt.Errorf("failed to reject request: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: only assigned requests can be rejected after decision", apperrors.ErrInvalidState)
		}

		now := time.Now()
		result = tx.Model(&models.Assignment{}).
			Where("request_id = ? AND status = ?", request.ID, models.AssignmentStatusAssigned).
			Updates(map[string]interface{}{
				"status":      models.AssignmentStatusReturned,
				"returned_at": now,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to close assignment: %w", result.Error)
		}
		if result.RowsAffected > 0 {
			if err := s.assets.AdjustAvailable(tx, request.AssetID, request.Quantity); err != nil {
				return err
			}
		}

		return s.releaseEmployee(tx, request)
	})
	if err != nil {
		return err
	}

	s.assets.InvalidateCache(context.Background())
	return nil
}

func (s *RequestService) releaseEmployee(tx *gorm.DB, request *models.Request) error {
	if request.AssignedEmployeeID == nil {
		return nil
	}
	return tx.Model(&models.Employee{}).
		Where("id = ? AND work_status = ?", *request.AssignedEmployeeID, models.WorkStatusBusy).
		UpdateColumn("work_status", models.WorkStatusAvailable).Error
}

// Delete lets the requester withdraw a request that is still pending.
func (s *RequestService) Delete(requestID, employeeID uuid.UUID) error {
	var request models.Request
	if err := s.db.Where("id = ?", requestID).First(&request).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to load request: %w", err)
	}
	if request.EmployeeID != employeeID {
		return apperrors.ErrForbidden
	}

	result := s.db.Where("id = ? AND status = ?", requestID, models.RequestStatusPending).
		Delete(&models.Request{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete request: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrAlreadyProcessed
	}
	return nil
}

func (s *RequestService) Get(requestID uuid.UUID) (*models.Request, error) {
	var request models.Request
	if err := s.db.Where("id = ?", requestID).First(&request).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load request: %w", err)
	}
	return &request, nil
}

// ListForEmployee returns the requester's own requests, newest first.
func (s *RequestService) ListForEmployee(employeeID uuid.UUID, params utils.PaginationParams) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.Request{}).Where("employee_id = ?", employeeID)

	if params.Search != "" {
		query = query.Where("LOWER(asset_name) LIKE LOWER(?)", "%"+params.Search+"%")
	}
	if params.Type != "" {
		query = query.Where("asset_type = ?", params.Type)
	}

	return s.paginate(query, params)
}

// ListForHR returns requests addressed to the HR account, optionally filtered
// by status and searched by asset or requester.
func (s *RequestService) ListForHR(hrID uuid.UUID, status models.RequestStatus, params utils.PaginationParams) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.Request{}).Where("hr_id = ?", hrID)

	if status != "" {
		query = query.Where("status = ?", status)
	}
	if params.Search != "" {
		query = query.Where(
			"LOWER(asset_name) LIKE LOWER(?) OR LOWER(employee_name) LIKE LOWER(?) OR LOWER(employee_email) LIKE LOWER(?)",
			"%"+params.Search+"%", "%"+params.Search+"%", "%"+params.Search+"%")
	}

	return s.paginate(query, params)
}

func (s *RequestService) paginate(query *gorm.DB, params utils.PaginationParams) (*utils.PaginationResult, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count requests: %w", err)
	}

	var requests []models.Request
	query = utils.ApplySort(query, params, []string{"created_at", "asset_name", "status"})
	query = utils.ApplyPagination(query, params)
	if err := query.Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}

	result := utils.CreatePaginationResult(requests, total, params)
	return &result, nil
}

func (s *RequestService) loadForHR(requestID, hrID uuid.UUID) (*models.Request, error) {
	var request models.Request
	if err := s.db.Where("id = ?", requestID).First(&request).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load request: %w", err)
	}
	if request.HRID != hrID {
		return nil, apperrors.ErrForbidden
	}
	return &request, nil
}
