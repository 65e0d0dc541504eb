// internal/services/notification_service.go
package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/assetverse/assetverse-backend/internal/apperrors"
	"github.com/assetverse/assetverse-backend/internal/models"
	"github.com/assetverse/assetverse-backend/internal/utils"
)

// NotificationService writes in-app notification rows. Producers call the
// Send* helpers from goroutines after their transaction commits, so a failed
// insert never rolls back domain state; it is logged and dropped.
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

func (s *NotificationService) create(userID uuid.UUID, nType models.NotificationType, title, message string, data models.JSONB) {
	notification := &models.Notification{
		UserID:  userID,
		Type:    nType,
		Title:   title,
		Message: message,
		Data:    data,
	}
	if err := s.db.Create(notification).Error; err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"user_id": userID,
			"type":    nType,
		}).Error("Failed to create notification")
	}
}

func (s *NotificationService) SendRequestDecided(request *models.Request) {
	title := "Request rejected"
	message := fmt.Sprintf("Your request for %s was rejected.", request.AssetName)
	if request.Status == models.RequestStatusApproved || request.Status == models.RequestStatusAssigned {
		title = "Request approved"
		message = fmt.Sprintf("Your request for %s was approved by %s.", request.AssetName, request.CompanyName)
	}

	s.create(request.EmployeeID, models.NotificationRequestDecided, title, message, models.JSONB{
		"request_id": request.ID.String(),
		"asset_id":   request.AssetID.String(),
		"status":     string(request.Status),
	})
}

func (s *NotificationService) SendRequestAssigned(request *models.Request) {
	s.create(request.EmployeeID, models.NotificationRequestAssigned,
		"Asset assigned",
		fmt.Sprintf("%s has been assigned to you by %s.", request.AssetName, request.CompanyName),
		models.JSONB{
			"request_id": request.ID.String(),
			"asset_id":   request.AssetID.String(),
		})
}

func (s *NotificationService) SendAssetReturned(assignment *models.Assignment) {
	s.create(assignment.HRID, models.NotificationAssetReturned,
		"Asset returned",
		fmt.Sprintf("%s returned %s (x%d).", assignment.EmployeeName, assignment.AssetName, assignment.Quantity),
		models.JSONB{
			"assignment_id": assignment.ID.String(),
			"asset_id":      assignment.AssetID.String(),
		})
}

func (s *NotificationService) SendPaymentRecorded(payment *models.Payment) {
	s.create(payment.HRID, models.NotificationPaymentRecorded,
		"Payment recorded",
		fmt.Sprintf("Your %s package purchase added %d credits.", payment.PackageName, payment.EmployeeLimit),
		models.JSONB{
			"payment_id":     payment.ID.String(),
			"transaction_id": payment.TransactionID,
		})
}

func (s *NotificationService) List(userID uuid.UUID, params utils.PaginationParams) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.Notification{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count notifications: %w", err)
	}

	var notifications []models.Notification
	query = query.Order("created_at DESC")
	query = utils.ApplyPagination(query, params)
	if err := query.Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	result := utils.CreatePaginationResult(notifications, total, params)
	return &result, nil
}

func (s *NotificationService) MarkRead(notificationID, userID uuid.UUID) error {
	result := s.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ? AND read_at IS NULL", notificationID, userID).
		UpdateColumn("read_at", gorm.Expr("CURRENT_TIMESTAMP"))
	if result.Error != nil {
		return fmt.Errorf("failed to mark notification read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (s *NotificationService) UnreadCount(userID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}
