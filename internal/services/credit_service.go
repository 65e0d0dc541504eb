// internal/services/credit_service.go
package services

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/assetverse/assetverse-backend/internal/apperrors"
	"github.com/assetverse/assetverse-backend/internal/models"
)

// CreditService is the credit ledger over users.package_limit. Debits are
// conditional UPDATEs so the balance can never go negative, even when two
// approvals race for the last credit.
type CreditService struct {
	db *gorm.DB
}

func NewCreditService(db *gorm.DB) *CreditService {
	return &CreditService{db: db}
}

// TryDebit atomically takes amount credits from the HR account inside the
// caller's transaction. RowsAffected == 0 means the balance was short.
func (s *CreditService) TryDebit(tx *gorm.DB, hrID uuid.UUID, amount int) error {
	if amount <= 0 {
		return fmt.Errorf("%w: debit amount must be positive", apperrors.ErrInvalidInput)
	}

	result := tx.Model(&models.User{}).
		Where("id = ? AND role = ? AND package_limit >= ?", hrID, models.UserRoleHR, amount).
		UpdateColumn("package_limit", gorm.Expr("package_limit - ?", amount))
	if result.Error != nil {
		return fmt.Errorf("failed to debit credits: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrInsufficientCredit
	}
	return nil
}

// Credit adds amount credits and records the purchased tier. Used only by
// payment reconciliation.
func (s *CreditService) Credit(tx *gorm.DB, hrID uuid.UUID, amount int, tier models.SubscriptionTier) error {
	if amount <= 0 {
		return fmt.Errorf("%w: credit amount must be positive", apperrors.ErrInvalidInput)
	}

	result := tx.Model(&models.User{}).
		Where("id = ? AND role = ?", hrID, models.UserRoleHR).
		Updates(map[string]interface{}{
			"package_limit": gorm.Expr("package_limit + ?", amount),
			"subscription":  tier,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to credit account: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Balance reads the current credit counter.
func (s *CreditService) Balance(hrID uuid.UUID) (int, error) {
	var user models.User
	if err := s.db.Select("package_limit").Where("id = ? AND role = ?", hrID, models.UserRoleHR).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, apperrors.ErrNotFound
		}
		return 0, fmt.Errorf("failed to read credit balance: %w", err)
	}
	return user.PackageLimit, nil
}
