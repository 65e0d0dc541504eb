// internal/services/payment_service.go
package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/assetverse/assetverse-backend/internal/apperrors"
	"github.com/assetverse/assetverse-backend/internal/config"
	"github.com/assetverse/assetverse-backend/internal/database"
	"github.com/assetverse/assetverse-backend/internal/models"
	"github.com/assetverse/assetverse-backend/internal/utils"
)

// CheckoutSession is the gateway-neutral view of a hosted checkout session.
type CheckoutSession struct {
	ID            string
	URL           string
	PaymentStatus string
	CustomerEmail string
	AmountTotal   int64 // smallest currency unit
	TransactionID string
	Metadata      map[string]string
}

type CreateSessionParams struct {
	CustomerEmail string
	ProductName   string
	AmountCents   int64
	Currency      string
	SuccessURL    string
	CancelURL     string
	Metadata      map[string]string
}

// CheckoutGateway abstracts the payment provider so reconciliation can be
// tested against a fake.
type CheckoutGateway interface {
	CreateSession(params CreateSessionParams) (*CheckoutSession, error)
	RetrieveSession(sessionID string) (*CheckoutSession, error)
}

// PaymentService sells credit packages and reconciles completed checkout
// sessions into the credit ledger. Reconciliation is idempotent on the
// gateway transaction id: replays return the original receipt untouched.
type PaymentService struct {
	db            *gorm.DB
	cfg           *config.Config
	gateway       CheckoutGateway
	credits       *CreditService
	notifications *NotificationService
}

type CreateCheckoutRequest struct {
	PackageID uuid.UUID `json:"package_id" validate:"required"`
}

type CheckoutResponse struct {
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}

type ReconcileRequest struct {
	SessionID string `json:"session_id" validate:"required"`
}

// errPaymentRaced aborts the reconcile transaction when the receipt insert
// loses the unique-index race to a concurrent reconciliation.
var errPaymentRaced = errors.New("payment recorded by a concurrent reconciliation")

func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") || // postgres
		strings.Contains(msg, "UNIQUE constraint failed") // sqlite
}

func NewPaymentService(db *gorm.DB, cfg *config.Config, gateway CheckoutGateway, credits *CreditService, notifications *NotificationService) *PaymentService {
	return &PaymentService{
		db:            db,
		cfg:           cfg,
		gateway:       gateway,
		credits:       credits,
		notifications: notifications,
	}
}

func (s *PaymentService) ListPackages() ([]models.Package, error) {
	var packages []models.Package
	if err := s.db.Order("price ASC").Find(&packages).Error; err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}
	return packages, nil
}

// CreateCheckoutSession opens a hosted checkout for a credit package. The
// package identity travels in session metadata so reconciliation does not
// trust anything client-supplied.
func (s *PaymentService) CreateCheckoutSession(hrID uuid.UUID, req *CreateCheckoutRequest) (*CheckoutResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}

	var hr models.User
	if err := s.db.Where("id = ? AND role = ?", hrID, models.UserRoleHR).First(&hr).Error; err != nil {
		return nil, apperrors.ErrForbidden
	}

	var pkg models.Package
	if err := s.db.Where("id = ?", req.PackageID).First(&pkg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load package: %w", err)
	}

	amountCents := pkg.Price.Mul(decimal.NewFromInt(100)).IntPart()
	session, err := s.gateway.CreateSession(CreateSessionParams{
		CustomerEmail: hr.Email,
		ProductName:   fmt.Sprintf("%s package (%d credits)", pkg.Name, pkg.EmployeeLimit),
		AmountCents:   amountCents,
		Currency:      s.cfg.Payment.Currency,
		SuccessURL:    fmt.Sprintf("%s/payment/success?session_id={CHECKOUT_SESSION_ID}", s.cfg.Frontend.BaseURL),
		CancelURL:     fmt.Sprintf("%s/payment/cancelled", s.cfg.Frontend.BaseURL),
		Metadata: map[string]string{
			"package_id":     pkg.ID.String(),
			"package_name":   pkg.Name,
			"employee_limit": strconv.Itoa(pkg.EmployeeLimit),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return &CheckoutResponse{
		SessionID:   session.ID,
		CheckoutURL: session.URL,
	}, nil
}

// Reconcile verifies a checkout session with the gateway and, exactly once
// per transaction id, records the payment and credits the HR account. The
// second return value reports whether the payment had already been recorded.
func (s *PaymentService) Reconcile(req *ReconcileRequest) (*models.Payment, bool, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, false, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}

	session, err := s.gateway.RetrieveSession(req.SessionID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to retrieve checkout session: %w", err)
	}
	if session.PaymentStatus != "paid" {
		return nil, false, apperrors.ErrPaymentNotCompleted
	}
	if session.TransactionID == "" {
		return nil, false, fmt.Errorf("%w: session has no transaction id", apperrors.ErrInvalidInput)
	}

	var hr models.User
	if err := s.db.Where("email = ? AND role = ?", session.CustomerEmail, models.UserRoleHR).First(&hr).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, apperrors.ErrNotFound
		}
		return nil, false, fmt.Errorf("failed to load hr account: %w", err)
	}

	employeeLimit, err := strconv.Atoi(session.Metadata["employee_limit"])
	if err != nil || employeeLimit <= 0 {
		return nil, false, fmt.Errorf("%w: session metadata has no employee limit", apperrors.ErrInvalidInput)
	}
	packageName := session.Metadata["package_name"]
	if packageName == "" {
		return nil, false, fmt.Errorf("%w: session metadata has no package name", apperrors.ErrInvalidInput)
	}

	var payment models.Payment
	var alreadyRecorded bool
	err = database.WithTransaction(s.db, func(tx *gorm.DB) error {
		err := tx.Where("transaction_id = ?", session.TransactionID).First(&payment).Error
		if err == nil {
			alreadyRecorded = true
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up payment: %w", err)
		}

		if err := s.credits.Credit(tx, hr.ID, employeeLimit, tierForPackage(packageName)); err != nil {
			return err
		}

		payment = models.Payment{
			HRID:          hr.ID,
			PackageName:   packageName,
			EmployeeLimit: employeeLimit,
			Amount:        decimal.NewFromInt(session.AmountTotal).Div(decimal.NewFromInt(100)),
			TransactionID: session.TransactionID,
			Status:        models.PaymentStatusCompleted,
			PaidAt:        time.Now(),
		}
		if err := tx.Create(&payment).Error; err != nil {
			// The unique index on transaction_id backstops races between
			// concurrent reconciliations of the same session.
			if isDuplicateKeyError(err) {
				return errPaymentRaced
			}
			return fmt.Errorf("failed to record payment: %w", err)
		}
		return nil
	})
	if errors.Is(err, errPaymentRaced) {
		// The other reconciliation won; hand back its receipt.
		if err := s.db.Where("transaction_id = ?", session.TransactionID).First(&payment).Error; err != nil {
			return nil, false, fmt.Errorf("failed to load recorded payment: %w", err)
		}
		alreadyRecorded = true
	} else if err != nil {
		return nil, false, err
	}

	if !alreadyRecorded {
		go s.notifications.SendPaymentRecorded(&payment)
	}
	return &payment, alreadyRecorded, nil
}

// ListPayments returns the HR account's payment history, newest first.
func (s *PaymentService) ListPayments(hrID uuid.UUID, params utils.PaginationParams) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.Payment{}).Where("hr_id = ?", hrID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count payments: %w", err)
	}

	var payments []models.Payment
	query = query.Order("paid_at DESC")
	query = utils.ApplyPagination(query, params)
	if err := query.Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	result := utils.CreatePaginationResult(payments, total, params)
	return &result, nil
}

func tierForPackage(name string) models.SubscriptionTier {
	switch strings.ToLower(name) {
	case "basic":
		return models.SubscriptionBasic
	case "standard":
		return models.SubscriptionStandard
	case "premium":
		return models.SubscriptionPremium
	default:
		return models.SubscriptionBasic
	}
}
