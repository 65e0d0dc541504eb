// internal/services/payment_service_test.go
package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/assetverse/assetverse-backend/internal/apperrors"
	"github.com/assetverse/assetverse-backend/internal/models"
)

// fakeGateway records sessions in memory, standing in for the hosted
// checkout provider.
type fakeGateway struct {
	sessions map[string]*CheckoutSession
	seq      int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{sessions: map[string]*CheckoutSession{}}
}

func (g *fakeGateway) CreateSession(params CreateSessionParams) (*CheckoutSession, error) {
	g.seq++
	session := &CheckoutSession{
		ID:            fmt.Sprintf("cs_test_%d", g.seq),
		URL:           fmt.Sprintf("https://checkout.example.com/cs_test_%d", g.seq),
		PaymentStatus: "unpaid",
		CustomerEmail: params.CustomerEmail,
		AmountTotal:   params.AmountCents,
		Metadata:      params.Metadata,
	}
	g.sessions[session.ID] = session
	return session, nil
}

func (g *fakeGateway) RetrieveSession(sessionID string) (*CheckoutSession, error) {
	session, ok := g.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("no such session %s", sessionID)
	}
	return session, nil
}

func (g *fakeGateway) markPaid(sessionID, transactionID string) {
	g.sessions[sessionID].PaymentStatus = "paid"
	g.sessions[sessionID].TransactionID = transactionID
}

func setupPayments(t *testing.T) (*gorm.DB, *PaymentService, *fakeGateway, *models.User, *models.Package) {
	t.Helper()
	db := setupTestDB(t)
	gateway := newFakeGateway()
	credits := NewCreditService(db)
	notifications := NewNotificationService(db)
	payments := NewPaymentService(db, testConfig(), gateway, credits, notifications)

	hr := newHR(t, db, 5)
	pkg := &models.Package{
		Name:          "Standard",
		Price:         decimal.NewFromInt(8),
		EmployeeLimit: 10,
	}
	require.NoError(t, db.Create(pkg).Error)
	return db, payments, gateway, hr, pkg
}

func TestCreateCheckoutSessionCarriesPackageMetadata(t *testing.T) {
	_, payments, gateway, hr, pkg := setupPayments(t)

	checkout, err := payments.CreateCheckoutSession(hr.ID, &CreateCheckoutRequest{PackageID: pkg.ID})
	require.NoError(t, err)
	assert.NotEmpty(t, checkout.SessionID)
	assert.NotEmpty(t, checkout.CheckoutURL)

	session := gateway.sessions[checkout.SessionID]
	assert.Equal(t, hr.Email, session.CustomerEmail)
	assert.Equal(t, int64(800), session.AmountTotal)
	assert.Equal(t, "Standard", session.Metadata["package_name"])
	assert.Equal(t, "10", session.Metadata["employee_limit"])
}

func TestCheckoutRequiresHRRole(t *testing.T) {
	db, payments, _, _, pkg := setupPayments(t)
	employee := newEmployee(t, db)

	_, err := payments.CreateCheckoutSession(employee.ID, &CreateCheckoutRequest{PackageID: pkg.ID})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestReconcileCreditsAccountOnce(t *testing.T) {
	db, payments, gateway, hr, pkg := setupPayments(t)

	checkout, err := payments.CreateCheckoutSession(hr.ID, &CreateCheckoutRequest{PackageID: pkg.ID})
	require.NoError(t, err)
	gateway.markPaid(checkout.SessionID, "pi_test_1")

	payment, alreadyRecorded, err := payments.Reconcile(&ReconcileRequest{SessionID: checkout.SessionID})
	require.NoError(t, err)
	assert.False(t, alreadyRecorded)
	assert.Equal(t, "pi_test_1", payment.TransactionID)
	assert.Equal(t, pkg.EmployeeLimit, payment.EmployeeLimit)
	assert.True(t, payment.Amount.Equal(decimal.NewFromInt(8)))

	reloaded := loadUser(t, db, hr.ID)
	assert.Equal(t, 15, reloaded.PackageLimit)
	assert.Equal(t, models.SubscriptionStandard, reloaded.Subscription)
}

func TestReconcileReplayIsIdempotent(t *testing.T) {
	db, payments, gateway, hr, pkg := setupPayments(t)

	checkout, err := payments.CreateCheckoutSession(hr.ID, &CreateCheckoutRequest{PackageID: pkg.ID})
	require.NoError(t, err)
	gateway.markPaid(checkout.SessionID, "pi_test_1")

	first, _, err := payments.Reconcile(&ReconcileRequest{SessionID: checkout.SessionID})
	require.NoError(t, err)

	second, alreadyRecorded, err := payments.Reconcile(&ReconcileRequest{SessionID: checkout.SessionID})
	require.NoError(t, err)
	assert.True(t, alreadyRecorded)
	assert.Equal(t, first.ID, second.ID)

	// The balance moved exactly once and one receipt exists.
	assert.Equal(t, 15, loadUser(t, db, hr.ID).PackageLimit)
	var receipts int64
	db.Model(&models.Payment{}).Where("transaction_id = ?", "pi_test_1").Count(&receipts)
	assert.Equal(t, int64(1), receipts)
}

func TestDuplicateTransactionInsertIsRecognized(t *testing.T) {
	db, _, _, hr, _ := setupPayments(t)

	first := models.Payment{
		HRID:          hr.ID,
		PackageName:   "Standard",
		EmployeeLimit: 10,
		Amount:        decimal.NewFromInt(8),
		TransactionID: "pi_race",
		Status:        models.PaymentStatusCompleted,
		PaidAt:        time.Now(),
	}
	require.NoError(t, db.Create(&first).Error)

	// A second insert with the same transaction id hits the unique index;
	// Reconcile treats that collision as idempotent success.
	duplicate := first
	duplicate.ID = uuid.Nil
	err := db.Create(&duplicate).Error
	require.Error(t, err)
	assert.True(t, isDuplicateKeyError(err))
}

func TestReconcileUnpaidSessionFails(t *testing.T) {
	db, payments, _, hr, pkg := setupPayments(t)

	checkout, err := payments.CreateCheckoutSession(hr.ID, &CreateCheckoutRequest{PackageID: pkg.ID})
	require.NoError(t, err)

	_, _, err = payments.Reconcile(&ReconcileRequest{SessionID: checkout.SessionID})
	assert.ErrorIs(t, err, apperrors.ErrPaymentNotCompleted)

	// No credit movement, no receipt.
	assert.Equal(t, 5, loadUser(t, db, hr.ID).PackageLimit)
	var receipts int64
	db.Model(&models.Payment{}).Count(&receipts)
	assert.Zero(t, receipts)
}

func TestListPayments(t *testing.T) {
	_, payments, gateway, hr, pkg := setupPayments(t)

	for i := 0; i < 2; i++ {
		checkout, err := payments.CreateCheckoutSession(hr.ID, &CreateCheckoutRequest{PackageID: pkg.ID})
		require.NoError(t, err)
		gateway.markPaid(checkout.SessionID, fmt.Sprintf("pi_test_%d", i))
		_, _, err = payments.Reconcile(&ReconcileRequest{SessionID: checkout.SessionID})
		require.NoError(t, err)
	}

	result, err := payments.ListPayments(hr.ID, defaultParams())
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Total)
}
