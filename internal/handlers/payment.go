// internal/handlers/payment.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/assetverse/assetverse-backend/internal/i18n"
	"github.com/assetverse/assetverse-backend/internal/services"
	"github.com/assetverse/assetverse-backend/internal/utils"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
	creditService  *services.CreditService
}

func NewPaymentHandler(paymentService *services.PaymentService, creditService *services.CreditService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		creditService:  creditService,
	}
}

// GET /packages
func (h *PaymentHandler) GetPackages(c *gin.Context) {
	packages, err := h.paymentService.ListPackages()
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, packages)
}

// POST /payments/checkout
func (h *PaymentHandler) CreateCheckout(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	hrID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.CreateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	checkout, err := h.paymentService.CreateCheckoutSession(hrID, &req)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, checkout)
}

// POST /payments/reconcile
func (h *PaymentHandler) Reconcile(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	payment, alreadyRecorded, err := h.paymentService.Reconcile(&req)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	messageKey := i18n.KeyPaymentRecorded
	if alreadyRecorded {
		messageKey = i18n.KeyPaymentDuplicate
	}
	utils.SuccessResponse(c, gin.H{
		"message":          i18n.T(lang, messageKey),
		"payment":          payment,
		"already_recorded": alreadyRecorded,
	})
}

// GET /payments
func (h *PaymentHandler) GetPayments(c *gin.Context) {
	hrID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	result, err := h.paymentService.ListPayments(hrID, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, *result)
}

// GET /payments/credits
func (h *PaymentHandler) GetCreditBalance(c *gin.Context) {
	hrID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	balance, err := h.creditService.Balance(hrID)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"credits": balance})
}
