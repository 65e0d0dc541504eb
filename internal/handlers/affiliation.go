// internal/handlers/affiliation.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/assetverse/assetverse-backend/internal/i18n"
	"github.com/assetverse/assetverse-backend/internal/services"
	"github.com/assetverse/assetverse-backend/internal/utils"
)

type AffiliationHandler struct {
	affiliationService *services.AffiliationService
}

func NewAffiliationHandler(affiliationService *services.AffiliationService) *AffiliationHandler {
	return &AffiliationHandler{
		affiliationService: affiliationService,
	}
}

// GET /team
func (h *AffiliationHandler) GetTeam(c *gin.Context) {
	hrID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	result, err := h.affiliationService.ListTeam(hrID, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, *result)
}

// DELETE /team/:id
func (h *AffiliationHandler) RemoveTeamMember(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	hrID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	affiliationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid affiliation ID", nil)
		return
	}

	if err := h.affiliationService.Deactivate(affiliationID, hrID); err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyAffiliationRemoved),
	})
}

// GET /affiliations/mine
func (h *AffiliationHandler) GetMyAffiliations(c *gin.Context) {
	employeeID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	memberships, err := h.affiliationService.ListForEmployee(employeeID)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, memberships)
}

// GET /affiliations/:hrId/teammates
func (h *AffiliationHandler) GetTeammates(c *gin.Context) {
	employeeID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	hrID, err := uuid.Parse(c.Param("hrId"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid company ID", nil)
		return
	}

	teammates, err := h.affiliationService.Teammates(employeeID, hrID)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, teammates)
}
