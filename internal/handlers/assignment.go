// internal/handlers/assignment.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/assetverse/assetverse-backend/internal/i18n"
	"github.com/assetverse/assetverse-backend/internal/models"
	"github.com/assetverse/assetverse-backend/internal/services"
	"github.com/assetverse/assetverse-backend/internal/utils"
)

type AssignmentHandler struct {
	assignmentService *services.AssignmentService
}

func NewAssignmentHandler(assignmentService *services.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{
		assignmentService: assignmentService,
	}
}

// GET /assignments/mine
func (h *AssignmentHandler) GetMyAssignments(c *gin.Context) {
	employeeID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	result, err := h.assignmentService.ListForEmployee(employeeID, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, *result)
}

// GET /assignments
func (h *AssignmentHandler) GetAssignments(c *gin.Context) {
	hrID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	status := models.AssignmentStatus(c.Query("status"))

	result, err := h.assignmentService.ListForHR(hrID, status, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, *result)
}

// PATCH /assignments/:id/return
func (h *AssignmentHandler) ReturnAssignment(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	employeeID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	assignmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid assignment ID", nil)
		return
	}

	assignment, err := h.assignmentService.Return(assignmentID, employeeID)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":    i18n.T(lang, i18n.KeyAssignmentReturned),
		"assignment": assignment,
	})
}
