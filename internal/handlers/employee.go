// internal/handlers/employee.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/assetverse/assetverse-backend/internal/i18n"
	"github.com/assetverse/assetverse-backend/internal/models"
	"github.com/assetverse/assetverse-backend/internal/services"
	"github.com/assetverse/assetverse-backend/internal/utils"
)

type EmployeeHandler struct {
	employeeService *services.EmployeeService
}

func NewEmployeeHandler(employeeService *services.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{
		employeeService: employeeService,
	}
}

// POST /employees
func (h *EmployeeHandler) CreateEmployee(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	employee, err := h.employeeService.Create(&req)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyEmployeeCreated),
		"employee": employee,
	})
}

// GET /employees
func (h *EmployeeHandler) GetEmployees(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	status := models.EmployeeStatus(c.Query("status"))
	workStatus := models.WorkStatus(c.Query("work_status"))

	result, err := h.employeeService.List(status, workStatus, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, *result)
}

// GET /employees/:id
func (h *EmployeeHandler) GetEmployee(c *gin.Context) {
	employeeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid employee ID", nil)
		return
	}

	employee, err := h.employeeService.Get(employeeID)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, employee)
}

// PATCH /employees/:id/decide
func (h *EmployeeHandler) DecideEmployee(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	employeeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid employee ID", nil)
		return
	}

	var req struct {
		Decision string `json:"decision" validate:"required,oneof=approved rejected"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	employee, err := h.employeeService.Decide(employeeID, req.Decision == "approved")
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyEmployeeUpdated),
		"employee": employee,
	})
}

// DELETE /employees/:id
func (h *EmployeeHandler) DeleteEmployee(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	employeeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid employee ID", nil)
		return
	}

	if err := h.employeeService.Delete(employeeID); err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyEmployeeDeleted),
	})
}
