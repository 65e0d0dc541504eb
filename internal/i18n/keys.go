// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthRegisterSuccess    = "auth.register_success"
	KeyAccessDenied           = "auth.access_denied"

	// Validation
	KeyValidationInvalid = "validation.invalid"

	// Assets
	KeyAssetCreated  = "asset.created"
	KeyAssetUpdated  = "asset.updated"
	KeyAssetDeleted  = "asset.deleted"
	KeyAssetNotFound = "asset.not_found"

	// Requests
	KeyRequestCreated   = "request.created"
	KeyRequestApproved  = "request.approved"
	KeyRequestRejected  = "request.rejected"
	KeyRequestAssigned  = "request.assigned"
	KeyRequestWithdrawn = "request.withdrawn"
	KeyRequestNotFound  = "request.not_found"

	// Assignments
	KeyAssignmentReturned = "assignment.returned"
	KeyAssignmentNotFound = "assignment.not_found"

	// Affiliations
	KeyAffiliationRemoved = "affiliation.removed"

	// Employees
	KeyEmployeeCreated  = "employee.created"
	KeyEmployeeUpdated  = "employee.updated"
	KeyEmployeeDeleted  = "employee.deleted"
	KeyEmployeeNotFound = "employee.not_found"

	// Payments
	KeyPaymentRecorded     = "payment.recorded"
	KeyPaymentDuplicate    = "payment.duplicate"
	KeyPaymentNotCompleted = "payment.not_completed"
)
