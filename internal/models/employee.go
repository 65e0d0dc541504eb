// internal/models/employee.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Employee is an onboarding record created when someone applies to join a
// company roster. Approval promotes the linked user account to the employee
// role and marks the record available for explicit assignment.
type Employee struct {
	BaseModel
	UserID   *uuid.UUID     `json:"user_id" gorm:"type:uuid;index"`
	Name     string         `json:"name" gorm:"size:100;not null"`
	Email    string         `json:"email" gorm:"size:255;index;not null"`
	PhotoURL string         `json:"photo_url" gorm:"size:512"`
	Status   EmployeeStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`

	// WorkStatus tracks availability for explicit request assignment:
	// inactive until approved, busy while a request is assigned.
	WorkStatus WorkStatus `json:"work_status" gorm:"type:varchar(20);default:'inactive';index"`

	ApprovedAt *time.Time `json:"approved_at"`
}
