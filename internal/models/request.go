// internal/models/request.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Request is an employee's petition for an asset. Asset and company fields are
// denormalized at creation time for display, matching what the employee saw.
type Request struct {
	BaseModel
	AssetID    uuid.UUID     `json:"asset_id" gorm:"type:uuid;not null;index"`
	AssetName  string        `json:"asset_name" gorm:"size:255;not null"`
	AssetImage string        `json:"asset_image" gorm:"size:512"`
	AssetType  AssetCategory `json:"asset_type" gorm:"type:varchar(20);not null"`
	Quantity   int           `json:"quantity" gorm:"not null;default:1"`

	EmployeeID    uuid.UUID `json:"employee_id" gorm:"type:uuid;not null;index"`
	EmployeeName  string    `json:"employee_name" gorm:"size:100"`
	EmployeeEmail string    `json:"employee_email" gorm:"size:255;index"`

	HRID        uuid.UUID `json:"hr_id" gorm:"type:uuid;not null;index"`
	CompanyName string    `json:"company_name" gorm:"size:255"`
	CompanyLogo string    `json:"company_logo" gorm:"size:512"`

	Note   string        `json:"note" gorm:"type:text"`
	Status RequestStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`

	DecidedAt   *time.Time `json:"decided_at"`
	ProcessedBy *uuid.UUID `json:"processed_by" gorm:"type:uuid"`
	AssignedAt  *time.Time `json:"assigned_at"`

	// AssignedEmployeeID binds an onboarded employee record when HR assigns
	// the request explicitly.
	AssignedEmployeeID *uuid.UUID `json:"assigned_employee_id" gorm:"type:uuid"`

	// Relationships
	Asset     Asset `json:"asset,omitempty" gorm:"foreignKey:AssetID"`
	Requester User  `json:"requester,omitempty" gorm:"foreignKey:EmployeeID"`
	HR        User  `json:"hr,omitempty" gorm:"foreignKey:HRID"`
}
