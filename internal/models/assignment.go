// internal/models/assignment.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Assignment records an asset currently (or formerly) held by an employee.
// Created exactly once per successful approval and flipped assigned->returned
// at most once.
type Assignment struct {
	BaseModel
	AssetID    uuid.UUID     `json:"asset_id" gorm:"type:uuid;not null;index"`
	RequestID  *uuid.UUID    `json:"request_id" gorm:"type:uuid;index"`
	AssetName  string        `json:"asset_name" gorm:"size:255;not null"`
	AssetImage string        `json:"asset_image" gorm:"size:512"`
	AssetType  AssetCategory `json:"asset_type" gorm:"type:varchar(20);not null"`
	Quantity   int           `json:"quantity" gorm:"not null;default:1"`

	EmployeeID   uuid.UUID `json:"employee_id" gorm:"type:uuid;not null;index"`
	EmployeeName string    `json:"employee_name" gorm:"size:100"`

	HRID        uuid.UUID `json:"hr_id" gorm:"type:uuid;not null;index"`
	CompanyName string    `json:"company_name" gorm:"size:255"`
	CompanyLogo string    `json:"company_logo" gorm:"size:512"`

	Status AssignmentStatus `json:"status" gorm:"type:varchar(20);default:'assigned';index"`

	RequestedAt time.Time  `json:"requested_at"`
	ApprovedAt  time.Time  `json:"approved_at"`
	AssignedAt  time.Time  `json:"assigned_at"`
	ReturnedAt  *time.Time `json:"returned_at"`

	// Relationships
	Asset   Asset    `json:"asset,omitempty" gorm:"foreignKey:AssetID"`
	Request *Request `json:"request,omitempty" gorm:"foreignKey:RequestID"`
	Holder  User     `json:"holder,omitempty" gorm:"foreignKey:EmployeeID"`
}
