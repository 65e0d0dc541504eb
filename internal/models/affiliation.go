// internal/models/affiliation.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Affiliation is the active link between an employee and the HR account that
// first granted them an asset. At most one active row exists per
// (employee, hr) pair; removal flips status to inactive, it never deletes.
//
// Display metadata is captured at first approval and deliberately not
// refreshed by later approvals.
type Affiliation struct {
	BaseModel
	EmployeeID    uuid.UUID `json:"employee_id" gorm:"type:uuid;not null;index:idx_affiliations_pair"`
	HRID          uuid.UUID `json:"hr_id" gorm:"type:uuid;not null;index:idx_affiliations_pair"`
	EmployeeName  string    `json:"employee_name" gorm:"size:100"`
	EmployeePhoto string    `json:"employee_photo" gorm:"size:512"`
	EmployeeEmail string    `json:"employee_email" gorm:"size:255"`
	CompanyName   string    `json:"company_name" gorm:"size:255"`
	CompanyLogo   string    `json:"company_logo" gorm:"size:512"`

	Status       AffiliationStatus `json:"status" gorm:"type:varchar(20);default:'active';index"`
	AffiliatedAt time.Time         `json:"affiliated_at"`
	RemovedAt    *time.Time        `json:"removed_at"`
	RemovedBy    *uuid.UUID        `json:"removed_by" gorm:"type:uuid"`

	// Relationships
	Employee User `json:"employee,omitempty" gorm:"foreignKey:EmployeeID"`
	HR       User `json:"hr,omitempty" gorm:"foreignKey:HRID"`
}
