// internal/models/asset.go
package models

import (
	"github.com/google/uuid"
)

// Asset is a company-owned item an HR account hands out to employees.
//
// AvailableQuantity is a derived counter: 0 <= available <= total holds at all
// times and every mutation goes through the inventory ledger's conditional
// updates, never a plain field overwrite.
type Asset struct {
	BaseModel
	HRID              uuid.UUID     `json:"hr_id" gorm:"type:uuid;not null;index"`
	Name              string        `json:"name" gorm:"size:255;not null"`
	Image             string        `json:"image" gorm:"size:512"`
	Type              AssetCategory `json:"type" gorm:"type:varchar(20);not null;index"`
	TotalQuantity     int           `json:"total_quantity" gorm:"not null;default:0"`
	AvailableQuantity int           `json:"available_quantity" gorm:"not null;default:0"`
	CompanyName       string        `json:"company_name" gorm:"size:255"`

	// Relationships
	HR User `json:"hr,omitempty" gorm:"foreignKey:HRID"`
}
