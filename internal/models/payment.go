// internal/models/payment.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment is the durable receipt of a reconciled checkout session. The unique
// transaction id makes reconciliation idempotent under webhook retries.
type Payment struct {
	BaseModel
	HRID          uuid.UUID       `json:"hr_id" gorm:"type:uuid;not null;index"`
	PackageName   string          `json:"package_name" gorm:"size:100;not null"`
	EmployeeLimit int             `json:"employee_limit" gorm:"not null"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:decimal(10,2);not null"`
	TransactionID string          `json:"transaction_id" gorm:"size:255;uniqueIndex;not null"`
	Status        PaymentStatus   `json:"status" gorm:"type:varchar(20);default:'completed'"`
	PaidAt        time.Time       `json:"paid_at"`

	// Relationships
	HR User `json:"hr,omitempty" gorm:"foreignKey:HRID"`
}

// Package is a purchasable credit bundle shown on the upgrade page.
type Package struct {
	BaseModel
	Name          string          `json:"name" gorm:"size:100;uniqueIndex;not null"`
	Price         decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	EmployeeLimit int             `json:"employee_limit" gorm:"not null"`
	Description   string          `json:"description" gorm:"type:text"`
}
