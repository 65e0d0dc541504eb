// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// BeforeCreate fills the primary key. Generating ids client-side keeps the
// schema portable across the postgres and sqlite drivers.
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type UserRole string

const (
	UserRoleUser     UserRole = "user"
	UserRoleEmployee UserRole = "employee"
	UserRoleHR       UserRole = "hr"
)

type AssetCategory string

const (
	AssetCategoryReturnable    AssetCategory = "Returnable"
	AssetCategoryNonReturnable AssetCategory = "Non-returnable"
)

// Returnable reports whether assignments of this category may be reversed.
func (c AssetCategory) Returnable() bool {
	return c == AssetCategoryReturnable
}

type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusApproved  RequestStatus = "approved"
	RequestStatusRejected  RequestStatus = "rejected"
	RequestStatusAssigned  RequestStatus = "assigned"
	RequestStatusReturned  RequestStatus = "returned"
	RequestStatusCompleted RequestStatus = "completed"
)

type AssignmentStatus string

const (
	AssignmentStatusAssigned AssignmentStatus = "assigned"
	AssignmentStatusReturned AssignmentStatus = "returned"
)

type AffiliationStatus string

const (
	AffiliationStatusActive   AffiliationStatus = "active"
	AffiliationStatusInactive AffiliationStatus = "inactive"
)

type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "completed"
)

type EmployeeStatus string

const (
	EmployeeStatusPending  EmployeeStatus = "pending"
	EmployeeStatusApproved EmployeeStatus = "approved"
	EmployeeStatusRejected EmployeeStatus = "rejected"
)

type WorkStatus string

const (
	WorkStatusInactive  WorkStatus = "inactive"
	WorkStatusAvailable WorkStatus = "available"
	WorkStatusBusy      WorkStatus = "busy"
)

type SubscriptionTier string

const (
	SubscriptionFree     SubscriptionTier = "free"
	SubscriptionBasic    SubscriptionTier = "basic"
	SubscriptionStandard SubscriptionTier = "standard"
	SubscriptionPremium  SubscriptionTier = "premium"
)
