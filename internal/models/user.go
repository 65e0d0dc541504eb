// internal/models/user.go
package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	DisplayName  string           `json:"display_name" gorm:"size:100;not null"`
	Email        string           `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string           `json:"-" gorm:"size:255;not null"`
	PhotoURL     string           `json:"photo_url" gorm:"size:512"`
	Role         UserRole         `json:"role" gorm:"type:varchar(20);default:'user';index"`
	CompanyName  string           `json:"company_name" gorm:"size:255"`
	CompanyLogo  string           `json:"company_logo" gorm:"size:512"`
	Subscription SubscriptionTier `json:"subscription" gorm:"type:varchar(20);default:'free'"`

	// PackageLimit is the HR credit counter. It is mutated only through the
	// credit ledger operations and never goes negative.
	PackageLimit int `json:"package_limit" gorm:"default:0"`

	LastLoginAt *time.Time `json:"last_login_at"`

	// Relationships
	Assets   []Asset   `json:"assets,omitempty" gorm:"foreignKey:HRID"`
	Requests []Request `json:"requests,omitempty" gorm:"foreignKey:EmployeeID"`
	Payments []Payment `json:"payments,omitempty" gorm:"foreignKey:HRID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}
