package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Customer is an account holder (nasabah).
type Customer struct {
	// ID is the unique identifier of the customer record.
	ID string `json:"id" db:"id" gorm:"primaryKey;type:varchar(36)"`

	// NasabahID is the account number. Unique.
	NasabahID string `json:"nasabah_id" db:"nasabah_id" gorm:"column:nasabah_id;uniqueIndex;not null"`

	// NoAlternatif is the alternate account number. Unique.
	NoAlternatif string `json:"no_alternatif" db:"no_alternatif" gorm:"column:no_alternatif;uniqueIndex;not null"`

	FullName string `json:"full_name" db:"full_name" gorm:"not null"`

	// TypeCustomer is the office or classification code of the account.
	TypeCustomer string `json:"type_customer" db:"type_customer" gorm:"not null"`

	AccountBalance decimal.Decimal `json:"account_balance" db:"account_balance" gorm:"type:decimal(18,2);not null"`

	Address string `json:"address" db:"address" gorm:"not null"`

	// CreatedByUserID references the user who registered the customer.
	CreatedByUserID string `json:"created_by_user_id" db:"created_by_user_id" gorm:"type:varchar(36)"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// BeforeCreate assigns a UUID when the caller did not provide one.
func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
