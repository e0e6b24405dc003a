package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionType is the direction of a transaction.
type TransactionType string

const (
	TransactionDeposit  TransactionType = "deposit"
	TransactionWithdraw TransactionType = "withdraw"
)

// Valid reports whether t is a supported transaction type.
func (t TransactionType) Valid() bool {
	return t == TransactionDeposit || t == TransactionWithdraw
}

// OfficeCodes are the branch codes that can originate a transaction.
var OfficeCodes = []string{"111", "116", "139", "136", "129", "138"}

// KnownOffice reports whether code is one of OfficeCodes.
func KnownOffice(code string) bool {
	for _, known := range OfficeCodes {
		if code == known {
			return true
		}
	}
	return false
}

// Transaction is a monetary movement recorded against a customer.
type Transaction struct {
	// ID is the unique identifier of the transaction.
	ID string `json:"id" db:"id" gorm:"primaryKey;type:varchar(36)"`

	// CustomerID is the primary key of the resolved customer, never the raw identifier
	// typed by the operator.
	CustomerID string `json:"nasabah_id" db:"nasabah_id" gorm:"column:nasabah_id;type:varchar(36);not null;index"`

	// UserID is the creator of the transaction, taken from the session.
	UserID string `json:"user_id" db:"user_id" gorm:"type:varchar(36);not null;index"`

	TransactionType TransactionType `json:"transaction_type" db:"transaction_type" gorm:"type:varchar(20);not null"`

	Amount decimal.Decimal `json:"amount" db:"amount" gorm:"type:decimal(18,2);not null"`

	// Description is always generated server-side from the customer record.
	Description string `json:"description" db:"description"`

	OfficeCode string `json:"office_code" db:"office_code" gorm:"not null;index"`

	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	Customer *Customer `json:"customer,omitempty" db:"-" gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"`
	User     *User     `json:"user,omitempty" db:"-" gorm:"foreignKey:UserID"`
}

// BeforeCreate assigns a UUID when the caller did not provide one.
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// TransactionFilter narrows transaction listings and exports.
type TransactionFilter struct {
	OfficeCodes []string
	UserID      string
	// From and To bound created_at; zero values are open ends. To is exclusive.
	From time.Time
	To   time.Time
}
