package types

import "github.com/shopspring/decimal"

// Stats is the dashboard summary.
type Stats struct {
	// Balance is the sum of all transaction amounts in scope.
	Balance      decimal.Decimal `json:"balance" db:"balance"`
	Customers    int64           `json:"customers" db:"customers"`
	Users        int64           `json:"users" db:"users"`
	Transactions int64           `json:"transactions" db:"transactions"`
}

// UserTotal aggregates transactions per creator.
type UserTotal struct {
	UserID           string          `json:"-" db:"user_id"`
	FullName         string          `json:"full_name" db:"full_name"`
	TotalAmount      decimal.Decimal `json:"total_amount" db:"total_amount"`
	TransactionCount int64           `json:"transaction_count" db:"transaction_count"`
}

// OfficeTotal aggregates transactions per office code.
type OfficeTotal struct {
	OfficeCode       string          `json:"office_code" db:"office_code"`
	TotalAmount      decimal.Decimal `json:"total_amount" db:"total_amount"`
	TransactionCount int64           `json:"transaction_count" db:"transaction_count"`
}
