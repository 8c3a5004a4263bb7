package models

import "github.com/shopspring/decimal"

func init() {
	// Amounts go over the wire as JSON numbers; strings are still accepted on input.
	decimal.MarshalJSONWithoutQuotes = true
}

// Expense represents a single user-entered spending entry
type Expense struct {
	Base
	UserID      string          `gorm:"type:uuid;not null;index" json:"-"`
	Title       string          `gorm:"not null" json:"title"`
	Amount      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Category    string          `gorm:"index" json:"category"`
	Date        Date            `gorm:"type:date;not null" json:"date"`
	Description string          `json:"description,omitempty"`
}
