package models

import "time"

// User represents an account holder who owns expenses
type User struct {
	Base
	Name        string     `gorm:"not null" json:"name"`
	Email       string     `gorm:"uniqueIndex;not null" json:"email"`
	Password    string     `gorm:"not null" json:"-"`
	IsActive    bool       `gorm:"default:true" json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	Expenses    []Expense  `gorm:"foreignKey:UserID" json:"expenses,omitempty"`
}
