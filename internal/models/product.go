package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceScale is the number of decimal places stored for money amounts.
// Amounts must stay below 10^8 to fit the decimal(10,2) columns.
const PriceScale = 2

// Product represents an item in the store catalog.
type Product struct {
	ID             string          `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"required"`
	Name           string          `json:"name" gorm:"type:varchar(100);not null" validate:"required,max=100"`
	Price          decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null" validate:"gte=0,lt=100000000"`
	ScanCode       string          `json:"scan_code" gorm:"uniqueIndex;type:varchar(128);not null" validate:"required,max=128"`
	AgeRestriction *int            `json:"age_restriction,omitempty" validate:"omitempty,gte=0"`
	Stock          *int            `json:"stock,omitempty" validate:"omitempty,gte=0"` // nil means unlimited
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Unlimited reports whether the product has no stock ceiling.
func (p Product) Unlimited() bool {
	return p.Stock == nil
}

// RequiredAge is the product's age restriction, or 0 when it has none.
func (p Product) RequiredAge() int {
	if p.AgeRestriction == nil {
		return 0
	}
	return *p.AgeRestriction
}

// ReduceStock lowers the stock by quantity, never below zero. Products with
// unlimited stock are left untouched.
func (p *Product) ReduceStock(quantity int) {
	if p.Stock == nil || quantity <= 0 {
		return
	}
	remaining := *p.Stock - quantity
	if remaining < 0 {
		remaining = 0
	}
	p.Stock = &remaining
}

// IntPtr is a small helper for optional product fields.
func IntPtr(v int) *int {
	return &v
}
