package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a catalog entry. Deleting it only sets DeletedAt; default
// queries skip deleted rows.
type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"size:255;not null" json:"name"`
	CategoryID  uint            `gorm:"not null;index" json:"category_id"`
	Category    Category        `json:"category"`
	Description *string         `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Stock       int             `gorm:"not null" json:"stock"`
	Enabled     bool            `gorm:"not null" json:"enabled"`
	CreatedAt   time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}

// StatusLabel is "Enabled" or "Disabled".
func (p Product) StatusLabel() string {
	if p.Enabled {
		return "Enabled"
	}
	return "Disabled"
}

// CategoryName is the attached category's name, or "" when not loaded.
func (p Product) CategoryName() string { return p.Category.Name }

// DescriptionText is the description or "".
func (p Product) DescriptionText() string {
	if p.Description == nil {
		return ""
	}
	return *p.Description
}
