package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Forfait represents a subscription plan offered in the catalog.
// ID and CreatedAt are assigned by the database on insert.
type Forfait struct {
	ID          uint            `gorm:"primaryKey"`
	Nom         string          `gorm:"size:255;not null"`
	Description string          `gorm:"type:text"`
	Prix        decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Image       string          `gorm:"size:512"`
	Categorie   string          `gorm:"size:100;index"`
	CreatedAt   time.Time       `gorm:"autoCreateTime;index"`
}

func (f *Forfait) TableName() string {
	return "forfaits"
}
