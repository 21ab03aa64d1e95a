package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	InvoiceStatusPending = "pending"
	InvoiceStatusPaid    = "paid"
)

// Invoice amounts are stored in cents.
type Invoice struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey"`
	CustomerID uuid.UUID      `gorm:"type:uuid;not null;index"`
	Amount     int64          `gorm:"not null"`
	Status     string         `gorm:"type:varchar(16);not null;index"`
	Date       datatypes.Date `gorm:"not null;index"`
}

func (i *Invoice) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
