package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a dashboard operator. Password holds a bcrypt hash.
type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name     string    `gorm:"not null"`
	Email    string    `gorm:"size:255;not null;uniqueIndex"`
	Password string    `gorm:"not null"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
