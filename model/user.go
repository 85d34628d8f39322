package model

import (
	"time"

	"gorm.io/gorm"
)

// User stores the credentials the authentication handler verifies against.
type User struct {
	ID         uint   `gorm:"primarykey"`
	Username   string `gorm:"uniqueIndex;size:32;not null"`
	FullName   string `gorm:"size:64;not null"`
	Email      string `gorm:"uniqueIndex;size:256;not null"`
	Password   string `gorm:"size:64;not null"` // bcrypt hash
	TOTPSecret string `gorm:"size:64"`          // empty when two-factor is not enrolled
	Active     bool   `gorm:"default:true;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  gorm.DeletedAt `gorm:"index"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == 0 {
		u.ID = GenerateID()
	}
	return nil
}
