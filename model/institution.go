package model

import (
	"time"

	"gorm.io/gorm"
)

// Institution is an identity provider record; the only consumer is the
// logout URL lookup by provider id.
type Institution struct {
	ID         uint   `gorm:"primarykey"`
	ProviderID string `gorm:"size:64;not null;uniqueIndex"`
	Name       string `gorm:"size:128;not null"`
	LoginURL   string `gorm:"size:1024"`
	LogoutURL  string `gorm:"size:1024"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  gorm.DeletedAt `gorm:"index"`
}

func (i *Institution) BeforeCreate(tx *gorm.DB) error {
	if i.ID == 0 {
		i.ID = GenerateID()
	}
	return nil
}
