package model

import (
	"time"

	"gorm.io/gorm"
)

// Service is a registered relying application allowed to request tokens.
type Service struct {
	ID           uint   `gorm:"primarykey"`
	Name         string `gorm:"size:128;not null"`
	Description  string `gorm:"size:512"`
	ClientID     string `gorm:"size:64;not null;uniqueIndex"`
	ClientSecret string `gorm:"size:128;not null"`
	CallbackURL  string `gorm:"size:1024;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (s *Service) BeforeCreate(tx *gorm.DB) error {
	if s.ID == 0 {
		s.ID = GenerateID()
	}
	return nil
}
