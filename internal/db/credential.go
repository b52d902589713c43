package db

import "time"

type PlayerCredential struct {
	ID        string    `gorm:"type:varchar(36);primaryKey"`
	Player    string    `gorm:"size:8;not null;uniqueIndex"`
	PIN       string    `gorm:"size:16;not null"`
	Shared    bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
