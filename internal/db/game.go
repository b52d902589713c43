package db

import (
	"time"

	"gorm.io/datatypes"
)

type Game struct {
	ID             string         `gorm:"type:varchar(36);primaryKey"`
	Title          string         `gorm:"size:120;not null"`
	Theme          string         `gorm:"size:200;not null"`
	GridSize       int            `gorm:"not null;default:3"`
	Squares        datatypes.JSON `gorm:"type:jsonb;not null"`
	BetDescription string         `gorm:"not null;default:''"`
	Rating         string         `gorm:"size:8;not null;default:'r'"`
	Mood           string         `gorm:"size:16;not null;default:'couples'"`
	Player1Label   string         `gorm:"size:20;not null;default:'Him'"`
	Player2Label   string         `gorm:"size:20;not null;default:'Her'"`
	Status         string         `gorm:"size:16;not null;default:'active';index"`
	Winner         *string        `gorm:"size:8"`
	IsTemplate     bool           `gorm:"not null;default:false;index"`
	OwnerID        string         `gorm:"size:64;not null;index"`
	PartnerID      *string        `gorm:"size:64;index"`
	CreatedAt      time.Time      `gorm:"not null"`
	UpdatedAt      time.Time      `gorm:"not null"`
	CompletedAt    *time.Time
}
