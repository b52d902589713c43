package db

import "time"

type SecretSquare struct {
	ID          string    `gorm:"type:varchar(36);primaryKey"`
	Player      string    `gorm:"size:8;not null;index:idx_secrets_player_game"`
	GameID      string    `gorm:"type:varchar(36);not null;index:idx_secrets_player_game"`
	Text        string    `gorm:"size:200;not null"`
	Description string    `gorm:"not null;default:''"`
	Checked     bool      `gorm:"not null;default:false"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}
