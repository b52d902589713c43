package db

import "time"

type Progress struct {
	ID          string    `gorm:"type:varchar(36);primaryKey"`
	Player      string    `gorm:"size:8;not null;uniqueIndex:idx_progress_player_game_square"`
	GameID      string    `gorm:"type:varchar(36);not null;index;uniqueIndex:idx_progress_player_game_square"`
	SquareIndex int       `gorm:"not null;uniqueIndex:idx_progress_player_game_square"`
	Checked     bool      `gorm:"not null;default:false"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}
