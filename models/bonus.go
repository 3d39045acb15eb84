package models

import "time"

// Bonus is a side-channel counter: the game engine only bumps GamesPlayed
// for an active window; bonus computation itself lives elsewhere.
type Bonus struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	AdminID     uint      `gorm:"index;not null" json:"admin_id"`
	Type        string    `gorm:"default:monthly" json:"type"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	GamesPlayed int64     `json:"games_played"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
