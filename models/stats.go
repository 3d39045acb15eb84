package models

import "time"

// Stat is the day-bucketed aggregate per admin. Date is always a UTC
// midnight; counters only grow.
type Stat struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	AdminID     uint      `gorm:"uniqueIndex:idx_stats_admin_date;not null" json:"admin_id"`
	Date        time.Time `gorm:"uniqueIndex:idx_stats_admin_date;not null" json:"date"`
	Profit      float64   `json:"profit"`
	BetAmount   float64   `json:"bet_amount"`
	GamesPlayed int64     `json:"games_played"`
}
