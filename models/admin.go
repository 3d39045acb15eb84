package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type AdminRole string

const (
	RoleAdmin    AdminRole = "admin"
	RoleSubadmin AdminRole = "subadmin"
)

// PeriodStat is one entry of the per-day profit ring kept on the admin
// record. The ring holds at most 30 entries, newest first.
type PeriodStat struct {
	Date   time.Time `json:"date"`
	Profit float64   `json:"profit"`
}

// GameRef points at one of the admin's most recent games.
type GameRef struct {
	GameID uint      `json:"game_id"`
	Date   time.Time `json:"date"`
}

// LifetimeStats are monotone counters, only ever incremented.
type LifetimeStats struct {
	TotalProfit    float64 `json:"total_profit"`
	TotalBetAmount float64 `json:"total_bet_amount"`
	TotalGames     int64   `json:"total_games"`
}

type Admin struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	Username string    `gorm:"uniqueIndex;not null" json:"username"`
	Role     AdminRole `gorm:"default:admin" json:"role"`

	Wallet                   float64    `json:"wallet"`
	UnlimitedWalletActive    bool       `json:"unlimited_wallet_active"`
	UnlimitedWalletExpiresAt *time.Time `json:"unlimited_wallet_expires_at,omitempty"`
	OngoingProfit            float64    `json:"ongoing_profit"`
	IsSuspended              bool       `json:"is_suspended"`

	StatsByPeriod datatypes.JSON `gorm:"type:json" json:"stats_by_period"`
	LastGames     datatypes.JSON `gorm:"type:json" json:"last_games"`
	Lifetime      LifetimeStats  `gorm:"embedded;embeddedPrefix:lifetime_" json:"lifetime_stats"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UnlimitedWalletActiveAt reports whether the unlimited wallet window covers
// the given instant.
func (a *Admin) UnlimitedWalletActiveAt(now time.Time) bool {
	return a.UnlimitedWalletActive &&
		a.UnlimitedWalletExpiresAt != nil &&
		a.UnlimitedWalletExpiresAt.After(now)
}

// PeriodStats decodes the StatsByPeriod JSON column. An empty column decodes
// to an empty slice.
func (a *Admin) PeriodStats() ([]PeriodStat, error) {
	if len(a.StatsByPeriod) == 0 {
		return nil, nil
	}
	var stats []PeriodStat
	if err := json.Unmarshal(a.StatsByPeriod, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// SetPeriodStats encodes the given ring back into the JSON column.
func (a *Admin) SetPeriodStats(stats []PeriodStat) error {
	b, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	a.StatsByPeriod = datatypes.JSON(b)
	return nil
}

// RecentGames decodes the LastGames JSON column.
func (a *Admin) RecentGames() ([]GameRef, error) {
	if len(a.LastGames) == 0 {
		return nil, nil
	}
	var refs []GameRef
	if err := json.Unmarshal(a.LastGames, &refs); err != nil {
		return nil, err
	}
	return refs, nil
}

// SetRecentGames encodes the given refs back into the JSON column.
func (a *Admin) SetRecentGames(refs []GameRef) error {
	b, err := json.Marshal(refs)
	if err != nil {
		return err
	}
	a.LastGames = datatypes.JSON(b)
	return nil
}
