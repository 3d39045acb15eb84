package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type GameStatus string

const (
	GameOngoing   GameStatus = "ongoing"
	GameCompleted GameStatus = "completed"
	GameCanceled  GameStatus = "canceled"
)

// Terminal reports whether the status is one of the end states. Status moves
// one way: ongoing -> completed|canceled.
func (s GameStatus) Terminal() bool {
	return s == GameCompleted || s == GameCanceled
}

type Game struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	AdminID uint `gorm:"index;not null" json:"admin_id"`

	BettingAmount    float64 `json:"betting_amount"`
	NumberOfPlayers  int     `json:"number_of_players"`
	ProfitPercentage int     `json:"profit_percentage"`
	PayoutToWinner   float64 `json:"payout_to_winner"`
	Profit           float64 `json:"profit"`
	TotalBetAmount   float64 `json:"total_bet_amount"`

	CalledNumbers datatypes.JSON `gorm:"type:json" json:"called_numbers"` // ordered call tokens, e.g. "B7"
	PlayingCards  datatypes.JSON `gorm:"type:json" json:"playing_cards"`  // active card palette numbers
	Shuffled      bool           `json:"shuffled"`

	Status        GameStatus `gorm:"index;default:ongoing" json:"status"`
	WalletDebited bool       `json:"wallet_debited"` // false when the unlimited wallet covered the start

	WinningCardNumbers datatypes.JSON `gorm:"type:json" json:"winning_card_numbers"`
	TotalCallsToWin    *int           `json:"total_calls_to_win,omitempty"`

	IdempotencyKey string `gorm:"uniqueIndex;size:64" json:"idempotency_key"`

	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CalledTokens decodes the stored call sequence.
func (g *Game) CalledTokens() ([]string, error) {
	if len(g.CalledNumbers) == 0 {
		return nil, nil
	}
	var tokens []string
	if err := json.Unmarshal(g.CalledNumbers, &tokens); err != nil {
		return nil, err
	}
	return tokens, nil
}

// SetCalledTokens encodes the call sequence into the JSON column.
func (g *Game) SetCalledTokens(tokens []string) error {
	b, err := json.Marshal(tokens)
	if err != nil {
		return err
	}
	g.CalledNumbers = datatypes.JSON(b)
	return nil
}

// SetPlayingCards encodes the active palette numbers into the JSON column.
func (g *Game) SetPlayingCards(palettes []int) error {
	b, err := json.Marshal(palettes)
	if err != nil {
		return err
	}
	g.PlayingCards = datatypes.JSON(b)
	return nil
}
