package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bellapacxx/bingo-operator/models"
	"github.com/bellapacxx/bingo-operator/utils/logger"
)

const (
	minBettingAmount   = 10
	minPlayers         = 3
	lowWalletThreshold = 30
	periodStatsLimit   = 30 // most-recent day entries kept on the admin
	recentGamesLimit   = 10
)

// allowedProfitPercentages is the closed set of house cuts.
var allowedProfitPercentages = map[int]bool{20: true, 25: true, 30: true, 35: true, 40: true}

// Settlement owns the economic lifecycle of games: it debits the house
// profit up front, creates the game with its call sequence embedded, judges
// claims against the catalog, and reconciles the admin ledger on end/cancel.
//
// All wallet / ongoingProfit / period-stat mutations for one admin are
// serialized through a per-admin mutex; the lucky-card anti-repeat state is
// scoped per admin and guarded by the same lock.
type Settlement struct {
	db      *gorm.DB
	catalog *Catalog
	hub     *EventHub // optional

	mu         sync.Mutex
	adminLocks map[uint]*sync.Mutex
	lastLucky  map[uint]int

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewSettlement builds the engine. hub may be nil when no event feed is
// wanted (tests, migrations).
func NewSettlement(db *gorm.DB, catalog *Catalog, hub *EventHub) *Settlement {
	return &Settlement{
		db:         db,
		catalog:    catalog,
		hub:        hub,
		adminLocks: make(map[uint]*sync.Mutex),
		lastLucky:  make(map[uint]int),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// lockAdmin returns the mutex serializing ledger mutations for one admin.
func (s *Settlement) lockAdmin(adminID uint) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.adminLocks[adminID]
	if !ok {
		lock = &sync.Mutex{}
		s.adminLocks[adminID] = lock
	}
	return lock
}

// lastLuckyFor reads one admin's anti-repeat lucky card; 0 means none yet.
func (s *Settlement) lastLuckyFor(adminID uint) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastLucky[adminID]
}

func (s *Settlement) setLastLucky(adminID uint, palette int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastLucky[adminID] = palette
}

// draw runs the generator under the shared rng lock.
func (s *Settlement) draw(activePalettes []int, avoidLucky int, shuffleTail bool) (*DrawResult, error) {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return GenerateCalledNumbers(s.catalog, activePalettes, avoidLucky, shuffleTail, s.rng)
}

// ComputeProfit is the house cut taken up front.
func ComputeProfit(bettingAmount float64, numberOfPlayers, profitPercentage int) float64 {
	totalBet := bettingAmount * float64(numberOfPlayers)
	return totalBet * float64(profitPercentage) / 100
}

// CalculatePayout is what the winner receives: the pot minus the house cut.
func CalculatePayout(bettingAmount float64, numberOfPlayers, profitPercentage int) float64 {
	totalBet := bettingAmount * float64(numberOfPlayers)
	return totalBet - ComputeProfit(bettingAmount, numberOfPlayers, profitPercentage)
}

// StartGameRequest carries the operator's start parameters. NumberOfPlayers
// is the count of selected cards.
type StartGameRequest struct {
	BettingAmount      float64 `json:"bettingAmount" binding:"required"`
	CardPaletteNumbers []int   `json:"cardPaletteNumbers" binding:"required"`
	ProfitPercentage   int     `json:"profitPercentage" binding:"required"`
	Shuffle            bool    `json:"shuffle"`
	CallSpeed          int     `json:"callSpeed"` // echoed back to the caller board, not used here
	IdempotencyKey     string  `json:"idempotencyKey"`
}

// StartGameResult is the created (or replayed) game plus the low-wallet
// advisory, empty when the balance is fine.
type StartGameResult struct {
	Game    *models.Game
	Warning string
}

func validateStart(req *StartGameRequest) error {
	if len(req.CardPaletteNumbers) == 0 {
		return fmt.Errorf("%w: cardPaletteNumbers must not be empty", ErrInvalidInput)
	}
	if req.BettingAmount < minBettingAmount {
		return fmt.Errorf("%w: bettingAmount must be at least %d", ErrInvalidInput, minBettingAmount)
	}
	if len(req.CardPaletteNumbers) < minPlayers {
		return fmt.Errorf("%w: at least %d players required", ErrInvalidInput, minPlayers)
	}
	if !allowedProfitPercentages[req.ProfitPercentage] {
		return fmt.Errorf("%w: profitPercentage must be one of 20, 25, 30, 35, 40", ErrInvalidInput)
	}
	return nil
}

// applyStartDebit checks funds and debits the admin for one game start.
// No-op when the unlimited wallet window is active. Returns whether the
// wallet was actually debited.
func applyStartDebit(admin *models.Admin, profit float64, unlimited bool) (bool, error) {
	if unlimited {
		return false, nil
	}
	if admin.Wallet < profit {
		return false, ErrInsufficientFunds
	}
	admin.Wallet -= profit
	admin.OngoingProfit += profit
	return true, nil
}

// upsertPeriodStats adds profit to the entry for the given day (creating it
// if absent), then re-sorts descending by date and truncates the ring.
func upsertPeriodStats(stats []models.PeriodStat, day time.Time, profit float64) []models.PeriodStat {
	day = utcDay(day)
	found := false
	for i := range stats {
		if utcDay(stats[i].Date).Equal(day) {
			stats[i].Profit += profit
			found = true
			break
		}
	}
	if !found {
		stats = append(stats, models.PeriodStat{Date: day, Profit: profit})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Date.After(stats[j].Date) })
	if len(stats) > periodStatsLimit {
		stats = stats[:periodStatsLimit]
	}
	return stats
}

// pushRecentGame prepends a game ref and truncates the ring.
func pushRecentGame(refs []models.GameRef, gameID uint, at time.Time) []models.GameRef {
	refs = append([]models.GameRef{{GameID: gameID, Date: at}}, refs...)
	if len(refs) > recentGamesLimit {
		refs = refs[:recentGamesLimit]
	}
	return refs
}

// utcDay truncates a time to its UTC midnight.
func utcDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// StartGame validates, settles the house profit, draws the call sequence and
// creates the game. Everything runs in one transaction under the admin's
// lock; a failed precondition leaves no mutation behind. A replayed
// idempotency key returns the already-created game without a second debit.
func (s *Settlement) StartGame(ctx context.Context, adminID uint, req *StartGameRequest) (*StartGameResult, error) {
	if err := validateStart(req); err != nil {
		return nil, err
	}

	lock := s.lockAdmin(adminID)
	lock.Lock()
	defer lock.Unlock()

	if req.IdempotencyKey != "" {
		var existing models.Game
		err := s.db.WithContext(ctx).
			Where("idempotency_key = ?", req.IdempotencyKey).
			First(&existing).Error
		if err == nil {
			logger.Infof("[Game] replayed idempotency key %s -> game %d", req.IdempotencyKey, existing.ID)
			return &StartGameResult{Game: &existing}, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	key := req.IdempotencyKey
	if key == "" {
		key = uuid.NewString()
	}

	now := time.Now()
	numberOfPlayers := len(req.CardPaletteNumbers)
	profit := ComputeProfit(req.BettingAmount, numberOfPlayers, req.ProfitPercentage)
	payout := CalculatePayout(req.BettingAmount, numberOfPlayers, req.ProfitPercentage)
	totalBet := req.BettingAmount * float64(numberOfPlayers)

	var game models.Game
	var admin models.Admin
	var drawn *DrawResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&admin, adminID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: admin %d", ErrNotFound, adminID)
			}
			return err
		}
		if admin.IsSuspended {
			return ErrSuspended
		}

		unlimited := admin.UnlimitedWalletActiveAt(now)
		debited, err := applyStartDebit(&admin, profit, unlimited)
		if err != nil {
			return err
		}

		drawn, err = s.draw(req.CardPaletteNumbers, s.lastLuckyFor(adminID), req.Shuffle)
		if err != nil {
			return err
		}

		admin.Lifetime.TotalProfit += profit
		admin.Lifetime.TotalBetAmount += totalBet
		admin.Lifetime.TotalGames++
		if err := tx.Save(&admin).Error; err != nil {
			return err
		}

		game = models.Game{
			AdminID:          adminID,
			BettingAmount:    req.BettingAmount,
			NumberOfPlayers:  numberOfPlayers,
			ProfitPercentage: req.ProfitPercentage,
			PayoutToWinner:   payout,
			Profit:           profit,
			TotalBetAmount:   totalBet,
			Shuffled:         req.Shuffle,
			Status:           models.GameOngoing,
			WalletDebited:    debited,
			IdempotencyKey:   key,
			CreatedAt:        now,
		}
		if err := game.SetCalledTokens(drawn.Calls); err != nil {
			return err
		}
		if err := game.SetPlayingCards(req.CardPaletteNumbers); err != nil {
			return err
		}
		if err := tx.Create(&game).Error; err != nil {
			return err
		}

		// day-bucketed counters: atomic upsert so concurrent starts can't
		// lose an increment
		stat := models.Stat{
			AdminID:     adminID,
			Date:        utcDay(now),
			Profit:      profit,
			BetAmount:   totalBet,
			GamesPlayed: 1,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "admin_id"}, {Name: "date"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"profit":       gorm.Expr("stats.profit + EXCLUDED.profit"),
				"bet_amount":   gorm.Expr("stats.bet_amount + EXCLUDED.bet_amount"),
				"games_played": gorm.Expr("stats.games_played + EXCLUDED.games_played"),
			}),
		}).Create(&stat).Error; err != nil {
			return err
		}

		// bonus side counter, only bumped while a window is active
		return tx.Model(&models.Bonus{}).
			Where("admin_id = ? AND active = ? AND start_date <= ? AND end_date >= ?", adminID, true, now, now).
			Update("games_played", gorm.Expr("games_played + 1")).Error
	})
	if err != nil {
		return nil, err
	}

	s.setLastLucky(adminID, drawn.LuckyCard)

	warning := ""
	if !admin.UnlimitedWalletActiveAt(now) && admin.Wallet < lowWalletThreshold {
		warning = "Your wallet balance is low. Please add funds soon."
	}

	logger.Infof("[Game %d] started by admin %d: players=%d bet=%.2f profit=%.2f payout=%.2f",
		game.ID, adminID, numberOfPlayers, req.BettingAmount, profit, payout)
	s.publish(EventGameStarted, &game)

	return &StartGameResult{Game: &game, Warning: warning}, nil
}

// applyEndReconcile flips the game to completed and reverses the admin's
// ongoing exposure. Fails with ErrAlreadyTerminal when the game is not
// ongoing, without touching the admin.
func applyEndReconcile(admin *models.Admin, game *models.Game, now time.Time) error {
	if game.Status.Terminal() {
		return fmt.Errorf("%w: game %d is %s", ErrAlreadyTerminal, game.ID, game.Status)
	}
	game.Status = models.GameCompleted
	game.CompletedAt = &now
	admin.OngoingProfit -= game.Profit
	return nil
}

// EndGame completes an ongoing game and reconciles the admin ledger: the
// ongoing profit drops, the game's creation day gets its profit booked into
// the period ring. Status flip and reconciliation are one transaction.
func (s *Settlement) EndGame(ctx context.Context, gameID uint) error {
	game, err := s.getGame(ctx, gameID)
	if err != nil {
		return err
	}

	lock := s.lockAdmin(game.AdminID)
	lock.Lock()
	defer lock.Unlock()

	now := time.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var fresh models.Game
		if err := tx.First(&fresh, gameID).Error; err != nil {
			return err
		}
		var admin models.Admin
		if err := tx.First(&admin, fresh.AdminID).Error; err != nil {
			return err
		}

		if err := applyEndReconcile(&admin, &fresh, now); err != nil {
			return err
		}

		stats, err := admin.PeriodStats()
		if err != nil {
			return err
		}
		if err := admin.SetPeriodStats(upsertPeriodStats(stats, fresh.CreatedAt, fresh.Profit)); err != nil {
			return err
		}

		refs, err := admin.RecentGames()
		if err != nil {
			return err
		}
		if err := admin.SetRecentGames(pushRecentGame(refs, fresh.ID, now)); err != nil {
			return err
		}

		if err := tx.Save(&fresh).Error; err != nil {
			return err
		}
		game = &fresh
		return tx.Save(&admin).Error
	})
	if err != nil {
		return err
	}

	logger.Infof("[Game %d] ended, profit %.2f reconciled for admin %d", gameID, game.Profit, game.AdminID)
	s.publish(EventGameEnded, game)
	return nil
}

// CancelGame voids an ongoing game: the up-front profit debit is refunded
// when one was taken. Day and lifetime counters are monotone and stay.
func (s *Settlement) CancelGame(ctx context.Context, gameID uint) error {
	game, err := s.getGame(ctx, gameID)
	if err != nil {
		return err
	}

	lock := s.lockAdmin(game.AdminID)
	lock.Lock()
	defer lock.Unlock()

	now := time.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var fresh models.Game
		if err := tx.First(&fresh, gameID).Error; err != nil {
			return err
		}
		if fresh.Status.Terminal() {
			return fmt.Errorf("%w: game %d is %s", ErrAlreadyTerminal, fresh.ID, fresh.Status)
		}
		var admin models.Admin
		if err := tx.First(&admin, fresh.AdminID).Error; err != nil {
			return err
		}

		fresh.Status = models.GameCanceled
		fresh.CompletedAt = &now
		if fresh.WalletDebited {
			admin.Wallet += fresh.Profit
			admin.OngoingProfit -= fresh.Profit
		}

		if err := tx.Save(&fresh).Error; err != nil {
			return err
		}
		game = &fresh
		return tx.Save(&admin).Error
	})
	if err != nil {
		return err
	}

	logger.Infof("[Game %d] canceled, refund=%v", gameID, game.WalletDebited)
	s.publish(EventGameCanceled, game)
	return nil
}

// RecordWinner stores post-hoc annotations on the game. No economic effect.
// The write touches only the annotation columns: a full-row save could race
// a concurrent end/cancel and resurrect an already-terminal game.
func (s *Settlement) RecordWinner(ctx context.Context, gameID uint, winningCardNumbers []int, totalCallsToWin int) error {
	if _, err := s.getGame(ctx, gameID); err != nil {
		return err
	}
	updates, err := recordWinnerUpdates(winningCardNumbers, totalCallsToWin)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(&models.Game{}).
		Where("id = ?", gameID).
		Updates(updates).Error
}

// recordWinnerUpdates builds the column set RecordWinner is allowed to write.
func recordWinnerUpdates(winningCardNumbers []int, totalCallsToWin int) (map[string]interface{}, error) {
	b, err := json.Marshal(winningCardNumbers)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"winning_card_numbers": datatypes.JSON(b),
		"total_calls_to_win":   totalCallsToWin,
	}, nil
}

// VerifyClaim judges one win claim. The supplied called numbers must be a
// prefix of the game's stored authoritative sequence (an empty list means
// the full stored sequence); the card may be any catalog card, not only one
// of the game's active set.
func (s *Settlement) VerifyClaim(ctx context.Context, gameID uint, cardNumber int, calledNumbers []string, patternSpec string) (*WinResult, error) {
	game, err := s.getGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	card, ok := s.catalog.Card(cardNumber)
	if !ok {
		return nil, fmt.Errorf("%w: card %d", ErrNotFound, cardNumber)
	}

	stored, err := game.CalledTokens()
	if err != nil {
		return nil, err
	}
	if len(calledNumbers) == 0 {
		calledNumbers = stored
	} else if !isCallPrefix(calledNumbers, stored) {
		return nil, fmt.Errorf("%w: calledNumbers is not a prefix of the game's call sequence", ErrInvalidInput)
	}

	return VerifyPattern(card, calledNumbers, patternSpec)
}

// isCallPrefix reports whether sub is an exact prefix of full.
func isCallPrefix(sub, full []string) bool {
	if len(sub) > len(full) {
		return false
	}
	for i, t := range sub {
		if full[i] != t {
			return false
		}
	}
	return true
}

func (s *Settlement) getGame(ctx context.Context, gameID uint) (*models.Game, error) {
	var game models.Game
	if err := s.db.WithContext(ctx).First(&game, gameID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: game %d", ErrNotFound, gameID)
		}
		return nil, err
	}
	return &game, nil
}

func (s *Settlement) publish(eventType string, game *models.Game) {
	if s.hub == nil {
		return
	}
	s.hub.Broadcast(GameEvent{
		Type:    eventType,
		GameID:  game.ID,
		AdminID: game.AdminID,
		At:      time.Now(),
	})
}
