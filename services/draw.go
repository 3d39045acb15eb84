package services

import (
	"fmt"
	"math/rand"
)

const (
	frontSequenceLen = 20 // calls biased toward the lucky card
	priorityCount    = 15 // lucky-card numbers guaranteed in the front sequence
)

// DrawResult is one generated call sequence plus the lucky card that was
// favored while building it. LuckyCard feeds the next draw's avoidLucky so
// the same card is not favored twice in a row.
type DrawResult struct {
	Calls     []string
	LuckyCard int
}

// GenerateCalledNumbers builds the full call sequence for one game.
//
// One card is picked as "lucky": 15 of its numbers land somewhere in the
// first 20 calls. The remaining active-card numbers follow in ascending
// order, or Fisher-Yates shuffled when shuffleTail is set. Every distinct
// number on an active card appears exactly once.
//
// avoidLucky excludes the previous lucky card unless it is the only
// candidate; pass 0 for no exclusion.
func GenerateCalledNumbers(catalog *Catalog, activePalettes []int, avoidLucky int, shuffleTail bool, rng *rand.Rand) (*DrawResult, error) {
	if len(activePalettes) == 0 {
		return nil, fmt.Errorf("%w: no active cards", ErrInvalidInput)
	}

	candidates := activePalettes
	if avoidLucky != 0 {
		filtered := make([]int, 0, len(activePalettes))
		for _, p := range activePalettes {
			if p != avoidLucky {
				filtered = append(filtered, p)
			}
		}
		if len(filtered) > 0 {
			candidates = filtered
		}
	}

	luckyPalette := candidates[rng.Intn(len(candidates))]
	luckyCard, ok := catalog.Card(luckyPalette)
	if !ok {
		return nil, fmt.Errorf("%w: card %d", ErrNotFound, luckyPalette)
	}

	luckyNumbers := luckyCard.NonFreeNumbers()
	if len(luckyNumbers) < priorityCount {
		return nil, fmt.Errorf("%w: card %d has only %d numbers", ErrInvalidInput, luckyPalette, len(luckyNumbers))
	}
	rng.Shuffle(len(luckyNumbers), func(i, j int) {
		luckyNumbers[i], luckyNumbers[j] = luckyNumbers[j], luckyNumbers[i]
	})
	priority := luckyNumbers[:priorityCount]
	prioritySet := make(map[int]bool, priorityCount)
	for _, n := range priority {
		prioritySet[n] = true
	}

	union, err := catalog.UnionNumbers(activePalettes)
	if err != nil {
		return nil, err
	}

	// pool = every active-card number that is not a priority number, kept
	// ascending so the unshuffled tail has a defined order
	pool := make([]int, 0, len(union))
	for _, n := range union {
		if !prioritySet[n] {
			pool = append(pool, n)
		}
	}

	// scatter the priority numbers over the 20 front slots, then fill the
	// leftover slots from the pool
	front := make([]string, frontSequenceLen)
	positions := rng.Perm(frontSequenceLen)
	for i, n := range priority {
		front[positions[i]] = Token(n)
	}
	for _, pos := range positions[priorityCount:] {
		if len(pool) == 0 {
			break
		}
		idx := rng.Intn(len(pool))
		front[pos] = Token(pool[idx])
		pool = append(pool[:idx], pool[idx+1:]...)
	}

	calls := make([]string, 0, len(union))
	for _, token := range front {
		if token != "" {
			calls = append(calls, token)
		}
	}

	if shuffleTail {
		for i := len(pool) - 1; i >= 1; i-- {
			j := rng.Intn(i + 1)
			pool[i], pool[j] = pool[j], pool[i]
		}
	}
	for _, n := range pool {
		calls = append(calls, Token(n))
	}

	return &DrawResult{Calls: calls, LuckyCard: luckyPalette}, nil
}
