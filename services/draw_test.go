package services

import (
	"math/rand"
	"sort"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drawCatalog(t *testing.T, count int) *Catalog {
	t.Helper()
	cards := make([]BingoCard, count)
	for i := range cards {
		cards[i] = testCard(i+1, i)
	}
	catalog, err := NewCatalog(cards)
	require.NoError(t, err)
	return catalog
}

func tokenNumber(t *testing.T, token string) int {
	t.Helper()
	n, err := strconv.Atoi(token[1:])
	require.NoError(t, err)
	return n
}

func TestDrawIsPermutationOfActiveNumbers(t *testing.T) {
	catalog := drawCatalog(t, 4)
	active := []int{1, 2, 3, 4}

	union, err := catalog.UnionNumbers(active)
	require.NoError(t, err)

	for seed := int64(0); seed < 10; seed++ {
		rng := rand.New(rand.NewSource(seed))
		result, err := GenerateCalledNumbers(catalog, active, 0, true, rng)
		require.NoError(t, err)

		assert.Len(t, result.Calls, len(union))
		seen := make(map[string]bool)
		var numbers []int
		for _, token := range result.Calls {
			assert.False(t, seen[token], "duplicate call %s", token)
			seen[token] = true
			n := tokenNumber(t, token)
			assert.Equal(t, string(LetterFor(n)), token[:1])
			numbers = append(numbers, n)
		}
		sort.Ints(numbers)
		assert.Equal(t, union, numbers)
	}
}

func TestLuckyCardDominatesFrontSequence(t *testing.T) {
	catalog := drawCatalog(t, 4)

	for seed := int64(0); seed < 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		result, err := GenerateCalledNumbers(catalog, []int{1, 2, 3, 4}, 0, false, rng)
		require.NoError(t, err)

		lucky, ok := catalog.Card(result.LuckyCard)
		require.True(t, ok)
		onLucky := make(map[int]bool)
		for _, n := range lucky.NonFreeNumbers() {
			onLucky[n] = true
		}

		require.GreaterOrEqual(t, len(result.Calls), frontSequenceLen)
		hits := 0
		for _, token := range result.Calls[:frontSequenceLen] {
			if onLucky[tokenNumber(t, token)] {
				hits++
			}
		}
		// 15 priority numbers are guaranteed; front-fill may add more
		assert.GreaterOrEqual(t, hits, priorityCount, "seed %d", seed)
	}
}

func TestConsecutiveDrawsAvoidSameLuckyCard(t *testing.T) {
	catalog := drawCatalog(t, 2)
	active := []int{1, 2}

	for seed := int64(0); seed < 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		first, err := GenerateCalledNumbers(catalog, active, 0, false, rng)
		require.NoError(t, err)
		second, err := GenerateCalledNumbers(catalog, active, first.LuckyCard, false, rng)
		require.NoError(t, err)
		assert.NotEqual(t, first.LuckyCard, second.LuckyCard, "seed %d", seed)
	}
}

func TestSingleCardGameStillPicksLucky(t *testing.T) {
	catalog := drawCatalog(t, 1)
	rng := rand.New(rand.NewSource(3))

	// the exclusion would empty the candidate set; it must be ignored
	result, err := GenerateCalledNumbers(catalog, []int{1}, 1, false, rng)
	require.NoError(t, err)
	assert.Equal(t, 1, result.LuckyCard)
	assert.Len(t, result.Calls, 24)
}

func TestUnshuffledTailIsAscending(t *testing.T) {
	catalog := drawCatalog(t, 4)
	rng := rand.New(rand.NewSource(7))

	result, err := GenerateCalledNumbers(catalog, []int{1, 2, 3, 4}, 0, false, rng)
	require.NoError(t, err)
	require.Greater(t, len(result.Calls), frontSequenceLen)

	tail := result.Calls[frontSequenceLen:]
	for i := 1; i < len(tail); i++ {
		assert.Less(t, tokenNumber(t, tail[i-1]), tokenNumber(t, tail[i]))
	}
}

func TestDrawInputErrors(t *testing.T) {
	catalog := drawCatalog(t, 2)
	rng := rand.New(rand.NewSource(5))

	_, err := GenerateCalledNumbers(catalog, nil, 0, false, rng)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = GenerateCalledNumbers(catalog, []int{1, 42}, 0, false, rng)
	assert.ErrorIs(t, err, ErrNotFound)
}
