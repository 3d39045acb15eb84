package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func verify(t *testing.T, card *BingoCard, calls []string, spec string) *WinResult {
	t.Helper()
	result, err := VerifyPattern(card, calls, spec)
	require.NoError(t, err)
	return result
}

func TestFullCardScenario(t *testing.T) {
	card := testCard(1, 0)
	calls := allTokens(&card)

	assert.True(t, verify(t, &card, calls, PatternFullHouse).IsWinner)
	assert.True(t, verify(t, &card, calls, PatternCorner).IsWinner)
	assert.True(t, verify(t, &card, calls, PatternOneRow).IsWinner)
	assert.True(t, verify(t, &card, calls, PatternLShape).IsWinner)
	assert.True(t, verify(t, &card, calls, PatternBothDiagonal).IsWinner)
	assert.True(t, verify(t, &card, calls, PatternSurroundingCenter).IsWinner)
	assert.True(t, verify(t, &card, calls, PatternOneColumn).IsWinner)

	// both diagonals covered: "first" must be the reported side
	diag := verify(t, &card, calls, PatternOneDiagonal)
	assert.True(t, diag.IsWinner)
	assert.Equal(t, DiagonalFirst, diag.WinningDiagonal)
}

func TestEveryRowMatchesOneRow(t *testing.T) {
	card := testCard(1, 0)
	for row := 0; row < 5; row++ {
		var calls []string
		for _, letter := range ColumnLetters {
			cell := card.Cell(letter, row)
			if !cell.Free {
				calls = append(calls, Token(cell.Number))
			}
		}
		assert.True(t, verify(t, &card, calls, PatternOneRow).IsWinner, "row %d", row)
	}
}

func TestFreeCellCoveredUnconditionally(t *testing.T) {
	card := testCard(1, 0)

	// first diagonal minus the center: B1, I17, G49, O65 — the FREE cell
	// completes it with no call at all
	calls := []string{"B1", "I17", "G49", "O65"}
	result := verify(t, &card, calls, PatternOneDiagonal)
	assert.True(t, result.IsWinner)
	assert.Equal(t, DiagonalFirst, result.WinningDiagonal)

	// no calls at all: nothing but the FREE cell is covered
	empty := verify(t, &card, nil, PatternFullHouse)
	assert.False(t, empty.IsWinner)
}

func TestSecondDiagonal(t *testing.T) {
	card := testCard(1, 0)

	// O0, G1, N2(FREE), I3, B4
	calls := []string{"O61", "G47", "I19", "B5"}
	result := verify(t, &card, calls, PatternOneDiagonal)
	assert.True(t, result.IsWinner)
	assert.Equal(t, DiagonalSecond, result.WinningDiagonal)

	both := verify(t, &card, calls, PatternBothDiagonal)
	assert.False(t, both.IsWinner)
}

func TestLShape(t *testing.T) {
	card := testCard(1, 0)

	// entire B column plus entire bottom row
	calls := []string{"B1", "B2", "B3", "B4", "B5", "I20", "N34", "G50", "O65"}
	assert.True(t, verify(t, &card, calls, PatternLShape).IsWinner)

	// missing one bottom-row cell
	assert.False(t, verify(t, &card, calls[:len(calls)-1], PatternLShape).IsWinner)
}

func TestCornerAndSurroundingCenter(t *testing.T) {
	card := testCard(1, 0)

	corners := []string{"B1", "B5", "O61", "O65"}
	assert.True(t, verify(t, &card, corners, PatternCorner).IsWinner)
	assert.False(t, verify(t, &card, corners, PatternSurroundingCenter).IsWinner)

	center := []string{"I17", "I19", "G47", "G49"}
	assert.True(t, verify(t, &card, center, PatternSurroundingCenter).IsWinner)
	assert.False(t, verify(t, &card, center, PatternCorner).IsWinner)
}

func TestAllEqualsUnionOfIndividualPatterns(t *testing.T) {
	card := testCard(1, 0)

	// row 0 plus the other two corners: matches OneRow and Corner
	calls := []string{"B1", "I16", "N31", "G46", "O61", "B5", "O65"}

	all := verify(t, &card, calls, PatternAll)
	require.True(t, all.IsWinner)

	var individual []string
	for _, name := range allPatterns {
		if verify(t, &card, calls, name).IsWinner {
			individual = append(individual, name)
		}
	}
	assert.ElementsMatch(t, individual, all.WinningPatterns)
	assert.Contains(t, all.WinningPatterns, PatternOneRow)
	assert.Contains(t, all.WinningPatterns, PatternCorner)
	assert.NotContains(t, all.WinningPatterns, PatternFullHouse)
}

func TestCombinedPatternSpec(t *testing.T) {
	card := testCard(1, 0)
	corners := []string{"B1", "B5", "O61", "O65"}

	// any one matching term wins the claim; only matching terms are reported
	result := verify(t, &card, corners, "Corner+OneRow")
	assert.True(t, result.IsWinner)
	assert.Equal(t, []string{PatternCorner}, result.WinningPatterns)

	miss := verify(t, &card, corners, "OneRow+OneColumn")
	assert.False(t, miss.IsWinner)
	assert.Empty(t, miss.WinningPatterns)
}

func TestUnknownPatternRejected(t *testing.T) {
	card := testCard(1, 0)
	calls := allTokens(&card)

	_, err := VerifyPattern(&card, calls, "Blackout")
	assert.ErrorIs(t, err, ErrUnknownPattern)

	// a typo in any term rejects the whole claim, even when another term matches
	_, err = VerifyPattern(&card, calls, "Corner+Bogus")
	assert.ErrorIs(t, err, ErrUnknownPattern)

	// case-sensitive vocabulary
	_, err = VerifyPattern(&card, calls, "fullhouse")
	assert.ErrorIs(t, err, ErrUnknownPattern)
}
