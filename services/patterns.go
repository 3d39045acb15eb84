package services

import (
	"fmt"
	"strings"
)

// Winning pattern names, as they appear on the wire. Case-sensitive.
const (
	PatternAll               = "All"
	PatternFullHouse         = "FullHouse"
	PatternLShape            = "LShape"
	PatternBothDiagonal      = "BothDiagonal"
	PatternOneDiagonal       = "OneDiagonal"
	PatternOneColumn         = "OneColumn"
	PatternOneRow            = "OneRow"
	PatternCorner            = "Corner"
	PatternSurroundingCenter = "SurroundingCenter"
)

// Diagonal names reported alongside a OneDiagonal match.
const (
	DiagonalFirst  = "first"  // B0, I1, N2, G3, O4
	DiagonalSecond = "second" // O0, G1, N2, I3, B4
)

// WinResult is the outcome of one claim verification.
type WinResult struct {
	IsWinner        bool     `json:"isWinner"`
	WinningPatterns []string `json:"winningPatterns"`
	WinningDiagonal string   `json:"winningDiagonal,omitempty"`
}

// cardMarks wraps a card and the called-token set with the covered
// predicate: a cell counts if it is FREE or its token was called.
type cardMarks struct {
	card   *BingoCard
	called map[string]bool
}

func newCardMarks(card *BingoCard, calledTokens []string) *cardMarks {
	called := make(map[string]bool, len(calledTokens))
	for _, t := range calledTokens {
		called[t] = true
	}
	return &cardMarks{card: card, called: called}
}

func (m *cardMarks) covered(letter byte, row int) bool {
	cell := m.card.Cell(letter, row)
	if cell.Free {
		return true
	}
	return m.called[fmt.Sprintf("%c%d", letter, cell.Number)]
}

func (m *cardMarks) columnCovered(letter byte) bool {
	for row := 0; row < 5; row++ {
		if !m.covered(letter, row) {
			return false
		}
	}
	return true
}

func (m *cardMarks) rowCovered(row int) bool {
	for _, letter := range ColumnLetters {
		if !m.covered(letter, row) {
			return false
		}
	}
	return true
}

func (m *cardMarks) fullHouse() bool {
	for _, letter := range ColumnLetters {
		if !m.columnCovered(letter) {
			return false
		}
	}
	return true
}

// lShape is the whole B column plus the whole bottom row.
func (m *cardMarks) lShape() bool {
	return m.columnCovered('B') && m.rowCovered(4)
}

func (m *cardMarks) firstDiagonal() bool {
	for i, letter := range ColumnLetters {
		if !m.covered(letter, i) {
			return false
		}
	}
	return true
}

func (m *cardMarks) secondDiagonal() bool {
	for i, letter := range ColumnLetters {
		if !m.covered(letter, 4-i) {
			return false
		}
	}
	return true
}

// oneDiagonal reports a match and which diagonal; "first" wins when both hit.
func (m *cardMarks) oneDiagonal() (bool, string) {
	if m.firstDiagonal() {
		return true, DiagonalFirst
	}
	if m.secondDiagonal() {
		return true, DiagonalSecond
	}
	return false, ""
}

func (m *cardMarks) oneColumn() bool {
	for _, letter := range ColumnLetters {
		if m.columnCovered(letter) {
			return true
		}
	}
	return false
}

func (m *cardMarks) oneRow() bool {
	for row := 0; row < 5; row++ {
		if m.rowCovered(row) {
			return true
		}
	}
	return false
}

func (m *cardMarks) corners() bool {
	return m.covered('B', 0) && m.covered('B', 4) && m.covered('O', 0) && m.covered('O', 4)
}

func (m *cardMarks) surroundingCenter() bool {
	return m.covered('I', 1) && m.covered('I', 3) && m.covered('G', 1) && m.covered('G', 3)
}

// evaluate runs one named pattern. The bool result is the match; diagonal is
// set only for OneDiagonal.
func (m *cardMarks) evaluate(pattern string) (bool, string, error) {
	switch pattern {
	case PatternFullHouse:
		return m.fullHouse(), "", nil
	case PatternLShape:
		return m.lShape(), "", nil
	case PatternBothDiagonal:
		return m.firstDiagonal() && m.secondDiagonal(), "", nil
	case PatternOneDiagonal:
		ok, diag := m.oneDiagonal()
		return ok, diag, nil
	case PatternOneColumn:
		return m.oneColumn(), "", nil
	case PatternOneRow:
		return m.oneRow(), "", nil
	case PatternCorner:
		return m.corners(), "", nil
	case PatternSurroundingCenter:
		return m.surroundingCenter(), "", nil
	default:
		return false, "", fmt.Errorf("%w: %q", ErrUnknownPattern, pattern)
	}
}

// allPatterns is the evaluation order used by the All pattern.
var allPatterns = []string{
	PatternOneColumn,
	PatternOneRow,
	PatternOneDiagonal,
	PatternCorner,
	PatternSurroundingCenter,
	PatternFullHouse,
	PatternLShape,
	PatternBothDiagonal,
}

// VerifyPattern checks a card against a pattern spec given the called
// tokens. The spec is a single pattern name or several joined with "+"; the
// claim wins if any one term matches, and the result lists every term that
// individually matched. Unknown pattern names reject the whole claim with
// ErrUnknownPattern. Pure function, safe for concurrent use.
func VerifyPattern(card *BingoCard, calledTokens []string, patternSpec string) (*WinResult, error) {
	terms := strings.Split(patternSpec, "+")
	for _, term := range terms {
		if !knownPattern(term) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPattern, term)
		}
	}

	marks := newCardMarks(card, calledTokens)
	result := &WinResult{WinningPatterns: []string{}}
	seen := make(map[string]bool)

	addMatch := func(name, diagonal string) {
		result.IsWinner = true
		if !seen[name] {
			seen[name] = true
			result.WinningPatterns = append(result.WinningPatterns, name)
		}
		if diagonal != "" && result.WinningDiagonal == "" {
			result.WinningDiagonal = diagonal
		}
	}

	for _, term := range terms {
		if term == PatternAll {
			for _, name := range allPatterns {
				matched, diagonal, err := marks.evaluate(name)
				if err != nil {
					return nil, err
				}
				if matched {
					addMatch(name, diagonal)
				}
			}
			continue
		}
		matched, diagonal, err := marks.evaluate(term)
		if err != nil {
			return nil, err
		}
		if matched {
			addMatch(term, diagonal)
		}
	}

	return result, nil
}

// knownPattern reports whether a name is part of the pattern vocabulary.
func knownPattern(pattern string) bool {
	switch pattern {
	case PatternAll, PatternFullHouse, PatternLShape, PatternBothDiagonal,
		PatternOneDiagonal, PatternOneColumn, PatternOneRow, PatternCorner,
		PatternSurroundingCenter:
		return true
	}
	return false
}
