package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/bellapacxx/bingo-operator/utils/logger"
)

// freeMarker is the literal used for the center cell in cards.json.
const freeMarker = "FREE"

// CardCell is one grid cell: a number in the column's range, or the FREE
// center cell.
type CardCell struct {
	Free   bool
	Number int
}

func (c *CardCell) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte(`"`+freeMarker+`"`)) {
		*c = CardCell{Free: true}
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("card cell must be a number or %q: %w", freeMarker, err)
	}
	*c = CardCell{Number: n}
	return nil
}

func (c CardCell) MarshalJSON() ([]byte, error) {
	if c.Free {
		return json.Marshal(freeMarker)
	}
	return json.Marshal(c.Number)
}

// BingoCard is one immutable catalog card: 5 columns of 5 cells, FREE at the
// center (column N, row 2).
type BingoCard struct {
	CardID int        `json:"card_id"`
	B      []CardCell `json:"B"`
	I      []CardCell `json:"I"`
	N      []CardCell `json:"N"`
	G      []CardCell `json:"G"`
	O      []CardCell `json:"O"`
}

// Columns are always evaluated in B, I, N, G, O order.
var ColumnLetters = [5]byte{'B', 'I', 'N', 'G', 'O'}

// columnRanges holds the inclusive number range per column letter.
var columnRanges = map[byte][2]int{
	'B': {1, 15},
	'I': {16, 30},
	'N': {31, 45},
	'G': {46, 60},
	'O': {61, 75},
}

// Column returns the cells for a column letter.
func (c *BingoCard) Column(letter byte) []CardCell {
	switch letter {
	case 'B':
		return c.B
	case 'I':
		return c.I
	case 'N':
		return c.N
	case 'G':
		return c.G
	case 'O':
		return c.O
	}
	return nil
}

// Cell returns the cell at (column letter, row index 0..4).
func (c *BingoCard) Cell(letter byte, row int) CardCell {
	return c.Column(letter)[row]
}

// NonFreeNumbers returns the card's 24 numbers in column order.
func (c *BingoCard) NonFreeNumbers() []int {
	nums := make([]int, 0, 24)
	for _, letter := range ColumnLetters {
		for _, cell := range c.Column(letter) {
			if !cell.Free {
				nums = append(nums, cell.Number)
			}
		}
	}
	return nums
}

func (c *BingoCard) validate() error {
	freeCount := 0
	for _, letter := range ColumnLetters {
		col := c.Column(letter)
		if len(col) != 5 {
			return fmt.Errorf("card %d: column %c has %d cells, want 5", c.CardID, letter, len(col))
		}
		r := columnRanges[letter]
		for row, cell := range col {
			if cell.Free {
				if letter != 'N' || row != 2 {
					return fmt.Errorf("card %d: FREE cell at %c[%d], only N[2] may be FREE", c.CardID, letter, row)
				}
				freeCount++
				continue
			}
			if cell.Number < r[0] || cell.Number > r[1] {
				return fmt.Errorf("card %d: %c[%d]=%d out of range %d-%d", c.CardID, letter, row, cell.Number, r[0], r[1])
			}
		}
	}
	if freeCount != 1 {
		return fmt.Errorf("card %d: must have exactly one FREE cell at N[2]", c.CardID)
	}
	return nil
}

// Catalog is the immutable card set, loaded once at process start.
type Catalog struct {
	cards map[int]*BingoCard
}

// NewCatalog validates the cards and builds the palette-number index.
func NewCatalog(cards []BingoCard) (*Catalog, error) {
	byPalette := make(map[int]*BingoCard, len(cards))
	for i := range cards {
		card := &cards[i]
		if err := card.validate(); err != nil {
			return nil, err
		}
		if _, dup := byPalette[card.CardID]; dup {
			return nil, fmt.Errorf("duplicate card_id %d", card.CardID)
		}
		byPalette[card.CardID] = card
	}
	return &Catalog{cards: byPalette}, nil
}

// LoadCatalog loads bingo cards from a JSON file
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var cards []BingoCard
	if err := json.Unmarshal(data, &cards); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", path, err)
	}
	catalog, err := NewCatalog(cards)
	if err != nil {
		return nil, err
	}
	logger.Infof("[Init] Loaded %d bingo cards from %s", catalog.Size(), path)
	return catalog, nil
}

// Card looks a card up by palette number.
func (ct *Catalog) Card(palette int) (*BingoCard, bool) {
	card, ok := ct.cards[palette]
	return card, ok
}

// Size returns the number of cards in the catalog.
func (ct *Catalog) Size() int {
	return len(ct.cards)
}

// UnionNumbers returns the distinct numbers across the given cards, ascending.
func (ct *Catalog) UnionNumbers(palettes []int) ([]int, error) {
	seen := make(map[int]bool)
	for _, p := range palettes {
		card, ok := ct.cards[p]
		if !ok {
			return nil, fmt.Errorf("%w: card %d", ErrNotFound, p)
		}
		for _, n := range card.NonFreeNumbers() {
			seen[n] = true
		}
	}
	union := make([]int, 0, len(seen))
	for n := range seen {
		union = append(union, n)
	}
	sort.Ints(union)
	return union, nil
}

// LetterFor returns the bingo column letter for a drawn number.
func LetterFor(n int) byte {
	switch {
	case n <= 15:
		return 'B'
	case n <= 30:
		return 'I'
	case n <= 45:
		return 'N'
	case n <= 60:
		return 'G'
	default:
		return 'O'
	}
}

// Token formats a number as its call token, e.g. 7 -> "B7".
func Token(n int) string {
	return fmt.Sprintf("%c%d", LetterFor(n), n)
}
