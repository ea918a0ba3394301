package deck

import (
	"errors"
	"math/rand"
)

// Suit is one of the four French suits.
type Suit string

const (
	SuitClubs    Suit = "clubs"
	SuitDiamonds Suit = "diamonds"
	SuitHearts   Suit = "hearts"
	SuitSpades   Suit = "spades"
)

// Card rank runs 2-14; 11-14 are Jack, Queen, King, Ace.
const (
	RankJack  = 11
	RankQueen = 12
	RankKing  = 13
	RankAce   = 14
)

// Card is an immutable rank/suit value.
type Card struct {
	Rank int  `json:"rank"`
	Suit Suit `json:"suit"`
}

// Row is a positioned group of face-down cards revealed as a unit.
type Row struct {
	Cards    []Card
	Revealed bool
}

// ErrInsufficientCards is returned when a deal cannot give every player
// at least one card after the layout is taken.
var ErrInsufficientCards = errors.New("not enough cards for this layout and player count")

var suits = []Suit{SuitClubs, SuitDiamonds, SuitHearts, SuitSpades}

// Build returns the 52 cards of a standard deck in fixed order.
func Build() []Card {
	cards := make([]Card, 0, 52)
	for _, suit := range suits {
		for rank := 2; rank <= RankAce; rank++ {
			cards = append(cards, Card{Rank: rank, Suit: suit})
		}
	}
	return cards
}

// Shuffle returns a seeded permutation of a fresh deck. The same seed
// always yields the same order.
func Shuffle(seed int64) []Card {
	cards := Build()
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
	return cards
}

// PyramidSchedule is the row-size layout for the phase-1 pyramid,
// bottom row first: 1, 2, ..., height.
func PyramidSchedule(height int) []int {
	if height <= 0 {
		return nil
	}
	sizes := make([]int, height)
	for i := range sizes {
		sizes[i] = i + 1
	}
	return sizes
}

// DiamondSchedule is the row-size layout for the phase-3 diamond:
// 1, 2, ..., peak, ..., 2, 1.
func DiamondSchedule(peak int) []int {
	if peak <= 0 {
		return nil
	}
	sizes := make([]int, 0, 2*peak-1)
	for i := 1; i <= peak; i++ {
		sizes = append(sizes, i)
	}
	for i := peak - 1; i >= 1; i-- {
		sizes = append(sizes, i)
	}
	return sizes
}

// Deal partitions a shuffled deck into layout rows and evenly sized
// player hands. Layout rows are taken from the top, then the remainder
// is split evenly across players; leftover cards stay undealt. The
// union of rows, hands and the leftover is exactly the input deck.
func Deal(cards []Card, playerCount int, schedule []int) (hands [][]Card, rows []Row, undealt []Card, err error) {
	if playerCount <= 0 {
		return nil, nil, nil, ErrInsufficientCards
	}
	layoutTotal := 0
	for _, size := range schedule {
		layoutTotal += size
	}
	if layoutTotal >= len(cards) {
		return nil, nil, nil, ErrInsufficientCards
	}
	remaining := len(cards) - layoutTotal
	handSize := remaining / playerCount
	if handSize < 1 {
		return nil, nil, nil, ErrInsufficientCards
	}

	idx := 0
	rows = make([]Row, 0, len(schedule))
	for _, size := range schedule {
		rows = append(rows, Row{Cards: append([]Card(nil), cards[idx:idx+size]...)})
		idx += size
	}
	hands = make([][]Card, playerCount)
	for p := 0; p < playerCount; p++ {
		hands[p] = append([]Card(nil), cards[idx:idx+handSize]...)
		idx += handSize
	}
	undealt = append([]Card(nil), cards[idx:]...)
	return hands, rows, undealt, nil
}

// Name returns the display name of a rank.
func Name(rank int) string {
	switch rank {
	case RankJack:
		return "Jack"
	case RankQueen:
		return "Queen"
	case RankKing:
		return "King"
	case RankAce:
		return "Ace"
	default:
		if rank < 2 || rank > 10 {
			return "?"
		}
		digits := []string{"2", "3", "4", "5", "6", "7", "8", "9", "10"}
		return digits[rank-2]
	}
}
