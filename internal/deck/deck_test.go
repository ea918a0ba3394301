package deck

import "testing"

func TestShuffleDeterministic(t *testing.T) {
	first := Shuffle(42)
	second := Shuffle(42)
	if len(first) != 52 || len(second) != 52 {
		t.Fatalf("expected 52 cards, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("same seed produced different decks at index %d", i)
		}
	}
	other := Shuffle(43)
	same := true
	for i := range first {
		if first[i] != other[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("different seeds produced identical decks")
	}
}

func TestDealPartitionsWholeDeck(t *testing.T) {
	cards := Shuffle(7)
	hands, rows, undealt, err := Deal(cards, 4, PyramidSchedule(4))
	if err != nil {
		t.Fatalf("deal: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	for i, row := range rows {
		if len(row.Cards) != i+1 {
			t.Fatalf("row %d has %d cards, want %d", i, len(row.Cards), i+1)
		}
		if row.Revealed {
			t.Fatalf("row %d dealt revealed", i)
		}
	}
	seen := map[Card]int{}
	total := 0
	for _, hand := range hands {
		if len(hand) != 10 {
			t.Fatalf("expected 10 cards per hand, got %d", len(hand))
		}
		for _, card := range hand {
			seen[card]++
			total++
		}
	}
	for _, row := range rows {
		for _, card := range row.Cards {
			seen[card]++
			total++
		}
	}
	for _, card := range undealt {
		seen[card]++
		total++
	}
	if total != 52 {
		t.Fatalf("deal covers %d cards, want 52", total)
	}
	for card, count := range seen {
		if count != 1 {
			t.Fatalf("card %v dealt %d times", card, count)
		}
	}
}

func TestDealInsufficientCards(t *testing.T) {
	cards := Shuffle(1)
	if _, _, _, err := Deal(cards, 50, PyramidSchedule(4)); err != ErrInsufficientCards {
		t.Fatalf("expected ErrInsufficientCards, got %v", err)
	}
	if _, _, _, err := Deal(cards, 0, PyramidSchedule(4)); err != ErrInsufficientCards {
		t.Fatalf("expected ErrInsufficientCards for zero players, got %v", err)
	}
}

func TestDiamondSchedule(t *testing.T) {
	sizes := DiamondSchedule(3)
	want := []int{1, 2, 3, 2, 1}
	if len(sizes) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(sizes))
	}
	for i := range want {
		if sizes[i] != want[i] {
			t.Fatalf("row %d size %d, want %d", i, sizes[i], want[i])
		}
	}
}

func TestRankNames(t *testing.T) {
	cases := map[int]string{2: "2", 10: "10", RankJack: "Jack", RankQueen: "Queen", RankKing: "King", RankAce: "Ace"}
	for rank, want := range cases {
		if got := Name(rank); got != want {
			t.Fatalf("Name(%d) = %q, want %q", rank, got, want)
		}
	}
}
