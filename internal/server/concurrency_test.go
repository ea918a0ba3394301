package server

import (
	"sync"
	"testing"
)

// Two racing submissions for the same card resolve to exactly one
// success; the loser observes already_acted, never a double count.
func TestConcurrentLaySingleWinner(t *testing.T) {
	cfg := testConfig()
	store := NewStore(10)
	game := store.CreateGame(1)
	seeded := pyramidGame()
	game.Phase = seeded.Phase
	game.Players = seeded.Players
	game.Pyramid = seeded.Pyramid
	if err := revealRow(cfg, game, 1, 0); err != nil {
		t.Fatalf("reveal: %v", err)
	}

	const attempts = 8
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.UpdateGame(game.ID, func(game *Game) error {
				return layPyramidCard(cfg, game, 1, 0, 2)
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	successes, rejections := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			successes++
		case actionErrorCode(err) == codeAlreadyActed:
			rejections++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 {
		t.Fatalf("expected exactly one winner, got %d", successes)
	}
	if rejections != attempts-1 {
		t.Fatalf("expected %d rejections, got %d", attempts-1, rejections)
	}
	if game.Players[1].DrinksReceived != cfg.DrinksPerRow {
		t.Fatalf("counters applied more than once: %d", game.Players[1].DrinksReceived)
	}
}

// Racing predictions for one draw step: one resolves, replays bounce.
func TestConcurrentPredictSingleWinner(t *testing.T) {
	cfg := testConfig()
	store := NewStore(10)
	game := store.CreateGame(1)
	seeded := newBusGame()
	game.Phase = seeded.Phase
	game.Players = seeded.Players
	game.Bus = seeded.Bus

	const attempts = 4
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.UpdateGame(game.ID, func(game *Game) error {
				_, predictErr := predictCard(cfg, game, 2, directionHigher, 0, 0)
				return predictErr
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	successes := 0
	for err := range errs {
		switch {
		case err == nil:
			successes++
		case actionErrorCode(err) == codeAlreadyActed:
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 {
		t.Fatalf("expected exactly one resolved prediction, got %d", successes)
	}
	if game.Bus.Position != 1 {
		t.Fatalf("cursor should advance once, got %d", game.Bus.Position)
	}
}
