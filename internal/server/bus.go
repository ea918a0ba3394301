package server

import (
	"busfahrer/internal/config"
	"busfahrer/internal/deck"
)

// busSeedStep decorrelates redeal shuffles from the initial game seed.
const busSeedStep = 104729

// initBus sets up the phase-3 duel. The driver is the first busfahrer
// by join order; the diamond is pre-dealt face down from a fresh
// shuffle with one upcard as the starting reference.
func initBus(cfg config.Config, game *Game) error {
	driverID := 0
	for i := range game.Players {
		if game.Players[i].IsBusfahrer {
			driverID = game.Players[i].ID
			break
		}
	}
	if driverID == 0 {
		failGame(game, "no busfahrer available for the duel")
		return errInvalidPhase("game state inconsistent")
	}
	bus := &BusState{
		DriverID: driverID,
		Schedule: deck.DiamondSchedule(cfg.DiamondPeak),
	}
	game.Bus = bus
	return dealBus(game, bus)
}

func dealBus(game *Game, bus *BusState) error {
	total := 0
	for _, size := range bus.Schedule {
		total += size
	}
	cards := deck.Shuffle(game.Seed + int64(bus.Round+1)*busSeedStep)
	if total+1 > len(cards) {
		return errInsufficientCards("diamond layout exceeds the deck")
	}
	bus.Upcard = cards[0]
	bus.Cards = append([]deck.Card(nil), cards[1:1+total]...)
	bus.Position = 0
	return nil
}

// predictCard resolves one higher/lower/equal prediction for the
// driver. The round and position parameters pin the prediction to a
// discrete draw step of a discrete redeal, so a replayed payload is
// rejected, not applied twice. Position alone is not enough: a miss
// resets the cursor to zero, which would make a stale position-0
// payload look current again.
func predictCard(cfg config.Config, game *Game, actorID int, direction string, position, round int) (*PredictResult, error) {
	if game.Phase != phaseBus {
		return nil, errInvalidPhase("predictions belong to the bus phase")
	}
	bus := game.Bus
	if bus == nil || bus.Position >= len(bus.Cards) {
		failGame(game, "bus phase without a valid layout")
		return nil, errInvalidPhase("game state inconsistent")
	}
	if _, ok := findPlayer(game, actorID); !ok {
		return nil, errNotFound("player not found")
	}
	if actorID != bus.DriverID {
		return nil, errOutOfTurn("only the busfahrer predicts")
	}
	switch direction {
	case directionHigher, directionLower, directionEqual:
	default:
		return nil, errValidation("direction must be higher, lower or equal")
	}
	if round < bus.Round {
		return nil, errAlreadyActed("redeal already resolved")
	}
	if round > bus.Round {
		return nil, errOutOfTurn("not the current redeal")
	}
	if position < bus.Position {
		return nil, errAlreadyActed("draw step already resolved")
	}
	if position > bus.Position {
		return nil, errOutOfTurn("not the current draw step")
	}

	reference := bus.Upcard
	if bus.Position > 0 {
		reference = bus.Cards[bus.Position-1]
	}
	card := bus.Cards[bus.Position]
	correct := false
	switch direction {
	case directionHigher:
		correct = card.Rank > reference.Rank
	case directionLower:
		correct = card.Rank < reference.Rank
	case directionEqual:
		correct = card.Rank == reference.Rank
	}

	result := &PredictResult{Correct: correct, Card: card, Position: bus.Position}
	bus.LastResult = result

	if correct {
		bus.Position++
		if bus.Position == len(bus.Cards) {
			endBusGame(game, true)
		}
		return result, nil
	}

	bus.PendingDrinks += cfg.BusDrinksPerMiss
	bus.Round++
	game.Ledger = append(game.Ledger, DrinkEntry{
		ToID:   bus.DriverID,
		Count:  cfg.BusDrinksPerMiss,
		Reason: drinkReasonBusMiss,
		Phase:  game.Phase,
		At:     timeNowUTC(),
	})
	if bus.PendingDrinks >= cfg.BusPenaltyThreshold {
		endBusGame(game, false)
		return result, nil
	}
	// A miss restarts the run with new cards, as at the bus stop.
	if err := dealBus(game, bus); err != nil {
		failGame(game, "bus redeal failed")
		return nil, err
	}
	return result, nil
}

// endBusGame records the duel outcome. Survival and failure are the
// same terminal fact; pending drinks are credited either way.
func endBusGame(game *Game, survived bool) {
	game.Survived = &survived
	if bus := game.Bus; bus != nil && bus.PendingDrinks > 0 {
		if driver, ok := findPlayer(game, bus.DriverID); ok {
			driver.DrinksReceived += bus.PendingDrinks
			game.Ledger = append(game.Ledger, DrinkEntry{
				ToID:   driver.ID,
				Count:  bus.PendingDrinks,
				Reason: drinkReasonBusResult,
				Phase:  game.Phase,
				At:     timeNowUTC(),
			})
		}
		bus.PendingDrinks = 0
	}
	setPhase(game, phaseEnded)
}

// busRows shapes the flat layout back into diamond rows for snapshots.
func busRows(bus *BusState) []map[string]any {
	if bus == nil {
		return nil
	}
	rows := make([]map[string]any, 0, len(bus.Schedule))
	index := 0
	for _, size := range bus.Schedule {
		cards := make([]map[string]any, 0, size)
		for i := 0; i < size; i++ {
			entry := map[string]any{"revealed": index < bus.Position}
			if index < bus.Position {
				entry["rank"] = bus.Cards[index].Rank
				entry["suit"] = bus.Cards[index].Suit
			}
			cards = append(cards, entry)
			index++
		}
		rows = append(rows, map[string]any{"size": size, "cards": cards})
	}
	return rows
}
