package server

import (
	"strings"
	"time"

	"busfahrer/internal/config"
)

// removePlayer drops a player from the roster. Unplayed drink
// obligations are forfeited into the ledger so totals stay auditable,
// and the game-master role transfers to the eldest remaining player.
// Removal can satisfy a pending phase condition (the last held hand
// leaving the table), so the auto-advance runs here too.
// Returns false if the player was not present (removal is a no-op then).
func removePlayer(cfg config.Config, game *Game, playerID int) bool {
	index := -1
	for i := range game.Players {
		if game.Players[i].ID == playerID {
			index = i
			break
		}
	}
	if index < 0 {
		return false
	}
	removed := game.Players[index]

	if gameActive(game) {
		if forfeited := unplayedCount(&removed); forfeited > 0 {
			game.Ledger = append(game.Ledger, DrinkEntry{
				ToID:   removed.ID,
				Count:  forfeited,
				Reason: drinkReasonForfeit,
				Phase:  game.Phase,
				At:     timeNowUTC(),
			})
		}
	}

	game.Players = append(game.Players[:index], game.Players[index+1:]...)

	if removed.IsGameMaster {
		promoteGameMaster(game)
	}
	if removed.IsBusfahrer && game.Phase == phaseDistribution && len(busfahrerIDs(game)) == 0 {
		markBusfahrer(game)
	}
	if game.Phase == phaseBus && game.Bus != nil && game.Bus.DriverID == removed.ID {
		// The duel cannot continue without its single actor.
		endBusGame(game, false)
	}
	if game.Phase == phaseDistribution && distributionComplete(game) {
		// Nobody left with a legal action; the phase must not stall.
		_, _ = advancePhase(cfg, game, transitionAuto, time.Time{})
	}
	return true
}

func removeSpectator(game *Game, spectatorID int) bool {
	for i := range game.Spectators {
		if game.Spectators[i].ID == spectatorID {
			game.Spectators = append(game.Spectators[:i], game.Spectators[i+1:]...)
			return true
		}
	}
	return false
}

// promoteGameMaster hands the role to the next-eldest player by join
// order. Players are stored in join order, so the first entry wins.
func promoteGameMaster(game *Game) {
	for i := range game.Players {
		game.Players[i].IsGameMaster = false
	}
	if len(game.Players) > 0 {
		game.Players[0].IsGameMaster = true
	}
}

func gameMaster(game *Game) (*Player, bool) {
	for i := range game.Players {
		if game.Players[i].IsGameMaster {
			return &game.Players[i], true
		}
	}
	return nil, false
}

func blockRejoin(game *Game, name string) {
	if game.KickedNames == nil {
		game.KickedNames = make(map[string]struct{})
	}
	game.KickedNames[strings.ToLower(name)] = struct{}{}
}

func gameActive(game *Game) bool {
	switch game.Phase {
	case phasePyramid, phaseDistribution, phaseBus:
		return true
	default:
		return false
	}
}

func memberCount(game *Game) int {
	return len(game.Players) + len(game.Spectators)
}

// adjustDrinks atomically updates one counter of one player. Totals
// never go negative; an over-large negative delta clamps at zero.
func adjustDrinks(game *Game, playerID int, delta int, kind string) error {
	player, ok := findPlayer(game, playerID)
	if !ok {
		return errInvalidAdjustment("player not found")
	}
	switch kind {
	case drinkKindReceived:
		player.DrinksReceived += delta
		if player.DrinksReceived < 0 {
			player.DrinksReceived = 0
		}
	case drinkKindGiven:
		player.DrinksGiven += delta
		if player.DrinksGiven < 0 {
			player.DrinksGiven = 0
		}
	default:
		return errInvalidAdjustment("unknown drink kind")
	}
	return nil
}

func markConnection(game *Game, playerID, spectatorID int, connected bool) bool {
	if playerID > 0 {
		if player, ok := findPlayer(game, playerID); ok {
			player.Connected = connected
			return true
		}
		return false
	}
	if spectatorID > 0 {
		if spectator, ok := findSpectator(game, spectatorID); ok {
			spectator.Connected = connected
			return true
		}
	}
	return false
}

func unplayedCount(player *Player) int {
	count := 0
	for _, hc := range player.Hand {
		if !hc.Played {
			count++
		}
	}
	return count
}
