package server

import (
	"time"

	"busfahrer/internal/config"
	"busfahrer/internal/deck"
)

type transitionMode int

const (
	transitionPreview transitionMode = iota
	transitionManual
	transitionAuto
)

type phaseTransition struct {
	advance func(cfg config.Config, game *Game, mode transitionMode, at time.Time) (string, error)
}

// Transitions are one-directional: lobby -> pyramid -> distribution ->
// bus -> ended. Retry is not a transition; it rebuilds the game state
// (resetToLobby) while the roster survives.
var phaseTransitions = map[string]phaseTransition{
	phaseLobby: {
		advance: func(cfg config.Config, game *Game, mode transitionMode, at time.Time) (string, error) {
			if len(game.Players) < cfg.MinPlayers {
				return "", errValidation("not enough players to start")
			}
			if mode != transitionPreview {
				if err := dealPyramid(cfg, game); err != nil {
					return "", err
				}
				game.LobbyLocked = true
			}
			applyPhase(game, phasePyramid, mode, at)
			return phasePyramid, nil
		},
	},
	phasePyramid: {
		advance: func(cfg config.Config, game *Game, mode transitionMode, at time.Time) (string, error) {
			if !pyramidComplete(game) {
				return "", errInvalidPhase("pyramid not fully revealed")
			}
			if mode != transitionPreview {
				markBusfahrer(game)
				// Edge case: every player tied for most cards means
				// nobody distributes; go straight to the duel.
				if distributionComplete(game) {
					if err := initBus(cfg, game); err != nil {
						return "", err
					}
					applyPhase(game, phaseBus, mode, at)
					return phaseBus, nil
				}
			}
			applyPhase(game, phaseDistribution, mode, at)
			return phaseDistribution, nil
		},
	},
	phaseDistribution: {
		advance: func(cfg config.Config, game *Game, mode transitionMode, at time.Time) (string, error) {
			if !distributionComplete(game) {
				return "", errInvalidPhase("players still hold cards")
			}
			if mode != transitionPreview {
				if err := initBus(cfg, game); err != nil {
					return "", err
				}
			}
			applyPhase(game, phaseBus, mode, at)
			return phaseBus, nil
		},
	},
	phaseBus: {
		advance: func(cfg config.Config, game *Game, mode transitionMode, at time.Time) (string, error) {
			if game.Survived == nil {
				return "", errInvalidPhase("duel not decided")
			}
			applyPhase(game, phaseEnded, mode, at)
			return phaseEnded, nil
		},
	},
}

func advancePhase(cfg config.Config, game *Game, mode transitionMode, at time.Time) (string, error) {
	if game == nil {
		return "", errNotFound("game not found")
	}
	transition, ok := phaseTransitions[game.Phase]
	if !ok {
		return "", errInvalidPhase("no next phase")
	}
	return transition.advance(cfg, game, mode, at)
}

func setPhase(game *Game, phase string) {
	setPhaseAt(game, phase, timeNowUTC())
}

func setPhaseAt(game *Game, phase string, at time.Time) {
	game.Phase = phase
	if at.IsZero() {
		at = timeNowUTC()
	}
	game.PhaseStartedAt = at
}

func applyPhase(game *Game, phase string, mode transitionMode, at time.Time) {
	if mode == transitionPreview {
		return
	}
	setPhaseAt(game, phase, at)
}

// dealPyramid shuffles a fresh deck and partitions it into the pyramid
// and the player hands. Consumed exactly once per phase-1 start.
func dealPyramid(cfg config.Config, game *Game) error {
	cards := deck.Shuffle(game.Seed)
	hands, rows, undealt, err := deck.Deal(cards, len(game.Players), deck.PyramidSchedule(cfg.PyramidHeight))
	if err != nil {
		return errInsufficientCards("deck cannot cover this layout and player count")
	}
	game.Pyramid = rows
	game.Undealt = undealt
	for i := range game.Players {
		hand := make([]HandCard, 0, len(hands[i]))
		for _, card := range hands[i] {
			hand = append(hand, HandCard{Card: card})
		}
		game.Players[i].Hand = hand
	}
	return nil
}

// markBusfahrer flags the player(s) with the most unplayed cards after
// phase 1. Ties produce multiple simultaneous busfahrer.
func markBusfahrer(game *Game) {
	most := -1
	for i := range game.Players {
		if count := unplayedCount(&game.Players[i]); count > most {
			most = count
		}
	}
	for i := range game.Players {
		game.Players[i].IsBusfahrer = unplayedCount(&game.Players[i]) == most
	}
}

// resetToLobby rebuilds a fresh game state for a rematch without
// touching roster membership.
func resetToLobby(game *Game) {
	game.Pyramid = nil
	game.Undealt = nil
	game.Bus = nil
	game.Ledger = nil
	game.Survived = nil
	game.Fault = ""
	game.LobbyLocked = false
	for i := range game.Players {
		player := &game.Players[i]
		player.Hand = nil
		player.IsBusfahrer = false
		player.DrinksReceived = 0
		player.DrinksGiven = 0
		player.FinishGlasses = 0
	}
	setPhase(game, phaseLobby)
}

// failGame marks a session fatally inconsistent: the game ends with a
// diagnostic flag instead of continuing with corrupted counters.
func failGame(game *Game, fault string) {
	game.Fault = fault
	setPhase(game, phaseEnded)
}
