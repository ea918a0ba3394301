package server

import (
	"time"

	"busfahrer/internal/config"
)

// revealRow flips the next pyramid row. Reveals are game-master-only
// and strictly ordered bottom to top; a row, once revealed, is never
// re-hidden.
func revealRow(cfg config.Config, game *Game, actorID, rowIndex int) error {
	if game.Phase != phasePyramid {
		return errInvalidPhase("rows can only be revealed during the pyramid phase")
	}
	actor, ok := findPlayer(game, actorID)
	if !ok {
		return errNotFound("player not found")
	}
	if !actor.IsGameMaster {
		return errAuthorization("only the game master reveals rows")
	}
	if rowIndex < 0 || rowIndex >= len(game.Pyramid) {
		return errValidation("row index out of range")
	}
	if game.Pyramid[rowIndex].Revealed {
		return errAlreadyActed("row already revealed")
	}
	next := nextPyramidRow(game)
	if next < 0 {
		failGame(game, "pyramid claims unrevealed rows but none found")
		return errInvalidPhase("game state inconsistent")
	}
	if rowIndex != next {
		return errOutOfTurn("rows are revealed in order")
	}
	game.Pyramid[rowIndex].Revealed = true

	if pyramidComplete(game) {
		if _, err := advancePhase(cfg, game, transitionAuto, time.Time{}); err != nil {
			return err
		}
	}
	return nil
}

// layPyramidCard discards a rank-matching card against the most
// recently revealed row and assigns drinks to the target. Drinks given
// scale with the 1-based row number.
func layPyramidCard(cfg config.Config, game *Game, actorID, cardIndex, targetID int) error {
	if game.Phase != phasePyramid {
		return errInvalidPhase("cards are laid during the pyramid phase")
	}
	actor, ok := findPlayer(game, actorID)
	if !ok {
		return errNotFound("player not found")
	}
	current := currentPyramidRow(game)
	if current < 0 {
		return errOutOfTurn("no row revealed yet")
	}
	if cardIndex < 0 || cardIndex >= len(actor.Hand) {
		return errValidation("card index out of range")
	}
	hc := &actor.Hand[cardIndex]
	if hc.Played {
		return errAlreadyActed("card already played")
	}
	if !rowMatchesRank(game, current, hc.Card.Rank) {
		return errValidation("card does not match the revealed row")
	}
	if targetID == actorID {
		return errValidation("drinks go to other players")
	}
	target, ok := findPlayer(game, targetID)
	if !ok {
		return errValidation("target player not found")
	}

	hc.Played = true
	drinks := (current + 1) * cfg.DrinksPerRow
	target.DrinksReceived += drinks
	actor.DrinksGiven += drinks
	game.Ledger = append(game.Ledger, DrinkEntry{
		FromID: actor.ID,
		ToID:   target.ID,
		Count:  drinks,
		Reason: drinkReasonPyramidMatch,
		Phase:  game.Phase,
		At:     timeNowUTC(),
	})
	return nil
}
