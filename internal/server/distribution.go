package server

import (
	"time"

	"busfahrer/internal/config"
	"busfahrer/internal/deck"
)

// layDistributionCard reveals one of the actor's remaining cards in
// phase 2. Numeric ranks feed the busfahrer; face ranks apply group
// rules; an ace flags the actor to finish their glass.
func layDistributionCard(cfg config.Config, game *Game, actorID, cardIndex int) error {
	if game.Phase != phaseDistribution {
		return errInvalidPhase("cards are revealed during the distribution phase")
	}
	actor, ok := findPlayer(game, actorID)
	if !ok {
		return errNotFound("player not found")
	}
	if actor.IsBusfahrer {
		return errOutOfTurn("the busfahrer does not reveal cards in this phase")
	}
	if cardIndex < 0 || cardIndex >= len(actor.Hand) {
		return errValidation("card index out of range")
	}
	hc := &actor.Hand[cardIndex]
	if hc.Played {
		return errAlreadyActed("card already revealed")
	}

	hc.Played = true
	applyDistributionEffect(game, actor, hc.Card)

	if distributionComplete(game) {
		if _, err := advancePhase(cfg, game, transitionAuto, time.Time{}); err != nil {
			return err
		}
	}
	return nil
}

func applyDistributionEffect(game *Game, actor *Player, card deck.Card) {
	now := timeNowUTC()
	switch {
	case card.Rank <= 10:
		for _, id := range busfahrerIDs(game) {
			driver, ok := findPlayer(game, id)
			if !ok {
				continue
			}
			driver.DrinksReceived += card.Rank
			actor.DrinksGiven += card.Rank
			game.Ledger = append(game.Ledger, DrinkEntry{
				FromID: actor.ID,
				ToID:   driver.ID,
				Count:  card.Rank,
				Reason: drinkReasonDistribution,
				Phase:  game.Phase,
				At:     now,
			})
		}
	case card.Rank == deck.RankJack:
		groupDrink(game, actor, genderMale, drinkReasonJack, now)
	case card.Rank == deck.RankQueen:
		groupDrink(game, actor, genderFemale, drinkReasonQueen, now)
	case card.Rank == deck.RankKing:
		groupDrink(game, actor, genderNone, drinkReasonKing, now)
	case card.Rank == deck.RankAce:
		// Finish the glass: a flag, not a numeric count.
		actor.FinishGlasses++
		game.Ledger = append(game.Ledger, DrinkEntry{
			FromID: actor.ID,
			ToID:   actor.ID,
			Count:  1,
			Reason: drinkReasonFinishGlass,
			Phase:  game.Phase,
			At:     now,
		})
	}
}

// groupDrink gives one drink to every player of the flagged gender, or
// to everyone when gender is empty (the king rule).
func groupDrink(game *Game, actor *Player, gender, reason string, now time.Time) {
	for i := range game.Players {
		target := &game.Players[i]
		if gender != genderNone && target.Gender != gender {
			continue
		}
		target.DrinksReceived++
		actor.DrinksGiven++
		game.Ledger = append(game.Ledger, DrinkEntry{
			FromID: actor.ID,
			ToID:   target.ID,
			Count:  1,
			Reason: reason,
			Phase:  game.Phase,
			At:     now,
		})
	}
}
