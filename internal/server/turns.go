package server

// Turn scheduling. Phases 1 and 2 have no strict single-turn order:
// every eligible player may act on the open resource until it is
// exhausted. Phase 3 has exactly one entitled actor, the driver.

// currentPyramidRow is the index of the most recently revealed row, or
// -1 before the first reveal. Matching plays are only valid against it.
func currentPyramidRow(game *Game) int {
	current := -1
	for i := range game.Pyramid {
		if game.Pyramid[i].Revealed {
			current = i
		}
	}
	return current
}

// nextPyramidRow is the index the next reveal must target, or -1 once
// the pyramid is fully revealed.
func nextPyramidRow(game *Game) int {
	for i := range game.Pyramid {
		if !game.Pyramid[i].Revealed {
			return i
		}
	}
	return -1
}

func pyramidComplete(game *Game) bool {
	if len(game.Pyramid) == 0 {
		return false
	}
	return nextPyramidRow(game) < 0
}

// rowMatchesRank reports whether the row holds a card of equal rank.
// Suit is irrelevant for matches.
func rowMatchesRank(game *Game, rowIndex, rank int) bool {
	if rowIndex < 0 || rowIndex >= len(game.Pyramid) {
		return false
	}
	for _, card := range game.Pyramid[rowIndex].Cards {
		if card.Rank == rank {
			return true
		}
	}
	return false
}

// eligibleLayerIDs lists players holding an unplayed card matching the
// current row. A player with no match simply has no action this round.
func eligibleLayerIDs(game *Game) []int {
	current := currentPyramidRow(game)
	if current < 0 {
		return nil
	}
	ids := make([]int, 0, len(game.Players))
	for i := range game.Players {
		player := &game.Players[i]
		for _, hc := range player.Hand {
			if !hc.Played && rowMatchesRank(game, current, hc.Card.Rank) {
				ids = append(ids, player.ID)
				break
			}
		}
	}
	return ids
}

func busfahrerIDs(game *Game) []int {
	ids := make([]int, 0)
	for i := range game.Players {
		if game.Players[i].IsBusfahrer {
			ids = append(ids, game.Players[i].ID)
		}
	}
	return ids
}

// pendingDistributionIDs lists non-busfahrer players who still hold
// unplayed cards in phase 2.
func pendingDistributionIDs(game *Game) []int {
	ids := make([]int, 0)
	for i := range game.Players {
		player := &game.Players[i]
		if player.IsBusfahrer {
			continue
		}
		if unplayedCount(player) > 0 {
			ids = append(ids, player.ID)
		}
	}
	return ids
}

func distributionComplete(game *Game) bool {
	return len(pendingDistributionIDs(game)) == 0
}

// entitledActorID is the single entitled actor where one exists.
// Only phase 3 restricts to one actor; other phases return 0.
func entitledActorID(game *Game) int {
	if game.Phase == phaseBus && game.Bus != nil {
		return game.Bus.DriverID
	}
	return 0
}
