package server

// snapshot builds the full authoritative state for broadcast. Clients
// hold nothing but a cache of the last snapshot; unrevealed layout
// cards are never included.
func snapshot(game *Game) map[string]any {
	payload := map[string]any{
		"game_id":          game.ID,
		"join_code":        game.JoinCode,
		"phase":            game.Phase,
		"phase_started_at": game.PhaseStartedAt,
		"players":          playerSummaries(game),
		"spectators":       spectatorSummaries(game),
		"game_master_id":   gameMasterID(game),
		"busfahrer_ids":    busfahrerIDs(game),
		"entitled_actor":   entitledActorID(game),
		"pyramid":          pyramidRows(game),
		"current_row":      currentPyramidRow(game),
		"next_row":         nextPyramidRow(game),
		"undealt":          len(game.Undealt),
		"drinks":           ledgerEntries(game),
		"can_join":         game.Phase == phaseLobby && !game.LobbyLocked,
		"counts": map[string]int{
			"players":    len(game.Players),
			"spectators": len(game.Spectators),
		},
	}
	switch game.Phase {
	case phasePyramid:
		payload["eligible_layers"] = eligibleLayerIDs(game)
	case phaseDistribution:
		payload["pending_players"] = pendingDistributionIDs(game)
	}
	if bus := game.Bus; bus != nil {
		busPayload := map[string]any{
			"driver_id":      bus.DriverID,
			"position":       bus.Position,
			"total":          len(bus.Cards),
			"pending_drinks": bus.PendingDrinks,
			"round":          bus.Round,
			"upcard":         map[string]any{"rank": bus.Upcard.Rank, "suit": bus.Upcard.Suit},
			"rows":           busRows(bus),
		}
		if bus.LastResult != nil {
			busPayload["last_result"] = bus.LastResult
		}
		payload["bus"] = busPayload
	}
	if game.Survived != nil {
		payload["survived"] = *game.Survived
	}
	if game.Fault != "" {
		payload["fault"] = game.Fault
	}
	return payload
}

func playerSummaries(game *Game) []map[string]any {
	list := make([]map[string]any, 0, len(game.Players))
	for i := range game.Players {
		player := &game.Players[i]
		cards := make([]map[string]any, 0, len(player.Hand))
		for _, hc := range player.Hand {
			cards = append(cards, map[string]any{
				"rank":   hc.Card.Rank,
				"suit":   hc.Card.Suit,
				"played": hc.Played,
			})
		}
		list = append(list, map[string]any{
			"id":              player.ID,
			"name":            player.Name,
			"gender":          player.Gender,
			"avatar":          player.AvatarRef,
			"title":           player.Title,
			"connected":       player.Connected,
			"is_game_master":  player.IsGameMaster,
			"is_busfahrer":    player.IsBusfahrer,
			"drinks_received": player.DrinksReceived,
			"drinks_given":    player.DrinksGiven,
			"finish_glasses":  player.FinishGlasses,
			"cards":           cards,
			"cards_left":      unplayedCount(player),
		})
	}
	return list
}

func spectatorSummaries(game *Game) []map[string]any {
	list := make([]map[string]any, 0, len(game.Spectators))
	for i := range game.Spectators {
		spectator := &game.Spectators[i]
		list = append(list, map[string]any{
			"id":        spectator.ID,
			"name":      spectator.Name,
			"avatar":    spectator.AvatarRef,
			"connected": spectator.Connected,
		})
	}
	return list
}

func pyramidRows(game *Game) []map[string]any {
	rows := make([]map[string]any, 0, len(game.Pyramid))
	for i := range game.Pyramid {
		row := &game.Pyramid[i]
		entry := map[string]any{
			"index":    i,
			"size":     len(row.Cards),
			"revealed": row.Revealed,
		}
		if row.Revealed {
			cards := make([]map[string]any, 0, len(row.Cards))
			for _, card := range row.Cards {
				cards = append(cards, map[string]any{"rank": card.Rank, "suit": card.Suit})
			}
			entry["cards"] = cards
		}
		rows = append(rows, entry)
	}
	return rows
}

func ledgerEntries(game *Game) []map[string]any {
	list := make([]map[string]any, 0, len(game.Ledger))
	for _, entry := range game.Ledger {
		list = append(list, map[string]any{
			"from":   entry.FromID,
			"to":     entry.ToID,
			"count":  entry.Count,
			"reason": entry.Reason,
			"phase":  entry.Phase,
			"at":     entry.At,
		})
	}
	return list
}

func gameMasterID(game *Game) int {
	if master, ok := gameMaster(game); ok {
		return master.ID
	}
	return 0
}
