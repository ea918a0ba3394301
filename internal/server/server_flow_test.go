package server

import (
	"net/http"
	"testing"

	"busfahrer/internal/deck"
)

// Full session walkthrough over HTTP: lobby, pyramid, distribution and
// the final duel, with the layout pinned so every action is scripted.
func TestFullGameFlow(t *testing.T) {
	srv, ts := newTestServer(t)

	gameID, joinCode := createTestGame(t, ts)
	if joinCode == "" {
		t.Fatal("expected a join code")
	}

	annaID, annaToken := joinTestPlayer(t, ts, gameID, "Anna", "female")
	benID, benToken := joinTestPlayer(t, ts, gameID, "Ben", "male")
	caraID, caraToken := joinTestPlayer(t, ts, gameID, "Cara", "female")

	// Duplicate names are rejected case-insensitively.
	res, data := postJSON(t, ts.URL+"/api/games/"+gameID+"/join", map[string]any{"name": "anna"})
	if res.StatusCode != http.StatusConflict || data["code"] != codeDuplicateIdentity {
		t.Fatalf("expected duplicate_identity, got %d %v", res.StatusCode, data)
	}

	// Only the game master starts the game.
	res, data = postJSON(t, ts.URL+"/api/games/"+gameID+"/start", map[string]any{
		"player_id": benID, "auth_token": benToken,
	})
	if res.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for non-master start, got %d %v", res.StatusCode, data)
	}

	startTestGame(t, ts, gameID, annaID, annaToken)
	snap := fetchSnapshot(t, ts, gameID)
	if snap["phase"] != phasePyramid {
		t.Fatalf("expected pyramid phase, got %v", snap["phase"])
	}
	if snap["can_join"] != false {
		t.Fatal("lobby should be locked after start")
	}

	// Late joiners bounce off the locked lobby.
	res, data = postJSON(t, ts.URL+"/api/games/"+gameID+"/join", map[string]any{"name": "Late"})
	if res.StatusCode != http.StatusConflict || data["code"] != codeInvalidPhase {
		t.Fatalf("expected invalid_phase for late join, got %d %v", res.StatusCode, data)
	}

	// Pin the layout and hands so the rest of the run is scripted.
	if _, err := srv.store.UpdateGame(gameID, func(game *Game) error {
		game.Pyramid = []deck.Row{
			{Cards: []deck.Card{{Rank: 7, Suit: deck.SuitClubs}}},
			{Cards: []deck.Card{{Rank: 8, Suit: deck.SuitDiamonds}, {Rank: 9, Suit: deck.SuitHearts}}},
		}
		hands := map[int][]deck.Card{
			annaID: {{Rank: 7, Suit: deck.SuitHearts}, {Rank: 3, Suit: deck.SuitClubs}},
			benID:  {{Rank: 9, Suit: deck.SuitSpades}, {Rank: 5, Suit: deck.SuitClubs}, {Rank: 6, Suit: deck.SuitClubs}},
			caraID: {{Rank: 2, Suit: deck.SuitDiamonds}},
		}
		for i := range game.Players {
			player := &game.Players[i]
			player.Hand = nil
			for _, card := range hands[player.ID] {
				player.Hand = append(player.Hand, HandCard{Card: card})
			}
		}
		return nil
	}); err != nil {
		t.Fatalf("pin layout: %v", err)
	}

	// Reveals are ordered and master-only.
	res, data = postJSON(t, ts.URL+"/api/games/"+gameID+"/reveal", map[string]any{
		"player_id": annaID, "auth_token": annaToken, "row_index": 1,
	})
	if res.StatusCode != http.StatusConflict || data["code"] != codeOutOfTurn {
		t.Fatalf("expected out_of_turn for skipped row, got %d %v", res.StatusCode, data)
	}
	res, data = postJSON(t, ts.URL+"/api/games/"+gameID+"/reveal", map[string]any{
		"player_id": benID, "auth_token": benToken, "row_index": 0,
	})
	if res.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for non-master reveal, got %d %v", res.StatusCode, data)
	}
	res, data = postJSON(t, ts.URL+"/api/games/"+gameID+"/reveal", map[string]any{
		"player_id": annaID, "auth_token": annaToken, "row_index": 0,
	})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("reveal row 0: %d %v", res.StatusCode, data)
	}

	// Anna matches the seven and sends a drink to Ben.
	res, data = postJSON(t, ts.URL+"/api/games/"+gameID+"/lay", map[string]any{
		"player_id": annaID, "auth_token": annaToken, "card_index": 0, "target_id": benID,
	})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("lay seven: %d %v", res.StatusCode, data)
	}
	if ben := snapshotPlayer(t, data, benID); ben["drinks_received"].(float64) != 1 {
		t.Fatalf("expected Ben at 1 drink, got %v", ben["drinks_received"])
	}

	// Final reveal completes the pyramid and picks the busfahrer.
	res, data = postJSON(t, ts.URL+"/api/games/"+gameID+"/reveal", map[string]any{
		"player_id": annaID, "auth_token": annaToken, "row_index": 1,
	})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("reveal row 1: %d %v", res.StatusCode, data)
	}
	if data["phase"] != phaseDistribution {
		t.Fatalf("expected distribution, got %v", data["phase"])
	}
	busfahrer := data["busfahrer_ids"].([]any)
	if len(busfahrer) != 1 || int(busfahrer[0].(float64)) != benID {
		t.Fatalf("expected Ben as busfahrer, got %v", busfahrer)
	}

	// The busfahrer sits phase 2 out.
	res, data = postJSON(t, ts.URL+"/api/games/"+gameID+"/lay", map[string]any{
		"player_id": benID, "auth_token": benToken, "card_index": 0,
	})
	if res.StatusCode != http.StatusConflict || data["code"] != codeOutOfTurn {
		t.Fatalf("expected out_of_turn for busfahrer, got %d %v", res.StatusCode, data)
	}

	// Anna and Cara reveal their remaining cards; drinks feed Ben.
	res, data = postJSON(t, ts.URL+"/api/games/"+gameID+"/lay", map[string]any{
		"player_id": annaID, "auth_token": annaToken, "card_index": 1,
	})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("anna distribution lay: %d %v", res.StatusCode, data)
	}
	res, data = postJSON(t, ts.URL+"/api/games/"+gameID+"/lay", map[string]any{
		"player_id": caraID, "auth_token": caraToken, "card_index": 0,
	})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("cara distribution lay: %d %v", res.StatusCode, data)
	}
	if data["phase"] != phaseBus {
		t.Fatalf("expected bus after hands emptied, got %v", data["phase"])
	}
	if ben := snapshotPlayer(t, data, benID); ben["drinks_received"].(float64) != 6 {
		t.Fatalf("expected Ben at 6 drinks, got %v", ben["drinks_received"])
	}
	if int(data["entitled_actor"].(float64)) != benID {
		t.Fatalf("expected Ben entitled, got %v", data["entitled_actor"])
	}

	// Pin the diamond so both predictions are knowable.
	if _, err := srv.store.UpdateGame(gameID, func(game *Game) error {
		game.Bus.Schedule = []int{1, 1}
		game.Bus.Upcard = deck.Card{Rank: 5, Suit: deck.SuitHearts}
		game.Bus.Cards = []deck.Card{
			{Rank: 7, Suit: deck.SuitClubs},
			{Rank: 9, Suit: deck.SuitDiamonds},
		}
		game.Bus.Position = 0
		return nil
	}); err != nil {
		t.Fatalf("pin diamond: %v", err)
	}

	// Only the driver predicts.
	res, data = postJSON(t, ts.URL+"/api/games/"+gameID+"/predict", map[string]any{
		"player_id": annaID, "auth_token": annaToken, "direction": "higher", "position": 0,
	})
	if res.StatusCode != http.StatusConflict || data["code"] != codeOutOfTurn {
		t.Fatalf("expected out_of_turn for non-driver, got %d %v", res.StatusCode, data)
	}

	res, data = postJSON(t, ts.URL+"/api/games/"+gameID+"/predict", map[string]any{
		"player_id": benID, "auth_token": benToken, "direction": "higher", "position": 0,
	})
	if res.StatusCode != http.StatusOK || data["correct"] != true {
		t.Fatalf("first prediction: %d %v", res.StatusCode, data)
	}

	// A replayed step bounces instead of resolving twice.
	res, data = postJSON(t, ts.URL+"/api/games/"+gameID+"/predict", map[string]any{
		"player_id": benID, "auth_token": benToken, "direction": "higher", "position": 0,
	})
	if res.StatusCode != http.StatusConflict || data["code"] != codeAlreadyActed {
		t.Fatalf("expected already_acted on replay, got %d %v", res.StatusCode, data)
	}

	res, data = postJSON(t, ts.URL+"/api/games/"+gameID+"/predict", map[string]any{
		"player_id": benID, "auth_token": benToken, "direction": "higher", "position": 1,
	})
	if res.StatusCode != http.StatusOK || data["correct"] != true {
		t.Fatalf("second prediction: %d %v", res.StatusCode, data)
	}
	snap = fetchSnapshot(t, ts, gameID)
	if snap["phase"] != phaseEnded || snap["survived"] != true {
		t.Fatalf("expected survived end state, got phase=%v survived=%v", snap["phase"], snap["survived"])
	}

	// Retry keeps the roster and rebuilds everything else.
	res, data = postJSON(t, ts.URL+"/api/games/"+gameID+"/retry", map[string]any{
		"player_id": benID, "auth_token": benToken,
	})
	if res.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for non-master retry, got %d %v", res.StatusCode, data)
	}
	res, data = postJSON(t, ts.URL+"/api/games/"+gameID+"/retry", map[string]any{
		"player_id": annaID, "auth_token": annaToken,
	})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("retry: %d %v", res.StatusCode, data)
	}
	if data["phase"] != phaseLobby {
		t.Fatalf("expected lobby after retry, got %v", data["phase"])
	}
	if counts := data["counts"].(map[string]any); counts["players"].(float64) != 3 {
		t.Fatalf("retry must keep the roster, got %v", counts)
	}
	if ben := snapshotPlayer(t, data, benID); ben["drinks_received"].(float64) != 0 {
		t.Fatalf("expected counters reset, got %v", ben["drinks_received"])
	}
}

func TestAdjustDrinksEndpoint(t *testing.T) {
	_, ts := newTestServer(t)
	gameID, _ := createTestGame(t, ts)
	annaID, annaToken := joinTestPlayer(t, ts, gameID, "Anna", "")
	benID, benToken := joinTestPlayer(t, ts, gameID, "Ben", "")

	res, data := postJSON(t, ts.URL+"/api/games/"+gameID+"/adjust", map[string]any{
		"player_id": annaID, "auth_token": annaToken, "target_id": benID, "delta": 3,
	})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("adjust: %d %v", res.StatusCode, data)
	}
	if ben := snapshotPlayer(t, data, benID); ben["drinks_received"].(float64) != 3 {
		t.Fatalf("expected 3 drinks, got %v", ben["drinks_received"])
	}

	// Over-large negative deltas clamp at zero.
	res, data = postJSON(t, ts.URL+"/api/games/"+gameID+"/adjust", map[string]any{
		"player_id": annaID, "auth_token": annaToken, "target_id": benID, "delta": -10,
	})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("negative adjust: %d %v", res.StatusCode, data)
	}
	if ben := snapshotPlayer(t, data, benID); ben["drinks_received"].(float64) != 0 {
		t.Fatalf("expected clamp at zero, got %v", ben["drinks_received"])
	}

	res, data = postJSON(t, ts.URL+"/api/games/"+gameID+"/adjust", map[string]any{
		"player_id": benID, "auth_token": benToken, "target_id": annaID, "delta": 1,
	})
	if res.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for non-master adjust, got %d %v", res.StatusCode, data)
	}

	res, data = postJSON(t, ts.URL+"/api/games/"+gameID+"/adjust", map[string]any{
		"player_id": annaID, "auth_token": annaToken, "target_id": 99, "delta": 1,
	})
	if res.StatusCode != http.StatusConflict || data["code"] != codeInvalidAdjustment {
		t.Fatalf("expected invalid_adjustment, got %d %v", res.StatusCode, data)
	}
}

func TestKickBlocksRejoin(t *testing.T) {
	_, ts := newTestServer(t)
	gameID, _ := createTestGame(t, ts)
	annaID, annaToken := joinTestPlayer(t, ts, gameID, "Anna", "female")
	benID, _ := joinTestPlayer(t, ts, gameID, "Ben", "male")

	res, data := postJSON(t, ts.URL+"/api/games/"+gameID+"/kick", map[string]any{
		"player_id": annaID, "auth_token": annaToken, "target_id": benID,
	})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("kick: %d %v", res.StatusCode, data)
	}

	res, data = postJSON(t, ts.URL+"/api/games/"+gameID+"/join", map[string]any{"name": "Ben"})
	if res.StatusCode != http.StatusForbidden || data["code"] != codeAuthorization {
		t.Fatalf("expected rejoin block, got %d %v", res.StatusCode, data)
	}
}

func TestLeaveLastMemberRemovesGame(t *testing.T) {
	_, ts := newTestServer(t)
	gameID, _ := createTestGame(t, ts)
	annaID, annaToken := joinTestPlayer(t, ts, gameID, "Anna", "")

	res, data := postJSON(t, ts.URL+"/api/games/"+gameID+"/leave", map[string]any{
		"player_id": annaID, "auth_token": annaToken,
	})
	if res.StatusCode != http.StatusOK || data["removed"] != true {
		t.Fatalf("leave: %d %v", res.StatusCode, data)
	}
	res, _ = getJSON(t, ts.URL+"/api/games/"+gameID)
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after removal, got %d", res.StatusCode)
	}
}

func TestLeaveTransfersGameMaster(t *testing.T) {
	_, ts := newTestServer(t)
	gameID, _ := createTestGame(t, ts)
	annaID, annaToken := joinTestPlayer(t, ts, gameID, "Anna", "")
	benID, _ := joinTestPlayer(t, ts, gameID, "Ben", "")

	res, data := postJSON(t, ts.URL+"/api/games/"+gameID+"/leave", map[string]any{
		"player_id": annaID, "auth_token": annaToken,
	})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("leave: %d %v", res.StatusCode, data)
	}
	if int(data["game_master_id"].(float64)) != benID {
		t.Fatalf("expected Ben promoted, got %v", data["game_master_id"])
	}
}

func TestActionsRequireValidToken(t *testing.T) {
	_, ts := newTestServer(t)
	gameID, _ := createTestGame(t, ts)
	annaID, _ := joinTestPlayer(t, ts, gameID, "Anna", "")
	joinTestPlayer(t, ts, gameID, "Ben", "")

	res, data := postJSON(t, ts.URL+"/api/games/"+gameID+"/start", map[string]any{
		"player_id": annaID, "auth_token": "forged",
	})
	if res.StatusCode != http.StatusForbidden || data["code"] != codeAuthorization {
		t.Fatalf("expected 403 for forged token, got %d %v", res.StatusCode, data)
	}
}

func TestStartRequiresMinimumPlayers(t *testing.T) {
	_, ts := newTestServer(t)
	gameID, _ := createTestGame(t, ts)
	annaID, annaToken := joinTestPlayer(t, ts, gameID, "Anna", "")

	res, data := postJSON(t, ts.URL+"/api/games/"+gameID+"/start", map[string]any{
		"player_id": annaID, "auth_token": annaToken,
	})
	if res.StatusCode != http.StatusBadRequest || data["code"] != codeValidation {
		t.Fatalf("expected validation error, got %d %v", res.StatusCode, data)
	}
}

func TestGetGameByJoinCode(t *testing.T) {
	_, ts := newTestServer(t)
	gameID, joinCode := createTestGame(t, ts)

	res, data := getJSON(t, ts.URL+"/api/games/"+joinCode)
	if res.StatusCode != http.StatusOK || data["game_id"] != gameID {
		t.Fatalf("expected snapshot by join code, got %d %v", res.StatusCode, data)
	}
}

func TestJoinCarriesTitleIntoSnapshot(t *testing.T) {
	_, ts := newTestServer(t)
	gameID, _ := createTestGame(t, ts)

	res, data := postJSON(t, ts.URL+"/api/games/"+gameID+"/join", map[string]any{
		"name":  "Anna",
		"title": "Kapitaen der Runde",
	})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("join: status %d body %v", res.StatusCode, data)
	}
	annaID := int(data["player_id"].(float64))

	snap := fetchSnapshot(t, ts, gameID)
	anna := snapshotPlayer(t, snap, annaID)
	if anna["title"] != "Kapitaen der Runde" {
		t.Fatalf("expected title in snapshot, got %v", anna["title"])
	}

	res, data = postJSON(t, ts.URL+"/api/games/"+gameID+"/join", map[string]any{
		"name":  "Ben",
		"title": "<b>chef</b>",
	})
	if res.StatusCode != http.StatusBadRequest || data["code"] != codeValidation {
		t.Fatalf("expected validation for unsafe title, got %d %v", res.StatusCode, data)
	}
}
