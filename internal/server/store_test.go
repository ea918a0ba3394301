package server

import "testing"

func TestAddPlayerFirstBecomesGameMaster(t *testing.T) {
	store := NewStore(10)
	game := store.CreateGame(1)

	_, anna, _, err := store.AddPlayer(game.ID, "Anna", genderFemale, roleTypePlayer)
	if err != nil {
		t.Fatalf("expected join to succeed, got %v", err)
	}
	if !anna.IsGameMaster {
		t.Fatal("first player should be game master")
	}

	_, ben, _, err := store.AddPlayer(game.ID, "Ben", genderMale, roleTypePlayer)
	if err != nil {
		t.Fatalf("expected second join to succeed, got %v", err)
	}
	if ben.IsGameMaster {
		t.Fatal("second player should not be game master")
	}
	if anna.AuthToken == "" || ben.AuthToken == "" {
		t.Fatal("players should receive auth tokens")
	}
	if anna.AuthToken == ben.AuthToken {
		t.Fatal("auth tokens must be distinct")
	}
}

func TestAddPlayerByJoinCode(t *testing.T) {
	store := NewStore(10)
	game := store.CreateGame(1)

	found, player, _, err := store.AddPlayer(game.JoinCode, "Anna", genderNone, roleTypePlayer)
	if err != nil {
		t.Fatalf("expected join by code to succeed, got %v", err)
	}
	if found.ID != game.ID {
		t.Fatalf("expected game %s, got %s", game.ID, found.ID)
	}
	if player == nil {
		t.Fatal("expected a player")
	}
}

func TestAddPlayerDuplicateName(t *testing.T) {
	store := NewStore(10)
	game := store.CreateGame(1)

	if _, _, _, err := store.AddPlayer(game.ID, "Anna", genderNone, roleTypePlayer); err != nil {
		t.Fatalf("expected join to succeed, got %v", err)
	}
	_, _, _, err := store.AddPlayer(game.ID, "anna", genderNone, roleTypePlayer)
	if actionErrorCode(err) != codeDuplicateIdentity {
		t.Fatalf("expected duplicate_identity, got %v", err)
	}
	_, _, _, err = store.AddPlayer(game.ID, "Anna", genderNone, roleTypeSpectator)
	if actionErrorCode(err) != codeDuplicateIdentity {
		t.Fatalf("expected duplicate_identity for spectator, got %v", err)
	}
}

func TestAddPlayerAfterStart(t *testing.T) {
	store := NewStore(10)
	game := store.CreateGame(1)
	game.Phase = phasePyramid
	game.LobbyLocked = true

	_, _, _, err := store.AddPlayer(game.ID, "Late", genderNone, roleTypePlayer)
	if actionErrorCode(err) != codeInvalidPhase {
		t.Fatalf("expected invalid_phase, got %v", err)
	}

	_, _, spectator, err := store.AddPlayer(game.ID, "Watcher", genderNone, roleTypeSpectator)
	if err != nil {
		t.Fatalf("spectators join running games, got %v", err)
	}
	if spectator == nil {
		t.Fatal("expected a spectator")
	}
}

func TestAddPlayerKickedNameBlocked(t *testing.T) {
	store := NewStore(10)
	game := store.CreateGame(1)
	blockRejoin(game, "Troll")

	_, _, _, err := store.AddPlayer(game.ID, "troll", genderNone, roleTypePlayer)
	if actionErrorCode(err) != codeAuthorization {
		t.Fatalf("expected authorization error, got %v", err)
	}
}

func TestAddPlayerLobbyCap(t *testing.T) {
	store := NewStore(2)
	game := store.CreateGame(1)

	if _, _, _, err := store.AddPlayer(game.ID, "Anna", genderNone, roleTypePlayer); err != nil {
		t.Fatalf("expected join to succeed, got %v", err)
	}
	if _, _, _, err := store.AddPlayer(game.ID, "Ben", genderNone, roleTypePlayer); err != nil {
		t.Fatalf("expected join to succeed, got %v", err)
	}

	_, _, _, err := store.AddPlayer(game.ID, "Cara", genderNone, roleTypePlayer)
	if actionErrorCode(err) != codeValidation {
		t.Fatalf("expected validation error for full lobby, got %v", err)
	}

	// Spectators do not count against the player cap.
	if _, _, _, err := store.AddPlayer(game.ID, "Watcher", genderNone, roleTypeSpectator); err != nil {
		t.Fatalf("spectator should still join a full lobby, got %v", err)
	}
}

func TestUpdateGameUnknownID(t *testing.T) {
	store := NewStore(10)
	_, err := store.UpdateGame("game-404", func(game *Game) error { return nil })
	if actionErrorCode(err) != codeNotFound {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestListGameSummariesOrdered(t *testing.T) {
	store := NewStore(10)
	first := store.CreateGame(1)
	second := store.CreateGame(2)

	list := store.ListGameSummaries()
	if len(list) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(list))
	}
	if list[0].ID != first.ID || list[1].ID != second.ID {
		t.Fatalf("expected creation order, got %v", list)
	}
}
