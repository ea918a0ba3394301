package server

import (
	"crypto/subtle"
	"strings"

	"github.com/google/uuid"
)

func newAuthToken() string {
	return uuid.NewString()
}

func verifyPlayerToken(game *Game, playerID int, token string) (*Player, error) {
	if game == nil {
		return nil, errNotFound("game not found")
	}
	if playerID <= 0 {
		return nil, errValidation("player_id is required")
	}
	player, ok := findPlayer(game, playerID)
	if !ok {
		return nil, errNotFound("player not found")
	}
	provided := strings.TrimSpace(token)
	if provided == "" {
		return nil, errAuthorization("authentication required")
	}
	if subtle.ConstantTimeCompare([]byte(provided), []byte(player.AuthToken)) != 1 {
		return nil, errAuthorization("invalid player authentication")
	}
	return player, nil
}

func verifyGameMasterToken(game *Game, playerID int, token string) (*Player, error) {
	player, err := verifyPlayerToken(game, playerID, token)
	if err != nil {
		return nil, err
	}
	if !player.IsGameMaster {
		return nil, errAuthorization("only the game master can perform this action")
	}
	return player, nil
}

func verifyMemberToken(game *Game, playerID, spectatorID int, token string) error {
	if playerID > 0 {
		_, err := verifyPlayerToken(game, playerID, token)
		return err
	}
	if game == nil {
		return errNotFound("game not found")
	}
	spectator, ok := findSpectator(game, spectatorID)
	if !ok {
		return errNotFound("spectator not found")
	}
	if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), []byte(spectator.AuthToken)) != 1 {
		return errAuthorization("invalid spectator authentication")
	}
	return nil
}
