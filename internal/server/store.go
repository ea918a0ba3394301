package server

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Store holds all running games. Every mutation goes through UpdateGame
// under one mutex, so state changes for a game are applied in arrival
// order and the loser of a race observes a rejection, never a partial
// update.
type Store struct {
	mu              sync.Mutex
	nextID          int
	nextPlayerID    int
	nextSpectatorID int
	maxPlayers      int
	games           map[string]*Game
}

func NewStore(maxPlayers int) *Store {
	return &Store{
		nextID:          1,
		nextPlayerID:    1,
		nextSpectatorID: 1,
		maxPlayers:      maxPlayers,
		games:           make(map[string]*Game),
	}
}

func (s *Store) CreateGame(seed int64) *Game {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := fmt.Sprintf("game-%d", s.nextID)
	s.nextID++
	game := &Game{
		ID:             id,
		JoinCode:       newJoinCode(),
		Phase:          phaseLobby,
		PhaseStartedAt: timeNowUTC(),
		CreatedAt:      timeNowUTC(),
		Seed:           seed,
		MaxPlayers:     s.maxPlayers,
		KickedNames:    make(map[string]struct{}),
	}
	s.games[id] = game
	return game
}

func (s *Store) GetGame(id string) (*Game, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[id]
	return game, ok
}

func (s *Store) UpdateGame(id string, update func(game *Game) error) (*Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[id]
	if !ok {
		return nil, errNotFound("game not found")
	}
	if err := update(game); err != nil {
		return nil, err
	}
	return game, nil
}

func (s *Store) FindGameByJoinCode(code string) (*Game, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, game := range s.games {
		if game.JoinCode == code {
			return game, true
		}
	}
	return nil, false
}

func (s *Store) UpdateGameID(game *Game, newID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if game.ID == newID {
		return
	}
	delete(s.games, game.ID)
	game.ID = newID
	s.games[newID] = game
}

func (s *Store) RemoveGame(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.games, id)
}

// AddPlayer admits a player or spectator into a lobby. The first
// admitted player becomes game-master. Resolves the game by id or by
// join code, like a join form would submit.
func (s *Store) AddPlayer(gameIDOrCode, name, gender, role string) (*Game, *Player, *Spectator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	game, ok := s.games[gameIDOrCode]
	if !ok {
		for _, candidate := range s.games {
			if candidate.JoinCode == gameIDOrCode {
				game = candidate
				ok = true
				break
			}
		}
	}
	if !ok {
		return nil, nil, nil, errNotFound("game not found")
	}

	for i := range game.Players {
		if strings.EqualFold(game.Players[i].Name, name) {
			return nil, nil, nil, errDuplicateIdentity("name already taken")
		}
	}
	for i := range game.Spectators {
		if strings.EqualFold(game.Spectators[i].Name, name) {
			return nil, nil, nil, errDuplicateIdentity("name already taken")
		}
	}
	if game.KickedNames != nil {
		if _, kicked := game.KickedNames[strings.ToLower(name)]; kicked {
			return nil, nil, nil, errAuthorization("removed from this game")
		}
	}

	if role == roleTypeSpectator {
		spectator := Spectator{
			ID:        s.nextSpectatorID,
			Name:      name,
			AuthToken: newAuthToken(),
			Connected: true,
			JoinedAt:  timeNowUTC(),
		}
		s.nextSpectatorID++
		game.Spectators = append(game.Spectators, spectator)
		return game, nil, &game.Spectators[len(game.Spectators)-1], nil
	}

	if game.Phase != phaseLobby {
		return nil, nil, nil, errInvalidPhase("game already started")
	}
	if game.LobbyLocked {
		return nil, nil, nil, errAuthorization("lobby locked")
	}
	if game.MaxPlayers > 0 && len(game.Players) >= game.MaxPlayers {
		return nil, nil, nil, errValidation("lobby full")
	}

	player := Player{
		ID:           s.nextPlayerID,
		Name:         name,
		Gender:       gender,
		AuthToken:    newAuthToken(),
		IsGameMaster: len(game.Players) == 0,
		Connected:    true,
		JoinedAt:     timeNowUTC(),
	}
	s.nextPlayerID++
	game.Players = append(game.Players, player)
	return game, &game.Players[len(game.Players)-1], nil, nil
}

func (s *Store) ListGameSummaries() []GameSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]GameSummary, 0, len(s.games))
	for _, game := range s.games {
		list = append(list, GameSummary{
			ID:       game.ID,
			JoinCode: game.JoinCode,
			Phase:    game.Phase,
			Players:  len(game.Players),
		})
	}
	sort.Slice(list, func(i, j int) bool {
		return gameSortKey(list[i].ID) < gameSortKey(list[j].ID)
	})
	return list
}

func gameSortKey(id string) int {
	parts := strings.Split(id, "-")
	if len(parts) < 2 {
		return 0
	}
	value, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return 0
	}
	return value
}

func (s *Store) GetPlayer(gameID string, playerID int) (*Game, *Player, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[gameID]
	if !ok {
		return nil, nil, false
	}
	for i := range game.Players {
		if game.Players[i].ID == playerID {
			return game, &game.Players[i], true
		}
	}
	return game, nil, false
}

func findPlayer(game *Game, playerID int) (*Player, bool) {
	for i := range game.Players {
		if game.Players[i].ID == playerID {
			return &game.Players[i], true
		}
	}
	return nil, false
}

func findSpectator(game *Game, spectatorID int) (*Spectator, bool) {
	for i := range game.Spectators {
		if game.Spectators[i].ID == spectatorID {
			return &game.Spectators[i], true
		}
	}
	return nil, false
}

func timeNowUTC() time.Time {
	return time.Now().UTC()
}
