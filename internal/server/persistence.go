package server

import (
	"encoding/json"
	"errors"
	"fmt"

	"busfahrer/internal/db"

	"github.com/jackc/pgconn"
	"gorm.io/datatypes"
)

// Persistence is optional: with no database attached the server runs
// fully in-memory and every persist call is a no-op.

func (s *Server) persistGame(game *Game) error {
	if s.db == nil {
		return nil
	}
	record := db.Game{
		JoinCode: game.JoinCode,
		Phase:    game.Phase,
	}
	if err := s.db.Create(&record).Error; err != nil {
		return err
	}
	game.DBID = record.ID
	newID := fmt.Sprintf("game-%d", record.ID)
	if game.ID != newID {
		s.store.UpdateGameID(game, newID)
	}
	return s.persistEvent(game, "game_created", EventPayload{
		GameID:   game.ID,
		JoinCode: game.JoinCode,
	})
}

func (s *Server) persistPlayer(game *Game, playerID int, name, gender string, spectator, isMaster bool) error {
	if s.db == nil {
		return nil
	}
	if game.DBID == 0 {
		return errors.New("game not persisted")
	}
	record := db.Player{
		GameID:    game.DBID,
		Name:      name,
		Gender:    gender,
		Spectator: spectator,
		IsMaster:  isMaster,
		JoinedAt:  timeNowUTC(),
	}
	if err := s.db.Create(&record).Error; err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return err
	}
	if !spectator {
		if player, ok := findPlayer(game, playerID); ok {
			player.DBID = record.ID
		}
		if game.PlayerDBIDs == nil {
			game.PlayerDBIDs = make(map[int]uint)
		}
		game.PlayerDBIDs[playerID] = record.ID
	}
	return s.persistEvent(game, "member_joined", EventPayload{
		PlayerName: name,
		PlayerID:   playerID,
	})
}

// persistDrinks mirrors newly appended ledger entries to the database.
// Player ids are resolved through PlayerDBIDs, which outlives removal
// so forfeits stay attributable.
func (s *Server) persistDrinks(game *Game, entries []DrinkEntry) error {
	if s.db == nil || len(entries) == 0 {
		return nil
	}
	if game.DBID == 0 {
		return errors.New("game not persisted")
	}
	for _, entry := range entries {
		record := db.Drink{
			GameID: game.DBID,
			Count:  entry.Count,
			Reason: entry.Reason,
			Phase:  entry.Phase,
		}
		if id, ok := game.PlayerDBIDs[entry.FromID]; ok && entry.FromID > 0 {
			from := id
			record.FromPlayerID = &from
		}
		if id, ok := game.PlayerDBIDs[entry.ToID]; ok && entry.ToID > 0 {
			to := id
			record.ToPlayerID = &to
		}
		if err := s.db.Create(&record).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) persistPhase(game *Game, eventType string, payload EventPayload) error {
	if s.db == nil {
		return nil
	}
	if game.DBID == 0 {
		return errors.New("game not persisted")
	}
	updates := map[string]any{"phase": game.Phase}
	if game.Survived != nil {
		updates["survived"] = *game.Survived
	}
	if err := s.db.Model(&db.Game{}).Where("id = ?", game.DBID).Updates(updates).Error; err != nil {
		return err
	}
	return s.persistEvent(game, eventType, payload)
}

func (s *Server) persistEvent(game *Game, eventType string, payload EventPayload) error {
	if s.db == nil {
		return nil
	}
	if game.DBID == 0 {
		return errors.New("game not persisted")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	record := db.Event{
		GameID:  game.DBID,
		Type:    eventType,
		Payload: datatypes.JSON(data),
	}
	if payload.PlayerID > 0 {
		if id, ok := game.PlayerDBIDs[payload.PlayerID]; ok {
			playerID := id
			record.PlayerID = &playerID
		}
	}
	return s.db.Create(&record).Error
}

func (s *Server) listEvents(game *Game) ([]map[string]any, error) {
	if s.db == nil || game.DBID == 0 {
		return []map[string]any{}, nil
	}
	var records []db.Event
	if err := s.db.Where("game_id = ?", game.DBID).Order("id asc").Find(&records).Error; err != nil {
		return nil, err
	}
	events := make([]map[string]any, 0, len(records))
	for _, record := range records {
		var payload map[string]any
		_ = json.Unmarshal(record.Payload, &payload)
		events = append(events, map[string]any{
			"id":         record.ID,
			"type":       record.Type,
			"payload":    payload,
			"created_at": record.CreatedAt,
		})
	}
	return events, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
