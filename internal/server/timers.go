package server

import (
	"log"
	"time"
)

// scheduleGraceTimer arms the phase-3 disconnect policy: if the driver
// stays disconnected past the grace period, one "higher" prediction is
// auto-resolved so a dropped connection cannot stall the duel.
// Phases 1 and 2 need no skip logic since any eligible player may act.
func (s *Server) scheduleGraceTimer(game *Game) {
	grace := time.Duration(s.cfg.BusGraceSeconds) * time.Second
	if grace <= 0 {
		return
	}
	s.timersMu.Lock()
	if existing, ok := s.timers[game.ID]; ok {
		existing.Stop()
	}
	gameID := game.ID
	s.timers[gameID] = time.AfterFunc(grace, func() {
		s.autoPredict(gameID)
	})
	s.timersMu.Unlock()
}

func (s *Server) cancelGraceTimer(gameID string) {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()
	if timer, ok := s.timers[gameID]; ok {
		timer.Stop()
		delete(s.timers, gameID)
	}
}

func (s *Server) autoPredict(gameID string) {
	var result *PredictResult
	game, err := s.store.UpdateGame(gameID, func(game *Game) error {
		if game.Phase != phaseBus || game.Bus == nil {
			return errInvalidPhase("duel no longer running")
		}
		driver, ok := findPlayer(game, game.Bus.DriverID)
		if !ok || driver.Connected {
			return errOutOfTurn("driver is back")
		}
		var predictErr error
		result, predictErr = predictCard(s.cfg, game, game.Bus.DriverID, directionHigher, game.Bus.Position, game.Bus.Round)
		return predictErr
	})
	if err != nil {
		s.cancelGraceTimer(gameID)
		return
	}
	log.Printf("prediction auto-resolved game_id=%s correct=%t reason=grace_timeout", game.ID, result.Correct)
	if err := s.persistPhase(game, "prediction_auto_resolved", EventPayload{
		Phase:   game.Phase,
		Correct: &result.Correct,
		Reason:  "grace_timeout",
	}); err != nil {
		log.Printf("auto-predict persist failed game_id=%s error=%v", game.ID, err)
	}
	s.broadcastGameUpdate(game)
	if game.Phase == phaseBus {
		s.scheduleGraceTimer(game)
	} else {
		s.cancelGraceTimer(gameID)
	}
}
