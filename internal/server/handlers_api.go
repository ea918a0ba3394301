package server

import (
	"log"
	"net/http"
	"time"

	"busfahrer/internal/web"
)

type joinRequest struct {
	Name   string `json:"name"`
	Gender string `json:"gender"`
	Role   string `json:"role"`
	Avatar string `json:"avatar"`
	Title  string `json:"title"`
}

type startRequest struct {
	PlayerID  int    `json:"player_id"`
	AuthToken string `json:"auth_token"`
}

type revealRequest struct {
	PlayerID  int    `json:"player_id"`
	AuthToken string `json:"auth_token"`
	RowIndex  int    `json:"row_index"`
}

type layRequest struct {
	PlayerID  int    `json:"player_id"`
	AuthToken string `json:"auth_token"`
	CardIndex int    `json:"card_index"`
	TargetID  int    `json:"target_id"`
}

type predictRequest struct {
	PlayerID  int    `json:"player_id"`
	AuthToken string `json:"auth_token"`
	Direction string `json:"direction"`
	Position  int    `json:"position"`
	Round     int    `json:"round"`
}

type adjustRequest struct {
	PlayerID  int    `json:"player_id"`
	AuthToken string `json:"auth_token"`
	TargetID  int    `json:"target_id"`
	Delta     int    `json:"delta"`
	Kind      string `json:"kind"`
}

type kickRequest struct {
	PlayerID  int    `json:"player_id"`
	AuthToken string `json:"auth_token"`
	TargetID  int    `json:"target_id"`
	Spectator bool   `json:"spectator"`
}

type leaveRequest struct {
	PlayerID    int    `json:"player_id"`
	SpectatorID int    `json:"spectator_id"`
	AuthToken   string `json:"auth_token"`
}

type retryRequest struct {
	PlayerID  int    `json:"player_id"`
	AuthToken string `json:"auth_token"`
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = web.Home().Render(r.Context(), w)
}

func (s *Server) handleGameSubroutes(w http.ResponseWriter, r *http.Request) {
	gameID, action, ok := parseGamePath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet:
		switch action {
		case "":
			s.handleGetGame(w, r, gameID)
		case "events":
			s.handleEvents(w, r, gameID)
		case "qr":
			s.handleJoinQR(w, r, gameID)
		default:
			http.NotFound(w, r)
		}
	case http.MethodPost:
		switch action {
		case "join":
			s.handleJoinGame(w, r, gameID)
		case "start":
			s.handleStartGame(w, r, gameID)
		case "reveal":
			s.handleReveal(w, r, gameID)
		case "lay":
			s.handleLay(w, r, gameID)
		case "predict":
			s.handlePredict(w, r, gameID)
		case "adjust":
			s.handleAdjust(w, r, gameID)
		case "kick":
			s.handleKick(w, r, gameID)
		case "leave":
			s.handleLeave(w, r, gameID)
		case "retry":
			s.handleRetry(w, r, gameID)
		default:
			http.NotFound(w, r)
		}
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	game := s.store.CreateGame(time.Now().UnixNano())
	if err := s.persistGame(game); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create game")
		return
	}
	log.Printf("game created game_id=%s join_code=%s", game.ID, game.JoinCode)
	writeJSON(w, http.StatusCreated, map[string]string{
		"game_id":   game.ID,
		"join_code": game.JoinCode,
	})
	s.broadcastHomeUpdate()
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request, gameID string) {
	game, ok := s.store.GetGame(gameID)
	if !ok {
		if byCode, found := s.store.FindGameByJoinCode(gameID); found {
			game = byCode
		} else {
			http.NotFound(w, r)
			return
		}
	}
	writeJSON(w, http.StatusOK, snapshot(game))
}

func (s *Server) handleJoinGame(w http.ResponseWriter, r *http.Request, gameID string) {
	var req joinRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	name, err := validateName(req.Name)
	if err != nil {
		writeActionError(w, err)
		return
	}
	gender, err := validateGender(req.Gender)
	if err != nil {
		writeActionError(w, err)
		return
	}
	role, err := validateRole(req.Role)
	if err != nil {
		writeActionError(w, err)
		return
	}
	avatar, err := validateAvatarRef(req.Avatar)
	if err != nil {
		writeActionError(w, err)
		return
	}
	title, err := validateTitle(req.Title)
	if err != nil {
		writeActionError(w, err)
		return
	}

	game, player, spectator, err := s.store.AddPlayer(gameID, name, gender, role)
	if err != nil {
		writeActionError(w, err)
		return
	}

	resp := map[string]any{
		"game_id":   game.ID,
		"join_code": game.JoinCode,
		"name":      name,
	}
	if player != nil {
		player.AvatarRef = avatar
		player.Title = title
		resp["player_id"] = player.ID
		resp["auth_token"] = player.AuthToken
		resp["is_game_master"] = player.IsGameMaster
		if err := s.persistPlayer(game, player.ID, name, gender, false, player.IsGameMaster); err != nil {
			log.Printf("persist player failed game_id=%s player_id=%d error=%v", game.ID, player.ID, err)
		}
		log.Printf("player joined game_id=%s player_id=%d player_name=%s", game.ID, player.ID, name)
	} else {
		spectator.AvatarRef = avatar
		resp["spectator_id"] = spectator.ID
		resp["auth_token"] = spectator.AuthToken
		if err := s.persistPlayer(game, 0, name, gender, true, false); err != nil {
			log.Printf("persist spectator failed game_id=%s error=%v", game.ID, err)
		}
		log.Printf("spectator joined game_id=%s spectator_id=%d name=%s", game.ID, spectator.ID, name)
	}
	writeJSON(w, http.StatusOK, resp)
	s.broadcastGameUpdate(game)
}

func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request, gameID string) {
	var req startRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	game, err := s.store.UpdateGame(gameID, func(game *Game) error {
		if _, err := verifyGameMasterToken(game, req.PlayerID, req.AuthToken); err != nil {
			return err
		}
		if game.Phase != phaseLobby {
			return errInvalidPhase("game already started")
		}
		_, err := advancePhase(s.cfg, game, transitionManual, time.Time{})
		return err
	})
	if err != nil {
		writeActionError(w, err)
		return
	}
	if err := s.persistPhase(game, "game_started", EventPayload{Phase: game.Phase, PlayerID: req.PlayerID}); err != nil {
		log.Printf("persist phase failed game_id=%s error=%v", game.ID, err)
	}
	log.Printf("game started game_id=%s players=%d", game.ID, len(game.Players))
	writeJSON(w, http.StatusOK, snapshot(game))
	s.broadcastGameUpdate(game)
}

func (s *Server) handleReveal(w http.ResponseWriter, r *http.Request, gameID string) {
	var req revealRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	phaseBefore := ""
	game, err := s.store.UpdateGame(gameID, func(game *Game) error {
		if _, err := verifyPlayerToken(game, req.PlayerID, req.AuthToken); err != nil {
			return err
		}
		phaseBefore = game.Phase
		return revealRow(s.cfg, game, req.PlayerID, req.RowIndex)
	})
	if err != nil {
		writeActionError(w, err)
		return
	}
	rowIndex := req.RowIndex
	if err := s.persistEvent(game, "row_revealed", EventPayload{PlayerID: req.PlayerID, RowIndex: &rowIndex}); err != nil {
		log.Printf("persist event failed game_id=%s error=%v", game.ID, err)
	}
	s.notePhaseAdvance(game, phaseBefore)
	writeJSON(w, http.StatusOK, snapshot(game))
	s.broadcastGameUpdate(game)
}

func (s *Server) handleLay(w http.ResponseWriter, r *http.Request, gameID string) {
	var req layRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	phaseBefore := ""
	var newEntries []DrinkEntry
	game, err := s.store.UpdateGame(gameID, func(game *Game) error {
		if _, err := verifyPlayerToken(game, req.PlayerID, req.AuthToken); err != nil {
			return err
		}
		phaseBefore = game.Phase
		ledgerStart := len(game.Ledger)
		var layErr error
		switch game.Phase {
		case phasePyramid:
			layErr = layPyramidCard(s.cfg, game, req.PlayerID, req.CardIndex, req.TargetID)
		case phaseDistribution:
			layErr = layDistributionCard(s.cfg, game, req.PlayerID, req.CardIndex)
		default:
			layErr = errInvalidPhase("no cards are laid in this phase")
		}
		if layErr == nil {
			newEntries = append([]DrinkEntry(nil), game.Ledger[ledgerStart:]...)
		}
		return layErr
	})
	if err != nil {
		writeActionError(w, err)
		return
	}
	if err := s.persistDrinks(game, newEntries); err != nil {
		log.Printf("persist drinks failed game_id=%s error=%v", game.ID, err)
	}
	if err := s.persistEvent(game, "card_laid", EventPayload{PlayerID: req.PlayerID, TargetID: req.TargetID}); err != nil {
		log.Printf("persist event failed game_id=%s error=%v", game.ID, err)
	}
	s.notePhaseAdvance(game, phaseBefore)
	writeJSON(w, http.StatusOK, snapshot(game))
	s.broadcastGameUpdate(game)
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request, gameID string) {
	var req predictRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	phaseBefore := ""
	var result *PredictResult
	var newEntries []DrinkEntry
	game, err := s.store.UpdateGame(gameID, func(game *Game) error {
		if _, err := verifyPlayerToken(game, req.PlayerID, req.AuthToken); err != nil {
			return err
		}
		phaseBefore = game.Phase
		ledgerStart := len(game.Ledger)
		var predictErr error
		result, predictErr = predictCard(s.cfg, game, req.PlayerID, req.Direction, req.Position, req.Round)
		if predictErr == nil {
			newEntries = append([]DrinkEntry(nil), game.Ledger[ledgerStart:]...)
		}
		return predictErr
	})
	if err != nil {
		writeActionError(w, err)
		return
	}
	if err := s.persistDrinks(game, newEntries); err != nil {
		log.Printf("persist drinks failed game_id=%s error=%v", game.ID, err)
	}
	if err := s.persistEvent(game, "prediction_resolved", EventPayload{
		PlayerID:  req.PlayerID,
		Direction: req.Direction,
		Correct:   &result.Correct,
		CardRank:  result.Card.Rank,
	}); err != nil {
		log.Printf("persist event failed game_id=%s error=%v", game.ID, err)
	}
	s.notePhaseAdvance(game, phaseBefore)
	writeJSON(w, http.StatusOK, map[string]any{
		"correct":  result.Correct,
		"card":     result.Card,
		"position": result.Position,
		"game":     snapshot(game),
	})
	s.broadcastGameUpdate(game)
}

// handleAdjust is the manual correction path for table disputes. Only
// the game master moves counters by hand.
func (s *Server) handleAdjust(w http.ResponseWriter, r *http.Request, gameID string) {
	var req adjustRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	kind := req.Kind
	if kind == "" {
		kind = drinkKindReceived
	}
	game, err := s.store.UpdateGame(gameID, func(game *Game) error {
		if _, err := verifyGameMasterToken(game, req.PlayerID, req.AuthToken); err != nil {
			return err
		}
		return adjustDrinks(game, req.TargetID, req.Delta, kind)
	})
	if err != nil {
		writeActionError(w, err)
		return
	}
	if err := s.persistEvent(game, "drinks_adjusted", EventPayload{
		PlayerID: req.PlayerID,
		TargetID: req.TargetID,
		Drinks:   req.Delta,
	}); err != nil {
		log.Printf("persist event failed game_id=%s error=%v", game.ID, err)
	}
	log.Printf("drinks adjusted game_id=%s target=%d delta=%d kind=%s", game.ID, req.TargetID, req.Delta, kind)
	writeJSON(w, http.StatusOK, snapshot(game))
	s.broadcastGameUpdate(game)
}

func (s *Server) handleKick(w http.ResponseWriter, r *http.Request, gameID string) {
	var req kickRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	removedName := ""
	phaseBefore := ""
	game, err := s.store.UpdateGame(gameID, func(game *Game) error {
		if _, err := verifyGameMasterToken(game, req.PlayerID, req.AuthToken); err != nil {
			return err
		}
		phaseBefore = game.Phase
		if req.Spectator {
			spectator, ok := findSpectator(game, req.TargetID)
			if !ok {
				return errNotFound("spectator not found")
			}
			removedName = spectator.Name
			removeSpectator(game, req.TargetID)
		} else {
			if req.TargetID == req.PlayerID {
				return errValidation("the game master cannot kick themselves")
			}
			target, ok := findPlayer(game, req.TargetID)
			if !ok {
				return errNotFound("player not found")
			}
			removedName = target.Name
			removePlayer(s.cfg, game, req.TargetID)
		}
		blockRejoin(game, removedName)
		return nil
	})
	if err != nil {
		writeActionError(w, err)
		return
	}
	if err := s.persistEvent(game, "member_kicked", EventPayload{
		PlayerID:   req.PlayerID,
		TargetID:   req.TargetID,
		PlayerName: removedName,
	}); err != nil {
		log.Printf("persist event failed game_id=%s error=%v", game.ID, err)
	}
	log.Printf("member kicked game_id=%s target=%s by=%d", game.ID, removedName, req.PlayerID)
	s.notePhaseAdvance(game, phaseBefore)
	writeJSON(w, http.StatusOK, snapshot(game))
	s.broadcastGameUpdate(game)
}

func (s *Server) handleLeave(w http.ResponseWriter, r *http.Request, gameID string) {
	var req leaveRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	leftName := ""
	phaseBefore := ""
	game, err := s.store.UpdateGame(gameID, func(game *Game) error {
		if err := verifyMemberToken(game, req.PlayerID, req.SpectatorID, req.AuthToken); err != nil {
			return err
		}
		phaseBefore = game.Phase
		if req.PlayerID > 0 {
			if player, ok := findPlayer(game, req.PlayerID); ok {
				leftName = player.Name
			}
			removePlayer(s.cfg, game, req.PlayerID)
		} else {
			if spectator, ok := findSpectator(game, req.SpectatorID); ok {
				leftName = spectator.Name
			}
			removeSpectator(game, req.SpectatorID)
		}
		return nil
	})
	if err != nil {
		writeActionError(w, err)
		return
	}
	if err := s.persistEvent(game, "member_left", EventPayload{PlayerID: req.PlayerID, PlayerName: leftName}); err != nil {
		log.Printf("persist event failed game_id=%s error=%v", game.ID, err)
	}
	log.Printf("member left game_id=%s name=%s", game.ID, leftName)
	s.notePhaseAdvance(game, phaseBefore)
	if memberCount(game) == 0 {
		s.cancelGraceTimer(game.ID)
		s.store.RemoveGame(game.ID)
		log.Printf("game removed game_id=%s reason=empty", game.ID)
		writeJSON(w, http.StatusOK, map[string]any{"game_id": game.ID, "removed": true})
		s.broadcastHomeUpdate()
		return
	}
	writeJSON(w, http.StatusOK, snapshot(game))
	s.broadcastGameUpdate(game)
}

func (s *Server) handleRetry(w http.ResponseWriter, r *http.Request, gameID string) {
	var req retryRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	game, err := s.store.UpdateGame(gameID, func(game *Game) error {
		if _, err := verifyGameMasterToken(game, req.PlayerID, req.AuthToken); err != nil {
			return err
		}
		resetToLobby(game)
		return nil
	})
	if err != nil {
		writeActionError(w, err)
		return
	}
	s.cancelGraceTimer(game.ID)
	if err := s.persistPhase(game, "game_reset", EventPayload{Phase: game.Phase, PlayerID: req.PlayerID}); err != nil {
		log.Printf("persist phase failed game_id=%s error=%v", game.ID, err)
	}
	log.Printf("game reset game_id=%s", game.ID)
	writeJSON(w, http.StatusOK, snapshot(game))
	s.broadcastGameUpdate(game)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request, gameID string) {
	game, ok := s.store.GetGame(gameID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	events, err := s.listEvents(game)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

// notePhaseAdvance records automatic transitions triggered inside an
// action (pyramid complete, hands exhausted, duel decided).
func (s *Server) notePhaseAdvance(game *Game, phaseBefore string) {
	if phaseBefore == "" || game.Phase == phaseBefore {
		return
	}
	payload := EventPayload{Phase: game.Phase, Reason: "auto"}
	if game.Survived != nil {
		payload.Survived = game.Survived
	}
	if err := s.persistPhase(game, "game_advanced", payload); err != nil {
		log.Printf("persist phase failed game_id=%s error=%v", game.ID, err)
	}
	log.Printf("game advanced game_id=%s from=%s to=%s", game.ID, phaseBefore, game.Phase)
	if game.Phase != phaseBus {
		s.cancelGraceTimer(game.ID)
	}
}
