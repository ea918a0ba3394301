package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/websocket"
)

type wsHub struct {
	mu     sync.Mutex
	groups map[string]map[*websocket.Conn]struct{}
}

type homeHub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func newWSHub() *wsHub {
	return &wsHub{
		groups: make(map[string]map[*websocket.Conn]struct{}),
	}
}

func newHomeHub() *homeHub {
	return &homeHub{
		conns: make(map[*websocket.Conn]struct{}),
	}
}

func (h *wsHub) Add(gameID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.groups[gameID]
	if group == nil {
		group = make(map[*websocket.Conn]struct{})
		h.groups[gameID] = group
	}
	group[conn] = struct{}{}
}

func (h *wsHub) Remove(gameID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.groups[gameID]
	if group == nil {
		return
	}
	delete(group, conn)
	_ = conn.Close()
	if len(group) == 0 {
		delete(h.groups, gameID)
	}
}

func (h *wsHub) Send(conn *websocket.Conn, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	_ = conn.WriteMessage(websocket.TextMessage, data)
}

func (h *wsHub) Broadcast(gameID string, payload any) {
	h.mu.Lock()
	group := h.groups[gameID]
	conns := make([]*websocket.Conn, 0, len(group))
	for conn := range group {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.Remove(gameID, conn)
		}
	}
}

func (h *homeHub) Add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = struct{}{}
}

func (h *homeHub) Remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, conn)
	_ = conn.Close()
}

func (h *homeHub) Send(conn *websocket.Conn, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	_ = conn.WriteMessage(websocket.TextMessage, data)
}

func (h *homeHub) Broadcast(payload any) {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for conn := range h.conns {
		conns = append(conns, conn)
	}
	h.mu.Unlock()
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.Remove(conn)
		}
	}
}

// handleWebsocket attaches a session member. Players and spectators
// identify themselves with their auth token so reconnects flip the
// roster connection state; anonymous viewers just receive snapshots.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	gameID, ok := parseWebsocketPath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if _, exists := s.store.GetGame(gameID); !exists {
		http.NotFound(w, r)
		return
	}
	playerID, _ := strconv.Atoi(r.URL.Query().Get("player_id"))
	spectatorID, _ := strconv.Atoi(r.URL.Query().Get("spectator_id"))
	token := r.URL.Query().Get("token")

	if playerID > 0 || spectatorID > 0 {
		game, _ := s.store.GetGame(gameID)
		if err := verifyMemberToken(game, playerID, spectatorID, token); err != nil {
			http.Error(w, "invalid token", http.StatusForbidden)
			return
		}
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	log.Printf("ws connected game_id=%s player_id=%d spectator_id=%d remote=%s", gameID, playerID, spectatorID, r.RemoteAddr)
	s.ws.Add(gameID, conn)

	if playerID > 0 || spectatorID > 0 {
		game, err := s.store.UpdateGame(gameID, func(game *Game) error {
			markConnection(game, playerID, spectatorID, true)
			return nil
		})
		if err == nil {
			if playerID > 0 && game.Phase == phaseBus && game.Bus != nil && game.Bus.DriverID == playerID {
				s.cancelGraceTimer(gameID)
			}
			s.broadcastGameUpdate(game)
		}
	}
	if game, ok := s.store.GetGame(gameID); ok {
		s.ws.Send(conn, snapshot(game))
	}
	go s.readWS(gameID, conn, playerID, spectatorID)
}

func (s *Server) handleHomeWebsocket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	log.Printf("ws connected home remote=%s", r.RemoteAddr)
	s.homeWS.Add(conn)
	s.homeWS.Send(conn, map[string]any{
		"games": s.store.ListGameSummaries(),
	})
	go s.readHomeWS(conn)
}

func (s *Server) readWS(gameID string, conn *websocket.Conn, playerID, spectatorID int) {
	defer s.ws.Remove(gameID, conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			log.Printf("ws disconnected game_id=%s player_id=%d error=%v", gameID, playerID, err)
			if playerID > 0 || spectatorID > 0 {
				s.memberDisconnected(gameID, playerID, spectatorID)
			}
			return
		}
	}
}

func (s *Server) readHomeWS(conn *websocket.Conn) {
	defer s.homeWS.Remove(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			log.Printf("home ws disconnected error=%v", err)
			return
		}
	}
}

// memberDisconnected flips roster state without mutating game
// progress. Disconnection is not an error; a disconnected driver only
// starts the phase-3 grace timer.
func (s *Server) memberDisconnected(gameID string, playerID, spectatorID int) {
	game, err := s.store.UpdateGame(gameID, func(game *Game) error {
		markConnection(game, playerID, spectatorID, false)
		return nil
	})
	if err != nil {
		return
	}
	if playerID > 0 && game.Phase == phaseBus && game.Bus != nil && game.Bus.DriverID == playerID {
		s.scheduleGraceTimer(game)
	}
	s.broadcastGameUpdate(game)
}

func (s *Server) broadcastGameUpdate(game *Game) {
	if s.ws == nil {
		return
	}
	s.ws.Broadcast(game.ID, snapshot(game))
	s.broadcastHomeUpdate()
}

func (s *Server) broadcastHomeUpdate() {
	if s.homeWS == nil {
		return
	}
	s.homeWS.Broadcast(map[string]any{
		"games": s.store.ListGameSummaries(),
	})
}
