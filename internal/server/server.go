package server

import (
	"net/http"
	"sync"
	"time"

	"busfahrer/internal/config"

	"gorm.io/gorm"
)

type Server struct {
	store    *Store
	db       *gorm.DB
	ws       *wsHub
	homeWS   *homeHub
	cfg      config.Config
	timersMu sync.Mutex
	timers   map[string]*time.Timer
}

func New(conn *gorm.DB, cfg config.Config) *Server {
	return &Server{
		store:  NewStore(cfg.MaxLobbyPlayers),
		db:     conn,
		ws:     newWSHub(),
		homeWS: newHomeHub(),
		cfg:    cfg,
		timers: make(map[string]*time.Timer),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", s.handleHome)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))
	mux.HandleFunc("POST /api/games", s.handleCreateGame)
	mux.HandleFunc("GET /api/games/", s.handleGameSubroutes)
	mux.HandleFunc("POST /api/games/", s.handleGameSubroutes)
	mux.HandleFunc("GET /ws/games/", s.handleWebsocket)
	mux.HandleFunc("GET /ws/home", s.handleHomeWebsocket)
	return mux
}
