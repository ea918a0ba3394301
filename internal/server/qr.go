package server

import (
	"fmt"
	"net/http"

	qrcode "github.com/skip2/go-qrcode"
)

// handleJoinQR renders the join link as a QR PNG for the lobby screen.
func (s *Server) handleJoinQR(w http.ResponseWriter, r *http.Request, gameID string) {
	game, ok := s.store.GetGame(gameID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	joinURL := fmt.Sprintf("%s/join/%s", s.cfg.PublicBaseURL, game.JoinCode)
	png, err := qrcode.Encode(joinURL, qrcode.Medium, 256)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to render QR code")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
