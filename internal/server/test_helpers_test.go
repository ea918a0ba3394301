package server

import (
	"bytes"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"busfahrer/internal/config"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.BusGraceSeconds = 0
	return cfg
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	srv := New(nil, testConfig())
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test; listen unavailable: %v", err)
	}
	ts := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: srv.Handler()},
	}
	ts.Start()
	t.Cleanup(ts.Close)
	return srv, ts
}

func postJSON(t *testing.T, url string, payload any) (*http.Response, map[string]any) {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	res, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer res.Body.Close()
	var decoded map[string]any
	_ = json.NewDecoder(res.Body).Decode(&decoded)
	return res, decoded
}

func getJSON(t *testing.T, url string) (*http.Response, map[string]any) {
	t.Helper()
	res, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer res.Body.Close()
	var decoded map[string]any
	_ = json.NewDecoder(res.Body).Decode(&decoded)
	return res, decoded
}

func createTestGame(t *testing.T, ts *httptest.Server) (string, string) {
	t.Helper()
	res, data := postJSON(t, ts.URL+"/api/games", map[string]any{})
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create game: status %d body %v", res.StatusCode, data)
	}
	return data["game_id"].(string), data["join_code"].(string)
}

func joinTestPlayer(t *testing.T, ts *httptest.Server, gameID, name, gender string) (int, string) {
	t.Helper()
	res, data := postJSON(t, ts.URL+"/api/games/"+gameID+"/join", map[string]any{
		"name":   name,
		"gender": gender,
	})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("join %s: status %d body %v", name, res.StatusCode, data)
	}
	return int(data["player_id"].(float64)), data["auth_token"].(string)
}

func startTestGame(t *testing.T, ts *httptest.Server, gameID string, playerID int, token string) {
	t.Helper()
	res, data := postJSON(t, ts.URL+"/api/games/"+gameID+"/start", map[string]any{
		"player_id":  playerID,
		"auth_token": token,
	})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("start game: status %d body %v", res.StatusCode, data)
	}
}

func fetchSnapshot(t *testing.T, ts *httptest.Server, gameID string) map[string]any {
	t.Helper()
	res, data := getJSON(t, ts.URL+"/api/games/"+gameID)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("fetch snapshot: status %d body %v", res.StatusCode, data)
	}
	return data
}

func snapshotPlayer(t *testing.T, snap map[string]any, playerID int) map[string]any {
	t.Helper()
	players, ok := snap["players"].([]any)
	if !ok {
		t.Fatalf("snapshot has no players: %v", snap)
	}
	for _, entry := range players {
		player := entry.(map[string]any)
		if int(player["id"].(float64)) == playerID {
			return player
		}
	}
	t.Fatalf("player %d not in snapshot", playerID)
	return nil
}
