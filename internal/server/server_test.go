package server

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stakahashi/shiritori.space/internal/jisho"
	"github.com/stakahashi/shiritori.space/internal/lobby"
	"github.com/stakahashi/shiritori.space/internal/shiritori"
)

// nounDictionary echoes every keyword back as a noun entry.
func nounDictionary(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keyword := r.URL.Query().Get("keyword")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"data":[{"japanese":[{"reading":%q}],"senses":[{"parts_of_speech":["Noun"]}]}]}`, keyword)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func openStream(t *testing.T, baseURL, lobbyID, playerID string) *bufio.Reader {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/sse?lobbyId=%s&playerId=%s", baseURL, lobbyID, playerID), nil)
	if err != nil {
		t.Fatalf("build sse request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("open sse stream: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return bufio.NewReader(resp.Body)
}

func awaitCode(t *testing.T, br *bufio.Reader, code int) map[string]any {
	t.Helper()
	for {
		payload := readEvent(t, br)
		if responseCode(payload) == code {
			return payload
		}
	}
}

func TestGameFlowOverTransport(t *testing.T) {
	dict := nounDictionary(t)

	coordinator := shiritori.NewCoordinator(jisho.NewClient(dict.URL, nil))
	reg := lobby.NewRegistry(lobby.Config{LobbyIdle: time.Hour, PlayerGrace: time.Hour}, coordinator)
	coordinator.Bind(reg)
	t.Cleanup(reg.Close)

	handler := newHandler(reg)
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	lobbyID := mustStartLobby(t, handler)
	players := map[string]string{
		"alice": mustJoin(t, handler, lobbyID, "alice"),
		"bob":   mustJoin(t, handler, lobbyID, "bob"),
	}

	streams := map[string]*bufio.Reader{
		"alice": openStream(t, ts.URL, lobbyID, players["alice"]),
		"bob":   openStream(t, ts.URL, lobbyID, players["bob"]),
	}
	for name, br := range streams {
		snapshot := awaitCode(t, br, lobby.PushPlayerInit)
		if snapshot["playerName"] != name {
			t.Fatalf("snapshot for %s = %v", name, snapshot)
		}
	}

	for name := range players {
		status := postOp(t, handler, map[string]any{
			"type": "ready", "lobbyId": lobbyID, "clientId": players[name], "ready": true,
		})
		if status.Response != 600 {
			t.Fatalf("ready %s = %+v", name, status)
		}
	}
	awaitCode(t, streams["alice"], lobby.PushGameStart)

	turn := awaitCode(t, streams["alice"], shiritori.PushPlayerTurn)
	holder, ok := turn["player"].(string)
	if !ok || players[holder] == "" {
		t.Fatalf("turn announcement = %v", turn)
	}

	status := postOp(t, handler, map[string]any{
		"type": "msg", "lobbyId": lobbyID, "clientId": players[holder],
		"subtype": "word", "word": "ごま",
	})
	if status.Response != 600 {
		t.Fatalf("submit word = %+v", status)
	}

	move := awaitCode(t, streams["bob"], shiritori.PushMoveMade)
	if move["word"] != "ごま" || move["player"] != holder {
		t.Fatalf("move = %v", move)
	}
	next := awaitCode(t, streams["bob"], shiritori.PushPlayerTurn)
	if next["player"] == holder {
		t.Fatalf("turn did not advance: %v", next)
	}
}
