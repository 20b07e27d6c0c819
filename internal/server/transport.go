package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/stakahashi/shiritori.space/internal/lobby"
	platformerrors "github.com/stakahashi/shiritori.space/internal/platform/errors"
	"golang.org/x/net/websocket"
)

const (
	maxNameRunes        = 15
	maxRequestBodyBytes = 16 * 1024

	sseHeartbeatInterval   = 30 * time.Second
	maxDecodeErrorsPerConn = 3
)

// statusPayload is the JSON envelope every operation response and stream
// error carries.
type statusPayload struct {
	Response int    `json:"response"`
	Message  string `json:"message"`
}

// opRequest is the envelope for POST /shiritori operations. Type selects the
// operation; the remaining fields are read per operation.
type opRequest struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Pass        string `json:"pass"`
	LobbyID     string `json:"lobbyId"`
	DisplayName string `json:"displayName"`
	ClientID    string `json:"clientId"`
	Ready       bool   `json:"ready"`
}

// wsFrame is an inbound WebSocket frame. Type "msg" forwards the whole frame
// to the game layer; type "ready" submits a ready state.
type wsFrame struct {
	Type  string `json:"type"`
	Ready bool   `json:"ready"`
}

type transport struct {
	registry *lobby.Registry
}

// newHandler builds the HTTP surface: the operation endpoint, both push
// stream attachments, and the health paths.
func newHandler(reg *lobby.Registry) http.Handler {
	t := &transport{registry: reg}
	mux := http.NewServeMux()
	mux.HandleFunc("/", t.handleRoot)
	mux.HandleFunc("/up", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	mux.HandleFunc("/shiritori", t.handleOps)
	mux.HandleFunc("/sse", t.handleSSE)

	wsHandler := websocket.Handler(t.handleWS)
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		wsHandler.ServeHTTP(w, r)
	})
	return mux
}

func (t *transport) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprintf(w, "<pre>The server is running :)<br>https://%s/shiritori</pre>", r.Host)
}

func (t *transport) handleOps(w http.ResponseWriter, r *http.Request) {
	writeCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	if err != nil {
		sendCode(w, platformerrors.WireFail, "unreadable request body")
		return
	}
	var req opRequest
	if err := json.Unmarshal(body, &req); err != nil {
		sendCode(w, platformerrors.WireFail, "malformed request body")
		return
	}

	switch req.Type {
	case "start":
		t.handleStart(w, req)
	case "validateId":
		t.handleValidate(w, req)
	case "join":
		t.handleJoin(w, req)
	case "ready":
		t.handleReady(w, req)
	case "msg":
		t.handleMsg(w, req, body)
	default:
		sendCode(w, platformerrors.CodeRequestTypeInvalid.WireCode(), "Request Type Unknown")
	}
}

// handleStart creates a lobby. A successful response carries the new lobby
// identifier in the message field.
func (t *transport) handleStart(w http.ResponseWriter, req opRequest) {
	if !validName(req.Name) {
		sendCode(w, platformerrors.CodeLobbyNameInvalid.WireCode(), "Invalid lobby name")
		return
	}
	if !validName(req.Pass) {
		sendCode(w, platformerrors.CodeLobbyPassInvalid.WireCode(), "Invalid lobby pass")
		return
	}
	l, err := t.registry.CreateLobby(req.Name, req.Pass)
	if err != nil {
		sendError(w, err)
		return
	}
	sendCode(w, platformerrors.WireSuccess, l.ID())
}

func (t *transport) handleValidate(w http.ResponseWriter, req opRequest) {
	if req.LobbyID == "" {
		sendCode(w, platformerrors.CodeLobbyIDMissing.WireCode(), "Missing LobbyID")
		return
	}
	if _, ok := t.registry.Lobby(req.LobbyID); ok {
		sendCode(w, platformerrors.WireSuccess, "LobbyID valid")
		return
	}
	sendCode(w, platformerrors.WireFail, "LobbyID invalid")
}

// handleJoin admits a player into a lobby. A successful response carries the
// new player identifier in the message field.
func (t *transport) handleJoin(w http.ResponseWriter, req opRequest) {
	l, ok := t.registry.Lobby(req.LobbyID)
	if !ok {
		sendCode(w, platformerrors.CodeLobbyNotFound.WireCode(), "Lobby doesn't exist!")
		return
	}
	if req.Pass != l.Pass() {
		sendCode(w, platformerrors.CodePassWrong.WireCode(), "password incorrect")
		return
	}
	if req.DisplayName == "" {
		sendCode(w, platformerrors.CodePlayerNameInvalid.WireCode(), "invalid name")
		return
	}
	playerID, err := l.AddPlayer(req.DisplayName)
	if err != nil {
		sendError(w, err)
		return
	}
	sendCode(w, platformerrors.WireSuccess, playerID)
}

// handleReady submits a ready state. The acknowledgement and the updated
// ready list travel over the push stream; unknown lobbies and players are
// ignored so the response is always a success envelope.
func (t *transport) handleReady(w http.ResponseWriter, req opRequest) {
	t.registry.WithLobby(req.LobbyID, func(l *lobby.Lobby) {
		l.SetPlayerReady(req.ClientID, req.Ready)
	})
	sendCode(w, platformerrors.WireSuccess, "ready submitted")
}

// handleMsg forwards the full request body to the game layer on behalf of
// the submitting player.
func (t *transport) handleMsg(w http.ResponseWriter, req opRequest, body []byte) {
	l, ok := t.registry.Lobby(req.LobbyID)
	if !ok {
		sendCode(w, platformerrors.CodeLobbyNotFound.WireCode(), "Lobby doesn't exist!")
		return
	}
	if err := l.HandleMessage(req.ClientID, body); err != nil {
		sendError(w, err)
		return
	}
	sendCode(w, platformerrors.WireSuccess, "message submitted")
}

// handleSSE attaches a Server-Sent Events stream to a player and pumps push
// payloads until the client disconnects. The stream always opens with a 200
// and event-stream headers; validation failures arrive as data frames so
// EventSource clients can read them.
func (t *transport) handleSSE(w http.ResponseWriter, r *http.Request) {
	writeCORS(w)
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	query := r.URL.Query()
	lobbyID := query.Get("lobbyId")
	playerID := query.Get("playerId")
	if lobbyID == "" {
		writeEvent(w, flusher, statusPayload{Response: platformerrors.CodeLobbyIDMissing.WireCode(), Message: "missing lobbyId"})
		return
	}
	if playerID == "" {
		writeEvent(w, flusher, statusPayload{Response: platformerrors.CodePlayerIDMissing.WireCode(), Message: "no player id"})
		return
	}
	l, ok := t.registry.Lobby(lobbyID)
	if !ok {
		writeEvent(w, flusher, statusPayload{Response: platformerrors.CodeLobbyNotFound.WireCode(), Message: "invalid lobby"})
		return
	}

	conn := newStreamConn()
	if err := l.AttachConn(playerID, conn); err != nil {
		writeEvent(w, flusher, statusPayload{Response: platformerrors.WireCode(err), Message: "player not found"})
		return
	}
	defer func() {
		l.DetachConn(playerID, conn)
		conn.close()
	}()

	ticker := time.NewTicker(sseHeartbeatInterval)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		case <-conn.notify:
			for _, v := range conn.take() {
				writeEvent(w, flusher, v)
			}
		}
	}
}

// handleWS attaches a WebSocket to a player. Outbound push payloads are
// encoded as JSON values; inbound frames submit moves and ready states so a
// WebSocket client does not need the operation endpoint once joined.
func (t *transport) handleWS(ws *websocket.Conn) {
	defer func() {
		_ = ws.Close()
	}()

	enc := json.NewEncoder(ws)
	// Direct writes are safe here: the writer goroutine starts only after
	// the attach succeeds.
	reject := func(code int, message string) {
		if err := enc.Encode(statusPayload{Response: code, Message: message}); err != nil {
			log.Printf("websocket write failed: %v", err)
		}
	}

	query := ws.Request().URL.Query()
	lobbyID := query.Get("lobbyId")
	playerID := query.Get("playerId")
	if lobbyID == "" {
		reject(platformerrors.CodeLobbyIDMissing.WireCode(), "missing lobbyId")
		return
	}
	if playerID == "" {
		reject(platformerrors.CodePlayerIDMissing.WireCode(), "no player id")
		return
	}
	l, ok := t.registry.Lobby(lobbyID)
	if !ok {
		reject(platformerrors.CodeLobbyNotFound.WireCode(), "invalid lobby")
		return
	}

	conn := newStreamConn()
	if err := l.AttachConn(playerID, conn); err != nil {
		reject(platformerrors.WireCode(err), "player not found")
		return
	}
	defer l.DetachConn(playerID, conn)
	go wsWriteLoop(conn, enc)
	defer conn.close()

	decoder := json.NewDecoder(ws)
	decodeErrors := 0
	for {
		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			decodeErrors++
			conn.Send(statusPayload{Response: platformerrors.WireFail, Message: "invalid frame payload"})
			if decodeErrors >= maxDecodeErrorsPerConn {
				return
			}
			continue
		}
		decodeErrors = 0

		var frame wsFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			conn.Send(statusPayload{Response: platformerrors.WireFail, Message: "invalid frame payload"})
			continue
		}
		switch frame.Type {
		case "msg":
			if err := l.HandleMessage(playerID, raw); err != nil {
				conn.Send(statusPayload{Response: platformerrors.WireCode(err), Message: "player not found"})
			}
		case "ready":
			l.SetPlayerReady(playerID, frame.Ready)
		default:
			conn.Send(statusPayload{Response: platformerrors.CodeRequestTypeInvalid.WireCode(), Message: "Request Type Unknown"})
		}
	}
}

func validName(s string) bool {
	return s != "" && len([]rune(s)) <= maxNameRunes
}

func writeCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Origin, X-Requested-With, Content-Type, Accept")
}

func sendCode(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(statusPayload{Response: code, Message: message}); err != nil {
		log.Printf("write operation response: %v", err)
	}
}

func sendError(w http.ResponseWriter, err error) {
	sendCode(w, platformerrors.WireCode(err), err.Error())
}

func writeEvent(w io.Writer, flusher http.Flusher, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("marshal sse payload: %v", err)
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
	flusher.Flush()
}
