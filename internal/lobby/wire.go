package lobby

// Conn is a live push connection attached to a player. Send delivers one
// payload in call order and must not block; delivery is fire-and-forget.
type Conn interface {
	Send(v any)
}

// Push response codes recognized by connected clients. Broadcasts use the
// 10xx range, player-directed acknowledgements the 11xx range.
const (
	PushPlayersUpdated    = 1000
	PushReadyStateUpdated = 1001
	PushGameStart         = 1002
	PushGameEnd           = 1003
	PushPlayerInit        = 1100
	PushReadyReceived     = 1101
)

// InitPayload is the full state snapshot unicast on connection attach.
// PlayerList and ReadyStates are aligned by index so clients can zip them.
type InitPayload struct {
	Response    int      `json:"response"`
	LobbyName   string   `json:"lobbyName"`
	PlayerName  string   `json:"playerName"`
	PlayerList  []string `json:"playerList"`
	ReadyStates []bool   `json:"readyStates"`
}

// RosterPayload announces the updated player list to all players.
type RosterPayload struct {
	Response   int      `json:"response"`
	PlayerList []string `json:"playerList"`
}

// ReadyStatesPayload announces the updated ready flags, ordered like the roster.
type ReadyStatesPayload struct {
	Response    int    `json:"response"`
	ReadyStates []bool `json:"readyStates"`
}

// AckPayload acknowledges a state submission to the submitting player.
type AckPayload struct {
	Response int `json:"response"`
}

// SignalPayload carries a bare broadcast signal such as game start or end.
type SignalPayload struct {
	Response int `json:"response"`
}
