package lobby

import (
	"encoding/json"
	"sync"

	"github.com/stakahashi/shiritori.space/internal/platform/errors"
)

// Lobby is a bounded group of players sharing a session identifier and
// shared secret. Player order is insertion order and every roster-shaped
// payload reports players in that order.
type Lobby struct {
	id   string
	name string
	pass string

	mu         sync.Mutex
	players    []*Player
	byID       map[string]*Player
	started    bool
	maxPlayers int
	extras     any

	timer          *IdleTimer
	hooks          Hooks
	newID          func() (string, error)
	newPlayerTimer func(playerID string) *IdleTimer
}

// ID returns the lobby identifier.
func (l *Lobby) ID() string { return l.id }

// Name returns the lobby display name.
func (l *Lobby) Name() string { return l.name }

// Pass returns the shared secret required to join.
func (l *Lobby) Pass() string { return l.pass }

// Started reports whether a game is currently active.
func (l *Lobby) Started() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.started
}

// PlayerCount returns the number of players currently in the lobby.
func (l *Lobby) PlayerCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.players)
}

// Player looks up a player by identifier.
func (l *Lobby) Player(playerID string) (*Player, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.byID[playerID]
	return p, ok
}

// Players returns the current players in insertion order.
func (l *Lobby) Players() []*Player {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*Player, len(l.players))
	copy(out, l.players)
	return out
}

// Extras returns the opaque game-state slot.
func (l *Lobby) Extras() any {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.extras
}

// SetExtras stores game state in the opaque slot. The slot is owned by the
// game layer; the engine never inspects it.
func (l *Lobby) SetExtras(v any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.extras = v
}

// AddPlayer creates a player with the given display name and inserts it.
// It rejects a full roster, a started lobby, and duplicate names, in that
// order. Joining the empty lobby stops the idle eviction timer. The new
// player's eviction timer starts immediately since no connection is
// attached yet.
func (l *Lobby) AddPlayer(name string) (string, error) {
	l.mu.Lock()
	if len(l.players) >= l.maxPlayers {
		l.mu.Unlock()
		return "", errors.New(errors.CodeLobbyFull, "lobby is full")
	}
	if l.started {
		l.mu.Unlock()
		return "", errors.New(errors.CodeLobbyStarted, "lobby already started")
	}
	for _, existing := range l.players {
		if existing.name == name {
			l.mu.Unlock()
			return "", errors.WithMetadata(errors.CodeNameInUse, "name taken", map[string]string{"name": name})
		}
	}

	playerID, err := l.newID()
	if err != nil {
		l.mu.Unlock()
		return "", errors.Wrap(errors.CodeUnknown, "generate player id", err)
	}
	p := &Player{
		id:    playerID,
		name:  name,
		lobby: l,
		timer: l.newPlayerTimer(playerID),
	}
	l.players = append(l.players, p)
	l.byID[playerID] = p
	if len(l.players) == 1 {
		l.timer.Stop()
	}
	p.timer.Start()
	l.broadcastRosterLocked()
	l.mu.Unlock()

	l.hooks.PlayerJoined(l, p)
	return playerID, nil
}

// RemovePlayer deletes the player and broadcasts the updated roster. It is a
// no-op for an unknown identifier. Removing the last player restarts the
// lobby idle timer.
func (l *Lobby) RemovePlayer(playerID string) {
	l.mu.Lock()
	p, ok := l.byID[playerID]
	if !ok {
		l.mu.Unlock()
		return
	}
	p.timer.Stop()
	delete(l.byID, playerID)
	for i, existing := range l.players {
		if existing == p {
			l.players = append(l.players[:i], l.players[i+1:]...)
			break
		}
	}
	l.broadcastRosterLocked()
	if len(l.players) == 0 {
		l.timer.Start()
	}
	l.mu.Unlock()

	l.hooks.PlayerLeft(l, p)
}

// AttachConn binds a push connection to the player and unicasts the full
// state snapshot. Payloads buffered while disconnected flush first, in
// original order.
func (l *Lobby) AttachConn(playerID string, conn Conn) error {
	l.mu.Lock()
	p, ok := l.byID[playerID]
	if !ok {
		l.mu.Unlock()
		return errors.New(errors.CodePlayerNotFound, "player not found")
	}
	p.attachLocked(conn)
	p.sendLocked(InitPayload{
		Response:    PushPlayerInit,
		LobbyName:   l.name,
		PlayerName:  p.name,
		PlayerList:  l.playerNamesLocked(),
		ReadyStates: l.readyStatesLocked(),
	})
	l.mu.Unlock()

	l.hooks.ConnAttached(l, p)
	return nil
}

// DetachConn clears the player's connection if conn is still the attached
// one and restarts the eviction grace timer. Stale detaches from a replaced
// connection are ignored.
func (l *Lobby) DetachConn(playerID string, conn Conn) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if p, ok := l.byID[playerID]; ok {
		p.detachLocked(conn)
	}
}

// Broadcast delivers the payload to every current player in roster order.
func (l *Lobby) Broadcast(v any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.broadcastLocked(v)
}

// SendTo unicasts the payload to one player. Unknown players are ignored.
func (l *Lobby) SendTo(playerID string, v any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if p, ok := l.byID[playerID]; ok {
		p.sendLocked(v)
	}
}

// SetPlayerReady records a ready-state submission. The submitting player
// receives an acknowledgement and everyone receives the updated ready list.
// When the new state is ready and at least two players are all ready, the
// game starts: the start signal broadcasts, the started flag is set, and the
// GameStarted hook fires. Unknown players are ignored.
func (l *Lobby) SetPlayerReady(playerID string, ready bool) {
	l.mu.Lock()
	p, ok := l.byID[playerID]
	if !ok {
		l.mu.Unlock()
		return
	}
	p.ready = ready
	p.sendLocked(AckPayload{Response: PushReadyReceived})
	l.broadcastLocked(ReadyStatesPayload{Response: PushReadyStateUpdated, ReadyStates: l.readyStatesLocked()})

	started := false
	if ready && !l.started && len(l.players) >= 2 && l.allReadyLocked() {
		l.broadcastLocked(SignalPayload{Response: PushGameStart})
		l.started = true
		started = true
	}
	l.mu.Unlock()

	if started {
		l.hooks.GameStarted(l)
	}
}

// EndGame returns the lobby to its pre-start state: the started flag clears,
// every ready flag resets, the reset ready list broadcasts, then the end
// signal broadcasts.
func (l *Lobby) EndGame() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.started = false
	for _, p := range l.players {
		p.ready = false
	}
	l.broadcastLocked(ReadyStatesPayload{Response: PushReadyStateUpdated, ReadyStates: l.readyStatesLocked()})
	l.broadcastLocked(SignalPayload{Response: PushGameEnd})
}

// HandleMessage reports an inbound player payload to the game layer.
func (l *Lobby) HandleMessage(playerID string, msg json.RawMessage) error {
	l.mu.Lock()
	p, ok := l.byID[playerID]
	l.mu.Unlock()
	if !ok {
		return errors.New(errors.CodePlayerNotFound, "player not found")
	}

	l.hooks.PlayerMessage(l, p, msg)
	return nil
}

// PlayerNames returns the display names in roster order.
func (l *Lobby) PlayerNames() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.playerNamesLocked()
}

// ReadyStates returns the ready flags in roster order.
func (l *Lobby) ReadyStates() []bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.readyStatesLocked()
}

func (l *Lobby) broadcastLocked(v any) {
	for _, p := range l.players {
		p.sendLocked(v)
	}
}

func (l *Lobby) broadcastRosterLocked() {
	l.broadcastLocked(RosterPayload{Response: PushPlayersUpdated, PlayerList: l.playerNamesLocked()})
}

func (l *Lobby) playerNamesLocked() []string {
	names := make([]string, len(l.players))
	for i, p := range l.players {
		names[i] = p.name
	}
	return names
}

func (l *Lobby) readyStatesLocked() []bool {
	states := make([]bool, len(l.players))
	for i, p := range l.players {
		states[i] = p.ready
	}
	return states
}

func (l *Lobby) allReadyLocked() bool {
	for _, p := range l.players {
		if !p.ready {
			return false
		}
	}
	return true
}

// stopTimers disarms the lobby timer and every player timer. Used during
// teardown so no eviction callback fires after removal.
func (l *Lobby) stopTimers() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.timer.Stop()
	for _, p := range l.players {
		p.timer.Stop()
	}
}
