package lobby

import (
	"log"
	"sync"
	"time"

	"github.com/stakahashi/shiritori.space/internal/platform/errors"
	"github.com/stakahashi/shiritori.space/internal/platform/id"
	"github.com/stakahashi/shiritori.space/internal/platform/timeouts"
)

// Config bounds the registry and sets the eviction windows. Zero values fall
// back to the defaults below.
type Config struct {
	MaxLobbies  int           // global cap on live lobbies
	MaxPlayers  int           // per-lobby roster cap
	LobbyIdle   time.Duration // how long an empty lobby survives
	PlayerGrace time.Duration // how long a disconnected player survives
}

const (
	defaultMaxLobbies = 4
	defaultMaxPlayers = 10
)

func (c Config) withDefaults() Config {
	if c.MaxLobbies <= 0 {
		c.MaxLobbies = defaultMaxLobbies
	}
	if c.MaxPlayers <= 0 {
		c.MaxPlayers = defaultMaxPlayers
	}
	if c.LobbyIdle <= 0 {
		c.LobbyIdle = timeouts.LobbyIdle
	}
	if c.PlayerGrace <= 0 {
		c.PlayerGrace = timeouts.PlayerGrace
	}
	return c
}

// Registry is a bounded collection of lobbies keyed by identifier. It has an
// explicit lifetime: construct with NewRegistry, tear down with Close.
type Registry struct {
	cfg   Config
	hooks Hooks
	newID func() (string, error)

	mu      sync.RWMutex
	lobbies map[string]*Lobby
}

// NewRegistry creates an empty registry. A nil hooks installs no-op hooks.
func NewRegistry(cfg Config, hooks Hooks) *Registry {
	if hooks == nil {
		hooks = NoopHooks{}
	}
	return &Registry{
		cfg:     cfg.withDefaults(),
		hooks:   hooks,
		newID:   id.NewID,
		lobbies: make(map[string]*Lobby),
	}
}

// CreateLobby constructs and registers a lobby with a fresh identifier. It
// fails with a capacity error once the configured maximum is reached. The
// new lobby's idle timer starts immediately since it holds no players.
func (r *Registry) CreateLobby(name, pass string) (*Lobby, error) {
	r.mu.Lock()
	if len(r.lobbies) >= r.cfg.MaxLobbies {
		r.mu.Unlock()
		return nil, errors.New(errors.CodeLobbiesFull, "lobby capacity reached")
	}

	lobbyID, err := r.newID()
	if err != nil {
		r.mu.Unlock()
		return nil, errors.Wrap(errors.CodeUnknown, "generate lobby id", err)
	}
	l := &Lobby{
		id:    lobbyID,
		name:  name,
		pass:  pass,
		byID:  make(map[string]*Player),
		hooks: r.hooks,
		newID: r.newID,

		maxPlayers: r.cfg.MaxPlayers,
	}
	l.timer = NewIdleTimer(r.cfg.LobbyIdle, func() { r.expireLobby(lobbyID) })
	l.newPlayerTimer = func(playerID string) *IdleTimer {
		return NewIdleTimer(r.cfg.PlayerGrace, func() { r.expirePlayer(lobbyID, playerID) })
	}
	r.lobbies[lobbyID] = l
	r.mu.Unlock()

	r.hooks.LobbyCreated(l)
	l.timer.Start()
	return l, nil
}

// Lobby looks up a lobby by identifier.
func (r *Registry) Lobby(lobbyID string) (*Lobby, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.lobbies[lobbyID]
	return l, ok
}

// RemoveLobby deregisters the lobby and stops its timers. It is a no-op for
// an unknown identifier.
func (r *Registry) RemoveLobby(lobbyID string) {
	r.mu.Lock()
	l, ok := r.lobbies[lobbyID]
	if ok {
		delete(r.lobbies, lobbyID)
	}
	r.mu.Unlock()
	if !ok {
		return
	}

	l.stopTimers()
	r.hooks.LobbyDeleted(l)
}

// WithLobby runs fn with the lobby if it still exists. Asynchronous
// completions use this to re-resolve their target; a completion for a
// deleted lobby is a no-op.
func (r *Registry) WithLobby(lobbyID string, fn func(*Lobby)) {
	if l, ok := r.Lobby(lobbyID); ok {
		fn(l)
	}
}

// LobbyCount returns the number of live lobbies.
func (r *Registry) LobbyCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.lobbies)
}

// Close tears down every lobby without firing deletion hooks.
func (r *Registry) Close() {
	r.mu.Lock()
	lobbies := make([]*Lobby, 0, len(r.lobbies))
	for _, l := range r.lobbies {
		lobbies = append(lobbies, l)
	}
	r.lobbies = make(map[string]*Lobby)
	r.mu.Unlock()

	for _, l := range lobbies {
		l.stopTimers()
	}
}

// expireLobby removes a lobby whose idle timer fired while it held no
// players. A timer that outlives its lobby, or that fires after a player
// joined, does nothing.
func (r *Registry) expireLobby(lobbyID string) {
	l, ok := r.Lobby(lobbyID)
	if !ok || l.PlayerCount() > 0 {
		return
	}
	log.Printf("lobby %s idle, removing", lobbyID)
	r.RemoveLobby(lobbyID)
}

// expirePlayer removes a player whose connection stayed detached for the
// full grace period.
func (r *Registry) expirePlayer(lobbyID, playerID string) {
	r.WithLobby(lobbyID, func(l *Lobby) {
		if p, ok := l.Player(playerID); ok && !p.Connected() {
			log.Printf("player %s in lobby %s timed out", playerID, lobbyID)
			l.RemovePlayer(playerID)
		}
	})
}
