package lobby

import (
	"errors"
	"sync"
	"testing"
	"time"

	platformerrors "github.com/stakahashi/shiritori.space/internal/platform/errors"
)

func TestCreateLobbyEnforcesGlobalCap(t *testing.T) {
	r := NewRegistry(Config{MaxLobbies: 2, LobbyIdle: time.Hour, PlayerGrace: time.Hour}, nil)
	t.Cleanup(r.Close)

	if _, err := r.CreateLobby("one", "p"); err != nil {
		t.Fatalf("create one: %v", err)
	}
	if _, err := r.CreateLobby("two", "p"); err != nil {
		t.Fatalf("create two: %v", err)
	}
	_, err := r.CreateLobby("three", "p")
	if !errors.Is(err, platformerrors.New(platformerrors.CodeLobbiesFull, "")) {
		t.Fatalf("expected capacity error, got %v", err)
	}
	if r.LobbyCount() != 2 {
		t.Fatalf("expected 2 lobbies, got %d", r.LobbyCount())
	}
}

func TestRemoveLobbyFreesCapacity(t *testing.T) {
	r := NewRegistry(Config{MaxLobbies: 1, LobbyIdle: time.Hour, PlayerGrace: time.Hour}, nil)
	t.Cleanup(r.Close)

	l, err := r.CreateLobby("one", "p")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	r.RemoveLobby(l.ID())
	if _, ok := r.Lobby(l.ID()); ok {
		t.Fatal("expected lobby to be gone")
	}
	if _, err := r.CreateLobby("two", "p"); err != nil {
		t.Fatalf("expected capacity to free up: %v", err)
	}
}

func TestRemoveLobbyUnknownIsNoop(t *testing.T) {
	r := NewRegistry(Config{}, nil)
	t.Cleanup(r.Close)
	r.RemoveLobby("missing")
}

func TestLobbyIDsUnique(t *testing.T) {
	r := NewRegistry(Config{MaxLobbies: 4, LobbyIdle: time.Hour, PlayerGrace: time.Hour}, nil)
	t.Cleanup(r.Close)

	seen := make(map[string]struct{})
	for i := 0; i < 4; i++ {
		l, err := r.CreateLobby("room", "p")
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		if _, ok := seen[l.ID()]; ok {
			t.Fatalf("duplicate lobby id %q", l.ID())
		}
		seen[l.ID()] = struct{}{}
	}
}

func TestEmptyLobbyExpires(t *testing.T) {
	r := NewRegistry(Config{LobbyIdle: 20 * time.Millisecond, PlayerGrace: time.Hour}, nil)
	t.Cleanup(r.Close)

	l, err := r.CreateLobby("room", "p")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	waitFor(t, func() bool {
		_, ok := r.Lobby(l.ID())
		return !ok
	})
}

func TestJoinCancelsLobbyExpiry(t *testing.T) {
	r := NewRegistry(Config{LobbyIdle: 40 * time.Millisecond, PlayerGrace: time.Hour}, nil)
	t.Cleanup(r.Close)

	l, err := r.CreateLobby("room", "p")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	mustAddPlayer(t, l, "a")

	time.Sleep(100 * time.Millisecond)
	if _, ok := r.Lobby(l.ID()); !ok {
		t.Fatal("lobby with a player must not expire")
	}
}

func TestLastLeaveRestartsLobbyExpiry(t *testing.T) {
	r := NewRegistry(Config{LobbyIdle: 20 * time.Millisecond, PlayerGrace: time.Hour}, nil)
	t.Cleanup(r.Close)

	l, err := r.CreateLobby("room", "p")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	idA := mustAddPlayer(t, l, "a")
	l.RemovePlayer(idA)

	waitFor(t, func() bool {
		_, ok := r.Lobby(l.ID())
		return !ok
	})
}

func TestDisconnectedPlayerExpiresAfterGrace(t *testing.T) {
	r := NewRegistry(Config{LobbyIdle: time.Hour, PlayerGrace: 20 * time.Millisecond}, nil)
	t.Cleanup(r.Close)

	l, err := r.CreateLobby("room", "p")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := l.AddPlayer("a"); err != nil {
		t.Fatalf("add: %v", err)
	}

	// The grace timer runs from creation until a connection attaches.
	waitFor(t, func() bool { return l.PlayerCount() == 0 })
}

func TestAttachStopsPlayerExpiry(t *testing.T) {
	r := NewRegistry(Config{LobbyIdle: time.Hour, PlayerGrace: 40 * time.Millisecond}, nil)
	t.Cleanup(r.Close)

	l, err := r.CreateLobby("room", "p")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	idA, err := l.AddPlayer("a")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	conn := &recordConn{}
	if err := l.AttachConn(idA, conn); err != nil {
		t.Fatalf("attach: %v", err)
	}

	time.Sleep(100 * time.Millisecond)
	if l.PlayerCount() != 1 {
		t.Fatal("connected player must not expire")
	}

	// Detach restarts the grace window.
	l.DetachConn(idA, conn)
	waitFor(t, func() bool { return l.PlayerCount() == 0 })
}

type lifecycleRecorder struct {
	NoopHooks
	mu     sync.Mutex
	events []string
}

func (h *lifecycleRecorder) LobbyCreated(l *Lobby) { h.record("create:" + l.Name()) }
func (h *lifecycleRecorder) LobbyDeleted(l *Lobby) { h.record("delete:" + l.Name()) }

func (h *lifecycleRecorder) record(event string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
}

func (h *lifecycleRecorder) snapshot() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.events))
	copy(out, h.events)
	return out
}

func TestLobbyLifecycleHooks(t *testing.T) {
	hooks := &lifecycleRecorder{}
	r := NewRegistry(Config{LobbyIdle: time.Hour, PlayerGrace: time.Hour}, hooks)
	t.Cleanup(r.Close)

	l, err := r.CreateLobby("room", "p")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	r.RemoveLobby(l.ID())

	events := hooks.snapshot()
	if len(events) != 2 || events[0] != "create:room" || events[1] != "delete:room" {
		t.Fatalf("unexpected lifecycle events: %v", events)
	}
}

func TestWithLobbySkipsDeleted(t *testing.T) {
	r := NewRegistry(Config{LobbyIdle: time.Hour, PlayerGrace: time.Hour}, nil)
	t.Cleanup(r.Close)

	l, err := r.CreateLobby("room", "p")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	r.RemoveLobby(l.ID())

	called := false
	r.WithLobby(l.ID(), func(*Lobby) { called = true })
	if called {
		t.Fatal("expected no callback for a deleted lobby")
	}
}
