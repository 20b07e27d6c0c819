// Package shiritori implements the word-chain game on top of the lobby
// engine. A Coordinator observes lobby lifecycle events through the engine's
// hooks, keeps the turn rotation in the lobby's game-state slot, and applies
// the chain rules plus an asynchronous dictionary verdict to every submitted
// word.
package shiritori

import (
	"context"
	"encoding/json"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/stakahashi/shiritori.space/internal/kana"
	"github.com/stakahashi/shiritori.space/internal/lobby"
	"github.com/stakahashi/shiritori.space/internal/random"
)

// Classifier decides whether a word is an acceptable dictionary noun.
// Lookups may block on network traffic, so the coordinator always calls
// IsNoun off the engine's locks.
type Classifier interface {
	IsNoun(ctx context.Context, word string) (bool, error)
}

// Coordinator runs the game for every lobby in a registry. It implements
// lobby.Hooks; install it when constructing the registry and bind the
// registry back afterwards so asynchronous verdicts can re-resolve their
// lobby by identifier.
type Coordinator struct {
	lobby.NoopHooks

	classifier Classifier
	registry   *lobby.Registry

	mu  sync.Mutex
	rng *rand.Rand
}

// NewCoordinator creates a coordinator using the given classifier for word
// verdicts.
func NewCoordinator(classifier Classifier) *Coordinator {
	seed, err := random.NewSeed()
	if err != nil {
		log.Printf("random seed: %v, falling back to clock", err)
		seed = time.Now().UnixNano()
	}
	return &Coordinator{
		classifier: classifier,
		rng:        rand.New(rand.NewSource(seed)),
	}
}

// Bind attaches the registry the coordinator serves. Must be called before
// any game starts.
func (c *Coordinator) Bind(r *lobby.Registry) { c.registry = r }

// game is the per-lobby turn state, stored in the lobby's game-state slot.
// Its mutex guards every field; when both locks are needed the game mutex
// is taken before any lobby operation, never the other way around.
type game struct {
	mu       sync.Mutex
	turns    []*lobby.Player
	current  int
	lastWord string
	seen     map[string]struct{}
	pending  string // word awaiting a dictionary verdict, empty when none
}

func gameOf(l *lobby.Lobby) *game {
	g, _ := l.Extras().(*game)
	return g
}

// GameStarted snapshots the roster into the turn rotation, picks a random
// starting player, and signals the opening turn. The empty game state is
// published before the roster is read so a leave racing the start prunes
// through PlayerLeft instead of surviving in a stale snapshot.
func (c *Coordinator) GameStarted(l *lobby.Lobby) {
	g := &game{seen: make(map[string]struct{})}
	l.SetExtras(g)

	g.mu.Lock()
	defer g.mu.Unlock()
	g.turns = l.Players()
	if len(g.turns) == 0 {
		l.SetExtras(nil)
		l.EndGame()
		return
	}
	if finishIfWon(l, g) {
		return
	}
	g.current = c.intn(len(g.turns))
	announceTurn(l, g)
}

// PlayerLeft drops a departed player from the turn rotation. If one player
// remains the game ends with them as winner; otherwise the turn index is
// clamped into the shortened rotation and play continues without a fresh
// turn announcement.
func (c *Coordinator) PlayerLeft(l *lobby.Lobby, p *lobby.Player) {
	g := gameOf(l)
	if g == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, turn := range g.turns {
		if turn == p {
			g.turns = append(g.turns[:i], g.turns[i+1:]...)
			if finishIfWon(l, g) {
				return
			}
			g.current %= len(g.turns)
			return
		}
	}
}

// PlayerMessage handles a word submission. Only the turn holder may move,
// and only while no earlier submission is awaiting its verdict. The chain
// rules are checked synchronously; a word that passes them goes to the
// classifier on a separate goroutine.
func (c *Coordinator) PlayerMessage(l *lobby.Lobby, p *lobby.Player, raw json.RawMessage) {
	g := gameOf(l)
	if g == nil {
		return
	}
	var msg moveMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		log.Printf("discarding malformed message from %s: %v", p.ID(), err)
		return
	}
	if msg.Subtype != "word" {
		return
	}
	word := kana.NormalizeWidth(msg.Word)

	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.turns) == 0 || g.turns[g.current] != p {
		return
	}
	if g.pending != "" {
		return
	}
	if feedback, ok := checkChain(g.lastWord, word); !ok {
		c.eliminate(l, g, feedback)
		return
	}
	if endsTerminal(word) {
		c.eliminate(l, g, "Word ends with 'ん'")
		return
	}
	if _, dup := g.seen[word]; dup {
		c.eliminate(l, g, "Word was played earlier!")
		return
	}

	g.pending = word
	go c.resolveWord(l.ID(), p.ID(), word)
}

// resolveWord completes a submission once the classifier returns. The lobby
// is re-resolved by identifier so a verdict arriving after the lobby, the
// game, or the submitter's turn is gone does nothing. A failed lookup keeps
// the turn with the submitter.
func (c *Coordinator) resolveWord(lobbyID, playerID, word string) {
	isNoun, err := c.classifier.IsNoun(context.Background(), word)

	c.registry.WithLobby(lobbyID, func(l *lobby.Lobby) {
		g := gameOf(l)
		if g == nil {
			return
		}
		g.mu.Lock()
		defer g.mu.Unlock()
		if g.pending != word {
			return
		}
		g.pending = ""
		if len(g.turns) == 0 || g.turns[g.current].ID() != playerID {
			return
		}

		if err != nil {
			log.Printf("dictionary lookup for %q failed: %v", word, err)
			l.SendTo(playerID, FeedbackPayload{Response: PushFeedback, Feedback: "Could not verify word, try again."})
			return
		}
		if !isNoun {
			c.eliminate(l, g, "Word is not a noun!")
			return
		}

		g.seen[word] = struct{}{}
		l.Broadcast(MovePayload{Response: PushMoveMade, Player: g.turns[g.current].Name(), Word: word})
		g.lastWord = word
		g.current = (g.current + 1) % len(g.turns)
		announceTurn(l, g)
	})
}

// eliminate removes the current turn holder from the rotation, tells
// everyone who lost and the loser why, then either finishes the game or
// hands the turn to the next player. Callers hold the game mutex.
func (c *Coordinator) eliminate(l *lobby.Lobby, g *game, feedback string) {
	loser := g.turns[g.current]
	l.Broadcast(EliminationPayload{Response: PushPlayerLost, Player: loser.Name()})
	l.SendTo(loser.ID(), FeedbackPayload{Response: PushFeedback, Feedback: feedback})

	g.turns = append(g.turns[:g.current], g.turns[g.current+1:]...)
	if finishIfWon(l, g) {
		return
	}
	g.current %= len(g.turns)
	announceTurn(l, g)
}

// finishIfWon ends the game when a single player remains: the game state
// slot clears, the lobby returns to its pre-start state, and the winner is
// announced. Callers hold the game mutex.
func finishIfWon(l *lobby.Lobby, g *game) bool {
	if len(g.turns) != 1 {
		return false
	}
	winner := g.turns[0]
	l.SetExtras(nil)
	l.EndGame()
	l.Broadcast(WinnerPayload{Response: PushWinner, Winner: winner.Name()})
	return true
}

// announceTurn unicasts YOUR_TURN to the holder and broadcasts whose turn
// it is. Callers hold the game mutex.
func announceTurn(l *lobby.Lobby, g *game) {
	holder := g.turns[g.current]
	var last *string
	if g.lastWord != "" {
		w := g.lastWord
		last = &w
	}
	l.SendTo(holder.ID(), YourTurnPayload{Response: PushYourTurn, LastWord: last})
	l.Broadcast(TurnPayload{Response: PushPlayerTurn, Player: holder.Name()})
}

func (c *Coordinator) intn(n int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rng.Intn(n)
}
