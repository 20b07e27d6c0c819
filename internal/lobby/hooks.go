package lobby

import "encoding/json"

// Hooks is the fixed set of lifecycle events the engine reports to the game
// layer. Every method defaults to a no-op through NoopHooks; a game embeds
// NoopHooks and overrides the events it cares about.
//
// Hooks are invoked after the engine has released the lobby mutex, so hook
// implementations are free to call back into lobby operations.
type Hooks interface {
	LobbyCreated(l *Lobby)
	LobbyDeleted(l *Lobby)
	PlayerJoined(l *Lobby, p *Player)
	PlayerLeft(l *Lobby, p *Player)
	PlayerMessage(l *Lobby, p *Player, msg json.RawMessage)
	ConnAttached(l *Lobby, p *Player)
	GameStarted(l *Lobby)
}

// NoopHooks implements Hooks with empty methods.
type NoopHooks struct{}

func (NoopHooks) LobbyCreated(*Lobby)                            {}
func (NoopHooks) LobbyDeleted(*Lobby)                            {}
func (NoopHooks) PlayerJoined(*Lobby, *Player)                   {}
func (NoopHooks) PlayerLeft(*Lobby, *Player)                     {}
func (NoopHooks) PlayerMessage(*Lobby, *Player, json.RawMessage) {}
func (NoopHooks) ConnAttached(*Lobby, *Player)                   {}
func (NoopHooks) GameStarted(*Lobby)                             {}
