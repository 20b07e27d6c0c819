package shiritori

// Push response codes for in-game traffic. They sit below the lobby 10xx
// range so clients can dispatch on a single response field.
const (
	PushYourTurn   = 9
	PushPlayerTurn = 10
	PushPlayerLost = 11
	PushMoveMade   = 12
	PushFeedback   = 13
	PushWinner     = 14
)

// moveMessage is the inbound payload a player submits on their turn.
type moveMessage struct {
	Subtype string `json:"subtype"`
	Word    string `json:"word"`
}

// YourTurnPayload is unicast to the player who holds the turn. LastWord is
// nil on the opening turn.
type YourTurnPayload struct {
	Response int     `json:"response"`
	LastWord *string `json:"lastWord"`
}

// TurnPayload announces whose turn it is to every player.
type TurnPayload struct {
	Response int    `json:"response"`
	Player   string `json:"player"`
}

// EliminationPayload announces a player's elimination to every player.
type EliminationPayload struct {
	Response int    `json:"response"`
	Player   string `json:"player"`
}

// MovePayload announces an accepted word to every player.
type MovePayload struct {
	Response int    `json:"response"`
	Player   string `json:"player"`
	Word     string `json:"word"`
}

// FeedbackPayload is unicast to a player to explain a rejection or lookup
// problem.
type FeedbackPayload struct {
	Response int    `json:"response"`
	Feedback string `json:"feedback"`
}

// WinnerPayload announces the last player standing when the game ends.
type WinnerPayload struct {
	Response int    `json:"response"`
	Winner   string `json:"winner"`
}
