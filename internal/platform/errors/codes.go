// Package errors provides structured error handling with wire status mapping.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Missing-field errors
	CodeLobbyIDMissing  Code = "LOBBY_ID_MISSING"
	CodePlayerIDMissing Code = "PLAYER_ID_MISSING"
	CodePassMissing     Code = "PASS_MISSING"

	// Invalid-field errors
	CodeRequestTypeInvalid Code = "REQUEST_TYPE_INVALID"
	CodeLobbyNameInvalid   Code = "LOBBY_NAME_INVALID"
	CodeLobbyPassInvalid   Code = "LOBBY_PASS_INVALID"
	CodePlayerNameInvalid  Code = "PLAYER_NAME_INVALID"

	// Lookup errors
	CodeLobbyNotFound  Code = "LOBBY_NOT_FOUND"
	CodePlayerNotFound Code = "PLAYER_NOT_FOUND"

	// Conflict errors
	CodeNameInUse    Code = "NAME_IN_USE"
	CodePassWrong    Code = "PASS_WRONG"
	CodeLobbyFull    Code = "LOBBY_FULL"
	CodeLobbyStarted Code = "LOBBY_STARTED"

	// Capacity errors
	CodeLobbiesFull Code = "LOBBIES_FULL"
)

// Wire status values shared between the engine and its transport. The 7xx
// range reports missing fields, 8xx invalid fields, and 9xx lookup, conflict,
// and capacity failures.
const (
	WireSuccess = 600
	WireFail    = 601
)

// WireCode maps domain codes to numeric wire statuses.
func (c Code) WireCode() int {
	switch c {
	case CodeLobbyIDMissing:
		return 700
	case CodePlayerIDMissing:
		return 701
	case CodePassMissing:
		return 702
	case CodeRequestTypeInvalid:
		return 800
	case CodeLobbyNameInvalid:
		return 801
	case CodeLobbyPassInvalid:
		return 802
	case CodePlayerNameInvalid:
		return 803
	case CodeLobbyNotFound:
		return 900
	case CodePlayerNotFound:
		return 901
	case CodeNameInUse:
		return 902
	case CodeLobbiesFull:
		return 903
	case CodePassWrong:
		return 904
	case CodeLobbyFull:
		return 905
	case CodeLobbyStarted:
		return 906
	default:
		return WireFail
	}
}
