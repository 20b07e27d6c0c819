package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	err := New(CodeLobbyNotFound, "lobby missing")
	wrapped := fmt.Errorf("handling request: %w", err)

	if !stderrors.Is(wrapped, New(CodeLobbyNotFound, "different message")) {
		t.Fatal("expected Is to match by code")
	}
	if stderrors.Is(wrapped, New(CodePlayerNotFound, "lobby missing")) {
		t.Fatal("expected Is not to match a different code")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("underlying")
	err := Wrap(CodeUnknown, "wrapped", cause)

	if !stderrors.Is(err, cause) {
		t.Fatal("expected cause to be unwrappable")
	}
	if err.Error() != "wrapped" {
		t.Fatalf("expected message %q, got %q", "wrapped", err.Error())
	}
}

func TestWireCodeMapping(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeLobbyIDMissing, 700},
		{CodePlayerIDMissing, 701},
		{CodePassMissing, 702},
		{CodeRequestTypeInvalid, 800},
		{CodeLobbyNameInvalid, 801},
		{CodeLobbyPassInvalid, 802},
		{CodePlayerNameInvalid, 803},
		{CodeLobbyNotFound, 900},
		{CodePlayerNotFound, 901},
		{CodeNameInUse, 902},
		{CodeLobbiesFull, 903},
		{CodePassWrong, 904},
		{CodeLobbyFull, 905},
		{CodeLobbyStarted, 906},
		{CodeUnknown, WireFail},
	}
	for _, tc := range tests {
		if got := tc.code.WireCode(); got != tc.want {
			t.Errorf("WireCode(%s) = %d, want %d", tc.code, got, tc.want)
		}
	}
}

func TestWireCodeFromError(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeLobbyFull, "lobby is full"))
	if got := WireCode(err); got != 905 {
		t.Fatalf("expected 905, got %d", got)
	}
	if got := WireCode(stderrors.New("plain")); got != WireFail {
		t.Fatalf("expected generic failure, got %d", got)
	}
}

func TestWithMetadata(t *testing.T) {
	err := WithMetadata(CodeNameInUse, "name taken", map[string]string{"name": "yuki"})
	if err.Metadata["name"] != "yuki" {
		t.Fatalf("expected metadata to carry name, got %v", err.Metadata)
	}
}
