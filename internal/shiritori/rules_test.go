package shiritori

import "testing"

func TestCheckChainOpeningTurnAcceptsAnything(t *testing.T) {
	if feedback, ok := checkChain("", "みかん"); !ok {
		t.Fatalf("opening word rejected: %s", feedback)
	}
}

func TestCheckChainMatchesLastKana(t *testing.T) {
	if feedback, ok := checkChain("りんご", "ごま"); !ok {
		t.Fatalf("chained word rejected: %s", feedback)
	}
	feedback, ok := checkChain("りんご", "たこ")
	if ok {
		t.Fatal("mismatched word accepted")
	}
	if feedback != "Word does not start with ご" {
		t.Fatalf("feedback = %q", feedback)
	}
}

func TestCheckChainSmallKanaAcceptsEitherStart(t *testing.T) {
	for _, word := range []string{"やま", "ちず"} {
		if feedback, ok := checkChain("おもちゃ", word); !ok {
			t.Fatalf("word %s rejected: %s", word, feedback)
		}
	}
	feedback, ok := checkChain("おもちゃ", "さかな")
	if ok {
		t.Fatal("mismatched word accepted")
	}
	if feedback != "Word does not start with や or ち" {
		t.Fatalf("feedback = %q", feedback)
	}
}

func TestCheckChainEmptyWordRejected(t *testing.T) {
	if _, ok := checkChain("りんご", ""); ok {
		t.Fatal("empty word accepted against a chain")
	}
}

func TestEndsTerminal(t *testing.T) {
	if !endsTerminal("みかん") {
		t.Fatal("terminal word not detected")
	}
	if endsTerminal("みかんじ") || endsTerminal("") {
		t.Fatal("non-terminal word flagged")
	}
}

func TestCheckChainSingleSmallKanaNamesOnlyLargeForm(t *testing.T) {
	if feedback, ok := checkChain("ゃ", "やま"); !ok {
		t.Fatalf("large-form word rejected: %s", feedback)
	}
	feedback, ok := checkChain("ゃ", "さかな")
	if ok {
		t.Fatal("mismatched word accepted")
	}
	if feedback != "Word does not start with や" {
		t.Fatalf("feedback = %q", feedback)
	}
}
