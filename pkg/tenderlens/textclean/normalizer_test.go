package textclean

import (
	"strings"
	"testing"

	"github.com/cognicore/tenderlens/pkg/tenderlens/stoplist"
)

func TestNormalizeRules(t *testing.T) {
	n := New(nil)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"lowercase and stopwords", "The Supply of Road Salt", "supply road salt"},
		{"handles removed", "contact @procurement_ns for snow removal", "contact snow removal"},
		{"urls removed", "see https://procurement.novascotia.ca/tender?id=1 for details", "see details"},
		{"digits and punctuation", "RFP #2021-044: Paving (Phase 2), Route 101", "rfp paving phase route"},
		{"single letters dropped", "a b c plumbing x y", "plumbing"},
		{"short tokens dropped", "hv ac system upgrade ok", "system upgrade"},
		{"plus and apostrophe kept", "C++ developer's workstation", "c++ developer's workstation"},
		{"non ascii letters become spaces", "café renovation", "caf renovation"},
		{"whitespace collapsed", "  roof\t\trepair \n  services  ", "roof repair services"},
		{"only stopwords", "the and of it", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.Normalize(tt.in)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeAlphabet(t *testing.T) {
	n := New(nil)
	inputs := []string{
		"Supply & Delivery of 2,000 L Diesel -- Halifax, N.S. <b>URGENT</b>",
		"ÉCOLE Sainte-Anne: réparation du toit @ 50% http://x.y",
		"Janitorial services\r\nfor 3 sites; see www.example.com",
		"O'Brien's +plus+ ++ '' '''",
	}
	for _, in := range inputs {
		out := n.Normalize(in)
		for _, r := range out {
			if !(r >= 'a' && r <= 'z') && r != ' ' && r != '+' && r != '\'' {
				t.Errorf("Normalize(%q) produced disallowed rune %q in %q", in, r, out)
			}
		}
		if strings.Contains(out, "  ") {
			t.Errorf("Normalize(%q) has repeated whitespace: %q", in, out)
		}
		if out != strings.TrimSpace(out) {
			t.Errorf("Normalize(%q) has leading/trailing whitespace: %q", in, out)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	n := New(nil)
	inputs := []string{
		"Snow Plowing Services for the Town of Truro 2021-2023",
		"IT consulting @vendor http://example.com C++ and Java",
		"Don't forget the h.v.a.c. maintenance contract",
		"http httpx x-httpfoo road",
	}
	for _, in := range inputs {
		once := n.Normalize(in)
		twice := n.Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestNormalizeCustomStoplist(t *testing.T) {
	n := New(stoplist.NewEnglish("tender", "rfp"))
	got := n.Normalize("RFP tender for bridge inspection")
	if got != "bridge inspection" {
		t.Errorf("expected domain stopwords removed, got %q", got)
	}
}

func TestTokens(t *testing.T) {
	n := New(nil)
	tokens := n.Tokens("Paving and line painting")
	expected := []string{"paving", "line", "painting"}
	if len(tokens) != len(expected) {
		t.Fatalf("Expected %d tokens, got %v", len(expected), tokens)
	}
	for i := range expected {
		if tokens[i] != expected[i] {
			t.Errorf("token %d: got %q, want %q", i, tokens[i], expected[i])
		}
	}
	if n.Tokens("") != nil {
		t.Error("Empty input should yield nil tokens")
	}
}

func TestStripMarkup(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain text", "plain text"},
		{"<p>Supply of <strong>road</strong> salt</p>", "Supply of road salt"},
		{"Salt &amp; sand", "Salt & sand"},
		{"<ul><li>gravel</li><li>asphalt</li></ul>", "gravel asphalt"},
		{"<style>p{color:red}</style>paving", "paving"},
	}
	for _, tt := range tests {
		if got := StripMarkup(tt.in); got != tt.want {
			t.Errorf("StripMarkup(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeKeepsAngleBracketedText(t *testing.T) {
	n := New(nil)
	tests := []struct {
		in, want string
	}{
		{"temperature <sensors and cables> for arena", "temperature sensors cables arena"},
		{"pipes <150mm> and valves<fittings> replacement", "pipes valves fittings replacement"},
		{"Salt &amp; sand", "salt amp sand"},
	}
	for _, tt := range tests {
		if got := n.Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeWithMarkupStripping(t *testing.T) {
	n := New(nil).WithMarkupStripping()
	got := n.Normalize("<p><strong>Asphalt</strong> paving</p>")
	if got != "asphalt paving" {
		t.Errorf("Expected tags removed, got %q", got)
	}
}
