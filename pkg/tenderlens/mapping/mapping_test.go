package mapping

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cognicore/tenderlens/pkg/tenderlens/internalerr"
)

const sample = `"Old Vendor X": "New Vendor Y",
"Acme inc": "Acme Inc.",
  "Dalhousie Univ" : "Dalhousie University" ,
# comment line
no separator here

"Communities, Culture and Heritage": "Communities, Culture and Heritage",
"Ratio: 3:1 Ltd": "Ratio Three To One Ltd",
`

func TestParse(t *testing.T) {
	m, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	tests := map[string]string{
		"Old Vendor X":                      "New Vendor Y",
		"Acme inc":                          "Acme Inc.",
		"Dalhousie Univ":                    "Dalhousie University",
		"Communities, Culture and Heritage": "Communities, Culture and Heritage",
		"Ratio: 3:1 Ltd":                    "Ratio Three To One Ltd",
	}
	if len(m) != len(tests) {
		t.Errorf("Expected %d entries, got %d: %v", len(tests), len(m), m)
	}
	for raw, want := range tests {
		if got, ok := m[raw]; !ok || got != want {
			t.Errorf("m[%q] = %q (found=%v), want %q", raw, got, ok, want)
		}
	}
}

func TestApply(t *testing.T) {
	m := Mapping{"Old Vendor X": "New Vendor Y"}

	if got := m.Apply("Old Vendor X"); got != "New Vendor Y" {
		t.Errorf("mapped name: got %q", got)
	}
	if got := m.Apply("Unknown Ltd"); got != "Unknown Ltd" {
		t.Errorf("unmapped name should pass through, got %q", got)
	}
	if _, ok := m.Lookup("Unknown Ltd"); ok {
		t.Error("Lookup should report unmapped name")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vendor_mapping.txt")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Apply("Acme inc") != "Acme Inc." {
		t.Error("Loaded mapping should resolve Acme inc")
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load("/nonexistent/entity_mapping.txt")
	if !errors.Is(err, internalerr.ErrResourceMissing) {
		t.Fatalf("expected ErrResourceMissing, got %v", err)
	}
}
