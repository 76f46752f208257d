package midi

import (
	"slices"
	"testing"
)

func TestMatchPort(t *testing.T) {
	names := []string{
		"Midi Through:Midi Through Port-0 14:0",
		"PSR-S975:PSR-S975 MIDI 1 20:0",
		"psr",
	}
	tests := []struct {
		address string
		index   int
		ok      bool
	}{
		{"1", 1, true},
		{"3", 0, false},
		{"-1", 0, false},
		{"psr", 2, true}, // exact name beats substring
		{"PSR-S975", 1, true},
		{"midi through", 0, true},
		{" 0 ", 0, true},
		{"", 0, false},
		{"tyros", 0, false},
	}
	for _, tt := range tests {
		idx, ok := matchPort(names, tt.address)
		if ok != tt.ok || (ok && idx != tt.index) {
			t.Errorf("%q: expected %d/%v, got %d/%v", tt.address, tt.index, tt.ok, idx, ok)
		}
	}
}

func TestDiffNames(t *testing.T) {
	added, removed := diffNames(
		[]string{"a", "b", "b", "c"},
		[]string{"b", "c", "d"},
	)
	if !slices.Equal(added, []string{"d"}) {
		t.Fatalf("expected [d] added, got %v", added)
	}
	if !slices.Equal(removed, []string{"a", "b"}) {
		t.Fatalf("expected [a b] removed, got %v", removed)
	}

	added, removed = diffNames(nil, []string{"x"})
	if !slices.Equal(added, []string{"x"}) || len(removed) != 0 {
		t.Fatalf("expected first scan to add everything, got %v %v", added, removed)
	}
}

func TestDestinationString(t *testing.T) {
	d := Destination{Index: 2, Name: "PSR"}
	if got := d.String(); got != "  2  PSR" {
		t.Fatalf("unexpected %q", got)
	}
}
