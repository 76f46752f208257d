package theme

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadGPL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mono.gpl")
	data := `GIMP Palette
Name: Mono
Columns: 2
# comment
  0   0   0	Black
255 255 255	White
not a color
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadGPL(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "Mono" || len(p.Colors) != 2 {
		t.Fatalf("expected Mono with 2 colors, got %q with %d", p.Name, len(p.Colors))
	}
	if got := p.Lookup(0.5); got != (RGB{127, 127, 127}) {
		t.Fatalf("expected mid grey, got %v", got)
	}
	if got := p.Lookup(2); got != (RGB{255, 255, 255}) {
		t.Fatalf("expected clamp to white, got %v", got)
	}
}

func TestLoadGPLEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.gpl")
	os.WriteFile(path, []byte("GIMP Palette\n"), 0644)
	if _, err := LoadGPL(path); err == nil {
		t.Fatalf("expected error for palette without colors")
	}
}

func TestLoadDefault(t *testing.T) {
	p, err := Load("")
	if err != nil || p.Name != "plasma" {
		t.Fatalf("expected default palette, got %v %v", p, err)
	}
	th := New(p)
	if th.Accent() == th.BG() {
		t.Fatalf("expected distinct role colors")
	}
}
