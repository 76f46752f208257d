package timeline

import (
	"bytes"
	"path/filepath"
	"testing"

	"midistyle/style"
)

func TestMetronome(t *testing.T) {
	tl := build(t, 96, "000 MAIN_A\n000 C\n008 STOP\n")
	end := tl.Length()

	n := AddMetronome(tl)
	if n != 8 {
		t.Fatalf("expected 8 clicks, got %d", n)
	}

	var ons, ghosts int
	for _, ev := range tl.Events() {
		p := ev.Payload
		if len(p) == 3 && p[0] == 0x99 && p[1] == clickNote && p[2] > 0 {
			ons++
			if p[2] == ghostVelocity {
				ghosts++
				if ev.Pulse >= countInBeats*96 {
					t.Fatalf("ghost click at %d, after the count-in", ev.Pulse)
				}
			}
		}
	}
	if ons != 8 || ghosts != 4 {
		t.Fatalf("expected 8 clicks with 4 ghosts, got %d/%d", ons, ghosts)
	}

	last := tl.Events()[tl.Len()-1]
	if !style.IsEndOfTrack(last.Payload) || last.Pulse != end {
		t.Fatalf("expected EOT to stay last at %d, got %d % X", end, last.Pulse, last.Payload)
	}
}

func TestSMFRoundTrip(t *testing.T) {
	tl := build(t, 96, `
000 T110
000 MAIN_B
000 Gm7
002 TS68
004 Eb
006 ENDING2
010 STOP
`)

	path := filepath.Join(t.TempDir(), "out.mid")
	if err := WriteFile(tl, path); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	if got.PPQN() != 96 {
		t.Fatalf("expected ppqn 96, got %d", got.PPQN())
	}
	if !got.Closed() || got.Length() < 6*96 {
		t.Fatalf("expected a closed timeline past beat 6, got length %d", got.Length())
	}
	if got.TempoAt(0) != tl.TempoAt(0) {
		t.Fatalf("expected tempo %d, got %d", tl.TempoAt(0), got.TempoAt(0))
	}
	if m := got.MeterAt(2 * 96); m.String() != "6/8" {
		t.Fatalf("expected 6/8 at beat 2, got %s", m)
	}

	var sysex int
	for _, ev := range got.Events() {
		if len(ev.Payload) > 0 && ev.Payload[0] == 0xF0 {
			sysex++
		}
	}
	if sysex != 4 {
		t.Fatalf("expected 4 sysex events, got %d", sysex)
	}
}

func TestReadRejectsGarbage(t *testing.T) {
	if _, err := Read(bytes.NewReader([]byte("not a midi file"))); err == nil {
		t.Fatalf("expected error")
	}
}
