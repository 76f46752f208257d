package main

import (
	"strings"
	"testing"

	gomidi "gitlab.com/gomidi/midi/v2"

	"midistyle/style"
)

func TestSnifferFoldsClocks(t *testing.T) {
	var s sniffer
	if line, ok := s.describe(gomidi.Message{0xFA}); !ok || line != "Start" {
		t.Fatalf("expected Start, got %q", line)
	}

	var beats []string
	for i := 0; i < 3*clocksPerQuarter; i++ {
		if line, ok := s.describe(gomidi.Message{0xF8}); ok {
			beats = append(beats, line)
		}
	}
	if len(beats) != 3 || beats[2] != "Clock  beat 3" {
		t.Fatalf("expected 3 beat lines, got %v", beats)
	}

	if line, _ := s.describe(gomidi.Message{0xFC}); line != "Stop after 72 clocks" {
		t.Fatalf("unexpected stop line %q", line)
	}
}

func TestSnifferDecodesStyleMessages(t *testing.T) {
	chord, _ := style.DecodeChord("Am7")
	tests := []struct {
		msg  []byte
		want string
	}{
		{style.SectionPayload(style.MainA), "Section MAIN_A"},
		{style.ChordPayload(chord), "Chord Am7"},
		{[]byte{0xF0, 0x7E, 0x7F, 0x09, 0x01, 0xF7}, "SysEx  7E 7F 09 01"},
	}
	for _, tt := range tests {
		var s sniffer
		line, ok := s.describe(gomidi.Message(tt.msg))
		if !ok || !strings.HasPrefix(line, tt.want) {
			t.Errorf("% X: expected %q, got %q", tt.msg, tt.want, line)
		}
	}
}

func TestSnifferIgnoresEmpty(t *testing.T) {
	var s sniffer
	if _, ok := s.describe(nil); ok {
		t.Fatalf("expected empty message to be ignored")
	}
}
