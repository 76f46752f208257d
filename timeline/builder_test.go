package timeline

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"midistyle/style"
)

func build(t *testing.T, ppqn uint16, src string, opts ...Option) *Timeline {
	t.Helper()
	b := NewBuilder(ppqn, opts...)
	sc := style.NewScanner(strings.NewReader(src))
	for sc.Scan() {
		l := sc.Line()
		if err := b.Push(l.Offset, l.Event); err != nil {
			t.Fatalf("line %d: unexpected error: %v", l.Number, err)
		}
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}
	return b.Finish()
}

func TestBuildExampleFile(t *testing.T) {
	tl := build(t, 96, "000 TS44\n000 C\n004 Am7\n008 STOP\n")

	am7 := style.ChordPayload(style.Chord{Root: style.RootA, Accidental: style.Natural, Quality: style.Minor7})
	want := []Event{
		{0, style.MeterPayload(style.CommonTime)},
		{0, style.MeterPayload(style.CommonTime)},
		{0, style.ChordPayload(style.Chord{Root: style.RootC, Accidental: style.Natural, Quality: style.Major})},
		{384, am7},
		{767, style.EndOfTrack()},
	}
	got := tl.Events()
	if len(got) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].Pulse != want[i].Pulse || !bytes.Equal(got[i].Payload, want[i].Payload) {
			t.Errorf("event %d: expected %d % X, got %d % X", i, want[i].Pulse, want[i].Payload, got[i].Pulse, got[i].Payload)
		}
	}
	if !tl.Closed() {
		t.Fatalf("expected closed timeline")
	}
	if tl.Length() != 767 {
		t.Fatalf("expected length 767, got %d", tl.Length())
	}
}

func TestDeltasSumToLength(t *testing.T) {
	tl := build(t, 96, `
000 MAIN_A
000 T100
002 G7
003 F#m
005 FILLINA
006 ENDING1
012 STOP
`)
	var sum uint32
	for _, d := range tl.Deltas() {
		sum += d
	}
	if sum != tl.Length() {
		t.Fatalf("expected delta sum %d, got %d", tl.Length(), sum)
	}
	if tl.Length() != 12*96-1 {
		t.Fatalf("expected EOT at %d, got %d", 12*96-1, tl.Length())
	}
}

func TestFirstTempoMovesToStart(t *testing.T) {
	tl := build(t, 96, "004 T140\n008 T90\n010 STOP\n")

	var pulses []uint32
	for _, ev := range tl.Events() {
		if _, ok := style.TempoMicros(ev.Payload); ok {
			pulses = append(pulses, ev.Pulse)
		}
	}
	if len(pulses) != 2 || pulses[0] != 0 || pulses[1] != 8*96 {
		t.Fatalf("expected tempos at [0 768], got %v", pulses)
	}
	if us := tl.TempoAt(0); us != style.MicrosPerMinute/140 {
		t.Fatalf("expected 140 BPM at start, got %d µs", us)
	}
	if us := tl.TempoAt(9 * 96); us != style.MicrosPerMinute/90 {
		t.Fatalf("expected 90 BPM after bar 2, got %d µs", us)
	}
}

func TestTempoOverride(t *testing.T) {
	tl := build(t, 96, "000 T140\n004 T90\n008 STOP\n", WithTempo(100))

	var tempos []uint32
	for _, ev := range tl.Events() {
		if us, ok := style.TempoMicros(ev.Payload); ok {
			tempos = append(tempos, us)
		}
	}
	if len(tempos) != 1 || tempos[0] != style.MicrosPerMinute/100 {
		t.Fatalf("expected only the fixed 100 BPM tempo, got %v", tempos)
	}
}

func TestInitialTimeSignatureOption(t *testing.T) {
	ts := style.TimeSignature{Numerator: 6, DenominatorPow2: 3}
	tl := NewBuilder(96, WithTimeSignature(ts)).Finish()

	if got := tl.MeterAt(0); got != ts {
		t.Fatalf("expected %s, got %s", ts, got)
	}
	// no STOP: EOT on the last event
	if tl.Len() != 2 || tl.Length() != 0 {
		t.Fatalf("expected meter + EOT at 0, got %d events ending at %d", tl.Len(), tl.Length())
	}
}

func TestFinishWithoutStop(t *testing.T) {
	tl := build(t, 48, "000 MAIN_B\n003 Dm\n")
	last := tl.Events()[tl.Len()-1]
	if !style.IsEndOfTrack(last.Payload) || last.Pulse != 3*48 {
		t.Fatalf("expected EOT at %d, got %d % X", 3*48, last.Pulse, last.Payload)
	}
}

func TestPushErrors(t *testing.T) {
	tests := []struct {
		name string
		push []string
		want error
	}{
		{"stop at zero", []string{"000 STOP"}, ErrStopAtZero},
		{"stop twice", []string{"004 STOP", "004 STOP"}, ErrStopRepeated},
		{"event after stop", []string{"004 STOP", "005 C"}, ErrAfterStop},
		{"offsets go back", []string{"004 C", "002 G"}, ErrOffsetOrder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder(96)
			var err error
			for _, line := range tt.push {
				off, ev, ok := style.DecodeLine(line)
				if !ok {
					t.Fatalf("line %q did not decode", line)
				}
				if err = b.Push(off, ev); err != nil {
					break
				}
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			var te *TimelineError
			if !errors.As(err, &te) {
				t.Fatalf("expected *TimelineError, got %T", err)
			}
		})
	}
}

func TestStopOnBeatOfLastEvent(t *testing.T) {
	// STOP at offset 4 would end at 383, before the chord at 384
	tl := build(t, 96, "000 C\n004 Am7\n004 STOP\n")

	events := tl.Events()
	last := events[len(events)-1]
	if !style.IsEndOfTrack(last.Payload) || last.Pulse != 384 {
		t.Fatalf("expected EOT at 384, got % X at %d", last.Payload, last.Pulse)
	}
	if !style.IsSysEx(events[len(events)-2].Payload) {
		t.Fatalf("expected chord before EOT")
	}
	if tl.Length() != 384 {
		t.Fatalf("expected length 384, got %d", tl.Length())
	}
}

func TestEqualPulsesKeepFileOrder(t *testing.T) {
	tl := build(t, 96, "002 MAIN_C\n002 A\n002 FILLINC\n003 STOP\n")

	var kinds []style.Kind
	for _, ev := range tl.Events()[1:] {
		e, ok := style.ParsePayload(ev.Payload)
		if !ok {
			t.Fatalf("unparseable payload % X", ev.Payload)
		}
		kinds = append(kinds, e.Kind)
	}
	want := []style.Kind{style.KindSection, style.KindChord, style.KindSection, style.KindStop}
	if len(kinds) != len(want) {
		t.Fatalf("expected %v, got %v", want, kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, kinds)
		}
	}
}

func TestSummary(t *testing.T) {
	tl := build(t, 96, "000 T96\n000 TS34\n006 STOP\n")
	s := Summarize(tl)

	if s.TempoBPM != 96 || s.TempoMicros != 625000 {
		t.Fatalf("expected 96 BPM / 625000 µs, got %d / %d", s.TempoBPM, s.TempoMicros)
	}
	if s.Meter.String() != "3/4" {
		t.Fatalf("expected 3/4, got %s", s.Meter)
	}
	if s.Length != 6*96-1 {
		t.Fatalf("expected length %d, got %d", 6*96-1, s.Length)
	}
	// 575 pulses at 625ms per 96 pulses
	if s.Duration.Milliseconds() != 3743 {
		t.Fatalf("expected 3743ms, got %v", s.Duration)
	}
}
