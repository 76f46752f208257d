package widgets

import (
	"strings"
	"testing"

	"midistyle/style"
	"midistyle/theme"
	"midistyle/timeline"
)

func testTimeline(t *testing.T) *timeline.Timeline {
	t.Helper()
	b := timeline.NewBuilder(96)
	pushes := []struct {
		offset uint8
		ev     style.Event
	}{
		{0, style.TempoEvent(100)},
		{0, style.SectionEvent(style.MainA)},
		{4, style.ChordEvent(style.Chord{Root: style.RootA, Accidental: style.Natural, Quality: style.Minor7})},
		{8, style.StopEvent()},
	}
	for _, p := range pushes {
		if err := b.Push(p.offset, p.ev); err != nil {
			t.Fatalf("push: %v", err)
		}
	}
	return b.Finish()
}

func TestRenderSummary(t *testing.T) {
	out := RenderSummary(timeline.Summarize(testTimeline(t)), theme.New(theme.Default()))
	for _, want := range []string{"PPQN:", "96", "767 ticks", "600000 µs/quarter (100 BPM)", "4/4, 24 clocks/click, 8 32nds/quarter"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in summary:\n%s", want, out)
		}
	}
}

func TestRenderTimeline(t *testing.T) {
	tl := testTimeline(t)
	out := RenderTimeline(tl, theme.New(theme.Default()))
	lines := strings.Split(out, "\n")
	if len(lines) != tl.Len() {
		t.Fatalf("expected %d lines, got %d:\n%s", tl.Len(), len(lines), out)
	}
	if !strings.Contains(lines[3], "Chord Am7") || !strings.Contains(lines[3], "384") {
		t.Errorf("unexpected chord line %q", lines[3])
	}
	if !strings.Contains(lines[4], "Stop") || !strings.Contains(lines[4], "FF 2F 00") {
		t.Errorf("unexpected last line %q", lines[4])
	}
}

func TestGrammarHelp(t *testing.T) {
	out := RenderKeyHelp(GrammarHelp())
	for _, want := range []string{"MAIN_A", "0x08", "ENDING4", "C7sus4", "TS<n><d>"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in help", want)
		}
	}
}
