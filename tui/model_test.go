package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"midistyle/playback"
	"midistyle/style"
	"midistyle/theme"
	"midistyle/timeline"
)

func newTestModel(cancel func()) Model {
	sum := timeline.Summary{PPQN: 96, Meter: style.CommonTime, Length: 767}
	return NewModel("song.txt", sum, theme.New(theme.Default()), make(chan playback.Progress), make(chan error), cancel)
}

func TestProgressUpdatesView(t *testing.T) {
	m := newTestModel(nil)

	next, cmd := m.Update(ProgressMsg{RealTime: 1500 * time.Millisecond, Tick: 400, Pending: 12, BPM: 120, Length: 767})
	if cmd == nil {
		t.Fatalf("expected to keep listening for progress")
	}
	view := next.View()
	for _, want := range []string{"RT:  1.500000000", "TT:   400", "QE: 12", "Tempo:120 BPM", "bar   2", "PLAY"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in view:\n%s", want, view)
		}
	}
}

func TestStopKeyCancels(t *testing.T) {
	cancelled := 0
	m := newTestModel(func() { cancelled++ })

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cancelled != 1 {
		t.Fatalf("expected one cancel, got %d", cancelled)
	}
	if !strings.Contains(next.View(), "STOP") {
		t.Fatalf("expected STOP state")
	}
}

func TestDoneQuits(t *testing.T) {
	m := newTestModel(nil)
	boom := errors.New("boom")

	next, cmd := m.Update(DoneMsg{Err: boom})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
	done := next.(Model)
	if !done.Finished() || !errors.Is(done.Err(), boom) {
		t.Fatalf("expected finished with error, got %v %v", done.Finished(), done.Err())
	}
}
