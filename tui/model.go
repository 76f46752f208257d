package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"midistyle/playback"
	"midistyle/theme"
	"midistyle/timeline"
)

const maxBarWidth = 72

type keyMap struct {
	Stop key.Binding
	Help key.Binding
}

func (k keyMap) ShortHelp() []key.Binding { return []key.Binding{k.Stop, k.Help} }

func (k keyMap) FullHelp() [][]key.Binding { return [][]key.Binding{{k.Stop, k.Help}} }

var keys = keyMap{
	Stop: key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "stop")),
	Help: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
}

// Model is the live playback monitor
type Model struct {
	Theme   *theme.Theme
	Title   string
	Summary timeline.Summary

	progress progress.Model
	help     help.Model
	keys     keyMap

	updates <-chan playback.Progress
	done    <-chan error
	cancel  context.CancelFunc

	last     playback.Progress
	stopping bool
	finished bool
	err      error
}

// ProgressMsg carries a scheduler report
type ProgressMsg playback.Progress

// DoneMsg is sent when playback returns
type DoneMsg struct{ Err error }

// NewModel monitors a playback whose reports arrive on updates and whose
// result arrives on done. cancel stops the playback.
func NewModel(title string, sum timeline.Summary, th *theme.Theme, updates <-chan playback.Progress, done <-chan error, cancel context.CancelFunc) Model {
	bar := progress.New(
		progress.WithGradient(string(th.Muted()), string(th.Success())),
		progress.WithWidth(maxBarWidth),
		progress.WithoutPercentage(),
	)
	return Model{
		Theme:    th,
		Title:    title,
		Summary:  sum,
		progress: bar,
		help:     help.New(),
		keys:     keys,
		updates:  updates,
		done:     done,
		cancel:   cancel,
	}
}

func ListenForProgress(updates <-chan playback.Progress) tea.Cmd {
	return func() tea.Msg {
		p, ok := <-updates
		if !ok {
			return nil
		}
		return ProgressMsg(p)
	}
}

func WaitForDone(done <-chan error) tea.Cmd {
	return func() tea.Msg {
		return DoneMsg{Err: <-done}
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		ListenForProgress(m.updates),
		WaitForDone(m.done),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Stop):
			// playback aborts, DoneMsg quits
			if !m.stopping && m.cancel != nil {
				m.cancel()
			}
			m.stopping = true
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}

	case tea.WindowSizeMsg:
		m.progress.Width = min(msg.Width-4, maxBarWidth)
		m.help.Width = msg.Width

	case ProgressMsg:
		m.last = playback.Progress(msg)
		return m, ListenForProgress(m.updates)

	case DoneMsg:
		m.finished = true
		m.err = msg.Err
		return m, tea.Quit
	}

	return m, nil
}

// Err is the playback result once finished
func (m Model) Err() error { return m.err }

func (m Model) Finished() bool { return m.finished }

func (m Model) View() string {
	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	fgStyle := lipgloss.NewStyle().Foreground(m.Theme.FG())

	state := "PLAY"
	switch {
	case m.finished:
		state = "DONE"
	case m.stopping:
		state = "STOP"
	}

	header := headerStyle.Render(fmt.Sprintf("midistyle  %s  %s  %s", state, m.Title, m.Summary.Meter))

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(m.ruler())
	out.WriteString("\n")
	out.WriteString(m.progress.ViewAs(m.last.Fraction()))
	out.WriteString("\n")
	out.WriteString(fgStyle.Render(m.last.String()))
	out.WriteString("\n\n")
	out.WriteString(dimStyle.Render(m.help.View(m.keys)))
	return out.String()
}

// ruler shows the beats of the current bar with the playhead
func (m Model) ruler() string {
	ppqn := uint32(m.Summary.PPQN)
	// eighth-note meters count eighths
	if m.Summary.Meter.DenominatorPow2 == 3 {
		ppqn /= 2
	}
	beats := uint32(m.Summary.Meter.Numerator)
	if ppqn == 0 || beats == 0 {
		return ""
	}
	beat := m.last.Tick / ppqn
	bar := beat / beats

	sym := m.Theme.Symbols
	var marks []string
	for i := uint32(0); i < beats; i++ {
		r := sym.Beat
		if i == 0 {
			r = sym.Downbeat
		}
		if i == beat%beats {
			r = sym.Playhead
		}
		marks = append(marks, string(r))
	}
	bs := lipgloss.NewStyle().Foreground(m.Theme.Active())
	return fmt.Sprintf("bar %3d  %s", bar+1, bs.Render(strings.Join(marks, " ")))
}
