package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	gomidi "gitlab.com/gomidi/midi/v2"

	"midistyle/style"
	"midistyle/theme"
	"midistyle/timeline"
)

// RenderSummary formats the load report printed before playback or saving
func RenderSummary(s timeline.Summary, th *theme.Theme) string {
	label := lipgloss.NewStyle().Foreground(th.Muted()).Width(16)
	value := lipgloss.NewStyle().Foreground(th.FG())

	rows := [][2]string{
		{"PPQN", fmt.Sprintf("%d", s.PPQN)},
		{"Events", fmt.Sprintf("%d", s.Events)},
		{"Length", fmt.Sprintf("%d ticks (%.2f s)", s.Length, s.Duration.Seconds())},
		{"Tempo", fmt.Sprintf("%d µs/quarter (%d BPM)", s.TempoMicros, s.TempoBPM)},
		{"Time signature", fmt.Sprintf("%s, %d clocks/click, %d 32nds/quarter", s.Meter, s.ClocksPerClick, s.Per32nds)},
	}

	var lines []string
	for _, r := range rows {
		lines = append(lines, label.Render(r[0]+":")+value.Render(r[1]))
	}
	return strings.Join(lines, "\n")
}

// RenderTimeline lists every event with its position, one per line
func RenderTimeline(tl *timeline.Timeline, th *theme.Theme) string {
	ppqn := uint32(tl.PPQN())
	if ppqn == 0 {
		ppqn = 1
	}
	dim := lipgloss.NewStyle().Foreground(th.Muted())

	var lines []string
	for _, ev := range tl.Events() {
		pos := fmt.Sprintf("%6d %4d.%03d", ev.Pulse, ev.Pulse/ppqn, ev.Pulse%ppqn)
		var desc string
		if e, ok := style.ParsePayload(ev.Payload); ok {
			mark := lipgloss.NewStyle().Foreground(th.KindColor(e.Kind)).Render(string(th.Symbol(e.Kind)))
			desc = fmt.Sprintf("%s %-14s", mark, e)
		} else {
			desc = fmt.Sprintf("  %-14s", gomidi.Message(ev.Payload).String())
		}
		lines = append(lines, fmt.Sprintf("%s  %s %s", dim.Render(pos), desc, dim.Render(fmt.Sprintf("% X", ev.Payload))))
	}
	return strings.Join(lines, "\n")
}
