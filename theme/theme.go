package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"midistyle/style"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	// beat ruler
	Downbeat rune // ● first beat of a bar
	Beat     rune // · other beats
	Playhead rune // ▶ current beat

	// event markers
	Section rune // § section switch
	Chord   rune // ♪ chord change
	Tempo   rune // ♩ tempo change
	Meter   rune // ⌗ time signature
	Stop    rune // ■ end of track
}

func New(palette *Palette) *Theme {
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			Downbeat: '●',
			Beat:     '·',
			Playhead: '▶',

			Section: '§',
			Chord:   '♪',
			Tempo:   '♩',
			Meter:   '⌗',
			Stop:    '■',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0 // deep purple
	RoleMuted   = 0.2 // purple-magenta
	RoleFG      = 0.4 // pink-purple (readable)
	RoleAccent  = 0.5 // vivid magenta
	RoleActive  = 0.7 // soft red
	RoleWarning = 0.8 // orange
	RoleSuccess = 1.0 // bright yellow
)

func (t *Theme) BG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleBG))
}

func (t *Theme) FG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleFG))
}

func (t *Theme) Accent() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleAccent))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Active() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleActive))
}

func (t *Theme) Warning() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleWarning))
}

func (t *Theme) Success() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleSuccess))
}

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(norm))
}

// Symbol returns the marker for an event kind
func (t *Theme) Symbol(k style.Kind) rune {
	switch k {
	case style.KindSection:
		return t.Symbols.Section
	case style.KindChord:
		return t.Symbols.Chord
	case style.KindTempo:
		return t.Symbols.Tempo
	case style.KindTimeSignature:
		return t.Symbols.Meter
	case style.KindStop:
		return t.Symbols.Stop
	}
	return '?'
}

// KindColor spreads event kinds over the palette
func (t *Theme) KindColor(k style.Kind) lipgloss.Color {
	switch k {
	case style.KindSection:
		return t.Accent()
	case style.KindChord:
		return t.Success()
	case style.KindTempo:
		return t.Warning()
	case style.KindStop:
		return t.Active()
	}
	return t.FG()
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}
