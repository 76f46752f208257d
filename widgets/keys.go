package widgets

import (
	"fmt"
	"strings"

	"midistyle/style"
)

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// GrammarHelp is the token reference for style files
func GrammarHelp() []KeySection {
	sections := KeySection{Title: "Sections"}
	for _, name := range style.Sections() {
		code, _ := style.DecodeSection(name)
		sections.Keys = append(sections.Keys, KeyBinding{name, fmt.Sprintf("0x%02X", uint8(code))})
	}

	chords := KeySection{Title: "Chords (root C..B, optional # or b, then suffix)"}
	for _, q := range style.Qualities {
		if q == style.Cancel {
			continue
		}
		chords.Keys = append(chords.Keys, KeyBinding{"C" + q.Suffix(), q.String()})
	}
	chords.Keys = append(chords.Keys, KeyBinding{"other", "chord cancel"})

	timing := KeySection{Title: "Timing", Keys: []KeyBinding{
		{"T<bpm>", "tempo, e.g. T120"},
		{"TS<n><d>", "time signature, d=8 for eighths, e.g. TS68"},
		{"STOP", "end, one tick before the offset"},
	}}

	return []KeySection{sections, chords, timing}
}
