package style

// SectionCode selects an accompaniment pattern (intro/main/fill/break/ending)
type SectionCode uint8

const (
	Intro1  SectionCode = 0x00
	Intro2  SectionCode = 0x01
	Intro3  SectionCode = 0x03
	MainA   SectionCode = 0x08
	MainB   SectionCode = 0x09
	MainC   SectionCode = 0x0A
	MainD   SectionCode = 0x0B
	FillInA SectionCode = 0x10
	FillInB SectionCode = 0x11
	FillInC SectionCode = 0x12
	FillInD SectionCode = 0x13
	Break   SectionCode = 0x18
	Ending1 SectionCode = 0x20
	Ending2 SectionCode = 0x21
	Ending3 SectionCode = 0x22
	Ending4 SectionCode = 0x23
)

// sections is the mnemonic table. Order matters only for String().
var sections = []struct {
	name string
	code SectionCode
}{
	{"BREAK", Break},
	{"INTRO1", Intro1},
	{"INTRO2", Intro2},
	{"INTRO3", Intro3},
	{"FILLINA", FillInA},
	{"FILLINB", FillInB},
	{"FILLINC", FillInC},
	{"FILLIND", FillInD},
	{"MAIN_A", MainA},
	{"MAIN_B", MainB},
	{"MAIN_C", MainC},
	{"MAIN_D", MainD},
	{"ENDING1", Ending1},
	{"ENDING2", Ending2},
	{"ENDING3", Ending3},
	{"ENDING4", Ending4},
}

var sectionByName = func() map[string]SectionCode {
	m := make(map[string]SectionCode, len(sections))
	for _, s := range sections {
		m[s.name] = s.code
	}
	return m
}()

// DecodeSection looks up a section mnemonic (case-sensitive, exact match)
func DecodeSection(token string) (SectionCode, bool) {
	code, ok := sectionByName[token]
	return code, ok
}

// Sections returns all section mnemonics in table order
func Sections() []string {
	names := make([]string, len(sections))
	for i, s := range sections {
		names[i] = s.name
	}
	return names
}

// Valid reports whether c is one of the named sections
func (c SectionCode) Valid() bool {
	for _, s := range sections {
		if s.code == c {
			return true
		}
	}
	return false
}

func (c SectionCode) String() string {
	for _, s := range sections {
		if s.code == c {
			return s.name
		}
	}
	return "SECTION?"
}

// Root is the chord root, low nibble of the root byte
type Root uint8

const (
	RootC Root = 0x01
	RootD Root = 0x02
	RootE Root = 0x03
	RootF Root = 0x04
	RootG Root = 0x05
	RootA Root = 0x06
	RootB Root = 0x07
)

var rootLetters = map[byte]Root{
	'C': RootC, 'D': RootD, 'E': RootE, 'F': RootF,
	'G': RootG, 'A': RootA, 'B': RootB,
}

// Roots lists every root in pitch order
var Roots = []Root{RootC, RootD, RootE, RootF, RootG, RootA, RootB}

func (r Root) String() string {
	if r < RootC || r > RootB {
		return "?"
	}
	i := r - RootC
	return "CDEFGAB"[i : i+1]
}

// Accidental is the high nibble of the root byte
type Accidental uint8

const (
	Flat    Accidental = 0x20
	Natural Accidental = 0x30
	Sharp   Accidental = 0x40
)

// Accidentals lists every accidental
var Accidentals = []Accidental{Flat, Natural, Sharp}

func (a Accidental) String() string {
	switch a {
	case Flat:
		return "b"
	case Sharp:
		return "#"
	}
	return ""
}

// Quality is the chord type byte
type Quality uint8

const (
	Major      Quality = 0x00
	Major6     Quality = 0x01
	Major7     Quality = 0x02
	Add9       Quality = 0x04
	Augmented  Quality = 0x07
	Minor      Quality = 0x08
	Minor6     Quality = 0x09
	Minor7     Quality = 0x0A
	Diminished Quality = 0x11
	Dim7       Quality = 0x12
	Dominant7  Quality = 0x13
	Sus4Dom7   Quality = 0x14
	Power      Quality = 0x1F
	Sus4       Quality = 0x20
	Sus2       Quality = 0x21
	Cancel     Quality = 0x22
)

// Qualities lists every chord quality
var Qualities = []Quality{
	Major, Major6, Major7, Add9, Augmented, Minor, Minor6, Minor7,
	Diminished, Dim7, Dominant7, Sus4Dom7, Power, Sus4, Sus2, Cancel,
}

// exact suffixes, checked before the single character fallbacks
var qualitySuffixes = map[string]Quality{
	"M7":    Major7,
	"m6":    Minor6,
	"m7":    Minor7,
	"add9":  Add9,
	"aug":   Augmented,
	"dim":   Diminished,
	"dim7":  Dim7,
	"7sus4": Sus4Dom7,
}

var qualityFallbacks = map[byte]Quality{
	'm': Minor,
	'2': Sus2,
	'4': Sus4,
	'5': Power,
	'6': Major6,
	'7': Dominant7,
}

// Suffix is the canonical mnemonic suffix for q; DecodeChord maps it back to q
func (q Quality) Suffix() string {
	switch q {
	case Major:
		return ""
	case Major6:
		return "6"
	case Major7:
		return "M7"
	case Add9:
		return "add9"
	case Augmented:
		return "aug"
	case Minor:
		return "m"
	case Minor6:
		return "m6"
	case Minor7:
		return "m7"
	case Diminished:
		return "dim"
	case Dim7:
		return "dim7"
	case Dominant7:
		return "7"
	case Sus4Dom7:
		return "7sus4"
	case Power:
		return "5"
	case Sus4:
		return "4"
	case Sus2:
		return "2"
	}
	return "CC"
}

func (q Quality) String() string {
	if q == Cancel {
		return "cancel"
	}
	if q == Major {
		return "maj"
	}
	return q.Suffix()
}

// Chord is a decoded chord symbol
type Chord struct {
	Root       Root
	Accidental Accidental
	Quality    Quality
}

func (c Chord) String() string {
	return c.Root.String() + c.Accidental.String() + c.Quality.Suffix()
}

// DecodeChord decodes <root>[#|b]<quality>. Unknown roots fall back to C and
// unknown qualities to Cancel, so any non-empty token decodes.
func DecodeChord(token string) (Chord, bool) {
	token = truncate(token)
	if token == "" {
		return Chord{}, false
	}

	c := Chord{Root: RootC, Accidental: Natural}
	if r, ok := rootLetters[token[0]]; ok {
		c.Root = r
	}

	rest := token[1:]
	if len(rest) > 0 {
		switch rest[0] {
		case '#':
			c.Accidental = Sharp
			rest = rest[1:]
		case 'b':
			c.Accidental = Flat
			rest = rest[1:]
		}
	}

	c.Quality = decodeQuality(rest)
	return c, true
}

func decodeQuality(s string) Quality {
	if s == "" {
		return Major
	}
	if q, ok := qualitySuffixes[s]; ok {
		return q
	}
	if q, ok := qualityFallbacks[s[0]]; ok {
		return q
	}
	return Cancel
}
