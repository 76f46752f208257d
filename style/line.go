package style

import (
	"bufio"
	"io"
	"strings"

	"midistyle/debug"
)

const (
	// MaxTokenLen is the number of significant mnemonic characters; longer
	// tokens are truncated.
	MaxTokenLen = 7

	maxOffsetDigits = 3

	// a tempo below this does not fit the 24 bit µs/quarter field
	minTempoBPM = 4

	maxLineBytes = 64 * 1024
)

func truncate(token string) string {
	if len(token) > MaxTokenLen {
		return token[:MaxTokenLen]
	}
	return token
}

// DecodeLine decodes "<offset> <token>". ok is false for blank, comment or
// otherwise undecodable lines, which callers skip.
func DecodeLine(line string) (offset uint8, ev Event, ok bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return 0, Event{}, false
	}
	offset, ok = parseOffset(fields[0])
	if !ok {
		return 0, Event{}, false
	}
	ev, ok = DecodeToken(fields[1])
	if !ok {
		return 0, Event{}, false
	}
	return offset, ev, true
}

// DecodeToken decodes a single mnemonic: section names, STOP, TS<n><d>,
// T<bpm>, else a chord.
func DecodeToken(token string) (Event, bool) {
	token = truncate(token)
	if token == "" {
		return Event{}, false
	}

	if code, ok := DecodeSection(token); ok {
		return SectionEvent(code), true
	}
	if token == "STOP" {
		return StopEvent(), true
	}

	if token[0] == 'T' {
		if len(token) > 1 && token[1] == 'S' {
			return decodeMeter(token[2:])
		}
		return decodeTempo(token[1:])
	}

	c, ok := DecodeChord(token)
	if !ok {
		return Event{}, false
	}
	return ChordEvent(c), true
}

// TS<n><d>: numerator digit, then "8" for eighths, anything else for quarters
func decodeMeter(s string) (Event, bool) {
	if s == "" || s[0] < '1' || s[0] > '9' {
		return Event{}, false
	}
	ts := TimeSignature{Numerator: s[0] - '0', DenominatorPow2: 2}
	if len(s) > 1 && s[1] == '8' {
		ts.DenominatorPow2 = 3
	}
	return MeterEvent(ts), true
}

// T<digits>: leading decimal digits are the BPM, trailing garbage is ignored
func decodeTempo(s string) (Event, bool) {
	var bpm uint32
	digits := 0
	for ; digits < len(s) && s[digits] >= '0' && s[digits] <= '9'; digits++ {
		bpm = bpm*10 + uint32(s[digits]-'0')
	}
	if digits == 0 || bpm < minTempoBPM {
		return Event{}, false
	}
	return TempoEvent(bpm), true
}

func parseOffset(s string) (uint8, bool) {
	if s == "" || len(s) > maxOffsetDigits {
		return 0, false
	}
	v := 0
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
		v = v*10 + int(s[i]-'0')
	}
	if v > 255 {
		return 0, false
	}
	return uint8(v), true
}

// Line is a decoded input line
type Line struct {
	Number int // 1-based line number in the input
	Offset uint8
	Event  Event
}

// Scanner reads a style description and yields the decodable lines
type Scanner struct {
	sc      *bufio.Scanner
	line    Line
	number  int
	skipped int
}

func NewScanner(r io.Reader) *Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 256), maxLineBytes)
	return &Scanner{sc: sc}
}

// Scan advances to the next decodable line, skipping the rest
func (s *Scanner) Scan() bool {
	for s.sc.Scan() {
		s.number++
		text := s.sc.Text()
		offset, ev, ok := DecodeLine(text)
		if !ok {
			if strings.TrimSpace(text) != "" {
				s.skipped++
				debug.Log("decode", "line %d skipped: %q", s.number, text)
			}
			continue
		}
		s.line = Line{Number: s.number, Offset: offset, Event: ev}
		return true
	}
	return false
}

func (s *Scanner) Line() Line { return s.line }

// Skipped counts non-blank lines that did not decode
func (s *Scanner) Skipped() int { return s.skipped }

func (s *Scanner) Err() error { return s.sc.Err() }
