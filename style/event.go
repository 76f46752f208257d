package style

import "fmt"

// Kind tags the variant carried by an Event
type Kind uint8

const (
	KindSection Kind = iota + 1
	KindChord
	KindTempo
	KindTimeSignature
	KindStop
)

func (k Kind) String() string {
	switch k {
	case KindSection:
		return "section"
	case KindChord:
		return "chord"
	case KindTempo:
		return "tempo"
	case KindTimeSignature:
		return "time-signature"
	case KindStop:
		return "stop"
	}
	return "unknown"
}

// Tempo in beats per minute
type Tempo struct {
	BPM uint32
}

// MicrosPerQuarter converts to the meta event unit. BPM must be non-zero.
func (t Tempo) MicrosPerQuarter() uint32 {
	return MicrosPerMinute / t.BPM
}

// TimeSignature with the denominator stored as a power of two (2 = quarter, 3 = eighth)
type TimeSignature struct {
	Numerator       uint8
	DenominatorPow2 uint8
}

// Denominator returns the note value, e.g. 4 for x/4
func (ts TimeSignature) Denominator() int {
	return 1 << ts.DenominatorPow2
}

func (ts TimeSignature) String() string {
	return fmt.Sprintf("%d/%d", ts.Numerator, ts.Denominator())
}

// CommonTime is 4/4
var CommonTime = TimeSignature{Numerator: 4, DenominatorPow2: 2}

// Event is one decoded style line. Only the field matching Kind is meaningful.
type Event struct {
	Kind    Kind
	Section SectionCode
	Chord   Chord
	Tempo   Tempo
	Meter   TimeSignature
}

func SectionEvent(code SectionCode) Event { return Event{Kind: KindSection, Section: code} }
func ChordEvent(c Chord) Event { return Event{Kind: KindChord, Chord: c} }
func TempoEvent(bpm uint32) Event { return Event{Kind: KindTempo, Tempo: Tempo{BPM: bpm}} }
func MeterEvent(ts TimeSignature) Event { return Event{Kind: KindTimeSignature, Meter: ts} }
func StopEvent() Event { return Event{Kind: KindStop} }

// Payload returns the encoded bytes for the event. Stop encodes as the
// end-of-track meta event.
func (e Event) Payload() []byte {
	switch e.Kind {
	case KindSection:
		return SectionPayload(e.Section)
	case KindChord:
		return ChordPayload(e.Chord)
	case KindTempo:
		return TempoPayload(e.Tempo.MicrosPerQuarter())
	case KindTimeSignature:
		return MeterPayload(e.Meter)
	case KindStop:
		return EndOfTrack()
	}
	return nil
}

func (e Event) String() string {
	switch e.Kind {
	case KindSection:
		return "Section " + e.Section.String()
	case KindChord:
		return "Chord " + e.Chord.String()
	case KindTempo:
		return fmt.Sprintf("Tempo %d BPM", e.Tempo.BPM)
	case KindTimeSignature:
		return "TimeSignature " + e.Meter.String()
	case KindStop:
		return "Stop"
	}
	return "Unknown"
}
