package timeline

import (
	"errors"
	"fmt"

	"midistyle/debug"
	"midistyle/style"
)

var (
	ErrStopAtZero   = errors.New("STOP at offset 0")
	ErrStopRepeated = errors.New("STOP already given")
	ErrAfterStop    = errors.New("event after STOP")
	ErrOffsetOrder  = errors.New("offset lower than previous line")
	ErrUnknownEvent = errors.New("unknown event kind")
)

// TimelineError is a structural problem with the pushed event sequence
type TimelineError struct {
	Offset uint8
	Kind   style.Kind
	Err    error
}

func (e *TimelineError) Error() string {
	return fmt.Sprintf("timeline: %s at offset %d: %v", e.Kind, e.Offset, e.Err)
}

func (e *TimelineError) Unwrap() error { return e.Err }

// Option configures a Builder
type Option func(*Builder)

// WithTempo fixes the tempo for the whole run; in-file tempo events are ignored
func WithTempo(bpm uint32) Option {
	return func(b *Builder) {
		if bpm > 0 {
			b.tempo = bpm
		}
	}
}

// WithTimeSignature replaces the initial 4/4
func WithTimeSignature(ts style.TimeSignature) Option {
	return func(b *Builder) {
		b.meter = ts
	}
}

// Builder accumulates decoded events in file order
type Builder struct {
	ppqn        uint16
	meter       style.TimeSignature
	tempo       uint32 // override BPM, 0 = none
	tempoPlaced bool
	lastOffset  int
	stopped     bool
	tl          *Timeline
}

// NewBuilder seeds a timeline with the initial time signature and, with a
// tempo override, the fixed tempo at pulse 0.
func NewBuilder(ppqn uint16, opts ...Option) *Builder {
	b := &Builder{
		ppqn:       ppqn,
		meter:      style.CommonTime,
		lastOffset: -1,
		tl:         newTimeline(ppqn),
	}
	for _, opt := range opts {
		opt(b)
	}

	b.tl.insert(Event{Pulse: 0, Payload: style.MeterPayload(b.meter)})
	if b.tempo > 0 {
		b.tl.insert(Event{Pulse: 0, Payload: style.TempoEvent(b.tempo).Payload()})
	}
	return b
}

// Push appends an event decoded from a line with the given beat offset
func (b *Builder) Push(offset uint8, ev style.Event) error {
	fail := func(err error) error {
		return &TimelineError{Offset: offset, Kind: ev.Kind, Err: err}
	}

	if b.stopped {
		if ev.Kind == style.KindStop {
			return fail(ErrStopRepeated)
		}
		return fail(ErrAfterStop)
	}
	if int(offset) < b.lastOffset {
		return fail(ErrOffsetOrder)
	}
	b.lastOffset = int(offset)

	pulse := uint32(offset) * uint32(b.ppqn)

	switch ev.Kind {
	case style.KindSection, style.KindChord, style.KindTimeSignature:
		b.tl.insert(Event{Pulse: pulse, Payload: ev.Payload()})

	case style.KindTempo:
		if b.tempo > 0 {
			debug.Log("timeline", "tempo %d at %d ignored, fixed at %d", ev.Tempo.BPM, offset, b.tempo)
			return nil
		}
		if !b.tempoPlaced {
			// playback starts with the right tempo
			b.tempoPlaced = true
			pulse = 0
		}
		b.tl.insert(Event{Pulse: pulse, Payload: ev.Payload()})

	case style.KindStop:
		if offset == 0 {
			return fail(ErrStopAtZero)
		}
		// one pulse before the STOP beat, but never before the last event
		eot := max(pulse-1, b.tl.Length())
		b.tl.insert(Event{Pulse: eot, Payload: style.EndOfTrack()})
		b.tl.closed = true
		b.stopped = true

	default:
		return fail(ErrUnknownEvent)
	}
	return nil
}

// Finish closes the timeline and hands it over. Without a STOP the end of
// track is placed on the last event.
func (b *Builder) Finish() *Timeline {
	if !b.tl.closed {
		b.tl.insert(Event{Pulse: b.tl.Length(), Payload: style.EndOfTrack()})
		b.tl.closed = true
	}
	b.stopped = true
	debug.Log("timeline", "finished: %d events, %d pulses", b.tl.Len(), b.tl.Length())
	return b.tl
}
