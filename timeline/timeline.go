package timeline

import (
	"slices"
	"sort"
	"time"

	"midistyle/style"
)

// Event is an encoded payload at an absolute pulse position
type Event struct {
	Pulse   uint32
	Payload []byte
}

// Timeline is an ordered event sequence at a fixed resolution. Events with
// equal pulses keep their insertion order.
type Timeline struct {
	ppqn   uint16
	events []Event
	closed bool
}

func newTimeline(ppqn uint16) *Timeline {
	return &Timeline{ppqn: ppqn}
}

// PPQN is the resolution in pulses per quarter note
func (t *Timeline) PPQN() uint16 { return t.ppqn }

// Events returns the events in order. Callers must not modify them.
func (t *Timeline) Events() []Event { return t.events }

func (t *Timeline) Len() int { return len(t.events) }

// Closed reports whether the timeline ends with an end-of-track event
func (t *Timeline) Closed() bool { return t.closed }

// Length is the pulse of the last event
func (t *Timeline) Length() uint32 {
	if len(t.events) == 0 {
		return 0
	}
	return t.events[len(t.events)-1].Pulse
}

// Deltas returns each event's distance from the previous one. The sum equals
// Length().
func (t *Timeline) Deltas() []uint32 {
	deltas := make([]uint32, len(t.events))
	var prev uint32
	for i, ev := range t.events {
		deltas[i] = ev.Pulse - prev
		prev = ev.Pulse
	}
	return deltas
}

// TempoAt returns the µs/quarter in effect at pulse (120 BPM if none set)
func (t *Timeline) TempoAt(pulse uint32) uint32 {
	tempo := uint32(style.DefaultMicrosPerQuarter)
	for _, ev := range t.events {
		if ev.Pulse > pulse {
			break
		}
		if us, ok := style.TempoMicros(ev.Payload); ok {
			tempo = us
		}
	}
	return tempo
}

// MeterAt returns the time signature in effect at pulse (4/4 if none set)
func (t *Timeline) MeterAt(pulse uint32) style.TimeSignature {
	meter := style.CommonTime
	for _, ev := range t.events {
		if ev.Pulse > pulse {
			break
		}
		if e, ok := style.ParsePayload(ev.Payload); ok && e.Kind == style.KindTimeSignature {
			meter = e.Meter
		}
	}
	return meter
}

// Duration is the wall clock length following the tempo map
func (t *Timeline) Duration() time.Duration {
	if t.ppqn == 0 {
		return 0
	}
	var (
		total time.Duration
		pos   uint32
		tempo = uint64(style.DefaultMicrosPerQuarter)
	)
	for _, ev := range t.events {
		total += ticksToDuration(ev.Pulse-pos, tempo, t.ppqn)
		pos = ev.Pulse
		if us, ok := style.TempoMicros(ev.Payload); ok {
			tempo = uint64(us)
		}
	}
	return total
}

func ticksToDuration(ticks uint32, microsPerQuarter uint64, ppqn uint16) time.Duration {
	return time.Duration(uint64(ticks)*microsPerQuarter*1000/uint64(ppqn)) * time.Nanosecond
}

// insert places ev after every event at the same or an earlier pulse
func (t *Timeline) insert(ev Event) {
	i := sort.Search(len(t.events), func(i int) bool { return t.events[i].Pulse > ev.Pulse })
	t.events = slices.Insert(t.events, i, ev)
}

// insertBeforeEnd keeps a trailing end-of-track event last
func (t *Timeline) insertBeforeEnd(ev Event) {
	if !t.closed {
		t.insert(ev)
		return
	}
	n := len(t.events) - 1
	i := sort.Search(n, func(i int) bool { return t.events[i].Pulse > ev.Pulse })
	t.events = slices.Insert(t.events, i, ev)
}
