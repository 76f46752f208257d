package timeline

import (
	gomidi "gitlab.com/gomidi/midi/v2"
)

const (
	clickChannel  = 9  // GM drums, channel 10
	clickNote     = 56 // cowbell
	clickVelocity = 32
	ghostVelocity = 1
	countInBeats  = 4
)

// AddMetronome adds a cowbell click on every quarter note up to the end of
// the timeline. The first bar clicks at velocity 1. Returns the number of clicks added.
func AddMetronome(t *Timeline) int {
	ppqn := uint32(t.ppqn)
	if ppqn == 0 {
		return 0
	}
	end := t.Length()
	n := 0
	for p := uint32(0); p+ppqn/2 <= end; p += ppqn {
		velocity := uint8(clickVelocity)
		if p < countInBeats*ppqn {
			velocity = ghostVelocity
		}
		t.insertBeforeEnd(Event{Pulse: p, Payload: gomidi.NoteOn(clickChannel, clickNote, velocity)})
		t.insertBeforeEnd(Event{Pulse: p + ppqn/2, Payload: gomidi.NoteOff(clickChannel, clickNote)})
		n++
	}
	return n
}
