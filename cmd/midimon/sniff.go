package main

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"

	"midistyle/style"
)

const clocksPerQuarter = 24

// sniffer turns received messages into log lines. Clocks are folded into one
// line per quarter note.
type sniffer struct {
	clocks int
}

func (s *sniffer) describe(msg gomidi.Message) (string, bool) {
	if len(msg) == 0 {
		return "", false
	}
	switch msg[0] {
	case 0xFA:
		s.clocks = 0
		return "Start", true
	case 0xFB:
		return "Continue", true
	case 0xFC:
		return fmt.Sprintf("Stop after %d clocks", s.clocks), true
	case 0xF8:
		s.clocks++
		if s.clocks%clocksPerQuarter != 0 {
			return "", false
		}
		return fmt.Sprintf("Clock  beat %d", s.clocks/clocksPerQuarter), true
	}

	if ev, ok := style.ParsePayload(msg); ok {
		return ev.String(), true
	}
	var data []byte
	if msg.GetSysEx(&data) {
		return fmt.Sprintf("SysEx  % X", data), true
	}
	return msg.String(), true
}
