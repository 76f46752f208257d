package style

// Yamaha style control SysEx and SMF meta event templates
//
//	section  F0 43 7E 00 ss 7F F7
//	chord    F0 43 7E 02 cr ct 7F 7F F7
//	tempo    FF 51 03 tt tt tt
//	meter    FF 58 04 nn dd cc bb
//	EOT      FF 2F 00
const (
	sysExStart  = 0xF0
	sysExEnd    = 0xF7
	yamahaID    = 0x43
	styleDevice = 0x7E
	switchOn    = 0x7F

	msgSection = 0x00
	msgChord   = 0x02

	metaStatus = 0xFF
	metaTempo  = 0x51
	metaMeter  = 0x58
	metaEOT    = 0x2F

	// MicrosPerMinute is the numerator for BPM <-> µs/quarter conversion
	MicrosPerMinute = 60_000_000

	// ClocksPerClick and ThirtySecondsPerQuarter are the fixed tail of the meter event
	ClocksPerClick          = 0x18
	ThirtySecondsPerQuarter = 0x08

	// DefaultMicrosPerQuarter is 120 BPM
	DefaultMicrosPerQuarter = 500_000
)

// SectionPayload encodes a section switch
func SectionPayload(code SectionCode) []byte {
	return []byte{sysExStart, yamahaID, styleDevice, msgSection, byte(code), switchOn, sysExEnd}
}

// ChordPayload encodes a chord change with no bass note
func ChordPayload(c Chord) []byte {
	return []byte{
		sysExStart, yamahaID, styleDevice, msgChord,
		byte(c.Root) | byte(c.Accidental), byte(c.Quality),
		0x7F, 0x7F, sysExEnd,
	}
}

// TempoPayload encodes a set-tempo meta event, big endian 24 bit
func TempoPayload(microsPerQuarter uint32) []byte {
	return []byte{
		metaStatus, metaTempo, 0x03,
		byte(microsPerQuarter >> 16),
		byte((microsPerQuarter & 0xFF00) >> 8),
		byte(microsPerQuarter & 0xFF),
	}
}

// MeterPayload encodes a time signature meta event
func MeterPayload(ts TimeSignature) []byte {
	return []byte{metaStatus, metaMeter, 0x04, ts.Numerator, ts.DenominatorPow2, ClocksPerClick, ThirtySecondsPerQuarter}
}

// EndOfTrack returns the end-of-track meta event
func EndOfTrack() []byte {
	return []byte{metaStatus, metaEOT, 0x00}
}

// IsSysEx reports whether p is a complete SysEx message
func IsSysEx(p []byte) bool {
	return len(p) >= 2 && p[0] == sysExStart && p[len(p)-1] == sysExEnd
}

// IsMeta reports whether p is an SMF meta event
func IsMeta(p []byte) bool {
	return len(p) >= 3 && p[0] == metaStatus
}

// IsEndOfTrack reports whether p is the end-of-track meta event
func IsEndOfTrack(p []byte) bool {
	return len(p) == 3 && p[0] == metaStatus && p[1] == metaEOT && p[2] == 0
}

// TempoMicros extracts µs/quarter from a set-tempo meta event
func TempoMicros(p []byte) (uint32, bool) {
	if len(p) != 6 || p[0] != metaStatus || p[1] != metaTempo || p[2] != 0x03 {
		return 0, false
	}
	return uint32(p[3])<<16 | uint32(p[4])<<8 | uint32(p[5]), true
}

// ParsePayload decodes bytes produced by Event.Payload back into an Event.
// Tempo BPM is rounded from µs/quarter.
func ParsePayload(p []byte) (Event, bool) {
	switch {
	case len(p) == 7 && p[0] == sysExStart && p[1] == yamahaID && p[2] == styleDevice && p[3] == msgSection:
		code := SectionCode(p[4])
		if !code.Valid() {
			return Event{}, false
		}
		return SectionEvent(code), true

	case len(p) == 9 && p[0] == sysExStart && p[1] == yamahaID && p[2] == styleDevice && p[3] == msgChord:
		c := Chord{
			Root:       Root(p[4] & 0x0F),
			Accidental: Accidental(p[4] & 0xF0),
			Quality:    Quality(p[5]),
		}
		return ChordEvent(c), true

	case len(p) == 7 && p[0] == metaStatus && p[1] == metaMeter && p[2] == 0x04:
		return MeterEvent(TimeSignature{Numerator: p[3], DenominatorPow2: p[4]}), true

	case IsEndOfTrack(p):
		return StopEvent(), true
	}

	if us, ok := TempoMicros(p); ok && us > 0 {
		return TempoEvent((MicrosPerMinute + us/2) / us), true
	}
	return Event{}, false
}
