package timeline

import (
	"time"

	"midistyle/style"
)

// Summary describes a loaded timeline for the startup report
type Summary struct {
	PPQN           uint16
	Events         int
	Length         uint32
	Duration       time.Duration
	TempoMicros    uint32
	TempoBPM       uint32
	Meter          style.TimeSignature
	ClocksPerClick uint8
	Per32nds       uint8
}

// Summarize reports the initial tempo and meter of t
func Summarize(t *Timeline) Summary {
	us := t.TempoAt(0)
	return Summary{
		PPQN:           t.ppqn,
		Events:         t.Len(),
		Length:         t.Length(),
		Duration:       t.Duration(),
		TempoMicros:    us,
		TempoBPM:       (style.MicrosPerMinute + us/2) / us,
		Meter:          t.MeterAt(0),
		ClocksPerClick: style.ClocksPerClick,
		Per32nds:       style.ThirtySecondsPerQuarter,
	}
}
