package playback

import (
	"fmt"
	"time"
)

// Progress is reported once per poll
type Progress struct {
	RealTime time.Duration
	Tick     uint32
	Pending  int
	BPM      float64
	Length   uint32 // ticks until Stop
}

// Fraction of the timeline played, 0..1
func (p Progress) Fraction() float64 {
	if p.Length == 0 {
		return 1
	}
	f := float64(p.Tick) / float64(p.Length)
	if f > 1 {
		return 1
	}
	return f
}

func (p Progress) String() string {
	sec := int64(p.RealTime / time.Second)
	nsec := int64(p.RealTime % time.Second)
	return fmt.Sprintf("RT:%3d.%09d TT:%6d QE:%3d Tempo:%3.0f BPM", sec, nsec, p.Tick, p.Pending, p.BPM)
}

// Reporter receives playback progress
type Reporter interface {
	Report(Progress)
}

type ReporterFunc func(Progress)

func (f ReporterFunc) Report(p Progress) { f(p) }

// ChanReporter forwards progress to a channel, dropping updates when full
type ChanReporter chan Progress

func (c ChanReporter) Report(p Progress) {
	select {
	case c <- p:
	default:
	}
}
