package playback

import (
	"errors"
	"fmt"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"

	"midistyle/style"
)

var (
	ErrQueueCapacity = errors.New("queue capacity unavailable")
	ErrQueueFull     = errors.New("queue full")
	ErrQueueClosed   = errors.New("queue closed")
)

// SubmissionError is a failed enqueue during playback
type SubmissionError struct {
	Tick uint32
	Err  error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submit at tick %d: %v", e.Tick, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// Status is a snapshot of the output queue
type Status struct {
	Pending  int
	Tick     uint32
	RealTime time.Duration
	Tempo    uint32 // µs per quarter
}

// BPM rounds the queue tempo
func (s Status) BPM() float64 {
	if s.Tempo == 0 {
		return 0
	}
	return float64(style.MicrosPerMinute) / float64(s.Tempo)
}

// Queue is a tick-scheduled MIDI output. Scheduled items are held back until
// Drain and delivered at their tick under the current tempo. Status reports
// the first failed delivery.
type Queue interface {
	Capacity() (int, error)
	SetTempo(microsPerQuarter uint32, ppq uint16) error
	Start() error
	Schedule(tick uint32, msg gomidi.Message) error
	ScheduleTempo(tick uint32, microsPerQuarter uint32) error
	Drain() error
	Status() (Status, error)
	Abort() error
	Close() error
}

// HighWater is the largest batch generated per refill: 2/5 of capacity
func HighWater(capacity int) int {
	return (2*capacity + 4) / 5
}

// LowWater is the pending count under which the scheduler refills: half the capacity
func LowWater(capacity int) int {
	return (capacity + 1) / 2
}
