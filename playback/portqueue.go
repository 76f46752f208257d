package playback

import (
	"cmp"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/pkg/errors"
	gomidi "gitlab.com/gomidi/midi/v2"

	"midistyle/debug"
	"midistyle/style"
)

// Sender writes one message to an output port
type Sender func(gomidi.Message) error

type item struct {
	tick  uint32
	msg   gomidi.Message
	tempo uint32 // µs per quarter, set for tempo changes only
}

// PortQueue is a Queue in front of a live port. A dispatcher goroutine
// converts ticks to wall clock time under the current tempo and sends each
// item when due.
type PortQueue struct {
	send     Sender
	capacity int

	mu         sync.Mutex
	staged     []item
	items      []item // drained, ordered by tick
	ppq        uint16
	tempo      uint32
	anchorTick uint32
	anchorAt   time.Time
	startedAt  time.Time
	started    bool
	closed     bool
	sendErr    error

	wake chan struct{} // queue changed, recalculate the next wait
	stop chan struct{}
	done chan struct{}
}

// NewPortQueue holds at most capacity undelivered items
func NewPortQueue(send Sender, capacity int) *PortQueue {
	return &PortQueue{
		send:     send,
		capacity: capacity,
		ppq:      96,
		tempo:    style.DefaultMicrosPerQuarter,
		wake:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (q *PortQueue) Capacity() (int, error) {
	if q.capacity <= 0 {
		return 0, ErrQueueCapacity
	}
	return q.capacity, nil
}

func (q *PortQueue) SetTempo(microsPerQuarter uint32, ppq uint16) error {
	if microsPerQuarter == 0 || ppq == 0 {
		return errors.New("tempo and resolution must be non-zero")
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		q.reanchor(time.Now())
	}
	q.tempo = microsPerQuarter
	q.ppq = ppq
	return nil
}

// Start sets tick 0 to now and launches the dispatcher
func (q *PortQueue) Start() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}
	if q.started {
		return nil
	}
	now := time.Now()
	q.started = true
	q.startedAt = now
	q.anchorAt = now
	q.anchorTick = 0
	go q.dispatch()
	debug.Log("queue", "started: tempo=%dus ppq=%d", q.tempo, q.ppq)
	return nil
}

func (q *PortQueue) Schedule(tick uint32, msg gomidi.Message) error {
	return q.stage(item{tick: tick, msg: msg})
}

func (q *PortQueue) ScheduleTempo(tick uint32, microsPerQuarter uint32) error {
	if microsPerQuarter == 0 {
		return errors.New("tempo must be non-zero")
	}
	return q.stage(item{tick: tick, tempo: microsPerQuarter})
}

func (q *PortQueue) stage(it item) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}
	if q.sendErr != nil {
		return q.sendErr
	}
	if len(q.items)+len(q.staged) >= q.capacity {
		return ErrQueueFull
	}
	q.staged = append(q.staged, it)
	return nil
}

// Drain hands staged items to the dispatcher
func (q *PortQueue) Drain() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	n := len(q.staged)
	q.items = append(q.items, q.staged...)
	q.staged = q.staged[:0]
	slices.SortStableFunc(q.items, func(a, b item) int { return cmp.Compare(a.tick, b.tick) })
	q.mu.Unlock()

	debug.LogEvery(10, "queue", "drain: %d items", n)
	q.interrupt()
	return nil
}

func (q *PortQueue) Status() (Status, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	st := Status{
		Pending: len(q.items) + len(q.staged),
		Tempo:   q.tempo,
	}
	if q.started {
		now := time.Now()
		st.Tick = q.tickAt(now)
		st.RealTime = now.Sub(q.startedAt)
	}
	return st, q.sendErr
}

// Abort drops everything undelivered and sends Stop right away
func (q *PortQueue) Abort() error {
	q.mu.Lock()
	dropped := len(q.items) + len(q.staged)
	q.items = nil
	q.staged = nil
	q.mu.Unlock()

	q.interrupt()
	debug.Log("queue", "abort: dropped %d items", dropped)
	return q.send(gomidi.Stop())
}

// Close stops the dispatcher. The port stays open.
func (q *PortQueue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	started := q.started
	q.mu.Unlock()

	close(q.stop)
	if started {
		<-q.done
	}
	return nil
}

func (q *PortQueue) interrupt() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// timeAt is the wall clock time of tick under the current tempo. Caller
// holds mu.
func (q *PortQueue) timeAt(tick uint32) time.Time {
	if tick <= q.anchorTick {
		return q.anchorAt
	}
	us := uint64(tick-q.anchorTick) * uint64(q.tempo) / uint64(q.ppq)
	return q.anchorAt.Add(time.Duration(us) * time.Microsecond)
}

// tickAt is the inverse of timeAt. Caller holds mu.
func (q *PortQueue) tickAt(t time.Time) uint32 {
	elapsed := t.Sub(q.anchorAt)
	if elapsed <= 0 {
		return q.anchorTick
	}
	return q.anchorTick + uint32(uint64(elapsed.Microseconds())*uint64(q.ppq)/uint64(q.tempo))
}

// reanchor moves the tick origin to t so a tempo change only affects later
// ticks. Caller holds mu.
func (q *PortQueue) reanchor(t time.Time) {
	q.anchorTick = q.tickAt(t)
	q.anchorAt = t
}

// dispatch sends items as they become due
func (q *PortQueue) dispatch() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(q.done)

	for {
		q.mu.Lock()
		if len(q.items) == 0 {
			q.mu.Unlock()
			select {
			case <-q.stop:
				return
			case <-q.wake:
				continue
			}
		}
		wait := time.Until(q.timeAt(q.items[0].tick))
		q.mu.Unlock()

		if wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-q.stop:
				timer.Stop()
				return
			case <-q.wake:
				timer.Stop()
				continue
			case <-timer.C:
			}
		}

		q.mu.Lock()
		if len(q.items) == 0 || time.Until(q.timeAt(q.items[0].tick)) > 0 {
			q.mu.Unlock()
			continue
		}
		it := q.items[0]
		q.items = q.items[1:]
		if it.tempo != 0 {
			// anchor on the scheduled time so later ticks don't drift
			if it.tick > q.anchorTick {
				q.anchorAt = q.timeAt(it.tick)
				q.anchorTick = it.tick
			}
			q.tempo = it.tempo
			q.mu.Unlock()
			debug.Log("queue", "tempo %dus at tick %d", it.tempo, it.tick)
			continue
		}
		q.mu.Unlock()

		if err := q.send(it.msg); err != nil {
			q.mu.Lock()
			if q.sendErr == nil {
				q.sendErr = &SubmissionError{Tick: it.tick, Err: err}
			}
			q.mu.Unlock()
			debug.Log("queue", "send failed at tick %d: %v", it.tick, err)
		}
	}
}
