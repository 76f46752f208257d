package playback

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	gomidi "gitlab.com/gomidi/midi/v2"

	"midistyle/debug"
	"midistyle/style"
	"midistyle/timeline"
)

// DefaultPollInterval is the wait between queue status reads
const DefaultPollInterval = 100 * time.Millisecond

var ErrStarted = errors.New("scheduler already started")

// State of a playback run
type State int

const (
	NotStarted State = iota
	Running
	Draining
	Stopped
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not started"
	case Running:
		return "running"
	case Draining:
		return "draining"
	case Stopped:
		return "stopped"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// cursor is the playback position: the tick being generated and the index
// of the first timeline event not yet sent
type cursor struct {
	tick    uint32
	next    int
	clocked bool // Start or Clock for tick already sent
}

// Option configures a Scheduler
type Option func(*Scheduler)

func WithPollInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.poll = d
		}
	}
}

func WithReporter(r Reporter) Option {
	return func(s *Scheduler) {
		s.reporter = r
	}
}

// Scheduler streams a timeline to a Queue, keeping the number of pending
// events between the low and high water marks of the queue capacity.
type Scheduler struct {
	tl       *timeline.Timeline
	q        Queue
	poll     time.Duration
	reporter Reporter

	state      State
	cur        cursor
	high, low  int
	clockTicks uint32
	length     uint32
	pending    int
}

// New prepares playback of tl on q. The scheduler owns q from Start on and
// closes it when playback ends.
func New(tl *timeline.Timeline, q Queue, opts ...Option) *Scheduler {
	s := &Scheduler{
		tl:         tl,
		q:          q,
		poll:       DefaultPollInterval,
		clockTicks: max(uint32(tl.PPQN())/24, 1),
		length:     tl.Length(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scheduler) State() State { return s.state }

// Rewind moves the cursor back to the first event. Only valid before Start.
func (s *Scheduler) Rewind() error {
	if s.state != NotStarted {
		return ErrStarted
	}
	s.cur = cursor{}
	return nil
}

// Start sizes the batches from the queue capacity, sets the initial tempo
// and starts the queue at tick 0.
func (s *Scheduler) Start() error {
	if err := s.Rewind(); err != nil {
		return err
	}

	capacity, err := s.q.Capacity()
	if err != nil {
		return errors.Wrap(ErrQueueCapacity, err.Error())
	}
	if capacity <= 0 {
		return errors.Wrapf(ErrQueueCapacity, "capacity %d", capacity)
	}
	s.high = HighWater(capacity)
	s.low = LowWater(capacity)

	tempo := s.tl.TempoAt(0)
	if err := s.q.SetTempo(tempo, s.tl.PPQN()); err != nil {
		return errors.Wrap(err, "set queue tempo")
	}
	if err := s.q.Start(); err != nil {
		return errors.Wrap(err, "start queue")
	}

	s.state = Running
	debug.Log("sched", "start: capacity=%d high=%d low=%d tempo=%dus ppqn=%d length=%d",
		capacity, s.high, s.low, tempo, s.tl.PPQN(), s.length)
	return nil
}

// Run plays the timeline until the queue has delivered the final Stop or ctx
// is cancelled. Starts the scheduler if needed.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.state == NotStarted {
		if err := s.Start(); err != nil {
			return err
		}
	}

	for {
		if s.state == Running && s.pending < s.low {
			if err := s.fill(); err != nil {
				return s.abort(err)
			}
			if err := s.q.Drain(); err != nil {
				return s.abort(&SubmissionError{Tick: s.cur.tick, Err: err})
			}
		}

		timer := time.NewTimer(s.poll)
		select {
		case <-ctx.Done():
			timer.Stop()
			return s.abort(ctx.Err())
		case <-timer.C:
		}

		st, err := s.q.Status()
		if err != nil {
			var se *SubmissionError
			if !errors.As(err, &se) {
				err = &SubmissionError{Tick: st.Tick, Err: err}
			}
			return s.abort(err)
		}
		s.pending = st.Pending
		s.report(st)

		if s.state == Draining && st.Pending == 0 {
			s.state = Stopped
			debug.Log("sched", "drained at tick %d", st.Tick)
			return s.q.Close()
		}
	}
}

// fill generates at most one batch of high-water size. A step that does not
// fit is continued by the next fill.
func (s *Scheduler) fill() error {
	n := 0
	for s.state == Running && n < s.high {
		sent, err := s.step(s.high - n)
		n += sent
		if err != nil {
			return err
		}
	}
	debug.Log("sched", "batch=%d pending=%d cursor=%d", n, s.pending, s.cur.tick)
	return nil
}

// step emits up to budget items of the current cursor tick and advances the
// cursor once the tick is complete
func (s *Scheduler) step(budget int) (int, error) {
	tick := s.cur.tick
	sent := 0

	emit := func(msg gomidi.Message) error {
		if err := s.q.Schedule(tick, msg); err != nil {
			return &SubmissionError{Tick: tick, Err: err}
		}
		sent++
		return nil
	}

	if tick > 0 && tick < s.length && !s.cur.clocked {
		if err := emit(gomidi.TimingClock()); err != nil {
			return sent, err
		}
		s.cur.clocked = true
	}

	n, err := s.emitDue(tick, budget-sent)
	sent += n
	if err != nil {
		return sent, err
	}
	if sent >= budget {
		return sent, nil
	}

	if tick == 0 && !s.cur.clocked {
		if err := emit(gomidi.Start()); err != nil {
			return sent, err
		}
		s.cur.clocked = true
	}
	if tick >= s.length {
		if sent >= budget {
			return sent, nil
		}
		if err := emit(gomidi.Stop()); err != nil {
			return sent, err
		}
		s.state = Draining
		debug.Log("sched", "stop generated at tick %d", tick)
		return sent, nil
	}

	s.cur.tick += s.clockTicks
	s.cur.clocked = false
	return sent, nil
}

// emitDue sends up to budget unsent timeline events at or before tick, each
// at its own pulse. Events that are not sent live are passed over.
func (s *Scheduler) emitDue(tick uint32, budget int) (int, error) {
	events := s.tl.Events()
	sent := 0
	for ; s.cur.next < len(events) && events[s.cur.next].Pulse <= tick; s.cur.next++ {
		ev := events[s.cur.next]
		if !sendable(ev.Payload) {
			continue
		}
		if sent >= budget {
			break
		}
		if us, ok := style.TempoMicros(ev.Payload); ok {
			if err := s.q.ScheduleTempo(ev.Pulse, us); err != nil {
				return sent, &SubmissionError{Tick: ev.Pulse, Err: err}
			}
		} else if err := s.q.Schedule(ev.Pulse, gomidi.Message(ev.Payload)); err != nil {
			return sent, &SubmissionError{Tick: ev.Pulse, Err: err}
		}
		sent++
	}
	return sent, nil
}

func sendable(p []byte) bool {
	if style.IsSysEx(p) {
		return true
	}
	_, ok := style.TempoMicros(p)
	return ok
}

func (s *Scheduler) report(st Status) {
	if s.reporter == nil {
		return
	}
	bpm := st.BPM()
	if bpm == 0 {
		bpm = float64(style.MicrosPerMinute) / float64(s.tl.TempoAt(st.Tick))
	}
	s.reporter.Report(Progress{
		RealTime: st.RealTime,
		Tick:     st.Tick,
		Pending:  st.Pending,
		BPM:      bpm,
		Length:   s.length,
	})
}

// abort drops pending output and closes the queue, keeping cause as the result
func (s *Scheduler) abort(cause error) error {
	debug.Log("sched", "aborted at cursor %d: %v", s.cur.tick, cause)
	if err := s.q.Abort(); err != nil {
		debug.Log("sched", "abort failed: %v", err)
	}
	s.state = Stopped
	if err := s.q.Close(); err != nil {
		debug.Log("sched", "close failed: %v", err)
	}
	return cause
}
