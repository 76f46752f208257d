package midi

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	gomidi "gitlab.com/gomidi/midi/v2"

	"midistyle/debug"
)

// Received is a message read from an input port
type Received struct {
	Message gomidi.Message
	At      time.Duration // driver timestamp
}

// Listener reads an input port including SysEx
type Listener struct {
	name     string
	stopFunc func()
	recv     chan Received
	done     chan struct{}
	once     sync.Once
}

// Listen opens the input port named by address. Messages are dropped when the
// consumer falls behind.
func Listen(address string, timeout time.Duration) (*Listener, error) {
	ports, err := scan(timeout)
	if err != nil {
		return nil, err
	}
	idx, ok := matchPort(portNames(ports.ins), address)
	if !ok {
		return nil, errors.Wrapf(ErrNoDestination, "source %q", address)
	}

	in := ports.ins[idx]
	l := newListener(in.String())
	stop, err := gomidi.ListenTo(in, l.deliver, gomidi.UseSysEx(), gomidi.HandleError(func(err error) {
		debug.Log("port", "listen %s: %v", l.name, err)
	}))
	if err != nil {
		return nil, errors.Wrapf(err, "open input %s", in.String())
	}
	l.stopFunc = stop
	debug.Log("port", "listening on %d: %s", idx, l.name)
	return l, nil
}

func newListener(name string) *Listener {
	return &Listener{
		name: name,
		recv: make(chan Received, 256),
		done: make(chan struct{}),
	}
}

// deliver runs on the driver's callback goroutine, possibly after Close
func (l *Listener) deliver(msg gomidi.Message, timestampms int32) {
	select {
	case <-l.done:
		return
	default:
	}
	select {
	case l.recv <- Received{Message: msg, At: time.Duration(timestampms) * time.Millisecond}:
	default:
	}
}

func (l *Listener) Name() string { return l.name }

// Messages is never closed; stop reading after Close
func (l *Listener) Messages() <-chan Received { return l.recv }

func (l *Listener) Close() error {
	l.once.Do(func() {
		close(l.done)
		if l.stopFunc != nil {
			l.stopFunc()
		}
	})
	return nil
}
