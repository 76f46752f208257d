package midi

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"midistyle/debug"
)

// DefaultTimeout bounds port enumeration; CoreMIDI can hang
const DefaultTimeout = 3 * time.Second

var (
	ErrTimeout       = errors.New("MIDI driver did not answer")
	ErrNoDestination = errors.New("no such MIDI port")
)

// Destination is a port as listed by the driver
type Destination struct {
	Index int
	Name  string
}

func (d Destination) String() string {
	return fmt.Sprintf("%3d  %s", d.Index, d.Name)
}

type portList struct {
	ins  []drivers.In
	outs []drivers.Out
}

// scan lists ports with a timeout
func scan(timeout time.Duration) (portList, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ch := make(chan portList, 1)
	go func() {
		ch <- portList{ins: gomidi.GetInPorts(), outs: gomidi.GetOutPorts()}
	}()

	select {
	case r := <-ch:
		return r, nil
	case <-time.After(timeout):
		// User needs to run: sudo killall coreaudiod midiserver
		return portList{}, ErrTimeout
	}
}

// ListDestinations returns the output ports
func ListDestinations(timeout time.Duration) ([]Destination, error) {
	ports, err := scan(timeout)
	if err != nil {
		return nil, err
	}
	dests := make([]Destination, len(ports.outs))
	for i, p := range ports.outs {
		dests[i] = Destination{Index: i, Name: p.String()}
	}
	return dests, nil
}

// ListSources returns the input ports
func ListSources(timeout time.Duration) ([]Destination, error) {
	ports, err := scan(timeout)
	if err != nil {
		return nil, err
	}
	srcs := make([]Destination, len(ports.ins))
	for i, p := range ports.ins {
		srcs[i] = Destination{Index: i, Name: p.String()}
	}
	return srcs, nil
}

// matchPort resolves an address: a port index, an exact name, or a
// case-insensitive part of a name (first match wins)
func matchPort(names []string, address string) (int, bool) {
	address = strings.TrimSpace(address)
	if address == "" {
		return 0, false
	}
	if i, err := strconv.Atoi(address); err == nil {
		return i, i >= 0 && i < len(names)
	}
	for i, name := range names {
		if name == address {
			return i, true
		}
	}
	lower := strings.ToLower(address)
	for i, name := range names {
		if strings.Contains(strings.ToLower(name), lower) {
			return i, true
		}
	}
	return 0, false
}

// Port is an open output
type Port struct {
	out  drivers.Out
	send func(gomidi.Message) error
	name string
}

// OpenDestination opens the output port named by address (see matchPort)
func OpenDestination(address string, timeout time.Duration) (*Port, error) {
	ports, err := scan(timeout)
	if err != nil {
		return nil, err
	}
	idx, ok := matchPort(portNames(ports.outs), address)
	if !ok {
		return nil, errors.Wrapf(ErrNoDestination, "destination %q", address)
	}

	out := ports.outs[idx]
	send, err := gomidi.SendTo(out)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", out.String())
	}
	debug.Log("port", "opened output %d: %s", idx, out.String())
	return &Port{out: out, send: send, name: out.String()}, nil
}

func (p *Port) Name() string { return p.name }

// Send writes msg immediately
func (p *Port) Send(msg gomidi.Message) error {
	if err := p.send(msg); err != nil {
		return errors.Wrapf(err, "send to %s", p.name)
	}
	return nil
}

func (p *Port) Close() error {
	debug.Log("port", "closing %s", p.name)
	return p.out.Close()
}
