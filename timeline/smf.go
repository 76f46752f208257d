package timeline

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2/smf"

	"midistyle/debug"
	"midistyle/style"
)

// Write serializes t as a single track (format 0) Standard MIDI File with
// the timeline's resolution.
func Write(t *Timeline, w io.Writer) error {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(t.ppqn)

	var (
		tr     smf.Track
		prev   uint32
		closed bool
	)
	for _, ev := range t.events {
		delta := ev.Pulse - prev
		prev = ev.Pulse
		if style.IsEndOfTrack(ev.Payload) {
			tr.Close(delta)
			closed = true
			break
		}
		tr.Add(delta, ev.Payload)
	}
	if !closed {
		tr.Close(0)
	}

	if err := s.Add(tr); err != nil {
		return errors.Wrap(err, "add track")
	}
	if _, err := s.WriteTo(w); err != nil {
		return errors.Wrap(err, "write smf")
	}
	return nil
}

// WriteFile saves t to path
func WriteFile(t *Timeline, path string) error {
	var buf bytes.Buffer
	if err := Write(t, &buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return errors.Wrapf(err, "save %s", path)
	}
	debug.Log("timeline", "saved %s: %d bytes", path, buf.Len())
	return nil
}

// Read loads a Standard MIDI File with metric timing. Tracks are merged by
// absolute time and the result ends with a single end-of-track event.
func Read(r io.Reader) (*Timeline, error) {
	s, err := smf.ReadFrom(r)
	if err != nil {
		return nil, errors.Wrap(err, "read smf")
	}
	ticks, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, errors.Errorf("unsupported time format %v", s.TimeFormat)
	}

	t := newTimeline(uint16(ticks))
	var end uint32
	for _, track := range s.Tracks {
		var abs uint32
		for _, ev := range track {
			abs += ev.Delta
			payload := []byte(ev.Message)
			if style.IsEndOfTrack(payload) {
				if abs > end {
					end = abs
				}
				continue
			}
			t.insert(Event{Pulse: abs, Payload: append([]byte(nil), payload...)})
		}
	}
	if l := t.Length(); l > end {
		end = l
	}
	t.insert(Event{Pulse: end, Payload: style.EndOfTrack()})
	t.closed = true
	return t, nil
}

// ReadFile loads a timeline saved with WriteFile
func ReadFile(path string) (*Timeline, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	return Read(f)
}
