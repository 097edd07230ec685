// Package testutil provides fakes shared by driver and session tests.
package testutil

import (
	"time"

	"github.com/padkit/padkit/device"
	"github.com/padkit/padkit/hid"
)

// FakeHandle is a hid.Handle fed from a canned report queue. A nil entry in
// the queue simulates a transport read failure for that tick.
type FakeHandle struct {
	Reports  [][]byte
	DevInfo  hid.Info
	Written  [][]byte
	Closed   bool
	ReadErr  error
	failNext bool
}

// Queue appends one report to be returned by the next reads, in order.
func (f *FakeHandle) Queue(reports ...[]byte) {
	f.Reports = append(f.Reports, reports...)
}

// FailNext makes the next ReadReport call return a transport error.
func (f *FakeHandle) FailNext() { f.failNext = true }

func (f *FakeHandle) ReadReport(buf []byte, _ time.Duration) (int, error) {
	if f.failNext {
		f.failNext = false
		if f.ReadErr != nil {
			return 0, f.ReadErr
		}
		return 0, errTransport
	}
	if len(f.Reports) == 0 {
		return 0, nil
	}
	r := f.Reports[0]
	f.Reports = f.Reports[1:]
	if r == nil {
		if f.ReadErr != nil {
			return 0, f.ReadErr
		}
		return 0, errTransport
	}
	return copy(buf, r), nil
}

func (f *FakeHandle) Write(data []byte) (int, error) {
	f.Written = append(f.Written, append([]byte(nil), data...))
	return len(data), nil
}

func (f *FakeHandle) Info() hid.Info { return f.DevInfo }

func (f *FakeHandle) Close() error {
	f.Closed = true
	return nil
}

type transportError struct{}

func (transportError) Error() string { return "fake transport failure" }

var errTransport = transportError{}

// Event is one recorded callback invocation.
type Event struct {
	Kind      string // "button", "encoder" or "pad"
	Button    device.Button
	Pressed   bool
	Encoder   int
	Increased bool
	Pad       int
	Value     float64
	Shift     bool
}

// Recorder implements device.Events and records every callback in order.
type Recorder struct {
	Events []Event
}

func (r *Recorder) ButtonChanged(b device.Button, pressed, shift bool) {
	r.Events = append(r.Events, Event{Kind: "button", Button: b, Pressed: pressed, Shift: shift})
}

func (r *Recorder) EncoderChanged(index int, increased, shift bool) {
	r.Events = append(r.Events, Event{Kind: "encoder", Encoder: index, Increased: increased, Shift: shift})
}

func (r *Recorder) PadChanged(pad int, value float64, aftertouch bool) {
	r.Events = append(r.Events, Event{Kind: "pad", Pad: pad, Value: value})
}

// Reset clears the recorded events.
func (r *Recorder) Reset() { r.Events = nil }
