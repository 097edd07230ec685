package session

import (
	"log/slog"

	"github.com/padkit/padkit/device"
)

// Fanout broadcasts events to multiple sinks in order.
type Fanout []device.Events

func (f Fanout) ButtonChanged(b device.Button, pressed, shift bool) {
	for _, s := range f {
		s.ButtonChanged(b, pressed, shift)
	}
}

func (f Fanout) EncoderChanged(index int, increased, shift bool) {
	for _, s := range f {
		s.EncoderChanged(index, increased, shift)
	}
}

func (f Fanout) PadChanged(pad int, value float64, aftertouch bool) {
	for _, s := range f {
		s.PadChanged(pad, value, aftertouch)
	}
}

// Printer logs decoded events; the monitor command's default sink.
type Printer struct {
	Logger *slog.Logger
}

func (p Printer) ButtonChanged(b device.Button, pressed, shift bool) {
	p.Logger.Info("button", "button", b.String(), "pressed", pressed, "shift", shift)
}

func (p Printer) EncoderChanged(index int, increased, shift bool) {
	p.Logger.Info("encoder", "index", index, "increased", increased, "shift", shift)
}

func (p Printer) PadChanged(pad int, value float64, aftertouch bool) {
	p.Logger.Info("pad", "pad", pad, "value", value, "aftertouch", aftertouch)
}
