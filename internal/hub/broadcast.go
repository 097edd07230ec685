package hub

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/padkit/padkit/apitypes"
	"github.com/padkit/padkit/device"
)

// Broadcaster fans decoded controller events out to all subscribed stream
// connections. It implements device.Events so it plugs into a session as a
// regular sink.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[chan apitypes.Event]struct{}
}

// subscriber channels are buffered; a slow client loses events rather than
// stalling the decode loop.
const subBuffer = 64

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[chan apitypes.Event]struct{})}
}

func (b *Broadcaster) subscribe() chan apitypes.Event {
	ch := make(chan apitypes.Event, subBuffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broadcaster) unsubscribe(ch chan apitypes.Event) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
}

func (b *Broadcaster) publish(ev apitypes.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (b *Broadcaster) ButtonChanged(btn device.Button, pressed, shift bool) {
	b.publish(apitypes.Event{
		Kind:    "button",
		Button:  btn.String(),
		Pressed: pressed,
		Shift:   shift,
	})
}

func (b *Broadcaster) EncoderChanged(index int, increased, shift bool) {
	b.publish(apitypes.Event{
		Kind:      "encoder",
		Encoder:   index,
		Increased: increased,
		Shift:     shift,
	})
}

func (b *Broadcaster) PadChanged(pad int, value float64, aftertouch bool) {
	b.publish(apitypes.Event{
		Kind:       "pad",
		Pad:        pad,
		Value:      value,
		Aftertouch: aftertouch,
	})
}

// EventStream returns the stream handler for the events route. It forwards
// broadcast events to one client connection as JSON lines until the client
// disconnects.
func (b *Broadcaster) EventStream() StreamHandlerFunc {
	return func(ctx context.Context, conn net.Conn, _ map[string]string, logger *slog.Logger) error {
		ch := b.subscribe()
		defer b.unsubscribe(ch)

		// Drain the read side so a client hangup ends the stream.
		gone := make(chan struct{})
		go func() {
			_, _ = io.Copy(io.Discard, conn)
			close(gone)
		}()

		enc := json.NewEncoder(conn)
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-gone:
				logger.Debug("stream client disconnected")
				return nil
			case ev := <-ch:
				if err := enc.Encode(ev); err != nil {
					logger.Debug("stream write failed", "error", err)
					return nil
				}
			}
		}
	}
}
