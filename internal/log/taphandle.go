package log

import (
	"time"

	"github.com/padkit/padkit/hid"
)

// TapHandle wraps a hid.Handle so every report that crosses it is written to
// the raw logger. Reads that return no data are not logged.
func TapHandle(h hid.Handle, raw RawLogger) hid.Handle {
	if raw == nil {
		return h
	}
	return &tappedHandle{h: h, raw: raw}
}

type tappedHandle struct {
	h   hid.Handle
	raw RawLogger
}

func (t *tappedHandle) ReadReport(buf []byte, timeout time.Duration) (int, error) {
	n, err := t.h.ReadReport(buf, timeout)
	if err == nil && n > 0 {
		t.raw.Log(true, buf[:n])
	}
	return n, err
}

func (t *tappedHandle) Write(data []byte) (int, error) {
	t.raw.Log(false, data)
	return t.h.Write(data)
}

func (t *tappedHandle) Info() hid.Info { return t.h.Info() }

func (t *tappedHandle) Close() error { return t.h.Close() }
