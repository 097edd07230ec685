package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/padkit/padkit/device"
	"github.com/padkit/padkit/internal/session"
	"github.com/padkit/padkit/internal/testutil"
)

// fakeDevice counts ticks and can be scripted to fail.
type fakeDevice struct {
	inited  int
	ticks   int
	failAll bool
}

func (f *fakeDevice) Init()                                  { f.inited++ }
func (f *fakeDevice) SetButtonLED(device.Button, device.Color) {}
func (f *fakeDevice) SetPadLED(int, device.Color)              {}

func (f *fakeDevice) Tick() bool {
	f.ticks++
	return !f.failAll
}

func TestRunStopsOnContextCancel(t *testing.T) {
	dev := &fakeDevice{}
	s := session.New(dev, session.Config{Interval: 100 * time.Microsecond}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := s.Run(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 1, dev.inited)
	assert.Greater(t, dev.ticks, 0)
}

func TestRunGivesUpAfterConsecutiveFailures(t *testing.T) {
	dev := &fakeDevice{failAll: true}
	s := session.New(dev, session.Config{Interval: 100 * time.Microsecond, MaxReadErrs: 5}, nil)

	err := s.Run(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 5, dev.ticks)
}

func TestFanoutOrder(t *testing.T) {
	a := &testutil.Recorder{}
	b := &testutil.Recorder{}
	f := session.Fanout{a, b}

	f.ButtonChanged(device.ButtonPlay, true, false)
	f.EncoderChanged(0, true, true)
	f.PadChanged(3, 0.5, false)

	for _, rec := range []*testutil.Recorder{a, b} {
		if assert.Len(t, rec.Events, 3) {
			assert.Equal(t, "button", rec.Events[0].Kind)
			assert.Equal(t, device.ButtonPlay, rec.Events[0].Button)
			assert.Equal(t, "encoder", rec.Events[1].Kind)
			assert.True(t, rec.Events[1].Shift)
			assert.Equal(t, "pad", rec.Events[2].Kind)
			assert.Equal(t, 0.5, rec.Events[2].Value)
		}
	}
}
