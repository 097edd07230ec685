package hub_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padkit/padkit/apiclient"
	"github.com/padkit/padkit/apitypes"
	"github.com/padkit/padkit/device"
	_ "github.com/padkit/padkit/device/maschinemikro"
	"github.com/padkit/padkit/internal/hub"
	"github.com/padkit/padkit/internal/hub/handler"
)

func startHub(t *testing.T, password string) *hub.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := hub.New(hub.Config{Addr: "127.0.0.1:0", Password: password}, logger)
	s.Router().Register("ping", handler.Ping("test"))
	s.Router().Register("devices/types", handler.DeviceTypes())
	s.Router().RegisterStream("events", s.Broadcaster().EventStream())
	require.NoError(t, s.Start())
	t.Cleanup(s.Close)
	return s
}

func TestPingRoundTrip(t *testing.T) {
	s := startHub(t, "")
	c := apiclient.New(s.Addr())

	resp, err := c.Ping()
	require.NoError(t, err)
	assert.Equal(t, "padkit", resp.Server)
	assert.Equal(t, "test", resp.Version)
}

func TestUnknownPathReturnsNotFound(t *testing.T) {
	s := startHub(t, "")
	tr := apiclient.NewTransport(s.Addr())

	raw, err := tr.Do("bogus/path", nil, nil)
	require.NoError(t, err)
	assert.Contains(t, raw, "Not Found")
}

func TestDeviceTypesRoute(t *testing.T) {
	s := startHub(t, "")
	c := apiclient.New(s.Addr())

	resp, err := c.DeviceTypes()
	require.NoError(t, err)
	found := false
	for _, dt := range resp.Types {
		if dt.Name == "maschinemikro" {
			found = true
			for _, id := range dt.USBIDs {
				assert.Equal(t, "17cc", id.Vid)
				assert.Equal(t, "1110", id.Pid)
			}
		}
	}
	assert.True(t, found, "maschinemikro driver not listed")
}

func TestEventStream(t *testing.T) {
	for _, password := range []string{"", "hunter2"} {
		name := "plaintext"
		if password != "" {
			name = "encrypted"
		}
		t.Run(name, func(t *testing.T) {
			s := startHub(t, password)
			var c *apiclient.Client
			if password != "" {
				c = apiclient.NewWithPassword(s.Addr(), password)
			} else {
				c = apiclient.New(s.Addr())
			}

			stream, err := c.StreamEvents()
			require.NoError(t, err)
			defer stream.Close()

			// The subscription registers asynchronously; keep publishing
			// until the stream delivers.
			stop := make(chan struct{})
			defer close(stop)
			go func() {
				tick := time.NewTicker(5 * time.Millisecond)
				defer tick.Stop()
				for {
					select {
					case <-stop:
						return
					case <-tick.C:
						s.Broadcaster().ButtonChanged(device.ButtonPlay, true, false)
					}
				}
			}()

			ev, err := stream.Next()
			require.NoError(t, err)
			assert.Equal(t, "button", ev.Kind)
			assert.Equal(t, "Play", ev.Button)
			assert.True(t, ev.Pressed)
		})
	}
}

func TestBroadcasterEventShapes(t *testing.T) {
	s := startHub(t, "")
	c := apiclient.New(s.Addr())

	stream, err := c.StreamEvents()
	require.NoError(t, err)
	defer stream.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		tick := time.NewTicker(5 * time.Millisecond)
		defer tick.Stop()
		for {
			select {
			case <-stop:
				return
			case <-tick.C:
				s.Broadcaster().PadChanged(12, 0.75, true)
			}
		}
	}()

	ev, err := stream.Next()
	require.NoError(t, err)
	assert.Equal(t, apitypes.Event{Kind: "pad", Pad: 12, Value: 0.75, Aftertouch: true}, *ev)
}

func TestAuthRequired(t *testing.T) {
	s := startHub(t, "secret")
	c := apiclient.New(s.Addr())

	_, err := c.Ping()
	require.Error(t, err)
	apiErr, ok := err.(*apitypes.ApiError)
	require.True(t, ok, "expected ApiError, got %v", err)
	assert.Equal(t, 401, apiErr.Status)
}

func TestAuthWrongPassword(t *testing.T) {
	s := startHub(t, "secret")
	c := apiclient.NewWithPassword(s.Addr(), "not-the-secret")

	_, err := c.Ping()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid password")
}

func TestAuthRoundTrip(t *testing.T) {
	s := startHub(t, "secret")
	c := apiclient.NewWithPassword(s.Addr(), "secret")

	resp, err := c.Ping()
	require.NoError(t, err)
	assert.Equal(t, "padkit", resp.Server)
}
