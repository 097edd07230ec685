package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/padkit/padkit/device"
	"github.com/padkit/padkit/hid"
	"github.com/padkit/padkit/internal/log"
	"github.com/padkit/padkit/internal/session"
)

// Monitor decodes events from a connected controller and prints them.
type Monitor struct {
	Device   string        `help:"Path to the hidraw node (auto-detected when empty)" env:"PADKIT_DEVICE"`
	Type     string        `help:"Driver type to use (auto-detected from USB ids when empty)" env:"PADKIT_DEVICE_TYPE"`
	Interval time.Duration `help:"Polling interval" default:"1ms" env:"PADKIT_POLL_INTERVAL"`
}

// Run is called by Kong when the monitor command is executed.
func (m *Monitor) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	restore := watchQuitKey(stop)
	defer restore()
	return m.RunSession(ctx, logger, rawLogger, nil)
}

// RunSession opens the controller and runs the decode loop until ctx is done.
// An optional extra sink receives every event alongside the printer.
func (m *Monitor) RunSession(ctx context.Context, logger *slog.Logger, rawLogger log.RawLogger, extra device.Events) error {
	h, reg, typeName, err := openDevice(m.Device, m.Type, logger)
	if err != nil {
		return err
	}
	defer h.Close()
	h = log.TapHandle(h, rawLogger)

	logger.Info("monitoring controller",
		"device", h.Info().Path,
		"name", h.Info().Name,
		"type", typeName)

	sinks := session.Fanout{session.Printer{Logger: logger}}
	if extra != nil {
		sinks = append(sinks, extra)
	}

	dev, err := reg.CreateDevice(h, sinks, logger)
	if err != nil {
		return fmt.Errorf("create %s driver: %w", typeName, err)
	}

	s := session.New(dev, session.Config{Interval: m.Interval}, logger)
	return s.Run(ctx)
}

// openDevice resolves the hidraw node and driver, auto-detecting either side
// that was not given explicitly.
func openDevice(path, typeName string, logger *slog.Logger) (hid.Handle, device.Registration, string, error) {
	if path != "" {
		h, err := hid.Open(path)
		if err != nil {
			return nil, nil, "", fmt.Errorf("open %s: %w", path, err)
		}
		info := h.Info()
		if typeName == "" {
			name, reg := device.LookupUSB(info.VendorID, info.ProductID)
			if reg == nil {
				h.Close()
				return nil, nil, "", fmt.Errorf("no driver for device %04x:%04x at %s", info.VendorID, info.ProductID, path)
			}
			return h, reg, name, nil
		}
		reg := device.GetRegistration(typeName)
		if reg == nil {
			h.Close()
			return nil, nil, "", fmt.Errorf("unknown device type: %s", typeName)
		}
		return h, reg, typeName, nil
	}

	infos, err := hid.Enumerate()
	if err != nil {
		return nil, nil, "", fmt.Errorf("enumerate hid devices: %w", err)
	}
	for _, info := range infos {
		name, reg := device.LookupUSB(info.VendorID, info.ProductID)
		if reg == nil {
			continue
		}
		if typeName != "" && name != typeName {
			continue
		}
		logger.Debug("auto-detected controller", "path", info.Path, "type", name)
		h, err := hid.Open(info.Path)
		if err != nil {
			logger.Warn("failed to open candidate device", "path", info.Path, "error", err)
			continue
		}
		return h, reg, name, nil
	}
	if typeName != "" {
		return nil, nil, "", fmt.Errorf("no connected device for type %s", typeName)
	}
	return nil, nil, "", fmt.Errorf("no supported controller found")
}

// watchQuitKey ends the session on 'q' or Ctrl-C when stdin is a terminal.
// The returned func restores the terminal state and must run before exit.
func watchQuitKey(stop func()) func() {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return func() {}
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return func() {}
	}

	go func() {
		buf := make([]byte, 1)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil {
				return
			}
			if n == 1 && (buf[0] == 'q' || buf[0] == 0x03) {
				stop()
				return
			}
		}
	}()

	return func() { _ = term.Restore(fd, oldState) }
}
