// Package session drives one controller: it ticks the device driver at a
// fixed interval and fans decoded events out to the registered sinks.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/padkit/padkit/device"
)

// Config tunes the polling loop.
type Config struct {
	// Interval between ticks. Defaults to 1ms.
	Interval time.Duration
	// MaxReadErrs is the number of consecutive transport failures after
	// which the session gives up. Defaults to 50.
	MaxReadErrs int
}

// Session owns one device driver for its lifetime.
type Session struct {
	dev    device.Device
	cfg    Config
	logger *slog.Logger
}

func New(dev device.Device, cfg Config, logger *slog.Logger) *Session {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Millisecond
	}
	if cfg.MaxReadErrs <= 0 {
		cfg.MaxReadErrs = 50
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{dev: dev, cfg: cfg, logger: logger}
}

// Run initializes the device and ticks it until ctx is done. A failed tick
// is retried on the next interval; MaxReadErrs consecutive failures end the
// session with an error.
func (s *Session) Run(ctx context.Context) error {
	s.dev.Init()

	t := time.NewTicker(s.cfg.Interval)
	defer t.Stop()

	errs := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if s.dev.Tick() {
				errs = 0
				continue
			}
			errs++
			s.logger.Debug("device read failed", "consecutive", errs)
			if errs >= s.cfg.MaxReadErrs {
				return fmt.Errorf("device read failed %d times in a row", errs)
			}
		}
	}
}
