// Package hid provides host-side access to raw HID device nodes.
package hid

import (
	"errors"
	"time"
)

// Info describes one HID device node.
type Info struct {
	VendorID  uint16
	ProductID uint16
	Name      string
	Path      string
	Bus       int
}

// Handle is an open HID device.
type Handle interface {
	// ReadReport reads one pending input report into buf and returns its
	// length. A return of (0, nil) means no report was pending within the
	// timeout; it is not an error.
	ReadReport(buf []byte, timeout time.Duration) (int, error)
	// Write sends an output report to the device.
	Write(data []byte) (int, error)
	Info() Info
	Close() error
}

// ErrUnsupported is returned on platforms without a raw HID transport.
var ErrUnsupported = errors.New("hid: raw HID access not supported on this platform")
