//go:build !linux

package hid

// Open is not available without a raw HID transport.
func Open(path string) (Handle, error) { return nil, ErrUnsupported }

// Enumerate is not available without a raw HID transport.
func Enumerate() ([]Info, error) { return nil, ErrUnsupported }
