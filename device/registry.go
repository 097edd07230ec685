package device

import (
	"log/slog"
	"sync"

	"github.com/padkit/padkit/hid"
)

// USBID is a vendor/product pair a driver claims.
type USBID struct {
	Vendor  uint16
	Product uint16
}

// Registration describes a driver type, providing device creation and the
// USB identities the driver supports.
type Registration interface {
	// CreateDevice returns a new driver instance bound to an open transport
	// handle and an event sink.
	CreateDevice(h hid.Handle, ev Events, logger *slog.Logger) (Device, error)
	// USBIDs returns the vendor/product pairs this driver handles.
	USBIDs() []USBID
}

var (
	registry   = make(map[string]Registration)
	registryMu sync.RWMutex
)

// Register registers a driver type for creation and USB auto-detection.
// This should be called from driver package init() functions.
// The name is case-insensitive and will be lowercased.
func Register(name string, reg Registration) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[toLower(name)] = reg
}

// GetRegistration retrieves a registered driver by name.
// Returns nil if not found. Name lookup is case-insensitive.
func GetRegistration(name string) Registration {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return registry[toLower(name)]
}

// ListDeviceTypes returns the names of all registered driver types.
func ListDeviceTypes() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	types := make([]string, 0, len(registry))
	for name := range registry {
		types = append(types, name)
	}
	return types
}

// LookupUSB finds a registered driver claiming the given USB identity.
// Returns the driver name and registration, or "" and nil if none match.
func LookupUSB(vendor, product uint16) (string, Registration) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	for name, reg := range registry {
		for _, id := range reg.USBIDs() {
			if id.Vendor == vendor && id.Product == product {
				return name, reg
			}
		}
	}
	return "", nil
}

func toLower(s string) string {
	b := []byte(s)
	for i := range b {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}
