package maschinemikro

import (
	"log/slog"

	"github.com/padkit/padkit/device"
	"github.com/padkit/padkit/hid"
)

func init() {
	device.Register("maschinemikro", &registration{})
}

type registration struct{}

func (r *registration) CreateDevice(h hid.Handle, ev device.Events, logger *slog.Logger) (device.Device, error) {
	return New(h, ev, logger), nil
}

func (r *registration) USBIDs() []device.USBID {
	return []device.USBID{{Vendor: VendorID, Product: ProductID}}
}
