package cmd

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/padkit/padkit/device"
	"github.com/padkit/padkit/hid"
)

// List prints the registered drivers and the connected hidraw devices.
type List struct {
	All bool `help:"Also list hid devices no driver claims"`
}

func (l *List) Run(logger *slog.Logger) error {
	names := device.ListDeviceTypes()
	sort.Strings(names)
	fmt.Println("Drivers:")
	for _, name := range names {
		reg := device.GetRegistration(name)
		if reg == nil {
			continue
		}
		for _, id := range reg.USBIDs() {
			fmt.Printf("  %-20s %04x:%04x\n", name, id.Vendor, id.Product)
		}
	}

	infos, err := hid.Enumerate()
	if err != nil {
		return fmt.Errorf("enumerate hid devices: %w", err)
	}
	fmt.Println("Devices:")
	for _, info := range infos {
		name, reg := device.LookupUSB(info.VendorID, info.ProductID)
		if reg == nil && !l.All {
			continue
		}
		driver := name
		if driver == "" {
			driver = "-"
		}
		fmt.Printf("  %-12s %04x:%04x %-20s %s\n", info.Path, info.VendorID, info.ProductID, driver, info.Name)
	}
	return nil
}
