package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/padkit/padkit/apitypes"
	"github.com/padkit/padkit/device"
	"github.com/padkit/padkit/internal/hub"
)

// DeviceTypes returns a handler that lists registered controller drivers and
// the USB ids they claim.
func DeviceTypes() hub.HandlerFunc {
	return func(req *hub.Request, res *hub.Response, logger *slog.Logger) error {
		names := device.ListDeviceTypes()
		sort.Strings(names)
		var types []apitypes.DeviceType
		for _, name := range names {
			reg := device.GetRegistration(name)
			if reg == nil {
				continue
			}
			dt := apitypes.DeviceType{Name: name}
			for _, id := range reg.USBIDs() {
				dt.USBIDs = append(dt.USBIDs, apitypes.USBID{
					Vid: fmt.Sprintf("%04x", id.Vendor),
					Pid: fmt.Sprintf("%04x", id.Product),
				})
			}
			types = append(types, dt)
		}
		b, err := json.Marshal(apitypes.DeviceTypesResponse{Types: types})
		if err != nil {
			return err
		}
		res.JSON = string(b)
		return nil
	}
}
