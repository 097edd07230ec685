// Package apitypes holds the wire types shared between the event hub and its
// clients.
package apitypes

import "fmt"

// ApiError is the JSON error body the hub returns on failed requests,
// loosely following RFC 7807.
type ApiError struct {
	Status int    `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail,omitempty"`
}

func (e ApiError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Title, e.Detail)
	}
	return e.Title
}

// PingResponse answers the ping route.
type PingResponse struct {
	Server  string `json:"server"`
	Version string `json:"version"`
}

// USBID identifies one supported controller model, hex without 0x prefix.
type USBID struct {
	Vid string `json:"vid"`
	Pid string `json:"pid"`
}

// DeviceType describes one registered driver.
type DeviceType struct {
	Name   string  `json:"name"`
	USBIDs []USBID `json:"usb_ids"`
}

// DeviceTypesResponse answers the devices/types route.
type DeviceTypesResponse struct {
	Types []DeviceType `json:"types"`
}

// Event is one decoded controller event, streamed as a JSON line.
type Event struct {
	Kind       string  `json:"kind"`
	Button     string  `json:"button,omitempty"`
	Pressed    bool    `json:"pressed,omitempty"`
	Encoder    int     `json:"encoder,omitempty"`
	Increased  bool    `json:"increased,omitempty"`
	Pad        int     `json:"pad,omitempty"`
	Value      float64 `json:"value,omitempty"`
	Aftertouch bool    `json:"aftertouch,omitempty"`
	Shift      bool    `json:"shift,omitempty"`
}
