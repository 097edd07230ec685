// Package device provides the common driver abstraction shared by all
// supported controllers.
package device

// Events receives decoded input events from a device driver. All callbacks
// are invoked synchronously from within Device.Tick, before Tick returns.
type Events interface {
	// ButtonChanged reports a button press or release edge. shift reflects
	// whether the device's shift modifier was held in the same frame.
	ButtonChanged(b Button, pressed bool, shift bool)
	// EncoderChanged reports one detent of rotary encoder movement.
	EncoderChanged(index int, increased bool, shift bool)
	// PadChanged reports a pressure pad transition. value is the pad
	// magnitude scaled by the device driver; 0 means released.
	PadChanged(pad int, value float64, aftertouch bool)
}

// Color is an RGB LED color.
type Color struct {
	R, G, B uint8
}

// Device is one attached controller driven by a single ticking caller.
// Implementations do not lock; the caller is responsible for serializing
// Tick against any other method.
type Device interface {
	// Init resets all decoder state to its initial values.
	Init()
	// Tick reads and decodes at most one pending input report, emitting
	// events synchronously. It returns false only on transport failure;
	// "no report pending" is a successful tick.
	Tick() bool
	// SetButtonLED sets the LED behind a button, on devices that support it.
	SetButtonLED(b Button, c Color)
	// SetPadLED sets the LED behind a pad, on devices that support it.
	SetPadLED(pad int, c Color)
}
