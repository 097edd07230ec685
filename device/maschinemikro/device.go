// Package maschinemikro implements the input decoder for the Native
// Instruments Maschine Mikro MK1 pad controller.
//
// The device delivers two report shapes: a 6-byte buttons+encoder report
// tagged 0x01 and a variable-length pad pressure report tagged 0x20. Both
// layouts and the quirks below (polarity auto-calibration, the asymmetric
// encoder wrap, the pad index permutation) were reverse engineered from
// hardware behavior.
package maschinemikro

import (
	"encoding/hex"
	"log/slog"
	"math/bits"

	"github.com/padkit/padkit/device"
	"github.com/padkit/padkit/hid"
)

type MaschineMikro struct {
	h      hid.Handle
	ev     device.Events
	logger *slog.Logger

	buf   [64]byte
	state state
}

// New returns a new Maschine Mikro MK1 driver reading from h and emitting
// decoded events to ev.
func New(h hid.Handle, ev device.Events, logger *slog.Logger) *MaschineMikro {
	if logger == nil {
		logger = slog.Default()
	}
	return &MaschineMikro{h: h, ev: ev, logger: logger}
}

// Init resets all decoder state, including the calibrated button polarity
// and the encoder baseline.
func (d *MaschineMikro) Init() {
	d.state.reset()
}

// Tick reads at most one pending report and decodes it.
func (d *MaschineMikro) Tick() bool {
	return d.read()
}

// SetButtonLED is a no-op; LED output is not implemented for this device.
func (d *MaschineMikro) SetButtonLED(device.Button, device.Color) {}

// SetPadLED is a no-op; LED output is not implemented for this device.
func (d *MaschineMikro) SetPadLED(int, device.Color) {}

func (d *MaschineMikro) read() bool {
	n, err := d.h.ReadReport(d.buf[:], 0)
	if err != nil {
		return false
	}
	if n == 0 {
		// No report this tick.
		return true
	}
	d.processReport(d.buf[:n])
	return true
}

// processReport dispatches one raw report by shape. Unrecognized shapes are
// dropped silently: report variants differ across firmware revisions and
// must never fail the tick.
func (d *MaschineMikro) processReport(report []byte) {
	if len(report) == 0 {
		return
	}
	switch {
	case len(report) == 6 && report[0] == tagButtons:
		d.processButtons(report)
	case len(report) >= 2 && report[0] == tagPads:
		d.processPads(report)
	case len(report) >= 33 && len(report)%2 == 1:
		// Some firmwares omit the tag byte; the pair decode applies
		// unchanged starting at offset 1.
		d.processPads(report)
	}
}

func (d *MaschineMikro) processButtons(report []byte) {
	payload := report[1:]
	if len(payload) < 5 {
		return
	}

	if d.state.polarity == polarityUnknown {
		d.state.polarity = detectPolarity(payload)
	}

	// Build the new "down" set from the 4 bitfield bytes, byte-major and
	// LSB-first within each byte.
	var newDown [numButtonBits]bool
	for byteIndex := 0; byteIndex < 4; byteIndex++ {
		b := payload[byteIndex]
		for bit := 0; bit < 8; bit++ {
			pressed := (b>>bit)&1 != 0
			if d.state.polarity == polarityActiveLow {
				pressed = !pressed
			}
			newDown[byteIndex*8+bit] = pressed
		}
	}

	// Shift is bank 4 bit 0, i.e. bit position 0 of the new frame.
	shift := newDown[0]

	// Encoder position lives in the low nibble of the last payload byte.
	current := payload[len(payload)-1] & 0x0F
	if !d.state.encoderCalibrated {
		d.state.encoderCalibrated = true
		d.state.encoderValue = current
	} else if current != d.state.encoderValue {
		prev := d.state.encoderValue
		// The 4-bit position is circular, but only the 15->0 wrap counts as
		// an increase; 0->15 is explicitly not one. Hardware quirk, keep.
		increased := (prev < current || (prev == 0x0F && current == 0x00)) &&
			!(prev == 0x00 && current == 0x0F)
		d.ev.EncoderChanged(0, increased, shift)
		d.state.encoderValue = current
	}

	for i := 0; i < numButtonBits; i++ {
		if newDown[i] == d.state.buttonDown[i] {
			continue
		}

		bank := 4 - i/8 // payload byte 0 -> bank 4, byte 3 -> bank 1
		bit := i % 8
		b := buttonByBankBit[bank][bit]
		pressed := newDown[i]

		d.logger.Debug("button transition",
			"bank", bank,
			"bit", bit,
			"pressed", pressed,
			"button", b.String(),
			"report", hex.EncodeToString(report))

		if b != device.ButtonUnknown {
			d.ev.ButtonChanged(b, pressed, shift)
		}
	}

	d.state.buttonDown = newDown
}

// detectPolarity resolves the bit convention from the first buttons report.
// All-0xFF payload bytes mean released buttons read as set bits (active low),
// all-0x00 means active high. Anything else assumes most buttons are
// released at calibration time and goes by the majority of set bits. The
// final payload byte holds the encoder nibble and is excluded from the loop.
func detectPolarity(payload []byte) buttonPolarity {
	allZero, allFF := true, true
	ones := 0
	for _, b := range payload[:len(payload)-1] {
		allZero = allZero && b == 0x00
		allFF = allFF && b == 0xFF
		ones += bits.OnesCount8(b)
	}

	totalBits := (len(payload) - 1) * 8
	switch {
	case allFF:
		return polarityActiveLow
	case allZero:
		return polarityActiveHigh
	case ones > totalBits/2:
		return polarityActiveLow
	default:
		return polarityActiveHigh
	}
}

func (d *MaschineMikro) processPads(report []byte) {
	// Pairs of bytes (l,h) starting at offset 1, where:
	// rawPad = (h & 0xF0) >> 4, value = ((h & 0x0F) << 8) | l.
	// A dangling final byte is ignored.
	for i := 1; i+1 < len(report); i += 2 {
		l := uint16(report[i])
		h := uint16(report[i+1])

		rawPad := (h & 0xF0) >> 4
		if rawPad >= numPads {
			continue
		}
		pad := rawPadToLogical[rawPad]

		value := (h&0x0F)<<8 | l
		d.state.padValues[pad] = value

		switch {
		case value > padThreshold:
			if !d.state.padDown[pad] {
				d.state.padDown[pad] = true
				// Intentionally unclamped: values above 1024 yield >1.0.
				d.ev.PadChanged(int(pad), float64(value)/1024.0, false)
			}
		case d.state.padDown[pad]:
			d.state.padDown[pad] = false
			d.ev.PadChanged(int(pad), 0.0, false)
		}
	}
}
