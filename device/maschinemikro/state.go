package maschinemikro

// buttonPolarity captures the hardware's bit convention for the button
// bitfields, resolved at most once per session from the first buttons report.
type buttonPolarity uint8

const (
	polarityUnknown    buttonPolarity = iota
	polarityActiveHigh                // pressed = bit set
	polarityActiveLow                 // released = bit set
)

// state is the decoder's view of the hardware between reports. It is owned
// by a single ticking caller and reset in full by Device.Init.
type state struct {
	padValues [numPads]uint16
	padDown   [numPads]bool

	buttonDown [numButtonBits]bool
	polarity   buttonPolarity

	encoderCalibrated bool
	encoderValue      uint8 // low nibble only, 0x0..0xF
}

func (s *state) reset() { *s = state{} }
