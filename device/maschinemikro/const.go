package maschinemikro

import "github.com/padkit/padkit/device"

// USB identity of the NI Maschine Mikro MK1.
const (
	VendorID  = 0x17CC
	ProductID = 0x1110
)

// Leading report tag bytes.
const (
	tagButtons = 0x01
	tagPads    = 0x20
)

const (
	numPads       = 16
	numButtonBits = 32

	// Pressure above this (exclusive) counts a pad as down.
	padThreshold = 200
)

// Raw pad index (from the device report) -> logical pad index in physical
// order 1..16. Derived from playing pads 1..16 in order, which the device
// reported as 12,13,14,15,8,9,10,11,4,5,6,7,0,1,2,3.
var rawPadToLogical = [numPads]uint8{12, 13, 14, 15, 8, 9, 10, 11, 4, 5, 6, 7, 0, 1, 2, 3}

// Button banks observed on the 0x01 len=6 buttons report. The four bitfield
// payload bytes map to banks 4..1; bank 0 is unused and stays Unknown.
var buttonByBankBit = [5][8]device.Button{
	1: {
		device.ButtonMute,
		device.ButtonSolo,
		device.ButtonSelect,
		device.ButtonDuplicate,
		device.ButtonView,
		device.ButtonPadMode,
		device.ButtonPattern,
		device.ButtonScene,
	},
	2: {
		device.ButtonEnter,
		device.ButtonNavigateRight,
		device.ButtonNavigateLeft,
		device.ButtonNav,
		device.ButtonMain,
		device.ButtonF3,
		device.ButtonF2,
		device.ButtonF1,
	},
	3: {
		device.ButtonUnknown,
		device.ButtonUnknown,
		device.ButtonUnknown,
		device.ButtonMainEncoder,
		device.ButtonNoteRepeat,
		device.ButtonGroup,
		device.ButtonSampling,
		device.ButtonBrowse,
	},
	4: {
		device.ButtonShift,
		device.ButtonErase,
		device.ButtonRec,
		device.ButtonPlay,
		device.ButtonGrid,
		device.ButtonTransportRight,
		device.ButtonTransportLeft,
		device.ButtonRestart,
	},
}
