package device

// Button identifies a logical control on a supported device. Not every device
// exposes every button; drivers map their hardware layout onto this set.
type Button uint8

const (
	ButtonUnknown Button = iota
	ButtonMute
	ButtonSolo
	ButtonSelect
	ButtonDuplicate
	ButtonView
	ButtonPadMode
	ButtonPattern
	ButtonScene
	ButtonEnter
	ButtonNavigateRight
	ButtonNavigateLeft
	ButtonNav
	ButtonMain
	ButtonF1
	ButtonF2
	ButtonF3
	ButtonMainEncoder
	ButtonNoteRepeat
	ButtonGroup
	ButtonSampling
	ButtonBrowse
	ButtonShift
	ButtonErase
	ButtonRec
	ButtonPlay
	ButtonGrid
	ButtonTransportRight
	ButtonTransportLeft
	ButtonRestart
)

var buttonNames = map[Button]string{
	ButtonMute:           "Mute",
	ButtonSolo:           "Solo",
	ButtonSelect:         "Select",
	ButtonDuplicate:      "Duplicate",
	ButtonView:           "View",
	ButtonPadMode:        "Pad Mode",
	ButtonPattern:        "Pattern",
	ButtonScene:          "Scene",
	ButtonEnter:          "Enter",
	ButtonNavigateRight:  "Right Nav",
	ButtonNavigateLeft:   "Left Nav",
	ButtonNav:            "Nav",
	ButtonMain:           "Main",
	ButtonF1:             "F1",
	ButtonF2:             "F2",
	ButtonF3:             "F3",
	ButtonMainEncoder:    "Encoder Press",
	ButtonNoteRepeat:     "Note Repeat",
	ButtonGroup:          "Group",
	ButtonSampling:       "Sampling",
	ButtonBrowse:         "Browse",
	ButtonShift:          "Shift",
	ButtonErase:          "Erase",
	ButtonRec:            "Record",
	ButtonPlay:           "Play",
	ButtonGrid:           "Grid",
	ButtonTransportRight: "Right Transport",
	ButtonTransportLeft:  "Left Transport",
	ButtonRestart:        "Restart",
}

func (b Button) String() string {
	if s, ok := buttonNames[b]; ok {
		return s
	}
	return "Unknown"
}
