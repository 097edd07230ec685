package maschinemikro_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/padkit/padkit/device"
	"github.com/padkit/padkit/device/maschinemikro"
	"github.com/padkit/padkit/internal/testutil"
)

func newTestDevice() (*maschinemikro.MaschineMikro, *testutil.FakeHandle, *testutil.Recorder) {
	h := &testutil.FakeHandle{}
	rec := &testutil.Recorder{}
	d := maschinemikro.New(h, rec, nil)
	d.Init()
	return d, h, rec
}

func buttonsReport(b0, b1, b2, b3, enc byte) []byte {
	return []byte{0x01, b0, b1, b2, b3, enc}
}

func padsReport(pairs ...[2]byte) []byte {
	r := []byte{0x20}
	for _, p := range pairs {
		r = append(r, p[0], p[1])
	}
	return r
}

// padPair encodes one (rawPad, magnitude) sample as a little-endian pair.
func padPair(rawPad int, magnitude uint16) [2]byte {
	return [2]byte{
		byte(magnitude & 0xFF),
		byte(rawPad<<4) | byte(magnitude>>8),
	}
}

func feed(t *testing.T, d *maschinemikro.MaschineMikro, h *testutil.FakeHandle, reports ...[]byte) {
	t.Helper()
	for _, r := range reports {
		h.Queue(r)
		assert.True(t, d.Tick())
	}
}

// buttonByBit mirrors the bank/bit table, indexed by raw bit position
// (payload byte 0 -> bank 4 down to payload byte 3 -> bank 1).
var buttonByBit = [32]device.Button{
	// payload byte 0 (bank 4)
	device.ButtonShift, device.ButtonErase, device.ButtonRec, device.ButtonPlay,
	device.ButtonGrid, device.ButtonTransportRight, device.ButtonTransportLeft, device.ButtonRestart,
	// payload byte 1 (bank 3)
	device.ButtonUnknown, device.ButtonUnknown, device.ButtonUnknown, device.ButtonMainEncoder,
	device.ButtonNoteRepeat, device.ButtonGroup, device.ButtonSampling, device.ButtonBrowse,
	// payload byte 2 (bank 2)
	device.ButtonEnter, device.ButtonNavigateRight, device.ButtonNavigateLeft, device.ButtonNav,
	device.ButtonMain, device.ButtonF3, device.ButtonF2, device.ButtonF1,
	// payload byte 3 (bank 1)
	device.ButtonMute, device.ButtonSolo, device.ButtonSelect, device.ButtonDuplicate,
	device.ButtonView, device.ButtonPadMode, device.ButtonPattern, device.ButtonScene,
}

func TestButtonBitToggles(t *testing.T) {
	for bit := 0; bit < 32; bit++ {
		d, h, rec := newTestDevice()

		// First all-zero report resolves active-high polarity and the
		// encoder baseline without emitting anything.
		feed(t, d, h, buttonsReport(0x00, 0x00, 0x00, 0x00, 0x00))
		assert.Empty(t, rec.Events)

		var payload [4]byte
		payload[bit/8] = 1 << (bit % 8)
		feed(t, d, h, buttonsReport(payload[0], payload[1], payload[2], payload[3], 0x00))

		want := buttonByBit[bit]
		if want == device.ButtonUnknown {
			assert.Empty(t, rec.Events, "bit %d is unmapped", bit)
			continue
		}

		if assert.Len(t, rec.Events, 1, "bit %d", bit) {
			assert.Equal(t, "button", rec.Events[0].Kind)
			assert.Equal(t, want, rec.Events[0].Button)
			assert.True(t, rec.Events[0].Pressed)
		}

		rec.Reset()
		feed(t, d, h, buttonsReport(0x00, 0x00, 0x00, 0x00, 0x00))
		if assert.Len(t, rec.Events, 1, "bit %d release", bit) {
			assert.Equal(t, want, rec.Events[0].Button)
			assert.False(t, rec.Events[0].Pressed)
		}
	}
}

func TestPolarityActiveLowCalibration(t *testing.T) {
	d, h, rec := newTestDevice()

	// All-0xFF bitfields on the first report mean released = bit set.
	feed(t, d, h, buttonsReport(0xFF, 0xFF, 0xFF, 0xFF, 0x00))
	assert.Empty(t, rec.Events)

	// Clearing one bit now reads as a press.
	feed(t, d, h, buttonsReport(0xFF&^0x08, 0xFF, 0xFF, 0xFF, 0x00))
	if assert.Len(t, rec.Events, 1) {
		assert.Equal(t, device.ButtonPlay, rec.Events[0].Button)
		assert.True(t, rec.Events[0].Pressed)
	}
}

func TestPolarityIsResolvedOnlyOnce(t *testing.T) {
	d, h, rec := newTestDevice()

	feed(t, d, h, buttonsReport(0xFF, 0xFF, 0xFF, 0xFF, 0x00))
	assert.Empty(t, rec.Events)

	// An all-zero frame after active-low calibration is "everything
	// pressed", not a recalibration to active-high.
	feed(t, d, h, buttonsReport(0x00, 0x00, 0x00, 0x00, 0x00))
	pressed := 0
	for _, ev := range rec.Events {
		assert.Equal(t, "button", ev.Kind)
		assert.True(t, ev.Pressed)
		pressed++
	}
	assert.Equal(t, 29, pressed) // 32 bits minus 3 unmapped positions

	// And a repeat of the calibration frame releases everything again.
	rec.Reset()
	feed(t, d, h, buttonsReport(0xFF, 0xFF, 0xFF, 0xFF, 0x00))
	assert.Len(t, rec.Events, 29)
	for _, ev := range rec.Events {
		assert.False(t, ev.Pressed)
	}
}

func TestPolarityMajorityHeuristic(t *testing.T) {
	d, h, rec := newTestDevice()

	// Mixed first frame with most bits set: majority heuristic picks
	// active low, so the single cleared bit reads as pressed right away.
	feed(t, d, h, buttonsReport(0xFF, 0xFF, 0xFF, 0xFE, 0x00))
	if assert.Len(t, rec.Events, 1) {
		assert.Equal(t, device.ButtonMute, rec.Events[0].Button)
		assert.True(t, rec.Events[0].Pressed)
	}

	rec.Reset()
	feed(t, d, h, buttonsReport(0xFF, 0xFF, 0xFF, 0xFF, 0x00))
	if assert.Len(t, rec.Events, 1) {
		assert.Equal(t, device.ButtonMute, rec.Events[0].Button)
		assert.False(t, rec.Events[0].Pressed)
	}
}

func TestInitResetsCalibration(t *testing.T) {
	d, h, rec := newTestDevice()

	feed(t, d, h, buttonsReport(0xFF, 0xFF, 0xFF, 0xFF, 0x00))

	d.Init()
	rec.Reset()

	// After a reset the all-zero frame recalibrates to active high.
	feed(t, d, h, buttonsReport(0x00, 0x00, 0x00, 0x00, 0x00))
	assert.Empty(t, rec.Events)

	feed(t, d, h, buttonsReport(0x08, 0x00, 0x00, 0x00, 0x00))
	if assert.Len(t, rec.Events, 1) {
		assert.Equal(t, device.ButtonPlay, rec.Events[0].Button)
		assert.True(t, rec.Events[0].Pressed)
	}
}

func TestEncoderDirection(t *testing.T) {
	type testCase struct {
		name      string
		positions []byte
		increased []bool
	}

	cases := []testCase{
		{
			name:      "clockwise through wrap",
			positions: []byte{14, 15, 0, 1},
			increased: []bool{true, true, true},
		},
		{
			name:      "counterclockwise through wrap",
			positions: []byte{1, 0, 15, 14},
			increased: []bool{false, false, false},
		},
		{
			name:      "single step 0 to 15 is not an increase",
			positions: []byte{0, 15},
			increased: []bool{false},
		},
		{
			name:      "single step 15 to 0 is an increase",
			positions: []byte{15, 0},
			increased: []bool{true},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, h, rec := newTestDevice()
			for _, pos := range tc.positions {
				feed(t, d, h, buttonsReport(0x00, 0x00, 0x00, 0x00, pos))
			}
			if !assert.Len(t, rec.Events, len(tc.increased)) {
				return
			}
			for i, want := range tc.increased {
				assert.Equal(t, "encoder", rec.Events[i].Kind)
				assert.Equal(t, 0, rec.Events[i].Encoder)
				assert.Equal(t, want, rec.Events[i].Increased, "step %d", i)
			}
		})
	}
}

func TestEncoderHighNibbleIgnored(t *testing.T) {
	d, h, rec := newTestDevice()
	feed(t, d, h, buttonsReport(0x00, 0x00, 0x00, 0x00, 0xA5))
	// 0xB5 has the same low nibble as 0xA5: no movement.
	feed(t, d, h, buttonsReport(0x00, 0x00, 0x00, 0x00, 0xB5))
	assert.Empty(t, rec.Events)

	feed(t, d, h, buttonsReport(0x00, 0x00, 0x00, 0x00, 0xB6))
	if assert.Len(t, rec.Events, 1) {
		assert.True(t, rec.Events[0].Increased)
	}
}

func TestShiftModifierFlag(t *testing.T) {
	d, h, rec := newTestDevice()

	feed(t, d, h, buttonsReport(0x00, 0x00, 0x00, 0x00, 0x05))

	// Shift itself carries the modifier state of the new frame.
	feed(t, d, h, buttonsReport(0x01, 0x00, 0x00, 0x00, 0x05))
	if assert.Len(t, rec.Events, 1) {
		assert.Equal(t, device.ButtonShift, rec.Events[0].Button)
		assert.True(t, rec.Events[0].Shift)
	}

	// Play pressed while shift is held, plus an encoder turn in the same
	// frame: both flagged.
	rec.Reset()
	feed(t, d, h, buttonsReport(0x09, 0x00, 0x00, 0x00, 0x06))
	if assert.Len(t, rec.Events, 2) {
		assert.Equal(t, "encoder", rec.Events[0].Kind)
		assert.True(t, rec.Events[0].Increased)
		assert.True(t, rec.Events[0].Shift)

		assert.Equal(t, device.ButtonPlay, rec.Events[1].Button)
		assert.True(t, rec.Events[1].Pressed)
		assert.True(t, rec.Events[1].Shift)
	}
}

func TestPadThresholdHysteresis(t *testing.T) {
	d, h, rec := newTestDevice()

	// Raw pad 0 maps to logical pad 12.
	for _, magnitude := range []uint16{0, 250, 250, 150, 50} {
		feed(t, d, h, padsReport(padPair(0, magnitude)))
	}

	if assert.Len(t, rec.Events, 2) {
		assert.Equal(t, "pad", rec.Events[0].Kind)
		assert.Equal(t, 12, rec.Events[0].Pad)
		assert.InDelta(t, 250.0/1024.0, rec.Events[0].Value, 1e-9)

		assert.Equal(t, 12, rec.Events[1].Pad)
		assert.Equal(t, 0.0, rec.Events[1].Value)
	}
}

func TestPadValueUnclamped(t *testing.T) {
	d, h, rec := newTestDevice()

	feed(t, d, h, padsReport(padPair(3, 1024)))
	feed(t, d, h, padsReport(padPair(4, 4095)))

	if assert.Len(t, rec.Events, 2) {
		assert.Equal(t, 15, rec.Events[0].Pad) // raw 3 -> logical 15
		assert.Equal(t, 1.0, rec.Events[0].Value)

		assert.Equal(t, 8, rec.Events[1].Pad) // raw 4 -> logical 8
		assert.InDelta(t, 4095.0/1024.0, rec.Events[1].Value, 1e-9)
	}
}

func TestPadPermutationUntaggedFallback(t *testing.T) {
	d, h, rec := newTestDevice()

	// 33-byte odd-length report without the 0x20 tag: the pair decode still
	// applies from offset 1. One pair per raw pad exercises the whole
	// permutation table.
	report := []byte{0x00}
	for raw := 0; raw < 16; raw++ {
		p := padPair(raw, uint16(300+raw))
		report = append(report, p[0], p[1])
	}
	assert.Len(t, report, 33)

	feed(t, d, h, report)

	wantLogical := []int{12, 13, 14, 15, 8, 9, 10, 11, 4, 5, 6, 7, 0, 1, 2, 3}
	if assert.Len(t, rec.Events, 16) {
		for i, ev := range rec.Events {
			assert.Equal(t, "pad", ev.Kind)
			assert.Equal(t, wantLogical[i], ev.Pad, "pair %d", i)
			assert.InDelta(t, float64(300+i)/1024.0, ev.Value, 1e-9)
		}
	}
}

func TestPadDanglingByteIgnored(t *testing.T) {
	d, h, rec := newTestDevice()

	r := padsReport(padPair(0, 500))
	r = append(r, 0x7F) // trailing half-pair
	feed(t, d, h, r)

	if assert.Len(t, rec.Events, 1) {
		assert.Equal(t, 12, rec.Events[0].Pad)
	}
}

func TestUnrecognizedReportsAreDropped(t *testing.T) {
	d, h, rec := newTestDevice()

	feed(t, d, h,
		[]byte{0x99, 0x01, 0x02},                   // unknown tag, short
		[]byte{0x02, 0x00, 0x00, 0x00, 0x00, 0x00}, // len 6 but wrong tag
		make([]byte, 34),                           // even length, no tag
	)
	assert.Empty(t, rec.Events)
}

func TestEmptyReadIsBenign(t *testing.T) {
	d, _, rec := newTestDevice()
	assert.True(t, d.Tick()) // empty queue reads as "no report pending"
	assert.Empty(t, rec.Events)
}

func TestTransportFailure(t *testing.T) {
	d, h, rec := newTestDevice()

	h.FailNext()
	assert.False(t, d.Tick())
	assert.Empty(t, rec.Events)

	// The next tick recovers.
	h.Queue(buttonsReport(0x00, 0x00, 0x00, 0x00, 0x00))
	assert.True(t, d.Tick())
}

func TestEndToEndButtonAndEncoder(t *testing.T) {
	d, h, rec := newTestDevice()

	// First report calibrates active-low polarity and the encoder baseline.
	feed(t, d, h, []byte{0x01, 0xFF, 0xFF, 0xFF, 0xFF, 0x05})
	assert.Empty(t, rec.Events)

	// Bit 0 of payload byte 2 clears (bank 2 -> Enter pressed) and the
	// encoder moves 5 -> 6.
	feed(t, d, h, []byte{0x01, 0xFF, 0xFF, 0xFE, 0xFF, 0x06})

	if assert.Len(t, rec.Events, 2) {
		assert.Equal(t, "encoder", rec.Events[0].Kind)
		assert.True(t, rec.Events[0].Increased)
		assert.False(t, rec.Events[0].Shift)

		assert.Equal(t, "button", rec.Events[1].Kind)
		assert.Equal(t, device.ButtonEnter, rec.Events[1].Button)
		assert.True(t, rec.Events[1].Pressed)
	}
}

func TestRegistration(t *testing.T) {
	reg := device.GetRegistration("MaschineMikro")
	if !assert.NotNil(t, reg) {
		return
	}

	name, byUSB := device.LookupUSB(maschinemikro.VendorID, maschinemikro.ProductID)
	assert.Equal(t, "maschinemikro", name)
	assert.Equal(t, reg, byUSB)

	h := &testutil.FakeHandle{}
	dev, err := reg.CreateDevice(h, &testutil.Recorder{}, nil)
	assert.NoError(t, err)
	assert.IsType(t, &maschinemikro.MaschineMikro{}, dev)
}
