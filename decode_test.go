package variopro

import (
	"bytes"
	"errors"
	"testing"
)

func checkEvents(t *testing.T, got, want []KeyEvent) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("Got %d events %v, want %d events %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i].Group != want[i].Group {
			t.Errorf("Event %d group = %s, want %s", i, got[i].Group, want[i].Group)
		}
		if !bytes.Equal(got[i].Mask, want[i].Mask) {
			t.Errorf("Event %d mask = % X, want % X", i, got[i].Mask, want[i].Mask)
		}
	}
}

func mainData80(stat byte, rest ...byte) []byte {
	data := make([]byte, 18)
	data[0] = stat
	copy(data[1:], rest)
	return data
}

func mainData64(stat byte, rest ...byte) []byte {
	data := make([]byte, 15)
	data[0] = stat
	copy(data[1:], rest)
	return data
}

func TestDecodeRoutingKeys(t *testing.T) {
	tests := []struct {
		name string
		id   Identity
		data []byte
		want KeyMask
	}{
		{
			name: "80 cell first key",
			id:   Identity{0x80, 0x41, 0x00, 0x01},
			data: func() []byte {
				d := mainData80(0x08)
				d[8] = 0x01 // routing1
				return d
			}(),
			want: KeyMask{0x01, 0, 0, 0, 0, 0, 0, 0, 0, 0},
		},
		{
			name: "80 cell last key",
			id:   Identity{0x80, 0x41, 0x00, 0x01},
			data: func() []byte {
				d := mainData80(0x08)
				d[17] = 0x80 // routing80
				return d
			}(),
			want: KeyMask{0, 0, 0, 0, 0, 0, 0, 0, 0, 0x80},
		},
		{
			name: "64 cell layout is one byte tighter",
			id:   Identity{0x81, 0x41, 0x00, 0x01},
			data: func() []byte {
				d := mainData64(0x08)
				d[7] = 0x02 // routing2
				return d
			}(),
			want: KeyMask{0x02, 0, 0, 0, 0, 0, 0, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newModule(tt.id)
			events, err := decodeMainDisplay(m, tt.data)
			if err != nil {
				t.Fatalf("decodeMainDisplay() error = %v", err)
			}
			checkEvents(t, events, []KeyEvent{{Group: GroupRoutingKeys, Mask: tt.want}})
		})
	}
}

func TestDecodeRoutingReleaseSuppressed(t *testing.T) {
	m := newModule(Identity{0x80, 0x41, 0x00, 0x01})
	events, err := decodeMainDisplay(m, mainData80(0x08))
	if err != nil {
		t.Fatalf("decodeMainDisplay() error = %v", err)
	}
	if len(events) != 0 {
		t.Errorf("All-zero routing mask produced %d events", len(events))
	}
}

func TestDecodeDisplayKeysAccumulate(t *testing.T) {
	m := newModule(Identity{0x80, 0x41, 0x00, 0x01})

	// d1 down, then d1+d2 held, then release: the release flushes the union
	// of everything that was held since the last flush.
	steps := []struct {
		keys byte
		want []KeyEvent
	}{
		{0x01, nil},
		{0x03, nil},
		{0x00, []KeyEvent{{Group: GroupDisplayKeys, Mask: maskBytes(0x03)}}},
		{0x00, nil}, // a second release with nothing held is silent
	}
	for i, step := range steps {
		d := mainData80(0x04)
		d[7] = step.keys
		events, err := decodeMainDisplay(m, d)
		if err != nil {
			t.Fatalf("Step %d: decodeMainDisplay() error = %v", i, err)
		}
		checkEvents(t, events, step.want)
	}
}

func TestDecodeWheelPush(t *testing.T) {
	m := newModule(Identity{0x81, 0x41, 0x00, 0x01})
	d := mainData64(0x02)
	d[5] = 0x05 // wp1 and wp3
	events, err := decodeMainDisplay(m, d)
	if err != nil {
		t.Fatalf("decodeMainDisplay() error = %v", err)
	}
	checkEvents(t, events, []KeyEvent{{Group: GroupWheelsPush, Mask: maskBytes(0x05)}})

	// Push release is a zero mask and not an event.
	events, err = decodeMainDisplay(m, mainData64(0x02))
	if err != nil {
		t.Fatalf("decodeMainDisplay() error = %v", err)
	}
	if len(events) != 0 {
		t.Errorf("Zero push mask produced %d events", len(events))
	}
}

func TestDecodeWheelRotation(t *testing.T) {
	m := newModule(Identity{0x80, 0x41, 0x00, 0x01})
	d := mainData80(0x01)
	d[2] = 0x02 // wheel 1: two detents up
	d[4] = 0xFE // wheel 3: two detents down
	events, err := decodeMainDisplay(m, d)
	if err != nil {
		t.Fatalf("decodeMainDisplay() error = %v", err)
	}
	checkEvents(t, events, []KeyEvent{
		{Group: GroupWheelsUp, Mask: maskBit(0)},
		{Group: GroupWheelsUp, Mask: maskBit(0)},
		{Group: GroupWheelsDown, Mask: maskBit(2)},
		{Group: GroupWheelsDown, Mask: maskBit(2)},
	})
}

func TestDecodeMainShortPayload(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"routing truncated", []byte{0x08, 0, 0, 0, 0}},
		{"display keys truncated", []byte{0x04, 0, 0}},
		{"wheels truncated", []byte{0x01, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newModule(Identity{0x80, 0x41, 0x00, 0x01})
			if _, err := decodeMainDisplay(m, tt.data); !errors.Is(err, ErrShortPayload) {
				t.Errorf("decodeMainDisplay() error = %v, want ErrShortPayload", err)
			}
		})
	}
}

func tasoData(stat byte, rest ...byte) []byte {
	data := make([]byte, 8)
	data[0] = stat
	copy(data[1:], rest)
	return data
}

func TestDecodeTasoKeypad(t *testing.T) {
	m := newModule(Identity{0x95, 0x41, 0x00, 0x01})

	d := tasoData(0x08)
	d[5] = 0x01 // tn1
	events, err := decodeAuxiliary(m, d)
	if err != nil {
		t.Fatalf("decodeAuxiliary() error = %v", err)
	}
	checkEvents(t, events, []KeyEvent{{Group: GroupAuxKeypad, Mask: maskUint(0x0001, 2)}})

	// Held key repeats are not events.
	events, _ = decodeAuxiliary(m, d)
	if len(events) != 0 {
		t.Errorf("Unchanged keypad produced %d events", len(events))
	}

	// The keypad is press-only: a zero mask is a release and stays silent.
	events, _ = decodeAuxiliary(m, tasoData(0x08))
	if len(events) != 0 {
		t.Errorf("Keypad release produced %d events", len(events))
	}

	// tc3 lives in the low three bits of the third key byte.
	d = tasoData(0x08)
	d[7] = 0x04
	events, _ = decodeAuxiliary(m, d)
	checkEvents(t, events, []KeyEvent{{Group: GroupAuxKeypad, Mask: maskUint(0x4000, 2)}})
}

func TestDecodeTasoSliderKeys(t *testing.T) {
	m := newModule(Identity{0x95, 0x41, 0x00, 0x01})

	d := tasoData(0x08)
	d[7] = 0xA0 // thsp and twp, high bits of the third key byte
	events, err := decodeAuxiliary(m, d)
	if err != nil {
		t.Fatalf("decodeAuxiliary() error = %v", err)
	}
	checkEvents(t, events, []KeyEvent{{Group: GroupAuxSliderKeys, Mask: maskBytes(0x05)}})

	// Unlike the keypad these three buttons report an explicit release.
	events, _ = decodeAuxiliary(m, tasoData(0x08))
	checkEvents(t, events, []KeyEvent{{Group: GroupAuxSliderReleases, Mask: maskBytes(0x01)}})
}

func TestSliderPolarity(t *testing.T) {
	// The two sliders report movement with opposite direction bits: rightward
	// travel on the horizontal slider and downward travel on the vertical
	// slider both raise bit 1. Calibrated against real hardware; do not
	// "fix" the asymmetry.
	m := newModule(Identity{0x95, 0x41, 0x00, 0x01})

	h := func(pos byte) []byte {
		d := tasoData(0x04)
		d[4] = pos
		return d
	}
	v := func(pos byte) []byte {
		d := tasoData(0x02)
		d[3] = pos
		return d
	}

	events, err := decodeAuxiliary(m, h(3))
	if err != nil {
		t.Fatalf("decodeAuxiliary() error = %v", err)
	}
	checkEvents(t, events, []KeyEvent{
		{Group: GroupAuxHorizontalSlider, Mask: maskBytes(0x02)},
		{Group: GroupAuxHorizontalSlider, Mask: maskBytes(0x02)},
		{Group: GroupAuxHorizontalSlider, Mask: maskBytes(0x02)},
	})
	events, _ = decodeAuxiliary(m, h(1))
	checkEvents(t, events, []KeyEvent{
		{Group: GroupAuxHorizontalSlider, Mask: maskBytes(0x01)},
		{Group: GroupAuxHorizontalSlider, Mask: maskBytes(0x01)},
	})

	events, _ = decodeAuxiliary(m, v(2))
	checkEvents(t, events, []KeyEvent{
		{Group: GroupAuxVerticalSlider, Mask: maskBytes(0x01)},
		{Group: GroupAuxVerticalSlider, Mask: maskBytes(0x01)},
	})
	events, _ = decodeAuxiliary(m, v(0))
	checkEvents(t, events, []KeyEvent{
		{Group: GroupAuxVerticalSlider, Mask: maskBytes(0x02)},
		{Group: GroupAuxVerticalSlider, Mask: maskBytes(0x02)},
	})
}

func TestDecodeTasoWheel(t *testing.T) {
	m := newModule(Identity{0x95, 0x41, 0x00, 0x01})

	d := tasoData(0x01)
	d[2] = 0x02
	events, err := decodeAuxiliary(m, d)
	if err != nil {
		t.Fatalf("decodeAuxiliary() error = %v", err)
	}
	checkEvents(t, events, []KeyEvent{
		{Group: GroupAuxWheel, Mask: maskBytes(0x02)},
		{Group: GroupAuxWheel, Mask: maskBytes(0x02)},
	})

	d[2] = 0xFF
	events, _ = decodeAuxiliary(m, d)
	checkEvents(t, events, []KeyEvent{{Group: GroupAuxWheel, Mask: maskBytes(0x01)}})
}

func telData(stat byte, rest ...byte) []byte {
	data := make([]byte, 8)
	data[0] = stat
	copy(data[1:], rest)
	return data
}

func TestDecodeTelephoneKeys(t *testing.T) {
	m := newModule(Identity{0x91, 0x41, 0x00, 0x01})

	d := telData(0x02)
	d[4] = 0x01 // tmk1
	events, err := decodeTelephone(m, d)
	if err != nil {
		t.Fatalf("decodeTelephone() error = %v", err)
	}
	checkEvents(t, events, []KeyEvent{{Group: GroupTelephoneKeys, Mask: maskUint(0x000001, 3)}})

	// Unchanged and release packets are silent.
	events, _ = decodeTelephone(m, d)
	if len(events) != 0 {
		t.Errorf("Unchanged keys produced %d events", len(events))
	}
	events, _ = decodeTelephone(m, telData(0x02))
	if len(events) != 0 {
		t.Errorf("Key release produced %d events", len(events))
	}

	// The wheel push is the top bit of the first key byte, mapped to bit 20.
	d = telData(0x02)
	d[3] = 0x80
	events, _ = decodeTelephone(m, d)
	checkEvents(t, events, []KeyEvent{{Group: GroupTelephoneKeys, Mask: maskUint(1 << 20, 3)}})
}

func TestDecodeTelephoneWheel(t *testing.T) {
	m := newModule(Identity{0x91, 0x41, 0x00, 0x01})

	d := telData(0x01)
	d[2] = 0x01
	events, err := decodeTelephone(m, d)
	if err != nil {
		t.Fatalf("decodeTelephone() error = %v", err)
	}
	checkEvents(t, events, []KeyEvent{{Group: GroupTelephoneWheel, Mask: maskBytes(0x02)}})
}

func TestDecodeStatusKeys(t *testing.T) {
	m := newModule(Identity{0x90, 0x41, 0x00, 0x01})

	events, err := decodeStatus(m, []byte{0x02, 0x00, 0x05})
	if err != nil {
		t.Fatalf("decodeStatus() error = %v", err)
	}
	checkEvents(t, events, []KeyEvent{{Group: GroupStatusKeys, Mask: maskBytes(0x05)}})

	// Unchanged, release and reserved-bit-only packets are all silent.
	if events, _ = decodeStatus(m, []byte{0x02, 0x00, 0x05}); len(events) != 0 {
		t.Errorf("Unchanged keys produced %d events", len(events))
	}
	if events, _ = decodeStatus(m, []byte{0x02, 0x00, 0x00}); len(events) != 0 {
		t.Errorf("Key release produced %d events", len(events))
	}
	if events, _ = decodeStatus(m, []byte{0x01, 0x00, 0x05}); len(events) != 0 {
		t.Errorf("Packet without the key bit produced %d events", len(events))
	}

	// The high nibble is reserved and masked off.
	events, _ = decodeStatus(m, []byte{0x02, 0x00, 0xF1})
	checkEvents(t, events, []KeyEvent{{Group: GroupStatusKeys, Mask: maskBytes(0x01)}})
}

func TestDecodeShortPayloads(t *testing.T) {
	tests := []struct {
		name   string
		id     Identity
		decode decodeFunc
		data   []byte
	}{
		{"taso keypad", Identity{0x95, 0x41, 0, 1}, decodeAuxiliary, []byte{0x08, 0, 0}},
		{"taso hslider", Identity{0x95, 0x41, 0, 1}, decodeAuxiliary, []byte{0x04, 0}},
		{"taso wheel", Identity{0x95, 0x41, 0, 1}, decodeAuxiliary, []byte{0x01}},
		{"telephone keys", Identity{0x91, 0x41, 0, 1}, decodeTelephone, []byte{0x02, 0, 0}},
		{"status keys", Identity{0x90, 0x41, 0, 1}, decodeStatus, []byte{0x02}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newModule(tt.id)
			if _, err := tt.decode(m, tt.data); !errors.Is(err, ErrShortPayload) {
				t.Errorf("decode error = %v, want ErrShortPayload", err)
			}
		})
	}
}

func TestKeyEventNames(t *testing.T) {
	tests := []struct {
		name string
		ev   KeyEvent
		want []string
	}{
		{"routing is 1-based", KeyEvent{GroupRoutingKeys, maskBit(0)}, []string{"routing1"}},
		{"routing80", KeyEvent{GroupRoutingKeys, maskBit(79)}, []string{"routing80"}},
		{"display keys", KeyEvent{GroupDisplayKeys, maskBytes(0x03)}, []string{"d1", "d2"}},
		{"taso keypad star", KeyEvent{GroupAuxKeypad, maskUint(1 << 9, 2)}, []string{"tn*"}},
		{"telephone wheel push", KeyEvent{GroupTelephoneKeys, maskUint(1 << 20, 3)}, []string{"tmwp"}},
		{"unnamed bit stays visible", KeyEvent{GroupStatusKeys, maskBytes(0x10)}, []string{"status-keys+4"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.ev.Names()
			if len(got) != len(tt.want) {
				t.Fatalf("Names() = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("Names()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}
