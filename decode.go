package variopro

import "fmt"

// decodeFunc turns a DynamicDataBlock payload (identity already stripped)
// into semantic key events, updating the module's differential state. A
// decoder never panics on short input; it returns an error and the registry
// logs and drops the packet.
type decodeFunc func(m *Module, data []byte) ([]KeyEvent, error)

// decodeFuncs is the dispatch table indexed by module kind. Unknown kinds
// have no entry: their packets are accepted into the registry but ignored.
var decodeFuncs = map[ModuleKind]decodeFunc{
	KindMainDisplay80: decodeMainDisplay,
	KindMainDisplay64: decodeMainDisplay,
	KindAuxiliary:     decodeAuxiliary,
	KindStatus:        decodeStatus,
	KindTelephone:     decodeTelephone,
}

func shortPayload(kind ModuleKind, n int) error {
	return fmt.Errorf("%s data block of %d bytes: %w", kind, n, ErrShortPayload)
}

// decodeMainDisplay handles both main display variants. The status bits are
// mutually exclusive per packet and are tested highest first, so a packet
// with several bits set only reports its highest-priority change. The
// 80-cell layout carries one extra leading field, shifting every offset up
// by one byte relative to the 64-cell layout.
func decodeMainDisplay(m *Module, data []byte) ([]KeyEvent, error) {
	if len(data) < 1 {
		return nil, shortPayload(m.Kind, len(data))
	}
	routingOff, displayOff, pushOff, wheels := 7, 6, 5, 3
	if m.Kind == KindMainDisplay80 {
		routingOff, displayOff, pushOff, wheels = 8, 7, 6, 4
	}

	stat := data[0]
	switch {
	case stat&0x08 != 0: // routing keys
		n := m.Cells / 8
		if len(data) < routingOff+n {
			return nil, shortPayload(m.Kind, len(data))
		}
		mask := KeyMask(append([]byte(nil), data[routingOff:routingOff+n]...))
		if mask.IsZero() {
			// All routing keys released is not itself an event.
			return nil, nil
		}
		return []KeyEvent{{Group: GroupRoutingKeys, Mask: mask}}, nil

	case stat&0x04 != 0: // display keys, cumulative
		if len(data) <= displayOff {
			return nil, shortPayload(m.Kind, len(data))
		}
		keys := data[displayOff]
		if keys != 0 {
			// The device reports presses while keys are held and a single
			// all-zero mask on release; accumulate until that flush.
			m.cumulDisplayKeys |= keys
			return nil, nil
		}
		flushed := m.cumulDisplayKeys
		m.cumulDisplayKeys = 0
		if flushed == 0 {
			return nil, nil
		}
		return []KeyEvent{{Group: GroupDisplayKeys, Mask: maskBytes(flushed)}}, nil

	case stat&0x02 != 0: // wheel push buttons, direct
		if len(data) <= pushOff {
			return nil, shortPayload(m.Kind, len(data))
		}
		if data[pushOff] == 0 {
			return nil, nil
		}
		return []KeyEvent{{Group: GroupWheelsPush, Mask: maskBytes(data[pushOff])}}, nil

	case stat&0x01 != 0: // wheel rotation, one signed byte per wheel
		if len(data) < 2+wheels {
			return nil, shortPayload(m.Kind, len(data))
		}
		var events []KeyEvent
		for wi := 0; wi < wheels; wi++ {
			events = appendWheelSteps(events, int8(data[2+wi]),
				KeyEvent{Group: GroupWheelsUp, Mask: maskBit(wi)},
				KeyEvent{Group: GroupWheelsDown, Mask: maskBit(wi)})
		}
		return events, nil
	}
	return nil, nil
}

// appendWheelSteps expands a signed rotation delta into |delta| single-detent
// events, so consumers never see magnitudes above one.
func appendWheelSteps(events []KeyEvent, delta int8, up, down KeyEvent) []KeyEvent {
	steps := int(delta)
	ev := up
	if steps < 0 {
		steps, ev = -steps, down
	}
	for i := 0; i < steps; i++ {
		events = append(events, ev)
	}
	return events
}

// decodeAuxiliary handles the TASO unit: a 15-key numeric/control keypad,
// slider and wheel push buttons, two absolute-position sliders and a wheel.
func decodeAuxiliary(m *Module, data []byte) ([]KeyEvent, error) {
	if len(data) < 1 {
		return nil, shortPayload(m.Kind, len(data))
	}
	stat := data[0]
	switch {
	case stat&0x08 != 0: // keypad and slider/wheel push buttons
		if len(data) < 8 {
			return nil, shortPayload(m.Kind, len(data))
		}
		k := data[5:8]
		keypad := uint32(k[0]) | uint32(k[1])<<8 | uint32(k[2]&0x07)<<12
		sliderKeys := (k[2] >> 5) & 0x07

		var events []KeyEvent
		if keypad != m.prevKeypad && keypad != 0 {
			// Press-only: the keypad's zero mask is a release and is dropped.
			events = append(events, KeyEvent{Group: GroupAuxKeypad, Mask: maskUint(keypad, 2)})
		}
		if sliderKeys != m.prevSliderKeys {
			if sliderKeys != 0 {
				events = append(events, KeyEvent{Group: GroupAuxSliderKeys, Mask: maskBytes(sliderKeys)})
			} else {
				// Downstream needs an explicit release for these three
				// buttons, unlike the keypad.
				events = append(events, KeyEvent{Group: GroupAuxSliderReleases, Mask: maskBytes(0x01)})
			}
		}
		m.prevKeypad = keypad
		m.prevSliderKeys = sliderKeys
		return events, nil

	case stat&0x04 != 0: // horizontal slider, absolute position
		if len(data) < 5 {
			return nil, shortPayload(m.Kind, len(data))
		}
		pos := data[4]
		// Rightward movement is bit 1. Calibrated against real hardware;
		// note the vertical slider uses the opposite polarity.
		bit := byte(0x01)
		if pos > m.prevHSlider {
			bit = 0x02
		}
		events := sliderSteps(GroupAuxHorizontalSlider, pos, m.prevHSlider, bit)
		m.prevHSlider = pos
		return events, nil

	case stat&0x02 != 0: // vertical slider, absolute position
		if len(data) < 4 {
			return nil, shortPayload(m.Kind, len(data))
		}
		pos := data[3]
		bit := byte(0x01)
		if pos < m.prevVSlider {
			bit = 0x02
		}
		events := sliderSteps(GroupAuxVerticalSlider, pos, m.prevVSlider, bit)
		m.prevVSlider = pos
		return events, nil

	case stat&0x01 != 0: // wheel rotation
		if len(data) < 3 {
			return nil, shortPayload(m.Kind, len(data))
		}
		return appendWheelSteps(nil, int8(data[2]),
			KeyEvent{Group: GroupAuxWheel, Mask: maskBytes(0x02)},
			KeyEvent{Group: GroupAuxWheel, Mask: maskBytes(0x01)}), nil
	}
	return nil, nil
}

// sliderSteps expands an absolute position change into one event per step of
// travel, all carrying the same direction bit.
func sliderSteps(group KeyGroup, pos, prev byte, bit byte) []KeyEvent {
	delta := int(pos) - int(prev)
	if delta < 0 {
		delta = -delta
	}
	var events []KeyEvent
	for i := 0; i < delta; i++ {
		events = append(events, KeyEvent{Group: group, Mask: maskBytes(bit)})
	}
	return events
}

// decodeTelephone handles the telephone unit's 21-bit key set and wheel.
func decodeTelephone(m *Module, data []byte) ([]KeyEvent, error) {
	if len(data) < 1 {
		return nil, shortPayload(m.Kind, len(data))
	}
	stat := data[0]
	switch {
	case stat&0x02 != 0: // keypad, control and wheel-push keys
		if len(data) < 8 {
			return nil, shortPayload(m.Kind, len(data))
		}
		k := data[3:8]
		keys := uint32(k[1]) | uint32(k[2])<<8 |
			uint32(k[0]&0x0F)<<16 | uint32(k[0]>>7)<<20
		var events []KeyEvent
		if keys != m.prevTelephoneKeys && keys != 0 {
			events = append(events, KeyEvent{Group: GroupTelephoneKeys, Mask: maskUint(keys, 3)})
		}
		m.prevTelephoneKeys = keys
		return events, nil

	case stat&0x01 != 0: // wheel rotation
		if len(data) < 3 {
			return nil, shortPayload(m.Kind, len(data))
		}
		return appendWheelSteps(nil, int8(data[2]),
			KeyEvent{Group: GroupTelephoneWheel, Mask: maskBytes(0x02)},
			KeyEvent{Group: GroupTelephoneWheel, Mask: maskBytes(0x01)}), nil
	}
	return nil, nil
}

// decodeStatus handles the status unit's four control keys. The high nibble
// of the key byte is reserved and masked off.
func decodeStatus(m *Module, data []byte) ([]KeyEvent, error) {
	if len(data) < 1 {
		return nil, shortPayload(m.Kind, len(data))
	}
	if data[0]&0x02 == 0 {
		return nil, nil
	}
	if len(data) < 3 {
		return nil, shortPayload(m.Kind, len(data))
	}
	keys := data[2] & 0x0F
	var events []KeyEvent
	if keys != m.prevStatusKeys && keys != 0 {
		events = append(events, KeyEvent{Group: GroupStatusKeys, Mask: maskBytes(keys)})
	}
	m.prevStatusKeys = keys
	return events, nil
}
