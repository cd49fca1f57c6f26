package variopro

import "fmt"

// KeyGroup tags which logical key or axis set fired in a KeyEvent.
type KeyGroup int

const (
	GroupRoutingKeys KeyGroup = iota
	GroupDisplayKeys
	GroupWheelsUp
	GroupWheelsDown
	GroupWheelsPush
	GroupAuxKeypad
	GroupAuxSliderKeys
	GroupAuxSliderReleases
	GroupAuxHorizontalSlider
	GroupAuxVerticalSlider
	GroupAuxWheel
	GroupTelephoneKeys
	GroupTelephoneWheel
	GroupStatusKeys
)

func (g KeyGroup) String() string {
	switch g {
	case GroupRoutingKeys:
		return "routing"
	case GroupDisplayKeys:
		return "display"
	case GroupWheelsUp:
		return "wheels-up"
	case GroupWheelsDown:
		return "wheels-down"
	case GroupWheelsPush:
		return "wheels-push"
	case GroupAuxKeypad:
		return "taso-keypad"
	case GroupAuxSliderKeys:
		return "taso-slider-keys"
	case GroupAuxSliderReleases:
		return "taso-slider-releases"
	case GroupAuxHorizontalSlider:
		return "taso-hslider"
	case GroupAuxVerticalSlider:
		return "taso-vslider"
	case GroupAuxWheel:
		return "taso-wheel"
	case GroupTelephoneKeys:
		return "telephone-keys"
	case GroupTelephoneWheel:
		return "telephone-wheel"
	case GroupStatusKeys:
		return "status-keys"
	default:
		return fmt.Sprintf("group(%d)", int(g))
	}
}

// KeyMask is a little-endian bit mask: byte 0 carries bits 0-7, byte 1 bits
// 8-15 and so on. Routing key masks span up to 80 bits, which is why the
// mask is a byte slice rather than a fixed integer.
type KeyMask []byte

// Bit reports whether bit i is set.
func (m KeyMask) Bit(i int) bool {
	if i < 0 || i/8 >= len(m) {
		return false
	}
	return m[i/8]&(1<<(i%8)) != 0
}

// IsZero reports whether no bit is set.
func (m KeyMask) IsZero() bool {
	for _, b := range m {
		if b != 0 {
			return false
		}
	}
	return true
}

// Bits returns the indices of all set bits in ascending order.
func (m KeyMask) Bits() []int {
	var bits []int
	for i, b := range m {
		for j := 0; j < 8; j++ {
			if b&(1<<j) != 0 {
				bits = append(bits, i*8+j)
			}
		}
	}
	return bits
}

// maskBytes builds a KeyMask directly from little-endian mask bytes.
func maskBytes(b ...byte) KeyMask {
	return KeyMask(b)
}

// maskBit returns a mask with only bit i set.
func maskBit(i int) KeyMask {
	m := make(KeyMask, i/8+1)
	m[i/8] = 1 << (i % 8)
	return m
}

// maskUint returns v as a width-byte little-endian mask.
func maskUint(v uint32, width int) KeyMask {
	m := make(KeyMask, width)
	for i := range m {
		m[i] = byte(v >> (8 * i))
	}
	return m
}

// KeyEvent is the semantic output of a module decoder: one key or axis group
// together with the bits that fired. Events are ephemeral; they are handed
// to the gesture collaborator and discarded.
type KeyEvent struct {
	Group KeyGroup
	Mask  KeyMask
}

// keyNames carries the physical key name per bit index for each group, using
// the names established by the BAUM Cobra screen reader mappings. Routing
// key groups have no fixed names; their bit index is the cell index.
var keyNames = map[KeyGroup][]string{
	GroupDisplayKeys: {"d1", "d2", "d3", "d4", "d5", "d6"},
	GroupWheelsUp:    {"wu1", "wu2", "wu3", "wu4"},
	GroupWheelsDown:  {"wd1", "wd2", "wd3", "wd4"},
	GroupWheelsPush:  {"wp1", "wp2", "wp3", "wp4"},
	GroupAuxKeypad: {
		"tn1", "tn2", "tn3", "tn4", "tn5", "tn6", "tn7", "tn8", "tn9",
		"tn*", "tn0", "tn#", "tc1", "tc2", "tc3",
	},
	GroupAuxSliderKeys:       {"thsp", "tvsp", "twp"},
	GroupAuxSliderReleases:   {"tswr"},
	GroupAuxHorizontalSlider: {"thsl", "thsr"},
	GroupAuxVerticalSlider:   {"tvsd", "tvsu"},
	GroupAuxWheel:            {"twl", "twr"},
	GroupTelephoneKeys: {
		"tmk1", "tmk2", "tmk3", "tmkA", "tmk4", "tmk5", "tmk6", "tmkB",
		"tmk7", "tmk8", "tmk9", "tmkC", "tmk*", "tmk0", "tmk#", "tmkD",
		"tmc1", "tmc2", "tmc3", "tmc4", "tmwp",
	},
	GroupTelephoneWheel: {"tmwd", "tmwu"},
	GroupStatusKeys:     {"smc1", "smc2", "smc3", "smc4"},
}

// Names resolves the event's set bits to physical key names. Routing keys
// resolve to "routingN" with N counted from 1 at the leftmost cell. Bits
// beyond the group's name table are reported by index so unexpected device
// input stays visible.
func (e KeyEvent) Names() []string {
	names := keyNames[e.Group]
	var out []string
	for _, bit := range e.Mask.Bits() {
		switch {
		case e.Group == GroupRoutingKeys:
			out = append(out, fmt.Sprintf("routing%d", bit+1))
		case bit < len(names):
			out = append(out, names[bit])
		default:
			out = append(out, fmt.Sprintf("%s+%d", e.Group, bit))
		}
	}
	return out
}
