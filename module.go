package variopro

import "fmt"

// Identity is the 4-byte device identification of a single physical module
// instance. It is assigned by the device and used as the registry key.
type Identity [4]byte

func (id Identity) String() string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X", id[0], id[1], id[2], id[3])
}

// ModuleKind is the closed set of module types a VarioPro chain can carry.
type ModuleKind int

const (
	KindUnknown ModuleKind = iota
	KindMainDisplay80
	KindMainDisplay64
	KindAuxiliary // TASO unit: numeric keypad, two sliders, one wheel
	KindStatus
	KindTelephone
)

func (k ModuleKind) String() string {
	switch k {
	case KindMainDisplay80:
		return "VarioPro 80"
	case KindMainDisplay64:
		return "VarioPro 64"
	case KindAuxiliary:
		return "TASO"
	case KindStatus:
		return "Status"
	case KindTelephone:
		return "Telephone"
	default:
		return "Unknown"
	}
}

// Cells returns the fixed braille cell count for the kind, 0 for units
// without braille output. Geometry is fixed per kind, not negotiated.
func (k ModuleKind) Cells() int {
	switch k {
	case KindMainDisplay80:
		return 80
	case KindMainDisplay64:
		return 64
	case KindStatus:
		return 4
	case KindTelephone:
		return 12
	default:
		return 0
	}
}

// kindIDs maps the leading two identity bytes to the module kind.
var kindIDs = map[[2]byte]ModuleKind{
	{0x80, 0x41}: KindMainDisplay80,
	{0x81, 0x41}: KindMainDisplay64,
	{0x95, 0x41}: KindAuxiliary,
	{0x91, 0x41}: KindTelephone,
	{0x90, 0x41}: KindStatus,
}

// KindOf resolves a module kind from an identity. Identities with unknown
// leading bytes map to KindUnknown.
func KindOf(id Identity) ModuleKind {
	if k, ok := kindIDs[[2]byte{id[0], id[1]}]; ok {
		return k
	}
	return KindUnknown
}

// isMainDisplay reports whether the kind is one of the main display variants.
func (k ModuleKind) isMainDisplay() bool {
	return k == KindMainDisplay80 || k == KindMainDisplay64
}

// Module is the registry entry for one connected hardware unit. It owns the
// differential decode state for that unit; nothing outside the registry
// holds a Module beyond a single dispatch call.
type Module struct {
	Kind     ModuleKind
	Identity Identity
	Cells    int

	// Differential and cumulative decoder state, zeroed on arrival.
	cumulDisplayKeys  byte
	prevKeypad        uint32
	prevSliderKeys    byte
	prevHSlider       byte
	prevVSlider       byte
	prevTelephoneKeys uint32
	prevStatusKeys    byte

	// Last cell pattern written, to skip redundant output packets.
	lastCells []byte
}

func newModule(id Identity) *Module {
	kind := KindOf(id)
	return &Module{
		Kind:     kind,
		Identity: id,
		Cells:    kind.Cells(),
	}
}

// hasBraille reports whether the module accepts cell output.
func (m *Module) hasBraille() bool {
	return m.Cells > 0
}

// decoder returns the payload decoder for the module's kind, nil for
// unknown kinds.
func (m *Module) decoder() decodeFunc {
	return decodeFuncs[m.Kind]
}
