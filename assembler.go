package variopro

// Packet is one complete frame received from the device, with the marker,
// info type and length header already stripped. Packets are handed to the
// dispatcher as they complete and are not retained.
type Packet struct {
	InfoType byte
	Payload  []byte
}

type assemblerState int

const (
	stateIdle assemblerState = iota
	stateAwaitInfoType
	stateAwaitLength
	stateCollectPayload
)

// Assembler is the packet framing state machine. It consumes unescaped bytes
// one at a time and emits complete packets. Bytes arriving outside a frame
// are line noise and are silently discarded; a malformed info type drops the
// partial frame and the machine waits for the next marker.
type Assembler struct {
	state     assemblerState
	infoType  byte
	payload   []byte
	remaining int
	emit      func(Packet)
}

// NewAssembler returns an Assembler that calls emit for every completed packet.
func NewAssembler(emit func(Packet)) *Assembler {
	return &Assembler{emit: emit}
}

// Feed advances the state machine by one unescaped byte.
func (a *Assembler) Feed(b byte) {
	switch a.state {
	case stateIdle:
		if b == escByte {
			a.state = stateAwaitInfoType
		}
	case stateAwaitInfoType:
		if b != infoDeviceDetection && b != infoDynamicData {
			a.state = stateIdle
			return
		}
		a.infoType = b
		a.state = stateAwaitLength
	case stateAwaitLength:
		if b == 0 {
			// Zero-length payload completes immediately.
			a.emit(Packet{InfoType: a.infoType})
			a.state = stateIdle
			return
		}
		a.remaining = int(b)
		a.payload = make([]byte, 0, a.remaining)
		a.state = stateCollectPayload
	case stateCollectPayload:
		a.payload = append(a.payload, b)
		a.remaining--
		if a.remaining == 0 {
			a.emit(Packet{InfoType: a.infoType, Payload: a.payload})
			a.payload = nil
			a.state = stateIdle
		}
	}
}

// Reset drops any partial frame and returns the machine to idle.
func (a *Assembler) Reset() {
	a.state = stateIdle
	a.payload = nil
	a.remaining = 0
}
