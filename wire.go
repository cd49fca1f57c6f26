package variopro

// Wire protocol constants for the VarioPro serial link.
//
// Every frame starts with the ESC marker, followed by an info type byte, a
// one byte payload length and the payload itself. ESC bytes occurring inside
// the frame after the marker are doubled by the sender (both directions), so
// the marker stays unambiguous on the wire.
const (
	escByte byte = 0x1B

	infoDeviceDetection byte = 0x50
	infoDynamicData     byte = 0x51

	// DeviceDetection status byte values.
	detectionArrived  byte = 0x01
	detectionRemoved  byte = 0x02
	detectionRejected byte = 0x03

	// Query class byte sent with an all-zero identity to solicit identity
	// announcements from every attached module.
	detectionQuery byte = 0x04

	// DynamicDataBlock write command for braille cell output.
	cmdWriteCells byte = 0x00

	// A DeviceDetection payload is always identity (4) + serial (4) + status (1).
	detectionPayloadLen = 9
)

// Unescaper removes the transport-layer ESC doubling from the inbound byte
// stream before the bytes reach the packet assembler. A pair of consecutive
// ESC bytes collapses into a single forwarded ESC.
type Unescaper struct {
	prev byte
	out  func(byte)
}

// NewUnescaper returns an Unescaper forwarding de-doubled bytes to out.
func NewUnescaper(out func(byte)) *Unescaper {
	return &Unescaper{out: out}
}

// Feed processes a chunk of raw bytes from the serial link.
func (u *Unescaper) Feed(data []byte) {
	for _, b := range data {
		if b == escByte && u.prev == escByte {
			// Second half of a doubled ESC: drop it and forget the pair so a
			// third ESC starts a fresh frame marker.
			u.prev = 0
			continue
		}
		u.out(b)
		u.prev = b
	}
}

// Reset clears the prior-byte memory, e.g. after reopening the link.
func (u *Unescaper) Reset() {
	u.prev = 0
}

// appendEscaped appends payload to dst, doubling every ESC byte.
func appendEscaped(dst, payload []byte) []byte {
	for _, b := range payload {
		dst = append(dst, b)
		if b == escByte {
			dst = append(dst, b)
		}
	}
	return dst
}

// EncodeFrame builds a complete outbound frame: marker, info type, payload
// length and the escaped payload. The length byte itself is doubled when it
// happens to equal ESC; the device expects the doubling there as well. The
// one-byte length field limits payloads to 255 bytes.
func EncodeFrame(infoType byte, payload []byte) ([]byte, error) {
	if len(payload) > 255 {
		return nil, ErrPayloadTooLarge
	}
	frame := make([]byte, 0, len(payload)+4)
	frame = append(frame, escByte, infoType, byte(len(payload)))
	if byte(len(payload)) == escByte {
		frame = append(frame, escByte)
	}
	return appendEscaped(frame, payload), nil
}
