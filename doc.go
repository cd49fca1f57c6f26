// Package variopro implements the serial wire protocol of the BAUM VarioPro
// family of modular refreshable braille displays.
//
// A VarioPro chain consists of a main display (80 or 64 cells) and optional
// hot-pluggable units: the TASO keypad/slider unit, a 4-cell status unit and
// a 12-cell telephone unit. The driver decodes the chain's byte stream into
// semantic key events and encodes braille cell patterns back onto the wire.
//
// # Basic Usage
//
// Open a port and receive key events:
//
//	drv, err := variopro.Open("/dev/ttyUSB0",
//	    variopro.WithEventHandler(func(ev variopro.KeyEvent) {
//	        fmt.Println(ev.Group, ev.Names())
//	    }),
//	)
//	if err != nil {
//	    log.Fatal(err) // variopro.ErrNoDisplay if nothing answered
//	}
//	defer drv.Close()
//
//	cells := make([]byte, drv.NumCells())
//	drv.Display(cells)
//
// Open blocks until the main display answers the module-detection handshake
// or the handshake timeout expires. Auxiliary units may arrive and leave at
// any time afterwards; Modules reports what is currently attached.
//
// # Protocol
//
// Frames are marked by 0x1B followed by an info type (0x50 device detection,
// 0x51 dynamic data), a length byte and the payload. 0x1B bytes inside a
// frame are doubled on the wire in both directions. Device detection packets
// announce module arrival, removal and rejection; every arrival must be
// acknowledged before the module starts streaming input. Dynamic data
// packets carry per-module input reports and, outbound, braille cell writes.
//
// # Events
//
// Decoders translate raw input reports into KeyEvent values, one (group,
// bitmask) pair per change: routing keys, the cumulative display keys,
// wheel rotations expanded to single-detent steps, absolute slider positions
// expanded to single-step moves, and the keypads of the auxiliary units. The
// mapping of events to user actions is the caller's concern; KeyEvent.Names
// exposes the physical key names for binding tables.
//
// # Custom channels
//
// New accepts any io.ReadWriteCloser in place of a serial port, which is how
// the tests drive the protocol over an in-memory pipe.
package variopro
