package variopro

import (
	"io"
	"log/slog"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// detection builds a DeviceDetection payload: identity, serial, status byte.
func detection(id Identity, status byte) []byte {
	p := make([]byte, 0, detectionPayloadLen)
	p = append(p, id[:]...)
	p = append(p, 0xDE, 0xAD, 0xBE, 0xEF) // serial, opaque to the driver
	return append(p, status)
}

func TestRegistryArrival(t *testing.T) {
	r := newRegistry(testLogger())
	id := Identity{0x80, 0x41, 0x00, 0x01}

	ackID, ack := r.handleDetection(detection(id, detectionArrived))
	if !ack {
		t.Fatal("Arrival did not request an acknowledgement")
	}
	if ackID != id {
		t.Errorf("Ack identity = %s, want %s", ackID, id)
	}

	m := r.Module(id)
	if m == nil {
		t.Fatal("Module not registered")
	}
	if m.Kind != KindMainDisplay80 || m.Cells != 80 {
		t.Errorf("Module = %s with %d cells, want VarioPro 80 with 80", m.Kind, m.Cells)
	}
	if r.Main() != m {
		t.Error("Main display not tracked")
	}
}

func TestRegistryAuxiliaryArrivalIsNotMain(t *testing.T) {
	r := newRegistry(testLogger())
	id := Identity{0x95, 0x41, 0x00, 0x02}

	if _, ack := r.handleDetection(detection(id, detectionArrived)); !ack {
		t.Fatal("Arrival did not request an acknowledgement")
	}
	if r.Main() != nil {
		t.Error("TASO arrival set the main display")
	}
	if r.ByKind(KindAuxiliary) == nil {
		t.Error("ByKind did not find the TASO unit")
	}
}

func TestRegistryRemoval(t *testing.T) {
	r := newRegistry(testLogger())
	id := Identity{0x81, 0x41, 0x00, 0x01}
	r.handleDetection(detection(id, detectionArrived))

	if _, ack := r.handleDetection(detection(id, detectionRemoved)); ack {
		t.Error("Removal requested an acknowledgement")
	}
	if r.Module(id) != nil {
		t.Error("Module still registered after removal")
	}
	if r.Main() != nil {
		t.Error("Main display still tracked after removal")
	}

	// A duplicate removal for the same identity is a no-op.
	r.handleDetection(detection(id, detectionRemoved))
}

func TestRegistryRejected(t *testing.T) {
	r := newRegistry(testLogger())
	id := Identity{0x80, 0x41, 0x00, 0x03}

	if _, ack := r.handleDetection(detection(id, detectionRejected)); ack {
		t.Error("Rejection requested an acknowledgement")
	}
	if r.Module(id) != nil {
		t.Error("Rejected module was registered")
	}
}

func TestRegistryMalformedDetection(t *testing.T) {
	r := newRegistry(testLogger())
	id := Identity{0x80, 0x41, 0x00, 0x01}

	tests := []struct {
		name    string
		payload []byte
	}{
		{"truncated", detection(id, detectionArrived)[:8]},
		{"oversized", append(detection(id, detectionArrived), 0x00)},
		{"unknown status", detection(id, 0x05)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ack := r.handleDetection(tt.payload); ack {
				t.Error("Malformed detection requested an acknowledgement")
			}
			if r.Module(id) != nil {
				t.Error("Malformed detection registered a module")
			}
		})
	}
}

func TestRegistryRearrivalResetsState(t *testing.T) {
	r := newRegistry(testLogger())
	id := Identity{0x80, 0x41, 0x00, 0x01}
	r.handleDetection(detection(id, detectionArrived))

	// Leave keys accumulated, then unplug and replug the module.
	d := mainData80(0x04)
	d[7] = 0x3F
	r.handleDynamic(append(id[:], d...))

	r.handleDetection(detection(id, detectionRemoved))
	r.handleDetection(detection(id, detectionArrived))

	// The fresh module must not flush keys held before the replug.
	events := r.handleDynamic(append(id[:], mainData80(0x04)...))
	if len(events) != 0 {
		t.Errorf("Replugged module flushed stale keys: %v", events)
	}
}

func TestRegistryDynamicDispatch(t *testing.T) {
	r := newRegistry(testLogger())
	id := Identity{0x80, 0x41, 0x00, 0x01}
	r.handleDetection(detection(id, detectionArrived))

	d := mainData80(0x08)
	d[8] = 0x01
	events := r.handleDynamic(append(id[:], d...))
	checkEvents(t, events, []KeyEvent{{Group: GroupRoutingKeys, Mask: KeyMask{0x01, 0, 0, 0, 0, 0, 0, 0, 0, 0}}})
}

func TestRegistryDynamicDropped(t *testing.T) {
	r := newRegistry(testLogger())
	main := Identity{0x80, 0x41, 0x00, 0x01}
	unknown := Identity{0x12, 0x34, 0x00, 0x01}
	r.handleDetection(detection(main, detectionArrived))
	r.handleDetection(detection(unknown, detectionArrived))

	tests := []struct {
		name    string
		payload []byte
	}{
		{"missing identity", []byte{0x80, 0x41}},
		{"unregistered module", append([]byte{0x81, 0x41, 0x00, 0x09}, 0x08)},
		{"unknown module kind", append(unknown[:], 0x08, 0xFF, 0xFF)},
		{"short data block", append(main[:], 0x08, 0x00)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if events := r.handleDynamic(tt.payload); len(events) != 0 {
				t.Errorf("Got %d events, want none", len(events))
			}
		})
	}
}

func TestRegistryReset(t *testing.T) {
	r := newRegistry(testLogger())
	r.handleDetection(detection(Identity{0x80, 0x41, 0x00, 0x01}, detectionArrived))
	r.handleDetection(detection(Identity{0x90, 0x41, 0x00, 0x02}, detectionArrived))

	r.reset()
	if len(r.Modules()) != 0 {
		t.Errorf("Modules() returned %d entries after reset", len(r.Modules()))
	}
	if r.Main() != nil {
		t.Error("Main display survived reset")
	}
}
