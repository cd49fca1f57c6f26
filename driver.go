package variopro

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/allbin/go-variopro/internal/serport"
)

// EventHandler receives decoded key events. It is called from the driver's
// read goroutine, one event at a time, in decode order.
type EventHandler func(KeyEvent)

// contextChannel is the cancellable I/O surface of internal/serport's Port.
// Channels implementing it have their blocking reads and writes bound to the
// driver's lifecycle; plain io.ReadWriteCloser channels fall back to Read and
// Write and are unblocked by Close closing the channel.
type contextChannel interface {
	ReadContext(ctx context.Context, buf []byte) (int, error)
	WriteContext(ctx context.Context, data []byte) (int, error)
}

// Driver owns the byte channel to a VarioPro chain. It runs the receive
// pipeline (Unescaper -> Assembler -> Registry -> decoders) on a single
// goroutine and exposes Display for braille output. Module arrival and
// removal can race with Display choosing which modules to address, so one
// mutex guards the registry and the outbound write path together.
type Driver struct {
	cfg     Config
	log     *slog.Logger
	handler EventHandler

	ctx    context.Context // cancelled by Close
	cancel context.CancelFunc

	mu       sync.Mutex
	ch       io.ReadWriteCloser
	cc       contextChannel // non-nil when ch supports cancellable I/O
	registry *Registry
	closed   bool

	asm   *Assembler
	unesc *Unescaper

	ready     chan struct{} // closed once a main display has registered
	readyOnce sync.Once
}

// ModuleInfo is a point-in-time snapshot of one registered module.
type ModuleInfo struct {
	Kind     ModuleKind
	Identity Identity
	Cells    int
}

// Open opens the serial port at path and performs the module-detection
// handshake. It fails with ErrNoDisplay when no main display announces
// itself within the configured handshake timeout.
func Open(path string, opts ...Option) (*Driver, error) {
	cfg, err := buildConfig(opts)
	if err != nil {
		return nil, err
	}
	port, err := serport.Open(path,
		serport.WithBaudRate(cfg.BaudRate),
		serport.WithReadTimeout(2), // 200ms VTIME so Close is picked up promptly
	)
	if err != nil {
		return nil, err
	}
	// Stale bytes queued before we attached would desync the assembler.
	if err := port.FlushInput(); err != nil {
		cfg.Logger.Warn("input flush failed", slog.Any("error", err))
	}
	return start(port, cfg)
}

// New wraps an already open byte channel instead of a serial port path. The
// channel must deliver received bytes in order; the same handshake contract
// as Open applies.
func New(ch io.ReadWriteCloser, opts ...Option) (*Driver, error) {
	cfg, err := buildConfig(opts)
	if err != nil {
		return nil, err
	}
	return start(ch, cfg)
}

func buildConfig(opts []Option) (Config, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

func start(ch io.ReadWriteCloser, cfg Config) (*Driver, error) {
	ctx, cancel := context.WithCancel(context.Background())
	d := &Driver{
		cfg:      cfg,
		log:      cfg.Logger,
		handler:  cfg.Handler,
		ctx:      ctx,
		cancel:   cancel,
		ch:       ch,
		registry: newRegistry(cfg.Logger),
		ready:    make(chan struct{}),
	}
	d.cc, _ = ch.(contextChannel)
	d.asm = NewAssembler(d.processPacket)
	d.unesc = NewUnescaper(d.asm.Feed)
	go d.readLoop()

	if err := d.handshake(); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

// handshake polls the chain with module queries until a main display
// registers, bounded by the handshake timeout.
func (d *Driver) handshake() error {
	ticker := time.NewTicker(d.cfg.QueryInterval)
	defer ticker.Stop()
	deadline := time.NewTimer(d.cfg.HandshakeTimeout)
	defer deadline.Stop()

	d.queryModules()
	for {
		select {
		case <-d.ready:
			return nil
		case <-ticker.C:
			d.queryModules()
		case <-deadline.C:
			return ErrNoDisplay
		}
	}
}

// queryModules solicits identity announcements from all attached modules.
func (d *Driver) queryModules() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.writeFrame(infoDeviceDetection, []byte{0x00, 0x00, 0x00, 0x00, detectionQuery})
}

func (d *Driver) readLoop() {
	read := d.ch.Read
	if d.cc != nil {
		read = func(buf []byte) (int, error) {
			return d.cc.ReadContext(d.ctx, buf)
		}
	}
	buf := make([]byte, 256)
	for {
		n, err := read(buf)
		if n > 0 {
			d.unesc.Feed(buf[:n])
		}
		if err != nil {
			// A cancelled lifecycle context means Close ended the loop.
			if d.ctx.Err() == nil && !errors.Is(err, io.EOF) {
				d.log.Error("receive loop terminated", slog.Any("error", err))
			}
			return
		}
	}
}

// processPacket dispatches one assembled packet. Called from the read
// goroutine only.
func (d *Driver) processPacket(pkt Packet) {
	switch pkt.InfoType {
	case infoDeviceDetection:
		d.mu.Lock()
		id, arrived := d.registry.handleDetection(pkt.Payload)
		if arrived {
			// The device will not stream dynamic data until the arrival is
			// acknowledged.
			d.writeFrame(infoDeviceDetection, append(id[:], detectionArrived))
		}
		mainReady := d.registry.Main() != nil
		d.mu.Unlock()
		if mainReady {
			d.readyOnce.Do(func() { close(d.ready) })
		}

	case infoDynamicData:
		d.mu.Lock()
		events := d.registry.handleDynamic(pkt.Payload)
		d.mu.Unlock()
		if d.handler != nil {
			for _, ev := range events {
				d.handler(ev)
			}
		}

	default:
		d.log.Warn("packet with unknown info type", slog.Int("infoType", int(pkt.InfoType)))
	}
}

// writeFrame escapes and frames a payload and writes it to the channel.
// Callers hold d.mu. Write failures are logged and reported to the caller;
// flow control is the channel's concern.
func (d *Driver) writeFrame(infoType byte, payload []byte) error {
	frame, err := EncodeFrame(infoType, payload)
	if err != nil {
		d.log.Error("frame encode failed", slog.Any("error", err))
		return err
	}
	if d.cc != nil {
		_, err = d.cc.WriteContext(d.ctx, frame)
	} else {
		_, err = d.ch.Write(frame)
	}
	if err != nil {
		d.log.Error("frame write failed", slog.Any("error", err))
	}
	return err
}

// NumCells returns the main display's cell count, 0 before the handshake
// completes. It defines the addressable cursor-routing range.
func (d *Driver) NumCells() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if m := d.registry.Main(); m != nil {
		return m.Cells
	}
	return 0
}

// Modules returns a snapshot of all registered modules, sorted by identity.
func (d *Driver) Modules() []ModuleInfo {
	d.mu.Lock()
	defer d.mu.Unlock()
	mods := d.registry.Modules()
	out := make([]ModuleInfo, 0, len(mods))
	for _, m := range mods {
		out = append(out, ModuleInfo{Kind: m.Kind, Identity: m.Identity, Cells: m.Cells})
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].Identity[:], out[j].Identity[:]) < 0
	})
	return out
}

// Display pushes a combined cell-pattern buffer to every braille-capable
// module, main display cells first, then the status unit's four cells, then
// the telephone unit's twelve. Modules not currently attached are skipped.
// Unchanged per-module patterns are not retransmitted.
func (d *Driver) Display(cells []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	offset := 0
	for _, m := range []*Module{d.registry.Main(), d.registry.ByKind(KindStatus), d.registry.ByKind(KindTelephone)} {
		if m == nil || !m.hasBraille() || offset >= len(cells) {
			continue
		}
		end := offset + m.Cells
		if end > len(cells) {
			end = len(cells)
		}
		d.writeCells(m, cells[offset:end])
		offset = end
	}
	return nil
}

func (d *Driver) writeCells(m *Module, cells []byte) {
	if bytes.Equal(m.lastCells, cells) {
		return
	}
	payload := make([]byte, 0, len(cells)+7)
	payload = append(payload, m.Identity[:]...)
	payload = append(payload, cmdWriteCells, 0x00, byte(len(cells)))
	payload = append(payload, cells...)
	if err := d.writeFrame(infoDynamicData, payload); err != nil {
		// Leave lastCells stale so the next Display retries the module.
		return
	}
	m.lastCells = append(m.lastCells[:0], cells...)
}

// Close tears down the driver: the channel is closed, every module state is
// released and the assembler returns to idle. Safe to call more than once.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	d.closed = true
	d.cancel()
	err := d.ch.Close()
	d.registry.reset()
	d.asm.Reset()
	d.unesc.Reset()
	return err
}
