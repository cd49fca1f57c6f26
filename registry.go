package variopro

import "log/slog"

// Registry tracks the hot-pluggable modules currently attached to the device
// chain, keyed by identity. It owns every Module instance and all of their
// differential decode state. The registry itself is not goroutine safe; the
// driver serializes access behind its own lock.
type Registry struct {
	log     *slog.Logger
	modules map[Identity]*Module
	main    *Module
}

func newRegistry(log *slog.Logger) *Registry {
	return &Registry{
		log:     log,
		modules: make(map[Identity]*Module),
	}
}

// Main returns the primary display module, nil before one has arrived.
func (r *Registry) Main() *Module {
	return r.main
}

// Module returns the registry entry for id, nil if absent.
func (r *Registry) Module(id Identity) *Module {
	return r.modules[id]
}

// ByKind returns the first registered module of the given kind, nil if none.
func (r *Registry) ByKind(kind ModuleKind) *Module {
	if kind.isMainDisplay() {
		return r.main
	}
	for _, m := range r.modules {
		if m.Kind == kind {
			return m
		}
	}
	return nil
}

// Modules returns all registered modules.
func (r *Registry) Modules() []*Module {
	out := make([]*Module, 0, len(r.modules))
	for _, m := range r.modules {
		out = append(out, m)
	}
	return out
}

// reset drops every module, e.g. on channel teardown.
func (r *Registry) reset() {
	r.modules = make(map[Identity]*Module)
	r.main = nil
}

// handleDetection processes a DeviceDetection payload. It returns the
// identity to acknowledge and true when an arrival was registered; the
// caller owes the device an ack packet before it starts streaming dynamic
// data for that module. Malformed payloads and unknown status bytes are
// ignored.
func (r *Registry) handleDetection(payload []byte) (Identity, bool) {
	if len(payload) != detectionPayloadLen {
		return Identity{}, false
	}
	var id Identity
	copy(id[:], payload[:4])

	switch payload[detectionPayloadLen-1] {
	case detectionArrived:
		m := newModule(id)
		r.modules[id] = m
		if m.Kind.isMainDisplay() {
			r.main = m
		}
		if m.Kind == KindUnknown {
			r.log.Info("unknown module arrived, input will be ignored", slog.String("id", id.String()))
		} else {
			r.log.Info("module arrived", slog.String("id", id.String()), slog.String("kind", m.Kind.String()))
		}
		return id, true

	case detectionRemoved:
		// Duplicate removals are a no-op by design.
		if m, ok := r.modules[id]; ok {
			delete(r.modules, id)
			if r.main == m {
				r.main = nil
			}
			r.log.Info("module removed", slog.String("id", id.String()), slog.String("kind", m.Kind.String()))
		}

	case detectionRejected:
		// Address conflict on the device side; no state change here.
		r.log.Warn("module rejected, check for conflicting unit addresses", slog.String("id", id.String()))
	}
	return Identity{}, false
}

// handleDynamic dispatches a DynamicDataBlock payload to the owning module's
// decoder and returns the decoded events. Every failure path is non-fatal:
// unregistered identities, missing decoders and short payloads are logged
// and the packet is dropped.
func (r *Registry) handleDynamic(payload []byte) []KeyEvent {
	if len(payload) < 4 {
		r.log.Warn("dynamic data block without module identity", slog.Int("len", len(payload)))
		return nil
	}
	var id Identity
	copy(id[:], payload[:4])

	m := r.modules[id]
	if m == nil {
		r.log.Warn("dynamic data for unregistered module", slog.String("id", id.String()))
		return nil
	}
	decode := m.decoder()
	if decode == nil {
		// Unknown module kind: registered far enough to be ignored.
		return nil
	}
	events, err := decode(m, payload[4:])
	if err != nil {
		r.log.Warn("dropping malformed data block",
			slog.String("id", id.String()),
			slog.String("kind", m.Kind.String()),
			slog.Any("error", err))
		return nil
	}
	return events
}
