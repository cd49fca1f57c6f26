package models

import (
	"context"
	"sync"

	"github.com/allbin/go-variopro"
)

// ConnectionStatusMsg reports driver connect/disconnect to the TUI
type ConnectionStatusMsg struct {
	Connected bool
	Error     error
}

// MonitorModel holds the shared state of the monitor TUI: the driver handle
// and the lifecycle context the connect goroutine is bound to.
type MonitorModel struct {
	portPath string

	mu        sync.RWMutex
	driver    *variopro.Driver
	connected bool
	err       error
	ready     bool

	ctx    context.Context
	cancel context.CancelFunc
}

func NewMonitorModel(portPath string) *MonitorModel {
	ctx, cancel := context.WithCancel(context.Background())
	return &MonitorModel{
		portPath: portPath,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (m *MonitorModel) PortPath() string {
	return m.portPath
}

func (m *MonitorModel) SetDriver(drv *variopro.Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.driver = drv
}

func (m *MonitorModel) Driver() *variopro.Driver {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.driver
}

func (m *MonitorModel) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

func (m *MonitorModel) SetConnected(connected bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = connected
}

func (m *MonitorModel) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MonitorModel) IsReady() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ready
}

func (m *MonitorModel) SetReady(ready bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ready = ready
}

func (m *MonitorModel) Context() context.Context {
	return m.ctx
}

func (m *MonitorModel) Cancel() {
	if m.cancel != nil {
		m.cancel()
	}
}

// Cleanup cancels the lifecycle context and closes the driver.
func (m *MonitorModel) Cleanup() {
	if m.cancel != nil {
		m.cancel()
	}
	m.mu.Lock()
	if m.driver != nil {
		m.driver.Close()
		m.driver = nil
	}
	m.mu.Unlock()
}
