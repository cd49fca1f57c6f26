package variopro

import (
	"log/slog"
	"time"
)

// Config holds the configuration for a VarioPro driver.
type Config struct {
	BaudRate         int
	HandshakeTimeout time.Duration // how long Open waits for a main display
	QueryInterval    time.Duration // module query repeat interval during handshake
	Logger           *slog.Logger
	Handler          EventHandler
}

// Option is a functional option for configuring the driver.
type Option func(*Config) error

// DefaultConfig returns a configuration with sensible defaults. The VarioPro
// link runs at 19200 8N1.
func DefaultConfig() Config {
	return Config{
		BaudRate:         19200,
		HandshakeTimeout: 10 * time.Second,
		QueryInterval:    100 * time.Millisecond,
		Logger:           slog.Default(),
	}
}

// WithBaudRate overrides the link baud rate.
func WithBaudRate(rate int) Option {
	return func(c *Config) error {
		if rate <= 0 {
			return ErrInvalidConfig
		}
		c.BaudRate = rate
		return nil
	}
}

// WithHandshakeTimeout bounds how long Open waits for the main display to
// announce itself before failing with ErrNoDisplay.
func WithHandshakeTimeout(timeout time.Duration) Option {
	return func(c *Config) error {
		if timeout <= 0 {
			return ErrInvalidConfig
		}
		c.HandshakeTimeout = timeout
		return nil
	}
}

// WithQueryInterval sets how often the module query is re-sent while waiting
// for the handshake.
func WithQueryInterval(interval time.Duration) Option {
	return func(c *Config) error {
		if interval <= 0 {
			return ErrInvalidConfig
		}
		c.QueryInterval = interval
		return nil
	}
}

// WithLogger sets the logger used for the non-fatal reporting side channel.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) error {
		if logger == nil {
			return ErrInvalidConfig
		}
		c.Logger = logger
		return nil
	}
}

// WithEventHandler sets the callback receiving decoded key events. Without a
// handler the driver still tracks modules and accepts output, but input
// events are dropped.
func WithEventHandler(handler EventHandler) Option {
	return func(c *Config) error {
		c.Handler = handler
		return nil
	}
}
