package serport

// Config holds the configuration for a serial port. VarioPro displays talk
// plain 19200 8N1 with no flow control, so the surface here is deliberately
// small: baud rate and the VTIME read timeout.
type Config struct {
	BaudRate          int
	ReadTimeoutTenths int // VTIME setting in tenths of seconds (0-255)
}

// Option is a functional option for configuring a serial port
type Option func(*Config) error

// DefaultConfig returns a configuration with the VarioPro link defaults
func DefaultConfig() Config {
	return Config{
		BaudRate:          19200,
		ReadTimeoutTenths: 2, // 200ms blocking read slices
	}
}

// WithBaudRate sets the baud rate
func WithBaudRate(rate int) Option {
	return func(c *Config) error {
		if _, err := baudConstant(rate); err != nil {
			return err
		}
		c.BaudRate = rate
		return nil
	}
}

// WithReadTimeout sets the read timeout in tenths of seconds (VTIME)
func WithReadTimeout(tenths int) Option {
	return func(c *Config) error {
		if tenths < 0 || tenths > 255 {
			return ErrInvalidConfig
		}
		c.ReadTimeoutTenths = tenths
		return nil
	}
}
