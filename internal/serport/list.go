package serport

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// VarioPro displays enumerate as FTDI serial converters with these product
// IDs (80- and 64-cell variants).
var varioProUSBIDs = map[string]bool{
	"0403:fe76": true, // VarioPro 80
	"0403:fe77": true, // VarioPro 64
}

// PortInfo describes one serial port found on the system
type PortInfo struct {
	Name         string
	Path         string
	Description  string
	VendorID     string
	ProductID    string
	SerialNumber string
}

// IsVarioPro reports whether the port's USB identity matches a known
// VarioPro display.
func (info *PortInfo) IsVarioPro() bool {
	return varioProUSBIDs[strings.ToLower(info.VendorID+":"+info.ProductID)]
}

// ListPorts returns a list of available serial ports on the system.
// Filters for communication-capable devices and excludes virtual terminals.
func ListPorts() ([]string, error) {
	entries, err := os.ReadDir("/dev")
	if err != nil {
		return nil, err
	}

	patterns := []*regexp.Regexp{
		regexp.MustCompile(`^ttyUSB\d+$`), // USB serial adapters (FTDI, incl. VarioPro)
		regexp.MustCompile(`^ttyACM\d+$`), // USB CDC/ACM devices
		regexp.MustCompile(`^ttyS\d+$`),   // Standard serial ports
		regexp.MustCompile(`^ttyAMA\d+$`), // ARM/Raspberry Pi serial
	}

	var ports []string
	for _, entry := range entries {
		name := entry.Name()
		for _, pattern := range patterns {
			if pattern.MatchString(name) {
				fullPath := filepath.Join("/dev", name)
				if isCharacterDevice(fullPath) {
					ports = append(ports, fullPath)
				}
				break
			}
		}
	}

	sort.Strings(ports)
	return ports, nil
}

// ListVarioProPorts returns only the ports whose USB identity matches a
// VarioPro display, in stable order.
func ListVarioProPorts() ([]string, error) {
	all, err := ListPorts()
	if err != nil {
		return nil, err
	}
	var ports []string
	for _, path := range all {
		info, err := GetPortInfo(path)
		if err != nil {
			continue
		}
		if info.IsVarioPro() {
			ports = append(ports, path)
		}
	}
	return ports, nil
}

// isCharacterDevice checks if the given path is a character device
func isCharacterDevice(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// GetPortInfo returns detailed information about a specific port
func GetPortInfo(portPath string) (*PortInfo, error) {
	if !isCharacterDevice(portPath) {
		return nil, ErrDeviceNotFound
	}

	name := filepath.Base(portPath)
	info := &PortInfo{
		Name:        name,
		Path:        portPath,
		Description: portDescription(name),
	}

	if strings.HasPrefix(name, "ttyUSB") || strings.HasPrefix(name, "ttyACM") {
		enrichUSBInfo(info)
	}
	return info, nil
}

// portDescription provides human-readable descriptions for port types
func portDescription(name string) string {
	switch {
	case strings.HasPrefix(name, "ttyUSB"):
		return "USB Serial Port"
	case strings.HasPrefix(name, "ttyACM"):
		return "USB CDC/ACM Device"
	case strings.HasPrefix(name, "ttyAMA"):
		return "ARM Serial Port"
	case strings.HasPrefix(name, "ttyS"):
		return "Standard Serial Port"
	default:
		return "Serial Port"
	}
}

// enrichUSBInfo reads the USB vendor/product/serial for a tty from sysfs.
// The tty's device symlink points into the USB interface directory; the
// id files live two levels up at the USB device itself.
func enrichUSBInfo(info *PortInfo) {
	devLink := filepath.Join("/sys/class/tty", info.Name, "device")
	devPath, err := filepath.EvalSymlinks(devLink)
	if err != nil {
		return
	}
	usbDev := filepath.Dir(filepath.Dir(devPath))

	info.VendorID = readSysfsAttr(filepath.Join(usbDev, "idVendor"))
	info.ProductID = readSysfsAttr(filepath.Join(usbDev, "idProduct"))
	info.SerialNumber = readSysfsAttr(filepath.Join(usbDev, "serial"))
	if product := readSysfsAttr(filepath.Join(usbDev, "product")); product != "" {
		info.Description = product
	}
}

func readSysfsAttr(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
