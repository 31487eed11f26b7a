// Package connection provides the byte-stream abstraction the upload command
// uses to push a hex image at a debug port.
package connection

import (
	"fmt"
	"strings"

	"github.com/mbrukner/gohex/pkg/config"
)

// Connection defines the interface for communicating with a debug port.
// Implementations include serial port and TCP socket connections.
type Connection interface {
	// Open establishes the connection
	Open(port string) error

	// Close terminates the connection
	Close() error

	// IsOpen returns true if the connection is currently open
	IsOpen() bool

	// Read reads exactly n bytes from the connection
	// Returns error if fewer bytes are available
	Read(n int) ([]byte, error)

	// Write writes all data to the connection
	// Returns number of bytes written and error
	Write(data []byte) (int, error)
}

// NewConnection creates the appropriate connection type based on the target
// string, pre-configured with cfg's data rate/timeout. If target contains
// ':', it dials a TCP address (e.g. "192.168.1.114:2560"); otherwise it
// opens a serial device (e.g. "COM3", "/dev/ttyUSB0"). cfg may be nil, in
// which case the returned connection loads its own defaults on Open.
func NewConnection(cfg *config.Config, target string) Connection {
	if strings.Contains(target, ":") {
		return NewTCPConnection(cfg)
	}
	return NewSerialConnection(cfg)
}

// ValidatePort performs basic validation on a port string
func ValidatePort(port string) error {
	if port == "" {
		return fmt.Errorf("port cannot be empty")
	}
	return nil
}
