package connection

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/mbrukner/gohex/pkg/config"
)

// TCPConnection implements Connection interface for TCP socket communication,
// used when --target names a host:port pair instead of a serial device.
type TCPConnection struct {
	conn   net.Conn
	isOpen bool
	config *config.Config
}

// NewTCPConnection creates a TCP connection with the given configuration.
// cfg may be nil, in which case Open loads the default configuration.
func NewTCPConnection(cfg *config.Config) *TCPConnection {
	return &TCPConnection{config: cfg}
}

// SetConfig updates the configuration for this connection.
func (t *TCPConnection) SetConfig(cfg *config.Config) {
	t.config = cfg
}

// timeout returns the configured dial/read/write timeout, falling back to
// 10 seconds if no configuration was supplied.
func (t *TCPConnection) timeout() time.Duration {
	if t.config != nil && t.config.Timeout > 0 {
		return time.Duration(t.config.Timeout) * time.Second
	}
	return 10 * time.Second
}

// Open establishes a TCP connection to the specified host:port
func (t *TCPConnection) Open(port string) error {
	if t.config == nil {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		t.config = cfg
	}

	parts := strings.Split(port, ":")
	if len(parts) < 2 {
		return fmt.Errorf("invalid TCP address format (expected host:port): %s", port)
	}

	host := parts[0]
	tcpPort := parts[1]

	address := net.JoinHostPort(host, tcpPort)

	conn, err := net.DialTimeout("tcp", address, t.timeout())
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", address, err)
	}

	t.conn = conn
	t.isOpen = true
	return nil
}

// Close closes the TCP connection
func (t *TCPConnection) Close() error {
	if t.conn == nil {
		return nil
	}
	t.isOpen = false
	return t.conn.Close()
}

// IsOpen returns true if the connection is currently open
func (t *TCPConnection) IsOpen() bool {
	return t.isOpen
}

// Read reads exactly n bytes from the TCP connection
func (t *TCPConnection) Read(n int) ([]byte, error) {
	if t.conn == nil {
		return nil, fmt.Errorf("TCP connection not open")
	}
	if err := t.conn.SetReadDeadline(time.Now().Add(t.timeout())); err != nil {
		return nil, fmt.Errorf("failed to set TCP read deadline: %w", err)
	}

	buf := make([]byte, n)
	totalRead := 0

	for totalRead < n {
		bytesRead, err := t.conn.Read(buf[totalRead:])
		if err != nil {
			return nil, fmt.Errorf("TCP read error: %w", err)
		}
		if bytesRead == 0 {
			return nil, fmt.Errorf("TCP connection closed")
		}
		totalRead += bytesRead
	}

	return buf, nil
}

// Write writes all data to the TCP connection
func (t *TCPConnection) Write(data []byte) (int, error) {
	if t.conn == nil {
		return 0, fmt.Errorf("TCP connection not open")
	}
	if err := t.conn.SetWriteDeadline(time.Now().Add(t.timeout())); err != nil {
		return 0, fmt.Errorf("failed to set TCP write deadline: %w", err)
	}

	totalWritten := 0
	for totalWritten < len(data) {
		n, err := t.conn.Write(data[totalWritten:])
		if err != nil {
			return totalWritten, fmt.Errorf("TCP write error: %w", err)
		}
		totalWritten += n
	}

	return totalWritten, nil
}
