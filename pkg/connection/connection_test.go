package connection

import (
	"testing"

	"github.com/mbrukner/gohex/pkg/config"
)

func TestNewConnectionDispatchesOnTarget(t *testing.T) {
	cfg := config.Default()

	if _, ok := NewConnection(cfg, "192.168.1.114:2560").(*TCPConnection); !ok {
		t.Errorf("NewConnection with a host:port target did not return *TCPConnection")
	}
	if _, ok := NewConnection(cfg, "/dev/ttyUSB0").(*SerialConnection); !ok {
		t.Errorf("NewConnection with a device path target did not return *SerialConnection")
	}
}

func TestValidatePort(t *testing.T) {
	if err := ValidatePort(""); err == nil {
		t.Errorf("ValidatePort(\"\") = nil, want error")
	}
	if err := ValidatePort("/dev/ttyUSB0"); err != nil {
		t.Errorf("ValidatePort(\"/dev/ttyUSB0\") = %v, want nil", err)
	}
}

func TestTCPConnectionTimeoutFallsBackWithoutConfig(t *testing.T) {
	tc := NewTCPConnection(nil)
	if got := tc.timeout(); got.Seconds() != 10 {
		t.Errorf("timeout() with nil config = %v, want 10s", got)
	}

	cfg := &config.Config{Timeout: 3}
	tc.SetConfig(cfg)
	if got := tc.timeout(); got.Seconds() != 3 {
		t.Errorf("timeout() with Timeout=3 = %v, want 3s", got)
	}
}
