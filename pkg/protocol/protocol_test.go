package protocol

import (
	"bytes"
	"testing"
)

// fakeConn is a minimal connection.Connection double that echoes a
// canned response and records the frame it was sent.
type fakeConn struct {
	written  []byte
	response []byte
}

func (f *fakeConn) Open(string) error { return nil }
func (f *fakeConn) Close() error      { return nil }
func (f *fakeConn) IsOpen() bool      { return true }

func (f *fakeConn) Write(data []byte) (int, error) {
	f.written = append(f.written, data...)
	return len(data), nil
}

func (f *fakeConn) Read(n int) ([]byte, error) {
	if len(f.response) < n {
		n = len(f.response)
	}
	out := f.response[:n]
	f.response = f.response[n:]
	return out, nil
}

func TestPusherWriteBlock(t *testing.T) {
	conn := &fakeConn{response: []byte{ResponseSyncByte, 0x00, 0x00, 0x00}}
	pusher := NewPusher(conn)

	data := []byte{0xAA, 0xBB, 0xCC}
	if err := pusher.WriteBlock(0x001000, data); err != nil {
		t.Fatalf("WriteBlock() error = %v", err)
	}

	want := []byte{
		RequestSyncByte, CMDWriteMem,
		0x00, 0x10, 0x00, // address 0x001000
		0x00, 0x03, // length 3
		0xAA, 0xBB, 0xCC,
	}
	want = append(want, calculateLRC(want[1:]))

	if !bytes.Equal(conn.written, want) {
		t.Errorf("WriteBlock() wrote %X, want %X", conn.written, want)
	}
}

func TestPusherWriteBlockBadSync(t *testing.T) {
	conn := &fakeConn{response: []byte{0x00, 0x00, 0x00, 0x00}}
	pusher := NewPusher(conn)

	if err := pusher.WriteBlock(0, []byte{0x01}); err == nil {
		t.Fatal("WriteBlock() with bad response sync byte should fail")
	}
}
