package protocol

import (
	"encoding/binary"
	"fmt"

	"github.com/mbrukner/gohex/pkg/connection"
)

// Pusher frames address + data blocks over a connection.Connection using the
// request/response shape:
//
//	request:  [0x55][CMD][ADDR_HI][ADDR_MID][ADDR_LO][LEN_HI][LEN_LO]<data>[LRC]
//	response: [0xAA][STATUS0][STATUS1]<data>[LRC]
//
// LRC is the XOR of every byte in the frame except the sync byte.
type Pusher struct {
	conn    connection.Connection
	status0 byte
	status1 byte
}

// NewPusher wraps an already-open connection.
func NewPusher(conn connection.Connection) *Pusher {
	return &Pusher{conn: conn}
}

// Status0 and Status1 report the two status bytes returned by the last
// WriteBlock or ReadBlock call.
func (p *Pusher) Status0() byte { return p.status0 }
func (p *Pusher) Status1() byte { return p.status1 }

func (p *Pusher) transfer(command byte, address uint32, data []byte, readLength uint16) ([]byte, error) {
	p.status0, p.status1 = 0, 0

	length := readLength
	if len(data) > 0 {
		length = uint16(len(data))
	}

	header := make([]byte, 7)
	header[0] = RequestSyncByte
	header[1] = command
	header[2] = byte(address >> 16)
	header[3] = byte(address >> 8)
	header[4] = byte(address)
	binary.BigEndian.PutUint16(header[5:7], length)

	frame := make([]byte, 0, len(header)+len(data)+1)
	frame = append(frame, header...)
	frame = append(frame, data...)
	frame = append(frame, calculateLRC(frame[1:]))

	written, err := p.conn.Write(frame)
	if err != nil {
		return nil, fmt.Errorf("writing frame: %w", err)
	}
	if written != len(frame) {
		return nil, fmt.Errorf("incomplete write: wrote %d bytes, expected %d", written, len(frame))
	}

	sync, err := p.conn.Read(1)
	if err != nil {
		return nil, fmt.Errorf("reading response sync byte: %w", err)
	}
	if sync[0] != ResponseSyncByte {
		return nil, fmt.Errorf("unexpected response sync byte 0x%02X", sync[0])
	}

	status, err := p.conn.Read(2)
	if err != nil {
		return nil, fmt.Errorf("reading status bytes: %w", err)
	}
	p.status0, p.status1 = status[0], status[1]

	var readBytes []byte
	if readLength > 0 {
		readBytes, err = p.conn.Read(int(readLength))
		if err != nil {
			return nil, fmt.Errorf("reading response data: %w", err)
		}
	}

	if _, err := p.conn.Read(1); err != nil {
		return nil, fmt.Errorf("reading response LRC: %w", err)
	}

	return readBytes, nil
}

// WriteBlock writes data to the target starting at address.
func (p *Pusher) WriteBlock(address uint32, data []byte) error {
	_, err := p.transfer(CMDWriteMem, address, data, 0)
	return err
}

// ReadBlock reads length bytes back from the target starting at address.
func (p *Pusher) ReadBlock(address uint32, length uint16) ([]byte, error) {
	return p.transfer(CMDReadMem, address, nil, length)
}
