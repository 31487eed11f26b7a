// Package protocol implements the framed block-write wire protocol that the
// upload command uses to stream a loaded hex image at a debug port.
package protocol

// Command bytes for the framed request header.
const (
	CMDWriteMem = 0x01 // Write a block of data to memory
	CMDReadMem  = 0x00 // Read a block of data from memory
)

// Sync bytes marking the start of a request and its response.
const (
	RequestSyncByte  = 0x55
	ResponseSyncByte = 0xAA
)
