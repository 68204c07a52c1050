// Package protocol implements the command/response protocol engine (C7):
// byte-exact little-endian frame parsing, a dispatch table over all defined
// commands, and the at-most-one-in-flight concurrency contract (§4.7).
package protocol

import (
	"encoding/binary"

	"github.com/rx178nwj/SoilMonitorRev2/internal/xerrors"
)

// CommandHeaderSize is the fixed header length of a command frame.
const CommandHeaderSize = 4

// ResponseHeaderSize is the fixed header length of a response frame.
const ResponseHeaderSize = 5

// ResponseBufferSize is the single fixed response buffer budget (§4.7:
// "a single fixed stack-allocated region >= 256 bytes").
const ResponseBufferSize = 256

// CommandID identifies a protocol handler.
type CommandID uint8

const (
	CmdGetSensorData    CommandID = 0x01
	CmdGetSystemStatus  CommandID = 0x02
	CmdSetPlantProfile  CommandID = 0x03
	CmdSystemReset      CommandID = 0x05
	CmdGetDeviceInfo    CommandID = 0x06
	CmdGetTimeData      CommandID = 0x0A
	CmdGetSwitchStatus  CommandID = 0x0B
	CmdGetPlantProfile  CommandID = 0x0C
	CmdSetLinkConfig    CommandID = 0x0D
	CmdGetLinkConfig    CommandID = 0x0E
	CmdLinkConnect      CommandID = 0x0F
	CmdGetTimezone      CommandID = 0x10
	CmdSyncTime         CommandID = 0x11
	CmdLinkDisconnect   CommandID = 0x12
	CmdSaveLinkConfig   CommandID = 0x13
	CmdSavePlantProfile CommandID = 0x14
	CmdSetTimezone      CommandID = 0x15
	CmdSaveTimezone     CommandID = 0x16
)

// StatusCode is the result code carried in every response frame.
type StatusCode uint8

const (
	StatusSuccess          StatusCode = 0
	StatusError            StatusCode = 1
	StatusInvalidCommand   StatusCode = 2
	StatusInvalidParameter StatusCode = 3
	StatusBusy             StatusCode = 4
	StatusNotSupported     StatusCode = 5
)

// CommandFrame is a parsed command frame (§4.7 framing table).
type CommandFrame struct {
	CommandID   CommandID
	SequenceNum uint8
	Data        []byte
}

// ParseCommandFrame decodes a raw command frame, applying the universal
// validation rules: a short frame or a data_length mismatch both yield
// ErrInvalidArgument, which the caller maps to StatusInvalidParameter.
func ParseCommandFrame(raw []byte) (CommandFrame, error) {
	if len(raw) < CommandHeaderSize {
		return CommandFrame{}, xerrors.ErrInvalidArgument
	}
	dataLength := binary.LittleEndian.Uint16(raw[2:4])
	if len(raw) != CommandHeaderSize+int(dataLength) {
		return CommandFrame{}, xerrors.ErrInvalidArgument
	}
	return CommandFrame{
		CommandID:   CommandID(raw[0]),
		SequenceNum: raw[1],
		Data:        raw[4:],
	}, nil
}

// ResponseFrame is a built response frame, ready to be sent over the link.
type ResponseFrame struct {
	ResponseID  CommandID
	StatusCode  StatusCode
	SequenceNum uint8
	Data        []byte
}

// MarshalBinary encodes the response into its wire form. A response whose
// total size would exceed ResponseBufferSize is a handler bug, and is
// reported rather than silently truncated.
func (r ResponseFrame) MarshalBinary() ([]byte, error) {
	total := ResponseHeaderSize + len(r.Data)
	if total > ResponseBufferSize {
		return nil, xerrors.ErrSizeMismatch
	}
	buf := make([]byte, total)
	buf[0] = byte(r.ResponseID)
	buf[1] = byte(r.StatusCode)
	buf[2] = r.SequenceNum
	binary.LittleEndian.PutUint16(buf[3:5], uint16(len(r.Data)))
	copy(buf[5:], r.Data)
	return buf, nil
}
