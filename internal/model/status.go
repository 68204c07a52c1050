package model

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// SystemStatusWireSize is the byte-exact wire size of a SystemStatus (§6).
const SystemStatusWireSize = 24

// SystemStatus is the GetSystemStatus (0x02) response payload: the struct
// form adopted per §9's REDESIGN FLAGS resolution of the
// string-vs-struct incompatibility between source variants.
type SystemStatus struct {
	UptimeSeconds uint32
	HeapFree      uint32
	HeapMin       uint32
	TaskCount     uint32
	CurrentTime   uint32 // Unix epoch seconds
	Linked        bool
	Subscribed    bool
}

// MarshalBinary encodes the status into its 24-byte little-endian wire form.
func (s SystemStatus) MarshalBinary() ([]byte, error) {
	buf := new(bytes.Buffer)
	fields := []any{
		s.UptimeSeconds, s.HeapFree, s.HeapMin, s.TaskCount, s.CurrentTime,
		boolToByte(s.Linked), boolToByte(s.Subscribed),
	}
	for _, f := range fields {
		if err := binary.Write(buf, binary.LittleEndian, f); err != nil {
			return nil, fmt.Errorf("encode system status: %w", err)
		}
	}
	buf.Write(make([]byte, 2)) // pad[2]
	return buf.Bytes(), nil
}

// UnmarshalSystemStatus decodes a 24-byte wire system status.
func UnmarshalSystemStatus(data []byte) (SystemStatus, error) {
	if len(data) != SystemStatusWireSize {
		return SystemStatus{}, fmt.Errorf("system status: expected %d bytes, got %d", SystemStatusWireSize, len(data))
	}
	r := bytes.NewReader(data)
	var s SystemStatus
	var linked, subscribed byte
	for _, f := range []any{&s.UptimeSeconds, &s.HeapFree, &s.HeapMin, &s.TaskCount, &s.CurrentTime, &linked, &subscribed} {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return SystemStatus{}, fmt.Errorf("decode system status: %w", err)
		}
	}
	s.Linked = linked != 0
	s.Subscribed = subscribed != 0
	return s, nil
}

// CalendarWireSize is the byte-exact wire size of the packed calendar
// struct underlying both TimeRequest and TimeResponse (§6: "nine 32-bit
// integers").
const CalendarWireSize = 36

// TimeRequestWireSize is the wire size of a GetTimeData (0x0A) request payload.
const TimeRequestWireSize = CalendarWireSize

// TimeResponseWireSize is the wire size of the calendar struct followed by
// four f32 fields (§6).
const TimeResponseWireSize = CalendarWireSize + 16

// Calendar is the packed nine-int32-field calendar struct shared by
// TimeRequest and the leading portion of TimeResponse.
type Calendar struct {
	Year, Month, Day     int32
	Hour, Minute, Second int32
	Weekday, YearDay     int32
	IsDST                int32 // 0 or 1
}

func (c Calendar) fields() []any {
	return []any{c.Year, c.Month, c.Day, c.Hour, c.Minute, c.Second, c.Weekday, c.YearDay, c.IsDST}
}

func (c *Calendar) ptrFields() []any {
	return []any{&c.Year, &c.Month, &c.Day, &c.Hour, &c.Minute, &c.Second, &c.Weekday, &c.YearDay, &c.IsDST}
}

// TimeRequest is the GetTimeData (0x0A) request payload: the requested
// minute, expressed as a calendar breakdown rather than a bare epoch so the
// ring store's date-keyed lookups can be driven directly.
type TimeRequest struct {
	Calendar
}

// MarshalBinary encodes the request into its 36-byte little-endian wire form.
func (t TimeRequest) MarshalBinary() ([]byte, error) {
	buf := new(bytes.Buffer)
	for _, f := range t.Calendar.fields() {
		if err := binary.Write(buf, binary.LittleEndian, f); err != nil {
			return nil, fmt.Errorf("encode time request: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// UnmarshalTimeRequest decodes a 36-byte wire time request.
func UnmarshalTimeRequest(data []byte) (TimeRequest, error) {
	if len(data) != TimeRequestWireSize {
		return TimeRequest{}, fmt.Errorf("time request: expected %d bytes, got %d", TimeRequestWireSize, len(data))
	}
	var t TimeRequest
	r := bytes.NewReader(data)
	for _, f := range t.Calendar.ptrFields() {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return TimeRequest{}, fmt.Errorf("decode time request: %w", err)
		}
	}
	return t, nil
}

// TimeResponse is the GetTimeData response payload when a matching sample
// is found: the requested calendar echoed back plus the four core scalar
// readings (air temp, air humidity, ambient light, soil moisture). A miss
// is reported via the response frame's ERROR status code rather than this
// payload.
type TimeResponse struct {
	Calendar
	AirTemp      float32
	AirHumidity  float32
	AmbientLight float32
	SoilMoisture float32
}

// MarshalBinary encodes the response into its 52-byte little-endian wire form.
func (t TimeResponse) MarshalBinary() ([]byte, error) {
	buf := new(bytes.Buffer)
	for _, f := range t.Calendar.fields() {
		if err := binary.Write(buf, binary.LittleEndian, f); err != nil {
			return nil, fmt.Errorf("encode time response: %w", err)
		}
	}
	for _, f := range []any{t.AirTemp, t.AirHumidity, t.AmbientLight, t.SoilMoisture} {
		if err := binary.Write(buf, binary.LittleEndian, f); err != nil {
			return nil, fmt.Errorf("encode time response: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// UnmarshalTimeResponse decodes a 52-byte wire time response.
func UnmarshalTimeResponse(data []byte) (TimeResponse, error) {
	if len(data) != TimeResponseWireSize {
		return TimeResponse{}, fmt.Errorf("time response: expected %d bytes, got %d", TimeResponseWireSize, len(data))
	}
	var t TimeResponse
	r := bytes.NewReader(data)
	for _, f := range t.Calendar.ptrFields() {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return TimeResponse{}, fmt.Errorf("decode time response: %w", err)
		}
	}
	for _, f := range []any{&t.AirTemp, &t.AirHumidity, &t.AmbientLight, &t.SoilMoisture} {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return TimeResponse{}, fmt.Errorf("decode time response: %w", err)
		}
	}
	return t, nil
}

// DeviceInfoWireSize is the byte-exact wire size of a DeviceInfo (§6).
const DeviceInfoWireSize = 72

// DeviceInfo is the GetDeviceInfo (0x06) response payload.
type DeviceInfo struct {
	Name            string // bounded to 32 bytes
	FirmwareVersion string // bounded to 16 bytes
	HardwareVersion string // bounded to 16 bytes
	UptimeSeconds   uint32
	ReadingCount    uint32
}

// MarshalBinary encodes the device info into its 72-byte little-endian wire form.
func (d DeviceInfo) MarshalBinary() ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Write(fixedString(d.Name, 32))
	buf.Write(fixedString(d.FirmwareVersion, 16))
	buf.Write(fixedString(d.HardwareVersion, 16))
	for _, f := range []any{d.UptimeSeconds, d.ReadingCount} {
		if err := binary.Write(buf, binary.LittleEndian, f); err != nil {
			return nil, fmt.Errorf("encode device info: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// UnmarshalDeviceInfo decodes a 72-byte wire device info.
func UnmarshalDeviceInfo(data []byte) (DeviceInfo, error) {
	if len(data) != DeviceInfoWireSize {
		return DeviceInfo{}, fmt.Errorf("device info: expected %d bytes, got %d", DeviceInfoWireSize, len(data))
	}
	r := bytes.NewReader(data)
	name := make([]byte, 32)
	fw := make([]byte, 16)
	hw := make([]byte, 16)
	if _, err := r.Read(name); err != nil {
		return DeviceInfo{}, fmt.Errorf("decode device info name: %w", err)
	}
	if _, err := r.Read(fw); err != nil {
		return DeviceInfo{}, fmt.Errorf("decode device info firmware: %w", err)
	}
	if _, err := r.Read(hw); err != nil {
		return DeviceInfo{}, fmt.Errorf("decode device info hardware: %w", err)
	}
	var d DeviceInfo
	d.Name = trimFixedString(name)
	d.FirmwareVersion = trimFixedString(fw)
	d.HardwareVersion = trimFixedString(hw)
	for _, f := range []any{&d.UptimeSeconds, &d.ReadingCount} {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return DeviceInfo{}, fmt.Errorf("decode device info: %w", err)
		}
	}
	return d, nil
}
