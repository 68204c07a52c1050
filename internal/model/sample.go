// Package model defines the data types shared across the sensing pipeline,
// ring store, decision engine, and protocol engine, along with their
// byte-exact little-endian wire encodings (§3, §6 of the specification).
package model

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/rx178nwj/SoilMonitorRev2/internal/clock"
)

// MoistureKind distinguishes the sensing principle of the fitted soil
// moisture sensor, since raw units differ between them. Both kinds read
// higher for drier soil, so the watering-event direction is the same.
type MoistureKind uint8

const (
	MoistureResistive  MoistureKind = iota // raw value in millivolts
	MoistureCapacitive                     // raw value in picofarads, 4 channels
)

// SampleWireSize is the fixed on-the-wire size of a composite sample, used
// by GetSensorData (0x01) and GetTimeData (0x0A)'s found-sample payload.
const SampleWireSize = 60

// Sample is one composite reading, taken once per sampling tick (§3).
type Sample struct {
	Timestamp clock.Timestamp

	AmbientLight float32 // lux
	AirTemp      float32 // °C
	AirHumidity  float32 // %

	// SoilMoisture is the aggregate reading: the raw millivolt value for a
	// resistive sensor, or the 4-channel mean for a capacitive one.
	SoilMoisture float32

	// SoilMoistureChannels holds the per-channel capacitive readings.
	// Unused (zero) on resistive hardware.
	SoilMoistureChannels [4]float32

	// SoilTemps holds 0-4 probe readings depending on hardware revision.
	SoilTemps     [4]float32
	SoilTempCount uint8

	HardwareVersion      uint8
	DataStructureVersion uint8
	Error                bool
}

// Valid reports whether this sample represents a successful acquisition.
func (s Sample) Valid() bool { return !s.Error }

// MarshalBinary encodes the sample into its 60-byte little-endian wire form.
func (s Sample) MarshalBinary() ([]byte, error) {
	buf := new(bytes.Buffer)
	epoch := uint32(s.Timestamp.Time().Unix())
	fields := []any{
		epoch,
		s.AirTemp,
		s.AirHumidity,
		s.AmbientLight,
		s.SoilMoisture,
		s.SoilMoistureChannels,
		s.SoilTemps,
		s.SoilTempCount,
		boolToByte(s.Error),
		s.HardwareVersion,
		s.DataStructureVersion,
	}
	for _, f := range fields {
		if err := binary.Write(buf, binary.LittleEndian, f); err != nil {
			return nil, fmt.Errorf("encode sample: %w", err)
		}
	}
	buf.Write(make([]byte, 4)) // pad to SampleWireSize
	return buf.Bytes(), nil
}

// UnmarshalSample decodes a 60-byte wire sample. The embedded epoch is
// expanded against UTC; callers that need the original timezone should
// treat the Sample.Timestamp as informational only (the epoch round-trips
// exactly, the calendar breakdown may not reflect the original TZ).
func UnmarshalSample(data []byte) (Sample, error) {
	if len(data) != SampleWireSize {
		return Sample{}, fmt.Errorf("sample: %w", fmt.Errorf("expected %d bytes, got %d", SampleWireSize, len(data)))
	}
	r := bytes.NewReader(data)
	var epoch uint32
	var s Sample
	var errByte byte

	for _, f := range []any{
		&epoch,
		&s.AirTemp,
		&s.AirHumidity,
		&s.AmbientLight,
		&s.SoilMoisture,
		&s.SoilMoistureChannels,
		&s.SoilTemps,
		&s.SoilTempCount,
		&errByte,
		&s.HardwareVersion,
		&s.DataStructureVersion,
	} {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return Sample{}, fmt.Errorf("decode sample: %w", err)
		}
	}
	s.Error = errByte != 0
	s.Timestamp = clock.FromUnix(int64(epoch))
	return s, nil
}

func boolToByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
