// Package sensors provides the uniform sensor-adapter interface (C2) and the
// sampling scheduler that aggregates per-tick composite readings (C3).
package sensors

import (
	"strings"

	"github.com/rx178nwj/SoilMonitorRev2/internal/model"
)

// Capability represents one measurement capability a hardware revision may
// or may not have fitted. Capabilities use a bitmask so a board can combine
// more than one.
type Capability uint8

const (
	// Moisture represents a fitted soil-moisture sensor (resistive or capacitive).
	Moisture Capability = 1 << 0 // 0x01
	// Light represents the ambient light sensor.
	Light Capability = 1 << 1 // 0x02
	// AirTempHumidity represents the onboard air temperature/humidity sensor.
	AirTempHumidity Capability = 1 << 2 // 0x04
	// SoilTemperature represents one or more soil-temperature probes.
	SoilTemperature Capability = 1 << 3 // 0x08
)

// String returns the human-readable name of a capability.
func (c Capability) String() string {
	switch c {
	case Moisture:
		return "Moisture"
	case Light:
		return "Light"
	case AirTempHumidity:
		return "AirTempHumidity"
	case SoilTemperature:
		return "SoilTemperature"
	default:
		return "Unknown"
	}
}

// Capabilities is a set of Capability values packed into a bitmask.
type Capabilities uint8

// Has checks if a specific capability is present in the set.
func (c Capabilities) Has(cap Capability) bool {
	return (uint8(c) & uint8(cap)) != 0
}

// Add adds a capability to the set.
func (c *Capabilities) Add(cap Capability) {
	*c = Capabilities(uint8(*c) | uint8(cap))
}

// List returns all capabilities present in the set.
func (c Capabilities) List() []Capability {
	var caps []Capability
	for _, cap := range []Capability{Moisture, Light, AirTempHumidity, SoilTemperature} {
		if c.Has(cap) {
			caps = append(caps, cap)
		}
	}
	return caps
}

// String returns a comma-separated string of all capabilities in the set.
func (c Capabilities) String() string {
	caps := c.List()
	if len(caps) == 0 {
		return "None"
	}
	strs := make([]string, len(caps))
	for i, cap := range caps {
		strs[i] = cap.String()
	}
	return strings.Join(strs, ", ")
}

// Capabilities reports which measurement capabilities this board's Set
// actually has fitted (§4.2: the sensor set varies by hardware revision and
// configured moisture-sensor kind), for the debug API's status surface.
func (s *Set) Capabilities() Capabilities {
	var c Capabilities
	if s.Light != nil {
		c.Add(Light)
	}
	switch s.MoistureKind {
	case model.MoistureCapacitive:
		if s.Capacitive != nil {
			c.Add(Moisture)
		}
	default:
		if s.Resistive != nil {
			c.Add(Moisture)
		}
	}
	if s.Air != nil {
		c.Add(AirTempHumidity)
	}
	if s.SoilTemps != nil && len(s.SoilTemps.Probes) > 0 {
		c.Add(SoilTemperature)
	}
	return c
}
