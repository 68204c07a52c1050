package model

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// ProfileWireSize is the byte-exact persisted/wire size of a Profile (§6).
const ProfileWireSize = 32 + 4 + 4 + 4 + 4 + 4 + 4 // 56

// CredentialsWireSize is the byte-exact persisted/wire size of LinkCredentials (§6).
const CredentialsWireSize = 32 + 64 // 96

// Profile holds the tunable thresholds that parameterise the decision
// engine (§3 "Plant profile").
type Profile struct {
	Name string // bounded to 32 bytes on the wire

	DryThreshold float32 // moisture units; >= this reads as dry
	WetThreshold float32 // moisture units; <= this reads as wet

	DryDaysTrigger int32 // consecutive dry days before NEEDS_WATERING

	TempHigh float32 // °C
	TempLow  float32 // °C

	WateringDelta float32 // moisture drop within the recent window that registers a watering event
}

// FactoryDefaultProfile is the succulent-plant default profile synthesised
// by the config store on a missing/corrupt/size-mismatched blob (§4.6).
func FactoryDefaultProfile() Profile {
	return Profile{
		Name:           "Succulent Plant",
		DryThreshold:   2500,
		WetThreshold:   1000,
		DryDaysTrigger: 3,
		TempHigh:       35,
		TempLow:        10,
		WateringDelta:  400,
	}
}

// MarshalBinary encodes the profile into its 56-byte little-endian wire form.
func (p Profile) MarshalBinary() ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Write(fixedString(p.Name, 32))
	for _, f := range []any{p.DryThreshold, p.WetThreshold, p.DryDaysTrigger, p.TempHigh, p.TempLow, p.WateringDelta} {
		if err := binary.Write(buf, binary.LittleEndian, f); err != nil {
			return nil, fmt.Errorf("encode profile: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// UnmarshalProfile decodes a 56-byte wire profile.
func UnmarshalProfile(data []byte) (Profile, error) {
	if len(data) != ProfileWireSize {
		return Profile{}, fmt.Errorf("profile: expected %d bytes, got %d", ProfileWireSize, len(data))
	}
	r := bytes.NewReader(data)
	name := make([]byte, 32)
	if _, err := r.Read(name); err != nil {
		return Profile{}, fmt.Errorf("decode profile name: %w", err)
	}
	var p Profile
	p.Name = trimFixedString(name)
	for _, f := range []any{&p.DryThreshold, &p.WetThreshold, &p.DryDaysTrigger, &p.TempHigh, &p.TempLow, &p.WateringDelta} {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return Profile{}, fmt.Errorf("decode profile: %w", err)
		}
	}
	return p, nil
}

// LinkCredentials is the SSID-like identifier and secret used to join the
// wireless link (§3 "Link credentials").
type LinkCredentials struct {
	SSID     string // bounded to 32 bytes on the wire
	Password string // bounded to 64 bytes on the wire
}

// MarshalBinary encodes the credentials into their 96-byte little-endian wire form.
func (c LinkCredentials) MarshalBinary() ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Write(fixedString(c.SSID, 32))
	buf.Write(fixedString(c.Password, 64))
	return buf.Bytes(), nil
}

// UnmarshalLinkCredentials decodes a 96-byte wire credentials blob.
func UnmarshalLinkCredentials(data []byte) (LinkCredentials, error) {
	if len(data) != CredentialsWireSize {
		return LinkCredentials{}, fmt.Errorf("credentials: expected %d bytes, got %d", CredentialsWireSize, len(data))
	}
	return LinkCredentials{
		SSID:     trimFixedString(data[0:32]),
		Password: trimFixedString(data[32:96]),
	}, nil
}

// Masked returns a copy with the secret masked per §4.7 GetLinkConfig:
// the first three characters of the stored secret, followed by "***". An
// empty stored secret stays empty.
func (c LinkCredentials) Masked() LinkCredentials {
	if c.Password == "" {
		return LinkCredentials{SSID: c.SSID, Password: ""}
	}
	n := 3
	if len(c.Password) < n {
		n = len(c.Password)
	}
	return LinkCredentials{SSID: c.SSID, Password: c.Password[:n] + "***"}
}

// fixedString zero-pads (or truncates) s into an n-byte UTF-8 field.
func fixedString(s string, n int) []byte {
	b := make([]byte, n)
	copy(b, s)
	return b
}

// trimFixedString trims trailing NUL padding from a fixed-width field.
func trimFixedString(b []byte) string {
	i := bytes.IndexByte(b, 0)
	if i < 0 {
		return string(b)
	}
	return string(b[:i])
}
