// Package link implements the link adapter (C8): a portable stand-in for
// the BLE GATT transport, built on gnet.EventHandler over TCP (§9 REDESIGN
// FLAGS: "avoid ISR-specific wake primitives in the portable layer"). Five
// logical endpoints are multiplexed over one connection with a 1-byte
// endpoint-id prefix, mirroring the five GATT characteristics of §4.8/§6.
package link

import "github.com/google/uuid"

// Endpoint identifies one of the five logical characteristics multiplexed
// over a single connection.
type Endpoint uint8

const (
	EndpointSample      Endpoint = 0x01 // read+notify: latest composite sample
	EndpointStoreStatus Endpoint = 0x02 // read: ring-store occupancy
	EndpointCommand     Endpoint = 0x03 // write: protocol engine command frames
	EndpointResponse    Endpoint = 0x04 // read+notify: protocol engine responses
	EndpointBulk        Endpoint = 0x05 // read+write+notify: bulk history export
)

// ServiceUUID is the primary 128-bit service UUID advertised by the link
// (§6: "must be preserved bit-exact"). Fixed for this implementation since
// no upstream source UUID was retrievable; treated as this build's
// compatibility surface.
var ServiceUUID = uuid.MustParse("7a5f9c10-7b3e-4b1a-9c2d-1e6f8a4d2b01")

// CharacteristicUUIDs maps each endpoint to its characteristic UUID.
var CharacteristicUUIDs = map[Endpoint]uuid.UUID{
	EndpointSample:      uuid.MustParse("7a5f9c10-7b3e-4b1a-9c2d-1e6f8a4d2b02"),
	EndpointStoreStatus: uuid.MustParse("7a5f9c10-7b3e-4b1a-9c2d-1e6f8a4d2b03"),
	EndpointCommand:     uuid.MustParse("7a5f9c10-7b3e-4b1a-9c2d-1e6f8a4d2b04"),
	EndpointResponse:    uuid.MustParse("7a5f9c10-7b3e-4b1a-9c2d-1e6f8a4d2b05"),
	EndpointBulk:        uuid.MustParse("7a5f9c10-7b3e-4b1a-9c2d-1e6f8a4d2b06"),
}

// DeviceName builds the advertised device name per §6:
// "PlantMonitor_<HWVER2>_<LAST4HEXOFMAC>".
func DeviceName(hardwareVersion uint8, macLast4Hex string) string {
	return "PlantMonitor_" + pad2(hardwareVersion) + "_" + macLast4Hex
}

func pad2(v uint8) string {
	const digits = "0123456789"
	tens := v / 10 % 10
	ones := v % 10
	return string([]byte{digits[tens], digits[ones]})
}
