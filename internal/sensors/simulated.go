package sensors

import (
	"context"
	"math/rand"
)

// Simulated returns an Adapter producing a base value with bounded random
// jitter, standing in for a register-level driver on hosts with no sensor
// hardware attached. Chip-level access is out of scope for this module;
// the teacher's own simulator commands (weather-station-simulator,
// davis-emulator) follow the same synthetic-source-in-place-of-hardware
// shape.
func Simulated(base, jitter float32) Adapter {
	return ReadFunc(func(ctx context.Context) (float32, error) {
		offset := (rand.Float32()*2 - 1) * jitter
		return base + offset, nil
	})
}
