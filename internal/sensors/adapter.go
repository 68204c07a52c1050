package sensors

import (
	"context"
	"sort"
	"time"

	"github.com/rx178nwj/SoilMonitorRev2/internal/xerrors"
)

// Adapter is the uniform read-one-sample interface every sensor exposes
// (§4.2). Register-level chip access lives behind this boundary and is out
// of scope for this module (§1).
type Adapter interface {
	// Read performs one acquisition and returns the measured value, or a
	// SensorError if the sub-sensor failed.
	Read(ctx context.Context) (float32, error)
}

// ReadFunc adapts a plain function to the Adapter interface, used by the
// simulated/test adapters below and by anything standing in for real
// chip-level drivers.
type ReadFunc func(ctx context.Context) (float32, error)

// Read implements Adapter.
func (f ReadFunc) Read(ctx context.Context) (float32, error) { return f(ctx) }

// LightAdapter implements the light-sensor sampling policy from §4.2: 5
// sequential readings 50ms apart, sorted, the lowest and highest valid
// readings discarded, and the mean of the rest returned (the middle three
// when all five succeed). Fewer than 3 valid readings
// flags the composite sample as erroneous.
type LightAdapter struct {
	Raw Adapter
}

// Read implements Adapter.
func (l *LightAdapter) Read(ctx context.Context) (float32, error) {
	const samples = 5
	vals := make([]float32, 0, samples)
	for i := 0; i < samples; i++ {
		v, err := l.Raw.Read(ctx)
		if err == nil {
			vals = append(vals, v)
		}
		if i < samples-1 {
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-time.After(50 * time.Millisecond):
			}
		}
	}
	if len(vals) < 3 {
		return 0, xerrors.ErrSensor
	}
	sort.Slice(vals, func(i, j int) bool { return vals[i] < vals[j] })
	trimmed := vals[1 : len(vals)-1]
	var sum float32
	for _, v := range trimmed {
		sum += v
	}
	return sum / float32(len(trimmed)), nil
}

// ResistiveMoistureAdapter averages 10 ADC samples 10ms apart, in
// millivolts, per §4.2.
type ResistiveMoistureAdapter struct {
	Raw Adapter
}

// Read implements Adapter.
func (m *ResistiveMoistureAdapter) Read(ctx context.Context) (float32, error) {
	const samples = 10
	var sum float32
	var n int
	for i := 0; i < samples; i++ {
		v, err := m.Raw.Read(ctx)
		if err != nil {
			return 0, err
		}
		sum += v
		n++
		if i < samples-1 {
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-time.After(10 * time.Millisecond):
			}
		}
	}
	return sum / float32(n), nil
}

// CapacitiveMoistureAdapter reads four independent channels in sequence,
// each in isolation to avoid cross-channel influence (§4.2). ReadChannels
// returns the per-channel values; Read returns their mean for callers that
// only need the aggregate.
type CapacitiveMoistureAdapter struct {
	Channels [4]Adapter
}

// ReadChannels reads all four channels independently and in sequence.
func (c *CapacitiveMoistureAdapter) ReadChannels(ctx context.Context) ([4]float32, error) {
	var out [4]float32
	for i, ch := range c.Channels {
		v, err := ch.Read(ctx)
		if err != nil {
			return out, err
		}
		out[i] = v
	}
	return out, nil
}

// Read implements Adapter, returning the mean of the four channels.
func (c *CapacitiveMoistureAdapter) Read(ctx context.Context) (float32, error) {
	chans, err := c.ReadChannels(ctx)
	if err != nil {
		return 0, err
	}
	var sum float32
	for _, v := range chans {
		sum += v
	}
	return sum / float32(len(chans)), nil
}

// SoilTemperatureAdapter reads 0-4 probes, depending on which were detected
// at boot. A probe-detection failure zeroes that slot rather than failing
// the whole sample (§4.2).
type SoilTemperatureAdapter struct {
	Probes []Adapter // length 0-4, detected at construction time
}

// ReadAll reads every detected probe, zeroing any that fail individually.
func (s *SoilTemperatureAdapter) ReadAll(ctx context.Context) [4]float32 {
	var out [4]float32
	for i := 0; i < len(s.Probes) && i < 4; i++ {
		v, err := s.Probes[i].Read(ctx)
		if err == nil {
			out[i] = v
		}
	}
	return out
}

// AirAdapter reads the combined air temperature/humidity sensor.
type AirAdapter struct {
	Temp     Adapter
	Humidity Adapter
}

// Read reads temperature and humidity, returning a sensor error if either fails.
func (a *AirAdapter) Read(ctx context.Context) (temp, humidity float32, err error) {
	temp, err = a.Temp.Read(ctx)
	if err != nil {
		return 0, 0, err
	}
	humidity, err = a.Humidity.Read(ctx)
	if err != nil {
		return 0, 0, err
	}
	return temp, humidity, nil
}
