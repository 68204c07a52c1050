// Package indicator implements the indicator driver (C9): mapping the
// decision engine's classification to a single LED colour, either from a
// fixed discrete palette or, on capacitive hardware, a continuous
// moisture-to-colour gradient (§4.9).
package indicator

import (
	"github.com/rx178nwj/SoilMonitorRev2/internal/decision"
	"github.com/rx178nwj/SoilMonitorRev2/internal/model"
)

// Color is a simple RGB triple, device-agnostic enough to drive either an
// addressable LED strip or a three-channel PWM indicator.
type Color struct {
	R, G, B uint8
}

var (
	Red    = Color{R: 255}
	Blue   = Color{B: 255}
	Yellow = Color{R: 255, G: 255}
	Orange = Color{R: 255, G: 140}
	Green  = Color{G: 255}
	White  = Color{R: 255, G: 255, B: 255}
	Purple = Color{R: 160, B: 255}
	Off    = Color{}
)

// discretePalette assigns one preset colour per classification state. Off
// is reserved for an explicitly disabled indicator rather than any state.
var discretePalette = map[decision.State]Color{
	decision.Error:             Red,
	decision.TempTooHigh:       Orange,
	decision.TempTooLow:        Purple,
	decision.NeedsWatering:     Yellow,
	decision.SoilDry:           White,
	decision.SoilWet:           Blue,
	decision.WateringCompleted: Green,
}

// gradientStops is the five-stop warm-to-cool ramp (§4.9): orange at 0%
// humidity (driest), blue at 100% (wettest).
var gradientStops = []Color{Orange, Yellow, Green, {R: 0, G: 255, B: 255}, Blue}

// Driver resolves a classification into the colour to display, selecting
// between the discrete and gradient schemes by hardware capability.
type Driver struct {
	capacitive bool
}

// New constructs a Driver. capacitive selects the gradient scheme for
// non-error, non-temperature-limit states; it is ignored otherwise.
func New(capacitive bool) *Driver {
	return &Driver{capacitive: capacitive}
}

// Resolve returns the colour for the given state. profile and latest are
// only consulted by the gradient scheme, and only when state is one of the
// moisture states (SoilDry, SoilWet, NeedsWatering, WateringCompleted).
func (d *Driver) Resolve(state decision.State, profile model.Profile, latest model.Sample) Color {
	if !d.capacitive || isDiscreteOnly(state) {
		if c, ok := discretePalette[state]; ok {
			return c
		}
		return Off
	}
	return gradientColor(profile, latest)
}

func isDiscreteOnly(state decision.State) bool {
	switch state {
	case decision.Error, decision.TempTooHigh, decision.TempTooLow:
		return true
	default:
		return false
	}
}

// gradientColor maps the current soil moisture to a humidity percentage
// (dry reference → 0%, wet reference → 100%) and interpolates through the
// five-stop ramp.
func gradientColor(profile model.Profile, latest model.Sample) Color {
	span := profile.DryThreshold - profile.WetThreshold
	if span <= 0 {
		return gradientStops[0]
	}
	humidity := (profile.DryThreshold - latest.SoilMoisture) / span
	if humidity < 0 {
		humidity = 0
	}
	if humidity > 1 {
		humidity = 1
	}
	return interpolate(gradientStops, humidity)
}

// interpolate walks a sequence of evenly-spaced colour stops and linearly
// blends between the two stops bracketing t in [0, 1].
func interpolate(stops []Color, t float32) Color {
	if len(stops) == 1 {
		return stops[0]
	}
	segments := len(stops) - 1
	scaled := t * float32(segments)
	idx := int(scaled)
	if idx >= segments {
		return stops[segments]
	}
	frac := scaled - float32(idx)
	a, b := stops[idx], stops[idx+1]
	return Color{
		R: lerp(a.R, b.R, frac),
		G: lerp(a.G, b.G, frac),
		B: lerp(a.B, b.B, frac),
	}
}

func lerp(a, b uint8, t float32) uint8 {
	return uint8(float32(a) + (float32(b)-float32(a))*t)
}
