package indicator

import (
	"testing"

	"github.com/rx178nwj/SoilMonitorRev2/internal/decision"
	"github.com/rx178nwj/SoilMonitorRev2/internal/model"
)

func testProfile() model.Profile {
	return model.Profile{DryThreshold: 2500, WetThreshold: 1000}
}

func TestDiscreteSchemeErrorIsRed(t *testing.T) {
	d := New(true)
	c := d.Resolve(decision.Error, testProfile(), model.Sample{})
	if c != Red {
		t.Fatalf("expected red for error, got %+v", c)
	}
}

func TestDiscreteSchemeUsedForNonCapacitiveHardware(t *testing.T) {
	d := New(false)
	c := d.Resolve(decision.SoilWet, testProfile(), model.Sample{SoilMoisture: 500})
	if c != Blue {
		t.Fatalf("expected discrete blue for soil wet, got %+v", c)
	}
}

func TestTemperatureLimitAlwaysDiscreteEvenOnCapacitiveHardware(t *testing.T) {
	d := New(true)
	c := d.Resolve(decision.TempTooHigh, testProfile(), model.Sample{SoilMoisture: 1750})
	if c != Orange {
		t.Fatalf("expected discrete orange for temp too high, got %+v", c)
	}
}

func TestGradientAtDryReferenceIsOrange(t *testing.T) {
	d := New(true)
	c := d.Resolve(decision.SoilDry, testProfile(), model.Sample{SoilMoisture: 2500})
	if c != Orange {
		t.Fatalf("expected orange at dry reference, got %+v", c)
	}
}

func TestGradientAtWetReferenceIsBlue(t *testing.T) {
	d := New(true)
	c := d.Resolve(decision.SoilWet, testProfile(), model.Sample{SoilMoisture: 1000})
	if c != Blue {
		t.Fatalf("expected blue at wet reference, got %+v", c)
	}
}

func TestGradientMidpointIsGreen(t *testing.T) {
	d := New(true)
	mid := testProfile()
	midMoisture := (mid.DryThreshold + mid.WetThreshold) / 2
	c := d.Resolve(decision.SoilWet, mid, model.Sample{SoilMoisture: midMoisture})
	if c != Green {
		t.Fatalf("expected green at midpoint, got %+v", c)
	}
}

func TestGradientClampsBeyondReferences(t *testing.T) {
	d := New(true)
	c := d.Resolve(decision.SoilDry, testProfile(), model.Sample{SoilMoisture: 9000})
	if c != Orange {
		t.Fatalf("expected clamp to orange beyond dry reference, got %+v", c)
	}
}
