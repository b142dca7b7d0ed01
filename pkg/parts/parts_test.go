package parts

import (
	"testing"

	"github.com/OpenTraceLab/OpenTraceEDA/pkg/design"
	"github.com/OpenTraceLab/OpenTraceEDA/pkg/trait"
)

func TestTwoTerminalParts(t *testing.T) {
	for _, tc := range []struct {
		name string
		comp *design.Component
	}{
		{"resistor", Resistor("100Ω")},
		{"capacitor", Capacitor("100nF")},
		{"switch", Switch()},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if _, ok := tc.comp.InterfaceNamed("1"); !ok {
				t.Fatalf("terminal 1 missing")
			}
			if _, ok := tc.comp.InterfaceNamed("2"); !ok {
				t.Fatalf("terminal 2 missing")
			}
			if !tc.comp.Has(design.CanBridge) {
				t.Fatalf("two-terminal part must be bridgeable")
			}
			if !tc.comp.Has(design.HasPinMap) {
				t.Fatalf("pin map missing")
			}
			if tc.comp.Has(design.HasFootprint) {
				t.Fatalf("bare part must not carry a footprint")
			}
		})
	}
}

func TestResistorPinNumbering(t *testing.T) {
	r := Resistor("1kΩ")
	pmp, err := trait.GetAs[design.PinMapProvider](&r.Holder, design.HasPinMap)
	if err != nil {
		t.Fatalf("GetAs failed: %v", err)
	}
	pm, err := pmp.PinMap()
	if err != nil {
		t.Fatalf("PinMap failed: %v", err)
	}
	one, _ := r.InterfaceNamed("1")
	two, _ := r.InterfaceNamed("2")
	if pm[1] != one || pm[2] != two {
		t.Fatalf("pins not numbered in terminal order")
	}
}

func TestRailIsVirtualAndNamed(t *testing.T) {
	gnd := Rail("GND")
	if gnd.Has(design.HasFootprint) {
		t.Fatalf("rail must not carry a footprint")
	}
	if !gnd.Has(design.HasPinMap) {
		t.Fatalf("rail needs a pin map to join connectivity")
	}
	n, err := trait.GetAs[design.NameOverrider](&gnd.Holder, design.HasOverriddenName)
	if err != nil {
		t.Fatalf("GetAs failed: %v", err)
	}
	if n.OverriddenName() != "GND" {
		t.Fatalf("rail name = %q, want GND", n.OverriddenName())
	}
	if Terminal(gnd).Owner() != gnd {
		t.Fatalf("rail terminal owner wrong")
	}
}

func TestBatteryPins(t *testing.T) {
	bat := Battery("VBAT")
	pmp, err := trait.GetAs[design.PinMapProvider](&bat.Holder, design.HasPinMap)
	if err != nil {
		t.Fatalf("GetAs failed: %v", err)
	}
	pm, err := pmp.PinMap()
	if err != nil {
		t.Fatalf("PinMap failed: %v", err)
	}
	plus, _ := bat.InterfaceNamed("plus")
	minus, _ := bat.InterfaceNamed("minus")
	if pm[1] != plus || pm[2] != minus {
		t.Fatalf("battery pin map wrong")
	}
}

func TestWithFootprint(t *testing.T) {
	r := WithFootprint(Resistor("10kΩ"), "Resistor_SMD:R_0805_2012Metric")
	if !r.Has(design.HasFootprint) {
		t.Fatalf("footprint trait missing")
	}
	fp, err := trait.GetAs[design.FootprintProvider](&r.Holder, design.HasFootprint)
	if err != nil {
		t.Fatalf("GetAs failed: %v", err)
	}
	id, err := trait.GetAs[design.KicadFootprintNamer](&fp.Footprint().Holder, design.HasKicadFootprint)
	if err != nil {
		t.Fatalf("footprint id missing: %v", err)
	}
	if id.KicadFootprint() != "Resistor_SMD:R_0805_2012Metric" {
		t.Fatalf("footprint id = %q", id.KicadFootprint())
	}
}
