package netlist

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	core "github.com/OpenTraceLab/OpenTraceEDA/pkg/netlist"
	"github.com/OpenTraceLab/OpenTraceEDA/pkg/parts"
)

func comp(name, value string) *core.Component {
	return &core.Component{
		Name:       name,
		Value:      value,
		Properties: map[string]string{"footprint": "Resistor_SMD:R_0805_2012Metric"},
	}
}

func sampleNets() []*core.Net {
	r1 := comp("R1", "10kΩ")
	r2 := comp("R2", "4.7kΩ")
	return []*core.Net{
		{Name: "VOUT", Vertices: []core.NetVertex{
			{Component: r1, Pin: 2}, {Component: r2, Pin: 1},
		}},
		{Name: "GND", Vertices: []core.NetVertex{
			{Component: r2, Pin: 2},
		}},
		{Name: "VIN", Vertices: []core.NetVertex{
			{Component: r1, Pin: 1},
		}},
	}
}

func TestExportCanonicalOrder(t *testing.T) {
	out, err := Export(sampleNets(), Meta{Source: "divider", Tool: "oteda"})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	// Nets are sorted by name before codes are assigned.
	for _, want := range []string{
		"(net (code 1) (name GND)",
		"(net (code 2) (name VIN)",
		"(net (code 3) (name VOUT)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	// Components likewise, with positional tstamps.
	r1 := strings.Index(out, "(ref R1)")
	r2 := strings.Index(out, "(ref R2)")
	if r1 < 0 || r2 < 0 || r1 > r2 {
		t.Fatalf("components out of order:\n%s", out)
	}
	if !strings.Contains(out, "(tstamp 1)") || !strings.Contains(out, "(tstamp 2)") {
		t.Fatalf("positional tstamps missing:\n%s", out)
	}
}

func TestExportDeterministic(t *testing.T) {
	nets := sampleNets()
	a, err := Export(nets, Meta{})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	// Reversed input order must not change the output.
	rev := []*core.Net{nets[2], nets[1], nets[0]}
	b, err := Export(rev, Meta{})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if a != b {
		t.Fatalf("export depends on input order:\n%s\n%s", a, b)
	}
}

func TestExportPrunesEmptyEntries(t *testing.T) {
	out, err := Export(sampleNets(), Meta{})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	// No component carries a datasheet, so the pruned output has none, and
	// the empty libsource/sheetpath boilerplate collapses too.
	for _, gone := range []string{"datasheet", "libsource", "sheetpath", "design"} {
		if strings.Contains(out, gone) {
			t.Fatalf("empty %s entry survived pruning:\n%s", gone, out)
		}
	}
	if !strings.Contains(out, "(version D)") {
		t.Fatalf("version missing:\n%s", out)
	}
}

func TestExportMetaAndFields(t *testing.T) {
	nets := sampleNets()
	nets[0].Vertices[0].Component.Properties["datasheet"] = "https://example.com/r.pdf"
	nets[0].Vertices[0].Component.Properties["Tolerance"] = "1 %"

	out, err := Export(nets, Meta{
		Source:   "divider.sch",
		Tool:     "oteda 0.9.0",
		Title:    "Divider",
		Comments: []string{"first", "second"},
	})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	for _, want := range []string{
		"(source divider.sch)",
		`(tool "oteda 0.9.0")`,
		"(title Divider)",
		"(comment (number 1) (value first))",
		"(comment (number 2) (value second))",
		"(datasheet https://example.com/r.pdf)",
		`(field (name Tolerance) "1 %")`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestExportRejectsDuplicates(t *testing.T) {
	t.Run("component refs", func(t *testing.T) {
		nets := []*core.Net{{Name: "N", Vertices: []core.NetVertex{
			{Component: comp("R1", "1k"), Pin: 1},
			{Component: comp("R1", "2k"), Pin: 2},
		}}}
		if _, err := Export(nets, Meta{}); err == nil {
			t.Fatalf("expected duplicate ref error")
		}
	})
	t.Run("net names", func(t *testing.T) {
		r := comp("R1", "1k")
		nets := []*core.Net{
			{Name: "N", Vertices: []core.NetVertex{{Component: r, Pin: 1}}},
			{Name: "N", Vertices: []core.NetVertex{{Component: r, Pin: 2}}},
		}
		if _, err := Export(nets, Meta{}); err == nil {
			t.Fatalf("expected duplicate net name error")
		}
	})
	t.Run("unnamed net", func(t *testing.T) {
		nets := []*core.Net{{Vertices: []core.NetVertex{{Component: comp("R1", "1k"), Pin: 1}}}}
		if _, err := Export(nets, Meta{}); !errors.Is(err, core.ErrNoName) {
			t.Fatalf("expected ErrNoName")
		}
	})
	t.Run("missing footprint", func(t *testing.T) {
		bare := &core.Component{Name: "R1", Value: "1k"}
		nets := []*core.Net{{Name: "N", Vertices: []core.NetVertex{{Component: bare, Pin: 1}}}}
		if _, err := Export(nets, Meta{}); err == nil {
			t.Fatalf("expected missing footprint error")
		}
	})
}

func TestImportRebuildsNets(t *testing.T) {
	out, err := Export(sampleNets(), Meta{Source: "divider"})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	nets, err := Import(out)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	gotNames := make([]string, len(nets))
	for i, n := range nets {
		gotNames[i] = n.Name
	}
	if diff := cmp.Diff([]string{"GND", "VIN", "VOUT"}, gotNames); diff != "" {
		t.Fatalf("net names mismatch (-want +got):\n%s", diff)
	}

	vout := nets[2]
	if len(vout.Vertices) != 2 {
		t.Fatalf("VOUT members = %d, want 2", len(vout.Vertices))
	}
	r1 := vout.Vertices[0].Component
	if r1.Name != "R1" || r1.Value != "10kΩ" {
		t.Fatalf("component = %+v", r1)
	}
	if r1.Properties["footprint"] != "Resistor_SMD:R_0805_2012Metric" {
		t.Fatalf("footprint lost: %v", r1.Properties)
	}

	// The same ref in different nets must resolve to one component.
	for _, net := range nets {
		for _, v := range net.Vertices {
			if v.Component.Name == "R1" && v.Component != r1 {
				t.Fatalf("ref R1 rebuilt as distinct components")
			}
		}
	}
}

func TestImportUnknownRef(t *testing.T) {
	text := `(export (version D) ` +
		`(components (comp (ref R1) (value 1k) (footprint F:P) (tstamp 1))) ` +
		`(nets (net (code 1) (name VIN) (node (ref R9) (pin 1)))))`
	_, err := Import(text)
	if !errors.Is(err, core.ErrStructural) {
		t.Fatalf("expected ErrStructural, got %v", err)
	}
	if !strings.Contains(err.Error(), "R9") {
		t.Fatalf("error does not name the ref: %v", err)
	}
}

func TestImportMalformed(t *testing.T) {
	for _, tc := range []struct{ name, in string }{
		{"no export", "(netlist (version D))"},
		{"net without name", `(export (nets (net (code 1) (node (ref R1) (pin 1)))))`},
		{"bad pin", `(export (components (comp (ref R1) (footprint F:P))) ` +
			`(nets (net (code 1) (name N) (node (ref R1) (pin x)))))`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Import(tc.in); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestExportSortsNetNodes(t *testing.T) {
	r1 := comp("R1", "10kΩ")
	r2 := comp("R2", "4.7kΩ")
	nets := []*core.Net{{Name: "VOUT", Vertices: []core.NetVertex{
		{Component: r2, Pin: 1},
		{Component: r1, Pin: 2},
		{Component: r1, Pin: 1},
	}}}

	out, err := Export(nets, Meta{})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	want := "(net (code 1) (name VOUT) (node (ref R1) (pin 1)) (node (ref R1) (pin 2)) (node (ref R2) (pin 1)))"
	if !strings.Contains(out, want) {
		t.Fatalf("nodes not sorted by ref then pin:\n%s", out)
	}

	// An imported file with shuffled nodes must canonicalize to the same
	// text as the pre-sorted equivalent.
	shuffled := `(export (version D)
	  (components
	    (comp (ref R1) (value 10k) (footprint F:P) (tstamp 1))
	    (comp (ref R2) (value 4.7k) (footprint F:P) (tstamp 2)))
	  (nets (net (code 1) (name VOUT) (node (ref R2) (pin 1)) (node (ref R1) (pin 2)))))`
	sorted := `(export (version D)
	  (components
	    (comp (ref R1) (value 10k) (footprint F:P) (tstamp 1))
	    (comp (ref R2) (value 4.7k) (footprint F:P) (tstamp 2)))
	  (nets (net (code 1) (name VOUT) (node (ref R1) (pin 2)) (node (ref R2) (pin 1)))))`
	a, err := Canonicalize(shuffled)
	if err != nil {
		t.Fatalf("Canonicalize failed: %v", err)
	}
	b, err := Canonicalize(sorted)
	if err != nil {
		t.Fatalf("Canonicalize failed: %v", err)
	}
	if diff := cmp.Diff(b, a); diff != "" {
		t.Fatalf("node order leaked into canonical form (-sorted +shuffled):\n%s", diff)
	}
	if !strings.Contains(a, "(node (ref R1) (pin 2)) (node (ref R2) (pin 1))") {
		t.Fatalf("canonical form not node-sorted:\n%s", a)
	}
}

func TestCanonicalizeStable(t *testing.T) {
	// Hand-written layout with shuffled order and noise whitespace.
	messy := `(export (version D)
	  (components
	    (comp (ref R2) (value 4.7k) (footprint F:P) (tstamp 77))
	    (comp (ref R1) (value 10k) (footprint F:P) (tstamp 13)))
	  (nets
	    (net (code 9) (name VOUT) (node (ref R2) (pin 1)) (node (ref R1) (pin 2)))
	    (net (code 4) (name GND) (node (ref R2) (pin 2)))))`

	once, err := Canonicalize(messy)
	if err != nil {
		t.Fatalf("Canonicalize failed: %v", err)
	}
	twice, err := Canonicalize(once)
	if err != nil {
		t.Fatalf("Canonicalize failed: %v", err)
	}
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Fatalf("canonical form not a fixed point (-once +twice):\n%s", diff)
	}
	if !strings.Contains(once, "(net (code 1) (name GND)") {
		t.Fatalf("codes not reassigned canonically:\n%s", once)
	}
	if strings.Index(once, "(ref R1)") > strings.Index(once, "(ref R2)") {
		t.Fatalf("components not re-sorted:\n%s", once)
	}
}

func TestExportParallelFallbackNets(t *testing.T) {
	// Two disjoint nets between the same pair of real components: the
	// fallback names collide and get ordinal suffixes, so the export still
	// succeeds with two distinct nets.
	a := core.NewNode("C3", true, "100nF")
	a.Properties = map[string]string{"footprint": "F:P"}
	b := core.NewNode("R7", true, "1kΩ")
	b.Properties = map[string]string{"footprint": "F:P"}
	a.AddEdge(1, b, 2)
	a.AddEdge(2, b, 1)

	nets, err := core.T2FromT1([]*core.Node{a, b})
	if err != nil {
		t.Fatalf("T2FromT1 failed: %v", err)
	}
	out, err := Export(nets, Meta{})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	for _, want := range []string{
		"(net (code 1) (name C3-R7@0)",
		"(net (code 2) (name C3-R7@1)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCompileEndToEnd(t *testing.T) {
	vin := parts.Rail("VIN")
	gnd := parts.Rail("GND")
	r := parts.WithFootprint(parts.Resistor("10kΩ"), "Resistor_SMD:R_0805_2012Metric")
	c := parts.WithFootprint(parts.Capacitor("100nF"), "Capacitor_SMD:C_0805_2012Metric")
	if err := parts.Terminal(vin).ConnectVia(r, parts.Terminal(gnd)); err != nil {
		t.Fatalf("ConnectVia failed: %v", err)
	}
	if err := parts.Terminal(vin).ConnectVia(c, parts.Terminal(gnd)); err != nil {
		t.Fatalf("ConnectVia failed: %v", err)
	}

	out, err := Compile(Meta{Source: "rc"}, vin, gnd, r, c)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	for _, want := range []string{
		"(source rc)",
		"(ref Capacitor.100nF)",
		"(ref Resistor.10kΩ)",
		"(net (code 1) (name GND)",
		"(net (code 2) (name VIN)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}

	// The compiled text must parse back to the same nets it came from.
	nets, err := Import(out)
	if err != nil {
		t.Fatalf("Import of compiled output failed: %v", err)
	}
	if len(nets) != 2 {
		t.Fatalf("net count = %d, want 2", len(nets))
	}
}
