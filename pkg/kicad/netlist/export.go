// Package netlist translates the net-indexed IR to and from the KiCad
// netlist wire format. Export produces canonical text: components and nets
// are sorted by name before tstamps and net codes are assigned, so two
// logically identical designs serialize byte-identically.
package netlist

import (
	"fmt"
	"sort"

	"github.com/OpenTraceLab/OpenTraceEDA/pkg/kicad/sexp"
	core "github.com/OpenTraceLab/OpenTraceEDA/pkg/netlist"
)

// Meta carries the design header of an exported netlist. Zero-value fields
// prune away, so the empty Meta yields a minimal export record.
type Meta struct {
	Source string
	Date   string
	Tool   string

	SheetNumber  string
	SheetName    string
	SheetTstamps string

	Title            string
	Company          string
	Rev              string
	TitleBlockDate   string
	TitleBlockSource string
	Comments         []string
}

// Export renders the nets as KiCad netlist text. Component refs and net
// names must be unique within one file; tstamps and net codes are 1-based
// position counters assigned after the canonical sort. Net nodes are
// emitted sorted by ref then pin regardless of input order, so imported
// files canonicalize the same as compiled ones.
func Export(nets []*core.Net, meta Meta) (string, error) {
	comps, err := collectComponents(nets)
	if err != nil {
		return "", err
	}

	compsRec := sexp.NewRecord()
	for i, comp := range comps {
		rec, err := genComp(comp, i+1)
		if err != nil {
			return "", err
		}
		compsRec.Add("comp", rec)
	}

	ordered := make([]*core.Net, len(nets))
	copy(ordered, nets)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Name < ordered[j].Name })

	netsRec := sexp.NewRecord()
	seenNets := make(map[string]bool, len(ordered))
	for i, net := range ordered {
		if net.Name == "" {
			return "", fmt.Errorf("%w: unnamed net", core.ErrNoName)
		}
		if seenNets[net.Name] {
			return "", fmt.Errorf("kicad: duplicate net name %q", net.Name)
		}
		seenNets[net.Name] = true
		netsRec.Add("net", genNet(i+1, net))
	}

	doc := sexp.NewRecord().Add("export", sexp.NewRecord().
		Add("version", sexp.Str("D")).
		Add("design", genDesign(meta)).
		Add("components", compsRec).
		Add("libparts", sexp.NewRecord()).
		Add("libraries", sexp.NewRecord()).
		Add("nets", netsRec))

	pruned := sexp.Prune(doc)
	if pruned == nil {
		return "", fmt.Errorf("kicad: netlist pruned to nothing")
	}
	return sexp.Gen(pruned), nil
}

// collectComponents gathers the distinct components referenced by the nets,
// sorted by name. Two distinct components sharing a name cannot be emitted.
func collectComponents(nets []*core.Net) ([]*core.Component, error) {
	var comps []*core.Component
	seen := make(map[*core.Component]bool)
	byName := make(map[string]*core.Component)
	for _, net := range nets {
		for _, v := range net.Vertices {
			if seen[v.Component] {
				continue
			}
			seen[v.Component] = true
			if other, ok := byName[v.Component.Name]; ok && other != v.Component {
				return nil, fmt.Errorf("kicad: duplicate component ref %q", v.Component.Name)
			}
			byName[v.Component.Name] = v.Component
			comps = append(comps, v.Component)
		}
	}
	sort.Slice(comps, func(i, j int) bool { return comps[i].Name < comps[j].Name })
	return comps, nil
}

func genComp(c *core.Component, tstamp int) (*sexp.Record, error) {
	footprint, ok := c.Properties["footprint"]
	if !ok || footprint == "" {
		return nil, fmt.Errorf("kicad: component %q has no footprint", c.Name)
	}

	fields := sexp.NewRecord()
	for _, key := range sortedKeys(c.Properties) {
		if key == "footprint" || key == "datasheet" {
			continue
		}
		fields.Add("field", sexp.Seq{
			sexp.NewRecord().Add("name", sexp.Str(key)),
			sexp.Str(c.Properties[key]),
		})
	}

	return sexp.NewRecord().
		Add("ref", sexp.Str(c.Name)).
		Add("value", sexp.Str(c.Value)).
		Add("footprint", sexp.Str(footprint)).
		Add("datasheet", sexp.Str(c.Properties["datasheet"])).
		Add("fields", fields).
		Add("libsource", sexp.NewRecord().
			Add("lib", sexp.Str("")).
			Add("part", sexp.Str("")).
			Add("description", sexp.Str(""))).
		Add("sheetpath", sexp.NewRecord().
			Add("names", sexp.Str("")).
			Add("tstamps", sexp.Str(""))).
		Add("tstamp", sexp.Int(tstamp)), nil
}

func genNet(code int, net *core.Net) *sexp.Record {
	vertices := make([]core.NetVertex, len(net.Vertices))
	copy(vertices, net.Vertices)
	sort.Slice(vertices, func(i, j int) bool {
		a, b := vertices[i], vertices[j]
		if a.Component.Name != b.Component.Name {
			return a.Component.Name < b.Component.Name
		}
		return a.Pin < b.Pin
	})

	rec := sexp.NewRecord().
		Add("code", sexp.Int(code)).
		Add("name", sexp.Str(net.Name))
	for _, v := range vertices {
		rec.Add("node", sexp.NewRecord().
			Add("ref", sexp.Str(v.Component.Name)).
			Add("pin", sexp.Int(v.Pin)))
	}
	return rec
}

func genDesign(meta Meta) *sexp.Record {
	titleBlock := sexp.NewRecord().
		Add("title", sexp.Str(meta.Title)).
		Add("company", sexp.Str(meta.Company)).
		Add("rev", sexp.Str(meta.Rev)).
		Add("date", sexp.Str(meta.TitleBlockDate)).
		Add("source", sexp.Str(meta.TitleBlockSource))
	for i, comment := range meta.Comments {
		titleBlock.Add("comment", sexp.NewRecord().
			Add("number", sexp.Int(i+1)).
			Add("value", sexp.Str(comment)))
	}

	return sexp.NewRecord().
		Add("source", sexp.Str(meta.Source)).
		Add("date", sexp.Str(meta.Date)).
		Add("tool", sexp.Str(meta.Tool)).
		Add("sheet", sexp.NewRecord().
			Add("number", sexp.Str(meta.SheetNumber)).
			Add("name", sexp.Str(meta.SheetName)).
			Add("tstamps", sexp.Str(meta.SheetTstamps)).
			Add("title_block", titleBlock))
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
