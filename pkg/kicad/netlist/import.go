package netlist

import (
	"fmt"
	"strconv"

	"github.com/OpenTraceLab/OpenTraceEDA/pkg/kicad/sexp"
	core "github.com/OpenTraceLab/OpenTraceEDA/pkg/netlist"
)

// Import parses KiCad netlist text back into the net-indexed IR. Components
// are rebuilt from the components section; every net node must reference a
// declared ref, otherwise the import fails with a structural fault naming
// the offending ref.
func Import(text string) ([]*core.Net, error) {
	root, err := sexp.Parse(text)
	if err != nil {
		return nil, err
	}
	export, ok := root.FindRecord("export")
	if !ok {
		return nil, fmt.Errorf("kicad: missing export record")
	}

	comps, err := importComponents(export)
	if err != nil {
		return nil, err
	}

	netsRec, ok := export.FindRecord("nets")
	if !ok {
		return nil, nil
	}
	var nets []*core.Net
	for _, v := range netsRec.FindAll("net") {
		rec, ok := v.(*sexp.Record)
		if !ok {
			return nil, fmt.Errorf("kicad: malformed net entry")
		}
		net, err := importNet(rec, comps)
		if err != nil {
			return nil, err
		}
		nets = append(nets, net)
	}
	return nets, nil
}

func importComponents(export *sexp.Record) (map[string]*core.Component, error) {
	comps := make(map[string]*core.Component)
	compsRec, ok := export.FindRecord("components")
	if !ok {
		return comps, nil
	}
	for _, v := range compsRec.FindAll("comp") {
		rec, ok := v.(*sexp.Record)
		if !ok {
			return nil, fmt.Errorf("kicad: malformed comp entry")
		}
		comp, err := importComp(rec)
		if err != nil {
			return nil, err
		}
		if _, dup := comps[comp.Name]; dup {
			return nil, fmt.Errorf("kicad: duplicate component ref %q", comp.Name)
		}
		comps[comp.Name] = comp
	}
	return comps, nil
}

func importComp(rec *sexp.Record) (*core.Component, error) {
	ref, ok := scalarOf(rec, "ref")
	if !ok || ref == "" {
		return nil, fmt.Errorf("kicad: comp entry without ref")
	}
	comp := &core.Component{
		Name:       ref,
		Properties: map[string]string{},
	}
	comp.Value, _ = scalarOf(rec, "value")
	if fp, ok := scalarOf(rec, "footprint"); ok {
		comp.Properties["footprint"] = fp
	}
	if ds, ok := scalarOf(rec, "datasheet"); ok && ds != "" {
		comp.Properties["datasheet"] = ds
	}
	if fields, ok := rec.FindRecord("fields"); ok {
		for _, fv := range fields.FindAll("field") {
			name, value, err := importField(fv)
			if err != nil {
				return nil, fmt.Errorf("kicad: comp %q: %w", ref, err)
			}
			comp.Properties[name] = value
		}
	}
	return comp, nil
}

// importField unpacks a (field (name X) value) entry. The value may be
// absent after pruning.
func importField(v sexp.Node) (name, value string, err error) {
	switch fv := v.(type) {
	case *sexp.Record:
		name, ok := scalarOf(fv, "name")
		if !ok {
			return "", "", fmt.Errorf("field without name")
		}
		return name, "", nil
	case sexp.Seq:
		for _, child := range fv {
			switch c := child.(type) {
			case *sexp.Record:
				if n, ok := scalarOf(c, "name"); ok {
					name = n
				}
			default:
				if s, ok := sexp.Scalar(c); ok {
					value = s
				}
			}
		}
		if name == "" {
			return "", "", fmt.Errorf("field without name")
		}
		return name, value, nil
	default:
		return "", "", fmt.Errorf("malformed field entry")
	}
}

func importNet(rec *sexp.Record, comps map[string]*core.Component) (*core.Net, error) {
	name, ok := scalarOf(rec, "name")
	if !ok || name == "" {
		return nil, fmt.Errorf("%w: net entry without name", core.ErrNoName)
	}
	net := &core.Net{Name: name}
	for _, nv := range rec.FindAll("node") {
		node, ok := nv.(*sexp.Record)
		if !ok {
			return nil, fmt.Errorf("kicad: net %q: malformed node entry", name)
		}
		ref, ok := scalarOf(node, "ref")
		if !ok {
			return nil, fmt.Errorf("kicad: net %q: node without ref", name)
		}
		comp, ok := comps[ref]
		if !ok {
			return nil, fmt.Errorf("%w: net %q references undeclared component %q",
				core.ErrStructural, name, ref)
		}
		pinStr, ok := scalarOf(node, "pin")
		if !ok {
			return nil, fmt.Errorf("kicad: net %q: node for %q without pin", name, ref)
		}
		pin, err := strconv.Atoi(pinStr)
		if err != nil {
			return nil, fmt.Errorf("kicad: net %q: bad pin %q on %q", name, pinStr, ref)
		}
		net.Vertices = append(net.Vertices, core.NetVertex{Component: comp, Pin: pin})
	}
	return net, nil
}

func scalarOf(rec *sexp.Record, key string) (string, bool) {
	v, ok := rec.Find(key)
	if !ok {
		return "", false
	}
	return sexp.Scalar(v)
}
