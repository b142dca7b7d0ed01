package netlist

import (
	"github.com/OpenTraceLab/OpenTraceEDA/pkg/design"
	core "github.com/OpenTraceLab/OpenTraceEDA/pkg/netlist"
)

// Compile runs the full pipeline for a design tree: wrap the components in
// graph nodes, resolve the connectivity into nets, and render KiCad netlist
// text.
func Compile(meta Meta, roots ...*design.Component) (string, error) {
	nodes, err := core.Build(roots...)
	if err != nil {
		return "", err
	}
	nets, err := core.T2FromT1(nodes)
	if err != nil {
		return "", err
	}
	return Export(nets, meta)
}

// Canonicalize re-exports parsed netlist text, producing the canonical form:
// sorted components and nets, positional tstamps and codes, pruned empties.
// Header metadata is not preserved.
func Canonicalize(text string) (string, error) {
	nets, err := Import(text)
	if err != nil {
		return "", err
	}
	return Export(nets, Meta{})
}
