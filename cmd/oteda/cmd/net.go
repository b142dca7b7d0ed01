package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	kicad "github.com/OpenTraceLab/OpenTraceEDA/pkg/kicad/netlist"
	"github.com/OpenTraceLab/OpenTraceEDA/pkg/netlist"
	"github.com/spf13/cobra"
)

var netCmd = &cobra.Command{
	Use:   "net",
	Short: "KiCad netlist file operations",
	Long:  `Commands for working with KiCad netlist files (.net)`,
}

var netInfoCmd = &cobra.Command{
	Use:   "info <netlist_file> [net_name]",
	Short: "Show netlist information",
	Long: `Display information about a KiCad netlist file.

Without net argument: shows netlist summary
With net argument: shows the members of that specific net`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runNetInfo,
}

var netCanonCmd = &cobra.Command{
	Use:   "canon <netlist_file>",
	Short: "Print the canonical form of a netlist",
	Long: `Parse a netlist and re-export it in canonical form: components and
nets sorted by name, positional tstamps and net codes, empty entries
pruned. Two logically identical netlists canonicalize to identical text.`,
	Args: cobra.ExactArgs(1),
	RunE: runNetCanon,
}

var netRoundtripCmd = &cobra.Command{
	Use:   "roundtrip <netlist_file>",
	Short: "Validate the netlist through a graph round trip",
	Long: `Import a netlist, rebuild the connectivity graph from it, resolve
the graph back into nets, and compare the re-export with the canonical
form of the input. Large nets pass through a synthesized hub node, so a
matching round trip means the graph conversion preserved membership.`,
	Args: cobra.ExactArgs(1),
	RunE: runNetRoundtrip,
}

func init() {
	rootCmd.AddCommand(netCmd)
	netCmd.AddCommand(netInfoCmd)
	netCmd.AddCommand(netCanonCmd)
	netCmd.AddCommand(netRoundtripCmd)
}

func importFile(filename string) ([]*netlist.Net, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	nets, err := kicad.Import(string(data))
	if err != nil {
		return nil, fmt.Errorf("error parsing netlist: %w", err)
	}
	return nets, nil
}

func runNetInfo(cmd *cobra.Command, args []string) error {
	nets, err := importFile(args[0])
	if err != nil {
		return err
	}

	if len(args) >= 2 {
		return showNetDetails(nets, args[1])
	}

	showNetSummary(nets, args[0])
	return nil
}

func showNetSummary(nets []*netlist.Net, filename string) {
	comps := make(map[string]bool)
	nodes := 0
	for _, net := range nets {
		nodes += len(net.Vertices)
		for _, v := range net.Vertices {
			comps[v.Component.Name] = true
		}
	}

	fmt.Printf("Netlist: %s\n", filename)
	fmt.Println()
	fmt.Println("Statistics:")
	fmt.Printf("  Components: %d\n", len(comps))
	fmt.Printf("  Nets: %d\n", len(nets))
	fmt.Printf("  Nodes: %d\n", nodes)
	fmt.Println()

	if len(nets) == 0 {
		return
	}
	fmt.Println("Nets:")
	ordered := make([]*netlist.Net, len(nets))
	copy(ordered, nets)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Name < ordered[j].Name })
	for _, net := range ordered {
		fmt.Printf("  %s (%d nodes)\n", net.Name, len(net.Vertices))
	}
}

func showNetDetails(nets []*netlist.Net, name string) error {
	for _, net := range nets {
		if net.Name != name {
			continue
		}
		fmt.Printf("Net: %s\n", net.Name)
		for _, v := range net.Vertices {
			member := fmt.Sprintf("%s pin %d", v.Component.Name, v.Pin)
			if verbose && v.Component.Value != "" {
				member += fmt.Sprintf(" (%s)", v.Component.Value)
			}
			fmt.Printf("  %s\n", member)
		}
		return nil
	}
	return fmt.Errorf("net %q not found", name)
}

func runNetCanon(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	out, err := kicad.Canonicalize(string(data))
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

func runNetRoundtrip(cmd *cobra.Command, args []string) error {
	nets, err := importFile(args[0])
	if err != nil {
		return err
	}

	nodes, err := netlist.T1FromT2(nets)
	if err != nil {
		return fmt.Errorf("graph conversion failed: %w", err)
	}
	back, err := netlist.T2FromT1(nodes)
	if err != nil {
		return fmt.Errorf("net resolution failed: %w", err)
	}

	// Two-node nets lose their label through the graph (their name is
	// re-derived from the member refs), so compare memberships, not text.
	want := membership(nets)
	got := membership(back)
	if got != want {
		if verbose {
			fmt.Printf("want: %s\n", want)
			fmt.Printf("got:  %s\n", got)
		}
		return fmt.Errorf("round trip diverged for %s", args[0])
	}
	fmt.Printf("round trip ok: %d nets, %d nodes\n", len(nets), nodeCount(nets))
	return nil
}

// membership is a name-independent signature of net membership: per net the
// sorted ref.pin members, nets sorted among themselves.
func membership(nets []*netlist.Net) string {
	groups := make([]string, 0, len(nets))
	for _, net := range nets {
		members := make([]string, 0, len(net.Vertices))
		for _, v := range net.Vertices {
			members = append(members, fmt.Sprintf("%s.%d", v.Component.Name, v.Pin))
		}
		sort.Strings(members)
		groups = append(groups, strings.Join(members, ","))
	}
	sort.Strings(groups)
	return strings.Join(groups, " ")
}

func nodeCount(nets []*netlist.Net) int {
	n := 0
	for _, net := range nets {
		n += len(net.Vertices)
	}
	return n
}
