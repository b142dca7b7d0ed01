// sexp-check cross-checks generated netlist text against an independent
// s-expression parser. Useful when a netlist renders fine here but a
// downstream tool rejects it: if chewxy/sexp and our parser disagree on
// structure, the generator is suspect.
package main

import (
	"fmt"
	"os"

	"github.com/chewxy/sexp"

	ours "github.com/OpenTraceLab/OpenTraceEDA/pkg/kicad/sexp"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: sexp-check <netlist_file>")
		os.Exit(1)
	}

	filename := os.Args[1]
	data, err := os.ReadFile(filename)
	if err != nil {
		panic(err)
	}
	text := string(data)
	fmt.Printf("File size: %d bytes\n", len(data))

	fmt.Println("\nCheck 1: independent parse with chewxy/sexp...")
	sexps, err := sexp.ParseString(text)
	if err != nil {
		fmt.Printf("  Error: %v\n", err)
	} else {
		fmt.Printf("  Success! Parsed %d s-expressions\n", len(sexps))
		for i, s := range sexps {
			if i >= 3 {
				break
			}
			fmt.Printf("  Sexp #%d leaf: %v\n", i+1, s.IsLeaf())
		}
	}

	fmt.Println("\nCheck 2: our parser...")
	rec, err := ours.Parse(text)
	if err != nil {
		fmt.Printf("  Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("  Success! %d top-level entries\n", len(rec.Pairs))

	fmt.Println("\nCheck 3: round trip stability...")
	once := ours.Gen(rec)
	again, err := ours.Parse(once)
	if err != nil {
		fmt.Printf("  Re-parse error: %v\n", err)
		os.Exit(1)
	}
	twice := ours.Gen(again)
	if once != twice {
		fmt.Println("  MISMATCH: Gen(Parse(Gen(x))) != Gen(x)")
		fmt.Printf("  once:  %s\n", clip(once))
		fmt.Printf("  twice: %s\n", clip(twice))
		os.Exit(1)
	}
	fmt.Printf("  Stable at %d bytes\n", len(once))
}

func clip(s string) string {
	if len(s) <= 200 {
		return s
	}
	return s[:200] + "..."
}
