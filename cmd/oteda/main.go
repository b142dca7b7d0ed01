package main

import "github.com/OpenTraceLab/OpenTraceEDA/cmd/oteda/cmd"

func main() {
	cmd.Execute()
}
