// slicefloor minimizes the bounding area of slicing floorplans by simulated
// annealing over normalized Polish expressions.
//
//	slicefloor generate -out problem.txt
//	slicefloor import -in modules.csv -out problem.txt
//	slicefloor solve -problem problem.txt -pdf report.pdf -dxf plan.dxf -xlsx runs.xlsx
//	slicefloor config -out ~/.slicefloor/config.json
//
// Every subcommand accepts -config; SLICEFLOOR_* environment variables
// override the file.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			slog.Error("slicefloor failed", "error", err)
		}
		os.Exit(1)
	}
}

type command struct {
	name  string
	usage string
	run   func(args []string, stdout, stderr io.Writer) error
}

var commands = []command{
	{"generate", "cut a random rectangle and scramble its expression", runGenerate},
	{"import", "build a problem from a CSV, Excel or DXF module list", runImport},
	{"solve", "anneal a problem and export the floorplan", runSolve},
	{"config", "write the effective configuration as JSON", runConfig},
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		usage(stderr)
		return flag.ErrHelp
	}
	for _, c := range commands {
		if c.name == args[0] {
			return c.run(args[1:], stdout, stderr)
		}
	}
	usage(stderr)
	return fmt.Errorf("unknown command %q", args[0])
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: slicefloor <command> [flags]")
	fmt.Fprintln(w)
	for _, c := range commands {
		fmt.Fprintf(w, "  %-9s %s\n", c.name, c.usage)
	}
}
