package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"strings"

	"github.com/piwi3910/slicefloor/internal/config"
	"github.com/piwi3910/slicefloor/internal/engine"
	"github.com/piwi3910/slicefloor/internal/export"
	"github.com/piwi3910/slicefloor/internal/importer"
	"github.com/piwi3910/slicefloor/internal/problem"
)

// setup parses the common flags, loads the configuration and installs the
// default logger.
func setup(fs *flag.FlagSet, args []string, stderr io.Writer) (config.Config, error) {
	fs.SetOutput(stderr)
	path := fs.String("config", config.DefaultConfigPath(), "configuration file")
	if err := fs.Parse(args); err != nil {
		return config.Config{}, err
	}

	cfg, err := config.Load(*path)
	if err != nil {
		return config.Config{}, err
	}
	level, _ := cfg.Level()
	slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))
	return cfg, nil
}

// create opens path for writing, or returns stdout for "" and "-".
func create(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return f, f.Close, nil
}

func writeProblem(path string, p problem.Problem, stdout io.Writer) error {
	w, closeFn, err := create(path, stdout)
	if err != nil {
		return err
	}
	if err := problem.Write(w, p); err != nil {
		closeFn()
		return fmt.Errorf("failed to write problem: %w", err)
	}
	return closeFn()
}

func runGenerate(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	out := fs.String("out", "-", "problem output file")
	cfg, err := setup(fs, args, stderr)
	if err != nil {
		return err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	p := problem.Generate(rand.New(rand.NewSource(seed)), cfg.Width, cfg.Height, cfg.Cuts, cfg.Scramble)

	box := p.Expr.AABB(p.Rects)
	slog.Info("generated problem",
		"id", p.ID,
		"seed", seed,
		"rects", len(p.Rects),
		"optimum", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"scrambled", box.String(),
		"ratio", box.Cost()/(float64(cfg.Width)*float64(cfg.Height)))

	return writeProblem(*out, p, stdout)
}

func runImport(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	in := fs.String("in", "", "module list (.csv, .xlsx or .dxf)")
	out := fs.String("out", "-", "problem output file")
	if _, err := setup(fs, args, stderr); err != nil {
		return err
	}
	if *in == "" {
		return fmt.Errorf("import: -in is required")
	}

	result := importer.Import(*in)
	for _, w := range result.Warnings {
		slog.Warn("import", "file", *in, "warning", w)
	}
	for _, e := range result.Errors {
		slog.Error("import", "file", *in, "error", e)
	}
	if len(result.Modules) == 0 {
		return fmt.Errorf("no modules imported from %s", *in)
	}

	p, err := problem.FromModules(result.Modules)
	if err != nil {
		return err
	}
	slog.Info("imported modules", "file", *in, "modules", len(result.Modules), "skipped", len(result.Errors))
	return writeProblem(*out, p, stdout)
}

func runSolve(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("solve", flag.ContinueOnError)
	in := fs.String("problem", "-", "problem file")
	out := fs.String("out", "", "write the solved problem to this file")
	pdfPath := fs.String("pdf", "", "PDF report")
	labelsPath := fs.String("labels", "", "PDF sheet of module labels")
	dxfPath := fs.String("dxf", "", "DXF floorplan")
	xlsxPath := fs.String("xlsx", "", "Excel workbook of runs and placements")
	compare := fs.Bool("compare", false, "also compare alternative annealing schedules")
	cfg, err := setup(fs, args, stderr)
	if err != nil {
		return err
	}

	p, err := readProblem(*in)
	if err != nil {
		return err
	}

	initial := p.Expr.AABB(p.Rects)
	fmt.Fprintf(stdout, "%s -> %.0f: %s\n", initial, initial.Cost(), p.Expr)

	opt := engine.New(cfg.Anneal())
	result, err := opt.Optimize(p.Expr, p.Rects)
	if err != nil {
		return err
	}

	final := result.Best.Final.AABB(p.Rects)
	fmt.Fprintf(stdout, "%s -> %.0f: %s\n", final, final.Cost(), result.Best.Final)
	fmt.Fprintf(stdout, "Ratio: %.4f\n", result.Ratio())

	if *compare {
		if err := printComparison(stdout, opt, cfg.Anneal(), p); err != nil {
			return err
		}
	}

	report, err := export.NewReport("Floorplan "+p.ID, p, result)
	if err != nil {
		return err
	}
	if *out != "" {
		if err := writeProblem(*out, report.Problem, stdout); err != nil {
			return err
		}
	}

	exports := []struct {
		path  string
		write func(string, export.Report) error
	}{
		{*pdfPath, export.ExportPDF},
		{*labelsPath, export.ExportLabels},
		{*dxfPath, export.ExportDXF},
		{*xlsxPath, export.ExportRunsXLSX},
	}
	for _, e := range exports {
		if e.path == "" {
			continue
		}
		if err := e.write(e.path, report); err != nil {
			return fmt.Errorf("failed to export %s: %w", e.path, err)
		}
		slog.Info("exported", "file", e.path)
	}
	return nil
}

func readProblem(path string) (problem.Problem, error) {
	if path == "-" {
		return problem.Read(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return problem.Problem{}, fmt.Errorf("failed to open problem: %w", err)
	}
	defer f.Close()

	p, err := problem.Read(f)
	if err != nil {
		return problem.Problem{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

func printComparison(w io.Writer, opt *engine.Optimizer, base engine.AnnealConfig, p problem.Problem) error {
	results, err := opt.CompareScenarios(engine.BuildDefaultScenarios(base), p.Expr, p.Rects)
	if err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-24s %14s %14s %8s %12s\n", "Scenario", "Best", "Mean", "Ratio", "Iterations")
	fmt.Fprintln(w, strings.Repeat("-", 76))
	for _, r := range results {
		fmt.Fprintf(w, "%-24s %14.0f %14.0f %8.4f %12d\n",
			r.Scenario.Name, r.BestCost, r.MeanCost, r.Ratio, r.Iterations)
	}
	return nil
}

func runConfig(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	out := fs.String("out", "", "write the configuration to this file instead of stdout")
	cfg, err := setup(fs, args, stderr)
	if err != nil {
		return err
	}

	if *out != "" {
		if err := config.Save(*out, cfg); err != nil {
			return err
		}
		slog.Info("saved configuration", "file", *out)
		return nil
	}

	return cfg.Encode(stdout)
}
