package main

import (
	"bytes"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/slicefloor/internal/config"
	"github.com/piwi3910/slicefloor/internal/problem"
)

func writeTestConfig(t *testing.T, dir string) string {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Width, cfg.Height = 256, 256
	cfg.Cuts = 8
	cfg.Scramble = 50
	cfg.Stages = 300
	cfg.TempReduction = 0.9
	cfg.Runs = 2
	cfg.Seed = 5
	cfg.LogLevel = "error"

	path := filepath.Join(dir, "config.json")
	require.NoError(t, config.Save(path, cfg))
	return path
}

func readTestProblem(t *testing.T, path string) problem.Problem {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	p, err := problem.Read(f)
	require.NoError(t, err)
	return p
}

func TestRun_Usage(t *testing.T) {
	var stdout, stderr bytes.Buffer

	err := run(nil, &stdout, &stderr)
	assert.True(t, errors.Is(err, flag.ErrHelp))
	assert.Contains(t, stderr.String(), "generate")

	err = run([]string{"bogus"}, &stdout, &stderr)
	assert.ErrorContains(t, err, "unknown command")
}

func TestRun_GenerateAndSolve(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeTestConfig(t, dir)
	probPath := filepath.Join(dir, "problem.txt")
	var stdout, stderr bytes.Buffer

	require.NoError(t, run([]string{"generate", "-config", cfgPath, "-out", probPath}, &stdout, &stderr))
	generated := readTestProblem(t, probPath)
	assert.Len(t, generated.Rects, 9)

	outputs := map[string]string{
		"-pdf":    filepath.Join(dir, "report.pdf"),
		"-labels": filepath.Join(dir, "labels.pdf"),
		"-dxf":    filepath.Join(dir, "plan.dxf"),
		"-xlsx":   filepath.Join(dir, "runs.xlsx"),
		"-out":    filepath.Join(dir, "solved.txt"),
	}
	args := []string{"solve", "-config", cfgPath, "-problem", probPath, "-compare"}
	for flagName, path := range outputs {
		args = append(args, flagName, path)
	}
	require.NoError(t, run(args, &stdout, &stderr))

	out := stdout.String()
	assert.Contains(t, out, "Ratio: ")
	assert.Contains(t, out, "Current Settings")
	for flagName, path := range outputs {
		info, err := os.Stat(path)
		require.NoError(t, err, flagName)
		assert.Positive(t, info.Size(), flagName)
	}

	solved := readTestProblem(t, outputs["-out"])
	assert.Equal(t, generated.Rects, solved.Rects)
}

func TestRun_Import(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeTestConfig(t, dir)
	csvPath := filepath.Join(dir, "modules.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("label,width,height,qty\nA,10,20,2\nB,30,5,1\n"), 0644))
	probPath := filepath.Join(dir, "problem.txt")
	var stdout, stderr bytes.Buffer

	require.NoError(t, run([]string{"import", "-config", cfgPath, "-in", csvPath, "-out", probPath}, &stdout, &stderr))

	p := readTestProblem(t, probPath)
	assert.Len(t, p.Rects, 3)
	assert.Equal(t, "0 1 V 2 H", p.Expr.String())

	err := run([]string{"import", "-config", cfgPath}, &stdout, &stderr)
	assert.Error(t, err)
}

func TestRun_Config(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeTestConfig(t, dir)
	var stdout, stderr bytes.Buffer

	t.Setenv("SLICEFLOOR_RUNS", "9")
	require.NoError(t, run([]string{"config", "-config", cfgPath}, &stdout, &stderr))
	assert.True(t, strings.Contains(stdout.String(), `"runs": 9`), stdout.String())

	saved := filepath.Join(dir, "out", "config.json")
	require.NoError(t, run([]string{"config", "-config", cfgPath, "-out", saved}, &stdout, &stderr))
	cfg, err := config.Load(saved)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Runs)
}
