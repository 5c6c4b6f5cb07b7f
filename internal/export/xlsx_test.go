package export

import (
	"path/filepath"
	"strconv"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestExportRunsXLSX(t *testing.T) {
	r := buildTestReport(t)
	path := filepath.Join(t.TempDir(), "runs.xlsx")

	if err := ExportRunsXLSX(path, r); err != nil {
		t.Fatalf("ExportRunsXLSX returned error: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("failed to open workbook: %v", err)
	}
	defer f.Close()

	runs, err := f.GetRows(SheetRuns)
	if err != nil {
		t.Fatalf("failed to read %s: %v", SheetRuns, err)
	}
	if len(runs) != len(r.Result.Runs)+1 {
		t.Fatalf("expected %d rows, got %d", len(r.Result.Runs)+1, len(runs))
	}
	if runs[0][0] != "Run" || runs[0][3] != "Final Cost" {
		t.Errorf("unexpected header %v", runs[0])
	}
	best := 0
	for _, row := range runs[1:] {
		if row[len(row)-1] == "yes" {
			best++
		}
	}
	if best != 1 {
		t.Errorf("expected exactly one best run, got %d", best)
	}

	modules, err := f.GetRows(SheetModules)
	if err != nil {
		t.Fatalf("failed to read %s: %v", SheetModules, err)
	}
	if len(modules) != len(r.Placements)+1 {
		t.Fatalf("expected %d rows, got %d", len(r.Placements)+1, len(modules))
	}
	for i, row := range modules[1:] {
		p := r.Placements[i]
		if row[1] != r.Problem.Label(p.Rect) || row[4] != strconv.Itoa(p.X) {
			t.Errorf("row %d does not match placement %+v: %v", i+1, p, row)
		}
	}
}

func TestExportRunsXLSX_Empty(t *testing.T) {
	if err := ExportRunsXLSX(filepath.Join(t.TempDir(), "empty.xlsx"), Report{}); err == nil {
		t.Fatal("expected error for empty report, got nil")
	}
}

func TestExportRunsXLSX_MarksBestByIndex(t *testing.T) {
	r := buildTestReport(t)
	for i := range r.Result.Runs {
		r.Result.Runs[i].ID = "deadbeef"
	}
	r.Result.BestIndex = 1
	r.Result.Best = r.Result.Runs[1]

	path := filepath.Join(t.TempDir(), "runs.xlsx")
	if err := ExportRunsXLSX(path, r); err != nil {
		t.Fatalf("ExportRunsXLSX returned error: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("failed to open workbook: %v", err)
	}
	defer f.Close()

	runs, err := f.GetRows(SheetRuns)
	if err != nil {
		t.Fatalf("failed to read %s: %v", SheetRuns, err)
	}
	for i, row := range runs[1:] {
		marked := row[len(row)-1] == "yes"
		if marked != (i == 1) {
			t.Errorf("run %d: best mark = %v", i+1, marked)
		}
	}
}
