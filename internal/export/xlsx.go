package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/slicefloor/internal/npe"
)

// Sheet names of the runs workbook.
const (
	SheetRuns    = "Runs"
	SheetModules = "Modules"
)

// ExportRunsXLSX writes one row per annealing run to the Runs sheet and the
// final placement of every module to the Modules sheet.
func ExportRunsXLSX(path string, r Report) error {
	if len(r.Result.Runs) == 0 {
		return fmt.Errorf("no runs to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetRuns); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetModules); err != nil {
		return fmt.Errorf("failed to add sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"E6E6E6"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	runHeader := []interface{}{
		"Run", "ID", "Seed", "Final Cost", "Best Seen", "Stages", "Iterations",
		"Accepted", "Uphill", "Rejected", "Final Temp", "M1", "M2", "M3", "Seconds", "Best",
	}
	runRows := make([][]interface{}, 0, len(r.Result.Runs))
	for i, run := range r.Result.Runs {
		runRows = append(runRows, []interface{}{
			i + 1, run.ID, run.Seed, run.FinalCost, run.BestCost, run.Stages, run.Iterations,
			run.Accepted, run.Uphill, run.Rejected, run.FinalTemp,
			run.Moves[npe.MoveExchange], run.Moves[npe.MoveComplement], run.Moves[npe.MoveSwap], run.Duration.Seconds(),
			bestMark(i == r.Result.BestIndex),
		})
	}
	if err := writeTable(f, SheetRuns, runHeader, runRows, bold); err != nil {
		return err
	}

	moduleHeader := []interface{}{"Index", "Label", "Width", "Height", "X", "Y"}
	moduleRows := make([][]interface{}, 0, len(r.Placements))
	for _, p := range r.Placements {
		moduleRows = append(moduleRows, []interface{}{
			p.Rect, r.Problem.Label(p.Rect), p.Width, p.Height, p.X, p.Y,
		})
	}
	if err := writeTable(f, SheetModules, moduleHeader, moduleRows, bold); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func bestMark(best bool) string {
	if best {
		return "yes"
	}
	return ""
}

func writeTable(f *excelize.File, sheet string, header []interface{}, rows [][]interface{}, headerStyle int) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
