package export

import (
	"bytes"
	"fmt"
	"math"
	"time"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/slicefloor/internal/model"
)

type moduleColor struct {
	R, G, B int
}

var moduleColors = []moduleColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	legendHeight = 20.0
	drawAreaTop  = marginTop + headerHeight + 5.0
	rowHeight    = 6.0
	problemQR    = 45.0 // Side of the problem QR code in mm
)

// ExportPDF writes the floorplan on the first page followed by a summary
// of the search: costs, per-run statistics and a QR code holding the solved
// problem in its text form.
func ExportPDF(path string, r Report) error {
	pdf, err := buildPDF(r)
	if err != nil {
		return err
	}
	return pdf.OutputFileAndClose(path)
}

func buildPDF(r Report) (*fpdf.Fpdf, error) {
	if len(r.Placements) == 0 {
		return nil, fmt.Errorf("no modules to export")
	}
	if r.Box.Width <= 0 || r.Box.Height <= 0 {
		return nil, fmt.Errorf("cannot draw a %s floorplan", r.Box)
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	pdf.AddPage()
	renderFloorplanPage(pdf, r)

	pdf.AddPage()
	if err := renderSummaryPage(pdf, r); err != nil {
		return nil, err
	}
	return pdf, nil
}

func renderFloorplanPage(pdf *fpdf.Fpdf, r Report) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("%s: %d modules in %d x %d", reportTitle(r), len(r.Placements), r.Box.Width, r.Box.Height)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Area: %.0f | Module area: %.0f | Efficiency: %.1f%% | Ratio to initial: %.4f",
		r.Box.Cost(), r.ModuleArea(), r.Efficiency(), r.Result.Ratio())
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - legendHeight

	scale := math.Min(drawWidth/float64(r.Box.Width), drawHeight/float64(r.Box.Height))
	canvasW := float64(r.Box.Width) * scale
	canvasH := float64(r.Box.Height) * scale
	offsetX := marginLeft + (drawWidth-canvasW)/2
	offsetY := drawAreaTop

	// Unused area
	pdf.SetFillColor(235, 235, 235)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Rect(offsetX, offsetY, canvasW, canvasH, "FD")

	for _, p := range r.Placements {
		col := moduleColors[p.Rect%len(moduleColors)]
		pw := float64(p.Width) * scale
		ph := float64(p.Height) * scale
		px := offsetX + float64(p.X)*scale
		// Floorplan Y grows upwards, page Y downwards.
		py := offsetY + canvasH - float64(p.Y+p.Height)*scale

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.3)
		pdf.Rect(px, py, pw, ph, "FD")

		if pw > 10 && ph > 6 {
			pdf.SetFont("Helvetica", "", labelFontSize(pw, ph))
			pdf.SetTextColor(0, 0, 0)

			label := r.Problem.Label(p.Rect)
			dims := fmt.Sprintf("%dx%d", p.Width, p.Height)
			labelW := pdf.GetStringWidth(label)
			dimsW := pdf.GetStringWidth(dims)

			if labelW < pw-2 {
				pdf.SetXY(px+(pw-labelW)/2, py+ph/2-4)
				pdf.CellFormat(labelW, 4, label, "", 0, "C", false, 0, "")
			}
			if ph > 12 && dimsW < pw-2 {
				pdf.SetXY(px+(pw-dimsW)/2, py+ph/2)
				pdf.CellFormat(dimsW, 4, dims, "", 0, "C", false, 0, "")
			}
		}
	}

	drawDimensionAnnotations(pdf, r.Box, offsetX, offsetY, canvasW, canvasH)
	drawExpression(pdf, r, offsetY+canvasH+6)
}

// drawDimensionAnnotations labels the bounding box width below and its
// height to the left of the floorplan.
func drawDimensionAnnotations(pdf *fpdf.Fpdf, box model.Rect, offsetX, offsetY, canvasW, canvasH float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	widthLabel := fmt.Sprintf("%d", box.Width)
	wLabelW := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(offsetX+(canvasW-wLabelW)/2, offsetY+canvasH+1)
	pdf.CellFormat(wLabelW, 4, widthLabel, "", 0, "C", false, 0, "")

	heightLabel := fmt.Sprintf("%d", box.Height)
	pdf.TransformBegin()
	pdf.TransformRotate(90, offsetX-3, offsetY+canvasH/2)
	hLabelW := pdf.GetStringWidth(heightLabel)
	pdf.SetXY(offsetX-3-hLabelW/2, offsetY+canvasH/2-2)
	pdf.CellFormat(hLabelW, 4, heightLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	pdf.SetTextColor(0, 0, 0)
}

// drawExpression prints the final Polish expression under the floorplan.
func drawExpression(pdf *fpdf.Fpdf, r Report, y float64) {
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(25, 4, "Expression:", "", 0, "L", false, 0, "")

	pdf.SetFont("Courier", "", 7)
	pdf.SetXY(marginLeft+25, y)
	pdf.MultiCell(pageWidth-marginLeft-marginRight-25, 3.5, r.Problem.Expr.String(), "", "L", false)
}

func renderSummaryPage(pdf *fpdf.Fpdf, r Report) error {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Annealing Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	if err := drawProblemQR(pdf, r); err != nil {
		return err
	}

	y := marginTop + 18
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Overall Statistics", "", 0, "L", false, 0, "")
	y += 9

	res := r.Result
	summaryItems := []struct {
		label string
		value string
	}{
		{"Problem", r.Problem.ID},
		{"Modules", fmt.Sprintf("%d", len(r.Problem.Rects))},
		{"Initial Box", fmt.Sprintf("%s = %.0f", res.InitialBox, res.InitialCost)},
		{"Final Box", fmt.Sprintf("%s = %.0f", r.Box, r.Box.Cost())},
		{"Ratio", fmt.Sprintf("%.4f", res.Ratio())},
		{"Mean Final Cost", fmt.Sprintf("%.0f", res.MeanCost())},
		{"Best Seen Cost", fmt.Sprintf("%.0f (run %d)", res.Best.BestCost, res.BestIndex+1)},
		{"Runs", fmt.Sprintf("%d", len(res.Runs))},
		{"Duration", res.Duration.String()},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range summaryItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(45, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(80, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 6
	}

	y += 5
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Runs", "", 0, "L", false, 0, "")
	y += 9

	colWidths := []float64{14, 22, 36, 36, 20, 28, 26, 26, 24, 35}
	headers := []string{"Run", "ID", "Final Cost", "Best Seen", "Stages", "Iterations", "Accepted", "Uphill", "Final Temp", "Duration"}
	drawTableHeader := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		x := marginLeft
		for i, h := range headers {
			pdf.SetXY(x, y)
			pdf.CellFormat(colWidths[i], rowHeight, h, "1", 0, "C", true, 0, "")
			x += colWidths[i]
		}
		y += rowHeight
		pdf.SetFont("Helvetica", "", 9)
	}
	drawTableHeader()

	for i, run := range res.Runs {
		if y+rowHeight > pageHeight-marginBottom-5 {
			pdf.AddPage()
			y = marginTop
			drawTableHeader()
		}

		row := []string{
			fmt.Sprintf("%d", i+1),
			run.ID,
			fmt.Sprintf("%.0f", run.FinalCost),
			fmt.Sprintf("%.0f", run.BestCost),
			fmt.Sprintf("%d", run.Stages),
			fmt.Sprintf("%d", run.Iterations),
			fmt.Sprintf("%d", run.Accepted),
			fmt.Sprintf("%d", run.Uphill),
			fmt.Sprintf("%.4f", run.FinalTemp),
			run.Duration.Round(time.Microsecond).String(),
		}

		switch {
		case i == res.BestIndex:
			pdf.SetFillColor(200, 230, 201)
		case i%2 == 0:
			pdf.SetFillColor(245, 245, 245)
		default:
			pdf.SetFillColor(255, 255, 255)
		}

		x := marginLeft
		for j, cell := range row {
			pdf.SetXY(x, y)
			pdf.CellFormat(colWidths[j], rowHeight, cell, "1", 0, "C", true, 0, "")
			x += colWidths[j]
		}
		y += rowHeight
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	footer := "Generated by slicefloor"
	if !r.Created.IsZero() {
		footer += " on " + r.Created.Format("2006-01-02 15:04")
	}
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, footer, "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	return nil
}

// drawProblemQR places a QR code of the solved problem in the top right
// corner. Problems too large for a QR code get a note instead.
func drawProblemQR(pdf *fpdf.Fpdf, r Report) error {
	x := pageWidth - marginRight - problemQR
	y := marginTop + 16

	png, err := qrcode.Encode(r.Problem.String(), qrcode.Low, 512)
	if err != nil {
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.SetXY(x, y)
		pdf.MultiCell(problemQR, 4, "Problem too large for a QR code", "", "C", false)
		pdf.SetTextColor(0, 0, 0)
		return nil
	}

	name := "problem_" + r.Problem.ID
	pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(png))
	if pdf.Err() {
		return fmt.Errorf("failed to embed QR code: %w", pdf.Error())
	}
	pdf.ImageOptions(name, x, y, problemQR, problemQR, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(x, y+problemQR)
	pdf.CellFormat(problemQR, 4, "Scan for the solved problem", "", 0, "C", false, 0, "")
	return nil
}

func reportTitle(r Report) string {
	if r.Title != "" {
		return r.Title
	}
	return "Floorplan " + r.Problem.ID
}

// labelFontSize returns a font size that fits a w x h mm rectangle.
func labelFontSize(w, h float64) float64 {
	minDim := math.Min(w, h)
	switch {
	case minDim > 40:
		return 8
	case minDim > 20:
		return 7
	default:
		return 6
	}
}
