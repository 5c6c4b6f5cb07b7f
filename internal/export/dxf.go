package export

import (
	"fmt"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"

	"github.com/piwi3910/slicefloor/internal/model"
)

// DXF layer names.
const (
	LayerOutline = "OUTLINE"
	LayerModules = "MODULES"
	LayerLabels  = "LABELS"
)

// ExportDXF writes the floorplan as a DXF drawing in floorplan units: the
// bounding box on the outline layer, one closed rectangle of LINEs per module
// and a text label at each module's centre.
func ExportDXF(path string, r Report) error {
	if len(r.Placements) == 0 {
		return fmt.Errorf("no modules to export")
	}

	d := dxf.NewDrawing()
	layers := []struct {
		name string
		col  color.ColorNumber
	}{
		{LayerOutline, color.Red},
		{LayerModules, dxf.DefaultColor},
		{LayerLabels, color.Cyan},
	}
	for _, l := range layers {
		if _, err := d.AddLayer(l.name, l.col, dxf.DefaultLineType, false); err != nil {
			return fmt.Errorf("failed to add layer %s: %w", l.name, err)
		}
	}

	if err := d.ChangeLayer(LayerOutline); err != nil {
		return fmt.Errorf("failed to select layer: %w", err)
	}
	if err := drawRect(d, 0, 0, float64(r.Box.Width), float64(r.Box.Height)); err != nil {
		return err
	}

	if err := d.ChangeLayer(LayerModules); err != nil {
		return fmt.Errorf("failed to select layer: %w", err)
	}
	for _, p := range r.Placements {
		if err := drawRect(d, float64(p.X), float64(p.Y), float64(p.Width), float64(p.Height)); err != nil {
			return err
		}
	}

	if err := d.ChangeLayer(LayerLabels); err != nil {
		return fmt.Errorf("failed to select layer: %w", err)
	}
	for _, p := range r.Placements {
		height := textHeight(p)
		label := r.Problem.Label(p.Rect)
		x := float64(p.X) + float64(p.Width)/2 - float64(len(label))*height*0.3
		y := float64(p.Y) + float64(p.Height)/2 - height/2
		if _, err := d.Text(label, x, y, 0, height); err != nil {
			return fmt.Errorf("failed to add label %q: %w", label, err)
		}
	}

	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("failed to write DXF: %w", err)
	}
	return nil
}

func drawRect(d *drawing.Drawing, x, y, w, h float64) error {
	corners := [4][2]float64{{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}}
	for i, c := range corners {
		n := corners[(i+1)%4]
		if _, err := d.Line(c[0], c[1], 0, n[0], n[1], 0); err != nil {
			return fmt.Errorf("failed to add line: %w", err)
		}
	}
	return nil
}

// textHeight scales labels to a fifth of the module's shorter side.
func textHeight(p model.Placement) float64 {
	return max(float64(min(p.Width, p.Height))/5, 1)
}
