package monitor

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/roomtrace-data/floorplan.report/internal/scan"
)

// Default canvas size for rendered plans, in pixels.
const (
	DefaultCanvasWidth  = 1000.0
	DefaultCanvasHeight = 700.0
)

// layerColors maps each primitive layer to its draw color.
var layerColors = map[scan.Layer]color.Color{
	scan.LayerGrid:    color.RGBA{R: 0xe0, G: 0xe0, B: 0xe0, A: 0xff},
	scan.LayerCompass: color.RGBA{R: 0x88, G: 0x88, B: 0x88, A: 0xff},
	scan.LayerTrail:   color.RGBA{R: 0x4a, G: 0x90, B: 0xd9, A: 0xff},
	scan.LayerWall:    color.RGBA{R: 0x22, G: 0x22, B: 0x22, A: 0xff},
	scan.LayerDoor:    color.RGBA{R: 0xc8, G: 0x7d, B: 0x2a, A: 0xff},
	scan.LayerWindow:  color.RGBA{R: 0x2a, G: 0x7d, B: 0xc8, A: 0xff},
	scan.LayerObject:  color.RGBA{R: 0x9a, G: 0x9a, B: 0x9a, A: 0xb0},
	scan.LayerDevice:  color.RGBA{R: 0xd0, G: 0x30, B: 0x30, A: 0xff},
}

// RenderPlan rasterizes a primitive list onto w in the requested format
// ("svg" or "png"). The primitives are in canvas pixel space with the origin
// at the top-left; the plot is set up so one plot unit is one pixel.
func RenderPlan(w io.Writer, prims []scan.Primitive, canvasW, canvasH float64, format string) error {
	p := plot.New()
	p.HideAxes()
	p.X.Min, p.X.Max = 0, canvasW
	p.Y.Min, p.Y.Max = 0, canvasH
	p.BackgroundColor = color.White

	for _, prim := range prims {
		if err := addPrimitive(p, prim, canvasH); err != nil {
			return fmt.Errorf("failed to add primitive: %w", err)
		}
	}

	writer, err := p.WriterTo(vg.Points(canvasW), vg.Points(canvasH), format)
	if err != nil {
		return fmt.Errorf("failed to create %s writer: %w", format, err)
	}
	if _, err := writer.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write %s plan: %w", format, err)
	}
	return nil
}

// addPrimitive translates one projection primitive into gonum/plot form. The
// canvas Y axis points down while the plot's points up, so Y is flipped here
// and nowhere else.
func addPrimitive(p *plot.Plot, prim scan.Primitive, canvasH float64) error {
	col, ok := layerColors[prim.Layer]
	if !ok {
		col = color.Black
	}

	flip := func(pt scan.PlanPoint) plotter.XY {
		return plotter.XY{X: pt.X, Y: canvasH - pt.Y}
	}

	switch prim.Shape {
	case scan.ShapePolyline:
		xys := make(plotter.XYs, len(prim.Points))
		for i, pt := range prim.Points {
			xys[i] = flip(pt)
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return err
		}
		line.Color = col
		line.Width = vg.Points(prim.StrokeWidth)
		if prim.Dashed {
			line.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
		}
		p.Add(line)

	case scan.ShapePolygon:
		xys := make(plotter.XYs, len(prim.Points))
		for i, pt := range prim.Points {
			xys[i] = flip(pt)
		}
		poly, err := plotter.NewPolygon(xys)
		if err != nil {
			return err
		}
		if prim.Filled {
			poly.Color = col
		}
		poly.LineStyle.Color = col
		poly.LineStyle.Width = vg.Points(prim.StrokeWidth)
		p.Add(poly)

	case scan.ShapeDisc:
		scatter, err := plotter.NewScatter(plotter.XYs{flip(prim.Center)})
		if err != nil {
			return err
		}
		scatter.GlyphStyle.Shape = draw.CircleGlyph{}
		scatter.GlyphStyle.Color = col
		scatter.GlyphStyle.Radius = vg.Points(prim.Radius)
		if !prim.Filled {
			scatter.GlyphStyle.Shape = draw.RingGlyph{}
		}
		p.Add(scatter)

	default:
		return fmt.Errorf("unknown primitive shape %d", prim.Shape)
	}
	return nil
}
