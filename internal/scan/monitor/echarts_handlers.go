package monitor

import (
	"bytes"
	"fmt"
	"math"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/roomtrace-data/floorplan.report/internal/scan"
)

// handleTrailChart renders a quick scatter (HTML) of the recorded device
// trail using go-echarts. This is a debugging-only endpoint (no auth) to
// inspect the pose estimates without the rendered plan in the way.
func (ws *WebServer) handleTrailChart(w http.ResponseWriter, r *http.Request) {
	samples := ws.session.TrailSamples()
	if len(samples) == 0 {
		ws.writeJSONError(w, http.StatusNotFound, "no trail samples recorded yet")
		return
	}

	data := make([]opts.ScatterData, 0, len(samples))
	maxAbs := 0.0
	for i, s := range samples {
		if a := math.Abs(s.Pos.X); a > maxAbs {
			maxAbs = a
		}
		if a := math.Abs(s.Pos.Y); a > maxAbs {
			maxAbs = a
		}
		data = append(data, opts.ScatterData{Value: []interface{}{s.Pos.X, s.Pos.Y, i}})
	}

	pad := maxAbs * 1.05
	if pad == 0 {
		pad = 1.0
	}

	// Equal width/height and symmetric axis ranges keep the plot square so
	// the room geometry is not distorted.
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Device Trail", Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: "Device Trail", Subtitle: fmt.Sprintf("session=%s samples=%d", ws.session.ID(), len(samples))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "X (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "Z (m)", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(len(samples)),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: []string{"#440154", "#31688e", "#35b779", "#fde725"}},
		}),
	)

	scatter.AddSeries("trail", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 5}))

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// handleWallChart renders the decomposed wall endpoints as a scatter chart,
// for eyeballing the transform decomposition against the rendered plan.
func (ws *WebServer) handleWallChart(w http.ResponseWriter, r *http.Request) {
	stats := ws.session.Stats()
	if stats.Walls == 0 {
		ws.writeJSONError(w, http.StatusNotFound, "no walls captured yet")
		return
	}

	doc, err := ws.session.Export()
	if err != nil {
		ws.writeJSONError(w, http.StatusNotFound, err.Error())
		return
	}

	data := make([]opts.ScatterData, 0, len(doc.Walls)*2)
	maxAbs := 0.0
	for _, wall := range doc.Walls {
		el := scan.SurfaceElement{
			Kind:      scan.SurfaceWall,
			Transform: scan.RigidTransform{Position: wall.Transform.Position, Matrix: wall.Transform.Matrix},
			Width:     wall.Dimensions.Width,
		}
		a, b := scan.SurfaceEndpoints(el)
		for _, p := range []scan.PlanPoint{a, b} {
			if v := math.Abs(p.X); v > maxAbs {
				maxAbs = v
			}
			if v := math.Abs(p.Y); v > maxAbs {
				maxAbs = v
			}
			data = append(data, opts.ScatterData{Value: []interface{}{p.X, p.Y}})
		}
	}

	pad := maxAbs * 1.05
	if pad == 0 {
		pad = 1.0
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Wall Endpoints", Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: "Wall Endpoints", Subtitle: fmt.Sprintf("walls=%d", len(doc.Walls))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "X (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "Z (m)", NameLocation: "middle", NameGap: 30}),
	)

	scatter.AddSeries("endpoints", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}))

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
