package scan

import "math"

// Viewport fitting constants.
const (
	// BoundsPadding expands the fitted extent on every side, in world meters.
	BoundsPadding = 0.5
	// FitMarginFactor shrinks the fitted scale to leave visual breathing room
	// around the plan.
	FitMarginFactor = 0.9
	// DefaultScale is used when the scene extent is degenerate (empty scene,
	// single point), in canvas pixels per meter.
	DefaultScale = 100.0
	// degenerateExtent is the extent below which a bounding box is considered
	// a point and the default scale applies.
	degenerateExtent = 1e-6
)

// PlanBounds is an axis-aligned bounding box in the horizontal plane.
type PlanBounds struct {
	MinX, MinY float64
	MaxX, MaxY float64
	valid      bool
}

// Extend grows the bounds to include p.
func (b *PlanBounds) Extend(p PlanPoint) {
	if !b.valid {
		b.MinX, b.MaxX = p.X, p.X
		b.MinY, b.MaxY = p.Y, p.Y
		b.valid = true
		return
	}
	b.MinX = math.Min(b.MinX, p.X)
	b.MaxX = math.Max(b.MaxX, p.X)
	b.MinY = math.Min(b.MinY, p.Y)
	b.MaxY = math.Max(b.MaxY, p.Y)
}

// Pad expands the bounds by m on every side. No effect on empty bounds.
func (b *PlanBounds) Pad(m float64) {
	if !b.valid {
		return
	}
	b.MinX -= m
	b.MinY -= m
	b.MaxX += m
	b.MaxY += m
}

// Empty reports whether the bounds have seen no points.
func (b *PlanBounds) Empty() bool { return !b.valid }

// Width returns the X extent of the bounds.
func (b *PlanBounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns the Y extent of the bounds.
func (b *PlanBounds) Height() float64 { return b.MaxY - b.MinY }

// Center returns the midpoint of the bounds.
func (b *PlanBounds) Center() PlanPoint {
	return PlanPoint{X: (b.MinX + b.MaxX) / 2, Y: (b.MinY + b.MaxY) / 2}
}

// Viewport maps world plan coordinates onto a fixed-size canvas. Scale is
// canvas pixels per world meter; OffsetX/Y center the fitted extent; PanX/Y
// is the user's pan delta in pixels, persisted across re-fits and combined
// additively. It is never re-derived from geometry.
type Viewport struct {
	Scale   float64
	OffsetX float64
	OffsetY float64
	PanX    float64
	PanY    float64

	CanvasWidth  float64
	CanvasHeight float64
}

// ToCanvas maps a world plan point into canvas pixels.
func (v Viewport) ToCanvas(p PlanPoint) PlanPoint {
	return PlanPoint{
		X: p.X*v.Scale + v.OffsetX + v.PanX,
		Y: p.Y*v.Scale + v.OffsetY + v.PanY,
	}
}

// SceneBounds computes the extent the viewport must cover: every wall's two
// half-extent endpoints plus every trail position, padded by BoundsPadding.
// Doors, windows and objects live on or inside the walls and do not grow the
// fit.
func SceneBounds(snap *Snapshot, trail *Trail) PlanBounds {
	var bounds PlanBounds
	if snap != nil {
		for _, el := range snap.Surfaces {
			if el.Kind != SurfaceWall {
				continue
			}
			a, b := SurfaceEndpoints(el)
			bounds.Extend(a)
			bounds.Extend(b)
		}
	}
	if trail != nil {
		for _, p := range trail.Positions() {
			bounds.Extend(p)
		}
	}
	bounds.Pad(BoundsPadding)
	return bounds
}

// FitViewport computes the scale and offset that fit the scene bounds into a
// canvas of the given pixel size, preserving the supplied pan delta. A
// degenerate or empty extent falls back to DefaultScale centered on the
// canvas rather than dividing by zero. The fit is recomputed from scratch
// every frame; at tens of primitives this costs nothing and avoids cache
// invalidation bugs.
func FitViewport(snap *Snapshot, trail *Trail, canvasW, canvasH, panX, panY float64) Viewport {
	v := Viewport{
		Scale:        DefaultScale,
		PanX:         panX,
		PanY:         panY,
		CanvasWidth:  canvasW,
		CanvasHeight: canvasH,
	}

	bounds := SceneBounds(snap, trail)
	if bounds.Empty() || bounds.Width() < degenerateExtent || bounds.Height() < degenerateExtent {
		v.OffsetX = canvasW / 2
		v.OffsetY = canvasH / 2
		return v
	}

	v.Scale = math.Min(canvasW/bounds.Width(), canvasH/bounds.Height()) * FitMarginFactor

	center := bounds.Center()
	v.OffsetX = canvasW/2 - center.X*v.Scale
	v.OffsetY = canvasH/2 - center.Y*v.Scale
	return v
}
