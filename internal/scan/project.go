package scan

import "math"

// Projection constants, canvas pixels unless noted.
const (
	// GridSpacing is the world-space spacing of the background grid (meters).
	GridSpacing = 1.0
	// FOVHalfAngle is the half-angle of the device's field-of-view wedge.
	FOVHalfAngle = 30.0 * math.Pi / 180.0
	// FOVLength is the world-space length of the field-of-view wedge (meters).
	FOVLength = 0.75

	minWallStroke    = 2.0
	cornerRadius     = 3.0
	openingStroke    = 6.0
	deviceGlyphSize  = 10.0
	compassRadius    = 16.0
	compassInset     = 40.0
	trailStroke      = 1.5
	objectStroke     = 1.0
	frontTickExtra   = 4.0
	wedgeArcSegments = 16
)

// Layer identifies what a primitive depicts. Primitives are emitted back to
// front, so slice order is already draw order; the layer tag is for renderers
// that color by role.
type Layer int

const (
	LayerGrid Layer = iota
	LayerCompass
	LayerTrail
	LayerWall
	LayerDoor
	LayerWindow
	LayerObject
	LayerDevice
)

// Shape is the geometric form of a primitive.
type Shape int

const (
	// ShapePolyline is an open stroked path.
	ShapePolyline Shape = iota
	// ShapePolygon is a closed path; filled, stroked or both.
	ShapePolygon
	// ShapeDisc is a filled circle.
	ShapeDisc
)

// Primitive is one 2D drawing operation in canvas pixel space. A Primitive
// with Filled set and a positive StrokeWidth is both filled and stroked.
type Primitive struct {
	Layer       Layer
	Shape       Shape
	Points      []PlanPoint
	Center      PlanPoint
	Radius      float64
	StrokeWidth float64
	Dashed      bool
	Filled      bool
}

// Project maps the current snapshot, trail and viewport into an ordered list
// of drawable primitives, back to front: grid and compass, trail, walls,
// doors, windows, objects, device glyph. It is a pure function of its inputs
// and produces a full redraw every call; nothing is patched incrementally.
// That is fine at the tens of primitives a room scan yields and is the first
// thing to revisit if this is ever pointed at much larger scenes.
//
// hasHeading gates the compass indicator: a missing heading simply omits it.
func Project(snap *Snapshot, trail *Trail, vp Viewport, heading float64, hasHeading bool) []Primitive {
	var prims []Primitive

	prims = append(prims, gridPrimitives(vp)...)
	if hasHeading {
		prims = append(prims, compassPrimitives(vp, heading)...)
	}
	prims = append(prims, trailPrimitives(trail, vp)...)

	if snap != nil {
		for _, el := range snap.Surfaces {
			if el.Kind == SurfaceWall {
				prims = append(prims, wallPrimitives(el, vp)...)
			}
		}
		for _, el := range snap.Surfaces {
			if el.Kind == SurfaceDoor {
				prims = append(prims, openingPrimitives(el, vp, LayerDoor)...)
			}
		}
		for _, el := range snap.Surfaces {
			if el.Kind == SurfaceWindow {
				prims = append(prims, openingPrimitives(el, vp, LayerWindow)...)
			}
		}
		for _, obj := range snap.Objects {
			prims = append(prims, objectPrimitives(obj, vp)...)
		}
		prims = append(prims, devicePrimitives(snap, vp)...)
	}

	return prims
}

// gridPrimitives emits world-aligned grid lines at GridSpacing covering the
// whole canvas, derived by inverting the viewport mapping at the canvas
// corners.
func gridPrimitives(vp Viewport) []Primitive {
	if vp.Scale <= 0 {
		return nil
	}

	worldMinX := (0 - vp.OffsetX - vp.PanX) / vp.Scale
	worldMaxX := (vp.CanvasWidth - vp.OffsetX - vp.PanX) / vp.Scale
	worldMinY := (0 - vp.OffsetY - vp.PanY) / vp.Scale
	worldMaxY := (vp.CanvasHeight - vp.OffsetY - vp.PanY) / vp.Scale

	var prims []Primitive
	for x := math.Floor(worldMinX / GridSpacing) * GridSpacing; x <= worldMaxX; x += GridSpacing {
		a := vp.ToCanvas(PlanPoint{X: x, Y: worldMinY})
		b := vp.ToCanvas(PlanPoint{X: x, Y: worldMaxY})
		prims = append(prims, Primitive{
			Layer: LayerGrid, Shape: ShapePolyline,
			Points: []PlanPoint{a, b}, StrokeWidth: 0.5,
		})
	}
	for y := math.Floor(worldMinY / GridSpacing) * GridSpacing; y <= worldMaxY; y += GridSpacing {
		a := vp.ToCanvas(PlanPoint{X: worldMinX, Y: y})
		b := vp.ToCanvas(PlanPoint{X: worldMaxX, Y: y})
		prims = append(prims, Primitive{
			Layer: LayerGrid, Shape: ShapePolyline,
			Points: []PlanPoint{a, b}, StrokeWidth: 0.5,
		})
	}
	return prims
}

// compassPrimitives draws a north indicator near the top-right canvas corner:
// a circle outline plus an arrow rotated by the heading. Heading is compass
// degrees [0,360); 0 means the canvas -Y direction already points north.
func compassPrimitives(vp Viewport, heading float64) []Primitive {
	center := PlanPoint{X: vp.CanvasWidth - compassInset, Y: compassInset}
	angle := -heading * math.Pi / 180.0

	// Arrow from tail to tip through the circle center.
	tip := PlanPoint{
		X: center.X + compassRadius*math.Sin(angle),
		Y: center.Y - compassRadius*math.Cos(angle),
	}
	tail := PlanPoint{
		X: center.X - compassRadius*math.Sin(angle),
		Y: center.Y + compassRadius*math.Cos(angle),
	}

	// Arrowhead barbs.
	barb := func(side float64) PlanPoint {
		a := angle + side*2.5
		return PlanPoint{
			X: tip.X + 6*math.Sin(a),
			Y: tip.Y - 6*math.Cos(a),
		}
	}

	return []Primitive{
		{Layer: LayerCompass, Shape: ShapeDisc, Center: center, Radius: compassRadius + 4, StrokeWidth: 1},
		{Layer: LayerCompass, Shape: ShapePolyline, Points: []PlanPoint{tail, tip}, StrokeWidth: 1.5},
		{Layer: LayerCompass, Shape: ShapePolygon, Points: []PlanPoint{tip, barb(1), barb(-1)}, Filled: true},
	}
}

// trailPrimitives draws the recorded device path as a single dashed polyline.
func trailPrimitives(trail *Trail, vp Viewport) []Primitive {
	if trail == nil || trail.Len() < 2 {
		return nil
	}
	positions := trail.Positions()
	points := make([]PlanPoint, len(positions))
	for i, p := range positions {
		points[i] = vp.ToCanvas(p)
	}
	return []Primitive{{
		Layer: LayerTrail, Shape: ShapePolyline,
		Points: points, StrokeWidth: trailStroke, Dashed: true,
	}}
}

// wallPrimitives draws a wall as a thick segment between its decomposed
// endpoints, with a filled corner disc at each end. Stroke width tracks the
// measured thickness but never drops below a visible minimum.
func wallPrimitives(el SurfaceElement, vp Viewport) []Primitive {
	a, b := SurfaceEndpoints(el)
	ca := vp.ToCanvas(a)
	cb := vp.ToCanvas(b)

	stroke := math.Max(minWallStroke, el.Thickness*vp.Scale)
	return []Primitive{
		{Layer: LayerWall, Shape: ShapePolyline, Points: []PlanPoint{ca, cb}, StrokeWidth: stroke},
		{Layer: LayerWall, Shape: ShapeDisc, Center: ca, Radius: cornerRadius, Filled: true},
		{Layer: LayerWall, Shape: ShapeDisc, Center: cb, Radius: cornerRadius, Filled: true},
	}
}

// openingPrimitives draws a door or window as a thin filled rectangle
// centered on the opening's projected position, oriented along its width
// direction. Windows additionally get a center crossbar so the two read
// differently at a glance.
func openingPrimitives(el SurfaceElement, vp Viewport, layer Layer) []Primitive {
	center := vp.ToCanvas(PlanPosition(el.Transform))
	dir := SurfaceDirection(el)

	halfW := el.Width * vp.Scale / 2
	halfD := openingStroke / 2

	// dir along the opening, n perpendicular to it (canvas space).
	dx, dy := dir.X, dir.Y
	nx, ny := -dy, dx

	rect := []PlanPoint{
		{X: center.X - dx*halfW - nx*halfD, Y: center.Y - dy*halfW - ny*halfD},
		{X: center.X + dx*halfW - nx*halfD, Y: center.Y + dy*halfW - ny*halfD},
		{X: center.X + dx*halfW + nx*halfD, Y: center.Y + dy*halfW + ny*halfD},
		{X: center.X - dx*halfW + nx*halfD, Y: center.Y - dy*halfW + ny*halfD},
	}

	prims := []Primitive{{
		Layer: layer, Shape: ShapePolygon, Points: rect, Filled: true,
	}}

	if layer == LayerWindow {
		bar := []PlanPoint{
			{X: center.X - dx*halfW, Y: center.Y - dy*halfW},
			{X: center.X + dx*halfW, Y: center.Y + dy*halfW},
		}
		prims = append(prims, Primitive{
			Layer: layer, Shape: ShapePolyline, Points: bar, StrokeWidth: 1,
		})
	}
	return prims
}

// objectPrimitives draws an object footprint as a rotated filled+stroked
// rectangle using the decomposed yaw, plus a short tick marking the front
// (forward) direction.
func objectPrimitives(obj ObjectElement, vp Viewport) []Primitive {
	center := vp.ToCanvas(PlanPosition(obj.Transform))
	yaw := ObjectYaw(obj.Transform)

	halfW := obj.Width * vp.Scale / 2
	halfD := obj.Depth * vp.Scale / 2

	cos, sin := math.Cos(yaw), math.Sin(yaw)
	corner := func(w, d float64) PlanPoint {
		return PlanPoint{
			X: center.X + w*cos - d*sin,
			Y: center.Y + w*sin + d*cos,
		}
	}
	rect := []PlanPoint{
		corner(-halfW, -halfD),
		corner(halfW, -halfD),
		corner(halfW, halfD),
		corner(-halfW, halfD),
	}

	// Front tick along the forward direction, from the footprint edge
	// slightly outward.
	fwd, _ := PlanDirection(obj.Transform.Forward())
	tickStart := PlanPoint{X: center.X + fwd.X*halfD, Y: center.Y + fwd.Y*halfD}
	tickEnd := PlanPoint{
		X: center.X + fwd.X*(halfD+frontTickExtra),
		Y: center.Y + fwd.Y*(halfD+frontTickExtra),
	}

	return []Primitive{
		{Layer: LayerObject, Shape: ShapePolygon, Points: rect, Filled: true, StrokeWidth: objectStroke},
		{Layer: LayerObject, Shape: ShapePolyline, Points: []PlanPoint{tickStart, tickEnd}, StrokeWidth: objectStroke},
	}
}

// devicePrimitives draws the device glyph at the estimated pose: an oriented
// triangle plus a fixed-angle field-of-view wedge. Orientation comes from the
// reported device transform's forward vector when available, else 0.
func devicePrimitives(snap *Snapshot, vp Viewport) []Primitive {
	pos, ok := EstimateDevicePose(snap)
	if !ok {
		return nil
	}
	center := vp.ToCanvas(pos)

	yaw := 0.0
	if snap.DeviceTransform != nil {
		yaw = DeviceYaw(*snap.DeviceTransform)
	}

	// Plan-space facing direction for yaw = atan2(forward.x, forward.z).
	dirAt := func(a float64) (float64, float64) { return math.Sin(a), math.Cos(a) }

	// Field-of-view wedge, drawn first so the glyph sits on top of it.
	wedgeR := FOVLength * vp.Scale
	wedge := []PlanPoint{center}
	for i := 0; i <= wedgeArcSegments; i++ {
		a := yaw - FOVHalfAngle + 2*FOVHalfAngle*float64(i)/wedgeArcSegments
		dx, dy := dirAt(a)
		wedge = append(wedge, PlanPoint{X: center.X + dx*wedgeR, Y: center.Y + dy*wedgeR})
	}

	// Oriented triangle: tip forward, two base corners behind.
	tipX, tipY := dirAt(yaw)
	leftX, leftY := dirAt(yaw + math.Pi - 0.5)
	rightX, rightY := dirAt(yaw + math.Pi + 0.5)
	tri := []PlanPoint{
		{X: center.X + tipX*deviceGlyphSize, Y: center.Y + tipY*deviceGlyphSize},
		{X: center.X + leftX*deviceGlyphSize*0.7, Y: center.Y + leftY*deviceGlyphSize*0.7},
		{X: center.X + rightX*deviceGlyphSize*0.7, Y: center.Y + rightY*deviceGlyphSize*0.7},
	}

	return []Primitive{
		{Layer: LayerDevice, Shape: ShapePolygon, Points: wedge, Filled: true},
		{Layer: LayerDevice, Shape: ShapePolygon, Points: tri, Filled: true, StrokeWidth: 1},
	}
}
