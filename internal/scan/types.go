// Package scan implements the geometry pipeline that turns noisy 3D room-scan
// measurements into stable 2D floor-plan primitives and a dimensional export
// document.
//
// The capture device delivers complete Snapshots; each one entirely replaces
// the previous (latest wins, no diffing). All plan-space work happens in the
// horizontal X/Z plane of the scan frame: Y is vertical and is dropped when
// projecting to 2D. Distances are meters throughout; nothing in this package
// converts units.
package scan

import "time"

// Vec3 is a point or direction in the 3D scan frame.
// Convention: X=right, Y=up, Z=forward (matches the capture device).
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// PlanPoint is a 2D point in the horizontal scan plane. Depending on context
// the coordinates are world meters (X = scan X, Y = scan Z) or canvas pixels
// after a Viewport mapping.
type PlanPoint struct {
	X float64
	Y float64
}

// RigidTransform is a position plus an orientation encoded as a 4x4
// homogeneous matrix, stored row-major. The first three matrix columns are
// the right, up and forward basis vectors. Sensor noise means the basis is
// only approximately orthonormal, and individual vectors can be arbitrarily
// close to zero length; consumers must degrade rather than crash on that.
type RigidTransform struct {
	Position Vec3
	Matrix   [4][4]float64
}

// Right returns the first basis column (direction along a wall's width).
func (t RigidTransform) Right() Vec3 {
	return Vec3{t.Matrix[0][0], t.Matrix[1][0], t.Matrix[2][0]}
}

// Up returns the second basis column (vertical direction).
func (t RigidTransform) Up() Vec3 {
	return Vec3{t.Matrix[0][1], t.Matrix[1][1], t.Matrix[2][1]}
}

// Forward returns the third basis column (surface normal for walls, facing
// direction for the device and objects).
func (t RigidTransform) Forward() Vec3 {
	return Vec3{t.Matrix[0][2], t.Matrix[1][2], t.Matrix[2][2]}
}

// IdentityTransform returns a transform at the origin with axis-aligned basis
// vectors. Useful as a neutral default for captures with missing matrices.
func IdentityTransform() RigidTransform {
	var t RigidTransform
	for i := 0; i < 4; i++ {
		t.Matrix[i][i] = 1
	}
	return t
}

// SurfaceKind distinguishes the flat architectural elements a capture
// reports.
type SurfaceKind string

const (
	SurfaceWall   SurfaceKind = "wall"
	SurfaceDoor   SurfaceKind = "door"
	SurfaceWindow SurfaceKind = "window"
)

// SurfaceElement is one wall, door or window measurement. Width extends along
// the transform's right vector; height along up; thickness along forward.
type SurfaceElement struct {
	ID        string
	Kind      SurfaceKind
	Transform RigidTransform
	Width     float64
	Height    float64
	Thickness float64
}

// ObjectElement is one recognised object (furniture, appliance, ...) with a
// category label and the capture system's confidence label ("high",
// "medium", "low").
type ObjectElement struct {
	ID         string
	Category   string
	Confidence string
	Transform  RigidTransform
	Width      float64
	Height     float64
	Depth      float64
}

// Snapshot is the complete, immutable geometry state at one capture update.
// DeviceTransform is the raw device orientation as reported upstream when
// available; its position component is not trustworthy (see
// EstimateDevicePose), but its forward vector orients the device glyph.
type Snapshot struct {
	Surfaces        []SurfaceElement
	Objects         []ObjectElement
	DeviceTransform *RigidTransform
	CapturedAt      time.Time
}

// Walls returns the wall surfaces in capture order.
func (s *Snapshot) Walls() []SurfaceElement {
	return s.surfacesOfKind(SurfaceWall)
}

// Doors returns the door surfaces in capture order.
func (s *Snapshot) Doors() []SurfaceElement {
	return s.surfacesOfKind(SurfaceDoor)
}

// Windows returns the window surfaces in capture order.
func (s *Snapshot) Windows() []SurfaceElement {
	return s.surfacesOfKind(SurfaceWindow)
}

func (s *Snapshot) surfacesOfKind(kind SurfaceKind) []SurfaceElement {
	var out []SurfaceElement
	for _, el := range s.Surfaces {
		if el.Kind == kind {
			out = append(out, el)
		}
	}
	return out
}
