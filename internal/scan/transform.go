package scan

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// planarEpsilon is the minimum horizontal-plane length of a basis vector
// before decomposition falls back to a default direction. Below this the
// vector carries no usable orientation information and normalizing it would
// amplify noise into garbage (or NaN).
const planarEpsilon = 1e-3

// basisTolerance is the tolerance for the orthonormality and determinant
// checks in CheckTransform.
const basisTolerance = 0.01

// fallbackDirection is substituted when a basis vector is degenerate in the
// horizontal plane. Walls degraded this way render axis-aligned instead of
// disappearing or crashing the pipeline.
var fallbackDirection = PlanPoint{X: 1, Y: 0}

// PlanPosition drops the vertical axis of a transform's position, mapping
// scan (X, Z) onto plan (X, Y).
func PlanPosition(t RigidTransform) PlanPoint {
	return PlanPoint{X: t.Position.X, Y: t.Position.Z}
}

// PlanDirection projects v onto the horizontal plane and normalizes it.
// Degenerate vectors (near-vertical or near-zero) yield fallbackDirection and
// ok=false; the caller gets a drawable answer either way.
func PlanDirection(v Vec3) (dir PlanPoint, ok bool) {
	length := math.Hypot(v.X, v.Z)
	if length < planarEpsilon {
		return fallbackDirection, false
	}
	return PlanPoint{X: v.X / length, Y: v.Z / length}, true
}

// SurfaceDirection is the plan-space direction a surface's width extends
// along, taken from the right basis vector.
func SurfaceDirection(el SurfaceElement) PlanPoint {
	dir, _ := PlanDirection(el.Transform.Right())
	return dir
}

// SurfaceEndpoints returns the two plan-space endpoints of a surface:
// position ± (width/2) along the normalized right vector. For walls these
// are the segment ends the renderer and the dimension extractor both use.
func SurfaceEndpoints(el SurfaceElement) (a, b PlanPoint) {
	center := PlanPosition(el.Transform)
	dir := SurfaceDirection(el)
	half := el.Width / 2
	a = PlanPoint{X: center.X - dir.X*half, Y: center.Y - dir.Y*half}
	b = PlanPoint{X: center.X + dir.X*half, Y: center.Y + dir.Y*half}
	return a, b
}

// SurfaceYaw is the plan-space angle of a surface's width direction in
// radians, measured from the plan +X axis.
func SurfaceYaw(el SurfaceElement) float64 {
	dir := SurfaceDirection(el)
	return math.Atan2(dir.Y, dir.X)
}

// ObjectYaw is the plan-space rotation of an object's footprint, derived from
// the right basis vector like walls.
func ObjectYaw(t RigidTransform) float64 {
	dir, _ := PlanDirection(t.Right())
	return math.Atan2(dir.Y, dir.X)
}

// DeviceYaw is the device glyph orientation derived from the forward basis
// vector: atan2(forward.x, forward.z). A degenerate forward vector
// (device pointing straight up or down) yields 0.
func DeviceYaw(t RigidTransform) float64 {
	f := t.Forward()
	if math.Hypot(f.X, f.Z) < planarEpsilon {
		return 0
	}
	return math.Atan2(f.X, f.Z)
}

// TransformCheck reports whether a transform's rotation submatrix is a
// plausible rigid rotation, with human-readable issues when it is not.
type TransformCheck struct {
	Valid  bool
	Issues []string
}

// CheckTransform inspects the 3x3 rotation submatrix of t. A proper rigid
// rotation has unit-length basis columns and determinant ~1. This is a
// diagnostic: the pipeline keeps rendering invalid transforms, it just gives
// callers something to log.
func CheckTransform(t RigidTransform) TransformCheck {
	check := TransformCheck{Valid: true}

	r := mat.NewDense(3, 3, []float64{
		t.Matrix[0][0], t.Matrix[0][1], t.Matrix[0][2],
		t.Matrix[1][0], t.Matrix[1][1], t.Matrix[1][2],
		t.Matrix[2][0], t.Matrix[2][1], t.Matrix[2][2],
	})

	det := mat.Det(r)
	if math.IsNaN(det) || math.Abs(det-1.0) > basisTolerance {
		check.Valid = false
		check.Issues = append(check.Issues, "determinant deviates from 1 (not a proper rotation)")
	}

	for i, v := range []Vec3{t.Right(), t.Up(), t.Forward()} {
		length := math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
		if math.Abs(length-1.0) > basisTolerance {
			check.Valid = false
			names := [3]string{"right", "up", "forward"}
			check.Issues = append(check.Issues, names[i]+" basis vector is not unit length")
		}
	}

	return check
}
