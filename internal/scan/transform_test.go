package scan

import (
	"math"
	"testing"
)

// wallAlong builds a wall whose right vector points along (dx, dz) in the
// horizontal plane, centered at (px, py, pz).
func wallAlong(id string, px, py, pz, dx, dz, width float64) SurfaceElement {
	t := IdentityTransform()
	t.Position = Vec3{X: px, Y: py, Z: pz}
	t.Matrix[0][0] = dx
	t.Matrix[1][0] = 0
	t.Matrix[2][0] = dz
	return SurfaceElement{
		ID:        id,
		Kind:      SurfaceWall,
		Transform: t,
		Width:     width,
		Height:    2.4,
		Thickness: 0.1,
	}
}

func TestSurfaceEndpoints_AxisAlignedWall(t *testing.T) {
	// Single wall centered at origin, width 4, along the local right axis.
	wall := wallAlong("w1", 0, 1.2, 0, 1, 0, 4)

	a, b := SurfaceEndpoints(wall)
	if math.Abs(a.X+2) > 1e-9 || math.Abs(a.Y) > 1e-9 {
		t.Errorf("expected start endpoint (-2,0), got (%v,%v)", a.X, a.Y)
	}
	if math.Abs(b.X-2) > 1e-9 || math.Abs(b.Y) > 1e-9 {
		t.Errorf("expected end endpoint (2,0), got (%v,%v)", b.X, b.Y)
	}
}

func TestSurfaceEndpoints_RoundTrip(t *testing.T) {
	// For walls built from a known direction and half-width, decomposition
	// must recover the construction endpoints within float tolerance.
	cases := []struct {
		name           string
		px, pz, dx, dz float64
		width          float64
	}{
		{"diagonal", 1.5, -2.0, math.Sqrt2 / 2, math.Sqrt2 / 2, 3.0},
		{"negative_x", -4, 0.5, -1, 0, 2.2},
		{"steep", 0, 0, 0.1, 0.9949874371, 5.0},
		{"offset", 10, 10, 0, 1, 0.8},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wall := wallAlong("w", tc.px, 0, tc.pz, tc.dx, tc.dz, tc.width)
			a, b := SurfaceEndpoints(wall)

			norm := math.Hypot(tc.dx, tc.dz)
			ux, uz := tc.dx/norm, tc.dz/norm
			half := tc.width / 2

			wantAX, wantAY := tc.px-ux*half, tc.pz-uz*half
			wantBX, wantBY := tc.px+ux*half, tc.pz+uz*half

			const tol = 1e-9
			if math.Abs(a.X-wantAX) > tol || math.Abs(a.Y-wantAY) > tol {
				t.Errorf("start endpoint: got (%v,%v), want (%v,%v)", a.X, a.Y, wantAX, wantAY)
			}
			if math.Abs(b.X-wantBX) > tol || math.Abs(b.Y-wantBY) > tol {
				t.Errorf("end endpoint: got (%v,%v), want (%v,%v)", b.X, b.Y, wantBX, wantBY)
			}
		})
	}
}

func TestPlanDirection_DegenerateFallsBack(t *testing.T) {
	// A right vector with near-zero horizontal length must yield the default
	// direction, never NaN and never a panic.
	cases := []Vec3{
		{X: 0, Y: 1, Z: 0},          // exactly vertical
		{X: 1e-5, Y: 0.999, Z: 0},   // sub-epsilon horizontal component
		{X: 0, Y: 0, Z: 0},          // zero vector
		{X: -1e-4, Y: 0, Z: 0.5e-4}, // tiny noise
	}

	for _, v := range cases {
		dir, ok := PlanDirection(v)
		if ok {
			t.Errorf("PlanDirection(%+v) reported ok for degenerate input", v)
		}
		if dir != fallbackDirection {
			t.Errorf("PlanDirection(%+v) = %+v, want fallback %+v", v, dir, fallbackDirection)
		}
		if math.IsNaN(dir.X) || math.IsNaN(dir.Y) {
			t.Errorf("PlanDirection(%+v) produced NaN", v)
		}
	}
}

func TestSurfaceEndpoints_DegenerateWallUsesFallback(t *testing.T) {
	wall := wallAlong("w", 3, 0, 4, 0, 0, 2) // zero right vector
	a, b := SurfaceEndpoints(wall)

	// Fallback direction is (1,0): endpoints straddle the position along X.
	if math.Abs(a.X-2) > 1e-9 || math.Abs(a.Y-4) > 1e-9 {
		t.Errorf("degenerate wall start: got (%v,%v), want (2,4)", a.X, a.Y)
	}
	if math.Abs(b.X-4) > 1e-9 || math.Abs(b.Y-4) > 1e-9 {
		t.Errorf("degenerate wall end: got (%v,%v), want (4,4)", b.X, b.Y)
	}
}

func TestDeviceYaw(t *testing.T) {
	cases := []struct {
		name    string
		forward Vec3
		want    float64
	}{
		{"facing_plus_z", Vec3{X: 0, Y: 0, Z: 1}, 0},
		{"facing_plus_x", Vec3{X: 1, Y: 0, Z: 0}, math.Pi / 2},
		{"facing_minus_z", Vec3{X: 0, Y: 0, Z: -1}, math.Pi},
		{"facing_minus_x", Vec3{X: -1, Y: 0, Z: 0}, -math.Pi / 2},
		{"degenerate_up", Vec3{X: 0, Y: 1, Z: 0}, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tf := IdentityTransform()
			tf.Matrix[0][2] = tc.forward.X
			tf.Matrix[1][2] = tc.forward.Y
			tf.Matrix[2][2] = tc.forward.Z

			got := DeviceYaw(tf)
			if math.Abs(math.Mod(got-tc.want+3*math.Pi, 2*math.Pi)-math.Pi) > 1e-9 {
				t.Errorf("DeviceYaw = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCheckTransform(t *testing.T) {
	if check := CheckTransform(IdentityTransform()); !check.Valid {
		t.Errorf("identity flagged invalid: %v", check.Issues)
	}

	// Scaled basis is not a rigid rotation.
	scaled := IdentityTransform()
	scaled.Matrix[0][0] = 2
	if check := CheckTransform(scaled); check.Valid {
		t.Error("scaled basis not flagged")
	}

	// A proper rotation about Y stays valid.
	rot := IdentityTransform()
	a := 0.7
	rot.Matrix[0][0] = math.Cos(a)
	rot.Matrix[2][0] = -math.Sin(a)
	rot.Matrix[0][2] = math.Sin(a)
	rot.Matrix[2][2] = math.Cos(a)
	if check := CheckTransform(rot); !check.Valid {
		t.Errorf("Y rotation flagged invalid: %v", check.Issues)
	}
}

func TestEstimateDevicePose(t *testing.T) {
	snap := &Snapshot{Surfaces: []SurfaceElement{
		wallAlong("w1", 0, 0, 0, 1, 0, 2),
		wallAlong("w2", 4, 0, 2, 0, 1, 2),
		wallAlong("w3", 2, 0, 4, 1, 0, 2),
		{ID: "d1", Kind: SurfaceDoor, Transform: IdentityTransform()}, // ignored
	}}

	pos, ok := EstimateDevicePose(snap)
	if !ok {
		t.Fatal("expected pose estimate for snapshot with walls")
	}
	if math.Abs(pos.X-2) > 1e-9 || math.Abs(pos.Y-2) > 1e-9 {
		t.Errorf("centroid = (%v,%v), want (2,2)", pos.X, pos.Y)
	}

	if _, ok := EstimateDevicePose(&Snapshot{}); ok {
		t.Error("expected no pose estimate for wall-less snapshot")
	}
	if _, ok := EstimateDevicePose(nil); ok {
		t.Error("expected no pose estimate for nil snapshot")
	}
}
