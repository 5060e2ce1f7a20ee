package scan

import (
	"encoding/json"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExtractDimensions_RectangularRoom(t *testing.T) {
	// Four walls of a 5x4 room, 2.4m high, centered at y=1.2.
	snap := &Snapshot{Surfaces: []SurfaceElement{
		wallAlong("n", 2.5, 1.2, 0, 1, 0, 5),
		wallAlong("s", 2.5, 1.2, 4, 1, 0, 5),
		wallAlong("w", 0, 1.2, 2, 0, 1, 4),
		wallAlong("e", 5, 1.2, 2, 0, 1, 4),
	}}

	got := ExtractDimensions(snap)
	want := Dimensions{Width: 5, Height: 2.4, Length: 4}

	const tol = 1e-9
	if math.Abs(got.Width-want.Width) > tol ||
		math.Abs(got.Height-want.Height) > tol ||
		math.Abs(got.Length-want.Length) > tol {
		t.Errorf("dimensions = %+v, want %+v", got, want)
	}
}

func TestExtractDimensions_TightestBox(t *testing.T) {
	// Random walls: the reported extent must equal the min/max over all
	// decomposed endpoints, never looser and never tighter.
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 20; trial++ {
		n := 2 + rng.Intn(6)
		snap := &Snapshot{}

		minX, maxX := math.Inf(1), math.Inf(-1)
		minZ, maxZ := math.Inf(1), math.Inf(-1)
		for i := 0; i < n; i++ {
			angle := rng.Float64() * 2 * math.Pi
			w := wallAlong("w", rng.Float64()*10-5, 1.2, rng.Float64()*10-5,
				math.Cos(angle), math.Sin(angle), 0.5+rng.Float64()*4)
			snap.Surfaces = append(snap.Surfaces, w)

			a, b := SurfaceEndpoints(w)
			minX = math.Min(minX, math.Min(a.X, b.X))
			maxX = math.Max(maxX, math.Max(a.X, b.X))
			minZ = math.Min(minZ, math.Min(a.Y, b.Y))
			maxZ = math.Max(maxZ, math.Max(a.Y, b.Y))
		}

		got := ExtractDimensions(snap)
		const tol = 1e-9
		if math.Abs(got.Width-(maxX-minX)) > tol {
			t.Errorf("trial %d: width %v, want %v", trial, got.Width, maxX-minX)
		}
		if math.Abs(got.Length-(maxZ-minZ)) > tol {
			t.Errorf("trial %d: length %v, want %v", trial, got.Length, maxZ-minZ)
		}
	}
}

func TestExtractDimensions_NoWalls(t *testing.T) {
	for _, snap := range []*Snapshot{nil, {}, {Surfaces: []SurfaceElement{
		{ID: "d", Kind: SurfaceDoor, Transform: IdentityTransform(), Width: 1, Height: 2},
	}}} {
		if got := ExtractDimensions(snap); got != (Dimensions{}) {
			t.Errorf("wall-less snapshot produced %+v, want zero", got)
		}
	}
}

func TestBuildExportDocument_Shape(t *testing.T) {
	snap := testSnapshot()
	doc := BuildExportDocument(snap)

	if len(doc.Walls) != 2 || len(doc.Doors) != 1 || len(doc.Windows) != 1 || len(doc.Objects) != 1 {
		t.Fatalf("unexpected counts: %d walls, %d doors, %d windows, %d objects",
			len(doc.Walls), len(doc.Doors), len(doc.Windows), len(doc.Objects))
	}

	// Walls keep the full matrix; the wire form must say so.
	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}

	var walls []map[string]json.RawMessage
	if err := json.Unmarshal(decoded["walls"], &walls); err != nil {
		t.Fatal(err)
	}
	var wallTransform map[string]json.RawMessage
	if err := json.Unmarshal(walls[0]["transform"], &wallTransform); err != nil {
		t.Fatal(err)
	}
	if _, ok := wallTransform["matrix"]; !ok {
		t.Error("wall transform is missing the matrix field")
	}

	// Doors carry position only.
	var doors []map[string]json.RawMessage
	if err := json.Unmarshal(decoded["doors"], &doors); err != nil {
		t.Fatal(err)
	}
	var doorTransform map[string]json.RawMessage
	if err := json.Unmarshal(doors[0]["transform"], &doorTransform); err != nil {
		t.Fatal(err)
	}
	if _, ok := doorTransform["matrix"]; ok {
		t.Error("door transform must not carry a matrix")
	}
	if _, ok := doorTransform["position"]; !ok {
		t.Error("door transform is missing the position field")
	}
}

func TestBuildExportDocument_EmptyListsNotNull(t *testing.T) {
	raw, err := json.Marshal(BuildExportDocument(nil))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), "null") {
		t.Errorf("empty export encodes null lists: %s", raw)
	}
}

func TestBuildExportDocument_RoundTrip(t *testing.T) {
	doc := BuildExportDocument(testSnapshot())

	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	var back ExportDocument
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(doc, &back); diff != "" {
		t.Errorf("export document round trip mismatch (-want +got):\n%s", diff)
	}
}
