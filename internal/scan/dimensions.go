package scan

import "math"

// Dimensions is the overall bounding extent of the scanned room in meters:
// Width along scan X, Height along the vertical axis, Length along scan Z.
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Length float64 `json:"length"`
}

// ExtractDimensions computes the tightest axis-aligned bounding box
// containing every wall's half-extent: horizontally the decomposed endpoint
// pair, vertically position.y ± height/2. Doors, windows and objects are
// contained by the walls and do not contribute. Returns zero dimensions for
// a snapshot with no walls.
func ExtractDimensions(snap *Snapshot) Dimensions {
	if snap == nil {
		return Dimensions{}
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	minZ, maxZ := math.Inf(1), math.Inf(-1)
	found := false

	for _, el := range snap.Surfaces {
		if el.Kind != SurfaceWall {
			continue
		}
		found = true

		a, b := SurfaceEndpoints(el)
		minX = math.Min(minX, math.Min(a.X, b.X))
		maxX = math.Max(maxX, math.Max(a.X, b.X))
		minZ = math.Min(minZ, math.Min(a.Y, b.Y))
		maxZ = math.Max(maxZ, math.Max(a.Y, b.Y))

		halfH := el.Height / 2
		minY = math.Min(minY, el.Transform.Position.Y-halfH)
		maxY = math.Max(maxY, el.Transform.Position.Y+halfH)
	}

	if !found {
		return Dimensions{}
	}
	return Dimensions{
		Width:  maxX - minX,
		Height: maxY - minY,
		Length: maxZ - minZ,
	}
}

// Export document wire types. The asymmetry is deliberate and load-bearing:
// walls carry full transform fidelity (position plus the 4x4 matrix), while
// doors, windows and objects carry position only. Downstream consumers rely
// on exactly this shape; do not "fix" it.

// ExportDocument is the serialized dimensional summary of one snapshot.
type ExportDocument struct {
	Dimensions Dimensions      `json:"dimensions"`
	Walls      []WallRecord    `json:"walls"`
	Doors      []OpeningRecord `json:"doors"`
	Windows    []OpeningRecord `json:"windows"`
	Objects    []ObjectRecord  `json:"objects"`
}

// SurfaceSize is a wall's measured size.
type SurfaceSize struct {
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Thickness float64 `json:"thickness"`
}

// BoxSize is the measured size of an opening or object.
type BoxSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Depth  float64 `json:"depth"`
}

// FullTransform carries position and the complete 4x4 matrix (walls only).
type FullTransform struct {
	Position Vec3          `json:"position"`
	Matrix   [4][4]float64 `json:"matrix"`
}

// PositionTransform carries position only (doors, windows, objects).
type PositionTransform struct {
	Position Vec3 `json:"position"`
}

// WallRecord is one exported wall.
type WallRecord struct {
	ID         string        `json:"id"`
	Dimensions SurfaceSize   `json:"dimensions"`
	Transform  FullTransform `json:"transform"`
}

// OpeningRecord is one exported door or window.
type OpeningRecord struct {
	ID         string            `json:"id"`
	Dimensions BoxSize           `json:"dimensions"`
	Transform  PositionTransform `json:"transform"`
}

// ObjectRecord is one exported object.
type ObjectRecord struct {
	ID         string            `json:"id"`
	Category   string            `json:"category"`
	Confidence string            `json:"confidence"`
	Dimensions BoxSize           `json:"dimensions"`
	Transform  PositionTransform `json:"transform"`
}

// BuildExportDocument serializes a snapshot into the export document. Element
// order follows capture order. The lists are always non-nil so the JSON
// encodes as [] rather than null.
func BuildExportDocument(snap *Snapshot) *ExportDocument {
	doc := &ExportDocument{
		Walls:   []WallRecord{},
		Doors:   []OpeningRecord{},
		Windows: []OpeningRecord{},
		Objects: []ObjectRecord{},
	}
	if snap == nil {
		return doc
	}

	doc.Dimensions = ExtractDimensions(snap)

	for _, el := range snap.Surfaces {
		switch el.Kind {
		case SurfaceWall:
			doc.Walls = append(doc.Walls, WallRecord{
				ID: el.ID,
				Dimensions: SurfaceSize{
					Width:     el.Width,
					Height:    el.Height,
					Thickness: el.Thickness,
				},
				Transform: FullTransform{
					Position: el.Transform.Position,
					Matrix:   el.Transform.Matrix,
				},
			})
		case SurfaceDoor, SurfaceWindow:
			rec := OpeningRecord{
				ID: el.ID,
				Dimensions: BoxSize{
					Width:  el.Width,
					Height: el.Height,
					Depth:  el.Thickness,
				},
				Transform: PositionTransform{Position: el.Transform.Position},
			}
			if el.Kind == SurfaceDoor {
				doc.Doors = append(doc.Doors, rec)
			} else {
				doc.Windows = append(doc.Windows, rec)
			}
		}
	}

	for _, obj := range snap.Objects {
		doc.Objects = append(doc.Objects, ObjectRecord{
			ID:         obj.ID,
			Category:   obj.Category,
			Confidence: obj.Confidence,
			Dimensions: BoxSize{
				Width:  obj.Width,
				Height: obj.Height,
				Depth:  obj.Depth,
			},
			Transform: PositionTransform{Position: obj.Transform.Position},
		})
	}

	return doc
}
