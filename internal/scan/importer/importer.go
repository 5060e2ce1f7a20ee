// Package importer parses captured room-scan documents into snapshots.
//
// The capture format mirrors the export document: walls carry a full
// transform (position plus 4x4 matrix), while doors, windows and objects
// carry position only. Captures produced by older tooling sometimes omit
// matrices or element ids; both are tolerated.
package importer

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/roomtrace-data/floorplan.report/internal/scan"
)

// captureDocument is the on-disk capture schema.
type captureDocument struct {
	CapturedAt time.Time        `json:"captured_at"`
	Device     *captureElement  `json:"device,omitempty"`
	Walls      []captureElement `json:"walls"`
	Doors      []captureElement `json:"doors"`
	Windows    []captureElement `json:"windows"`
	Objects    []captureElement `json:"objects"`
}

// captureElement is one element of any kind; unused fields stay zero.
type captureElement struct {
	ID         string           `json:"id"`
	Category   string           `json:"category,omitempty"`
	Confidence string           `json:"confidence,omitempty"`
	Dimensions captureSize      `json:"dimensions"`
	Transform  captureTransform `json:"transform"`
}

type captureSize struct {
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Depth     float64 `json:"depth"`
	Thickness float64 `json:"thickness"`
}

type captureTransform struct {
	Position scan.Vec3      `json:"position"`
	Matrix   *[4][4]float64 `json:"matrix,omitempty"`
}

// rigid converts a capture transform, falling back to an identity basis when
// the matrix is absent. Position is always honored.
func (t captureTransform) rigid() scan.RigidTransform {
	out := scan.IdentityTransform()
	out.Position = t.Position
	if t.Matrix != nil {
		out.Matrix = *t.Matrix
	}
	return out
}

// elementID returns the capture id, minting a fresh UUID when missing so
// every element stays addressable downstream.
func elementID(id string) string {
	if id != "" {
		return id
	}
	return uuid.New().String()
}

// Parse decodes a capture document into a snapshot.
func Parse(r io.Reader) (*scan.Snapshot, error) {
	var doc captureDocument
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode capture document: %w", err)
	}
	return fromDocument(&doc), nil
}

// Load reads and parses a capture file.
func Load(path string) (*scan.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture file: %w", err)
	}
	defer f.Close()

	snap, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("capture file %s: %w", path, err)
	}
	return snap, nil
}

func fromDocument(doc *captureDocument) *scan.Snapshot {
	snap := &scan.Snapshot{CapturedAt: doc.CapturedAt}
	if snap.CapturedAt.IsZero() {
		snap.CapturedAt = time.Now()
	}

	if doc.Device != nil {
		t := doc.Device.Transform.rigid()
		snap.DeviceTransform = &t
	}

	appendSurface := func(el captureElement, kind scan.SurfaceKind) {
		thickness := el.Dimensions.Thickness
		if thickness == 0 {
			thickness = el.Dimensions.Depth
		}
		snap.Surfaces = append(snap.Surfaces, scan.SurfaceElement{
			ID:        elementID(el.ID),
			Kind:      kind,
			Transform: el.Transform.rigid(),
			Width:     el.Dimensions.Width,
			Height:    el.Dimensions.Height,
			Thickness: thickness,
		})
	}

	for _, el := range doc.Walls {
		appendSurface(el, scan.SurfaceWall)
	}
	for _, el := range doc.Doors {
		appendSurface(el, scan.SurfaceDoor)
	}
	for _, el := range doc.Windows {
		appendSurface(el, scan.SurfaceWindow)
	}

	for _, el := range doc.Objects {
		snap.Objects = append(snap.Objects, scan.ObjectElement{
			ID:         elementID(el.ID),
			Category:   el.Category,
			Confidence: el.Confidence,
			Transform:  el.Transform.rigid(),
			Width:      el.Dimensions.Width,
			Height:     el.Dimensions.Height,
			Depth:      el.Dimensions.Depth,
		})
	}

	return snap
}
