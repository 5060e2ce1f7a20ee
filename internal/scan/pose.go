package scan

// EstimateDevicePose returns the estimated plan-space device position for a
// snapshot: the centroid of all wall positions.
//
// This is a deliberate, documented approximation. The capture API does not
// expose a tracked device pose, so the wall centroid stands in for it. The
// estimate lags the real device and jumps as new walls are discovered; the
// trail recorder stores these raw estimates without smoothing so the error is
// visible rather than hidden. If a true pose ever becomes available upstream,
// this function is the only thing that changes; the trail's sampling and
// eviction contract stays as is.
//
// ok is false when the snapshot is nil or contains no walls.
func EstimateDevicePose(snap *Snapshot) (pos PlanPoint, ok bool) {
	if snap == nil {
		return PlanPoint{}, false
	}

	var sumX, sumY float64
	n := 0
	for _, el := range snap.Surfaces {
		if el.Kind != SurfaceWall {
			continue
		}
		p := PlanPosition(el.Transform)
		sumX += p.X
		sumY += p.Y
		n++
	}
	if n == 0 {
		return PlanPoint{}, false
	}
	return PlanPoint{X: sumX / float64(n), Y: sumY / float64(n)}, true
}
