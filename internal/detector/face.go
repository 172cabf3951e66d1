package detector

// DefaultFacePadding is the margin added on each side of a detected face box
// before testing whether a wrist sits inside it.
const DefaultFacePadding = 0.05

// FaceBox is a normalized face bounding rectangle.
type FaceBox struct {
	XMin float64 `json:"xmin"`
	YMin float64 `json:"ymin"`
	XMax float64 `json:"xmax"`
	YMax float64 `json:"ymax"`
}

// Pad returns the box grown by margin on each side.
func (b FaceBox) Pad(margin float64) FaceBox {
	return FaceBox{
		XMin: b.XMin - margin,
		YMin: b.YMin - margin,
		XMax: b.XMax + margin,
		YMax: b.YMax + margin,
	}
}

// Contains reports whether p lies strictly inside the box.
func (b FaceBox) Contains(p Point3D) bool {
	return b.XMin < p.X && p.X < b.XMax && b.YMin < p.Y && p.Y < b.YMax
}

// Observation is everything the tracker reported for one frame.
type Observation struct {
	Hands []HandLandmarks `json:"hands"`
	Faces []FaceBox       `json:"faces,omitempty"`
}

// SelectActive picks the hand that should drive gestures for this frame:
// the first hand whose wrist is not inside any padded face box. A hand resting
// against the face (chin, cheek) is ignored. Returns nil if no hand qualifies.
func SelectActive(obs *Observation, padding float64) *HandLandmarks {
	if obs == nil {
		return nil
	}

	faces := make([]FaceBox, len(obs.Faces))
	for i, f := range obs.Faces {
		faces[i] = f.Pad(padding)
	}

	for i := range obs.Hands {
		hand := &obs.Hands[i]
		wrist := hand.Points[Wrist]

		nearFace := false
		for _, f := range faces {
			if f.Contains(wrist) {
				nearFace = true
				break
			}
		}
		if !nearFace {
			return hand
		}
	}

	return nil
}
