package gesture

import "github.com/ayusman/mudra/internal/detector"

// Category is the gesture recognized on a single frame.
type Category int

const (
	// CategoryNone means no recognized gesture (or no hand).
	CategoryNone Category = iota
	// CategoryFist is all four fingers folded, used for swipes.
	CategoryFist
	// CategoryThumbUp is a fist with the thumb raised, used for play/pause.
	CategoryThumbUp
	// CategoryPinch is middle, ring and pinky folded, used for volume.
	CategoryPinch
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryFist:
		return "fist"
	case CategoryThumbUp:
		return "thumb-up"
	case CategoryPinch:
		return "pinch"
	default:
		return "none"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Point is a 2D position in normalized image coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pose holds the geometric predicates of one hand on one frame.
// Several predicates may hold at once; Category resolves them.
type Pose struct {
	Fingers FingerStatus
	// Fist is all four fingers folded.
	Fist bool
	// ThumbUp is a fist with the thumb tip raised above the IP joint.
	ThumbUp bool
	// Pinch is middle, ring and pinky folded, independent of the index.
	Pinch bool
	// PinchDistance is the thumb tip to index tip distance.
	PinchDistance float64
	// Centroid is the midpoint of the wrist and the middle finger base.
	Centroid Point
}

// Classify computes the pose of h. A nil hand yields the zero Pose.
func Classify(h *detector.HandLandmarks, cfg Config) Pose {
	if h == nil {
		return Pose{}
	}

	fingers := Fingers(h)
	thumbTip := h.Points[detector.ThumbTip]
	thumbIP := h.Points[detector.ThumbIP]
	wrist := h.Points[detector.Wrist]
	palm := h.Points[detector.MiddleMCP]

	p := Pose{
		Fingers:       fingers,
		Fist:          fingers.AllFolded(),
		Pinch:         fingers[Middle] && fingers[Ring] && fingers[Pinky],
		PinchDistance: detector.Distance2D(thumbTip, h.Points[detector.IndexTip]),
		Centroid: Point{
			X: (wrist.X + palm.X) / 2,
			Y: (wrist.Y + palm.Y) / 2,
		},
	}
	// Smaller y is higher on screen.
	p.ThumbUp = p.Fist && thumbTip.Y < thumbIP.Y-cfg.ThumbUpMargin
	return p
}

// PinchActive reports whether the pinch tracker should run on this pose.
func (p Pose) PinchActive() bool {
	return p.Pinch && !p.ThumbUp
}

// SwipeActive reports whether the swipe tracker should sample this pose.
// A raised thumb is never read as a swipe fist.
func (p Pose) SwipeActive() bool {
	return p.Fist && !p.ThumbUp
}

// precedence is evaluated top to bottom; the first rule that holds wins.
var precedence = []struct {
	category Category
	holds    func(Pose) bool
}{
	{CategoryPinch, Pose.PinchActive},
	{CategoryThumbUp, func(p Pose) bool { return p.ThumbUp }},
	{CategoryFist, func(p Pose) bool { return p.Fist }},
}

// Category resolves the pose into a single category using the fixed
// precedence pinch, thumb-up, fist.
func (p Pose) Category() Category {
	for _, rule := range precedence {
		if rule.holds(p) {
			return rule.category
		}
	}
	return CategoryNone
}

// Status labels shown to the user.
const (
	LabelSearching = "Searching..."
	LabelHand      = "Hand"
	LabelPinch     = "Pinch volume"
	LabelFist      = "Fist (swipe)"
	LabelPlayPause = "Play / pause"
)

// Label returns the display label for the pose. Display precedence differs
// from Category: the most specific hand shape is shown, so a fist (which also
// satisfies the pinch shape) is labelled as a swipe fist.
func (p Pose) Label(hasHand bool) string {
	switch {
	case !hasHand:
		return LabelSearching
	case p.ThumbUp:
		return LabelPlayPause
	case p.Fist:
		return LabelFist
	case p.Pinch:
		return LabelPinch
	default:
		return LabelHand
	}
}
