package gesture

import "github.com/ayusman/mudra/internal/detector"

// Finger positions within a FingerStatus.
const (
	Index = iota
	Middle
	Ring
	Pinky
)

// FingerStatus holds the folded flag of index, middle, ring and pinky, in that order.
type FingerStatus [4]bool

var (
	fingerTips = [4]int{detector.IndexTip, detector.MiddleTip, detector.RingTip, detector.PinkyTip}
	fingerPIPs = [4]int{detector.IndexPIP, detector.MiddlePIP, detector.RingPIP, detector.PinkyPIP}
)

// Fingers classifies each non-thumb finger as folded or extended.
// A finger is folded when its tip is nearer the wrist than its PIP joint.
func Fingers(h *detector.HandLandmarks) FingerStatus {
	var status FingerStatus
	wrist := h.Points[detector.Wrist]
	for i := range status {
		tip := detector.SquaredDistance2D(h.Points[fingerTips[i]], wrist)
		pip := detector.SquaredDistance2D(h.Points[fingerPIPs[i]], wrist)
		status[i] = tip < pip
	}
	return status
}

// AllFolded reports whether all four fingers are folded.
func (s FingerStatus) AllFolded() bool {
	return s[Index] && s[Middle] && s[Ring] && s[Pinky]
}
