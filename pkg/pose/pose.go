// Package pose defines the hand pose model and the detector collaborator
// interface. Pose extraction itself is an external capability; this package
// only models its output and ships a remote-service client plus a mock.
package pose

// NumLandmarks is the number of landmarks in a complete hand pose.
const NumLandmarks = 21

// Landmark indices for a hand pose. Index order follows the standard
// 21-point hand topology: wrist, then four joints per finger.
const (
	Wrist = iota
	ThumbCMC
	ThumbMCP
	ThumbIP
	ThumbTip
	IndexMCP
	IndexPIP
	IndexDIP
	IndexTip
	MiddleMCP
	MiddlePIP
	MiddleDIP
	MiddleTip
	RingMCP
	RingPIP
	RingDIP
	RingTip
	PinkyMCP
	PinkyPIP
	PinkyDIP
	PinkyTip
)

// Landmark is one labeled point of a hand pose.
// Coordinates are normalized to [0,1] relative to the frame;
// Z is depth relative to the wrist (negative = toward the camera).
type Landmark struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Pose is an ordered sequence of hand landmarks for one frame.
// A Pose is immutable once produced.
type Pose struct {
	Landmarks []Landmark `json:"landmarks"`
	Score     float64    `json:"score"`
}

// Landmark returns the landmark at index i and whether it exists.
// Classifiers must tolerate short poses, so lookups are checked.
func (p *Pose) Landmark(i int) (Landmark, bool) {
	if p == nil || i < 0 || i >= len(p.Landmarks) {
		return Landmark{}, false
	}
	return p.Landmarks[i], true
}

// Complete reports whether the pose carries the full landmark set.
func (p *Pose) Complete() bool {
	return p != nil && len(p.Landmarks) >= NumLandmarks
}
