package gesture

import (
	"math"

	"github.com/wavespeak/go-wavespeak/pkg/pose"
)

// Classifier maps one hand pose to a gesture label.
// Implementations must be pure: exactly one gesture per call, None for
// ambiguous or degenerate poses, and no failures on well-formed input.
type Classifier interface {
	Classify(p *pose.Pose) Gesture
}

// Config holds the geometric thresholds for the rule classifier.
type Config struct {
	// OKSignMaxDist is the maximum thumb-index tip distance for ok_sign.
	OKSignMaxDist float64

	// PinchMaxDist is the maximum thumb-index tip distance for pinch.
	PinchMaxDist float64
}

// DefaultConfig returns the tuned production thresholds.
func DefaultConfig() Config {
	return Config{
		OKSignMaxDist: 0.05,
		PinchMaxDist:  0.08,
	}
}

// RuleClassifier decides gestures from fingertip-versus-base ordering and
// thumb-index proximity. Landmark Y grows downward, so a raised fingertip
// has a smaller Y than its base joint.
type RuleClassifier struct {
	cfg Config
}

// NewRuleClassifier creates a classifier with the given thresholds.
func NewRuleClassifier(cfg Config) *RuleClassifier {
	return &RuleClassifier{cfg: cfg}
}

// Classify returns the gesture for a pose, or None when the pose is
// missing, incomplete, or matches no rule.
func (c *RuleClassifier) Classify(p *pose.Pose) Gesture {
	if !p.Complete() {
		return None
	}

	thumbTip, _ := p.Landmark(pose.ThumbTip)
	thumbIP, _ := p.Landmark(pose.ThumbIP)
	indexTip, _ := p.Landmark(pose.IndexTip)
	middleTip, _ := p.Landmark(pose.MiddleTip)
	ringTip, _ := p.Landmark(pose.RingTip)
	pinkyTip, _ := p.Landmark(pose.PinkyTip)
	indexBase, _ := p.Landmark(pose.IndexMCP)
	middleBase, _ := p.Landmark(pose.MiddleMCP)
	ringBase, _ := p.Landmark(pose.RingMCP)
	pinkyBase, _ := p.Landmark(pose.PinkyMCP)

	thumbUp := thumbTip.Y < thumbIP.Y
	indexUp := indexTip.Y < indexBase.Y
	middleUp := middleTip.Y < middleBase.Y
	ringUp := ringTip.Y < ringBase.Y
	pinkyUp := pinkyTip.Y < pinkyBase.Y

	fingersUp := 0
	for _, up := range []bool{indexUp, middleUp, ringUp, pinkyUp} {
		if up {
			fingersUp++
		}
	}

	switch {
	case thumbUp && fingersUp == 0:
		return ThumbsUp
	case indexUp && middleUp && !ringUp && !pinkyUp:
		return Peace
	case fingersUp == 0 && !thumbUp:
		return Fist
	case fingersUp == 4 && thumbUp:
		return OpenPalm
	case indexUp && !middleUp && !ringUp && !pinkyUp:
		return Pointing
	}

	thumbIndexDist := math.Hypot(thumbTip.X-indexTip.X, thumbTip.Y-indexTip.Y)
	if thumbIndexDist < c.cfg.OKSignMaxDist && middleUp && ringUp {
		return OKSign
	}
	if thumbIndexDist < c.cfg.PinchMaxDist && !middleUp && !ringUp {
		return Pinch
	}

	return None
}

// Verify RuleClassifier implements Classifier at compile time.
var _ Classifier = (*RuleClassifier)(nil)
