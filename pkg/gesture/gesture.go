// Package gesture classifies hand poses into discrete gesture labels.
//
// The gesture set is fixed and closed; the geometric decision policy is a
// replaceable strategy behind the Classifier interface.
package gesture

// Gesture is a discrete classified hand signal.
type Gesture string

// The fixed gesture set. None is the absence of a recognized gesture.
const (
	ThumbsUp Gesture = "thumbs_up"
	Peace    Gesture = "peace"
	Fist     Gesture = "fist"
	OpenPalm Gesture = "open_palm"
	Pointing Gesture = "pointing"
	OKSign   Gesture = "ok_sign"
	Pinch    Gesture = "pinch"
	None     Gesture = "none"
)

// known lists every gesture a classifier can emit, in a stable order.
// None is excluded: it is the default, not a mappable gesture.
var known = []Gesture{ThumbsUp, Peace, Fist, OpenPalm, Pointing, OKSign, Pinch}

// Known returns the fixed set of mappable gestures in stable order.
func Known() []Gesture {
	out := make([]Gesture, len(known))
	copy(out, known)
	return out
}

// Valid reports whether g belongs to the fixed mappable set.
func (g Gesture) Valid() bool {
	for _, k := range known {
		if g == k {
			return true
		}
	}
	return false
}

// String implements fmt.Stringer.
func (g Gesture) String() string {
	return string(g)
}
