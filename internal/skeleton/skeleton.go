// Package skeleton models tracked skeletons and their joints as delivered by
// the depth sensor's body tracker.
package skeleton

import "math"

// Joint indices following the Kinect v1 skeleton convention.
const (
	HipCenter = iota
	Spine
	ShoulderCenter
	Head
	ShoulderLeft
	ElbowLeft
	WristLeft
	HandLeft
	ShoulderRight
	ElbowRight
	WristRight
	HandRight
	HipLeft
	KneeLeft
	AnkleLeft
	FootLeft
	HipRight
	KneeRight
	AnkleRight
	FootRight
	NumJoints
)

// TrackingState describes how confidently a joint was located.
type TrackingState int

const (
	NotTracked TrackingState = iota
	Inferred
	Tracked
)

// String returns the state name.
func (s TrackingState) String() string {
	switch s {
	case Inferred:
		return "inferred"
	case Tracked:
		return "tracked"
	default:
		return "not_tracked"
	}
}

// State describes how completely a skeleton was tracked.
type State int

const (
	StateNotTracked State = iota
	StatePositionOnly
	StateTracked
)

// Point3D is a position in sensor space, in metres. Z grows away from the sensor.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Joint is one skeletal landmark.
type Joint struct {
	Position Point3D       `json:"position"`
	State    TrackingState `json:"state"`
}

// Skeleton is one tracked body.
type Skeleton struct {
	ID       int              `json:"id"`
	State    State            `json:"state"`
	Position Point3D          `json:"position"`
	Joints   [NumJoints]Joint `json:"joints"`
}

// Side selects one of the two hands.
type Side int

const (
	Left Side = iota
	Right
)

// Sides lists both hands in processing order.
var Sides = [2]Side{Left, Right}

// String returns "left" or "right".
func (s Side) String() string {
	if s == Right {
		return "right"
	}
	return "left"
}

// HandJoint returns the joint index of the hand on side s.
func HandJoint(s Side) int {
	if s == Right {
		return HandRight
	}
	return HandLeft
}

// Hand returns the hand joint on side s.
func (sk *Skeleton) Hand(s Side) Joint {
	return sk.Joints[HandJoint(s)]
}

// SelectTarget returns the index of the fully tracked skeleton nearest to the
// sensor. Ties keep the first one encountered. It returns -1 when no skeleton
// is fully tracked.
func SelectTarget(skeletons []Skeleton) int {
	target := -1
	nearest := math.Inf(1)
	for i := range skeletons {
		if skeletons[i].State != StateTracked {
			continue
		}
		if z := skeletons[i].Position.Z; z < nearest {
			nearest = z
			target = i
		}
	}
	return target
}
