package xr

// HandJoint indexes the joint arrays of a hand-tracking update.
type HandJoint int

const (
	HandJointPalm  HandJoint = 0
	HandJointWrist HandJoint = 1
)

// HandJointCount is the number of joints in the standard hand joint set.
const HandJointCount = 26

// Hand selects a tracked hand.
type Hand int

const (
	HandLeft  Hand = 0
	HandRight Hand = 1
)

func (h Hand) String() string {
	if h == HandRight {
		return "right"
	}
	return "left"
}

// HandJointLocation is one located joint.
type HandJointLocation struct {
	Flags  SpaceLocationFlags
	Pose   Posef
	Radius float32
}

// HandJointLocations is a located hand. IsActive is false when the runtime
// is not currently tracking the hand at all.
type HandJointLocations struct {
	IsActive       bool
	JointLocations [HandJointCount]HandJointLocation
}

// HandJointVelocity is one joint's velocity in the base space.
type HandJointVelocity struct {
	Flags           SpaceVelocityFlags
	LinearVelocity  Vector3f
	AngularVelocity Vector3f
}

// HandJointVelocities holds velocities for every joint.
type HandJointVelocities struct {
	JointVelocities [HandJointCount]HandJointVelocity
}
