// Package xr describes the tracking runtime as seen by the HMD layer.
//
// The runtime is an external collaborator: a Session is created, torn down
// and recreated elsewhere, and this module only reads from it. Types mirror
// the runtime's conventions (right-handed, +Y up, -Z forward, quaternion
// orientations) so conversion to the legacy layout happens in one place.
package xr

// Time is the runtime's logical timestamp in nanoseconds.
type Time int64

// Space is an opaque handle to a tracked or reference space.
type Space uint64

// NullSpace is the zero handle.
const NullSpace Space = 0

// ReferenceSpaceType names the reference spaces every session provides.
type ReferenceSpaceType int32

const (
	ReferenceSpaceView  ReferenceSpaceType = 1
	ReferenceSpaceLocal ReferenceSpaceType = 2
	ReferenceSpaceStage ReferenceSpaceType = 3
)

func (t ReferenceSpaceType) String() string {
	switch t {
	case ReferenceSpaceView:
		return "view"
	case ReferenceSpaceLocal:
		return "local"
	case ReferenceSpaceStage:
		return "stage"
	default:
		return "unknown"
	}
}

type Vector2f struct {
	X, Y float32
}

type Vector3f struct {
	X, Y, Z float32
}

// Quaternionf is a unit quaternion; W is the real part.
type Quaternionf struct {
	X, Y, Z, W float32
}

// IdentityOrientation is the no-rotation quaternion.
var IdentityOrientation = Quaternionf{W: 1}

// Posef is a rigid transform: rotate by Orientation, then translate by Position.
type Posef struct {
	Orientation Quaternionf
	Position    Vector3f
}

// IdentityPose has no rotation and no translation.
var IdentityPose = Posef{Orientation: IdentityOrientation}

// Fovf holds the four half-angles of a view frustum in radians. AngleLeft
// and AngleDown are negative for a frustum that contains the optical axis.
type Fovf struct {
	AngleLeft  float32
	AngleRight float32
	AngleUp    float32
	AngleDown  float32
}

// View is one eye's located pose and field of view.
type View struct {
	Pose Posef
	Fov  Fovf
}

// ViewStateFlags report which parts of a located view set are valid.
type ViewStateFlags uint64

const (
	ViewStateOrientationValid   ViewStateFlags = 0x1
	ViewStatePositionValid      ViewStateFlags = 0x2
	ViewStateOrientationTracked ViewStateFlags = 0x4
	ViewStatePositionTracked    ViewStateFlags = 0x8
)

// ViewState is returned by LocateViews alongside the views.
type ViewState struct {
	Flags ViewStateFlags
}

// OrientationValid reports whether the orientation bit is set.
func (s ViewState) OrientationValid() bool { return s.Flags&ViewStateOrientationValid != 0 }

// PositionValid reports whether the position bit is set.
func (s ViewState) PositionValid() bool { return s.Flags&ViewStatePositionValid != 0 }

// Valid reports whether both orientation and position are valid.
func (s ViewState) Valid() bool { return s.OrientationValid() && s.PositionValid() }

// SpaceLocationFlags report which parts of a space location are valid.
type SpaceLocationFlags uint64

const (
	SpaceLocationOrientationValid   SpaceLocationFlags = 0x1
	SpaceLocationPositionValid      SpaceLocationFlags = 0x2
	SpaceLocationOrientationTracked SpaceLocationFlags = 0x4
	SpaceLocationPositionTracked    SpaceLocationFlags = 0x8
)

// PositionValid reports whether the position bit is set.
func (f SpaceLocationFlags) PositionValid() bool { return f&SpaceLocationPositionValid != 0 }

// OrientationValid reports whether the orientation bit is set.
func (f SpaceLocationFlags) OrientationValid() bool { return f&SpaceLocationOrientationValid != 0 }

// SpaceLocation is a located space.
type SpaceLocation struct {
	Flags SpaceLocationFlags
	Pose  Posef
}

// SpaceVelocityFlags report which velocity components are valid.
type SpaceVelocityFlags uint64

const (
	SpaceVelocityLinearValid  SpaceVelocityFlags = 0x1
	SpaceVelocityAngularValid SpaceVelocityFlags = 0x2
)

// SpaceVelocity is expressed in the base space, so it needs no further
// transform when reported alongside a pose in that base.
type SpaceVelocity struct {
	Flags           SpaceVelocityFlags
	LinearVelocity  Vector3f
	AngularVelocity Vector3f
}

// ViewConfigurationView carries the runtime's recommended per-eye sizes.
type ViewConfigurationView struct {
	RecommendedImageRectWidth  uint32
	RecommendedImageRectHeight uint32
	MaxImageRectWidth          uint32
	MaxImageRectHeight         uint32
}
