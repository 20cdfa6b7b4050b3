// Package pose converts located runtime spaces and hand-joint sets into
// legacy tracked-device pose records.
package pose

import (
	"fmt"
	"log/slog"

	"github.com/teslashibe/go-hmdbridge/pkg/vr"
	"github.com/teslashibe/go-hmdbridge/pkg/xform"
	"github.com/teslashibe/go-hmdbridge/pkg/xr"
)

// GripOffset places an approximate controller grip relative to the palm
// joint of a tracked hand.
type GripOffset struct {
	// Translation in metres, in the palm joint's axes.
	Translation xform.Vec3
	// EulerDegrees is applied as X, then Y, then Z.
	EulerDegrees xform.Vec3
}

// Matrix returns the offset as a transform applied on the palm's local side.
func (g GripOffset) Matrix() xform.Mat4 {
	return xform.FromOriginEulerDegrees(g.Translation, g.EulerDegrees)
}

// Mirror reflects the offset across the hand's sagittal plane.
func (g GripOffset) Mirror() GripOffset {
	return GripOffset{
		Translation:  xform.Vec3{-g.Translation[0], g.Translation[1], g.Translation[2]},
		EulerDegrees: xform.Vec3{g.EulerDegrees[0], -g.EulerDegrees[1], -g.EulerDegrees[2]},
	}
}

// LeftGripOffset is a hand-tuned palm-to-grip offset for the left hand. It
// was fitted by eye against a controller model, not measured.
var LeftGripOffset = GripOffset{
	Translation:  xform.Vec3{0.09, -0.03, -0.09},
	EulerDegrees: xform.Vec3{0, -45, -90},
}

// DefaultGripOffsets holds the left offset and its mirror image, indexed
// by xr.Hand.
var DefaultGripOffsets = [2]GripOffset{
	xr.HandLeft:  LeftGripOffset,
	xr.HandRight: LeftGripOffset.Mirror(),
}

// Resolver locates spaces and builds pose records.
type Resolver struct {
	grip   [2]xform.Mat4
	logger *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithGripOffsets replaces the palm-to-grip offsets used for hand tracking.
func WithGripOffsets(offsets [2]GripOffset) Option {
	return func(r *Resolver) {
		for h, o := range offsets {
			r.grip[h] = o.Matrix()
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) { r.logger = logger.With("component", "pose") }
}

// NewResolver creates a resolver with the default grip offsets.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{logger: slog.Default().With("component", "pose")}
	WithGripOffsets(DefaultGripOffsets)(r)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolvePose locates space relative to the reference space for origin at
// the session's best display time. The returned bool is false, with a
// not-connected pose reporting out-of-range tracking, when the runtime has
// no valid position for the space; orientation validity alone is not enough.
//
// When extra is non-nil it is applied in the space's own axes before the
// located transform. Velocities are already expressed in the base space and
// pass through unchanged.
func (r *Resolver) ResolvePose(s xr.Session, space xr.Space, origin vr.TrackingUniverseOrigin, extra *xform.Mat4) (vr.TrackedDevicePose, bool, error) {
	base := s.ReferenceSpace(xform.OriginToReferenceSpace(origin))

	loc, vel, err := s.LocateSpace(space, base, s.BestTime())
	if err != nil {
		return vr.TrackedDevicePose{}, false, fmt.Errorf("pose: locate space: %w", err)
	}
	if !loc.Flags.PositionValid() {
		r.logger.Debug("space has no valid position", "space", space, "origin", origin, "flags", loc.Flags)
		return lost(), false, nil
	}

	m := xform.PoseToMat4(loc.Pose)
	if extra != nil {
		m = xform.Mul(m, *extra)
	}
	return build(m, vel.LinearVelocity, vel.AngularVelocity), true, nil
}

// ResolveHandPose approximates a controller grip pose from the palm joint
// of a tracked hand. It fails when the hand is inactive or the palm has no
// valid position.
func (r *Resolver) ResolveHandPose(locations xr.HandJointLocations, velocities xr.HandJointVelocities, hand xr.Hand) (vr.TrackedDevicePose, bool) {
	palm := locations.JointLocations[xr.HandJointPalm]
	if !locations.IsActive || !palm.Flags.PositionValid() {
		return lost(), false
	}

	if hand != xr.HandRight {
		hand = xr.HandLeft
	}
	m := xform.Mul(xform.PoseToMat4(palm.Pose), r.grip[hand])
	v := velocities.JointVelocities[xr.HandJointPalm]
	return build(m, v.LinearVelocity, v.AngularVelocity), true
}

func build(m xform.Mat4, linear, angular xr.Vector3f) vr.TrackedDevicePose {
	return vr.TrackedDevicePose{
		DeviceToAbsoluteTracking: xform.ToHmd34(m),
		Velocity:                 xform.VectorToHmd(linear),
		AngularVelocity:          xform.VectorToHmd(angular),
		TrackingResult:           vr.TrackingResultRunningOK,
		PoseIsValid:              true,
		DeviceIsConnected:        true,
	}
}

// lost is the pose reported for a space without a valid position.
func lost() vr.TrackedDevicePose {
	return vr.TrackedDevicePose{TrackingResult: vr.TrackingResultRunningOutOfRange}
}
