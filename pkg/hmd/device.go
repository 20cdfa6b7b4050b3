// Package hmd is the legacy head-mounted-display device surface. Every
// query takes one shared hold on the tracking session for its whole
// duration and hands the held session to the component that answers it.
package hmd

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/teslashibe/go-hmdbridge/internal/log"
	"github.com/teslashibe/go-hmdbridge/pkg/hiddenmesh"
	"github.com/teslashibe/go-hmdbridge/pkg/pose"
	"github.com/teslashibe/go-hmdbridge/pkg/projection"
	"github.com/teslashibe/go-hmdbridge/pkg/props"
	"github.com/teslashibe/go-hmdbridge/pkg/session"
	"github.com/teslashibe/go-hmdbridge/pkg/viewcache"
	"github.com/teslashibe/go-hmdbridge/pkg/vr"
	"github.com/teslashibe/go-hmdbridge/pkg/xform"
	"github.com/teslashibe/go-hmdbridge/pkg/xr"
)

// ErrNoViewConfiguration is returned when the runtime reports no eye sizes.
var ErrNoViewConfiguration = errors.New("hmd: runtime reported no view configuration")

// Device answers legacy HMD queries from the current tracking session.
type Device struct {
	guard *session.Guard
	cfg   Config

	views      *viewcache.Cache
	projection *projection.Builder
	poses      *pose.Resolver
	meshes     *hiddenmesh.Normalizer
	props      *props.Resolver

	ipd atomic.Uint32 // float32 bits of the last valid IPD

	logger *slog.Logger
}

// New creates a device reading from guard. The view cache is dropped on
// every session change.
func New(guard *session.Guard, caps xr.Capabilities, cfg Config) *Device {
	logger := slog.Default().With("component", "hmd")
	if cfg.SupersampleRatio <= 0 {
		cfg.SupersampleRatio = 1
	}
	if cfg.HiddenMeshVerticalScale <= 0 {
		cfg.HiddenMeshVerticalScale = hiddenmesh.DefaultVerticalScale
	}

	d := &Device{
		guard:  guard,
		cfg:    cfg,
		views:  viewcache.New(),
		poses:  pose.NewResolver(pose.WithGripOffsets(cfg.GripOffsets)),
		logger: logger,
	}
	d.ipd.Store(math.Float32bits(DefaultIPD))
	d.projection = projection.NewBuilder(d.views)
	d.meshes = hiddenmesh.New(caps, d.projection,
		hiddenmesh.WithFix(cfg.HiddenMeshFix),
		hiddenmesh.WithVerticalScale(cfg.HiddenMeshVerticalScale),
	)
	d.props = props.NewResolver(cfg.Base, d.propertyIPD, props.WithProfile(cfg.Profile))

	guard.OnChange(func(epoch uuid.UUID, installed bool) {
		d.views.Invalidate()
		d.logger.Debug("view cache invalidated", "epoch", epoch, "installed", installed)
	})
	return d
}

// hold acquires the session for one query.
func (d *Device) hold() (xr.Session, func(), error) {
	s, release, err := d.guard.Acquire()
	if err != nil {
		return nil, release, fmt.Errorf("hmd: %w", err)
	}
	return s, release, nil
}

// RecommendedRenderTargetSize returns the per-eye render size, scaled by the
// supersample ratio.
func (d *Device) RecommendedRenderTargetSize() (width, height uint32, err error) {
	s, release, err := d.hold()
	defer release()
	if err != nil {
		return 0, 0, err
	}

	views := s.ViewConfigurationViews()
	if len(views) == 0 {
		return 0, 0, ErrNoViewConfiguration
	}
	left := views[vr.EyeLeft]
	width = uint32(float64(left.RecommendedImageRectWidth) * d.cfg.SupersampleRatio)
	height = uint32(float64(left.RecommendedImageRectHeight) * d.cfg.SupersampleRatio)
	return width, height, nil
}

// ProjectionMatrix returns eye's projection for the given clip planes, laid
// out for the given graphics API.
func (d *Device) ProjectionMatrix(eye vr.Eye, near, far float32, conv vr.GraphicsAPIConvention) (vr.HmdMatrix44, error) {
	s, release, err := d.hold()
	defer release()
	if err != nil {
		return vr.HmdMatrix44{}, err
	}
	return d.projection.Matrix(s, eye, near, far, conv)
}

// ProjectionRaw returns eye's frustum tangents.
func (d *Device) ProjectionRaw(eye vr.Eye) (projection.Tangents, error) {
	s, release, err := d.hold()
	defer release()
	if err != nil {
		return projection.Tangents{}, err
	}
	return d.projection.Raw(s, eye)
}

// ComputeDistortion is not supported; the runtime applies lens distortion
// itself. It always reports false.
func (d *Device) ComputeDistortion(eye vr.Eye, u, v float32) (vr.DistortionCoordinates, bool) {
	log.Once(d.logger, "hmd.compute-distortion", "distortion computation is not supported", "eye", eye)
	return vr.DistortionCoordinates{}, false
}

// EyeToHeadTransform returns the pose of eye relative to the head.
func (d *Device) EyeToHeadTransform(eye vr.Eye) (vr.HmdMatrix34, error) {
	s, release, err := d.hold()
	defer release()
	if err != nil {
		return vr.HmdMatrix34{}, err
	}

	snap, err := d.views.Views(s, s.ReferenceSpace(xr.ReferenceSpaceView))
	if err != nil {
		return vr.HmdMatrix34{}, fmt.Errorf("hmd: %w", err)
	}
	return xform.PoseToHmd34(snap.Views[eye.Clamp()].Pose), nil
}

// TimeSinceLastVsync returns a fixed placeholder and false; the runtime
// does not expose vsync timing.
func (d *Device) TimeSinceLastVsync() (seconds float32, frameCounter uint64, ok bool) {
	log.Once(d.logger, "hmd.vsync", "vsync timing is not available, returning a placeholder",
		"seconds", PlaceholderSecondsSinceVsync)
	return PlaceholderSecondsSinceVsync, 0, false
}

// HiddenAreaMesh returns the hidden-area mesh of the given type for eye.
func (d *Device) HiddenAreaMesh(eye vr.Eye, t vr.HiddenAreaMeshType) (vr.HiddenAreaMesh, error) {
	s, release, err := d.hold()
	defer release()
	if err != nil {
		return vr.HiddenAreaMesh{}, err
	}
	return d.meshes.Mesh(s, eye, t)
}

// Pose returns the head pose relative to origin. The bool is false when
// the runtime has no valid head position.
func (d *Device) Pose(origin vr.TrackingUniverseOrigin) (vr.TrackedDevicePose, bool, error) {
	s, release, err := d.hold()
	defer release()
	if err != nil {
		return vr.TrackedDevicePose{}, false, err
	}
	return d.poses.ResolvePose(s, s.ReferenceSpace(xr.ReferenceSpaceView), origin, nil)
}

// HandPose approximates a controller grip pose from a tracked hand.
func (d *Device) HandPose(locations xr.HandJointLocations, velocities xr.HandJointVelocities, hand xr.Hand) (vr.TrackedDevicePose, bool) {
	return d.poses.ResolveHandPose(locations, velocities, hand)
}

// IPD returns the distance between the eyes. It is measured from the
// latest fully valid eye views and otherwise falls back to the last good
// measurement, or DefaultIPD before the first one.
func (d *Device) IPD() (float32, error) {
	s, release, err := d.hold()
	defer release()
	if err != nil {
		return d.lastIPD(), err
	}

	snap, err := d.views.Views(s, s.ReferenceSpace(xr.ReferenceSpaceView))
	if err != nil {
		return d.lastIPD(), fmt.Errorf("hmd: %w", err)
	}
	if !snap.State.Valid() {
		return d.lastIPD(), nil
	}
	ipd := snap.Views[vr.EyeRight].Pose.Position.X - snap.Views[vr.EyeLeft].Pose.Position.X
	d.ipd.Store(math.Float32bits(ipd))
	return ipd, nil
}

func (d *Device) lastIPD() float32 {
	return math.Float32frombits(d.ipd.Load())
}

// propertyIPD feeds Prop_UserIpdMeters_Float. Property queries do not hold
// the session, so taking a fresh hold here does not nest.
func (d *Device) propertyIPD() float32 {
	ipd, err := d.IPD()
	if err != nil {
		d.logger.Warn("reporting last known IPD", "error", err)
	}
	return ipd
}

// BoolProperty resolves a bool device property.
func (d *Device) BoolProperty(prop vr.TrackedDeviceProperty) (bool, vr.TrackedPropertyError) {
	return d.props.Bool(prop)
}

// FloatProperty resolves a float device property.
func (d *Device) FloatProperty(prop vr.TrackedDeviceProperty) (float32, vr.TrackedPropertyError) {
	return d.props.Float(prop)
}

// Int32Property resolves an int32 device property.
func (d *Device) Int32Property(prop vr.TrackedDeviceProperty) (int32, vr.TrackedPropertyError) {
	return d.props.Int32(prop)
}

// StringProperty resolves a string device property.
func (d *Device) StringProperty(prop vr.TrackedDeviceProperty) (string, vr.TrackedPropertyError) {
	return d.props.Text(prop)
}

// StringPropertyInto copies a string device property into buf as a
// NUL-terminated string and returns the size it needs. An empty buf only
// queries the size.
func (d *Device) StringPropertyInto(prop vr.TrackedDeviceProperty, buf []byte) (uint32, vr.TrackedPropertyError) {
	return d.props.TextInto(prop, buf)
}

// SetProfile swaps the property override profile; nil removes it.
func (d *Device) SetProfile(p *props.Profile) {
	d.props.SetProfile(p)
}

// Profile returns the active override profile, or nil.
func (d *Device) Profile() *props.Profile {
	return d.props.Profile()
}

// Stats reports view cache activity.
func (d *Device) Stats() viewcache.Stats {
	return d.views.Stats()
}

// Verify Device implements props.Base at compile time.
var _ props.Base = (*Device)(nil)
