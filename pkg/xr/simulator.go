package xr

import (
	"log/slog"
	"math"
	"sync"
	"time"
)

// Synthetic headset defaults. The field of view matches a Rift S left eye.
const (
	SimStandingHeight = 1.7   // metres above the stage floor
	SimIPD            = 0.064 // metres
	SimSwayAmplitude  = 0.35  // radians of head yaw
	SimSwayPeriod     = 6 * time.Second
)

// Reference space handles handed out by the simulator.
const (
	simViewSpace  Space = 1
	simLocalSpace Space = 2
	simStageSpace Space = 3
)

// SimFov is the simulated left-eye field of view.
var SimFov = Fovf{AngleLeft: -0.8552113, AngleRight: 0.7853982, AngleUp: 0.7696902, AngleDown: -0.8028515}

// Simulator is a synthetic tracking session driven by a fixed-rate loop.
// Each tick advances the predicted display time and sways the head yaw,
// which is enough to exercise the HMD layer without a runtime.
type Simulator struct {
	mu      sync.RWMutex
	now     Time
	yaw     float64
	yawRate float64
	lost    bool

	fov     Fovf
	ipd     float32
	started time.Time

	rate   time.Duration
	stop   chan struct{}
	logger *slog.Logger
}

// NewSimulator creates a simulator ticking at the given rate.
// Typical rate is 11ms (90Hz).
func NewSimulator(rate time.Duration) *Simulator {
	return &Simulator{
		now:     1,
		fov:     SimFov,
		ipd:     SimIPD,
		started: time.Now(),
		rate:    rate,
		stop:    make(chan struct{}),
		logger:  slog.Default().With("component", "xr.simulator"),
	}
}

// Run starts the tracking loop. Blocks until Stop is called.
func (s *Simulator) Run() {
	ticker := time.NewTicker(s.rate)
	defer ticker.Stop()

	s.logger.Info("simulated tracking started", "rate", s.rate)
	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			s.tick(now.Sub(s.started))
		}
	}
}

// Stop halts the tracking loop.
func (s *Simulator) Stop() {
	close(s.stop)
}

// tick advances the predicted display time and the head sway.
func (s *Simulator) tick(elapsed time.Duration) {
	phase := 2 * math.Pi * elapsed.Seconds() / SimSwayPeriod.Seconds()

	s.mu.Lock()
	s.now += Time(s.rate)
	s.yaw = SimSwayAmplitude * math.Sin(phase)
	s.yawRate = SimSwayAmplitude * 2 * math.Pi / SimSwayPeriod.Seconds() * math.Cos(phase)
	s.mu.Unlock()
}

// SetLost makes every runtime call fail with XR_ERROR_SESSION_LOST, the
// way a real session behaves once the runtime has dropped it.
func (s *Simulator) SetLost(lost bool) {
	s.mu.Lock()
	s.lost = lost
	s.mu.Unlock()
}

// BestTime implements Session.
func (s *Simulator) BestTime() Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.now
}

// ReferenceSpace implements Session.
func (s *Simulator) ReferenceSpace(t ReferenceSpaceType) Space {
	switch t {
	case ReferenceSpaceView:
		return simViewSpace
	case ReferenceSpaceLocal:
		return simLocalSpace
	case ReferenceSpaceStage:
		return simStageSpace
	default:
		return NullSpace
	}
}

// headPose returns the head pose relative to base. Callers hold s.mu.
func (s *Simulator) headPose(base Space) (Posef, bool) {
	half := s.yaw / 2
	orientation := Quaternionf{Y: float32(math.Sin(half)), W: float32(math.Cos(half))}
	switch base {
	case simViewSpace:
		return IdentityPose, true
	case simLocalSpace:
		return Posef{Orientation: orientation}, true
	case simStageSpace:
		return Posef{Orientation: orientation, Position: Vector3f{Y: SimStandingHeight}}, true
	default:
		return Posef{}, false
	}
}

// LocateViews implements Session.
func (s *Simulator) LocateViews(space Space, at Time) (ViewState, []View, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.lost {
		return ViewState{}, nil, ResultErrorSessionLost.Err("xrLocateViews")
	}
	head, ok := s.headPose(space)
	if !ok {
		return ViewState{}, nil, ResultErrorHandleInvalid.Err("xrLocateViews")
	}

	views := StereoViews(s.fov, s.ipd)
	yaw := s.yaw
	if space == simViewSpace {
		yaw = 0
	}
	sin, cos := math.Sincos(yaw)
	for i := range views {
		x := float64(views[i].Pose.Position.X)
		views[i].Pose.Orientation = head.Orientation
		views[i].Pose.Position = Vector3f{
			X: head.Position.X + float32(x*cos),
			Y: head.Position.Y,
			Z: head.Position.Z - float32(x*sin),
		}
	}

	flags := ViewStateOrientationValid | ViewStatePositionValid | ViewStateOrientationTracked | ViewStatePositionTracked
	return ViewState{Flags: flags}, views, nil
}

// LocateSpace implements Session. Only reference spaces can be located.
func (s *Simulator) LocateSpace(space, base Space, at Time) (SpaceLocation, SpaceVelocity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.lost {
		return SpaceLocation{}, SpaceVelocity{}, ResultErrorSessionLost.Err("xrLocateSpace")
	}
	if space != simViewSpace {
		return SpaceLocation{}, SpaceVelocity{}, nil
	}
	head, ok := s.headPose(base)
	if !ok {
		return SpaceLocation{}, SpaceVelocity{}, ResultErrorHandleInvalid.Err("xrLocateSpace")
	}

	location := SpaceLocation{
		Flags: SpaceLocationOrientationValid | SpaceLocationPositionValid |
			SpaceLocationOrientationTracked | SpaceLocationPositionTracked,
		Pose: head,
	}
	velocity := SpaceVelocity{
		Flags:           SpaceVelocityLinearValid | SpaceVelocityAngularValid,
		AngularVelocity: Vector3f{Y: float32(s.yawRate)},
	}
	return location, velocity, nil
}

// ViewConfigurationViews implements Session.
func (s *Simulator) ViewConfigurationViews() []ViewConfigurationView {
	v := ViewConfigurationView{
		RecommendedImageRectWidth:  1648,
		RecommendedImageRectHeight: 1776,
		MaxImageRectWidth:          4096,
		MaxImageRectHeight:         4096,
	}
	return []ViewConfigurationView{v, v}
}

// VisibilityMask implements Session. The hidden area is the four corners of
// each eye's tangent-space rectangle, cut off by an octagon.
func (s *Simulator) VisibilityMask(eye uint32, t VisibilityMaskType, mask *VisibilityMask) error {
	s.mu.RLock()
	fov := s.fov
	lost := s.lost
	s.mu.RUnlock()

	if lost {
		return ResultErrorSessionLost.Err("xrGetVisibilityMaskKHR")
	}
	if eye == 1 {
		fov.AngleLeft, fov.AngleRight = -fov.AngleRight, -fov.AngleLeft
	}
	vertices, hidden, visible, loop := octagonMask(fov)

	switch t {
	case VisibilityMaskHiddenTriangleMesh:
		return FillVisibilityMask(mask, vertices, hidden)
	case VisibilityMaskVisibleTriangleMesh:
		return FillVisibilityMask(mask, vertices, visible)
	case VisibilityMaskLineLoop:
		return FillVisibilityMask(mask, vertices, loop)
	default:
		return ResultErrorValidationFailure.Err("xrGetVisibilityMaskKHR")
	}
}

// octagonMask builds the corner mask for a frustum. Vertices 0-3 are the
// rectangle corners, 4-11 the octagon points starting on the top edge.
func octagonMask(fov Fovf) ([]Vector2f, []uint32, []uint32, []uint32) {
	l := float32(math.Tan(float64(fov.AngleLeft)))
	r := float32(math.Tan(float64(fov.AngleRight)))
	u := float32(math.Tan(float64(fov.AngleUp)))
	d := float32(math.Tan(float64(fov.AngleDown)))
	cx := (r - l) / 4
	cy := (u - d) / 4

	vertices := []Vector2f{
		{l, u}, {r, u}, {r, d}, {l, d},
		{l + cx, u}, {r - cx, u},
		{r, u - cy}, {r, d + cy},
		{r - cx, d}, {l + cx, d},
		{l, d + cy}, {l, u - cy},
	}
	hidden := []uint32{
		0, 4, 11,
		1, 6, 5,
		2, 8, 7,
		3, 10, 9,
	}
	visible := []uint32{
		4, 5, 6,
		4, 6, 7,
		4, 7, 8,
		4, 8, 9,
		4, 9, 10,
		4, 10, 11,
	}
	loop := []uint32{4, 5, 6, 7, 8, 9, 10, 11}
	return vertices, hidden, visible, loop
}

// Verify Simulator implements Session at compile time.
var _ Session = (*Simulator)(nil)
