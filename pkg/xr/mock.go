package xr

import (
	"sync"
	"sync/atomic"
)

// Mock implements Session for testing.
// All methods can be customized via function fields.
type Mock struct {
	// Time is returned by BestTime when BestTimeFunc is nil.
	Time atomic.Int64

	// BestTimeFunc is called when BestTime is invoked.
	BestTimeFunc func() Time

	// LocateViewsFunc is called when LocateViews is invoked.
	// If nil, returns two valid views with DefaultFov.
	LocateViewsFunc func(space Space, at Time) (ViewState, []View, error)

	// LocateSpaceFunc is called when LocateSpace is invoked.
	// If nil, returns an identity pose with both validity bits set.
	LocateSpaceFunc func(space, base Space, at Time) (SpaceLocation, SpaceVelocity, error)

	// ViewConfigurationViewsFunc is called when ViewConfigurationViews is invoked.
	// If nil, returns two 1440x1600 views.
	ViewConfigurationViewsFunc func() []ViewConfigurationView

	// VisibilityMaskFunc is called when VisibilityMask is invoked.
	// If nil, reports an empty mesh.
	VisibilityMaskFunc func(eye uint32, t VisibilityMaskType, mask *VisibilityMask) error

	// Tracking
	mu    sync.Mutex
	calls []MockCall
}

// MockCall records a method invocation for verification.
type MockCall struct {
	Method string
	Space  Space
	Base   Space
	Time   Time
}

// DefaultFov is a slightly asymmetric left-eye field of view.
var DefaultFov = Fovf{AngleLeft: -0.9, AngleRight: 0.7, AngleUp: 0.8, AngleDown: -0.6}

// NewMock creates a mock session at time 1 with sensible defaults.
func NewMock() *Mock {
	m := &Mock{}
	m.Time.Store(1)
	return m
}

// Advance moves BestTime forward by one tick and returns the new time.
func (m *Mock) Advance() Time {
	return Time(m.Time.Add(1))
}

// BestTime implements Session.
func (m *Mock) BestTime() Time {
	if m.BestTimeFunc != nil {
		return m.BestTimeFunc()
	}
	return Time(m.Time.Load())
}

// ReferenceSpace implements Session. Reference spaces map to fixed handles
// equal to their type value.
func (m *Mock) ReferenceSpace(t ReferenceSpaceType) Space {
	return Space(t)
}

// LocateViews implements Session.
func (m *Mock) LocateViews(space Space, at Time) (ViewState, []View, error) {
	m.recordCall(MockCall{Method: "LocateViews", Space: space, Time: at})
	if m.LocateViewsFunc != nil {
		return m.LocateViewsFunc(space, at)
	}
	return ViewState{Flags: ViewStateOrientationValid | ViewStatePositionValid}, StereoViews(DefaultFov, 0.064), nil
}

// LocateSpace implements Session.
func (m *Mock) LocateSpace(space, base Space, at Time) (SpaceLocation, SpaceVelocity, error) {
	m.recordCall(MockCall{Method: "LocateSpace", Space: space, Base: base, Time: at})
	if m.LocateSpaceFunc != nil {
		return m.LocateSpaceFunc(space, base, at)
	}
	return SpaceLocation{
		Flags: SpaceLocationOrientationValid | SpaceLocationPositionValid,
		Pose:  IdentityPose,
	}, SpaceVelocity{}, nil
}

// ViewConfigurationViews implements Session.
func (m *Mock) ViewConfigurationViews() []ViewConfigurationView {
	if m.ViewConfigurationViewsFunc != nil {
		return m.ViewConfigurationViewsFunc()
	}
	v := ViewConfigurationView{
		RecommendedImageRectWidth:  1440,
		RecommendedImageRectHeight: 1600,
		MaxImageRectWidth:          4096,
		MaxImageRectHeight:         4096,
	}
	return []ViewConfigurationView{v, v}
}

// VisibilityMask implements Session.
func (m *Mock) VisibilityMask(eye uint32, t VisibilityMaskType, mask *VisibilityMask) error {
	m.recordCall(MockCall{Method: "VisibilityMask"})
	if m.VisibilityMaskFunc != nil {
		return m.VisibilityMaskFunc(eye, t, mask)
	}
	return FillVisibilityMask(mask, nil, nil)
}

func (m *Mock) recordCall(c MockCall) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, c)
}

// Calls returns all recorded calls.
func (m *Mock) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]MockCall, len(m.calls))
	copy(result, m.calls)
	return result
}

// CallCount returns the number of calls to a specific method.
func (m *Mock) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, c := range m.calls {
		if c.Method == method {
			count++
		}
	}
	return count
}

// Reset clears all recorded calls.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

// StereoViews builds a left/right view pair sharing fov, with the eyes
// ipd metres apart along X. The right eye's horizontal angles are mirrored.
func StereoViews(fov Fovf, ipd float32) []View {
	right := fov
	right.AngleLeft, right.AngleRight = -fov.AngleRight, -fov.AngleLeft
	return []View{
		{Pose: Posef{Orientation: IdentityOrientation, Position: Vector3f{X: -ipd / 2}}, Fov: fov},
		{Pose: Posef{Orientation: IdentityOrientation, Position: Vector3f{X: ipd / 2}}, Fov: right},
	}
}

// Verify Mock implements Session at compile time.
var _ Session = (*Mock)(nil)
