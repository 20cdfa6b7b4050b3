package xr

// Session is the live connection to the tracking runtime. It may be
// destroyed and recreated by its owner at any time; holders must go through
// session.Guard rather than keeping a Session across calls.
type Session interface {
	// BestTime is the most recent predicted display time known to the
	// session. It advances once per tracking update.
	BestTime() Time

	// ReferenceSpace returns the handle for one of the standard reference
	// spaces created with the session.
	ReferenceSpace(t ReferenceSpaceType) Space

	// LocateViews locates the primary stereo views relative to space.
	// An error means the runtime call itself failed.
	LocateViews(space Space, at Time) (ViewState, []View, error)

	// LocateSpace locates space relative to base at the given time.
	LocateSpace(space, base Space, at Time) (SpaceLocation, SpaceVelocity, error)

	// ViewConfigurationViews returns the recommended sizes for each eye.
	ViewConfigurationViews() []ViewConfigurationView

	// VisibilityMask follows the runtime's two-call idiom: with zero input
	// capacities only the output counts are written.
	VisibilityMask(eye uint32, t VisibilityMaskType, mask *VisibilityMask) error
}

// Capabilities answers whether optional runtime features are available.
type Capabilities interface {
	VisibilityMaskSupported() bool
}

// StaticCapabilities is a fixed capability set.
type StaticCapabilities struct {
	VisibilityMask bool
}

// VisibilityMaskSupported implements Capabilities.
func (c StaticCapabilities) VisibilityMaskSupported() bool { return c.VisibilityMask }
