package hmd

import (
	"github.com/teslashibe/go-hmdbridge/pkg/hiddenmesh"
	"github.com/teslashibe/go-hmdbridge/pkg/pose"
	"github.com/teslashibe/go-hmdbridge/pkg/props"
)

// DefaultIPD is reported until the runtime has produced one valid pair of
// eye views.
const DefaultIPD = 0.064 // metres

// Placeholder vsync timing for runtimes without frame statistics.
const PlaceholderSecondsSinceVsync = 0.011

// Config holds the HMD device settings.
type Config struct {
	// Rendering
	SupersampleRatio float64 // Scales the runtime's recommended eye size

	// Hidden-area mesh
	HiddenMeshFix           bool    // Remap masks into UV space
	HiddenMeshVerticalScale float32 // Vertical correction for interior mask vertices

	// Hand tracking
	GripOffsets [2]pose.GripOffset // Palm-to-grip offsets, indexed by xr.Hand

	// Properties
	Profile *props.Profile // Optional override table
	Base    props.Base     // Answers what the HMD tables do not; nil uses props.DefaultGeneric
}

// DefaultConfig returns the settings used by an unconfigured device.
func DefaultConfig() Config {
	return Config{
		SupersampleRatio:        1.0,
		HiddenMeshFix:           true,
		HiddenMeshVerticalScale: hiddenmesh.DefaultVerticalScale,
		GripOffsets:             pose.DefaultGripOffsets,
	}
}
