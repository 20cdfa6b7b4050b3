// Package vr defines the legacy stereo-VR API contract types the HMD device
// layer hands back to applications.
//
// Matrix and pose layouts in this package are wire contracts with the
// consuming application: HmdMatrix34 and HmdMatrix44 are stored row-major,
// exactly as the application reads them.
package vr

// Eye selects one of the two stereo viewpoints.
type Eye int32

const (
	EyeLeft  Eye = 0
	EyeRight Eye = 1
)

// EyeCount is the number of stereo viewpoints.
const EyeCount = 2

// Clamp maps any out-of-range eye to EyeLeft, which is how the reference
// runtime treats invalid eye indices.
func (e Eye) Clamp() Eye {
	if e < 0 || e >= EyeCount {
		return EyeLeft
	}
	return e
}

func (e Eye) String() string {
	switch e {
	case EyeLeft:
		return "left"
	case EyeRight:
		return "right"
	default:
		return "invalid"
	}
}

// TrackingUniverseOrigin is the reference frame a pose is expressed in.
type TrackingUniverseOrigin int32

const (
	TrackingUniverseSeated             TrackingUniverseOrigin = 0
	TrackingUniverseStanding           TrackingUniverseOrigin = 1
	TrackingUniverseRawAndUncalibrated TrackingUniverseOrigin = 2
)

func (o TrackingUniverseOrigin) String() string {
	switch o {
	case TrackingUniverseSeated:
		return "seated"
	case TrackingUniverseStanding:
		return "standing"
	case TrackingUniverseRawAndUncalibrated:
		return "raw"
	default:
		return "unknown"
	}
}

// TrackingResult is the tri-state tracking quality reported with a pose.
type TrackingResult int32

const (
	TrackingResultUninitialized         TrackingResult = 1
	TrackingResultCalibratingInProgress TrackingResult = 100
	TrackingResultCalibratingOutOfRange TrackingResult = 101
	TrackingResultRunningOK             TrackingResult = 200
	TrackingResultRunningOutOfRange     TrackingResult = 201
	TrackingResultFallbackRotationOnly  TrackingResult = 300
)

// HmdMatrix34 is a row-major 3x4 rigid transform (rotation + translation).
type HmdMatrix34 struct {
	M [3][4]float32 `json:"m"`
}

// HmdMatrix44 is a 4x4 matrix stored row-major.
type HmdMatrix44 struct {
	M [4][4]float32 `json:"m"`
}

// HmdVector2 is a 2D vertex, used by hidden-area meshes.
type HmdVector2 struct {
	V [2]float32 `json:"v"`
}

// HmdVector3 is used for velocities.
type HmdVector3 struct {
	V [3]float32 `json:"v"`
}

// TrackedDevicePose is the pose record returned for every tracked device.
type TrackedDevicePose struct {
	DeviceToAbsoluteTracking HmdMatrix34    `json:"device_to_absolute_tracking"`
	Velocity                 HmdVector3     `json:"velocity"`
	AngularVelocity          HmdVector3     `json:"angular_velocity"`
	TrackingResult           TrackingResult `json:"tracking_result"`
	PoseIsValid              bool           `json:"pose_is_valid"`
	DeviceIsConnected        bool           `json:"device_is_connected"`
}

// HiddenAreaMeshType selects which visibility mesh is requested.
type HiddenAreaMeshType int32

const (
	HiddenAreaMeshStandard HiddenAreaMeshType = 0
	HiddenAreaMeshInverse  HiddenAreaMeshType = 1
	HiddenAreaMeshLineLoop HiddenAreaMeshType = 2
)

func (t HiddenAreaMeshType) String() string {
	switch t {
	case HiddenAreaMeshStandard:
		return "standard"
	case HiddenAreaMeshInverse:
		return "inverse"
	case HiddenAreaMeshLineLoop:
		return "lineloop"
	default:
		return "invalid"
	}
}

// HiddenAreaMesh is a flat, non-indexed vertex list. PrimitiveCount is the
// triangle count for the triangle mesh types and the vertex count for a line
// loop. An empty mesh means no data is available.
type HiddenAreaMesh struct {
	Vertices       []HmdVector2 `json:"vertices"`
	PrimitiveCount uint32       `json:"primitive_count"`
}

// GraphicsAPIConvention selects the projection matrix flavour.
type GraphicsAPIConvention int32

const (
	APIDirectX GraphicsAPIConvention = 0
	APIOpenGL  GraphicsAPIConvention = 1
)

// DistortionCoordinates holds per-channel UVs for lens distortion.
type DistortionCoordinates struct {
	Red   [2]float32
	Green [2]float32
	Blue  [2]float32
}

// TrackedDeviceClass identifies the kind of device.
type TrackedDeviceClass int32

const (
	TrackedDeviceClassInvalid           TrackedDeviceClass = 0
	TrackedDeviceClassHMD               TrackedDeviceClass = 1
	TrackedDeviceClassController        TrackedDeviceClass = 2
	TrackedDeviceClassGenericTracker    TrackedDeviceClass = 3
	TrackedDeviceClassTrackingReference TrackedDeviceClass = 4
)
