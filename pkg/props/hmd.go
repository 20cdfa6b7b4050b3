package props

import (
	"log/slog"

	"github.com/teslashibe/go-hmdbridge/internal/log"
	"github.com/teslashibe/go-hmdbridge/pkg/vr"
)

// Static HMD answers. The string values identify the headset as one that
// applications already know how to handle; some refuse to use an HMD whose
// controller type is empty.
var (
	HMDBools = map[vr.TrackedDeviceProperty]bool{
		vr.PropDeviceProvidesBatteryStatusBool:  false,
		vr.PropHasDriverDirectModeComponentBool: true,
		vr.PropContainsProximitySensorBool:      true,
		vr.PropHasCameraComponentBool:           false,
		vr.PropHasDisplayComponentBool:          true,
		vr.PropHasVirtualDisplayComponentBool:   false,
	}

	HMDInt32s = map[vr.TrackedDeviceProperty]int32{
		vr.PropDeviceClassInt32:                    int32(vr.TrackedDeviceClassHMD),
		vr.PropExpectedControllerCountInt32:        2,
		vr.PropExpectedTrackingReferenceCountInt32: 0,
	}

	HMDStrings = map[vr.TrackedDeviceProperty]string{
		vr.PropRegisteredDeviceTypeString: "oculus/F00BAAF00F",
		vr.PropRenderModelNameString:      "oculusHmdRenderModel",
		vr.PropControllerTypeString:       "oculus",
	}
)

// Float constants without a runtime source.
const (
	DisplayFrequency          = 90.0
	SecondsFromVsyncToPhotons = 0.0001
)

// hmdFloats answers the float properties that need more than a table
// lookup. ipd supplies the live interpupillary distance.
func hmdFloats(ipd func() float32, logger *slog.Logger) Stage[float32] {
	return func(prop vr.TrackedDeviceProperty) (Result[float32], bool) {
		switch prop {
		case vr.PropDisplayFrequencyFloat:
			return Value[float32](DisplayFrequency), true
		case vr.PropSecondsFromVsyncToPhotonsFloat:
			return Value[float32](SecondsFromVsyncToPhotons), true
		case vr.PropUserIpdMetersFloat:
			return Value(ipd()), true
		case vr.PropLensCenterLeftUFloat, vr.PropLensCenterLeftVFloat,
			vr.PropLensCenterRightUFloat, vr.PropLensCenterRightVFloat:
			// Reported as unknown, matching the reference runtime.
			return Result[float32]{Err: vr.PropErrUnknownProperty}, true
		case vr.PropUserHeadToEyeDepthMetersFloat:
			log.Once(logger, "props.head-to-eye-depth", "eye relief depth is not supported, reporting 0")
			return Value[float32](0), true
		default:
			return Result[float32]{}, false
		}
	}
}
