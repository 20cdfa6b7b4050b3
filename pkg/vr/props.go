package vr

import (
	"fmt"
	"slices"
	"strings"
)

// TrackedDeviceProperty identifies a typed device property. The suffix of
// each name gives the value type.
type TrackedDeviceProperty int32

const (
	PropInvalid TrackedDeviceProperty = 0

	PropTrackingSystemNameString        TrackedDeviceProperty = 1000
	PropModelNumberString               TrackedDeviceProperty = 1001
	PropSerialNumberString              TrackedDeviceProperty = 1002
	PropRenderModelNameString           TrackedDeviceProperty = 1003
	PropManufacturerNameString          TrackedDeviceProperty = 1005
	PropDeviceProvidesBatteryStatusBool TrackedDeviceProperty = 1026
	PropDeviceClassInt32                TrackedDeviceProperty = 1029
	PropRegisteredDeviceTypeString      TrackedDeviceProperty = 1036

	PropSecondsFromVsyncToPhotonsFloat      TrackedDeviceProperty = 2001
	PropDisplayFrequencyFloat               TrackedDeviceProperty = 2002
	PropUserIpdMetersFloat                  TrackedDeviceProperty = 2003
	PropLensCenterLeftUFloat                TrackedDeviceProperty = 2022
	PropLensCenterLeftVFloat                TrackedDeviceProperty = 2023
	PropLensCenterRightUFloat               TrackedDeviceProperty = 2024
	PropLensCenterRightVFloat               TrackedDeviceProperty = 2025
	PropUserHeadToEyeDepthMetersFloat       TrackedDeviceProperty = 2026
	PropContainsProximitySensorBool         TrackedDeviceProperty = 2035
	PropExpectedTrackingReferenceCountInt32 TrackedDeviceProperty = 2049
	PropExpectedControllerCountInt32        TrackedDeviceProperty = 2050

	PropHasDisplayComponentBool          TrackedDeviceProperty = 6002
	PropHasCameraComponentBool           TrackedDeviceProperty = 6004
	PropHasDriverDirectModeComponentBool TrackedDeviceProperty = 6005
	PropHasVirtualDisplayComponentBool   TrackedDeviceProperty = 6006

	PropControllerTypeString TrackedDeviceProperty = 7000
)

var propertyNames = map[TrackedDeviceProperty]string{
	PropTrackingSystemNameString:            "Prop_TrackingSystemName_String",
	PropModelNumberString:                   "Prop_ModelNumber_String",
	PropSerialNumberString:                  "Prop_SerialNumber_String",
	PropRenderModelNameString:               "Prop_RenderModelName_String",
	PropManufacturerNameString:              "Prop_ManufacturerName_String",
	PropDeviceProvidesBatteryStatusBool:     "Prop_DeviceProvidesBatteryStatus_Bool",
	PropDeviceClassInt32:                    "Prop_DeviceClass_Int32",
	PropRegisteredDeviceTypeString:          "Prop_RegisteredDeviceType_String",
	PropSecondsFromVsyncToPhotonsFloat:      "Prop_SecondsFromVsyncToPhotons_Float",
	PropDisplayFrequencyFloat:               "Prop_DisplayFrequency_Float",
	PropUserIpdMetersFloat:                  "Prop_UserIpdMeters_Float",
	PropLensCenterLeftUFloat:                "Prop_LensCenterLeftU_Float",
	PropLensCenterLeftVFloat:                "Prop_LensCenterLeftV_Float",
	PropLensCenterRightUFloat:               "Prop_LensCenterRightU_Float",
	PropLensCenterRightVFloat:               "Prop_LensCenterRightV_Float",
	PropUserHeadToEyeDepthMetersFloat:       "Prop_UserHeadToEyeDepthMeters_Float",
	PropContainsProximitySensorBool:         "Prop_ContainsProximitySensor_Bool",
	PropExpectedTrackingReferenceCountInt32: "Prop_ExpectedTrackingReferenceCount_Int32",
	PropExpectedControllerCountInt32:        "Prop_ExpectedControllerCount_Int32",
	PropHasDisplayComponentBool:             "Prop_HasDisplayComponent_Bool",
	PropHasCameraComponentBool:              "Prop_HasCameraComponent_Bool",
	PropHasDriverDirectModeComponentBool:    "Prop_HasDriverDirectModeComponent_Bool",
	PropHasVirtualDisplayComponentBool:      "Prop_HasVirtualDisplayComponent_Bool",
	PropControllerTypeString:                "Prop_ControllerType_String",
}

var propertiesByName = func() map[string]TrackedDeviceProperty {
	m := make(map[string]TrackedDeviceProperty, len(propertyNames))
	for p, name := range propertyNames {
		m[name] = p
	}
	return m
}()

func (p TrackedDeviceProperty) String() string {
	if name, ok := propertyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Prop_%d", int32(p))
}

// PropertyType is the value type encoded in a property's name.
type PropertyType int

const (
	PropertyTypeUnknown PropertyType = iota
	PropertyTypeBool
	PropertyTypeFloat
	PropertyTypeInt32
	PropertyTypeString
)

// Type returns the value type of a known property.
func (p TrackedDeviceProperty) Type() PropertyType {
	name, ok := propertyNames[p]
	if !ok {
		return PropertyTypeUnknown
	}
	switch {
	case strings.HasSuffix(name, "_Bool"):
		return PropertyTypeBool
	case strings.HasSuffix(name, "_Float"):
		return PropertyTypeFloat
	case strings.HasSuffix(name, "_Int32"):
		return PropertyTypeInt32
	case strings.HasSuffix(name, "_String"):
		return PropertyTypeString
	default:
		return PropertyTypeUnknown
	}
}

// PropertyByName resolves a property from its legacy name, e.g.
// "Prop_DisplayFrequency_Float".
func PropertyByName(name string) (TrackedDeviceProperty, bool) {
	p, ok := propertiesByName[name]
	return p, ok
}

// Properties returns every property with a known name, in ascending order.
func Properties() []TrackedDeviceProperty {
	out := make([]TrackedDeviceProperty, 0, len(propertyNames))
	for p := range propertyNames {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// TrackedPropertyError is the error code returned alongside every property.
type TrackedPropertyError int32

const (
	PropErrSuccess                  TrackedPropertyError = 0
	PropErrWrongDataType            TrackedPropertyError = 1
	PropErrWrongDeviceClass         TrackedPropertyError = 2
	PropErrBufferTooSmall           TrackedPropertyError = 3
	PropErrUnknownProperty          TrackedPropertyError = 4
	PropErrInvalidDevice            TrackedPropertyError = 5
	PropErrValueNotProvidedByDevice TrackedPropertyError = 7
	PropErrNotYetAvailable          TrackedPropertyError = 9
)

func (e TrackedPropertyError) String() string {
	switch e {
	case PropErrSuccess:
		return "success"
	case PropErrWrongDataType:
		return "wrong data type"
	case PropErrWrongDeviceClass:
		return "wrong device class"
	case PropErrBufferTooSmall:
		return "buffer too small"
	case PropErrUnknownProperty:
		return "unknown property"
	case PropErrInvalidDevice:
		return "invalid device"
	case PropErrValueNotProvidedByDevice:
		return "value not provided by device"
	case PropErrNotYetAvailable:
		return "not yet available"
	default:
		return fmt.Sprintf("property error %d", int32(e))
	}
}
