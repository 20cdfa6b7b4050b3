package props

import (
	"log/slog"
	"sync/atomic"

	"github.com/teslashibe/go-hmdbridge/pkg/vr"
)

// Base answers whatever the device-specific stages leave unanswered.
type Base interface {
	BoolProperty(prop vr.TrackedDeviceProperty) (bool, vr.TrackedPropertyError)
	FloatProperty(prop vr.TrackedDeviceProperty) (float32, vr.TrackedPropertyError)
	Int32Property(prop vr.TrackedDeviceProperty) (int32, vr.TrackedPropertyError)
	StringProperty(prop vr.TrackedDeviceProperty) (string, vr.TrackedPropertyError)
}

// Generic is the default Base. It knows the identity strings of a device
// and reports everything else as unknown, or as the wrong data type when a
// known property is read through the wrong getter.
type Generic struct {
	TrackingSystemName string
	ModelNumber        string
	SerialNumber       string
	ManufacturerName   string
}

// DefaultGeneric identifies the bridge itself.
var DefaultGeneric = Generic{
	TrackingSystemName: "oculus",
	ModelNumber:        "go-hmdbridge HMD",
	SerialNumber:       "HMDBRIDGE-0001",
	ManufacturerName:   "Oculus",
}

func miss(prop vr.TrackedDeviceProperty, want vr.PropertyType) vr.TrackedPropertyError {
	if t := prop.Type(); t != vr.PropertyTypeUnknown && t != want {
		return vr.PropErrWrongDataType
	}
	return vr.PropErrUnknownProperty
}

// BoolProperty implements Base.
func (g Generic) BoolProperty(prop vr.TrackedDeviceProperty) (bool, vr.TrackedPropertyError) {
	return false, miss(prop, vr.PropertyTypeBool)
}

// FloatProperty implements Base.
func (g Generic) FloatProperty(prop vr.TrackedDeviceProperty) (float32, vr.TrackedPropertyError) {
	return 0, miss(prop, vr.PropertyTypeFloat)
}

// Int32Property implements Base.
func (g Generic) Int32Property(prop vr.TrackedDeviceProperty) (int32, vr.TrackedPropertyError) {
	return 0, miss(prop, vr.PropertyTypeInt32)
}

// StringProperty implements Base.
func (g Generic) StringProperty(prop vr.TrackedDeviceProperty) (string, vr.TrackedPropertyError) {
	var s string
	switch prop {
	case vr.PropTrackingSystemNameString:
		s = g.TrackingSystemName
	case vr.PropModelNumberString:
		s = g.ModelNumber
	case vr.PropSerialNumberString:
		s = g.SerialNumber
	case vr.PropManufacturerNameString:
		s = g.ManufacturerName
	default:
		return "", miss(prop, vr.PropertyTypeString)
	}
	if s == "" {
		return "", vr.PropErrValueNotProvidedByDevice
	}
	return s, vr.PropErrSuccess
}

func baseStage[T any](get func(vr.TrackedDeviceProperty) (T, vr.TrackedPropertyError)) Stage[T] {
	return func(prop vr.TrackedDeviceProperty) (Result[T], bool) {
		v, err := get(prop)
		return Result[T]{Value: v, Err: err}, true
	}
}

// Resolver answers the HMD's property queries: profile override, then the
// static HMD table, then the base.
type Resolver struct {
	profile atomic.Pointer[Profile]

	bools  Chain[bool]
	floats Chain[float32]
	int32s Chain[int32]
	texts  Chain[string]

	logger *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithProfile sets the initial override profile.
func WithProfile(p *Profile) Option {
	return func(r *Resolver) { r.profile.Store(p) }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) { r.logger = logger.With("component", "props") }
}

// NewResolver creates the HMD property chains. ipd is called for every
// Prop_UserIpdMeters_Float query that reaches the static stage.
func NewResolver(base Base, ipd func() float32, opts ...Option) *Resolver {
	r := &Resolver{logger: slog.Default().With("component", "props")}
	for _, opt := range opts {
		opt(r)
	}
	if base == nil {
		base = DefaultGeneric
	}

	r.bools = Chain[bool]{
		profileStage(r.Profile, (*Profile).BoolValue),
		Table(HMDBools),
		baseStage(base.BoolProperty),
	}
	r.floats = Chain[float32]{
		profileStage(r.Profile, (*Profile).FloatValue),
		hmdFloats(ipd, r.logger),
		baseStage(base.FloatProperty),
	}
	r.int32s = Chain[int32]{
		profileStage(r.Profile, (*Profile).Int32Value),
		Table(HMDInt32s),
		baseStage(base.Int32Property),
	}
	r.texts = Chain[string]{
		profileStage(r.Profile, (*Profile).StringValue),
		Table(HMDStrings),
		baseStage(base.StringProperty),
	}
	return r
}

// SetProfile swaps the override profile; nil removes it.
func (r *Resolver) SetProfile(p *Profile) {
	r.profile.Store(p)
	name := ""
	if p != nil {
		name = p.Name
	}
	r.logger.Info("device profile changed", "profile", name)
}

// Profile returns the current override profile, or nil.
func (r *Resolver) Profile() *Profile {
	return r.profile.Load()
}

// Bool resolves a bool property.
func (r *Resolver) Bool(prop vr.TrackedDeviceProperty) (bool, vr.TrackedPropertyError) {
	res := r.bools.Resolve(prop)
	return res.Value, res.Err
}

// Float resolves a float property.
func (r *Resolver) Float(prop vr.TrackedDeviceProperty) (float32, vr.TrackedPropertyError) {
	res := r.floats.Resolve(prop)
	return res.Value, res.Err
}

// Int32 resolves an int32 property.
func (r *Resolver) Int32(prop vr.TrackedDeviceProperty) (int32, vr.TrackedPropertyError) {
	res := r.int32s.Resolve(prop)
	return res.Value, res.Err
}

// Text resolves a string property.
func (r *Resolver) Text(prop vr.TrackedDeviceProperty) (string, vr.TrackedPropertyError) {
	res := r.texts.Resolve(prop)
	return res.Value, res.Err
}

// TextInto resolves a string property into buf with the legacy buffer
// semantics of CopyString. On a lookup error nothing is written and the
// returned size is 0.
func (r *Resolver) TextInto(prop vr.TrackedDeviceProperty, buf []byte) (uint32, vr.TrackedPropertyError) {
	s, perr := r.Text(prop)
	if perr != vr.PropErrSuccess {
		return 0, perr
	}
	return CopyString(buf, s)
}
