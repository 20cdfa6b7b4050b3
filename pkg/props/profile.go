package props

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/teslashibe/go-hmdbridge/pkg/vr"
)

// ErrUnknownProperty is returned when a profile names a property this
// package does not know.
var ErrUnknownProperty = errors.New("props: unknown property")

// Profile is a per-headset override table, usually loaded from YAML:
//
//	name: rift-s
//	properties:
//	  Prop_DisplayFrequency_Float: 80
//	  Prop_ManufacturerName_String: Oculus
//
// A value whose YAML type does not fit the property is ignored by the
// typed getters.
type Profile struct {
	Name       string         `json:"name" yaml:"name"`
	Properties map[string]any `json:"properties" yaml:"properties"`

	values map[vr.TrackedDeviceProperty]any `json:"-" yaml:"-"`
}

// LoadProfile reads a profile from disk.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("props: read profile: %w", err)
	}
	p, err := ParseProfile(data)
	if err != nil {
		return nil, err
	}
	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return p, nil
}

// ParseProfile decodes a YAML profile.
func ParseProfile(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("props: decode profile: %w", err)
	}
	if err := p.index(); err != nil {
		return nil, err
	}
	return &p, nil
}

// NewProfile builds a profile from already-typed values.
func NewProfile(name string, values map[vr.TrackedDeviceProperty]any) *Profile {
	p := &Profile{
		Name:       name,
		Properties: make(map[string]any, len(values)),
		values:     make(map[vr.TrackedDeviceProperty]any, len(values)),
	}
	for prop, v := range values {
		p.Properties[prop.String()] = v
		p.values[prop] = v
	}
	return p
}

func (p *Profile) index() error {
	p.values = make(map[vr.TrackedDeviceProperty]any, len(p.Properties))
	var unknown []string
	for name, v := range p.Properties {
		prop, ok := vr.PropertyByName(name)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		p.values[prop] = v
	}
	if len(unknown) > 0 {
		slices.Sort(unknown)
		return fmt.Errorf("%w: %s", ErrUnknownProperty, strings.Join(unknown, ", "))
	}
	return nil
}

func (p *Profile) lookup(prop vr.TrackedDeviceProperty) (any, bool) {
	if p == nil {
		return nil, false
	}
	v, ok := p.values[prop]
	return v, ok
}

// BoolValue returns a bool override.
func (p *Profile) BoolValue(prop vr.TrackedDeviceProperty) (bool, bool) {
	v, ok := p.lookup(prop)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// FloatValue returns a float override. Integer values are accepted.
func (p *Profile) FloatValue(prop vr.TrackedDeviceProperty) (float32, bool) {
	v, ok := p.lookup(prop)
	if !ok {
		return 0, false
	}
	switch f := v.(type) {
	case float64:
		return float32(f), true
	case float32:
		return f, true
	case int:
		return float32(f), true
	default:
		return 0, false
	}
}

// Int32Value returns an int32 override. Values outside the int32 range are
// ignored.
func (p *Profile) Int32Value(prop vr.TrackedDeviceProperty) (int32, bool) {
	v, ok := p.lookup(prop)
	if !ok {
		return 0, false
	}
	switch i := v.(type) {
	case int:
		if i < math.MinInt32 || i > math.MaxInt32 {
			return 0, false
		}
		return int32(i), true
	case int32:
		return i, true
	default:
		return 0, false
	}
}

// StringValue returns a string override.
func (p *Profile) StringValue(prop vr.TrackedDeviceProperty) (string, bool) {
	v, ok := p.lookup(prop)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// profileStage adapts a typed profile getter to a chain stage. The profile
// is read through get on every query so it can be swapped at runtime.
func profileStage[T any](get func() *Profile, value func(*Profile, vr.TrackedDeviceProperty) (T, bool)) Stage[T] {
	return func(prop vr.TrackedDeviceProperty) (Result[T], bool) {
		v, ok := value(get(), prop)
		if !ok {
			return Result[T]{}, false
		}
		return Value(v), true
	}
}
