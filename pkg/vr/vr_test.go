package vr

import (
	"slices"
	"testing"
)

func TestEye_Clamp(t *testing.T) {
	tests := []struct {
		eye  Eye
		want Eye
	}{
		{EyeLeft, EyeLeft},
		{EyeRight, EyeRight},
		{Eye(2), EyeLeft},
		{Eye(-1), EyeLeft},
	}
	for _, tc := range tests {
		if got := tc.eye.Clamp(); got != tc.want {
			t.Errorf("Eye(%d).Clamp(): got %v, want %v", tc.eye, got, tc.want)
		}
	}
}

func TestTrackedDeviceProperty_Type(t *testing.T) {
	tests := []struct {
		prop TrackedDeviceProperty
		want PropertyType
	}{
		{PropHasDisplayComponentBool, PropertyTypeBool},
		{PropDisplayFrequencyFloat, PropertyTypeFloat},
		{PropDeviceClassInt32, PropertyTypeInt32},
		{PropManufacturerNameString, PropertyTypeString},
		{PropInvalid, PropertyTypeUnknown},
		{TrackedDeviceProperty(4242), PropertyTypeUnknown},
	}
	for _, tc := range tests {
		if got := tc.prop.Type(); got != tc.want {
			t.Errorf("%v.Type(): got %v, want %v", tc.prop, got, tc.want)
		}
	}
}

func TestPropertyByName(t *testing.T) {
	for _, p := range Properties() {
		got, ok := PropertyByName(p.String())
		if !ok || got != p {
			t.Errorf("PropertyByName(%q): got (%v, %v), want %d", p.String(), got, ok, p)
		}
	}
	if _, ok := PropertyByName("Prop_Nonsense_Bool"); ok {
		t.Error("expected unknown name to fail")
	}
}

func TestProperties_Sorted(t *testing.T) {
	all := Properties()
	if len(all) == 0 {
		t.Fatal("expected known properties")
	}
	if !slices.IsSorted(all) {
		t.Errorf("properties not sorted: %v", all)
	}
	if slices.Contains(all, PropInvalid) {
		t.Error("PropInvalid should not be listed")
	}
}

func TestTrackedPropertyError_String(t *testing.T) {
	if got := PropErrBufferTooSmall.String(); got != "buffer too small" {
		t.Errorf("got %q", got)
	}
	if got := TrackedPropertyError(42).String(); got != "property error 42" {
		t.Errorf("got %q", got)
	}
}
