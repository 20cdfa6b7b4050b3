package xform

import (
	"math"
	"testing"

	"github.com/teslashibe/go-hmdbridge/pkg/vr"
	"github.com/teslashibe/go-hmdbridge/pkg/xr"
)

const floatTolerance = 1e-6

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < floatTolerance
}

func matEquals(t *testing.T, got, want Mat4) {
	t.Helper()
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if !floatEquals(got[i][j], want[i][j]) {
				t.Fatalf("m[%d][%d]: got %v, want %v\ngot:  %v\nwant: %v", i, j, got[i][j], want[i][j], got, want)
			}
		}
	}
}

// yawQuat is a rotation of angle radians about +Y.
func yawQuat(angle float64) xr.Quaternionf {
	return xr.Quaternionf{Y: float32(math.Sin(angle / 2)), W: float32(math.Cos(angle / 2))}
}

func TestPoseToMat4_Identity(t *testing.T) {
	matEquals(t, PoseToMat4(xr.IdentityPose), Identity())
}

func TestPoseToMat4_ZeroQuaternionIsIdentityRotation(t *testing.T) {
	m := PoseToMat4(xr.Posef{Position: xr.Vector3f{X: 1, Y: 2, Z: 3}})
	want := Identity()
	want[0][3], want[1][3], want[2][3] = 1, 2, 3
	matEquals(t, m, want)
}

func TestPoseToMat4_YawAndTranslation(t *testing.T) {
	pose := xr.Posef{Orientation: yawQuat(math.Pi / 2), Position: xr.Vector3f{X: 1, Y: 1.5, Z: -2}}
	m := PoseToMat4(pose)

	// +90° about Y sends +X to -Z and +Z to +X.
	want := Mat4{
		{0, 0, 1, 1},
		{0, 1, 0, 1.5},
		{-1, 0, 0, -2},
		{0, 0, 0, 1},
	}
	matEquals(t, m, want)

	p := m.Apply(Vec3{1, 0, 0})
	if !floatEquals(p[0], 1) || !floatEquals(p[1], 1.5) || !floatEquals(p[2], -3) {
		t.Errorf("Apply: got %v, want [1 1.5 -3]", p)
	}
}

func TestMul_AppliesRightOperandFirst(t *testing.T) {
	translate := Identity()
	translate[0][3] = 2
	rotate := PoseToMat4(xr.Posef{Orientation: yawQuat(math.Pi / 2)})

	// rotate·translate moves along X first, then rotates: (2,0,0) -> (0,0,-2)
	p := Mul(rotate, translate).Apply(Vec3{})
	if !floatEquals(p[0], 0) || !floatEquals(p[2], -2) {
		t.Errorf("rotate·translate: got %v, want [0 0 -2]", p)
	}

	// translate·rotate rotates the origin (no-op) then moves along X.
	p = Mul(translate, rotate).Apply(Vec3{})
	if !floatEquals(p[0], 2) || !floatEquals(p[2], 0) {
		t.Errorf("translate·rotate: got %v, want [2 0 0]", p)
	}
}

func TestTranspose(t *testing.T) {
	m := Mat4{
		{1, 2, 3, 4},
		{5, 6, 7, 8},
		{9, 10, 11, 12},
		{13, 14, 15, 16},
	}
	got := Transpose(m)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if got[i][j] != m[j][i] {
				t.Fatalf("t[%d][%d]: got %v, want %v", i, j, got[i][j], m[j][i])
			}
		}
	}
	matEquals(t, Transpose(got), m)
}

func TestFromOriginEulerDegrees(t *testing.T) {
	t.Run("translation only", func(t *testing.T) {
		m := FromOriginEulerDegrees(Vec3{0.1, -0.2, 0.3}, Vec3{})
		want := Identity()
		want[0][3], want[1][3], want[2][3] = 0.1, -0.2, 0.3
		matEquals(t, m, want)
	})

	t.Run("single axis matches pose conversion", func(t *testing.T) {
		m := FromOriginEulerDegrees(Vec3{}, Vec3{0, 90, 0})
		matEquals(t, m, PoseToMat4(xr.Posef{Orientation: yawQuat(math.Pi / 2)}))
	})

	t.Run("composition order is X then Y then Z", func(t *testing.T) {
		x := FromOriginEulerDegrees(Vec3{}, Vec3{30, 0, 0})
		y := FromOriginEulerDegrees(Vec3{}, Vec3{0, 45, 0})
		z := FromOriginEulerDegrees(Vec3{}, Vec3{0, 0, 60})
		matEquals(t, FromOriginEulerDegrees(Vec3{}, Vec3{30, 45, 60}), Mul(Mul(x, y), z))
	})
}

func TestHmd34RoundTrip(t *testing.T) {
	m := PoseToMat4(xr.Posef{Orientation: yawQuat(0.3), Position: xr.Vector3f{X: 0.5, Y: 1.7, Z: -0.25}})
	h := ToHmd34(m)
	if h.M[1][3] != 1.7 {
		t.Errorf("translation Y: got %v, want 1.7", h.M[1][3])
	}
	back := FromHmd34(h)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if math.Abs(back[i][j]-m[i][j]) > 1e-6 {
				t.Fatalf("m[%d][%d]: got %v, want %v", i, j, back[i][j], m[i][j])
			}
		}
	}
}

func TestOriginToReferenceSpace(t *testing.T) {
	tests := []struct {
		origin vr.TrackingUniverseOrigin
		want   xr.ReferenceSpaceType
	}{
		{vr.TrackingUniverseSeated, xr.ReferenceSpaceLocal},
		{vr.TrackingUniverseStanding, xr.ReferenceSpaceStage},
		{vr.TrackingUniverseRawAndUncalibrated, xr.ReferenceSpaceStage},
	}
	for _, tc := range tests {
		if got := OriginToReferenceSpace(tc.origin); got != tc.want {
			t.Errorf("%v: got %v, want %v", tc.origin, got, tc.want)
		}
	}
}
