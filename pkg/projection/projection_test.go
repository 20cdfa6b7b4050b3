package projection

import (
	"errors"
	"math"
	"testing"

	"github.com/teslashibe/go-hmdbridge/pkg/viewcache"
	"github.com/teslashibe/go-hmdbridge/pkg/vr"
	"github.com/teslashibe/go-hmdbridge/pkg/xform"
	"github.com/teslashibe/go-hmdbridge/pkg/xr"
)

const floatTolerance = 1e-5

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < floatTolerance
}

func checkEntries(t *testing.T, m xform.Mat4, want map[[2]int]float64) {
	t.Helper()
	for ij, w := range want {
		if got := m[ij[0]][ij[1]]; !floatEquals(got, w) {
			t.Errorf("m[%d][%d]: got %v, want %v", ij[0], ij[1], got, w)
		}
	}
}

// ndc projects a view-space point and divides by w.
func ndc(m xform.Mat4, p [3]float64) [3]float64 {
	var clip [4]float64
	v := [4]float64{p[0], p[1], p[2], 1}
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			clip[i] += m[i][j] * v[j]
		}
	}
	return [3]float64{clip[0] / clip[3], clip[1] / clip[3], clip[2] / clip[3]}
}

var symmetric = Tangents{Left: -1, Right: 1, Top: -1, Bottom: 1}

func TestDirectX_Symmetric(t *testing.T) {
	m := DirectX(symmetric, 0.1, 100)
	checkEntries(t, m, map[[2]int]float64{
		{0, 0}: 1, {0, 1}: 0, {0, 2}: 0, {0, 3}: 0,
		{1, 0}: 0, {1, 1}: 1, {1, 2}: 0, {1, 3}: 0,
		{2, 0}: 0, {2, 1}: 0, {2, 2}: -1.001001, {2, 3}: -0.1001001,
		{3, 0}: 0, {3, 1}: 0, {3, 2}: -1, {3, 3}: 0,
	})
}

func TestOpenGL_Symmetric(t *testing.T) {
	m := OpenGL(symmetric, 0.1, 100)
	checkEntries(t, m, map[[2]int]float64{
		{0, 0}: 1, {0, 2}: 0,
		{1, 1}: 1, {1, 2}: 0,
		{2, 2}: -1.002002, {2, 3}: -0.2002002,
		{3, 2}: -1, {3, 3}: 0,
	})
}

func TestAsymmetricReference(t *testing.T) {
	tangents := FromFov(xr.DefaultFov)

	shared := map[[2]int]float64{
		{0, 0}: 0.9512727, {0, 2}: -0.1987541,
		{1, 1}: 1.1670141, {1, 2}: 0.2016027,
		{3, 2}: -1,
	}

	t.Run("directx", func(t *testing.T) {
		checkEntries(t, DirectX(tangents, 0.1, 100), shared)
	})
	t.Run("opengl", func(t *testing.T) {
		checkEntries(t, OpenGL(tangents, 0.1, 100), shared)
	})
}

func TestDepthRanges(t *testing.T) {
	tangents := FromFov(xr.DefaultFov)
	near, far := float32(0.1), float32(100)

	tests := []struct {
		name            string
		m               xform.Mat4
		nearNDC, farNDC float64
	}{
		{"directx", DirectX(tangents, near, far), 0, 1},
		{"opengl", OpenGL(tangents, near, far), -1, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// The top-right corner of the near plane lands on (1, 1, nearNDC).
			n := float64(near)
			corner := ndc(tc.m, [3]float64{n * float64(tangents.Right), n * float64(tangents.Bottom), -n})
			if !floatEquals(corner[0], 1) || !floatEquals(corner[1], 1) || !floatEquals(corner[2], tc.nearNDC) {
				t.Errorf("near corner: got %v, want [1 1 %v]", corner, tc.nearNDC)
			}

			f := float64(far)
			corner = ndc(tc.m, [3]float64{f * float64(tangents.Left), f * float64(tangents.Top), -f})
			if !floatEquals(corner[0], -1) || !floatEquals(corner[1], -1) || !floatEquals(corner[2], tc.farNDC) {
				t.Errorf("far corner: got %v, want [-1 -1 %v]", corner, tc.farNDC)
			}
		})
	}
}

func TestFromTangents_Layout(t *testing.T) {
	tangents := FromFov(xr.DefaultFov)

	dx := FromTangents(tangents, 0.1, 100, vr.APIDirectX)
	if dx.M[3][2] != -1 || dx.M[2][3] == 0 {
		t.Errorf("directx should be untransposed: %v", dx.M)
	}

	gl := FromTangents(tangents, 0.1, 100, vr.APIOpenGL)
	if gl.M[2][3] != -1 || gl.M[3][2] == 0 {
		t.Errorf("opengl should be transposed: %v", gl.M)
	}
	want := OpenGL(tangents, 0.1, 100)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if !floatEquals(float64(gl.M[i][j]), want[j][i]) {
				t.Errorf("gl[%d][%d]: got %v, want %v", i, j, gl.M[i][j], want[j][i])
			}
		}
	}
}

func TestBuilder_RawSwapsVerticalTangents(t *testing.T) {
	b := NewBuilder(viewcache.New())
	mock := xr.NewMock()

	raw, err := b.Raw(mock, vr.EyeLeft)
	if err != nil {
		t.Fatalf("Raw: %v", err)
	}

	want := map[string][2]float64{
		"left":   {float64(raw.Left), math.Tan(-0.9)},
		"right":  {float64(raw.Right), math.Tan(0.7)},
		"top":    {float64(raw.Top), math.Tan(-0.6)},
		"bottom": {float64(raw.Bottom), math.Tan(0.8)},
	}
	for name, gw := range want {
		if !floatEquals(gw[0], gw[1]) {
			t.Errorf("%s: got %v, want %v", name, gw[0], gw[1])
		}
	}
}

func TestBuilder_RightEyeAndClamp(t *testing.T) {
	b := NewBuilder(viewcache.New())
	mock := xr.NewMock()

	right, err := b.Raw(mock, vr.EyeRight)
	if err != nil {
		t.Fatalf("Raw: %v", err)
	}
	if !floatEquals(float64(right.Left), math.Tan(-0.7)) || !floatEquals(float64(right.Right), math.Tan(0.9)) {
		t.Errorf("right eye: got %+v", right)
	}

	left, _ := b.Raw(mock, vr.EyeLeft)
	for _, eye := range []vr.Eye{-1, 2, 42} {
		got, err := b.Raw(mock, eye)
		if err != nil {
			t.Fatalf("Raw(%d): %v", eye, err)
		}
		if got != left {
			t.Errorf("Raw(%d): got %+v, want left eye %+v", eye, got, left)
		}
	}
}

func TestBuilder_SymmetricFovGivesCenteredMatrix(t *testing.T) {
	b := NewBuilder(viewcache.New())
	mock := xr.NewMock()
	mock.LocateViewsFunc = func(xr.Space, xr.Time) (xr.ViewState, []xr.View, error) {
		fov := xr.Fovf{AngleLeft: -0.8, AngleRight: 0.8, AngleUp: 0.8, AngleDown: -0.8}
		return xr.ViewState{Flags: xr.ViewStateOrientationValid | xr.ViewStatePositionValid}, xr.StereoViews(fov, 0.064), nil
	}

	for _, conv := range []vr.GraphicsAPIConvention{vr.APIDirectX, vr.APIOpenGL} {
		m, err := b.Matrix(mock, vr.EyeLeft, 0.1, 100, conv)
		if err != nil {
			t.Fatalf("Matrix: %v", err)
		}
		if !floatEquals(float64(m.M[0][0]), float64(m.M[1][1])) {
			t.Errorf("conv %d: m00=%v m11=%v, want equal", conv, m.M[0][0], m.M[1][1])
		}
		if !floatEquals(float64(m.M[0][2]), 0) {
			t.Errorf("conv %d: off-axis term %v, want 0", conv, m.M[0][2])
		}
	}
}

func TestBuilder_PropagatesProtocolError(t *testing.T) {
	b := NewBuilder(viewcache.New())
	mock := xr.NewMock()
	mock.LocateViewsFunc = func(xr.Space, xr.Time) (xr.ViewState, []xr.View, error) {
		return xr.ViewState{}, nil, xr.ResultErrorRuntimeFailure.Err("xrLocateViews")
	}

	if _, err := b.Matrix(mock, vr.EyeLeft, 0.1, 100, vr.APIDirectX); !errors.Is(err, xr.ErrProtocol) {
		t.Errorf("expected protocol error, got %v", err)
	}
}
