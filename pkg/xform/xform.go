// Package xform converts between the tracking runtime's pose representation
// and the legacy API's matrix layouts.
//
// Mat4 is row-major and multiplies column vectors (v' = M·v), so the
// translation lives in the last column and A·B applies B first.
package xform

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"

	"github.com/teslashibe/go-hmdbridge/pkg/vr"
	"github.com/teslashibe/go-hmdbridge/pkg/xr"
)

// Mat4 is a row-major 4x4 transform.
type Mat4 [4][4]float64

// Vec3 is a 3-component vector in metres or radians.
type Vec3 [3]float64

// Identity returns the identity transform.
func Identity() Mat4 {
	return Mat4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

func (m Mat4) dense() *mat.Dense {
	data := make([]float64, 0, 16)
	for _, row := range m {
		data = append(data, row[:]...)
	}
	return mat.NewDense(4, 4, data)
}

func fromMatrix(d mat.Matrix) Mat4 {
	var m Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			m[i][j] = d.At(i, j)
		}
	}
	return m
}

// Mul returns a·b.
func Mul(a, b Mat4) Mat4 {
	var d mat.Dense
	d.Mul(a.dense(), b.dense())
	return fromMatrix(&d)
}

// Transpose swaps rows and columns.
func Transpose(m Mat4) Mat4 {
	return fromMatrix(m.dense().T())
}

// Translation returns the translation column.
func (m Mat4) Translation() Vec3 {
	return Vec3{m[0][3], m[1][3], m[2][3]}
}

// Apply transforms a point.
func (m Mat4) Apply(p Vec3) Vec3 {
	var out Vec3
	for i := 0; i < 3; i++ {
		out[i] = m[i][0]*p[0] + m[i][1]*p[1] + m[i][2]*p[2] + m[i][3]
	}
	return out
}

// orientation converts a runtime quaternion to a unit gonum quaternion.
// A zero quaternion, as reported before the first located frame, becomes
// the identity rotation.
func orientation(q xr.Quaternionf) quat.Number {
	n := quat.Number{
		Real: float64(q.W),
		Imag: float64(q.X),
		Jmag: float64(q.Y),
		Kmag: float64(q.Z),
	}
	abs := quat.Abs(n)
	if abs == 0 || math.IsNaN(abs) {
		return quat.Number{Real: 1}
	}
	return quat.Scale(1/abs, n)
}

// rotate applies q to v as q·v·q*.
func rotate(q quat.Number, v Vec3) Vec3 {
	p := quat.Number{Imag: v[0], Jmag: v[1], Kmag: v[2]}
	r := quat.Mul(quat.Mul(q, p), quat.Conj(q))
	return Vec3{r.Imag, r.Jmag, r.Kmag}
}

// fromRotationTranslation builds a rigid transform. The columns of the
// rotation block are the rotated basis vectors.
func fromRotationTranslation(q quat.Number, t Vec3) Mat4 {
	m := Identity()
	for col, basis := range [3]Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}} {
		r := rotate(q, basis)
		for row := 0; row < 3; row++ {
			m[row][col] = r[row]
		}
	}
	m[0][3], m[1][3], m[2][3] = t[0], t[1], t[2]
	return m
}

// PoseToMat4 converts a runtime pose to a transform from the posed space
// into its base space.
func PoseToMat4(p xr.Posef) Mat4 {
	t := Vec3{float64(p.Position.X), float64(p.Position.Y), float64(p.Position.Z)}
	return fromRotationTranslation(orientation(p.Orientation), t)
}

// FromOriginEulerDegrees builds T(origin)·Rx·Ry·Rz with angles in degrees.
// It is used for hand-tuned offsets, which are easier to read as Euler
// angles than as quaternions.
func FromOriginEulerDegrees(origin, eulerDegrees Vec3) Mat4 {
	q := quat.Number{Real: 1}
	axes := [3]Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	for i, deg := range eulerDegrees {
		half := deg * math.Pi / 360
		sin, cos := math.Sincos(half)
		axis := quat.Number{Real: cos, Imag: axes[i][0] * sin, Jmag: axes[i][1] * sin, Kmag: axes[i][2] * sin}
		q = quat.Mul(q, axis)
	}
	return fromRotationTranslation(q, origin)
}

// ToHmd34 drops the projective row and narrows to the legacy float32 layout.
func ToHmd34(m Mat4) vr.HmdMatrix34 {
	var out vr.HmdMatrix34
	for i := 0; i < 3; i++ {
		for j := 0; j < 4; j++ {
			out.M[i][j] = float32(m[i][j])
		}
	}
	return out
}

// FromHmd34 widens a legacy 3x4 transform back to a Mat4.
func FromHmd34(h vr.HmdMatrix34) Mat4 {
	m := Identity()
	for i := 0; i < 3; i++ {
		for j := 0; j < 4; j++ {
			m[i][j] = float64(h.M[i][j])
		}
	}
	return m
}

// ToHmd44 narrows a Mat4 to the legacy 4x4 layout without reordering.
func ToHmd44(m Mat4) vr.HmdMatrix44 {
	var out vr.HmdMatrix44
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			out.M[i][j] = float32(m[i][j])
		}
	}
	return out
}

// PoseToHmd34 is ToHmd34(PoseToMat4(p)).
func PoseToHmd34(p xr.Posef) vr.HmdMatrix34 {
	return ToHmd34(PoseToMat4(p))
}

// VectorToHmd converts a runtime vector; both sides share axis conventions.
func VectorToHmd(v xr.Vector3f) vr.HmdVector3 {
	return vr.HmdVector3{V: [3]float32{v.X, v.Y, v.Z}}
}

// OriginToReferenceSpace maps a legacy tracking origin to the runtime
// reference space poses are located in. Seated uses the local space; the
// standing and raw origins both use the stage space.
func OriginToReferenceSpace(origin vr.TrackingUniverseOrigin) xr.ReferenceSpaceType {
	if origin == vr.TrackingUniverseSeated {
		return xr.ReferenceSpaceLocal
	}
	return xr.ReferenceSpaceStage
}
