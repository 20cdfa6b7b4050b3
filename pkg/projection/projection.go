// Package projection builds per-eye projection matrices and raw frustum
// tangents from the cached eye views.
//
// All matrices are right-handed with -Z forward and are built in the
// mathematical row-major form that multiplies column vectors. The DirectX
// flavour maps depth to [0,1] and is returned as is; the OpenGL flavour
// maps depth to [-1,1] and is transposed to column-major before it is
// handed to the application.
package projection

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/teslashibe/go-hmdbridge/internal/log"
	"github.com/teslashibe/go-hmdbridge/pkg/viewcache"
	"github.com/teslashibe/go-hmdbridge/pkg/vr"
	"github.com/teslashibe/go-hmdbridge/pkg/xform"
	"github.com/teslashibe/go-hmdbridge/pkg/xr"
)

// Tangents are the raw frustum extents in the legacy layout. Top holds the
// tangent of the downward angle and Bottom the tangent of the upward angle,
// which is how applications of the legacy API expect them.
type Tangents struct {
	Left   float32 `json:"left"`
	Right  float32 `json:"right"`
	Top    float32 `json:"top"`
	Bottom float32 `json:"bottom"`
}

// FromFov converts a field of view into legacy tangents.
func FromFov(fov xr.Fovf) Tangents {
	return Tangents{
		Left:   tan(fov.AngleLeft),
		Right:  tan(fov.AngleRight),
		Top:    tan(fov.AngleDown),
		Bottom: tan(fov.AngleUp),
	}
}

func tan(a float32) float32 {
	return float32(math.Tan(float64(a)))
}

// up and down return the tangents of the upward and downward angles.
func (t Tangents) up() float64   { return float64(t.Bottom) }
func (t Tangents) down() float64 { return float64(t.Top) }

// DirectX returns the depth [0,1] projection for t.
func DirectX(t Tangents, near, far float32) xform.Mat4 {
	l, r := float64(t.Left), float64(t.Right)
	u, d := t.up(), t.down()
	n, f := float64(near), float64(far)

	return xform.Mat4{
		{2 / (r - l), 0, (r + l) / (r - l), 0},
		{0, 2 / (u - d), (u + d) / (u - d), 0},
		{0, 0, -f / (f - n), -(f * n) / (f - n)},
		{0, 0, -1, 0},
	}
}

// OpenGL returns the depth [-1,1] projection for t, built from the frustum
// extents on the near plane. The result is row-major; FromTangents
// transposes it for the application.
func OpenGL(t Tangents, near, far float32) xform.Mat4 {
	n, f := float64(near), float64(far)
	left, right := n*float64(t.Left), n*float64(t.Right)
	top, bottom := n*t.up(), n*t.down()

	return xform.Mat4{
		{2 * n / (right - left), 0, (right + left) / (right - left), 0},
		{0, 2 * n / (top - bottom), (top + bottom) / (top - bottom), 0},
		{0, 0, -(f + n) / (f - n), -2 * f * n / (f - n)},
		{0, 0, -1, 0},
	}
}

// FromTangents builds the projection for the given API convention in the
// layout that API expects.
func FromTangents(t Tangents, near, far float32, conv vr.GraphicsAPIConvention) vr.HmdMatrix44 {
	if conv == vr.APIOpenGL {
		return xform.ToHmd44(xform.Transpose(OpenGL(t, near, far)))
	}
	return xform.ToHmd44(DirectX(t, near, far))
}

// Builder answers projection queries from the view cache.
type Builder struct {
	cache  *viewcache.Cache
	logger *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) { b.logger = logger.With("component", "projection") }
}

// NewBuilder creates a builder reading eye views from cache.
func NewBuilder(cache *viewcache.Cache, opts ...Option) *Builder {
	b := &Builder{
		cache:  cache,
		logger: slog.Default().With("component", "projection"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Fov returns the field of view of eye, taken from views located in the
// session's view space. Invalid eyes are treated as the left eye.
func (b *Builder) Fov(s xr.Session, eye vr.Eye) (xr.Fovf, error) {
	eye = eye.Clamp()
	snap, err := b.cache.Views(s, s.ReferenceSpace(xr.ReferenceSpaceView))
	if err != nil {
		return xr.Fovf{}, fmt.Errorf("projection: %w", err)
	}
	fov := snap.Views[eye].Fov
	if fov.AngleUp == 0 && fov.AngleDown == 0 {
		log.Once(b.logger, "projection.zero-vertical-fov."+eye.String(),
			"runtime reported a zero vertical field of view", "eye", eye)
	}
	return fov, nil
}

// Raw returns the legacy frustum tangents for eye.
func (b *Builder) Raw(s xr.Session, eye vr.Eye) (Tangents, error) {
	fov, err := b.Fov(s, eye)
	if err != nil {
		return Tangents{}, err
	}
	return FromFov(fov), nil
}

// Matrix returns the projection matrix for eye with the given clip planes.
func (b *Builder) Matrix(s xr.Session, eye vr.Eye, near, far float32, conv vr.GraphicsAPIConvention) (vr.HmdMatrix44, error) {
	t, err := b.Raw(s, eye)
	if err != nil {
		return vr.HmdMatrix44{}, err
	}
	return FromTangents(t, near, far, conv), nil
}
