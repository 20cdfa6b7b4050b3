// Package hiddenmesh converts the runtime's indexed visibility masks into
// the flat vertex lists legacy applications use to stencil out the parts of
// each eye's render target the lenses never show.
package hiddenmesh

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/teslashibe/go-hmdbridge/pkg/projection"
	"github.com/teslashibe/go-hmdbridge/pkg/vr"
	"github.com/teslashibe/go-hmdbridge/pkg/xr"
)

// Defaults for the UV remap.
const (
	DefaultVerticalScale = 1.0

	// edgeEpsilon is how close a vertex must be to the top or bottom tangent
	// to count as lying on the edge, where the vertical scale is not applied.
	edgeEpsilon = 0.001
)

// ErrInvalidMeshType is returned for mesh types outside the legacy enum.
var ErrInvalidMeshType = errors.New("hiddenmesh: invalid mesh type")

// Normalizer fetches and converts visibility masks.
type Normalizer struct {
	caps          xr.Capabilities
	projection    *projection.Builder
	fix           bool
	verticalScale float32
	logger        *slog.Logger
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithFix enables or disables the remap from tangent space into UV space.
// With the remap disabled the runtime's coordinates are passed through.
func WithFix(enabled bool) Option {
	return func(n *Normalizer) { n.fix = enabled }
}

// WithVerticalScale sets the vertical correction applied to interior
// vertices when the remap is enabled.
func WithVerticalScale(scale float32) Option {
	return func(n *Normalizer) { n.verticalScale = scale }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Normalizer) { n.logger = logger.With("component", "hiddenmesh") }
}

// New creates a normalizer. The projection builder supplies the frustum
// bounds used for the UV remap.
func New(caps xr.Capabilities, proj *projection.Builder, opts ...Option) *Normalizer {
	n := &Normalizer{
		caps:          caps,
		projection:    proj,
		fix:           true,
		verticalScale: DefaultVerticalScale,
		logger:        slog.Default().With("component", "hiddenmesh"),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func maskType(t vr.HiddenAreaMeshType) (xr.VisibilityMaskType, bool) {
	switch t {
	case vr.HiddenAreaMeshStandard:
		return xr.VisibilityMaskHiddenTriangleMesh, true
	case vr.HiddenAreaMeshInverse:
		return xr.VisibilityMaskVisibleTriangleMesh, true
	case vr.HiddenAreaMeshLineLoop:
		return xr.VisibilityMaskLineLoop, true
	default:
		return 0, false
	}
}

// Mesh returns the hidden-area mesh of the given type for eye. When the
// runtime does not support visibility masks the mesh is empty for every
// type. Each call returns a freshly allocated vertex slice.
func (n *Normalizer) Mesh(s xr.Session, eye vr.Eye, t vr.HiddenAreaMeshType) (vr.HiddenAreaMesh, error) {
	if !n.caps.VisibilityMaskSupported() {
		return vr.HiddenAreaMesh{}, nil
	}
	mt, ok := maskType(t)
	if !ok {
		return vr.HiddenAreaMesh{}, fmt.Errorf("%w: %d", ErrInvalidMeshType, t)
	}
	eye = eye.Clamp()

	var mask xr.VisibilityMask
	if err := s.VisibilityMask(uint32(eye), mt, &mask); err != nil {
		return vr.HiddenAreaMesh{}, fmt.Errorf("hiddenmesh: query mask size: %w", err)
	}
	if mask.IndexCountOutput == 0 {
		n.logger.Debug("runtime has no visibility mask", "eye", eye, "type", t)
		return vr.HiddenAreaMesh{}, nil
	}

	mask.VertexCapacityInput = mask.VertexCountOutput
	mask.IndexCapacityInput = mask.IndexCountOutput
	mask.Vertices = make([]xr.Vector2f, mask.VertexCapacityInput)
	mask.Indices = make([]uint32, mask.IndexCapacityInput)
	if err := s.VisibilityMask(uint32(eye), mt, &mask); err != nil {
		return vr.HiddenAreaMesh{}, fmt.Errorf("hiddenmesh: fetch mask: %w", err)
	}

	var bounds projection.Tangents
	if n.fix {
		var err error
		if bounds, err = n.projection.Raw(s, eye); err != nil {
			return vr.HiddenAreaMesh{}, fmt.Errorf("hiddenmesh: %w", err)
		}
	}

	indices := mask.Indices[:mask.IndexCountOutput]
	vertices := mask.Vertices[:mask.VertexCountOutput]
	out := make([]vr.HmdVector2, len(indices))
	for i, idx := range indices {
		if int(idx) >= len(vertices) {
			return vr.HiddenAreaMesh{}, fmt.Errorf("hiddenmesh: index %d of %d vertices: %w",
				idx, len(vertices), xr.ResultErrorValidationFailure.Err("xrGetVisibilityMaskKHR"))
		}
		v := vertices[idx]
		if n.fix {
			out[i] = n.remap(v, bounds)
		} else {
			out[i] = vr.HmdVector2{V: [2]float32{v.X, v.Y}}
		}
	}

	count := uint32(len(out))
	if t != vr.HiddenAreaMeshLineLoop {
		count /= 3
	}
	return vr.HiddenAreaMesh{Vertices: out, PrimitiveCount: count}, nil
}

// remap maps a tangent-space vertex into [0,1] UV space across the eye's
// frustum. Vertices lying on the top or bottom edge keep their exact
// position; interior vertices get the vertical scale.
func (n *Normalizer) remap(v xr.Vector2f, b projection.Tangents) vr.HmdVector2 {
	u := (v.X - b.Left) / (b.Right - b.Left)

	y := v.Y
	if abs(v.Y-b.Top) > edgeEpsilon && abs(v.Y-b.Bottom) > edgeEpsilon {
		y *= n.verticalScale
	}
	return vr.HmdVector2{V: [2]float32{u, (y - b.Top) / (b.Bottom - b.Top)}}
}

func abs(f float32) float32 {
	return float32(math.Abs(float64(f)))
}
