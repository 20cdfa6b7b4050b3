package xr

// VisibilityMaskType selects which part of the display a mask describes.
type VisibilityMaskType int32

const (
	VisibilityMaskHiddenTriangleMesh  VisibilityMaskType = 1
	VisibilityMaskVisibleTriangleMesh VisibilityMaskType = 2
	VisibilityMaskLineLoop            VisibilityMaskType = 3
)

func (t VisibilityMaskType) String() string {
	switch t {
	case VisibilityMaskHiddenTriangleMesh:
		return "hidden-triangles"
	case VisibilityMaskVisibleTriangleMesh:
		return "visible-triangles"
	case VisibilityMaskLineLoop:
		return "line-loop"
	default:
		return "unknown"
	}
}

// VisibilityMask is an indexed mesh in view-plane tangent space.
//
// Callers set the capacities and provide slices of at least that length;
// the runtime writes the counts and, when capacities are non-zero, fills
// Vertices and Indices.
type VisibilityMask struct {
	VertexCapacityInput uint32
	VertexCountOutput   uint32
	Vertices            []Vector2f

	IndexCapacityInput uint32
	IndexCountOutput   uint32
	Indices            []uint32
}

// FillVisibilityMask implements the two-call idiom for a runtime-side mesh.
// It is shared by the simulator and test doubles.
func FillVisibilityMask(mask *VisibilityMask, vertices []Vector2f, indices []uint32) error {
	mask.VertexCountOutput = uint32(len(vertices))
	mask.IndexCountOutput = uint32(len(indices))
	if mask.VertexCapacityInput == 0 && mask.IndexCapacityInput == 0 {
		return nil
	}
	if mask.VertexCapacityInput < uint32(len(vertices)) || mask.IndexCapacityInput < uint32(len(indices)) {
		return ResultErrorSizeInsufficient.Err("xrGetVisibilityMaskKHR")
	}
	if len(mask.Vertices) < len(vertices) || len(mask.Indices) < len(indices) {
		return ResultErrorValidationFailure.Err("xrGetVisibilityMaskKHR")
	}
	copy(mask.Vertices, vertices)
	copy(mask.Indices, indices)
	return nil
}
