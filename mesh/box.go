package mesh

import "github.com/go-gl/mathgl/mgl64"

// boxFaces lists the six quads of a box, CCW as seen from outside, over the
// corner numbering used by NewBoxMesh.
var boxFaces = [][]int{
	{0, 4, 7, 3}, // -X
	{1, 2, 6, 5}, // +X
	{0, 1, 5, 4}, // -Y
	{3, 7, 6, 2}, // +Y
	{0, 3, 2, 1}, // -Z
	{4, 5, 6, 7}, // +Z
}

// NewBoxMesh returns the convex mesh of a box centered at the origin.
// Corners are numbered (-x,-y,-z), (+x,-y,-z), (+x,+y,-z), (-x,+y,-z),
// then the same four at +z. It panics if a half-extent is not positive.
func NewBoxMesh(halfExtents mgl64.Vec3) *ConvexMesh {
	hx, hy, hz := halfExtents.X(), halfExtents.Y(), halfExtents.Z()

	vertices := []float64{
		-hx, -hy, -hz,
		+hx, -hy, -hz,
		+hx, +hy, -hz,
		-hx, +hy, -hz,
		-hx, -hy, +hz,
		+hx, -hy, +hz,
		+hx, +hy, +hz,
		-hx, +hy, +hz,
	}

	indices, faces := NewIndexedFaces(boxFaces)
	return MustNewConvexMesh(NewVertexArray(vertices, indices, faces))
}
