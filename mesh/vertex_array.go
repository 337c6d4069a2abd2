package mesh

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// PolygonFace describes one face of a PolygonVertexArray: NbVertices
// consecutive entries of the index buffer, starting at IndexBase.
type PolygonFace struct {
	IndexBase  int
	NbVertices int
}

// PolygonVertexArray is the raw polygon input of a convex mesh: a vertex
// buffer and, per face, a CCW list of indices into it.
type PolygonVertexArray interface {
	NbVertices() int
	Vertex(index int) mgl64.Vec3
	NbFaces() int
	Face(index int) PolygonFace
	// VertexIndexInFace returns the vertex buffer index of the k-th vertex of a face.
	VertexIndexInFace(face, k int) int
}

// Float is the set of supported vertex component types.
type Float interface {
	~float32 | ~float64
}

// Index is the set of supported index buffer types.
type Index interface {
	~uint16 | ~uint32 | ~int
}

// VertexArray is a PolygonVertexArray viewing caller-owned buffers.
// Vertices holds three components (x, y, z) per vertex. The buffers are not
// copied and must stay unchanged while the array is in use.
type VertexArray[V Float, I Index] struct {
	Vertices []V
	Indices  []I
	Faces    []PolygonFace
}

var _ PolygonVertexArray = (*VertexArray[float64, uint32])(nil)

// NewVertexArray wraps vertex, index and face buffers.
func NewVertexArray[V Float, I Index](vertices []V, indices []I, faces []PolygonFace) *VertexArray[V, I] {
	return &VertexArray[V, I]{
		Vertices: vertices,
		Indices:  indices,
		Faces:    faces,
	}
}

func (a *VertexArray[V, I]) NbVertices() int {
	return len(a.Vertices) / 3
}

func (a *VertexArray[V, I]) Vertex(index int) mgl64.Vec3 {
	v := a.Vertices[index*3 : index*3+3]
	return mgl64.Vec3{float64(v[0]), float64(v[1]), float64(v[2])}
}

func (a *VertexArray[V, I]) NbFaces() int {
	return len(a.Faces)
}

func (a *VertexArray[V, I]) Face(index int) PolygonFace {
	return a.Faces[index]
}

func (a *VertexArray[V, I]) VertexIndexInFace(face, k int) int {
	f := a.Faces[face]
	if k < 0 || k >= f.NbVertices {
		panic(fmt.Sprintf("mesh: vertex %d out of range for face %d with %d vertices", k, face, f.NbVertices))
	}
	return int(a.Indices[f.IndexBase+k])
}

// NewIndexedFaces builds the flat index buffer and face table of a mesh whose
// faces are given as separate index lists.
func NewIndexedFaces(faces [][]int) ([]int, []PolygonFace) {
	var indices []int
	table := make([]PolygonFace, 0, len(faces))
	for _, face := range faces {
		table = append(table, PolygonFace{IndexBase: len(indices), NbVertices: len(face)})
		indices = append(indices, face...)
	}
	return indices, table
}
