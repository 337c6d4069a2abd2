// Package halfedge implements the half-edge adjacency structure of a closed
// convex polyhedron.
//
// Faces, vertices and directed half-edges are stored in flat slices and refer
// to each other by integer index, never by pointer. The structure is assembled
// with a Builder (AddVertex, AddFace) and frozen by Build, which synthesizes the
// half-edges and links every edge to its twin and to the next edge around its
// face. A Structure is read-only once built and can be shared between
// goroutines without locking.
//
// Faces do not have to be triangles, but the mesh must be closed: every edge
// borders exactly two faces.
package halfedge

import "fmt"

// Edge is a directed half-edge.
type Edge struct {
	VertexIndex int // Vertex at the origin of the edge
	TwinIndex   int // Opposite half-edge, bounding the neighbouring face
	FaceIndex   int // Face bounded by this edge
	NextIndex   int // Next half-edge around FaceIndex (CCW)
}

// Face is a polygon of the polyhedron.
type Face struct {
	EdgeIndex int   // One half-edge of the face
	Vertices  []int // Vertex indices, CCW as seen from outside. Must not be modified.
}

// Vertex references a point in an external coordinate array.
type Vertex struct {
	PointIndex int // Index of the point in the vertex coordinate array
	EdgeIndex  int // One half-edge leaving this vertex
}

// Structure is a frozen half-edge mesh.
type Structure struct {
	faces    []Face
	vertices []Vertex
	edges    []Edge

	// Backing storage of every Face.Vertices slice.
	faceVertices []int
}

// NbFaces returns the number of faces.
func (s *Structure) NbFaces() int {
	return len(s.faces)
}

// NbHalfEdges returns the number of half-edges (twice the number of edges).
func (s *Structure) NbHalfEdges() int {
	return len(s.edges)
}

// NbVertices returns the number of vertices.
func (s *Structure) NbVertices() int {
	return len(s.vertices)
}

// Face returns the face at index. It panics if index is out of range.
func (s *Structure) Face(index int) Face {
	if index < 0 || index >= len(s.faces) {
		panic(fmt.Sprintf("halfedge: face index %d out of range [0,%d)", index, len(s.faces)))
	}
	return s.faces[index]
}

// HalfEdge returns the half-edge at index. It panics if index is out of range.
func (s *Structure) HalfEdge(index int) Edge {
	if index < 0 || index >= len(s.edges) {
		panic(fmt.Sprintf("halfedge: edge index %d out of range [0,%d)", index, len(s.edges)))
	}
	return s.edges[index]
}

// Vertex returns the vertex at index. It panics if index is out of range.
func (s *Structure) Vertex(index int) Vertex {
	if index < 0 || index >= len(s.vertices) {
		panic(fmt.Sprintf("halfedge: vertex index %d out of range [0,%d)", index, len(s.vertices)))
	}
	return s.vertices[index]
}

// OutgoingEdges calls fn for every half-edge leaving vertex, walking the
// one-ring through twin and next links. Iteration stops early when fn returns false.
func (s *Structure) OutgoingEdges(vertex int, fn func(edge int) bool) {
	start := s.Vertex(vertex).EdgeIndex
	edge := start
	for {
		if !fn(edge) {
			return
		}
		// The twin arrives at vertex, so its successor leaves it again.
		edge = s.edges[s.edges[edge].TwinIndex].NextIndex
		if edge == start {
			return
		}
	}
}

// FaceEdges calls fn for every half-edge around face, in CCW order.
// Iteration stops early when fn returns false.
func (s *Structure) FaceEdges(face int, fn func(edge int) bool) {
	start := s.Face(face).EdgeIndex
	edge := start
	for {
		if !fn(edge) {
			return
		}
		edge = s.edges[edge].NextIndex
		if edge == start {
			return
		}
	}
}

// EdgeEnd returns the vertex at the end of a half-edge, which is the origin of its twin.
func (s *Structure) EdgeEnd(edge int) int {
	return s.edges[s.HalfEdge(edge).TwinIndex].VertexIndex
}
