package halfedge

import (
	"errors"
	"fmt"
)

var (
	ErrDegenerateFace   = errors.New("halfedge: degenerate face")
	ErrVertexOutOfRange = errors.New("halfedge: face vertex out of range")
	ErrNonManifold      = errors.New("halfedge: directed edge shared by two faces")
	ErrUnmatchedTwin    = errors.New("halfedge: edge has no twin, mesh is not closed")
	ErrIsolatedVertex   = errors.New("halfedge: vertex has no incident edge")
)

// edgeKey identifies a directed edge by its origin and end vertices.
type edgeKey struct {
	from, to int
}

// Builder collects vertices and faces before the half-edges are synthesized.
type Builder struct {
	vertices     []Vertex
	faceStarts   []int
	faceVertices []int
}

// NewBuilder returns a Builder with room for the given number of faces and vertices.
func NewBuilder(facesCapacity, verticesCapacity int) *Builder {
	return &Builder{
		vertices:     make([]Vertex, 0, verticesCapacity),
		faceStarts:   make([]int, 0, facesCapacity+1),
		faceVertices: make([]int, 0, facesCapacity*3),
	}
}

// AddVertex appends a vertex referencing the point at pointIndex in the
// coordinate array and returns the index of the new vertex.
func (b *Builder) AddVertex(pointIndex int) int {
	b.vertices = append(b.vertices, Vertex{PointIndex: pointIndex, EdgeIndex: -1})
	return len(b.vertices) - 1
}

// AddFace appends a face whose vertices are given in CCW order as seen from
// outside the polyhedron. The slice is copied. Validation happens in Build.
func (b *Builder) AddFace(vertices []int) {
	b.faceStarts = append(b.faceStarts, len(b.faceVertices))
	b.faceVertices = append(b.faceVertices, vertices...)
}

// NbFaces returns the number of faces added so far.
func (b *Builder) NbFaces() int {
	return len(b.faceStarts)
}

// NbVertices returns the number of vertices added so far.
func (b *Builder) NbVertices() int {
	return len(b.vertices)
}

// Build synthesizes one half-edge per consecutive vertex pair of every face,
// links each edge to the next one around its face and to its twin, and
// returns the frozen Structure. It fails if the faces do not describe a closed
// two-manifold mesh. The Builder is left untouched and may be built again.
func (b *Builder) Build() (*Structure, error) {
	nbFaces := b.NbFaces()
	nbEdges := len(b.faceVertices)

	s := &Structure{
		faces:        make([]Face, nbFaces),
		vertices:     make([]Vertex, b.NbVertices()),
		edges:        make([]Edge, nbEdges),
		faceVertices: make([]int, nbEdges),
	}
	copy(s.vertices, b.vertices)
	copy(s.faceVertices, b.faceVertices)

	edgeIndices := make(map[edgeKey]int, nbEdges)

	for f := 0; f < nbFaces; f++ {
		start := b.faceStarts[f]
		end := nbEdges
		if f+1 < nbFaces {
			end = b.faceStarts[f+1]
		}
		count := end - start
		if count < 3 {
			return nil, fmt.Errorf("face %d has %d vertices: %w", f, count, ErrDegenerateFace)
		}

		// Full slice expression so appending to a face can never spill into the next one.
		s.faces[f] = Face{EdgeIndex: start, Vertices: s.faceVertices[start:end:end]}

		for k := 0; k < count; k++ {
			from := s.faceVertices[start+k]
			to := s.faceVertices[start+(k+1)%count]

			if from < 0 || from >= len(s.vertices) {
				return nil, fmt.Errorf("face %d references vertex %d of %d: %w", f, from, len(s.vertices), ErrVertexOutOfRange)
			}
			if from == to {
				return nil, fmt.Errorf("face %d repeats vertex %d: %w", f, from, ErrDegenerateFace)
			}

			// Half-edges of a face are contiguous, in face order.
			index := start + k
			key := edgeKey{from, to}
			if other, exists := edgeIndices[key]; exists {
				return nil, fmt.Errorf("edge %d->%d of face %d already used by face %d: %w",
					from, to, f, s.edges[other].FaceIndex, ErrNonManifold)
			}
			edgeIndices[key] = index

			s.edges[index] = Edge{
				VertexIndex: from,
				TwinIndex:   -1,
				FaceIndex:   f,
				NextIndex:   start + (k+1)%count,
			}

			if s.vertices[from].EdgeIndex < 0 {
				s.vertices[from].EdgeIndex = index
			}
		}
	}

	for i := range s.edges {
		edge := &s.edges[i]
		to := s.edges[edge.NextIndex].VertexIndex
		twin, ok := edgeIndices[edgeKey{to, edge.VertexIndex}]
		if !ok {
			return nil, fmt.Errorf("edge %d->%d of face %d: %w", edge.VertexIndex, to, edge.FaceIndex, ErrUnmatchedTwin)
		}
		edge.TwinIndex = twin
	}

	for v, vertex := range s.vertices {
		if vertex.EdgeIndex < 0 {
			return nil, fmt.Errorf("vertex %d: %w", v, ErrIsolatedVertex)
		}
	}

	return s, nil
}

// MustBuild is like Build but panics if the mesh is malformed.
func (b *Builder) MustBuild() *Structure {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}
