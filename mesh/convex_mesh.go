// Package mesh builds convex polyhedra from raw polygon data.
//
// A ConvexMesh owns a copy of the vertex positions, the outward unit normal
// of every face, the unscaled bounds and the half-edge adjacency of the
// polyhedron. It is immutable once built and is meant to be shared by any
// number of collision shapes, each applying its own scale.
package mesh

import (
	"errors"
	"fmt"
	"math"

	"github.com/akmonengine/hull/halfedge"
	"github.com/akmonengine/hull/internal/logger"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

const (
	// degenerateNormalEpsilon is the smallest accepted length of an
	// unnormalized face normal (twice the face area).
	degenerateNormalEpsilon = 1e-12

	// convexityTolerance is the distance, relative to the mesh extent, a
	// vertex may lie in front of a face plane before the mesh is rejected.
	convexityTolerance = 1e-6
)

var (
	ErrTooFewVertices   = errors.New("mesh: a convex mesh needs at least 4 vertices")
	ErrDegenerateNormal = errors.New("mesh: face normal is degenerate")
	ErrNotConvex        = errors.New("mesh: vertex lies in front of a face plane")
	ErrZeroVolume       = errors.New("mesh: polyhedron has no volume")
)

// ConvexMesh is a closed convex polyhedron.
type ConvexMesh struct {
	vertices    []mgl64.Vec3
	faceNormals []mgl64.Vec3
	structure   *halfedge.Structure

	min, max mgl64.Vec3
	volume   float64
	centroid mgl64.Vec3
}

// NewConvexMesh copies the vertices of array, builds the half-edge structure
// of its faces and computes the face normals, bounds and volume. Vertex i of
// the half-edge structure refers to point i of the array.
//
// It fails if the faces do not form a closed two-manifold, if a face is
// degenerate, or if the polyhedron is not convex or has no volume.
func NewConvexMesh(array PolygonVertexArray) (*ConvexMesh, error) {
	nbVertices := array.NbVertices()
	nbFaces := array.NbFaces()
	if nbVertices < 4 {
		return nil, fmt.Errorf("%d vertices: %w", nbVertices, ErrTooFewVertices)
	}

	m := &ConvexMesh{
		vertices:    make([]mgl64.Vec3, nbVertices),
		faceNormals: make([]mgl64.Vec3, nbFaces),
	}

	builder := halfedge.NewBuilder(nbFaces, nbVertices)
	for i := 0; i < nbVertices; i++ {
		m.vertices[i] = array.Vertex(i)
		builder.AddVertex(i)
	}

	faceVertices := make([]int, 0, 8)
	for f := 0; f < nbFaces; f++ {
		faceVertices = faceVertices[:0]
		for k := 0; k < array.Face(f).NbVertices; k++ {
			faceVertices = append(faceVertices, array.VertexIndexInFace(f, k))
		}
		builder.AddFace(faceVertices)
	}

	structure, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("mesh: %w", err)
	}
	m.structure = structure

	m.computeBounds()

	if err := m.computeFaceNormals(); err != nil {
		return nil, err
	}
	if err := m.checkConvexity(); err != nil {
		return nil, err
	}

	m.computeVolume()
	if m.volume <= 0 {
		return nil, fmt.Errorf("volume %g: %w", m.volume, ErrZeroVolume)
	}

	logger.Debug("convex mesh built",
		zap.Int("vertices", nbVertices),
		zap.Int("faces", nbFaces),
		zap.Int("halfEdges", structure.NbHalfEdges()),
		zap.Float64("volume", m.volume),
	)

	return m, nil
}

// MustNewConvexMesh is like NewConvexMesh but panics on malformed input.
func MustNewConvexMesh(array PolygonVertexArray) *ConvexMesh {
	m, err := NewConvexMesh(array)
	if err != nil {
		panic(err)
	}
	return m
}

// computeFaceNormals uses Newell's method, which stays robust for polygons
// with more than three, slightly non-planar, vertices.
func (m *ConvexMesh) computeFaceNormals() error {
	for f := range m.faceNormals {
		var normal mgl64.Vec3
		m.structure.FaceEdges(f, func(edge int) bool {
			a := m.vertices[m.structure.HalfEdge(edge).VertexIndex]
			b := m.vertices[m.structure.EdgeEnd(edge)]

			normal[0] += (a.Y() - b.Y()) * (a.Z() + b.Z())
			normal[1] += (a.Z() - b.Z()) * (a.X() + b.X())
			normal[2] += (a.X() - b.X()) * (a.Y() + b.Y())
			return true
		})

		length := normal.Len()
		if length < degenerateNormalEpsilon {
			return fmt.Errorf("face %d: %w", f, ErrDegenerateNormal)
		}
		m.faceNormals[f] = normal.Mul(1 / length)
	}

	return nil
}

func (m *ConvexMesh) checkConvexity() error {
	tolerance := convexityTolerance * math.Max(m.max.Sub(m.min).Len(), 1)

	for f, normal := range m.faceNormals {
		facePoint := m.vertices[m.structure.Face(f).Vertices[0]]
		for v, vertex := range m.vertices {
			if distance := normal.Dot(vertex.Sub(facePoint)); distance > tolerance {
				return fmt.Errorf("vertex %d is %g in front of face %d: %w", v, distance, f, ErrNotConvex)
			}
		}
	}

	return nil
}

func (m *ConvexMesh) computeBounds() {
	m.min = m.vertices[0]
	m.max = m.vertices[0]

	for _, v := range m.vertices[1:] {
		m.min[0] = math.Min(m.min[0], v[0])
		m.min[1] = math.Min(m.min[1], v[1])
		m.min[2] = math.Min(m.min[2], v[2])

		m.max[0] = math.Max(m.max[0], v[0])
		m.max[1] = math.Max(m.max[1], v[1])
		m.max[2] = math.Max(m.max[2], v[2])
	}
}

// computeVolume sums the signed volumes of the tetrahedra joining a reference
// point to a fan triangulation of every face (divergence theorem).
func (m *ConvexMesh) computeVolume() {
	// Volumes are taken relative to the bounds center to limit cancellation.
	origin := m.min.Add(m.max).Mul(0.5)

	var volume float64
	var weighted mgl64.Vec3
	for f := 0; f < m.structure.NbFaces(); f++ {
		face := m.structure.Face(f)
		a := m.vertices[face.Vertices[0]].Sub(origin)
		for i := 1; i+1 < len(face.Vertices); i++ {
			b := m.vertices[face.Vertices[i]].Sub(origin)
			c := m.vertices[face.Vertices[i+1]].Sub(origin)

			tetra := a.Dot(b.Cross(c)) / 6
			volume += tetra
			weighted = weighted.Add(a.Add(b).Add(c).Mul(tetra / 4))
		}
	}

	m.volume = volume
	if volume > 0 {
		m.centroid = weighted.Mul(1 / volume).Add(origin)
	} else {
		m.centroid = origin
	}
}

// NbVertices returns the number of vertices.
func (m *ConvexMesh) NbVertices() int {
	return len(m.vertices)
}

// Vertex returns the unscaled position of vertex index.
func (m *ConvexMesh) Vertex(index int) mgl64.Vec3 {
	return m.vertices[index]
}

// NbFaces returns the number of faces.
func (m *ConvexMesh) NbFaces() int {
	return len(m.faceNormals)
}

// FaceNormal returns the outward unit normal of face index.
func (m *ConvexMesh) FaceNormal(index int) mgl64.Vec3 {
	return m.faceNormals[index]
}

// FacePoint returns a point on the plane of face index (its first vertex).
func (m *ConvexMesh) FacePoint(index int) mgl64.Vec3 {
	return m.vertices[m.structure.Face(index).Vertices[0]]
}

// Bounds returns the unscaled axis-aligned bounds of the vertices.
func (m *ConvexMesh) Bounds() (min, max mgl64.Vec3) {
	return m.min, m.max
}

// Volume returns the unscaled volume of the polyhedron.
func (m *ConvexMesh) Volume() float64 {
	return m.volume
}

// Centroid returns the unscaled center of mass of the solid polyhedron.
func (m *ConvexMesh) Centroid() mgl64.Vec3 {
	return m.centroid
}

// HalfEdgeStructure returns the adjacency of the mesh.
func (m *ConvexMesh) HalfEdgeStructure() *halfedge.Structure {
	return m.structure
}
