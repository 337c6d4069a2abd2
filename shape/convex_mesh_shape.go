package shape

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/akmonengine/hull/mesh"
	"github.com/go-gl/mathgl/mgl64"
)

// ConvexMeshShape is a scaled view of a shared ConvexMesh. Queries take
// local coordinates in the scaled frame: a mesh vertex v appears at
// v∘scale, where ∘ is the component-wise product.
type ConvexMeshShape struct {
	mesh     *mesh.ConvexMesh
	scale    mgl64.Vec3
	invScale mgl64.Vec3

	// containsOrigin is set when the local origin is strictly inside the
	// mesh, so every support dot product must be non-negative.
	containsOrigin bool
}

const (
	// plateauEpsilon is the relative dot product difference under which two
	// vertices are considered level by the hill-climb.
	plateauEpsilon = 1e-12

	// originMargin is the distance, relative to the mesh extent, the origin
	// must keep from every face plane to count as enclosed.
	originMargin = 1e-9
)

// NewConvexMeshShape wraps m with the given scale. It panics if m is nil or
// a scale component is zero.
func NewConvexMeshShape(m *mesh.ConvexMesh, scale mgl64.Vec3) *ConvexMeshShape {
	assert(m != nil, "convex mesh shape needs a mesh")
	assert(scale.X() != 0 && scale.Y() != 0 && scale.Z() != 0, "scale %v has a zero component", scale)

	min, max := m.Bounds()
	margin := originMargin * math.Max(max.Sub(min).Len(), 1)
	containsOrigin := true
	for f := 0; f < m.NbFaces(); f++ {
		if m.FaceNormal(f).Dot(m.FacePoint(f).Mul(-1)) > -margin {
			containsOrigin = false
			break
		}
	}

	return &ConvexMeshShape{
		mesh:           m,
		scale:          scale,
		invScale:       mgl64.Vec3{1 / scale.X(), 1 / scale.Y(), 1 / scale.Z()},
		containsOrigin: containsOrigin,
	}
}

func (c *ConvexMeshShape) Type() Type {
	return TypeConvexMesh
}

// Mesh returns the shared unscaled mesh.
func (c *ConvexMeshShape) Mesh() *mesh.ConvexMesh {
	return c.mesh
}

func (c *ConvexMeshShape) Scale() mgl64.Vec3 {
	return c.scale
}

func mulComponents(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

// Support scans every vertex and returns the scaled vertex maximizing
// dot(direction∘scale, v). Ties keep the lowest vertex index.
func (c *ConvexMeshShape) Support(direction mgl64.Vec3) mgl64.Vec3 {
	scaled := mulComponents(direction, c.scale)

	best := -math.MaxFloat64
	index := 0
	for i := 0; i < c.mesh.NbVertices(); i++ {
		if dot := scaled.Dot(c.mesh.Vertex(i)); dot > best {
			best = dot
			index = i
		}
	}
	c.assertSupportDot(best)

	return mulComponents(c.mesh.Vertex(index), c.scale)
}

// SupportCached climbs the vertex graph from the cached vertex, moving to
// the best neighbour while it strictly improves the dot product. When no
// neighbour improves but some tie, the climb crosses that plateau before
// giving up, so vertices lying inside a flat face or along a straight edge
// cannot stop it early. The final vertex is stored back in cache; a nil
// cache starts from vertex 0.
func (c *ConvexMeshShape) SupportCached(direction mgl64.Vec3, cache *SupportCache) mgl64.Vec3 {
	scaled := mulComponents(direction, c.scale)

	current := 0
	if cache != nil && cache.vertex >= 0 && cache.vertex < c.mesh.NbVertices() {
		current = cache.vertex
	}
	best := scaled.Dot(c.mesh.Vertex(current))

	for {
		next, nextDot := c.bestNeighbour(scaled, current)
		if nextDot > best {
			current, best = next, nextDot
			continue
		}
		if nextDot < best-c.plateauTolerance(best) {
			break
		}

		next, nextDot, ok := c.crossPlateau(scaled, current, best)
		if !ok {
			break
		}
		current, best = next, nextDot
	}
	c.assertSupportDot(best)

	if cache != nil {
		cache.vertex = current
	}
	return mulComponents(c.mesh.Vertex(current), c.scale)
}

// bestNeighbour returns the one-ring neighbour of vertex with the largest
// dot product, the first one on ties.
func (c *ConvexMeshShape) bestNeighbour(scaled mgl64.Vec3, vertex int) (int, float64) {
	s := c.mesh.HalfEdgeStructure()

	best := -math.MaxFloat64
	index := vertex
	s.OutgoingEdges(vertex, func(edge int) bool {
		neighbour := s.EdgeEnd(edge)
		if dot := scaled.Dot(c.mesh.Vertex(neighbour)); dot > best {
			best = dot
			index = neighbour
		}
		return true
	})
	return index, best
}

// crossPlateau walks breadth-first over the vertices connected to start
// whose dot product equals level within tolerance, and returns the first
// vertex found strictly above level. It reports false when the plateau is
// the maximum.
func (c *ConvexMeshShape) crossPlateau(scaled mgl64.Vec3, start int, level float64) (int, float64, bool) {
	s := c.mesh.HalfEdgeStructure()
	tolerance := c.plateauTolerance(level)

	// visited doubles as the queue.
	var buffer [32]int
	visited := append(buffer[:0], start)

	found, foundDot := -1, level
	for i := 0; i < len(visited) && found < 0; i++ {
		s.OutgoingEdges(visited[i], func(edge int) bool {
			neighbour := s.EdgeEnd(edge)
			dot := scaled.Dot(c.mesh.Vertex(neighbour))
			if dot > level {
				found, foundDot = neighbour, dot
				return false
			}
			if dot >= level-tolerance && !slices.Contains(visited, neighbour) {
				visited = append(visited, neighbour)
			}
			return true
		})
	}

	return found, foundDot, found >= 0
}

func (c *ConvexMeshShape) plateauTolerance(level float64) float64 {
	return plateauEpsilon * (math.Abs(level) + 1)
}

// assertSupportDot checks that the support dot product is not negative
// when the local origin lies strictly inside the mesh.
func (c *ConvexMeshShape) assertSupportDot(dot float64) {
	assert(!c.containsOrigin || dot >= 0, "support dot product %g is negative around an enclosed origin", dot)
}

// Raycast clips the ray against every face plane in the unscaled mesh
// frame. The hit point is reported on the scaled ray, the normal is the
// unit outward normal of the entry face in the scaled frame.
func (c *ConvexMeshShape) Raycast(ray Ray) (RaycastInfo, bool) {
	p1 := mulComponents(ray.Point1, c.invScale)
	direction := mulComponents(ray.Point2, c.invScale).Sub(p1)

	tMin := 0.0
	tMax := ray.MaxFraction
	var normal mgl64.Vec3
	entered := false

	for f := 0; f < c.mesh.NbFaces(); f++ {
		n := c.mesh.FaceNormal(f)
		denominator := n.Dot(direction)
		distance := n.Dot(c.mesh.FacePoint(f)) - n.Dot(p1)

		if denominator == 0 {
			// Parallel to the face: a miss when starting in front of it.
			if distance < 0 {
				return RaycastInfo{}, false
			}
			continue
		}

		t := distance / denominator
		if denominator < 0 {
			if t > tMin {
				tMin = t
				normal = n
				entered = true
			}
		} else if t < tMax {
			tMax = t
		}

		if tMin > tMax {
			return RaycastInfo{}, false
		}
	}

	if !entered {
		return RaycastInfo{}, false
	}

	worldNormal := mulComponents(normal, c.invScale)
	assert(worldNormal.LenSqr() > 0, "raycast produced a zero normal")
	worldNormal = worldNormal.Normalize()
	assert(tMin >= 0 && tMin <= tMax && tMax <= ray.MaxFraction,
		"raycast fractions out of order: 0 <= %g <= %g <= %g", tMin, tMax, ray.MaxFraction)

	return RaycastInfo{
		WorldPoint:  ray.PointAt(tMin),
		WorldNormal: worldNormal,
		HitFraction: tMin,
	}, true
}

// ContainsPoint reports whether point is behind or on every face plane.
func (c *ConvexMeshShape) ContainsPoint(point mgl64.Vec3) bool {
	local := mulComponents(point, c.invScale)
	for f := 0; f < c.mesh.NbFaces(); f++ {
		if c.mesh.FaceNormal(f).Dot(local.Sub(c.mesh.FacePoint(f))) > 0 {
			return false
		}
	}
	return true
}

// LocalBounds returns the mesh bounds with the scale applied.
func (c *ConvexMeshShape) LocalBounds() AABB {
	min, max := c.mesh.Bounds()
	return AABB{Min: min, Max: max}.ApplyScale(c.scale)
}

// ComputeMass scales the mesh volume by |sx*sy*sz|.
func (c *ConvexMeshShape) ComputeMass(density float64) float64 {
	return density * c.mesh.Volume() * math.Abs(c.scale.X()*c.scale.Y()*c.scale.Z())
}

// ComputeInertia approximates the inertia by the one of the local bounds.
func (c *ConvexMeshShape) ComputeInertia(mass float64) mgl64.Mat3 {
	return boxInertia(mass, c.LocalBounds().Extent())
}

// String dumps the scaled vertices and the face loops.
func (c *ConvexMeshShape) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "ConvexMeshShape{\nnbVertices=%d\nnbFaces=%d\n", c.mesh.NbVertices(), c.mesh.NbFaces())

	sb.WriteString("vertices=[")
	for i := 0; i < c.mesh.NbVertices(); i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		v := mulComponents(c.mesh.Vertex(i), c.scale)
		fmt.Fprintf(&sb, "(%g, %g, %g)", v.X(), v.Y(), v.Z())
	}
	sb.WriteString("]\n")

	s := c.mesh.HalfEdgeStructure()
	sb.WriteString("faces=[")
	for f := 0; f < s.NbFaces(); f++ {
		sb.WriteString("[")
		for k, v := range s.Face(f).Vertices {
			if k > 0 {
				sb.WriteString(" ")
			}
			fmt.Fprintf(&sb, "%d", v)
		}
		sb.WriteString("]")
	}
	sb.WriteString("]\n}")

	return sb.String()
}
