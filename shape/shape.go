// Package shape defines the collision shapes answered by the narrow phase
// and the world placement (Proxy) used to query them.
package shape

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Type identifies a concrete collision shape.
type Type int

const (
	TypeSphere Type = iota
	TypeBox
	TypeConvexMesh
)

func (t Type) String() string {
	switch t {
	case TypeSphere:
		return "sphere"
	case TypeBox:
		return "box"
	case TypeConvexMesh:
		return "convex_mesh"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// Collider is the interface that all collision shapes must implement.
// Every query is expressed in the shape's local frame.
type Collider interface {
	Type() Type
	// Support returns the point of the shape farthest along direction.
	Support(direction mgl64.Vec3) mgl64.Vec3
	// Raycast reports where ray enters the shape. A ray starting inside the
	// shape does not hit it.
	Raycast(ray Ray) (RaycastInfo, bool)
	// ContainsPoint reports whether point is inside or on the surface.
	ContainsPoint(point mgl64.Vec3) bool
	LocalBounds() AABB
	// ComputeMass calculates the mass of the shape given a density
	ComputeMass(density float64) float64
	ComputeInertia(mass float64) mgl64.Mat3
}

// CachedSupporter is implemented by shapes whose support query can reuse
// the answer of a previous query on the same shape.
type CachedSupporter interface {
	SupportCached(direction mgl64.Vec3, cache *SupportCache) mgl64.Vec3
}

// SupportCache holds the vertex found by the last cached support query of
// one shape. It belongs to a single query session, usually one shape pair,
// and must not be shared between goroutines. The zero value starts the
// search from vertex 0.
type SupportCache struct {
	vertex int
}

// Vertex returns the cached vertex index.
func (c *SupportCache) Vertex() int {
	return c.vertex
}

// Reset makes the next query start from vertex 0.
func (c *SupportCache) Reset() {
	c.vertex = 0
}

func assert(condition bool, format string, args ...any) {
	if !condition {
		panic(fmt.Sprintf("shape: "+format, args...))
	}
}

// Box represents an oriented box collision shape
// The box is defined by its half-extents (half-width, half-height, half-depth)
type Box struct {
	HalfExtents mgl64.Vec3
}

func (b *Box) Type() Type {
	return TypeBox
}

func (b *Box) LocalBounds() AABB {
	return AABB{Min: b.HalfExtents.Mul(-1), Max: b.HalfExtents}
}

// ComputeMass calculates mass data for the box
func (b *Box) ComputeMass(density float64) float64 {
	// Volume = 8 * hx * hy * hz (full dimensions are 2*halfExtents)
	volume := 8.0 * b.HalfExtents.X() * b.HalfExtents.Y() * b.HalfExtents.Z()

	return density * volume
}

func (b *Box) ComputeInertia(mass float64) mgl64.Mat3 {
	return boxInertia(mass, b.HalfExtents)
}

// boxInertia is I = (m/12) * (d1² + d2²) for full dimensions d.
func boxInertia(mass float64, halfExtents mgl64.Vec3) mgl64.Mat3 {
	x := halfExtents.X() * 2
	y := halfExtents.Y() * 2
	z := halfExtents.Z() * 2

	factor := mass / 12.0
	ix := factor * (y*y + z*z)
	iy := factor * (x*x + z*z)
	iz := factor * (x*x + y*y)

	return mgl64.Mat3{
		ix, 0, 0,
		0, iy, 0,
		0, 0, iz,
	}
}

func (b *Box) Support(direction mgl64.Vec3) mgl64.Vec3 {
	hx, hy, hz := b.HalfExtents.X(), b.HalfExtents.Y(), b.HalfExtents.Z()

	if direction.X() < 0 {
		hx = -hx
	}
	if direction.Y() < 0 {
		hy = -hy
	}
	if direction.Z() < 0 {
		hz = -hz
	}

	return mgl64.Vec3{hx, hy, hz}
}

func (b *Box) ContainsPoint(point mgl64.Vec3) bool {
	return b.LocalBounds().ContainsPoint(point)
}

// Raycast clips the ray against the three slabs of the box.
func (b *Box) Raycast(ray Ray) (RaycastInfo, bool) {
	direction := ray.Direction()
	tMin := 0.0
	tMax := ray.MaxFraction
	var normal mgl64.Vec3
	entered := false

	for i := 0; i < 3; i++ {
		h := b.HalfExtents[i]
		if direction[i] == 0 {
			if ray.Point1[i] < -h || ray.Point1[i] > h {
				return RaycastInfo{}, false
			}
			continue
		}

		inv := 1 / direction[i]
		t1 := (-h - ray.Point1[i]) * inv
		t2 := (h - ray.Point1[i]) * inv
		sign := -1.0
		if t1 > t2 {
			t1, t2 = t2, t1
			sign = 1
		}

		if t1 > tMin {
			tMin = t1
			normal = mgl64.Vec3{}
			normal[i] = sign
			entered = true
		}
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return RaycastInfo{}, false
		}
	}

	if !entered {
		return RaycastInfo{}, false
	}

	return RaycastInfo{
		WorldPoint:  ray.PointAt(tMin),
		WorldNormal: normal,
		HitFraction: tMin,
	}, true
}

// Sphere represents a spherical collision shape
type Sphere struct {
	Radius float64
}

func (s *Sphere) Type() Type {
	return TypeSphere
}

func (s *Sphere) LocalBounds() AABB {
	radiusVec := mgl64.Vec3{s.Radius, s.Radius, s.Radius}
	return AABB{Min: radiusVec.Mul(-1), Max: radiusVec}
}

// ComputeMass calculates mass data for the sphere
func (s *Sphere) ComputeMass(density float64) float64 {
	// Volume of sphere = (4/3) * π * r³
	volume := (4.0 / 3.0) * math.Pi * math.Pow(s.Radius, 3)

	return density * volume
}

func (s *Sphere) ComputeInertia(mass float64) mgl64.Mat3 {
	i := (2.0 / 5.0) * mass * s.Radius * s.Radius

	return mgl64.Mat3{
		i, 0, 0,
		0, i, 0,
		0, 0, i,
	}
}

func (s *Sphere) Support(direction mgl64.Vec3) mgl64.Vec3 {
	if direction.LenSqr() == 0 {
		return mgl64.Vec3{s.Radius, 0, 0}
	}
	return direction.Normalize().Mul(s.Radius)
}

func (s *Sphere) ContainsPoint(point mgl64.Vec3) bool {
	return point.LenSqr() <= s.Radius*s.Radius
}

// Raycast solves |p1 + t*d|² = r² for the smallest root.
func (s *Sphere) Raycast(ray Ray) (RaycastInfo, bool) {
	direction := ray.Direction()
	c := ray.Point1.LenSqr() - s.Radius*s.Radius
	if c < 0 {
		return RaycastInfo{}, false
	}

	a := direction.LenSqr()
	if a == 0 {
		return RaycastInfo{}, false
	}
	bHalf := ray.Point1.Dot(direction)
	discriminant := bHalf*bHalf - a*c
	if discriminant < 0 {
		return RaycastInfo{}, false
	}

	t := (-bHalf - math.Sqrt(discriminant)) / a
	if t < 0 || t > ray.MaxFraction {
		return RaycastInfo{}, false
	}

	point := ray.PointAt(t)
	return RaycastInfo{
		WorldPoint:  point,
		WorldNormal: point.Normalize(),
		HitFraction: t,
	}, true
}

// Proxy places a collider in world space for a sequence of queries. Its
// support cache makes a Proxy unsafe for concurrent use.
type Proxy struct {
	Shape     Collider
	Transform Transform
	Cache     SupportCache
}

// NewProxy creates a proxy with an identity transform.
func NewProxy(shape Collider) *Proxy {
	return &Proxy{Shape: shape, Transform: NewTransform()}
}

// SupportWorld returns the world-space support point of the placed shape.
func (p *Proxy) SupportWorld(direction mgl64.Vec3) mgl64.Vec3 {
	localDirection := p.Transform.InverseRotateDirection(direction)

	var localSupport mgl64.Vec3
	if cached, ok := p.Shape.(CachedSupporter); ok {
		localSupport = cached.SupportCached(localDirection, &p.Cache)
	} else {
		localSupport = p.Shape.Support(localDirection)
	}

	return p.Transform.Apply(localSupport)
}

// WorldBounds returns the world-space box enclosing the placed shape.
func (p *Proxy) WorldBounds() AABB {
	return p.Shape.LocalBounds().Transformed(p.Transform)
}

// Raycast casts a world-space ray against the placed shape and returns the
// hit in world space.
func (p *Proxy) Raycast(ray Ray) (RaycastInfo, bool) {
	local := Ray{
		Point1:      p.Transform.ApplyInverse(ray.Point1),
		Point2:      p.Transform.ApplyInverse(ray.Point2),
		MaxFraction: ray.MaxFraction,
	}
	info, ok := p.Shape.Raycast(local)
	if !ok {
		return RaycastInfo{}, false
	}
	return RaycastInfo{
		WorldPoint:  p.Transform.Apply(info.WorldPoint),
		WorldNormal: p.Transform.RotateDirection(info.WorldNormal),
		HitFraction: info.HitFraction,
	}, true
}

// ContainsPoint reports whether a world-space point lies in the placed shape.
func (p *Proxy) ContainsPoint(point mgl64.Vec3) bool {
	return p.Shape.ContainsPoint(p.Transform.ApplyInverse(point))
}
