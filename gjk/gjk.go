// Package gjk implements the Gilbert-Johnson-Keerthi (GJK) overlap test.
//
// GJK detects whether two convex shapes overlap by testing if their Minkowski
// difference contains the origin. Shapes are only queried through their
// support mapping, so spheres, boxes and convex meshes share one code path.
// Convex meshes answer through their hill-climbing support, warm-started by
// the support cache of each proxy.
//
// References:
//   - Gilbert, Johnson, Keerthi: "A Fast Procedure for Computing the Distance Between
//     Complex Objects in Three-Dimensional Space" (1988)
//   - Van den Bergen: "Collision Detection in Interactive 3D Environments" (2003)
package gjk

import (
	"sync"

	"github.com/akmonengine/hull/shape"
	"github.com/go-gl/mathgl/mgl64"
)

// maxIterations bounds the refinement loop.
const maxIterations = 32

// Simplex represents a set of 1-4 points in the Minkowski difference space.
// Size progression: 1 point → 2 points (line) → 3 points (triangle) → 4 points (tetrahedron)
type Simplex struct {
	Points [4]mgl64.Vec3
	Count  int
}

func (s *Simplex) Reset() {
	s.Count = 0
}

var SimplexPool = sync.Pool{
	New: func() interface{} {
		return &Simplex{}
	},
}

// MinkowskiSupport returns furthestPoint(A, direction) - furthestPoint(B, -direction),
// the support point of the Minkowski difference A - B.
func MinkowskiSupport(a, b *shape.Proxy, direction mgl64.Vec3) mgl64.Vec3 {
	supportA := a.SupportWorld(direction)
	supportB := b.SupportWorld(direction.Mul(-1))
	return supportA.Sub(supportB)
}

// Overlap runs GJK with a pooled simplex.
func Overlap(a, b *shape.Proxy) bool {
	simplex := SimplexPool.Get().(*Simplex)
	simplex.Reset()
	defer SimplexPool.Put(simplex)

	return GJK(a, b, simplex)
}

// GJK reports whether the two placed shapes overlap. Touching shapes count
// as overlapping.
//
// The simplex is modified in place and holds 1-4 points on return; on
// overlap it is a tetrahedron enclosing the origin.
func GJK(a, b *shape.Proxy, simplex *Simplex) bool {
	// Start toward B from A. Bounds centers are used rather than positions
	// since a mesh need not be centered on its local origin.
	direction := b.WorldBounds().Center().Sub(a.WorldBounds().Center())
	if direction.LenSqr() < 1e-8 {
		direction = mgl64.Vec3{1, 0, 0}
	}

	simplex.Points[0] = MinkowskiSupport(a, b, direction)
	simplex.Count = 1

	direction = simplex.Points[0].Mul(-1)
	if direction.LenSqr() < 1e-16 {
		return true
	}

	for i := 0; i < maxIterations; i++ {
		newPoint := MinkowskiSupport(a, b, direction)

		// The new point does not pass the origin: the origin is out of reach.
		if newPoint.Dot(direction) <= 0 {
			return false
		}

		simplex.Points[simplex.Count] = newPoint
		simplex.Count++

		if containsOrigin(simplex, &direction) {
			return true
		}
	}

	return false
}

// containsOrigin reduces the simplex to its feature closest to the origin
// and points direction from that feature toward the origin. Only a
// tetrahedron can contain the origin.
func containsOrigin(simplex *Simplex, direction *mgl64.Vec3) bool {
	switch simplex.Count {
	case 2:
		return line(simplex, direction)
	case 3:
		return triangle(simplex, direction)
	case 4:
		return tetrahedron(simplex, direction)
	}
	return false
}

// set replaces the simplex, oldest point first.
func (s *Simplex) set(points ...mgl64.Vec3) {
	s.Count = copy(s.Points[:], points)
}

// line handles the segment from b to the newest point a.
func line(simplex *Simplex, direction *mgl64.Vec3) bool {
	a, b := simplex.Points[1], simplex.Points[0]
	ab := b.Sub(a)
	ao := a.Mul(-1)

	// Hill-climbing supports of two flat-faced meshes often return the
	// same vertex twice; the segment then collapses to a.
	if ab.LenSqr() < 1e-8 {
		if ao.LenSqr() < 1e-8 {
			return true
		}
		simplex.set(a)
		*direction = ao
		return false
	}

	if ab.Dot(ao) <= 0 {
		simplex.set(a)
		*direction = ao
		return false
	}

	perpendicular := ab.Cross(ao).Cross(ab)
	if perpendicular.LenSqr() < 1e-8 {
		// The origin lies on the segment: the shapes touch.
		return true
	}

	*direction = perpendicular
	return false
}

// triangle handles the triangle a (newest), b, c.
func triangle(simplex *Simplex, direction *mgl64.Vec3) bool {
	a, b, c := simplex.Points[2], simplex.Points[1], simplex.Points[0]
	ab := b.Sub(a)
	ac := c.Sub(a)
	ao := a.Mul(-1)
	normal := ab.Cross(ac)

	// Collinear supports come from parallel faces of two boxes or meshes;
	// c adds nothing, so continue from the segment.
	if normal.LenSqr() < 1e-10 {
		simplex.set(b, a)
		return line(simplex, direction)
	}

	if ab.Cross(normal).Dot(ao) > 0 {
		simplex.set(b, a)
		*direction = ab.Cross(ao).Cross(ab)
		return false
	}
	if normal.Cross(ac).Dot(ao) > 0 {
		simplex.set(c, a)
		*direction = ac.Cross(ao).Cross(ac)
		return false
	}

	if normal.Dot(ao) > 0 {
		*direction = normal
		return false
	}
	// The origin is below: reorder so the winding faces it.
	simplex.set(b, c, a)
	*direction = normal.Mul(-1)
	return false
}

// tetrahedron handles a (newest), b, c, d. Each face through a has its
// normal flipped away from the opposite vertex; the origin is contained
// when it is behind all three.
func tetrahedron(simplex *Simplex, direction *mgl64.Vec3) bool {
	a, b, c, d := simplex.Points[3], simplex.Points[2], simplex.Points[1], simplex.Points[0]
	ab := b.Sub(a)
	ac := c.Sub(a)
	ad := d.Sub(a)
	ao := a.Mul(-1)

	abc := outward(ab.Cross(ac), ad)
	acd := outward(ac.Cross(ad), ab)
	adb := outward(ad.Cross(ab), ac)

	// A flat tetrahedron encloses nothing; keep its newest face.
	if abc.LenSqr() < 1e-10 || acd.LenSqr() < 1e-10 || adb.LenSqr() < 1e-10 {
		simplex.set(c, b, a)
		return triangle(simplex, direction)
	}

	switch {
	case abc.Dot(ao) > 0:
		simplex.set(c, b, a)
	case acd.Dot(ao) > 0:
		simplex.set(d, c, a)
	case adb.Dot(ao) > 0:
		simplex.set(b, d, a)
	default:
		return true
	}
	return triangle(simplex, direction)
}

// outward flips normal when it points toward opposite.
func outward(normal, opposite mgl64.Vec3) mgl64.Vec3 {
	if normal.Dot(opposite) > 0 {
		return normal.Mul(-1)
	}
	return normal
}
