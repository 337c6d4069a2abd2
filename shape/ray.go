package shape

import "github.com/go-gl/mathgl/mgl64"

// Ray is the segment from Point1 toward Point2, truncated at MaxFraction of
// its length. A point on the ray is Point1 + t*(Point2-Point1), 0 <= t <= MaxFraction.
type Ray struct {
	Point1      mgl64.Vec3
	Point2      mgl64.Vec3
	MaxFraction float64
}

// NewRay returns the ray covering the whole segment from point1 to point2.
func NewRay(point1, point2 mgl64.Vec3) Ray {
	return Ray{Point1: point1, Point2: point2, MaxFraction: 1}
}

// Direction returns Point2 - Point1.
func (r Ray) Direction() mgl64.Vec3 {
	return r.Point2.Sub(r.Point1)
}

// PointAt returns Point1 + fraction*(Point2-Point1).
func (r Ray) PointAt(fraction float64) mgl64.Vec3 {
	return r.Point1.Add(r.Direction().Mul(fraction))
}

// RaycastInfo describes where a ray enters a shape, in the shape's local frame.
type RaycastInfo struct {
	WorldPoint  mgl64.Vec3
	WorldNormal mgl64.Vec3 // Unit outward normal of the entry surface
	HitFraction float64    // Ray parameter of WorldPoint
}
