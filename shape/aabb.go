package shape

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// ContainsPoint checks if a point is inside the AABB
func (a AABB) ContainsPoint(point mgl64.Vec3) bool {
	return point.X() >= a.Min.X() && point.X() <= a.Max.X() &&
		point.Y() >= a.Min.Y() && point.Y() <= a.Max.Y() &&
		point.Z() >= a.Min.Z() && point.Z() <= a.Max.Z()
}

// Overlaps checks if two AABBs overlap
func (a AABB) Overlaps(other AABB) bool {
	// AABBs overlap if they overlap on all three axes
	return a.Max.X() >= other.Min.X() && a.Min.X() <= other.Max.X() &&
		a.Max.Y() >= other.Min.Y() && a.Min.Y() <= other.Max.Y() &&
		a.Max.Z() >= other.Min.Z() && a.Min.Z() <= other.Max.Z()
}

// ApplyScale multiplies both extrema by scale component-wise. A negative
// component mirrors the box, so the extrema are re-sorted per axis.
func (a AABB) ApplyScale(scale mgl64.Vec3) AABB {
	var result AABB
	for i := 0; i < 3; i++ {
		lo := a.Min[i] * scale[i]
		hi := a.Max[i] * scale[i]
		result.Min[i] = math.Min(lo, hi)
		result.Max[i] = math.Max(lo, hi)
	}
	return result
}

// Center returns the middle of the box.
func (a AABB) Center() mgl64.Vec3 {
	return a.Min.Add(a.Max).Mul(0.5)
}

// Extent returns the half-size of the box on each axis.
func (a AABB) Extent() mgl64.Vec3 {
	return a.Max.Sub(a.Min).Mul(0.5)
}

// Merge returns the smallest box enclosing both boxes.
func (a AABB) Merge(other AABB) AABB {
	return AABB{
		Min: mgl64.Vec3{
			math.Min(a.Min[0], other.Min[0]),
			math.Min(a.Min[1], other.Min[1]),
			math.Min(a.Min[2], other.Min[2]),
		},
		Max: mgl64.Vec3{
			math.Max(a.Max[0], other.Max[0]),
			math.Max(a.Max[1], other.Max[1]),
			math.Max(a.Max[2], other.Max[2]),
		},
	}
}

// Transformed returns the world-space box enclosing this local box once
// rotated and translated by transform.
func (a AABB) Transformed(transform Transform) AABB {
	corners := [8]mgl64.Vec3{
		{a.Min.X(), a.Min.Y(), a.Min.Z()},
		{a.Max.X(), a.Min.Y(), a.Min.Z()},
		{a.Min.X(), a.Max.Y(), a.Min.Z()},
		{a.Max.X(), a.Max.Y(), a.Min.Z()},
		{a.Min.X(), a.Min.Y(), a.Max.Z()},
		{a.Max.X(), a.Min.Y(), a.Max.Z()},
		{a.Min.X(), a.Max.Y(), a.Max.Z()},
		{a.Max.X(), a.Max.Y(), a.Max.Z()},
	}

	world := transform.Apply(corners[0])
	box := AABB{Min: world, Max: world}
	for _, corner := range corners[1:] {
		world = transform.Apply(corner)
		box = box.Merge(AABB{Min: world, Max: world})
	}
	return box
}
