// Package hull is the narrow phase over convex colliders: it picks an
// overlap algorithm per shape pair and runs batches of pairs concurrently.
package hull

import (
	"fmt"

	"github.com/akmonengine/hull/gjk"
	"github.com/akmonengine/hull/internal/logger"
	"github.com/akmonengine/hull/shape"
	"go.uber.org/zap"
)

// Algorithm is the closed set of narrow-phase overlap tests.
type Algorithm int

const (
	AlgorithmNone Algorithm = iota
	AlgorithmSphereVsSphere
	AlgorithmSphereVsConvex
	AlgorithmConvexVsConvex
)

func (a Algorithm) String() string {
	switch a {
	case AlgorithmNone:
		return "none"
	case AlgorithmSphereVsSphere:
		return "sphere_vs_sphere"
	case AlgorithmSphereVsConvex:
		return "sphere_vs_convex"
	case AlgorithmConvexVsConvex:
		return "convex_vs_convex"
	default:
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
}

func isPolyhedron(t shape.Type) bool {
	return t == shape.TypeBox || t == shape.TypeConvexMesh
}

// SelectAlgorithm returns the overlap test for a pair of colliders. The
// result does not depend on the order of a and b.
func SelectAlgorithm(a, b shape.Collider) Algorithm {
	if a == nil || b == nil {
		return AlgorithmNone
	}

	typeA, typeB := a.Type(), b.Type()
	switch {
	case typeA == shape.TypeSphere && typeB == shape.TypeSphere:
		return AlgorithmSphereVsSphere
	case typeA == shape.TypeSphere && isPolyhedron(typeB),
		isPolyhedron(typeA) && typeB == shape.TypeSphere:
		return AlgorithmSphereVsConvex
	case isPolyhedron(typeA) && isPolyhedron(typeB):
		return AlgorithmConvexVsConvex
	}
	return AlgorithmNone
}

// Pair represents two placed colliders that potentially overlap. A proxy
// carries a support cache, so a proxy must not appear in two pairs of the
// same NarrowPhase batch.
type Pair struct {
	A *shape.Proxy
	B *shape.Proxy
}

// Algorithm returns the overlap test TestOverlap runs for the pair. A pair
// missing a proxy has none.
func (p Pair) Algorithm() Algorithm {
	if p.A == nil || p.B == nil {
		return AlgorithmNone
	}
	return SelectAlgorithm(p.A.Shape, p.B.Shape)
}

// TestOverlap reports whether the two placed colliders overlap. Touching
// counts as overlapping.
func TestOverlap(pair Pair) bool {
	switch pair.Algorithm() {
	case AlgorithmSphereVsSphere:
		return spheresOverlap(pair.A, pair.B)
	case AlgorithmSphereVsConvex, AlgorithmConvexVsConvex:
		if !pair.A.WorldBounds().Overlaps(pair.B.WorldBounds()) {
			return false
		}
		return gjk.Overlap(pair.A, pair.B)
	}
	return false
}

func spheresOverlap(a, b *shape.Proxy) bool {
	radiusA := a.Shape.(*shape.Sphere).Radius
	radiusB := b.Shape.(*shape.Sphere).Radius
	radiusSum := radiusA + radiusB

	delta := b.Transform.Position.Sub(a.Transform.Position)
	return delta.LenSqr() <= radiusSum*radiusSum
}

// NarrowPhase tests every pair on workersCount goroutines. results[i] is
// the outcome of pairs[i].
func NarrowPhase(pairs []Pair, workersCount int) []bool {
	results := make([]bool, len(pairs))
	indices := make([]int, len(pairs))
	for i := range indices {
		indices[i] = i
	}

	task(workersCount, indices, func(i int) {
		results[i] = TestOverlap(pairs[i])
	})

	overlaps := 0
	for _, overlap := range results {
		if overlap {
			overlaps++
		}
	}
	logger.Debug("narrow phase done",
		zap.Int("pairs", len(pairs)),
		zap.Int("overlaps", overlaps),
		zap.Int("workers", workersCount),
	)

	return results
}
