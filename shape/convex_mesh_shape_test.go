package shape

import (
	"math"
	"math/rand"
	"testing"

	"github.com/akmonengine/hull/mesh"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pmezard/go-difflib/difflib"
)

func cubeShape(scale mgl64.Vec3) *ConvexMeshShape {
	return NewConvexMeshShape(mesh.NewBoxMesh(mgl64.Vec3{1, 1, 1}), scale)
}

func dodecahedronMesh(t testing.TB) *mesh.ConvexMesh {
	phi := (1 + math.Sqrt(5)) / 2
	inv := 1 / phi

	var points []mgl64.Vec3
	for _, x := range []float64{-1, 1} {
		for _, y := range []float64{-1, 1} {
			for _, z := range []float64{-1, 1} {
				points = append(points, mgl64.Vec3{x, y, z})
			}
		}
	}
	for _, a := range []float64{-inv, inv} {
		for _, b := range []float64{-phi, phi} {
			points = append(points,
				mgl64.Vec3{0, a, b},
				mgl64.Vec3{a, b, 0},
				mgl64.Vec3{b, 0, a},
			)
		}
	}

	m, err := mesh.NewConvexMeshFromPoints(points)
	if err != nil {
		t.Fatalf("NewConvexMeshFromPoints() failed: %v", err)
	}
	return m
}

// splitFaceCubeMesh is the unit cube with its +Z face split into four
// triangles around vertex 0, the center of that face.
func splitFaceCubeMesh() *mesh.ConvexMesh {
	indices, faces := mesh.NewIndexedFaces([][]int{
		{1, 5, 8, 4}, {2, 3, 7, 6}, {1, 2, 6, 5}, {4, 8, 7, 3}, {1, 4, 3, 2},
		{5, 6, 0}, {6, 7, 0}, {7, 8, 0}, {8, 5, 0},
	})
	return mesh.MustNewConvexMesh(mesh.NewVertexArray([]float64{
		0, 0, 1,
		-1, -1, -1, 1, -1, -1, 1, 1, -1, -1, 1, -1,
		-1, -1, 1, 1, -1, 1, 1, 1, 1, -1, 1, 1,
	}, indices, faces))
}

// splitEdgeCubeMesh is the unit cube with vertex 8 inserted in the middle
// of the edge shared by its -Y and -Z faces.
func splitEdgeCubeMesh() *mesh.ConvexMesh {
	indices, faces := mesh.NewIndexedFaces([][]int{
		{0, 4, 7, 3}, {1, 2, 6, 5}, {0, 8, 1, 5, 4}, {3, 7, 6, 2}, {0, 3, 2, 1, 8}, {4, 5, 6, 7},
	})
	return mesh.MustNewConvexMesh(mesh.NewVertexArray([]float64{
		-1, -1, -1, 1, -1, -1, 1, 1, -1, -1, 1, -1,
		-1, -1, 1, 1, -1, 1, 1, 1, 1, -1, 1, 1,
		0, -1, -1,
	}, indices, faces))
}

func randomDirection(rng *rand.Rand) mgl64.Vec3 {
	return mgl64.Vec3{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}
}

func TestNewConvexMeshShapePanics(t *testing.T) {
	tests := []struct {
		name  string
		mesh  *mesh.ConvexMesh
		scale mgl64.Vec3
	}{
		{"nil mesh", nil, mgl64.Vec3{1, 1, 1}},
		{"zero scale component", mesh.NewBoxMesh(mgl64.Vec3{1, 1, 1}), mgl64.Vec3{1, 0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("NewConvexMeshShape() did not panic")
				}
			}()
			NewConvexMeshShape(tt.mesh, tt.scale)
		})
	}
}

func TestConvexMeshShapeSupport(t *testing.T) {
	tests := []struct {
		name      string
		scale     mgl64.Vec3
		direction mgl64.Vec3
		want      mgl64.Vec3
	}{
		{"face direction keeps the first maximal vertex", mgl64.Vec3{1, 1, 1}, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{1, -1, -1}},
		{"corner", mgl64.Vec3{1, 1, 1}, mgl64.Vec3{-1, 1, 1}, mgl64.Vec3{-1, 1, 1}},
		{"scaled corner", mgl64.Vec3{2, 1, 3}, mgl64.Vec3{1, -1, 1}, mgl64.Vec3{2, -1, 3}},
		{"mirrored scale", mgl64.Vec3{-2, 1, 1}, mgl64.Vec3{1, 1, 1}, mgl64.Vec3{2, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cubeShape(tt.scale).Support(tt.direction); got != tt.want {
				t.Errorf("Support(%v) = %v, want %v", tt.direction, got, tt.want)
			}
		})
	}
}

func TestConvexMeshShapeSupportMatchesBox(t *testing.T) {
	scale := mgl64.Vec3{2, 1, 3}
	meshShape := cubeShape(scale)
	box := &Box{HalfExtents: scale}
	rng := rand.New(rand.NewSource(3))

	for i := 0; i < 200; i++ {
		direction := randomDirection(rng)
		if got, want := meshShape.Support(direction), box.Support(direction); got != want {
			t.Fatalf("Support(%v) = %v, box gives %v", direction, got, want)
		}
	}
}

func TestSupportCachedMatchesScan(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	randomPoints := make([]mgl64.Vec3, 150)
	for i := range randomPoints {
		randomPoints[i] = randomDirection(rng).Normalize().Mul(1 + rng.Float64())
	}
	randomHull, err := mesh.NewConvexMeshFromPoints(randomPoints)
	if err != nil {
		t.Fatalf("NewConvexMeshFromPoints() failed: %v", err)
	}

	tests := []struct {
		name  string
		mesh  *mesh.ConvexMesh
		scale mgl64.Vec3
	}{
		{"dodecahedron", dodecahedronMesh(t), mgl64.Vec3{1, 1, 1}},
		{"scaled dodecahedron", dodecahedronMesh(t), mgl64.Vec3{0.5, 2, -1.5}},
		{"random hull", randomHull, mgl64.Vec3{1, 3, 1}},
		{"box", mesh.NewBoxMesh(mgl64.Vec3{1, 2, 3}), mgl64.Vec3{1, 1, 1}},
		{"vertex inside a face", splitFaceCubeMesh(), mgl64.Vec3{1, 1, 1}},
		{"vertex inside an edge", splitEdgeCubeMesh(), mgl64.Vec3{2, 1, 0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewConvexMeshShape(tt.mesh, tt.scale)
			var cache SupportCache

			for i := 0; i < 500; i++ {
				direction := randomDirection(rng)

				scanned := s.Support(direction)
				climbed := s.SupportCached(direction, &cache)
				if !floatEqual(direction.Dot(scanned), direction.Dot(climbed), 1e-12) {
					t.Fatalf("direction %v: scan %v (dot %g), hill-climb %v (dot %g)",
						direction, scanned, direction.Dot(scanned), climbed, direction.Dot(climbed))
				}
				if climbed != mulComponents(tt.mesh.Vertex(cache.Vertex()), tt.scale) {
					t.Fatalf("cache holds vertex %d, result is %v", cache.Vertex(), climbed)
				}
			}
		})
	}
}

func TestSupportCachedLeavesNonExtremeVertex(t *testing.T) {
	tests := []struct {
		name      string
		mesh      *mesh.ConvexMesh
		start     int
		direction mgl64.Vec3
	}{
		{"face center, opposite direction", splitFaceCubeMesh(), 0, mgl64.Vec3{0, 0, -1}},
		{"face center, face normal", splitFaceCubeMesh(), 0, mgl64.Vec3{0, 0, 1}},
		{"face center, along the face", splitFaceCubeMesh(), 0, mgl64.Vec3{1, 0.2, 0}},
		{"edge middle, opposite direction", splitEdgeCubeMesh(), 8, mgl64.Vec3{0, 1, 1}},
		{"edge middle, along the edge", splitEdgeCubeMesh(), 8, mgl64.Vec3{-1, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewConvexMeshShape(tt.mesh, mgl64.Vec3{1, 1, 1})
			cache := SupportCache{vertex: tt.start}

			scanned := s.Support(tt.direction)
			climbed := s.SupportCached(tt.direction, &cache)
			if !floatEqual(tt.direction.Dot(scanned), tt.direction.Dot(climbed), 1e-12) {
				t.Errorf("hill-climb %v (dot %g), scan %v (dot %g)",
					climbed, tt.direction.Dot(climbed), scanned, tt.direction.Dot(scanned))
			}
		})
	}
}

func TestSupportAwayFromOrigin(t *testing.T) {
	offset := mesh.MustNewConvexMesh(mesh.NewVertexArray([]float64{
		5, 0, 0, 7, 0, 0, 5, 2, 0, 5, 0, 2,
	}, []int{0, 2, 1, 0, 1, 3, 1, 2, 3, 2, 0, 3}, []mesh.PolygonFace{
		{IndexBase: 0, NbVertices: 3}, {IndexBase: 3, NbVertices: 3},
		{IndexBase: 6, NbVertices: 3}, {IndexBase: 9, NbVertices: 3},
	}))
	s := NewConvexMeshShape(offset, mgl64.Vec3{1, 1, 1})
	if s.containsOrigin {
		t.Fatal("origin reported inside a mesh spanning x in [5, 7]")
	}

	// Every vertex is behind the origin along -X.
	direction := mgl64.Vec3{-1, 0, 0}
	if got := s.Support(direction); got.X() != 5 {
		t.Errorf("Support(%v) = %v, want x == 5", direction, got)
	}
	var cache SupportCache
	if got := s.SupportCached(direction, &cache); got.X() != 5 {
		t.Errorf("SupportCached(%v) = %v, want x == 5", direction, got)
	}

	if !cubeShape(mgl64.Vec3{1, 1, 1}).containsOrigin {
		t.Error("origin not reported inside the unit cube")
	}
	if !NewConvexMeshShape(splitFaceCubeMesh(), mgl64.Vec3{1, 1, 1}).containsOrigin {
		t.Error("origin not reported inside the split-face cube")
	}
}

func TestSupportCachedNilCache(t *testing.T) {
	s := cubeShape(mgl64.Vec3{1, 1, 1})
	if got := s.SupportCached(mgl64.Vec3{1, 1, 1}, nil); got != (mgl64.Vec3{1, 1, 1}) {
		t.Errorf("SupportCached(nil cache) = %v, want (1, 1, 1)", got)
	}
}

func TestSupportIsDeterministic(t *testing.T) {
	s := NewConvexMeshShape(dodecahedronMesh(t), mgl64.Vec3{1.5, 0.7, 2})
	rng := rand.New(rand.NewSource(5))

	for i := 0; i < 100; i++ {
		direction := randomDirection(rng)
		first := s.Support(direction)
		if again := s.Support(direction); again != first {
			t.Fatalf("Support(%v) returned %v then %v", direction, first, again)
		}

		var cache1, cache2 SupportCache
		if a, b := s.SupportCached(direction, &cache1), s.SupportCached(direction, &cache2); a != b {
			t.Fatalf("SupportCached(%v) returned %v then %v", direction, a, b)
		}
	}
}

func TestQueriesAreDeterministic(t *testing.T) {
	s := NewConvexMeshShape(dodecahedronMesh(t), mgl64.Vec3{1.5, 0.7, 2})
	rng := rand.New(rand.NewSource(9))

	firstBounds := s.LocalBounds()
	for i := 0; i < 100; i++ {
		from := randomDirection(rng).Normalize().Mul(6)
		to := randomDirection(rng).Mul(0.3)
		ray := NewRay(from, to)

		firstInfo, firstHit := s.Raycast(ray)
		info, hit := s.Raycast(ray)
		if hit != firstHit || info != firstInfo {
			t.Fatalf("Raycast(%v) returned (%v, %v) then (%v, %v)", ray, firstInfo, firstHit, info, hit)
		}

		point := randomDirection(rng).Mul(1.5)
		if a, b := s.ContainsPoint(point), s.ContainsPoint(point); a != b {
			t.Fatalf("ContainsPoint(%v) returned %v then %v", point, a, b)
		}

		if bounds := s.LocalBounds(); bounds != firstBounds {
			t.Fatalf("LocalBounds() returned %v then %v", firstBounds, bounds)
		}
	}
}

func TestConvexMeshShapeRaycast(t *testing.T) {
	indices, faces := mesh.NewIndexedFaces([][]int{{0, 2, 1}, {0, 1, 3}, {1, 2, 3}, {2, 0, 3}})
	tetrahedron := mesh.MustNewConvexMesh(mesh.NewVertexArray([]float64{
		0, 0, 0,
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}, indices, faces))

	tests := []struct {
		name         string
		shape        *ConvexMeshShape
		ray          Ray
		wantHit      bool
		wantPoint    mgl64.Vec3
		wantNormal   mgl64.Vec3
		wantFraction float64
	}{
		{
			name:         "cube along +X",
			shape:        cubeShape(mgl64.Vec3{1, 1, 1}),
			ray:          NewRay(mgl64.Vec3{-5, 0, 0}, mgl64.Vec3{5, 0, 0}),
			wantHit:      true,
			wantPoint:    mgl64.Vec3{-1, 0, 0},
			wantNormal:   mgl64.Vec3{-1, 0, 0},
			wantFraction: 0.4,
		},
		{
			name:         "scaled cube along +X",
			shape:        cubeShape(mgl64.Vec3{2, 1, 3}),
			ray:          NewRay(mgl64.Vec3{-5, 0, 0}, mgl64.Vec3{5, 0, 0}),
			wantHit:      true,
			wantPoint:    mgl64.Vec3{-2, 0, 0},
			wantNormal:   mgl64.Vec3{-1, 0, 0},
			wantFraction: 0.3,
		},
		{
			name:         "scaled cube along +Z",
			shape:        cubeShape(mgl64.Vec3{2, 1, 3}),
			ray:          NewRay(mgl64.Vec3{0, 0, -10}, mgl64.Vec3{0, 0, 10}),
			wantHit:      true,
			wantPoint:    mgl64.Vec3{0, 0, -3},
			wantNormal:   mgl64.Vec3{0, 0, -1},
			wantFraction: 0.35,
		},
		{
			name:         "scaled slanted face",
			shape:        NewConvexMeshShape(tetrahedron, mgl64.Vec3{2, 1, 1}),
			ray:          NewRay(mgl64.Vec3{0.1, 0.1, 5}, mgl64.Vec3{0.1, 0.1, -5}),
			wantHit:      true,
			wantPoint:    mgl64.Vec3{0.1, 0.1, 0.85},
			wantNormal:   mgl64.Vec3{1.0 / 3.0, 2.0 / 3.0, 2.0 / 3.0},
			wantFraction: 0.415,
		},
		{
			name:  "parallel outside",
			shape: cubeShape(mgl64.Vec3{1, 1, 1}),
			ray:   NewRay(mgl64.Vec3{2, 0, -5}, mgl64.Vec3{2, 0, 5}),
		},
		{
			name:  "starts inside",
			shape: cubeShape(mgl64.Vec3{1, 1, 1}),
			ray:   NewRay(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{5, 0, 0}),
		},
		{
			name:  "ends before the shape",
			shape: cubeShape(mgl64.Vec3{1, 1, 1}),
			ray:   NewRay(mgl64.Vec3{-5, 0, 0}, mgl64.Vec3{-3, 0, 0}),
		},
		{
			name:  "points away",
			shape: cubeShape(mgl64.Vec3{1, 1, 1}),
			ray:   NewRay(mgl64.Vec3{-5, 0, 0}, mgl64.Vec3{-10, 0, 0}),
		},
		{
			name:  "max fraction stops short",
			shape: cubeShape(mgl64.Vec3{1, 1, 1}),
			ray:   Ray{Point1: mgl64.Vec3{-5, 0, 0}, Point2: mgl64.Vec3{5, 0, 0}, MaxFraction: 0.3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, hit := tt.shape.Raycast(tt.ray)
			if hit != tt.wantHit {
				t.Fatalf("Raycast() hit = %v, want %v", hit, tt.wantHit)
			}
			if !hit {
				return
			}
			if !vec3Equal(info.WorldPoint, tt.wantPoint, 1e-9) {
				t.Errorf("WorldPoint = %v, want %v", info.WorldPoint, tt.wantPoint)
			}
			if !vec3Equal(info.WorldNormal, tt.wantNormal, 1e-9) {
				t.Errorf("WorldNormal = %v, want %v", info.WorldNormal, tt.wantNormal)
			}
			if !floatEqual(info.WorldNormal.Len(), 1, 1e-12) {
				t.Errorf("WorldNormal length = %v, want 1", info.WorldNormal.Len())
			}
			if !floatEqual(info.HitFraction, tt.wantFraction, 1e-9) {
				t.Errorf("HitFraction = %v, want %v", info.HitFraction, tt.wantFraction)
			}
		})
	}
}

func TestConvexMeshShapeRaycastHitsAreOnSurface(t *testing.T) {
	s := NewConvexMeshShape(dodecahedronMesh(t), mgl64.Vec3{1, 2, 0.5})
	rng := rand.New(rand.NewSource(9))

	hits := 0
	for i := 0; i < 300; i++ {
		from := randomDirection(rng).Normalize().Mul(10)
		to := randomDirection(rng).Mul(0.1)
		info, hit := s.Raycast(NewRay(from, to))
		if !hit {
			continue
		}
		hits++

		if info.HitFraction < 0 || info.HitFraction > 1 {
			t.Fatalf("HitFraction = %v outside [0, 1]", info.HitFraction)
		}
		// Just past the entry point along the ray is inside, just before is not.
		direction := to.Sub(from)
		if !s.ContainsPoint(info.WorldPoint.Add(direction.Mul(1e-6))) {
			t.Fatalf("point after the hit %v is outside", info.WorldPoint)
		}
		if s.ContainsPoint(info.WorldPoint.Sub(direction.Mul(1e-6))) {
			t.Fatalf("point before the hit %v is inside", info.WorldPoint)
		}
	}
	if hits == 0 {
		t.Fatal("no ray hit the shape")
	}
}

func TestConvexMeshShapeContainsPoint(t *testing.T) {
	tests := []struct {
		name  string
		scale mgl64.Vec3
		point mgl64.Vec3
		want  bool
	}{
		{"origin", mgl64.Vec3{1, 1, 1}, mgl64.Vec3{0, 0, 0}, true},
		{"outside", mgl64.Vec3{1, 1, 1}, mgl64.Vec3{2, 0, 0}, false},
		{"on a face", mgl64.Vec3{1, 1, 1}, mgl64.Vec3{1, 0, 0}, true},
		{"on a corner", mgl64.Vec3{1, 1, 1}, mgl64.Vec3{-1, 1, -1}, true},
		{"inside scaled", mgl64.Vec3{2, 1, 3}, mgl64.Vec3{1.9, 0.9, 2.9}, true},
		{"outside scaled", mgl64.Vec3{2, 1, 3}, mgl64.Vec3{2.1, 0, 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cubeShape(tt.scale).ContainsPoint(tt.point); got != tt.want {
				t.Errorf("ContainsPoint(%v) = %v, want %v", tt.point, got, tt.want)
			}
		})
	}
}

func TestConvexMeshShapeLocalBounds(t *testing.T) {
	tests := []struct {
		name  string
		scale mgl64.Vec3
	}{
		{"positive scale", mgl64.Vec3{2, 1, 3}},
		{"negative scale", mgl64.Vec3{-2, 1, -3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cubeShape(tt.scale).LocalBounds()
			want := AABB{Min: mgl64.Vec3{-2, -1, -3}, Max: mgl64.Vec3{2, 1, 3}}
			if got != want {
				t.Errorf("LocalBounds() = %v, want %v", got, want)
			}
		})
	}
}

func TestConvexMeshShapeMass(t *testing.T) {
	tests := []struct {
		name    string
		scale   mgl64.Vec3
		density float64
		want    float64
	}{
		{"unit", mgl64.Vec3{1, 1, 1}, 1, 8},
		{"scaled", mgl64.Vec3{2, 1, 3}, 0.5, 24},
		{"mirrored", mgl64.Vec3{-2, 1, 3}, 0.5, 24},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cubeShape(tt.scale).ComputeMass(tt.density); !floatEqual(got, tt.want, 1e-9) {
				t.Errorf("ComputeMass(%v) = %v, want %v", tt.density, got, tt.want)
			}
		})
	}

	inertia := cubeShape(mgl64.Vec3{1, 2, 3}).ComputeInertia(12)
	want := (&Box{HalfExtents: mgl64.Vec3{1, 2, 3}}).ComputeInertia(12)
	if inertia != want {
		t.Errorf("ComputeInertia() = %v, want the box inertia %v", inertia, want)
	}
}

func TestConvexMeshShapeString(t *testing.T) {
	expected := `ConvexMeshShape{
nbVertices=8
nbFaces=6
vertices=[(-2, -1, -3), (2, -1, -3), (2, 1, -3), (-2, 1, -3), (-2, -1, 3), (2, -1, 3), (2, 1, 3), (-2, 1, 3)]
faces=[[0 4 7 3][1 2 6 5][0 1 5 4][3 7 6 2][0 3 2 1][4 5 6 7]]
}`

	output := cubeShape(mgl64.Vec3{2, 1, 3}).String()
	if output != expected {
		diff := difflib.UnifiedDiff{
			A:        difflib.SplitLines(expected),
			B:        difflib.SplitLines(output),
			FromFile: "Expected",
			ToFile:   "Current",
			Context:  0,
		}
		text, _ := difflib.GetUnifiedDiffString(diff)
		t.Fatalf("String() mismatch:\n%s", text)
	}
}

func BenchmarkSupport(b *testing.B) {
	s := NewConvexMeshShape(dodecahedronMesh(b), mgl64.Vec3{1, 1, 1})
	direction := mgl64.Vec3{0.3, -0.8, 0.5}

	b.Run("scan", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			s.Support(direction)
		}
	})
	b.Run("hill-climb", func(b *testing.B) {
		var cache SupportCache
		for i := 0; i < b.N; i++ {
			s.SupportCached(direction, &cache)
		}
	})
}
