package mesh

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/markus-wa/quickhull-go/v2"
)

// hullEpsilon is the quickhull tolerance for merging nearly coplanar points.
const hullEpsilon = 1e-10

var ErrDegenerateHull = errors.New("mesh: point cloud has no three-dimensional hull")

// NewConvexMeshFromPoints computes the convex hull of a point cloud and
// returns it as a triangle mesh. Points strictly inside the hull are dropped,
// so vertex indices of the result do not match the input.
func NewConvexMeshFromPoints(points []mgl64.Vec3) (*ConvexMesh, error) {
	if len(points) < 4 {
		return nil, fmt.Errorf("%d points: %w", len(points), ErrTooFewVertices)
	}

	cloud := make([]r3.Vector, len(points))
	for i, p := range points {
		cloud[i] = r3.Vector{X: p.X(), Y: p.Y(), Z: p.Z()}
	}

	qh := new(quickhull.QuickHull)
	ch := qh.ConvexHull(cloud, true, true, hullEpsilon)
	if len(ch.Indices) < 12 || len(ch.Indices)%3 != 0 {
		return nil, fmt.Errorf("%d hull indices: %w", len(ch.Indices), ErrDegenerateHull)
	}

	// Keep only the points used by the hull, in first-use order.
	remap := make(map[int]int, len(ch.Indices)/2)
	var vertices []float64
	indices := make([]int, len(ch.Indices))
	for i, original := range ch.Indices {
		index, ok := remap[original]
		if !ok {
			index = len(remap)
			remap[original] = index
			p := points[original]
			vertices = append(vertices, p.X(), p.Y(), p.Z())
		}
		indices[i] = index
	}

	orientOutward(vertices, indices)

	faces := make([]PolygonFace, len(indices)/3)
	for i := range faces {
		faces[i] = PolygonFace{IndexBase: i * 3, NbVertices: 3}
	}

	m, err := NewConvexMesh(NewVertexArray(vertices, indices, faces))
	if err != nil {
		return nil, fmt.Errorf("hull of %d points: %w", len(points), err)
	}
	return m, nil
}

// orientOutward flips every triangle whose normal points toward the vertex
// average, which lies inside any convex hull.
func orientOutward(vertices []float64, indices []int) {
	at := func(i int) mgl64.Vec3 {
		return mgl64.Vec3{vertices[i*3], vertices[i*3+1], vertices[i*3+2]}
	}

	var center mgl64.Vec3
	nbVertices := len(vertices) / 3
	for i := 0; i < nbVertices; i++ {
		center = center.Add(at(i))
	}
	center = center.Mul(1 / float64(nbVertices))

	for t := 0; t+2 < len(indices); t += 3 {
		a, b, c := at(indices[t]), at(indices[t+1]), at(indices[t+2])
		normal := b.Sub(a).Cross(c.Sub(a))
		if normal.Dot(a.Sub(center)) < 0 {
			indices[t+1], indices[t+2] = indices[t+2], indices[t+1]
		}
	}
}
