// Package meshfile reads YAML mesh documents: a convex polyhedron, the
// scale to view it with and the queries to run against it.
//
//	vertices: [x0, y0, z0, x1, y1, z1, ...]
//	faces: [[0, 1, 2, 3], ...]   # optional, the convex hull is used when absent
//	scale: [1, 1, 1]
//	queries:
//	  support: [[1, 0, 0]]
//	  rays: [{from: [-5, 0, 0], to: [5, 0, 0]}]
//	  points: [[0, 0, 0]]
//	  placements: [{position: [0, 0, 0]}, {position: [1.5, 0, 0], axis: [0, 0, 1], angle: 0.4}]
package meshfile

import (
	"errors"
	"fmt"
	"os"

	"github.com/akmonengine/hull/mesh"
	"github.com/akmonengine/hull/shape"
	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

var (
	ErrNoVertices    = errors.New("meshfile: no vertices")
	ErrVertexLength  = errors.New("meshfile: vertex buffer length is not a multiple of 3")
	ErrFaceTooSmall  = errors.New("meshfile: face has fewer than 3 vertices")
	ErrZeroScale     = errors.New("meshfile: scale has a zero component")
	ErrZeroDirection = errors.New("meshfile: support direction is zero")
	ErrZeroAxis      = errors.New("meshfile: placement rotation axis is zero")
)

// Vec3 is a YAML [x, y, z] triple.
type Vec3 [3]float64

func (v Vec3) Vec() mgl64.Vec3 {
	return mgl64.Vec3(v)
}

// Document is a parsed mesh document.
type Document struct {
	Vertices []float64 `yaml:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Faces    [][]int   `yaml:"faces"`
	Scale    *Vec3     `yaml:"scale"`
	Queries  Queries   `yaml:"queries"`
}

// Queries lists what to ask the shape.
type Queries struct {
	Support    []Vec3      `yaml:"support"`
	Rays       []Ray       `yaml:"rays"`
	Points     []Vec3      `yaml:"points"`
	Placements []Placement `yaml:"placements"`
}

// Ray is a segment query. MaxFraction defaults to 1.
type Ray struct {
	From        Vec3     `yaml:"from"`
	To          Vec3     `yaml:"to"`
	MaxFraction *float64 `yaml:"max_fraction"`
}

// Placement puts a copy of the shape in the world, rotated by Angle
// radians around Axis. Every pair of placements is tested for overlap.
type Placement struct {
	Position Vec3    `yaml:"position"`
	Axis     *Vec3   `yaml:"axis"`
	Angle    float64 `yaml:"angle"`
}

// Load reads and parses the document at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes and validates a document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks the document layout. Topology and convexity are checked
// when the mesh is built.
func (d *Document) Validate() error {
	if len(d.Vertices) == 0 {
		return ErrNoVertices
	}
	if len(d.Vertices)%3 != 0 {
		return fmt.Errorf("%d values: %w", len(d.Vertices), ErrVertexLength)
	}
	for i, face := range d.Faces {
		if len(face) < 3 {
			return fmt.Errorf("face %d: %w", i, ErrFaceTooSmall)
		}
	}

	scale := d.ScaleVec()
	if scale.X() == 0 || scale.Y() == 0 || scale.Z() == 0 {
		return fmt.Errorf("scale %v: %w", scale, ErrZeroScale)
	}

	for i, direction := range d.Queries.Support {
		if direction.Vec().LenSqr() == 0 {
			return fmt.Errorf("support query %d: %w", i, ErrZeroDirection)
		}
	}
	for i, placement := range d.Queries.Placements {
		if placement.Axis != nil && placement.Axis.Vec().LenSqr() == 0 {
			return fmt.Errorf("placement %d: %w", i, ErrZeroAxis)
		}
	}
	return nil
}

// ScaleVec returns the scale, (1, 1, 1) when the document has none.
func (d *Document) ScaleVec() mgl64.Vec3 {
	if d.Scale == nil {
		return mgl64.Vec3{1, 1, 1}
	}
	return d.Scale.Vec()
}

// NbVertices returns the number of points in the vertex buffer.
func (d *Document) NbVertices() int {
	return len(d.Vertices) / 3
}

// VertexArray returns the document polygons as a vertex array.
func (d *Document) VertexArray() *mesh.VertexArray[float64, int] {
	indices, faces := mesh.NewIndexedFaces(d.Faces)
	return mesh.NewVertexArray(d.Vertices, indices, faces)
}

// BuildMesh builds the convex mesh of the document: from its faces when
// present, otherwise as the convex hull of its vertices.
func (d *Document) BuildMesh() (*mesh.ConvexMesh, error) {
	if len(d.Faces) > 0 {
		return mesh.NewConvexMesh(d.VertexArray())
	}

	points := make([]mgl64.Vec3, d.NbVertices())
	for i := range points {
		points[i] = mgl64.Vec3{d.Vertices[i*3], d.Vertices[i*3+1], d.Vertices[i*3+2]}
	}
	return mesh.NewConvexMeshFromPoints(points)
}

// ShapeRay converts a ray query.
func (r Ray) ShapeRay() shape.Ray {
	ray := shape.NewRay(r.From.Vec(), r.To.Vec())
	if r.MaxFraction != nil {
		ray.MaxFraction = *r.MaxFraction
	}
	return ray
}

// Transform converts a placement.
func (p Placement) Transform() shape.Transform {
	transform := shape.NewTransform()
	transform.Position = p.Position.Vec()
	if p.Axis != nil {
		transform.Rotation = mgl64.QuatRotate(p.Angle, p.Axis.Vec().Normalize())
	}
	return transform
}
