// Command hullquery builds a convex mesh shape from a YAML mesh document and
// runs the document's support, raycast, containment and overlap queries.
//
//	hullquery [flags] mesh.yaml
package main

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/akmonengine/hull"
	"github.com/akmonengine/hull/internal/config"
	"github.com/akmonengine/hull/internal/logger"
	"github.com/akmonengine/hull/internal/meshfile"
	"github.com/akmonengine/hull/shape"
	"github.com/go-gl/mathgl/mgl64"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if config.SaveRequested() {
		if err := cfg.Save(); err != nil {
			logger.Error("saving config failed", zap.Error(err))
			os.Exit(1)
		}
		logger.Info("config saved", zap.String("dir", config.ConfigDir()))
	}

	args := config.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: hullquery [flags] mesh.yaml")
		os.Exit(2)
	}

	logger.Sugar.Debugw("running queries",
		"path", args[0],
		"support", cfg.Query.SupportMode,
		"workers", cfg.Pipeline.Workers,
	)

	doc, err := meshfile.Load(args[0])
	if err != nil {
		logger.Error("loading mesh document failed", zap.String("path", args[0]), zap.Error(err))
		os.Exit(1)
	}

	if err := run(cfg, doc, os.Stdout); err != nil {
		logger.Error("query failed", zap.String("path", args[0]), zap.Error(err))
		os.Exit(1)
	}
}

func formatVec(v mgl64.Vec3) string {
	return fmt.Sprintf("(%.6g, %.6g, %.6g)", v.X(), v.Y(), v.Z())
}

// run builds the document's shape and writes one line per query to out.
func run(cfg *config.Config, doc *meshfile.Document, out io.Writer) error {
	m, err := doc.BuildMesh()
	if err != nil {
		return fmt.Errorf("building mesh: %w", err)
	}
	convex := shape.NewConvexMeshShape(m, doc.ScaleVec())
	logger.Info("shape built",
		zap.Int("vertices", m.NbVertices()),
		zap.Int("faces", m.NbFaces()),
		zap.Float64("volume", convex.ComputeMass(1)),
	)

	bounds := convex.LocalBounds()
	fmt.Fprintf(out, "shape: %d vertices, %d faces, volume %.6g, bounds %s %s\n",
		m.NbVertices(), m.NbFaces(), convex.ComputeMass(1), formatVec(bounds.Min), formatVec(bounds.Max))

	var cache shape.SupportCache
	for _, direction := range doc.Queries.Support {
		var support mgl64.Vec3
		if cfg.Query.SupportMode == config.SupportScan {
			support = convex.Support(direction.Vec())
		} else {
			support = convex.SupportCached(direction.Vec(), &cache)
		}
		fmt.Fprintf(out, "support %s -> %s\n", formatVec(direction.Vec()), formatVec(support))
	}

	for _, query := range doc.Queries.Rays {
		ray := query.ShapeRay()
		info, hit := convex.Raycast(ray)
		if !hit {
			fmt.Fprintf(out, "ray %s -> %s: miss\n", formatVec(ray.Point1), formatVec(ray.Point2))
			continue
		}
		fmt.Fprintf(out, "ray %s -> %s: hit %s normal %s fraction %.6g\n",
			formatVec(ray.Point1), formatVec(ray.Point2),
			formatVec(info.WorldPoint), formatVec(info.WorldNormal), info.HitFraction)
	}

	for _, point := range doc.Queries.Points {
		state := "outside"
		if convex.ContainsPoint(point.Vec()) {
			state = "inside"
		}
		fmt.Fprintf(out, "point %s: %s\n", formatVec(point.Vec()), state)
	}

	placements := doc.Queries.Placements
	if len(placements) == 1 {
		logger.Warn("a single placement has nothing to overlap with")
	}
	var pairs []hull.Pair
	var labels [][2]int
	for i := 0; i < len(placements); i++ {
		for j := i + 1; j < len(placements); j++ {
			pairs = append(pairs, hull.Pair{
				A: &shape.Proxy{Shape: convex, Transform: placements[i].Transform()},
				B: &shape.Proxy{Shape: convex, Transform: placements[j].Transform()},
			})
			labels = append(labels, [2]int{i, j})
		}
	}
	for k, overlap := range hull.NarrowPhase(pairs, cfg.Pipeline.Workers) {
		fmt.Fprintf(out, "overlap %d-%d [%s]: %v\n", labels[k][0], labels[k][1], pairs[k].Algorithm(), overlap)
	}

	if cfg.Query.PrintShape {
		fmt.Fprintln(out, convex.String())
	}
	return nil
}
