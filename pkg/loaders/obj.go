package loaders

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/udhos/gwob"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/material"
)

// OBJOptions controls Wavefront OBJ import
type OBJOptions struct {
	Material      material.Material // Material for every triangle; a usemtl Kd overrides its color
	IgnoreNormals bool              // Build flat triangles even when vertex normals are present
	Logger        core.Logger
}

// DefaultOBJOptions returns options using the default material
func DefaultOBJOptions() OBJOptions {
	return OBJOptions{Material: material.DefaultMaterial(), Logger: core.DiscardLogger{}}
}

// LoadOBJ reads a Wavefront OBJ file into a new group registered in reg.
// Faces are triangulated by the parser; each OBJ group or material switch
// becomes a child group. Vertex normals, when present, produce smooth
// triangles.
func LoadOBJ(reg Registry, path string, opts OBJOptions) (geometry.ShapeID, MeshStats, error) {
	startTime := time.Now()
	logger := opts.Logger
	if logger == nil {
		logger = core.DiscardLogger{}
	}

	parserOptions := gwob.ObjParserOptions{
		LogStats:      false,
		Logger:        func(s string) { logger.Printf("obj: %s\n", s) },
		IgnoreNormals: opts.IgnoreNormals,
	}
	obj, err := gwob.NewObjFromFile(path, &parserOptions)
	if err != nil {
		return geometry.NoShape, MeshStats{}, fmt.Errorf("failed to parse OBJ file %s: %w", path, err)
	}

	lib := gwob.NewMaterialLib()
	if obj.Mtllib != "" {
		lib, err = gwob.ReadMaterialLibFromFile(filepath.Join(filepath.Dir(path), obj.Mtllib), &parserOptions)
		if err != nil {
			// a missing material library only loses colors
			logger.Printf("obj: ignoring material library %s: %v\n", obj.Mtllib, err)
			lib = gwob.NewMaterialLib()
		}
	}

	b := newMeshBuilder(reg, opts.Material)
	stride := obj.StrideSize / 4
	posOffset := obj.StrideOffsetPosition / 4
	normOffset := obj.StrideOffsetNormal / 4
	useNormals := obj.NormCoordFound && !opts.IgnoreNormals

	coords := func(index, offset int) (x, y, z float64) {
		base := stride*obj.Indices[index] + offset
		return obj.Coord64(base), obj.Coord64(base + 1), obj.Coord64(base + 2)
	}

	for _, g := range obj.Groups {
		if g.IndexCount < 3 {
			continue
		}
		b.material = opts.Material
		if mtl, ok := lib.Lib[g.Usemtl]; ok {
			b.material.Color = core.NewColor(float64(mtl.Kd[0]), float64(mtl.Kd[1]), float64(mtl.Kd[2]))
		}
		b.beginPart()

		for f := range g.IndexCount / 3 {
			var p, n [3]core.Tuple
			for v := range 3 {
				idx := g.IndexBegin + 3*f + v
				p[v] = core.Point(coords(idx, posOffset))
				if useNormals {
					n[v] = core.Vector(coords(idx, normOffset)).Normalize()
				}
			}
			if useNormals {
				b.addTriangle(p, &n)
			} else {
				b.addTriangle(p, nil)
			}
		}
	}

	logger.Printf("Loaded OBJ %s: %d triangles (%d smooth) in %d groups in %v\n",
		filepath.Base(path), b.stats.Triangles, b.stats.SmoothTriangles, b.stats.Groups, time.Since(startTime))
	return b.finish(), b.stats, nil
}
