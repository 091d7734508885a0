package loaders

import (
	"encoding/binary"
	"fmt"
	"math"
	"path/filepath"
	"time"

	"github.com/qmuntal/gltf"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/material"
)

// LoadGLTF reads a .gltf or .glb file into a new group registered in reg
func LoadGLTF(reg Registry, path string, m material.Material, logger core.Logger) (geometry.ShapeID, MeshStats, error) {
	startTime := time.Now()
	if logger == nil {
		logger = core.DiscardLogger{}
	}

	doc, err := gltf.Open(path)
	if err != nil {
		return geometry.NoShape, MeshStats{}, fmt.Errorf("open gltf: %w", err)
	}

	root, stats, err := GLTFToGroup(reg, doc, m)
	if err != nil {
		return geometry.NoShape, stats, fmt.Errorf("import %s: %w", filepath.Base(path), err)
	}

	logger.Printf("Loaded glTF %s: %d triangles (%d smooth) in %d groups in %v\n",
		filepath.Base(path), stats.Triangles, stats.SmoothTriangles, stats.Groups, time.Since(startTime))
	return root, stats, nil
}

// GLTFToGroup converts the triangle primitives of a parsed document into a
// group. Nodes of the default scene are walked with their transforms baked
// into the vertices; a document without nodes imports every mesh as is.
// Each mesh instance becomes one child group.
func GLTFToGroup(reg Registry, doc *gltf.Document, m material.Material) (geometry.ShapeID, MeshStats, error) {
	b := newMeshBuilder(reg, m)

	var walk func(nodeIdx int, parent core.Matrix, depth int) error
	walk = func(nodeIdx int, parent core.Matrix, depth int) error {
		if nodeIdx < 0 || nodeIdx >= len(doc.Nodes) {
			return fmt.Errorf("node %d out of range", nodeIdx)
		}
		if depth > len(doc.Nodes) {
			return fmt.Errorf("node %d: cyclic node hierarchy", nodeIdx)
		}
		node := doc.Nodes[nodeIdx]
		world := parent.Multiply(nodeTransform(node))
		if node.Mesh != nil {
			if err := addGLTFMesh(b, doc, *node.Mesh, world); err != nil {
				return fmt.Errorf("node %q: %w", node.Name, err)
			}
		}
		for _, child := range node.Children {
			if err := walk(child, world, depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	roots := sceneRoots(doc)
	if len(roots) == 0 {
		for meshIdx := range doc.Meshes {
			if err := addGLTFMesh(b, doc, meshIdx, core.Identity()); err != nil {
				return geometry.NoShape, b.stats, err
			}
		}
		return b.finish(), b.stats, nil
	}
	for _, nodeIdx := range roots {
		if err := walk(nodeIdx, core.Identity(), 0); err != nil {
			return geometry.NoShape, b.stats, err
		}
	}
	return b.finish(), b.stats, nil
}

// sceneRoots returns the root nodes of the default scene, or of the first
// scene when none is marked default
func sceneRoots(doc *gltf.Document) []int {
	if len(doc.Scenes) == 0 {
		return nil
	}
	idx := 0
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		idx = *doc.Scene
	}
	return doc.Scenes[idx].Nodes
}

var identityColumns = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

// nodeTransform returns the node's local matrix. A non-identity matrix wins
// over translation/rotation/scale; unset components fall back to identity.
func nodeTransform(n *gltf.Node) core.Matrix {
	if n.Matrix != ([16]float64{}) && n.Matrix != identityColumns {
		return core.NewMatrixColumnMajor(n.Matrix)
	}
	t := core.Translation(n.Translation[0], n.Translation[1], n.Translation[2])
	r := core.Identity()
	if n.Rotation != ([4]float64{}) {
		r = core.RotationQuat(n.Rotation[0], n.Rotation[1], n.Rotation[2], n.Rotation[3])
	}
	s := core.Identity()
	if n.Scale != ([3]float64{}) {
		s = core.Scaling(n.Scale[0], n.Scale[1], n.Scale[2])
	}
	return t.Multiply(r).Multiply(s)
}

// addGLTFMesh adds the triangle primitives of one mesh, transformed by m
func addGLTFMesh(b *meshBuilder, doc *gltf.Document, meshIdx int, m core.Matrix) error {
	if meshIdx < 0 || meshIdx >= len(doc.Meshes) {
		return fmt.Errorf("mesh %d out of range", meshIdx)
	}
	mesh := doc.Meshes[meshIdx]
	if !m.Invertible() {
		// a zero scale collapses the instance
		return nil
	}
	normalMatrix := m.Inverse().Transpose()
	b.beginPart()

	for primIdx, prim := range mesh.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			continue
		}
		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}

		positions, err := readVec3Accessor(doc, posIdx)
		if err != nil {
			return fmt.Errorf("mesh %q primitive %d: read positions: %w", mesh.Name, primIdx, err)
		}
		var normals [][3]float64
		if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
			normals, err = readVec3Accessor(doc, normIdx)
			if err != nil {
				return fmt.Errorf("mesh %q primitive %d: read normals: %w", mesh.Name, primIdx, err)
			}
			if len(normals) != len(positions) {
				normals = nil
			}
		}

		var indices []int
		if prim.Indices != nil {
			indices, err = readIndices(doc, *prim.Indices)
			if err != nil {
				return fmt.Errorf("mesh %q primitive %d: read indices: %w", mesh.Name, primIdx, err)
			}
		} else {
			indices = make([]int, len(positions))
			for i := range indices {
				indices[i] = i
			}
		}

		for i := 0; i+2 < len(indices); i += 3 {
			var p, n [3]core.Tuple
			for v := range 3 {
				vi := indices[i+v]
				if vi < 0 || vi >= len(positions) {
					return fmt.Errorf("mesh %q primitive %d: index %d out of range", mesh.Name, primIdx, vi)
				}
				pos := positions[vi]
				p[v] = m.MultiplyTuple(core.Point(pos[0], pos[1], pos[2]))
				if normals != nil {
					nv := normalMatrix.MultiplyTuple(core.Vector(normals[vi][0], normals[vi][1], normals[vi][2]))
					nv.W = 0
					n[v] = nv.Normalize()
				}
			}
			if normals != nil {
				b.addTriangle(p, &n)
			} else {
				b.addTriangle(p, nil)
			}
		}
	}
	return nil
}

// readVec3Accessor reads float VEC3 data from an accessor
func readVec3Accessor(doc *gltf.Document, accessorIdx int) ([][3]float64, error) {
	accessor, data, stride, err := accessorBytes(doc, accessorIdx, 12)
	if err != nil {
		return nil, err
	}
	if accessor.Type != gltf.AccessorVec3 || accessor.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("expected float VEC3, got %v / %v", accessor.Type, accessor.ComponentType)
	}

	result := make([][3]float64, accessor.Count)
	for i := range accessor.Count {
		offset := i * stride
		for j := range 3 {
			bits := binary.LittleEndian.Uint32(data[offset+j*4:])
			result[i][j] = float64(math.Float32frombits(bits))
		}
	}
	return result, nil
}

// readIndices reads unsigned SCALAR index data from an accessor
func readIndices(doc *gltf.Document, accessorIdx int) ([]int, error) {
	size := 0
	if accessorIdx >= 0 && accessorIdx < len(doc.Accessors) {
		switch doc.Accessors[accessorIdx].ComponentType {
		case gltf.ComponentUbyte:
			size = 1
		case gltf.ComponentUshort:
			size = 2
		case gltf.ComponentUint:
			size = 4
		}
	}
	if size == 0 {
		return nil, fmt.Errorf("accessor %d: unsupported index type", accessorIdx)
	}

	accessor, data, stride, err := accessorBytes(doc, accessorIdx, size)
	if err != nil {
		return nil, err
	}
	result := make([]int, accessor.Count)
	for i := range accessor.Count {
		offset := i * stride
		switch size {
		case 1:
			result[i] = int(data[offset])
		case 2:
			result[i] = int(binary.LittleEndian.Uint16(data[offset:]))
		case 4:
			result[i] = int(binary.LittleEndian.Uint32(data[offset:]))
		}
	}
	return result, nil
}

// accessorBytes returns the accessor, its data starting at the first element,
// and the element stride. elemSize is used when the buffer view is tightly
// packed.
func accessorBytes(doc *gltf.Document, accessorIdx, elemSize int) (*gltf.Accessor, []byte, int, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, nil, 0, fmt.Errorf("accessor %d out of range", accessorIdx)
	}
	accessor := doc.Accessors[accessorIdx]
	if accessor.BufferView == nil {
		return nil, nil, 0, fmt.Errorf("accessor %d has no buffer view", accessorIdx)
	}
	if *accessor.BufferView >= len(doc.BufferViews) {
		return nil, nil, 0, fmt.Errorf("accessor %d: buffer view %d out of range", accessorIdx, *accessor.BufferView)
	}
	view := doc.BufferViews[*accessor.BufferView]
	if view.Buffer >= len(doc.Buffers) {
		return nil, nil, 0, fmt.Errorf("buffer view %d: buffer %d out of range", *accessor.BufferView, view.Buffer)
	}
	buffer := doc.Buffers[view.Buffer]
	if buffer.Data == nil {
		return nil, nil, 0, fmt.Errorf("buffer %d has no data", view.Buffer)
	}

	stride := view.ByteStride
	if stride == 0 {
		stride = elemSize
	}
	start := view.ByteOffset + accessor.ByteOffset
	if accessor.Count > 0 {
		end := start + (accessor.Count-1)*stride + elemSize
		if end > len(buffer.Data) {
			return nil, nil, 0, fmt.Errorf("accessor %d reads past the end of buffer %d", accessorIdx, view.Buffer)
		}
	}
	return accessor, buffer.Data[start:], stride, nil
}
