package server

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/material"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
	"github.com/df07/go-whitted-raytracer/pkg/world"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool           `json:"hit"`
	ShapeID      int            `json:"shapeId"`
	Ancestors    []int          `json:"ancestors"` // Parent chain, nearest first
	GeometryType string         `json:"geometryType"`
	Point        [3]float64     `json:"point"`
	Normal       [3]float64     `json:"normal"`
	Distance     float64        `json:"distance"`
	Inside       bool           `json:"inside"`
	N1           float64        `json:"n1"`
	N2           float64        `json:"n2"`
	Color        string         `json:"color"` // Traced pixel color
	Properties   map[string]any `json:"properties"`
}

// InspectResult is the nearest visible surface behind a pixel
type InspectResult struct {
	Hit   bool
	Comps world.Computations
}

// inspectPixel casts the camera ray through the center of pixel (x, y)
func inspectPixel(sc *scene.Scene, pixelX, pixelY int) InspectResult {
	ray := sc.Camera().RayForPixel(pixelX, pixelY)
	xs := sc.World.IntersectWorld(ray)
	hit, ok := xs.Hit()
	if !ok {
		return InspectResult{Hit: false}
	}
	return InspectResult{Hit: true, Comps: sc.World.PrepareComputations(hit, ray, xs)}
}

// extractMaterialInfo lists the Phong and recursion parameters of a material
func extractMaterialInfo(m material.Material) map[string]any {
	properties := map[string]any{
		"color":           m.Color.Hex(),
		"ambient":         m.Ambient,
		"diffuse":         m.Diffuse,
		"specular":        m.Specular,
		"shininess":       m.Shininess,
		"reflective":      m.Reflective,
		"transparency":    m.Transparency,
		"refractiveIndex": m.RefractiveIndex,
	}
	if m.Pattern != nil {
		name := fmt.Sprintf("%T", m.Pattern)
		properties["pattern"] = strings.ToLower(name[strings.LastIndex(name, ".")+1:])
	}
	return properties
}

// extractGeometryInfo lists the kind-specific parameters of a shape
func extractGeometryInfo(s *geometry.Shape) map[string]any {
	properties := make(map[string]any)
	switch k := s.Kind.(type) {
	case *geometry.Cylinder:
		properties["min"] = jsonLimit(k.Min)
		properties["max"] = jsonLimit(k.Max)
		properties["closed"] = k.Closed
	case *geometry.Cone:
		properties["min"] = jsonLimit(k.Min)
		properties["max"] = jsonLimit(k.Max)
		properties["closed"] = k.Closed
	case *geometry.Triangle:
		properties["vertices"] = [][3]float64{tuple3(k.P1), tuple3(k.P2), tuple3(k.P3)}
	case *geometry.SmoothTriangle:
		properties["vertices"] = [][3]float64{tuple3(k.P1), tuple3(k.P2), tuple3(k.P3)}
		properties["normals"] = [][3]float64{tuple3(k.N1), tuple3(k.N2), tuple3(k.N3)}
	}
	return properties
}

// jsonLimit encodes a quadric extent; JSON has no infinity, so unbounded
// extents become "inf" and "-inf"
func jsonLimit(v float64) any {
	switch {
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return v
}

// handleInspect handles ray casting inspection requests
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	req, err := parseRenderRequest(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid scene parameters: "+err.Error())
		return
	}

	pixelX, err := strconv.Atoi(r.URL.Query().Get("x"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid x coordinate")
		return
	}
	pixelY, err := strconv.Atoi(r.URL.Query().Get("y"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid y coordinate")
		return
	}

	sc, err := s.prepareScene(req, s.logger)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if pixelX < 0 || pixelX >= sc.Config.Width || pixelY < 0 || pixelY >= sc.Config.Height {
		writeError(w, http.StatusBadRequest, "Pixel coordinates out of bounds")
		return
	}

	result := inspectPixel(sc, pixelX, pixelY)
	if !result.Hit {
		writeJSON(w, http.StatusOK, InspectResponse{Hit: false, ShapeID: int(geometry.NoShape)})
		return
	}

	comps := result.Comps
	obj := comps.Object
	var ancestors []int
	for p := obj.Parent; p != geometry.NoShape; p = sc.World.GetShape(p).Parent {
		ancestors = append(ancestors, int(p))
	}
	traced := sc.World.ColorAt(sc.Camera().RayForPixel(pixelX, pixelY), sc.Config.MaxDepth)

	writeJSON(w, http.StatusOK, InspectResponse{
		Hit:          true,
		ShapeID:      int(obj.ID),
		Ancestors:    ancestors,
		GeometryType: obj.Kind.Name(),
		Point:        tuple3(comps.Point),
		Normal:       tuple3(comps.NormalV),
		Distance:     comps.T,
		Inside:       comps.Inside,
		N1:           comps.N1,
		N2:           comps.N2,
		Color:        traced.Hex(),
		Properties: map[string]any{
			"material": extractMaterialInfo(obj.Material),
			"geometry": extractGeometryInfo(obj),
		},
	})
}
