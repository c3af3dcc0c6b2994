package server

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/integrator"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	SphereIndex  int                    `json:"sphereIndex"`
	MaterialType string                 `json:"materialType"`
	Point        [3]float64             `json:"point"`
	Normal       [3]float64             `json:"normal"`
	Distance     float64                `json:"distance"`
	FrontFace    bool                   `json:"frontFace"`
	Properties   map[string]interface{} `json:"properties"`
}

func vec(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func hexColor(c core.Vec3) string {
	c = c.Clamp(0, 1)
	return fmt.Sprintf("#%02x%02x%02x", int(c.X*255), int(c.Y*255), int(c.Z*255))
}

// extractMaterialInfo extracts detailed material information with type assertions
func extractMaterialInfo(mat material.Material) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch m := mat.(type) {
	case *material.Lambertian:
		properties["albedo"] = vec(m.Albedo)
		properties["color"] = hexColor(m.Albedo)
		return "lambertian", properties

	case *material.Metal:
		properties["albedo"] = vec(m.Albedo)
		properties["color"] = hexColor(m.Albedo)
		properties["fuzzness"] = m.Fuzzness
		return "metal", properties

	case *material.Dielectric:
		properties["refractiveIndex"] = m.RefractiveIndex
		properties["color"] = "#ffffff" // Clear glass
		return "dielectric", properties

	default:
		return "unknown", properties
	}
}

// InspectResult describes the sphere hit by an inspection ray
type InspectResult struct {
	Hit         bool
	HitRecord   *material.HitRecord
	Sphere      *geometry.Sphere
	SphereIndex int
}

// inspectPixel casts a ray through the center of pixel (pixelX, pixelY) and
// returns the nearest sphere it hits
func inspectPixel(sceneObj *scene.Scene, pixelX, pixelY int) InspectResult {
	width, height := sceneObj.SamplingConfig.Width, sceneObj.SamplingConfig.Height
	u := float64(pixelX) / float64(max(1, width-1))
	v := 1 - float64(pixelY)/float64(max(1, height-1))

	// Fixed seed so repeated inspections of a pixel agree even with an open lens
	ray := sceneObj.Camera.GetRay(u, v, core.NewSeededSampler(0))

	result := InspectResult{SphereIndex: -1}
	closest := math.Inf(1)
	for i, obj := range sceneObj.World.Objects() {
		hit, isHit := obj.Hit(ray, integrator.ShadowAcneEpsilon, closest)
		if !isHit {
			continue
		}
		closest = hit.T
		result.Hit = true
		result.HitRecord = hit
		result.SphereIndex = i
		result.Sphere, _ = obj.(*geometry.Sphere)
	}
	return result
}

// handleInspect handles ray casting inspection requests
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	sceneName := query.Get("scene")
	if sceneName == "" {
		sceneName = DefaultScene
	}

	width, err := parseIntParam(query, "width", 0, MinWidth, MaxWidth)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	sceneObj, err := s.createScene(sceneName)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if width > 0 {
		sceneObj.SetWidth(width)
	}

	pixelX, errX := strconv.Atoi(query.Get("x"))
	pixelY, errY := strconv.Atoi(query.Get("y"))
	if errX != nil || errY != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid pixel coordinates"})
		return
	}
	if pixelX < 0 || pixelX >= sceneObj.SamplingConfig.Width || pixelY < 0 || pixelY >= sceneObj.SamplingConfig.Height {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Pixel coordinates out of bounds"})
		return
	}

	result := inspectPixel(sceneObj, pixelX, pixelY)
	if !result.Hit {
		writeJSON(w, http.StatusOK, InspectResponse{Hit: false, SphereIndex: -1})
		return
	}

	materialType, materialProps := extractMaterialInfo(result.HitRecord.Material)
	geometryProps := map[string]interface{}{}
	if result.Sphere != nil {
		geometryProps["center"] = vec(result.Sphere.Center)
		geometryProps["radius"] = result.Sphere.Radius
	}

	writeJSON(w, http.StatusOK, InspectResponse{
		Hit:          true,
		SphereIndex:  result.SphereIndex,
		MaterialType: materialType,
		Point:        vec(result.HitRecord.Point),
		Normal:       vec(result.HitRecord.Normal),
		Distance:     result.HitRecord.T,
		FrontFace:    result.HitRecord.FrontFace,
		Properties: map[string]interface{}{
			"material": materialProps,
			"geometry": geometryProps,
		},
	})
}
