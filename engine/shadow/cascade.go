package shadow

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Cascade is the shader-facing description of one directional cascade. The culling
// sphere is shared by every directional light in the frame.
type Cascade struct {
	// CullingSphere is center.xyz with the squared, filter-shrunk radius in w.
	CullingSphere mgl32.Vec4
	// Data is 1/radius² in x and the normal bias filter term in y.
	Data mgl32.Vec4
}

// BuildCascade derives the cascade data from the culling sphere of one cascade.
// The radius shrinks by the filter footprint so that filter taps stay inside the
// region the cascade actually rendered.
//
// Parameters:
//   - sphere: the culling sphere, center.xyz and radius in w
//   - tileSize: the cascade's tile edge length in texels
//   - filter: the directional filter mode
//
// Returns:
//   - Cascade: the culling sphere with squared radius and the bias data
func BuildCascade(sphere mgl32.Vec4, tileSize float32, filter FilterMode) Cascade {
	texelSize := 2 * sphere.W() / tileSize
	filterSize := texelSize * filter.kernelScale()

	radius := max(sphere.W()-filterSize, 0)
	sphere[3] = radius * radius

	var data mgl32.Vec4
	if sphere[3] > 0 {
		data[0] = 1 / sphere[3]
	}
	data[1] = filterSize * math.Sqrt2

	return Cascade{CullingSphere: sphere, Data: data}
}
