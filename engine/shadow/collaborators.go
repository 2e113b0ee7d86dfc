package shadow

import (
	"github.com/Carmen-Shannon/oxy-atlas/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Viewport is a pixel rectangle inside an atlas. X and Y address the top-left corner.
type Viewport struct {
	X      float32
	Y      float32
	Width  float32
	Height float32
}

// CubeFace identifies one face of a point light's cube shadow map.
type CubeFace int

const (
	CubeFacePositiveX CubeFace = iota
	CubeFaceNegativeX
	CubeFacePositiveY
	CubeFaceNegativeY
	CubeFacePositiveZ
	CubeFaceNegativeZ
)

// ProjectionType tells the command buffer which projection a shadow draw uses.
type ProjectionType int

const (
	ProjectionOrthographic ProjectionType = iota
	ProjectionPerspective
)

// SplitData describes the region of the scene one shadow draw covers.
type SplitData struct {
	// CullingSphere is center.xyz and radius in w. A zero radius means no sphere culling.
	CullingSphere mgl32.Vec4
	// CascadeBlendCullingFactor lets casters fully covered by the previous cascade be skipped.
	CascadeBlendCullingFactor float32
}

// ShadowMatrices is the culling output for one shadow draw.
type ShadowMatrices struct {
	View       mgl32.Mat4
	Projection mgl32.Mat4
	Split      SplitData
}

// DrawShadowsSettings tells the command buffer which light's casters to draw.
type DrawShadowsSettings struct {
	VisibleLightIndex int
	Projection        ProjectionType
	Split             SplitData
}

// CullingResults is the visibility collaborator. It owns the scene's casters and
// computes the per-draw projections for a visible light.
type CullingResults interface {
	// ShadowCasterBounds returns the bounds of casters affecting the light, or false
	// when nothing casts a shadow for it.
	ShadowCasterBounds(visibleLightIndex int) (common.Bounds, bool)

	// ComputeDirectionalShadowMatrices returns the matrices of one cascade.
	//
	// Parameters:
	//   - visibleLightIndex: index of the light in the visible light list
	//   - cascadeIndex: the cascade to compute
	//   - cascadeCount: total cascades for the light
	//   - ratios: the split ratios of the shadow distance
	//   - tileSize: tile edge length in texels, used for texel snapping
	//   - nearPlaneOffset: how far the near plane is pulled toward the light
	//
	// Returns:
	//   - ShadowMatrices: view, projection and split data for the cascade
	ComputeDirectionalShadowMatrices(visibleLightIndex, cascadeIndex, cascadeCount int, ratios mgl32.Vec3, tileSize int, nearPlaneOffset float32) ShadowMatrices

	// ComputeSpotShadowMatrices returns the matrices of a spot light.
	ComputeSpotShadowMatrices(visibleLightIndex int) ShadowMatrices

	// ComputePointShadowMatrices returns the matrices of one cube face of a point light.
	// fovBias widens the 90 degree field of view in degrees.
	ComputePointShadowMatrices(visibleLightIndex int, face CubeFace, fovBias float32) ShadowMatrices
}

// CommandBuffer is the command submission collaborator. Commands are recorded in
// order and take effect on Execute.
type CommandBuffer interface {
	// GetTemporaryShadowAtlas allocates a square depth texture bound to name.
	GetTemporaryShadowAtlas(name string, size int) error
	// ReleaseTemporaryShadowAtlas frees a texture allocated with GetTemporaryShadowAtlas.
	ReleaseTemporaryShadowAtlas(name string) error
	// SetRenderTarget binds the named atlas as depth target and clears it.
	SetRenderTarget(name string)
	SetViewport(v Viewport)
	SetViewProjectionMatrices(view, projection mgl32.Mat4)
	SetGlobalDepthBias(bias, slopeBias float32)
	DrawShadows(settings DrawShadowsSettings)

	SetGlobalInt(name string, v int32)
	SetGlobalFloat(name string, v float32)
	SetGlobalVector(name string, v mgl32.Vec4)
	SetGlobalVectorArray(name string, v []mgl32.Vec4)
	SetGlobalMatrixArray(name string, m []mgl32.Mat4)
	// SetGlobalTexture binds the texture called source under name.
	SetGlobalTexture(name, source string)
	SetKeyword(keyword string, enabled bool)

	// Execute submits everything recorded since the previous Execute.
	Execute() error
}
