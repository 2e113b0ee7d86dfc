package shadow

import (
	"github.com/Carmen-Shannon/oxy-atlas/common"
	"github.com/go-gl/mathgl/mgl32"
)

// fakeCulling returns fixed matrices and reports caster bounds for the indices in bounds.
type fakeCulling struct {
	bounds map[int]bool

	directionalCalls int
	spotCalls        int
	pointCalls       int
	lastFovBias      float32
	lastTileSize     int
	spotProjection   mgl32.Mat4
}

func newFakeCulling(withBounds ...int) *fakeCulling {
	f := &fakeCulling{
		bounds:         make(map[int]bool),
		spotProjection: mgl32.Perspective(mgl32.DegToRad(60), 1, 0.1, 20),
	}
	for _, i := range withBounds {
		f.bounds[i] = true
	}
	return f
}

func (f *fakeCulling) ShadowCasterBounds(visibleLightIndex int) (common.Bounds, bool) {
	if !f.bounds[visibleLightIndex] {
		return common.EmptyBounds(), false
	}
	return common.NewBoundsCenterExtents(mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}), true
}

func (f *fakeCulling) ComputeDirectionalShadowMatrices(visibleLightIndex, cascadeIndex, cascadeCount int, ratios mgl32.Vec3, tileSize int, nearPlaneOffset float32) ShadowMatrices {
	f.directionalCalls++
	f.lastTileSize = tileSize
	radius := float32(10 * (cascadeIndex + 1))
	return ShadowMatrices{
		View:       mgl32.Ident4(),
		Projection: mgl32.Ortho(-radius, radius, -radius, radius, 0.1, 2*radius),
		Split:      SplitData{CullingSphere: mgl32.Vec4{0, 0, float32(-cascadeIndex), radius}},
	}
}

func (f *fakeCulling) ComputeSpotShadowMatrices(visibleLightIndex int) ShadowMatrices {
	f.spotCalls++
	return ShadowMatrices{View: mgl32.Ident4(), Projection: f.spotProjection}
}

func (f *fakeCulling) ComputePointShadowMatrices(visibleLightIndex int, face CubeFace, fovBias float32) ShadowMatrices {
	f.pointCalls++
	f.lastFovBias = fovBias
	return ShadowMatrices{
		View:       mgl32.Ident4(),
		Projection: mgl32.Perspective(mgl32.DegToRad(90+fovBias), 1, 0.1, 10),
	}
}

// fakeCommandBuffer records what the shadow system asked for.
type fakeCommandBuffer struct {
	allocated  map[string]int
	released   []string
	targets    []string
	viewports  []Viewport
	views      []mgl32.Mat4
	draws      []DrawShadowsSettings
	biases     [][2]float32
	ints       map[string]int32
	floats     map[string]float32
	vectors    map[string]mgl32.Vec4
	vecArrays  map[string][]mgl32.Vec4
	matArrays  map[string][]mgl32.Mat4
	textures   map[string]string
	keywords   map[string]bool
	executions int

	allocErr error
}

func newFakeCommandBuffer() *fakeCommandBuffer {
	return &fakeCommandBuffer{
		allocated: make(map[string]int),
		ints:      make(map[string]int32),
		floats:    make(map[string]float32),
		vectors:   make(map[string]mgl32.Vec4),
		vecArrays: make(map[string][]mgl32.Vec4),
		matArrays: make(map[string][]mgl32.Mat4),
		textures:  make(map[string]string),
		keywords:  make(map[string]bool),
	}
}

func (c *fakeCommandBuffer) GetTemporaryShadowAtlas(name string, size int) error {
	if c.allocErr != nil {
		return c.allocErr
	}
	c.allocated[name] = size
	return nil
}

func (c *fakeCommandBuffer) ReleaseTemporaryShadowAtlas(name string) error {
	c.released = append(c.released, name)
	return nil
}

func (c *fakeCommandBuffer) SetRenderTarget(name string) { c.targets = append(c.targets, name) }
func (c *fakeCommandBuffer) SetViewport(v Viewport)      { c.viewports = append(c.viewports, v) }

func (c *fakeCommandBuffer) SetViewProjectionMatrices(view, projection mgl32.Mat4) {
	c.views = append(c.views, view)
}

func (c *fakeCommandBuffer) SetGlobalDepthBias(bias, slopeBias float32) {
	c.biases = append(c.biases, [2]float32{bias, slopeBias})
}

func (c *fakeCommandBuffer) DrawShadows(s DrawShadowsSettings) { c.draws = append(c.draws, s) }
func (c *fakeCommandBuffer) SetGlobalInt(name string, v int32) { c.ints[name] = v }
func (c *fakeCommandBuffer) SetGlobalFloat(name string, v float32) {
	c.floats[name] = v
}
func (c *fakeCommandBuffer) SetGlobalVector(name string, v mgl32.Vec4) { c.vectors[name] = v }

func (c *fakeCommandBuffer) SetGlobalVectorArray(name string, v []mgl32.Vec4) {
	c.vecArrays[name] = append([]mgl32.Vec4(nil), v...)
}

func (c *fakeCommandBuffer) SetGlobalMatrixArray(name string, m []mgl32.Mat4) {
	c.matArrays[name] = append([]mgl32.Mat4(nil), m...)
}

func (c *fakeCommandBuffer) SetGlobalTexture(name, source string) { c.textures[name] = source }
func (c *fakeCommandBuffer) SetKeyword(keyword string, enabled bool) {
	c.keywords[keyword] = enabled
}

func (c *fakeCommandBuffer) Execute() error {
	c.executions++
	return nil
}
