package culling

import (
	"math"
	"slices"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-atlas/common"
	"github.com/Carmen-Shannon/oxy-atlas/engine/camera"
	"github.com/Carmen-Shannon/oxy-atlas/engine/light"
	"github.com/Carmen-Shannon/oxy-atlas/engine/shadow"
	"github.com/go-gl/mathgl/mgl32"
)

// Caster is a shadow casting object as seen by the culling system.
type Caster struct {
	ID     int
	Bounds common.Bounds
}

// VisibleLight is a light that survived culling.
type VisibleLight struct {
	Light light.Light
	// Index is the light's position in the slice passed to Cull.
	Index int
}

// cubeFaces holds the forward and up vectors of each cube face in CubeFace order.
var cubeFaces = [6]struct{ forward, up mgl32.Vec3 }{
	{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, -1, 0}},
	{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, -1, 0}},
	{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, 1}},
	{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{0, 0, -1}},
	{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, -1, 0}},
	{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, -1, 0}},
}

type systemImpl struct {
	mu *sync.Mutex

	cam            camera.Camera
	shadowDistance float32
	workers        int
	pool           worker.DynamicWorkerPool

	visible      []VisibleLight
	casterBounds []common.Bounds
	casterSets   [][]int
}

// System is the CPU reference implementation of the shadow culling collaborator.
// Cull runs once per frame; the shadow system then queries the results through the
// shadow.CullingResults methods.
type System interface {
	shadow.CullingResults

	// Cull determines the visible lights and, per visible light, the shadow casters that
	// can affect it. Caster sets are computed in parallel on the system's worker pool.
	//
	// Parameters:
	//   - lights: every light in the scene
	//   - casters: every shadow casting object in the scene
	Cull(lights []light.Light, casters []Caster)

	// VisibleLights returns the lights that survived the last Cull, in visible index order.
	// The slice is a copy and stays valid across later Cull calls.
	//
	// Returns:
	//   - []VisibleLight: the visible lights
	VisibleLights() []VisibleLight

	// ShadowCasters returns the IDs of the casters affecting a visible light.
	//
	// Parameters:
	//   - visibleLightIndex: index into VisibleLights
	//
	// Returns:
	//   - []int: a copy of the caster IDs, empty when the light has no casters
	ShadowCasters(visibleLightIndex int) []int

	// ShadowDistance returns the camera distance covered by directional cascades.
	ShadowDistance() float32

	// SetShadowDistance updates the camera distance covered by directional cascades.
	SetShadowDistance(d float32)

	// Release stops the worker pool.
	Release()
}

var _ System = &systemImpl{}

// NewSystem creates a culling system for the given camera.
//
// Parameters:
//   - cam: the camera whose view is being rendered
//   - options: variadic list of SystemBuilderOption functions
//
// Returns:
//   - System: the culling system
func NewSystem(cam camera.Camera, options ...SystemBuilderOption) System {
	s := &systemImpl{
		mu:             &sync.Mutex{},
		cam:            cam,
		shadowDistance: 100,
		workers:        4,
	}

	for _, opt := range options {
		opt(s)
	}

	// The pool is created after options so WithWorkers can override the default.
	s.pool = worker.NewDynamicWorkerPool(s.workers, 64, 1*time.Second)

	return s
}

func (s *systemImpl) Cull(lights []light.Light, casters []Caster) {
	s.mu.Lock()
	defer s.mu.Unlock()

	frustum := s.cam.Frustum()
	s.visible = s.visible[:0]
	for i, l := range lights {
		if !l.Enabled() {
			continue
		}
		if l.Type() != light.LightTypeDirectional && !frustum.IntersectsSphere(lightSphere(l)) {
			continue
		}
		s.visible = append(s.visible, VisibleLight{Light: l, Index: i})
	}

	n := len(s.visible)
	s.casterBounds = resize(s.casterBounds, n)
	s.casterSets = resize(s.casterSets, n)

	viewSphere := common.Sphere{Center: s.cam.Position(), Radius: s.shadowDistance}

	// Each task writes only its own slot, so the WaitGroup is the only sync needed.
	var wg sync.WaitGroup
	for i := range s.visible {
		wg.Add(1)
		idx := i
		s.pool.SubmitTask(worker.Task{
			ID: idx,
			Do: func() (any, error) {
				defer wg.Done()

				influence := viewSphere
				if l := s.visible[idx].Light; l.Type() != light.LightTypeDirectional {
					influence = lightSphere(l)
				}

				bounds := common.EmptyBounds()
				set := s.casterSets[idx][:0]
				for _, c := range casters {
					if c.Bounds.IntersectsSphere(influence) {
						bounds = bounds.Encapsulate(c.Bounds)
						set = append(set, c.ID)
					}
				}
				s.casterBounds[idx] = bounds
				s.casterSets[idx] = set
				return nil, nil
			},
		})
	}
	wg.Wait()
	shadow.Logger().Debug("lights culled", "lights", len(lights), "visible", n, "casters", len(casters))
}

func (s *systemImpl) VisibleLights() []VisibleLight {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.visible)
}

func (s *systemImpl) ShadowCasters(visibleLightIndex int) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if visibleLightIndex < 0 || visibleLightIndex >= len(s.casterSets) {
		return nil
	}
	return slices.Clone(s.casterSets[visibleLightIndex])
}

func (s *systemImpl) ShadowDistance() float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shadowDistance
}

func (s *systemImpl) SetShadowDistance(d float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shadowDistance = d
}

func (s *systemImpl) Release() {
	s.pool.Stop()
}

func (s *systemImpl) ShadowCasterBounds(visibleLightIndex int) (common.Bounds, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if visibleLightIndex < 0 || visibleLightIndex >= len(s.casterBounds) {
		return common.EmptyBounds(), false
	}
	b := s.casterBounds[visibleLightIndex]
	return b, !b.IsEmpty()
}

func (s *systemImpl) ComputeDirectionalShadowMatrices(visibleLightIndex, cascadeIndex, cascadeCount int, ratios mgl32.Vec3, tileSize int, nearPlaneOffset float32) shadow.ShadowMatrices {
	l, ok := s.lightAt(visibleLightIndex)
	if !ok {
		return identityMatrices()
	}

	distance := min(s.ShadowDistance(), s.cam.Far())
	near, far := cascadeRange(cascadeIndex, cascadeCount, ratios, s.cam.Near(), distance)
	corners := s.cam.SliceCorners(near, far)
	sphere := enclosingSphere(corners)

	dir := mgl32.Vec3(l.Direction()).Normalize()
	up := stableUp(dir)

	// Snap the sphere center to whole texels in light space so the cascade does not
	// shimmer when the camera moves.
	texel := 2 * sphere.Radius / float32(tileSize)
	rotation := mgl32.LookAtV(mgl32.Vec3{}, dir, up)
	ls := rotation.Mul4x1(sphere.Center.Vec4(1))
	ls[0] = float32(math.Floor(float64(ls[0]/texel))) * texel
	ls[1] = float32(math.Floor(float64(ls[1]/texel))) * texel
	center := rotation.Transpose().Mul4x1(ls).Vec3()

	eye := center.Sub(dir.Mul(sphere.Radius))
	r := sphere.Radius
	return shadow.ShadowMatrices{
		View:       mgl32.LookAtV(eye, center, up),
		Projection: mgl32.Ortho(-r, r, -r, r, -nearPlaneOffset, 2*r),
		Split:      shadow.SplitData{CullingSphere: sphere.Vec4()},
	}
}

func (s *systemImpl) ComputeSpotShadowMatrices(visibleLightIndex int) shadow.ShadowMatrices {
	l, ok := s.lightAt(visibleLightIndex)
	if !ok {
		return identityMatrices()
	}

	pos := mgl32.Vec3(l.Position())
	dir := mgl32.Vec3(l.Direction()).Normalize()
	return shadow.ShadowMatrices{
		View:       mgl32.LookAtV(pos, pos.Add(dir), stableUp(dir)),
		Projection: mgl32.Perspective(mgl32.DegToRad(l.SpotAngle()), 1, l.ShadowNearPlane(), l.Range()),
	}
}

func (s *systemImpl) ComputePointShadowMatrices(visibleLightIndex int, face shadow.CubeFace, fovBias float32) shadow.ShadowMatrices {
	l, ok := s.lightAt(visibleLightIndex)
	if !ok || face < shadow.CubeFacePositiveX || face > shadow.CubeFaceNegativeZ {
		return identityMatrices()
	}

	pos := mgl32.Vec3(l.Position())
	f := cubeFaces[face]
	return shadow.ShadowMatrices{
		View:       mgl32.LookAtV(pos, pos.Add(f.forward), f.up),
		Projection: mgl32.Perspective(mgl32.DegToRad(90+fovBias), 1, l.ShadowNearPlane(), l.Range()),
	}
}

func (s *systemImpl) lightAt(visibleLightIndex int) (light.Light, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if visibleLightIndex < 0 || visibleLightIndex >= len(s.visible) {
		return nil, false
	}
	return s.visible[visibleLightIndex].Light, true
}

// cascadeRange returns the camera distances bounding one cascade.
func cascadeRange(cascadeIndex, cascadeCount int, ratios mgl32.Vec3, cameraNear, distance float32) (near, far float32) {
	near = cameraNear
	if cascadeIndex > 0 {
		near = ratios[cascadeIndex-1] * distance
	}
	far = distance
	if cascadeIndex < cascadeCount-1 {
		far = ratios[cascadeIndex] * distance
	}
	return near, far
}

// enclosingSphere returns a sphere around the centroid of the points that contains all of them.
func enclosingSphere(points [8]mgl32.Vec3) common.Sphere {
	var center mgl32.Vec3
	for _, p := range points {
		center = center.Add(p)
	}
	center = center.Mul(1.0 / float32(len(points)))

	var radius float32
	for _, p := range points {
		radius = max(radius, p.Sub(center).Len())
	}
	return common.Sphere{Center: center, Radius: radius}
}

func lightSphere(l light.Light) common.Sphere {
	return common.Sphere{Center: mgl32.Vec3(l.Position()), Radius: l.Range()}
}

// stableUp picks an up vector that is not parallel to dir.
func stableUp(dir mgl32.Vec3) mgl32.Vec3 {
	if math.Abs(float64(dir.Y())) > 0.99 {
		return mgl32.Vec3{0, 0, 1}
	}
	return mgl32.Vec3{0, 1, 0}
}

func identityMatrices() shadow.ShadowMatrices {
	return shadow.ShadowMatrices{View: mgl32.Ident4(), Projection: mgl32.Ident4()}
}

func resize[T any](s []T, n int) []T {
	if cap(s) < n {
		return append(s[:cap(s)], make([]T, n-cap(s))...)
	}
	return s[:n]
}
