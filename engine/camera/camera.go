package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-atlas/common"
	"github.com/go-gl/mathgl/mgl32"
)

type cameraImpl struct {
	mu *sync.Mutex

	position mgl32.Vec3
	target   mgl32.Vec3
	up       mgl32.Vec3

	fov    float32
	aspect float32
	near   float32
	far    float32

	viewMatrix           mgl32.Mat4
	projectionMatrix     mgl32.Mat4
	viewProjectionMatrix mgl32.Mat4
}

// Camera defines the interface for a perspective camera as consumed by the
// shadow culling system. Cascades are fitted to slices of this camera's frustum,
// which is why directional shadow geometry is camera-relative.
type Camera interface {
	// Position returns the world-space eye position.
	//
	// Returns:
	//   - mgl32.Vec3: the eye position
	Position() mgl32.Vec3

	// Forward returns the normalized viewing direction.
	//
	// Returns:
	//   - mgl32.Vec3: unit vector from the eye toward the target
	Forward() mgl32.Vec3

	// Up returns the camera's up vector.
	//
	// Returns:
	//   - mgl32.Vec3: the up vector
	Up() mgl32.Vec3

	// Fov returns the vertical field of view in radians.
	//
	// Returns:
	//   - float32: field of view in radians
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// Near returns the near clipping plane distance.
	//
	// Returns:
	//   - float32: near plane distance
	Near() float32

	// Far returns the far clipping plane distance.
	//
	// Returns:
	//   - float32: far plane distance
	Far() float32

	// ViewMatrix returns the current view matrix.
	//
	// Returns:
	//   - mgl32.Mat4: the view matrix
	ViewMatrix() mgl32.Mat4

	// ProjectionMatrix returns the current projection matrix.
	//
	// Returns:
	//   - mgl32.Mat4: the projection matrix
	ProjectionMatrix() mgl32.Mat4

	// ViewProjectionMatrix returns the current combined projection * view matrix.
	//
	// Returns:
	//   - mgl32.Mat4: the combined view-projection matrix
	ViewProjectionMatrix() mgl32.Mat4

	// Frustum returns the world-space view frustum planes.
	//
	// Returns:
	//   - common.Frustum: the frustum extracted from the view-projection matrix
	Frustum() common.Frustum

	// SliceCorners returns the eight world-space corners of the frustum slice
	// between two view distances. Corners 0..3 lie on the near distance.
	//
	// Parameters:
	//   - nearDist: distance of the slice's near face from the eye
	//   - farDist: distance of the slice's far face from the eye
	//
	// Returns:
	//   - [8]mgl32.Vec3: the slice corners
	SliceCorners(nearDist, farDist float32) [8]mgl32.Vec3

	// SetPosition moves the eye and recomputes matrices.
	//
	// Parameters:
	//   - p: the new eye position
	SetPosition(p mgl32.Vec3)

	// SetTarget changes the look-at point and recomputes matrices.
	//
	// Parameters:
	//   - t: the new target position
	SetTarget(t mgl32.Vec3)

	// SetFar sets the far clipping plane distance and recomputes matrices.
	//
	// Parameters:
	//   - far: far plane distance
	SetFar(far float32)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera with default perspective settings looking down -Z.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:       &sync.Mutex{},
		position: mgl32.Vec3{0, 0, 0},
		target:   mgl32.Vec3{0, 0, -1},
		up:       mgl32.Vec3{0, 1, 0},
		fov:      45.0 * (math.Pi / 180.0), // radians
		aspect:   1.0,
		near:     0.1,
		far:      100.0,
	}
	for _, option := range options {
		option(c)
	}
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Position() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) Forward() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.forward()
}

func (c *cameraImpl) Up() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) ViewMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) Frustum() common.Frustum {
	c.mu.Lock()
	defer c.mu.Unlock()
	return common.ExtractFrustumFromMatrix(c.viewProjectionMatrix)
}

func (c *cameraImpl) SliceCorners(nearDist, farDist float32) [8]mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()

	fwd := c.forward()
	right := fwd.Cross(c.up).Normalize()
	up := right.Cross(fwd)
	tanHalf := float32(math.Tan(float64(c.fov) / 2))

	var corners [8]mgl32.Vec3
	for i, d := range [2]float32{nearDist, farDist} {
		center := c.position.Add(fwd.Mul(d))
		h := up.Mul(d * tanHalf)
		w := right.Mul(d * tanHalf * c.aspect)
		corners[i*4+0] = center.Sub(w).Sub(h)
		corners[i*4+1] = center.Add(w).Sub(h)
		corners[i*4+2] = center.Add(w).Add(h)
		corners[i*4+3] = center.Sub(w).Add(h)
	}
	return corners
}

func (c *cameraImpl) SetPosition(p mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = p
	c.updateMatrices()
}

func (c *cameraImpl) SetTarget(t mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = t
	c.updateMatrices()
}

func (c *cameraImpl) SetFar(far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.far = far
	c.updateMatrices()
}

// forward returns the unit eye-to-target direction. Caller must hold the mutex.
func (c *cameraImpl) forward() mgl32.Vec3 {
	f := c.target.Sub(c.position)
	if f.LenSqr() == 0 {
		return mgl32.Vec3{0, 0, -1}
	}
	return f.Normalize()
}

// updateMatrices recalculates the view, projection and view-projection matrices.
// Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	c.viewMatrix = mgl32.LookAtV(c.position, c.position.Add(c.forward()), c.up)
	c.projectionMatrix = mgl32.Perspective(c.fov, c.aspect, c.near, c.far)
	c.viewProjectionMatrix = c.projectionMatrix.Mul4(c.viewMatrix)
}
