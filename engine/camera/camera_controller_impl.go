package camera

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

type cameraControllerImpl struct {
	mu *sync.Mutex

	// position is derived from target and the spherical coordinates, except after a pan.
	position mgl32.Vec3
	target   mgl32.Vec3

	radius    float32
	azimuth   float32
	elevation float32

	minRadius    float32
	maxRadius    float32
	minElevation float32
	maxElevation float32

	orbitSpeed float32
	zoomSpeed  float32
	panSpeed   float32
}

var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a controller orbiting the origin.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu: &sync.Mutex{},

		radius:    30.0,
		elevation: float32(math.Pi / 6),

		minRadius:    1.0,
		maxRadius:    500.0,
		minElevation: -float32(math.Pi/2 - 0.1),
		maxElevation: float32(math.Pi/2 - 0.1),

		orbitSpeed: 0.03,
		zoomSpeed:  1.0,
		panSpeed:   1.0,
	}

	for _, option := range options {
		option(cc)
	}

	cc.radius = clampf(cc.radius, cc.minRadius, cc.maxRadius)
	cc.elevation = clampf(cc.elevation, cc.minElevation, cc.maxElevation)
	cc.updatePosition()
	return cc
}

// updatePosition places the eye on the orbit sphere. Caller must hold the mutex.
func (cc *cameraControllerImpl) updatePosition() {
	cosElev := float32(math.Cos(float64(cc.elevation)))
	sinElev := float32(math.Sin(float64(cc.elevation)))
	cosAzim := float32(math.Cos(float64(cc.azimuth)))
	sinAzim := float32(math.Sin(float64(cc.azimuth)))

	cc.position = cc.target.Add(mgl32.Vec3{
		cosElev * sinAzim,
		sinElev,
		cosElev * cosAzim,
	}.Mul(cc.radius))
}

// localAxes returns the eye's right, up and forward axes as LookAt builds them.
// All three are zero when the eye sits on the target. Caller must hold the mutex.
func (cc *cameraControllerImpl) localAxes() (right, up, forward mgl32.Vec3) {
	back := cc.position.Sub(cc.target)
	if back.LenSqr() < 1e-12 {
		return
	}
	back = back.Normalize()

	right = mgl32.Vec3{0, 1, 0}.Cross(back)
	if right.LenSqr() < 1e-12 {
		return mgl32.Vec3{}, mgl32.Vec3{}, mgl32.Vec3{}
	}
	right = right.Normalize()
	up = back.Cross(right)
	forward = back.Mul(-1)
	return
}

// pan moves eye and target by the same offset. Caller must hold the mutex.
func (cc *cameraControllerImpl) pan(axis mgl32.Vec3, delta float32) {
	offset := axis.Mul(delta * cc.panSpeed)
	cc.target = cc.target.Add(offset)
	cc.position = cc.position.Add(offset)
}

func clampf(v, lo, hi float32) float32 {
	return max(lo, min(hi, v))
}

func (cc *cameraControllerImpl) Position() mgl32.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.position
}

func (cc *cameraControllerImpl) Target() mgl32.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.target
}

func (cc *cameraControllerImpl) SetTarget(t mgl32.Vec3) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.target = t
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Zoom(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.radius = clampf(cc.radius-delta*cc.zoomSpeed, cc.minRadius, cc.maxRadius)
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Apply(cam Camera) {
	cc.mu.Lock()
	position, target := cc.position, cc.target
	cc.mu.Unlock()

	cam.SetTarget(target)
	cam.SetPosition(position)
}

func (cc *cameraControllerImpl) OrbitLeft() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.azimuth -= cc.orbitSpeed
	cc.updatePosition()
}

func (cc *cameraControllerImpl) OrbitRight() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.azimuth += cc.orbitSpeed
	cc.updatePosition()
}

func (cc *cameraControllerImpl) OrbitUp() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.elevation = min(cc.elevation+cc.orbitSpeed, cc.maxElevation)
	cc.updatePosition()
}

func (cc *cameraControllerImpl) OrbitDown() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.elevation = max(cc.elevation-cc.orbitSpeed, cc.minElevation)
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Radius() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.radius
}

func (cc *cameraControllerImpl) SetRadius(radius float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.radius = clampf(radius, cc.minRadius, cc.maxRadius)
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Azimuth() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.azimuth
}

func (cc *cameraControllerImpl) SetAzimuth(azimuth float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.azimuth = azimuth
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Elevation() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.elevation
}

func (cc *cameraControllerImpl) SetElevation(elevation float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.elevation = clampf(elevation, cc.minElevation, cc.maxElevation)
	cc.updatePosition()
}

func (cc *cameraControllerImpl) OrbitSpeed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.orbitSpeed
}

func (cc *cameraControllerImpl) ZoomSpeed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.zoomSpeed
}

func (cc *cameraControllerImpl) PanRight(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	right, _, _ := cc.localAxes()
	cc.pan(right, delta)
}

func (cc *cameraControllerImpl) PanUp(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	_, up, _ := cc.localAxes()
	cc.pan(up, delta)
}

func (cc *cameraControllerImpl) PanForward(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	_, _, forward := cc.localAxes()
	cc.pan(forward, delta)
}

func (cc *cameraControllerImpl) PanSpeed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.panSpeed
}
