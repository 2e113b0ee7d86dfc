package renderer

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// DefaultCasterShaderSource is the depth-only caster shader used when no custom shader is
// registered. Its ShadowDraw struct matches gpuShadowDraw.
//
//go:embed assets/shadow_caster.wgsl
var DefaultCasterShaderSource string

// DefaultCasterEntryPoint is the vertex entry point of DefaultCasterShaderSource.
const DefaultCasterEntryPoint = "vs_main"

// drawSlotStride is the distance between per-draw uniform slots. Dynamic uniform offsets
// must be multiples of minUniformBufferOffsetAlignment, which is at most 256.
const drawSlotStride = 256

// depthRemap maps OpenGL clip depth [-w, w] to WebGPU clip depth [0, w].
var depthRemap = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// gpuShadowDraw is the per-draw uniform bound at group 0, binding 0 of the caster shader.
type gpuShadowDraw struct {
	ViewProjection [16]float32 // offset  0
	Pancaking      float32     // offset 64
	_pad           [3]float32  // offset 68
}

func (d *gpuShadowDraw) Size() int {
	return int(unsafe.Sizeof(*d))
}

func (d *gpuShadowDraw) Marshal() []byte {
	buf := make([]byte, 0, d.Size())
	for _, v := range d.ViewProjection {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
	}
	buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(d.Pancaking))
	for range d._pad {
		buf = binary.LittleEndian.AppendUint32(buf, 0)
	}
	return buf
}

// newShadowDraw combines view and projection into the clip transform for one draw.
// The projection is expected in OpenGL depth convention, as produced by mgl32.
func newShadowDraw(view, projection mgl32.Mat4, pancaking bool) gpuShadowDraw {
	d := gpuShadowDraw{ViewProjection: depthRemap.Mul4(projection).Mul4(view)}
	if pancaking {
		d.Pancaking = 1
	}
	return d
}
