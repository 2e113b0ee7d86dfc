package shadow

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// GPUShadowGlobalsSource is the canonical WGSL definition of the ShadowGlobals struct.
// Matches GPUShadowGlobals layout exactly (2480 bytes, uniform aligned).
//
//go:embed assets/shadow_globals.wgsl
var GPUShadowGlobalsSource string

// GPUShadowGlobals is the GPU-aligned form of everything the shadow system publishes
// for the shading stage. Matrices are column-major like mgl32.Mat4 and WGSL mat4x4.
type GPUShadowGlobals struct {
	DirectionalMatrices   [MaxDirectionalShadows * MaxCascades][16]float32 // offset    0
	OtherMatrices         [MaxOtherShadows][16]float32                     // offset 1024
	OtherTiles            [MaxOtherShadows][4]float32                      // offset 2048
	CascadeCullingSpheres [MaxCascades][4]float32                          // offset 2304
	CascadeData           [MaxCascades][4]float32                          // offset 2368
	AtlasSizes            [4]float32                                       // offset 2432: dir size, 1/dir size, other size, 1/other size
	DistanceFade          [4]float32                                       // offset 2448
	CascadeCount          int32                                            // offset 2464
	ShadowMaskMode        int32                                            // offset 2468: -1 none, 0 always, 1 distance
	_pad                  [2]int32                                         // offset 2472
}

// Size returns the size of the GPUShadowGlobals struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (2480)
func (g *GPUShadowGlobals) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the globals into a little-endian byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 2480-byte buffer ready for GPU upload
func (g *GPUShadowGlobals) Marshal() []byte {
	buf := make([]byte, 0, g.Size())
	putFloats := func(vals []float32) {
		for _, v := range vals {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
		}
	}

	for i := range g.DirectionalMatrices {
		putFloats(g.DirectionalMatrices[i][:])
	}
	for i := range g.OtherMatrices {
		putFloats(g.OtherMatrices[i][:])
	}
	for i := range g.OtherTiles {
		putFloats(g.OtherTiles[i][:])
	}
	for i := range g.CascadeCullingSpheres {
		putFloats(g.CascadeCullingSpheres[i][:])
	}
	for i := range g.CascadeData {
		putFloats(g.CascadeData[i][:])
	}
	putFloats(g.AtlasSizes[:])
	putFloats(g.DistanceFade[:])
	buf = binary.LittleEndian.AppendUint32(buf, uint32(g.CascadeCount))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(g.ShadowMaskMode))
	buf = binary.LittleEndian.AppendUint32(buf, 0) // padding
	buf = binary.LittleEndian.AppendUint32(buf, 0) // padding
	return buf
}

func (s *shadowsImpl) Globals() *GPUShadowGlobals {
	g := &GPUShadowGlobals{
		AtlasSizes:     s.atlasSizes,
		DistanceFade:   s.distanceFade,
		CascadeCount:   int32(s.cascadeCount),
		ShadowMaskMode: int32(s.shadowMaskIndex),
	}
	for i, m := range s.arrays.directionalMatrices {
		g.DirectionalMatrices[i] = m
	}
	for i, m := range s.arrays.otherMatrices {
		g.OtherMatrices[i] = m
	}
	copyVec4s(g.OtherTiles[:], s.arrays.otherTiles[:])
	copyVec4s(g.CascadeCullingSpheres[:], s.arrays.cascadeCullingSpheres[:])
	copyVec4s(g.CascadeData[:], s.arrays.cascadeData[:])
	return g
}

func copyVec4s(dst [][4]float32, src []mgl32.Vec4) {
	for i := range src {
		dst[i] = src[i]
	}
}
