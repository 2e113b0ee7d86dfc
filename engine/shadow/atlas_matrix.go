package shadow

import (
	"github.com/Carmen-Shannon/oxy-atlas/common"
	"github.com/go-gl/mathgl/mgl32"
)

// ToAtlasMatrix converts a world-to-clip matrix into one that maps world positions to
// atlas texture coordinates of a single tile. X and Y are remapped from [-1, 1] into the
// tile rectangle; depth is remapped to [0, 1] and is not tiled.
//
// Parameters:
//   - m: the projection * view matrix of the shadow draw
//   - offset: the tile's grid position from TileViewport
//   - scale: 1/split
//   - reversedZ: true when the platform stores near depth as 1
//
// Returns:
//   - mgl32.Mat4: the atlas-space matrix
func ToAtlasMatrix(m mgl32.Mat4, offset mgl32.Vec2, scale float32, reversedZ bool) mgl32.Mat4 {
	if reversedZ {
		common.NegateRow(&m, 2)
	}

	r0, r1, r2, r3 := m.Rows()

	m.SetRow(0, r0.Add(r3).Mul(0.5).Add(r3.Mul(offset.X())).Mul(scale))
	m.SetRow(1, r1.Add(r3).Mul(0.5).Add(r3.Mul(offset.Y())).Mul(scale))
	m.SetRow(2, r2.Add(r3).Mul(0.5))

	return m
}
