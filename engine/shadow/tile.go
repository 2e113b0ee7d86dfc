package shadow

import "github.com/go-gl/mathgl/mgl32"

// Pack chooses the grid used to lay tileCount square tiles out in an atlas.
//
// Parameters:
//   - tileCount: the number of tiles the atlas must hold
//   - atlasSize: the atlas edge length in texels
//
// Returns:
//   - int: the split factor, tiles per atlas row (1, 2 or 4)
//   - int: the tile edge length in texels
func Pack(tileCount, atlasSize int) (split, tileSize int) {
	switch {
	case tileCount <= 1:
		split = 1
	case tileCount <= 4:
		split = 2
	default:
		split = 4
	}
	return split, atlasSize / split
}

// TileViewport returns the pixel rectangle of a tile and its grid position. Tiles are
// laid out row-major, so index split addresses the first tile of the second row.
//
// Parameters:
//   - index: the tile index
//   - split: the split factor returned by Pack
//   - tileSize: the tile edge length returned by Pack
//
// Returns:
//   - Viewport: the tile's pixel rectangle
//   - mgl32.Vec2: the grid position, not yet scaled by 1/split
func TileViewport(index, split, tileSize int) (Viewport, mgl32.Vec2) {
	offset := mgl32.Vec2{float32(index % split), float32(index / split)}
	size := float32(tileSize)
	return Viewport{
		X:      offset.X() * size,
		Y:      offset.Y() * size,
		Width:  size,
		Height: size,
	}, offset
}

// Tile is one packed shadow map inside the other-light atlas.
type Tile struct {
	PixelOffset      mgl32.Vec2
	NormalizedOffset mgl32.Vec2
	Scale            float32
	Bias             float32
}

// Data returns the shader-facing tile vector. The rectangle is inset by half a texel on
// every side so that normal-biased lookups never bleed into a neighbouring tile.
//
// Parameters:
//   - atlasTexel: the reciprocal of the atlas size
//
// Returns:
//   - mgl32.Vec4: offset.xy, inset scale and normal bias
func (t Tile) Data(atlasTexel float32) mgl32.Vec4 {
	border := atlasTexel * 0.5
	return mgl32.Vec4{
		t.NormalizedOffset.X()*t.Scale + border,
		t.NormalizedOffset.Y()*t.Scale + border,
		t.Scale - border - border,
		t.Bias,
	}
}
