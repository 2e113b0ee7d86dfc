package shadow

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-atlas/common"
	"github.com/go-gl/mathgl/mgl32"
)

func (s *shadowsImpl) renderDirectionalShadows() error {
	atlasSize := s.settings.Directional.AtlasSize
	s.atlasSizes[0] = float32(atlasSize)
	s.atlasSizes[1] = 1 / float32(atlasSize)

	if err := s.cmd.GetTemporaryShadowAtlas(s.properties.DirectionalAtlas, atlasSize); err != nil {
		return fmt.Errorf("allocate directional shadow atlas: %w", err)
	}
	s.cmd.SetRenderTarget(s.properties.DirectionalAtlas)
	s.cmd.SetGlobalFloat(s.properties.ShadowPancaking, 1)
	s.state = PassAtlasAllocated

	cascadeCount := s.settings.Directional.CascadeCount
	split, tileSize := Pack(s.ledger.directionalCount*cascadeCount, atlasSize)
	Logger().Debug("directional shadow atlas allocated",
		"size", atlasSize, "lights", s.ledger.directionalCount, "split", split, "tileSize", tileSize)

	s.computeSharedCascades(tileSize)

	s.state = PassPerLightLoop
	for i := 0; i < s.ledger.directionalCount; i++ {
		var cached []ShadowMatrices
		if i == 0 {
			cached = s.sharedCascades[:cascadeCount]
		}
		s.renderDirectionalLight(i, split, tileSize, cached)
	}

	s.cmd.SetGlobalVectorArray(s.properties.CascadeCullingSpheres, s.arrays.cascadeCullingSpheres[:])
	s.cmd.SetGlobalVectorArray(s.properties.CascadeData, s.arrays.cascadeData[:])
	s.cmd.SetGlobalMatrixArray(s.properties.DirectionalMatrices, s.arrays.directionalMatrices[:])
	s.setKeywords(s.properties.DirectionalFilterKeywords[:], int(s.settings.Directional.Filter)-1)
	s.setKeywords(s.properties.CascadeBlendKeywords[:], int(s.settings.Directional.CascadeBlend)-1)

	if err := s.cmd.Execute(); err != nil {
		return fmt.Errorf("execute directional shadows: %w", err)
	}
	return nil
}

// computeSharedCascades derives the cascade spheres shared by every directional light
// from the first reserved one. It runs once per frame before any directional draw.
func (s *shadowsImpl) computeSharedCascades(tileSize int) {
	first := s.ledger.directional[0]
	d := s.settings.Directional
	ratios := d.CascadeRatios()

	for i := 0; i < d.CascadeCount; i++ {
		m := s.culling.ComputeDirectionalShadowMatrices(
			first.visibleLightIndex, i, d.CascadeCount, ratios, tileSize, first.nearPlaneOffset,
		)
		s.sharedCascades[i] = m

		c := BuildCascade(m.Split.CullingSphere, float32(tileSize), d.Filter)
		s.arrays.cascadeCullingSpheres[i] = c.CullingSphere
		s.arrays.cascadeData[i] = c.Data
	}
}

// renderDirectionalLight draws every cascade of one directional light. cached holds
// precomputed culling output per cascade, or nil.
func (s *shadowsImpl) renderDirectionalLight(index, split, tileSize int, cached []ShadowMatrices) {
	lt := s.ledger.directional[index]
	d := s.settings.Directional
	ratios := d.CascadeRatios()
	tileOffset := index * d.CascadeCount
	tileScale := 1 / float32(split)
	cullingFactor := max(0, 0.8-d.CascadeFade)

	for i := 0; i < d.CascadeCount; i++ {
		var m ShadowMatrices
		if cached != nil {
			m = cached[i]
		} else {
			m = s.culling.ComputeDirectionalShadowMatrices(
				lt.visibleLightIndex, i, d.CascadeCount, ratios, tileSize, lt.nearPlaneOffset,
			)
		}
		m.Split.CascadeBlendCullingFactor = cullingFactor

		tileIndex := tileOffset + i
		viewport, offset := TileViewport(tileIndex, split, tileSize)
		s.cmd.SetViewport(viewport)
		s.arrays.directionalMatrices[tileIndex] = ToAtlasMatrix(
			m.Projection.Mul4(m.View), offset, tileScale, s.platform.ReversedZ,
		)

		s.drawShadows(m, lt.visibleLightIndex, lt.slopeScaleBias, ProjectionOrthographic)
	}
}

func (s *shadowsImpl) renderOtherShadows() error {
	atlasSize := s.settings.Other.AtlasSize
	s.atlasSizes[2] = float32(atlasSize)
	s.atlasSizes[3] = 1 / float32(atlasSize)

	if err := s.cmd.GetTemporaryShadowAtlas(s.properties.OtherAtlas, atlasSize); err != nil {
		return fmt.Errorf("allocate other shadow atlas: %w", err)
	}
	s.cmd.SetRenderTarget(s.properties.OtherAtlas)
	s.cmd.SetGlobalFloat(s.properties.ShadowPancaking, 0)
	s.state = PassAtlasAllocated

	split, tileSize := Pack(s.ledger.otherSlotCount, atlasSize)
	Logger().Debug("other shadow atlas allocated",
		"size", atlasSize, "slots", s.ledger.otherSlotCount, "split", split, "tileSize", tileSize)

	s.state = PassPerLightLoop
	for i := 0; i < s.ledger.otherSlotCount; {
		if s.ledger.other[i].isPoint {
			s.renderPointShadows(i, split, tileSize)
			i += PointLightSlots
		} else {
			s.renderSpotShadows(i, split, tileSize)
			i++
		}
	}

	s.cmd.SetGlobalMatrixArray(s.properties.OtherMatrices, s.arrays.otherMatrices[:])
	s.cmd.SetGlobalVectorArray(s.properties.OtherTiles, s.arrays.otherTiles[:])
	s.setKeywords(s.properties.OtherFilterKeywords[:], int(s.settings.Other.Filter)-1)

	if err := s.cmd.Execute(); err != nil {
		return fmt.Errorf("execute other shadows: %w", err)
	}
	return nil
}

func (s *shadowsImpl) renderSpotShadows(index, split, tileSize int) {
	lt := s.ledger.other[index]
	m := s.culling.ComputeSpotShadowMatrices(lt.visibleLightIndex)

	texelSize := 2 / (float32(tileSize) * m.Projection.At(0, 0))
	filterSize := texelSize * s.settings.Other.Filter.kernelScale()
	bias := lt.normalBias * filterSize * math.Sqrt2

	s.renderOtherTile(index, split, tileSize, bias, m)
	s.drawShadows(m, lt.visibleLightIndex, lt.slopeScaleBias, ProjectionPerspective)
}

func (s *shadowsImpl) renderPointShadows(index, split, tileSize int) {
	lt := s.ledger.other[index]

	// A cube face always spans 2 units at distance 1.
	texelSize := 2 / float32(tileSize)
	filterSize := texelSize * s.settings.Other.Filter.kernelScale()
	bias := lt.normalBias * filterSize * math.Sqrt2
	fovBias := mgl32.RadToDeg(float32(math.Atan(float64(1+bias+texelSize))))*2 - 90

	for i := 0; i < PointLightSlots; i++ {
		m := s.culling.ComputePointShadowMatrices(lt.visibleLightIndex, CubeFace(i), fovBias)
		// Faces render back faces, which flips the tile vertically. Undo the flip.
		common.NegateRow(&m.View, 1)

		s.renderOtherTile(index+i, split, tileSize, bias, m)
		s.drawShadows(m, lt.visibleLightIndex, lt.slopeScaleBias, ProjectionPerspective)
	}
}

// renderOtherTile sets the viewport of an other-atlas tile and stores its matrix and tile data.
func (s *shadowsImpl) renderOtherTile(tileIndex, split, tileSize int, bias float32, m ShadowMatrices) {
	viewport, offset := TileViewport(tileIndex, split, tileSize)
	tileScale := 1 / float32(split)
	s.cmd.SetViewport(viewport)

	tile := Tile{
		PixelOffset:      mgl32.Vec2{viewport.X, viewport.Y},
		NormalizedOffset: offset,
		Scale:            tileScale,
		Bias:             bias,
	}
	s.arrays.otherTiles[tileIndex] = tile.Data(s.atlasSizes.W())
	s.arrays.otherMatrices[tileIndex] = ToAtlasMatrix(
		m.Projection.Mul4(m.View), offset, tileScale, s.platform.ReversedZ,
	)
}

func (s *shadowsImpl) drawShadows(m ShadowMatrices, visibleLightIndex int, slopeScaleBias float32, projection ProjectionType) {
	s.cmd.SetViewProjectionMatrices(m.View, m.Projection)
	s.cmd.SetGlobalDepthBias(0, slopeScaleBias)
	s.cmd.DrawShadows(DrawShadowsSettings{
		VisibleLightIndex: visibleLightIndex,
		Projection:        projection,
		Split:             m.Split,
	})
	s.cmd.SetGlobalDepthBias(0, 0)
	s.draws++
}

// setKeywords enables the keyword at enabledIndex and disables the rest. A negative
// index disables all of them.
func (s *shadowsImpl) setKeywords(keywords []string, enabledIndex int) {
	for i, kw := range keywords {
		s.cmd.SetKeyword(kw, i == enabledIndex)
	}
}
