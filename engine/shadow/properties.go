package shadow

import "github.com/Carmen-Shannon/oxy-atlas/common"

// ShaderProperties names every global value and keyword the shadow system publishes.
// The names must match the declarations in the consuming shaders.
type ShaderProperties struct {
	DirectionalAtlas      string
	DirectionalMatrices   string
	OtherAtlas            string
	OtherMatrices         string
	OtherTiles            string
	CascadeCount          string
	CascadeCullingSpheres string
	CascadeData           string
	AtlasSize             string
	DistanceFade          string
	ShadowPancaking       string

	DirectionalFilterKeywords [3]string
	OtherFilterKeywords       [3]string
	CascadeBlendKeywords      [2]string
	ShadowMaskKeywords        [2]string
}

// DefaultShaderProperties returns the property names used by the bundled shaders.
func DefaultShaderProperties() ShaderProperties {
	return ShaderProperties{
		DirectionalAtlas:      "_DirectionalShadowAtlas",
		DirectionalMatrices:   "_DirectionalShadowMatrices",
		OtherAtlas:            "_OtherShadowAtlas",
		OtherMatrices:         "_OtherShadowMatrices",
		OtherTiles:            "_OtherShadowTiles",
		CascadeCount:          "_CascadeCount",
		CascadeCullingSpheres: "_CascadeCullingSpheres",
		CascadeData:           "_CascadeData",
		AtlasSize:             "_ShadowAtlasSize",
		DistanceFade:          "_ShadowDistanceFade",
		ShadowPancaking:       "_ShadowPancaking",

		DirectionalFilterKeywords: [3]string{
			"_DIRECTIONAL_PCF3",
			"_DIRECTIONAL_PCF5",
			"_DIRECTIONAL_PCF7",
		},
		OtherFilterKeywords: [3]string{
			"_OTHER_PCF3",
			"_OTHER_PCF5",
			"_OTHER_PCF7",
		},
		CascadeBlendKeywords: [2]string{
			"_CASCADE_BLEND_SOFT",
			"_CASCADE_BLEND_DITHER",
		},
		ShadowMaskKeywords: [2]string{
			"_SHADOW_MASK_ALWAYS",
			"_SHADOW_MASK_DISTANCE",
		},
	}
}

// withDefaults fills every empty name in p from the bundled defaults, so callers can
// override a subset of names.
func (p ShaderProperties) withDefaults() ShaderProperties {
	d := DefaultShaderProperties()
	return ShaderProperties{
		DirectionalAtlas:      common.Coalesce(p.DirectionalAtlas, d.DirectionalAtlas),
		DirectionalMatrices:   common.Coalesce(p.DirectionalMatrices, d.DirectionalMatrices),
		OtherAtlas:            common.Coalesce(p.OtherAtlas, d.OtherAtlas),
		OtherMatrices:         common.Coalesce(p.OtherMatrices, d.OtherMatrices),
		OtherTiles:            common.Coalesce(p.OtherTiles, d.OtherTiles),
		CascadeCount:          common.Coalesce(p.CascadeCount, d.CascadeCount),
		CascadeCullingSpheres: common.Coalesce(p.CascadeCullingSpheres, d.CascadeCullingSpheres),
		CascadeData:           common.Coalesce(p.CascadeData, d.CascadeData),
		AtlasSize:             common.Coalesce(p.AtlasSize, d.AtlasSize),
		DistanceFade:          common.Coalesce(p.DistanceFade, d.DistanceFade),
		ShadowPancaking:       common.Coalesce(p.ShadowPancaking, d.ShadowPancaking),

		DirectionalFilterKeywords: common.Coalesce(p.DirectionalFilterKeywords, d.DirectionalFilterKeywords),
		OtherFilterKeywords:       common.Coalesce(p.OtherFilterKeywords, d.OtherFilterKeywords),
		CascadeBlendKeywords:      common.Coalesce(p.CascadeBlendKeywords, d.CascadeBlendKeywords),
		ShadowMaskKeywords:        common.Coalesce(p.ShadowMaskKeywords, d.ShadowMaskKeywords),
	}
}

// Platform describes properties of the graphics backend that change the math of the
// shadow system.
type Platform struct {
	// ReversedZ is true when clip-space depth runs from 1 at the near plane to 0 at the far plane.
	ReversedZ bool
}
