package light

// BakeType describes how a light contributes to baked lighting.
type BakeType int

const (
	// BakeRealtime lights contribute nothing to lightmaps.
	BakeRealtime BakeType = iota

	// BakeBaked lights are fully baked into lightmaps, including their shadows.
	BakeBaked

	// BakeMixed lights are real-time for direct lighting while some of their
	// contribution is baked, depending on the MixedLightingMode.
	BakeMixed
)

// MixedLightingMode selects what a mixed light bakes.
type MixedLightingMode int

const (
	// MixedIndirectOnly bakes indirect lighting only. No baked shadows exist.
	MixedIndirectOnly MixedLightingMode = iota

	// MixedShadowmask bakes shadow occlusion into a per-pixel shadow mask channel.
	MixedShadowmask

	// MixedSubtractive bakes direct lighting and shadows into the lightmap.
	MixedSubtractive
)

// MaxOcclusionMaskChannels is the number of channels in a baked shadow mask texture.
const MaxOcclusionMaskChannels = 4

// BakingOutput is the baked lighting state of a light, as produced by a lightmapper.
type BakingOutput struct {
	// BakeType is how the light participates in baking.
	BakeType BakeType
	// MixedLightingMode applies when BakeType is BakeMixed.
	MixedLightingMode MixedLightingMode
	// OcclusionMaskChannel is the shadow mask channel (0..3) assigned to the
	// light, or -1 when the light has none.
	OcclusionMaskChannel int
}

// IsShadowmask reports whether the light is a mixed light baked in shadowmask mode,
// regardless of whether a mask channel was assigned.
//
// Returns:
//   - bool: true for mixed lights in shadowmask mode
func (b BakingOutput) IsShadowmask() bool {
	return b.BakeType == BakeMixed && b.MixedLightingMode == MixedShadowmask
}

// UsesShadowMask reports whether the light's baked shadows live in a shadow mask channel.
//
// Returns:
//   - bool: true for mixed lights in shadowmask mode with a valid channel
func (b BakingOutput) UsesShadowMask() bool {
	return b.IsShadowmask() &&
		b.OcclusionMaskChannel >= 0 &&
		b.OcclusionMaskChannel < MaxOcclusionMaskChannels
}
