package light

// DefaultShadowStrength is the shadow strength of a new light. Lights still cast no
// shadows until WithShadows picks a mode.
const DefaultShadowStrength float32 = 1.0

// DefaultShadowBias is the slope-scale depth bias applied while rendering a light's
// casters into the atlas, to reduce shadow acne.
const DefaultShadowBias float32 = 0.05

// DefaultShadowNormalBias is the normal-offset bias the shading stage applies,
// scaled by the shadow texel size. Higher values push the sample point further
// along the surface normal at the cost of slight shadow detachment.
const DefaultShadowNormalBias float32 = 0.4

// DefaultShadowNearPlane is the near-plane offset used when fitting directional
// cascades, so casters slightly behind the cascade still render.
const DefaultShadowNearPlane float32 = 0.2
