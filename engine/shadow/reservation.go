package shadow

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-atlas/engine/light"
	"github.com/go-gl/mathgl/mgl32"
)

// ReservationKind tags the outcome of a shadow reservation.
type ReservationKind int

const (
	// ReservationNoShadow means the light does not cast shadows at all.
	ReservationNoShadow ReservationKind = iota
	// ReservationBakedOnly means realtime shadows were requested but could not be
	// rendered this frame; shading falls back to the baked shadow mask.
	ReservationBakedOnly
	// ReservationRendered means the light owns atlas tiles this frame.
	ReservationRendered
)

func (k ReservationKind) String() string {
	switch k {
	case ReservationNoShadow:
		return "NoShadow"
	case ReservationBakedOnly:
		return "BakedOnly"
	case ReservationRendered:
		return "Rendered"
	default:
		return fmt.Sprintf("ReservationKind(%d)", int(k))
	}
}

// Reservation is the outcome of reserving shadows for one visible light.
type Reservation struct {
	Kind ReservationKind
	// Strength is the light's shadow strength.
	Strength float32
	// TileIndex is the first atlas tile owned by the light. Only set when rendered.
	TileIndex int
	// NormalBias is the directional light's normal bias. Only set when rendered.
	NormalBias float32
	// IsPoint is true for a point light reserved in the other atlas.
	IsPoint bool
	// MaskChannel is the baked occlusion channel, or -1.
	MaskChannel int

	directional bool
}

// Vector encodes the reservation in the per-light vector read by the shading stage.
// A non-positive x component tells the shader to skip realtime shadow sampling.
//
// Returns:
//   - mgl32.Vec4: directional lights (strength, tile, normal bias, mask channel);
//     other lights (strength, tile, 1 for point lights, mask channel)
func (r Reservation) Vector() mgl32.Vec4 {
	mask := float32(r.MaskChannel)
	switch r.Kind {
	case ReservationRendered:
		third := r.NormalBias
		if !r.directional {
			third = 0
			if r.IsPoint {
				third = 1
			}
		}
		return mgl32.Vec4{r.Strength, float32(r.TileIndex), third, mask}
	case ReservationBakedOnly:
		return mgl32.Vec4{-r.Strength, 0, 0, mask}
	default:
		return mgl32.Vec4{0, 0, 0, -1}
	}
}

type directionalShadow struct {
	visibleLightIndex int
	slopeScaleBias    float32
	nearPlaneOffset   float32
}

type otherShadow struct {
	visibleLightIndex int
	slopeScaleBias    float32
	normalBias        float32
	isPoint           bool
}

// Ledger tracks the shadow slots claimed during one frame. Its arenas have fixed
// capacity; a full ledger degrades further reservations to baked-only.
type Ledger struct {
	directional      [MaxDirectionalShadows]directionalShadow
	other            [MaxOtherShadows]otherShadow
	directionalCount int
	otherSlotCount   int
	shadowMaskActive bool
}

// Reset forgets every reservation. The arenas are overwritten in place on the next frame.
func (l *Ledger) Reset() {
	l.directionalCount = 0
	l.otherSlotCount = 0
	l.shadowMaskActive = false
}

// DirectionalCount returns the number of directional lights that own atlas tiles.
func (l *Ledger) DirectionalCount() int {
	return l.directionalCount
}

// OtherSlotCount returns the number of other-atlas slots claimed so far.
func (l *Ledger) OtherSlotCount() int {
	return l.otherSlotCount
}

// ShadowMaskActive reports whether any shadowed light this frame uses a baked shadow mask.
func (l *Ledger) ShadowMaskActive() bool {
	return l.shadowMaskActive
}

// ReserveDirectional claims cascade tiles for a directional light.
//
// Parameters:
//   - lt: the light
//   - visibleIndex: the light's index in the culling system's visible light list
//   - culling: the culling results used to query caster bounds
//   - cascadeCount: cascades per directional light, used to compute the first tile
//
// Returns:
//   - Reservation: the outcome
func (l *Ledger) ReserveDirectional(lt light.Light, visibleIndex int, culling CullingResults, cascadeCount int) Reservation {
	if !castsShadows(lt) {
		return Reservation{Kind: ReservationNoShadow, MaskChannel: -1, directional: true}
	}

	baked := l.bakedOnly(lt)
	baked.directional = true

	if l.directionalCount >= MaxDirectionalShadows {
		Logger().Debug("directional shadow capacity reached, using baked shadows", "visibleLight", visibleIndex)
		return baked
	}
	if _, ok := culling.ShadowCasterBounds(visibleIndex); !ok {
		Logger().Debug("directional light has no shadow casters", "visibleLight", visibleIndex)
		return baked
	}

	l.directional[l.directionalCount] = directionalShadow{
		visibleLightIndex: visibleIndex,
		slopeScaleBias:    lt.ShadowBias(),
		nearPlaneOffset:   lt.ShadowNearPlane(),
	}
	r := Reservation{
		Kind:        ReservationRendered,
		Strength:    lt.ShadowStrength(),
		TileIndex:   cascadeCount * l.directionalCount,
		NormalBias:  lt.ShadowNormalBias(),
		MaskChannel: baked.MaskChannel,
		directional: true,
	}
	l.directionalCount++
	return r
}

// ReserveOther claims atlas slots for a spot light (one slot) or a point light (six slots).
//
// Parameters:
//   - lt: the light
//   - visibleIndex: the light's index in the culling system's visible light list
//   - culling: the culling results used to query caster bounds
//
// Returns:
//   - Reservation: the outcome
func (l *Ledger) ReserveOther(lt light.Light, visibleIndex int, culling CullingResults) Reservation {
	if !castsShadows(lt) {
		return Reservation{Kind: ReservationNoShadow, MaskChannel: -1}
	}

	baked := l.bakedOnly(lt)
	isPoint := lt.Type() == light.LightTypePoint
	baked.IsPoint = isPoint

	slots := 1
	if isPoint {
		slots = PointLightSlots
	}

	if l.otherSlotCount+slots >= MaxOtherShadows {
		Logger().Debug("other shadow capacity reached, using baked shadows",
			"visibleLight", visibleIndex, "reservedSlots", l.otherSlotCount, "slotsNeeded", slots)
		return baked
	}
	if _, ok := culling.ShadowCasterBounds(visibleIndex); !ok {
		Logger().Debug("light has no shadow casters", "visibleLight", visibleIndex)
		return baked
	}

	l.other[l.otherSlotCount] = otherShadow{
		visibleLightIndex: visibleIndex,
		slopeScaleBias:    lt.ShadowBias(),
		normalBias:        lt.ShadowNormalBias(),
		isPoint:           isPoint,
	}
	r := Reservation{
		Kind:        ReservationRendered,
		Strength:    lt.ShadowStrength(),
		TileIndex:   l.otherSlotCount,
		IsPoint:     isPoint,
		MaskChannel: baked.MaskChannel,
	}
	l.otherSlotCount += slots
	return r
}

// bakedOnly builds the fallback reservation for a shadowed light and records whether
// the frame needs the shadow mask. Any shadowmask light enables the mask; its channel
// is passed through as baked, -1 included.
func (l *Ledger) bakedOnly(lt light.Light) Reservation {
	mask := -1
	if b := lt.Baking(); b.IsShadowmask() {
		l.shadowMaskActive = true
		mask = b.OcclusionMaskChannel
	}
	return Reservation{
		Kind:        ReservationBakedOnly,
		Strength:    lt.ShadowStrength(),
		MaskChannel: mask,
	}
}

func castsShadows(lt light.Light) bool {
	return lt.Shadows() != light.ShadowsNone && lt.ShadowStrength() > 0
}
