package shadow

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-atlas/engine/light"
	"github.com/go-gl/mathgl/mgl32"
)

func shadowedLight(t light.LightType, opts ...light.LightBuilderOption) light.Light {
	return light.NewLight(t, append([]light.LightBuilderOption{light.WithShadows(light.ShadowsSoft, 0.8)}, opts...)...)
}

func TestFifthDirectionalLightIsBakedOnly(t *testing.T) {
	culling := newFakeCulling(0, 1, 2, 3, 4)
	var ledger Ledger

	for i := 0; i < MaxDirectionalShadows; i++ {
		r := ledger.ReserveDirectional(shadowedLight(light.LightTypeDirectional), i, culling, 4)
		if r.Kind != ReservationRendered {
			t.Fatalf("Expected light %d to be rendered, got %v", i, r.Kind)
		}
		if r.TileIndex != 4*i {
			t.Errorf("Expected first tile %d, got %d", 4*i, r.TileIndex)
		}
	}

	r := ledger.ReserveDirectional(shadowedLight(light.LightTypeDirectional), 4, culling, 4)
	if r.Kind != ReservationBakedOnly {
		t.Errorf("Expected BakedOnly, got %v", r.Kind)
	}
	if v := r.Vector(); v.X() > 0 {
		t.Errorf("Expected non-positive strength for the fifth light, got %v", v)
	}
	if ledger.DirectionalCount() != MaxDirectionalShadows {
		t.Errorf("Expected %d reserved lights, got %d", MaxDirectionalShadows, ledger.DirectionalCount())
	}
}

func TestDirectionalRenderedVector(t *testing.T) {
	var ledger Ledger
	culling := newFakeCulling(0, 1)
	lt := shadowedLight(light.LightTypeDirectional, light.WithShadowBias(0.1, 0.6))

	ledger.ReserveDirectional(shadowedLight(light.LightTypeDirectional), 0, culling, 2)
	v := ledger.ReserveDirectional(lt, 1, culling, 2).Vector()

	want := mgl32.Vec4{0.8, 2, 0.6, -1}
	if v != want {
		t.Errorf("Expected %v, got %v", want, v)
	}
}

func TestPointAndSpotSlots(t *testing.T) {
	culling := newFakeCulling(0, 1)
	var ledger Ledger

	point := ledger.ReserveOther(shadowedLight(light.LightTypePoint), 0, culling)
	spot := ledger.ReserveOther(shadowedLight(light.LightTypeSpot), 1, culling)

	if point.TileIndex != 0 || !point.IsPoint {
		t.Errorf("Expected point light at slot 0, got %+v", point)
	}
	if spot.TileIndex != 6 || spot.IsPoint {
		t.Errorf("Expected spot light at slot 6, got %+v", spot)
	}
	if ledger.OtherSlotCount() != 7 {
		t.Errorf("Expected 7 reserved slots, got %d", ledger.OtherSlotCount())
	}
	if v := point.Vector(); v != (mgl32.Vec4{0.8, 0, 1, -1}) {
		t.Errorf("Expected point vector (0.8, 0, 1, -1), got %v", v)
	}
	if v := spot.Vector(); v != (mgl32.Vec4{0.8, 6, 0, -1}) {
		t.Errorf("Expected spot vector (0.8, 6, 0, -1), got %v", v)
	}
}

func TestPointLightThatWouldFillTheAtlasIsBakedOnly(t *testing.T) {
	culling := newFakeCulling(0, 1, 2, 3, 4, 5, 6)
	var ledger Ledger

	ledger.ReserveOther(shadowedLight(light.LightTypePoint), 0, culling)
	for i := 1; i <= 4; i++ {
		ledger.ReserveOther(shadowedLight(light.LightTypeSpot), i, culling)
	}
	if ledger.OtherSlotCount() != 10 {
		t.Fatalf("Expected 10 reserved slots, got %d", ledger.OtherSlotCount())
	}

	r := ledger.ReserveOther(shadowedLight(light.LightTypePoint), 5, culling)
	if r.Kind != ReservationBakedOnly {
		t.Errorf("Expected BakedOnly at 10+6 slots, got %v", r.Kind)
	}
	if ledger.OtherSlotCount() != 10 {
		t.Errorf("Expected slot count to stay 10, got %d", ledger.OtherSlotCount())
	}

	if r := ledger.ReserveOther(shadowedLight(light.LightTypeSpot), 6, culling); r.Kind != ReservationRendered {
		t.Errorf("Expected a spot light to still fit, got %v", r.Kind)
	}
}

func TestMissingCasterBoundsIsBakedOnly(t *testing.T) {
	culling := newFakeCulling()
	var ledger Ledger

	dir := ledger.ReserveDirectional(shadowedLight(light.LightTypeDirectional), 0, culling, 4)
	spot := ledger.ReserveOther(shadowedLight(light.LightTypeSpot), 1, culling)

	for _, r := range []Reservation{dir, spot} {
		if r.Kind != ReservationBakedOnly {
			t.Errorf("Expected BakedOnly, got %v", r.Kind)
		}
		if v := r.Vector(); v != (mgl32.Vec4{-0.8, 0, 0, -1}) {
			t.Errorf("Expected (-0.8, 0, 0, -1), got %v", v)
		}
	}
	if ledger.DirectionalCount() != 0 || ledger.OtherSlotCount() != 0 {
		t.Errorf("Expected nothing reserved, got %d directional and %d slots", ledger.DirectionalCount(), ledger.OtherSlotCount())
	}
}

func TestLightWithoutShadowsIsNoShadow(t *testing.T) {
	culling := newFakeCulling(0, 1)
	var ledger Ledger

	tests := []light.Light{
		light.NewLight(light.LightTypeDirectional),
		light.NewLight(light.LightTypeSpot, light.WithShadows(light.ShadowsHard, 0)),
	}

	for i, lt := range tests {
		var r Reservation
		if lt.Type() == light.LightTypeDirectional {
			r = ledger.ReserveDirectional(lt, i, culling, 4)
		} else {
			r = ledger.ReserveOther(lt, i, culling)
		}
		if r.Kind != ReservationNoShadow {
			t.Errorf("Expected NoShadow, got %v", r.Kind)
		}
		if v := r.Vector(); v != (mgl32.Vec4{0, 0, 0, -1}) {
			t.Errorf("Expected (0, 0, 0, -1), got %v", v)
		}
	}
}

func TestShadowMaskChannel(t *testing.T) {
	culling := newFakeCulling(0)
	var ledger Ledger

	mixed := shadowedLight(light.LightTypeDirectional, light.WithShadowMask(2))
	r := ledger.ReserveDirectional(mixed, 0, culling, 4)

	if r.MaskChannel != 2 || r.Vector().W() != 2 {
		t.Errorf("Expected mask channel 2, got %d", r.MaskChannel)
	}
	if !ledger.ShadowMaskActive() {
		t.Error("Expected shadow mask to be active")
	}

	// Baked-only lights still sample the mask.
	baked := ledger.ReserveOther(shadowedLight(light.LightTypeSpot, light.WithShadowMask(1)), 7, culling)
	if baked.Kind != ReservationBakedOnly || baked.Vector().W() != 1 {
		t.Errorf("Expected baked-only with channel 1, got %+v", baked)
	}

	ledger.Reset()
	if ledger.ShadowMaskActive() || ledger.DirectionalCount() != 0 {
		t.Error("Expected Reset to clear the ledger")
	}
}

func TestShadowmaskWithoutChannelActivatesMask(t *testing.T) {
	culling := newFakeCulling(0)
	var ledger Ledger

	r := ledger.ReserveOther(shadowedLight(light.LightTypeSpot, light.WithShadowMask(-1)), 0, culling)

	if r.Kind != ReservationRendered {
		t.Fatalf("Expected Rendered, got %v", r.Kind)
	}
	if v := r.Vector(); v != (mgl32.Vec4{0.8, 0, 0, -1}) {
		t.Errorf("Expected (0.8, 0, 0, -1), got %v", v)
	}
	if !ledger.ShadowMaskActive() {
		t.Error("Expected shadow mask to be active for a shadowmask light without a channel")
	}
}
