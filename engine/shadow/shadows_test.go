package shadow

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-atlas/engine/light"
	"github.com/go-gl/mathgl/mgl32"
)

func TestRenderWithoutSetup(t *testing.T) {
	s := NewShadows()
	if err := s.Render(); !errors.Is(err, ErrNotSetup) {
		t.Errorf("Expected ErrNotSetup, got %v", err)
	}
	if err := s.Cleanup(); !errors.Is(err, ErrNotSetup) {
		t.Errorf("Expected ErrNotSetup, got %v", err)
	}
}

func TestReserveWithoutSetup(t *testing.T) {
	s := NewShadows()

	d := s.ReserveDirectional(shadowedLight(light.LightTypeDirectional), 0)
	o := s.ReserveOther(shadowedLight(light.LightTypeSpot), 1)

	if d.Kind != ReservationNoShadow || o.Kind != ReservationNoShadow {
		t.Errorf("Expected NoShadow before Setup, got %v and %v", d.Kind, o.Kind)
	}
	if v := s.ReserveOtherShadows(shadowedLight(light.LightTypePoint), 2); v != (mgl32.Vec4{0, 0, 0, -1}) {
		t.Errorf("Expected (0, 0, 0, -1), got %v", v)
	}
	if st := s.State(); st.ReservedDirectionalCount != 0 || st.ReservedOtherSlotCount != 0 {
		t.Errorf("Expected nothing reserved, got %+v", st)
	}
}

func TestSetupTwiceResetsReservations(t *testing.T) {
	s := NewShadows()
	culling := newFakeCulling(0, 1)
	cmd := newFakeCommandBuffer()
	settings := NewSettings()

	for i := 0; i < 2; i++ {
		s.Setup(culling, cmd, settings)
		if st := s.State(); st.ReservedDirectionalCount != 0 || st.ReservedOtherSlotCount != 0 {
			t.Fatalf("Expected empty ledger after Setup, got %+v", st)
		}
		s.ReserveDirectionalShadows(shadowedLight(light.LightTypeDirectional), 0)
		s.ReserveOtherShadows(shadowedLight(light.LightTypePoint), 1)
	}

	s.Setup(culling, cmd, settings)
	if st := s.State(); st.ReservedDirectionalCount != 0 || st.ReservedOtherSlotCount != 0 || st.Pass != PassIdle {
		t.Errorf("Expected a fresh frame, got %+v", st)
	}
}

func TestRenderEmptyFrameUsesPlaceholder(t *testing.T) {
	s := NewShadows()
	cmd := newFakeCommandBuffer()
	props := s.Properties()

	s.Setup(newFakeCulling(), cmd, NewSettings())
	if err := s.Render(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if size := cmd.allocated[props.DirectionalAtlas]; size != 1 {
		t.Errorf("Expected 1x1 placeholder, got %d", size)
	}
	if _, ok := cmd.allocated[props.OtherAtlas]; ok {
		t.Error("Expected no other atlas to be allocated")
	}
	if cmd.textures[props.OtherAtlas] != props.DirectionalAtlas {
		t.Errorf("Expected other atlas bound to %q, got %q", props.DirectionalAtlas, cmd.textures[props.OtherAtlas])
	}
	if cmd.ints[props.CascadeCount] != 0 {
		t.Errorf("Expected cascade count 0, got %d", cmd.ints[props.CascadeCount])
	}
	if _, ok := cmd.vectors[props.DistanceFade]; !ok {
		t.Error("Expected distance fade to be published")
	}
	if len(cmd.draws) != 0 {
		t.Errorf("Expected no draws, got %d", len(cmd.draws))
	}

	if err := s.Cleanup(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(cmd.released) != 1 || cmd.released[0] != props.DirectionalAtlas {
		t.Errorf("Expected only the directional atlas released, got %v", cmd.released)
	}
}

func TestRenderFullFrame(t *testing.T) {
	s := NewShadows()
	culling := newFakeCulling(0, 1, 2, 3)
	cmd := newFakeCommandBuffer()
	settings := NewSettings(
		WithDirectionalAtlas(1024, FilterPCF3x3),
		WithCascades(4, 0.1, 0.25, 0.5, 0.2, CascadeBlendSoft),
		WithOtherAtlas(512, FilterPCF2x2),
	)
	props := s.Properties()

	s.Setup(culling, cmd, settings)
	s.ReserveDirectionalShadows(shadowedLight(light.LightTypeDirectional, light.WithShadowBias(0.3, 0.4)), 0)
	s.ReserveDirectionalShadows(shadowedLight(light.LightTypeDirectional), 1)
	s.ReserveOtherShadows(shadowedLight(light.LightTypePoint), 2)
	s.ReserveOtherShadows(shadowedLight(light.LightTypeSpot, light.WithShadowMask(0)), 3)

	if err := s.Render(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	st := s.State()
	if st.Pass != PassFinalized {
		t.Errorf("Expected Finalized, got %v", st.Pass)
	}
	if st.DrawCount != 8+7 || len(cmd.draws) != 15 {
		t.Errorf("Expected 15 draws, got %d recorded and %d counted", len(cmd.draws), st.DrawCount)
	}
	if culling.directionalCalls != 8 {
		t.Errorf("Expected shared cascades to be reused, got %d directional culling calls", culling.directionalCalls)
	}
	if culling.lastTileSize != 256 {
		t.Errorf("Expected tile size 256 for 8 cascades, got %d", culling.lastTileSize)
	}
	if culling.pointCalls != 6 || culling.spotCalls != 1 {
		t.Errorf("Expected 6 point faces and 1 spot, got %d and %d", culling.pointCalls, culling.spotCalls)
	}

	if cmd.allocated[props.DirectionalAtlas] != 1024 || cmd.allocated[props.OtherAtlas] != 512 {
		t.Errorf("Expected atlases 1024 and 512, got %v", cmd.allocated)
	}
	if v := cmd.vectors[props.AtlasSize]; v != (mgl32.Vec4{1024, 1.0 / 1024, 512, 1.0 / 512}) {
		t.Errorf("Expected atlas size vector, got %v", v)
	}
	if cmd.ints[props.CascadeCount] != 4 {
		t.Errorf("Expected cascade count 4, got %d", cmd.ints[props.CascadeCount])
	}

	if !cmd.keywords["_DIRECTIONAL_PCF3"] || cmd.keywords["_DIRECTIONAL_PCF5"] {
		t.Errorf("Expected only _DIRECTIONAL_PCF3 enabled, got %v", cmd.keywords)
	}
	if cmd.keywords["_OTHER_PCF3"] || cmd.keywords["_OTHER_PCF5"] || cmd.keywords["_OTHER_PCF7"] {
		t.Errorf("Expected no other filter keyword for PCF2x2, got %v", cmd.keywords)
	}
	if !cmd.keywords["_CASCADE_BLEND_SOFT"] || cmd.keywords["_CASCADE_BLEND_DITHER"] {
		t.Errorf("Expected soft cascade blending, got %v", cmd.keywords)
	}
	if !cmd.keywords["_SHADOW_MASK_ALWAYS"] || cmd.keywords["_SHADOW_MASK_DISTANCE"] {
		t.Errorf("Expected _SHADOW_MASK_ALWAYS, got %v", cmd.keywords)
	}

	for i, d := range cmd.draws[:8] {
		if d.Projection != ProjectionOrthographic {
			t.Errorf("Expected cascade draw %d to be orthographic", i)
		}
		if !mgl32.FloatEqual(d.Split.CascadeBlendCullingFactor, 0.6) {
			t.Errorf("Expected culling factor 0.6, got %v", d.Split.CascadeBlendCullingFactor)
		}
	}
	if cmd.draws[8].VisibleLightIndex != 2 || cmd.draws[14].VisibleLightIndex != 3 {
		t.Errorf("Expected point draws then the spot draw, got %+v", cmd.draws[8:])
	}

	// Every draw sets the light's slope bias and resets it afterwards.
	if len(cmd.biases) != 30 || cmd.biases[0] != [2]float32{0, 0.3} || cmd.biases[1] != [2]float32{0, 0} {
		t.Errorf("Expected bias set and reset per draw, got %v", cmd.biases[:2])
	}

	// The point light's cube faces are flipped back by negating the second view row.
	if row := cmd.views[8].Row(1); row != (mgl32.Vec4{0, -1, 0, 0}) {
		t.Errorf("Expected negated second view row, got %v", row)
	}
	if cmd.viewports[14] != (Viewport{X: 256, Y: 128, Width: 128, Height: 128}) {
		t.Errorf("Expected spot light in tile 6, got %+v", cmd.viewports[14])
	}
	if culling.lastFovBias <= 0 {
		t.Errorf("Expected a positive fov bias, got %v", culling.lastFovBias)
	}

	// Light 1, cascade 1 lands in tile 5: grid cell (1, 1) of a 4x4 split.
	matrices := cmd.matArrays[props.DirectionalMatrices]
	cascade1 := mgl32.Ortho(-20, 20, -20, 20, 0.1, 40)
	want := ToAtlasMatrix(cascade1.Mul4(mgl32.Ident4()), mgl32.Vec2{1, 1}, 0.25, false)
	if len(matrices) != MaxDirectionalShadows*MaxCascades || matrices[5] != want {
		t.Errorf("Expected directional matrix 5 %v, got %v", want, matrices)
	}

	spheres := cmd.vecArrays[props.CascadeCullingSpheres]
	if len(spheres) != MaxCascades || spheres[3].W() >= 40*40 {
		t.Errorf("Expected shrunken squared cascade radii, got %v", spheres)
	}
	tiles := cmd.vecArrays[props.OtherTiles]
	if tiles[6].Z() >= 0.25 {
		t.Errorf("Expected the spot tile scale to be inset below 0.25, got %v", tiles[6].Z())
	}

	if err := s.Cleanup(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(cmd.released) != 2 {
		t.Errorf("Expected both atlases released, got %v", cmd.released)
	}
}

func TestShadowmaskDistanceKeyword(t *testing.T) {
	s := NewShadows()
	cmd := newFakeCommandBuffer()
	s.Setup(newFakeCulling(), cmd, NewSettings(WithShadowmaskMode(ShadowmaskModeDistance)))

	s.ReserveOtherShadows(shadowedLight(light.LightTypeSpot, light.WithShadowMask(3)), 0)
	if err := s.Render(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cmd.keywords["_SHADOW_MASK_ALWAYS"] || !cmd.keywords["_SHADOW_MASK_DISTANCE"] {
		t.Errorf("Expected _SHADOW_MASK_DISTANCE only, got %v", cmd.keywords)
	}
	if st := s.State(); st.BakedOnlyCount != 1 {
		t.Errorf("Expected one baked-only light, got %d", st.BakedOnlyCount)
	}
	if g := s.Globals(); g.ShadowMaskMode != 1 {
		t.Errorf("Expected shadow mask mode 1 in globals, got %d", g.ShadowMaskMode)
	}
}

func TestRenderReturnsAllocationError(t *testing.T) {
	s := NewShadows()
	cmd := newFakeCommandBuffer()
	cmd.allocErr = errors.New("out of memory")

	s.Setup(newFakeCulling(0), cmd, NewSettings())
	s.ReserveDirectionalShadows(shadowedLight(light.LightTypeDirectional), 0)

	if err := s.Render(); !errors.Is(err, cmd.allocErr) {
		t.Errorf("Expected wrapped allocation error, got %v", err)
	}
}

func TestReversedZPlatform(t *testing.T) {
	s := NewShadows(WithPlatform(Platform{ReversedZ: true}))
	cmd := newFakeCommandBuffer()
	s.Setup(newFakeCulling(0), cmd, NewSettings(WithCascadeCount(1)))
	s.ReserveOtherShadows(shadowedLight(light.LightTypeSpot), 0)
	if err := s.Render(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	want := ToAtlasMatrix(newFakeCulling().spotProjection, mgl32.Vec2{}, 1, true)
	if got := s.Globals().OtherMatrices[0]; got != want {
		t.Errorf("Expected reversed-Z atlas matrix %v, got %v", want, got)
	}
}

func TestWithShaderPropertiesKeepsDefaults(t *testing.T) {
	s := NewShadows(WithShaderProperties(ShaderProperties{DirectionalAtlas: "dirAtlas"}))
	p := s.Properties()

	if p.DirectionalAtlas != "dirAtlas" {
		t.Errorf("Expected dirAtlas, got %q", p.DirectionalAtlas)
	}
	if p.OtherAtlas != DefaultShaderProperties().OtherAtlas {
		t.Errorf("Expected default other atlas name, got %q", p.OtherAtlas)
	}
	if p.ShadowMaskKeywords != DefaultShaderProperties().ShadowMaskKeywords {
		t.Errorf("Expected default shadow mask keywords, got %v", p.ShadowMaskKeywords)
	}
}
