package light

import "testing"

func TestNewLightDefaults(t *testing.T) {
	l := NewLight(LightTypeSpot)

	if l.Shadows() != ShadowsNone {
		t.Errorf("Expected ShadowsNone by default, got %d", l.Shadows())
	}
	if l.Baking().OcclusionMaskChannel != -1 {
		t.Errorf("Expected no mask channel by default, got %d", l.Baking().OcclusionMaskChannel)
	}
	if l.Baking().UsesShadowMask() {
		t.Error("Default light should not use the shadow mask")
	}
	if !l.Enabled() {
		t.Error("Lights should be enabled by default")
	}
	if l.ShadowStrength() != DefaultShadowStrength || l.ShadowBias() != DefaultShadowBias {
		t.Errorf("Expected default strength and bias, got %f and %f", l.ShadowStrength(), l.ShadowBias())
	}
	if l.ShadowNormalBias() != DefaultShadowNormalBias || l.ShadowNearPlane() != DefaultShadowNearPlane {
		t.Errorf("Expected default normal bias and near plane, got %f and %f", l.ShadowNormalBias(), l.ShadowNearPlane())
	}
}

func TestWithShadowsClampsStrength(t *testing.T) {
	l := NewLight(LightTypePoint, WithShadows(ShadowsSoft, 3))
	if l.ShadowStrength() != 1 {
		t.Errorf("Expected strength clamped to 1, got %f", l.ShadowStrength())
	}

	l.SetShadowStrength(-2)
	if l.ShadowStrength() != 0 {
		t.Errorf("Expected strength clamped to 0, got %f", l.ShadowStrength())
	}
}

func TestWithDirectionNormalizes(t *testing.T) {
	l := NewLight(LightTypeDirectional, WithDirection(0, -4, 3))
	d := l.Direction()
	if d[1] != -0.8 || d[2] != 0.6 {
		t.Errorf("Expected (0, -0.8, 0.6), got %v", d)
	}
}

func TestShadowMaskBaking(t *testing.T) {
	tests := []struct {
		name       string
		baking     BakingOutput
		shadowmask bool
		want       bool
	}{
		{"realtime", BakingOutput{BakeType: BakeRealtime, OcclusionMaskChannel: 0}, false, false},
		{"mixed indirect", BakingOutput{BakeType: BakeMixed, MixedLightingMode: MixedIndirectOnly, OcclusionMaskChannel: 1}, false, false},
		{"mixed shadowmask", BakingOutput{BakeType: BakeMixed, MixedLightingMode: MixedShadowmask, OcclusionMaskChannel: 2}, true, true},
		{"mixed shadowmask without channel", BakingOutput{BakeType: BakeMixed, MixedLightingMode: MixedShadowmask, OcclusionMaskChannel: -1}, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLight(LightTypeDirectional, WithBaking(tt.baking))
			if got := l.Baking().IsShadowmask(); got != tt.shadowmask {
				t.Errorf("Expected IsShadowmask %v, got %v", tt.shadowmask, got)
			}
			if got := l.Baking().UsesShadowMask(); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}
