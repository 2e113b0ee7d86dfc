package shadow

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-atlas/engine/light"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
)

func TestGPUShadowGlobalsSize(t *testing.T) {
	var g GPUShadowGlobals
	if g.Size() != 2480 {
		t.Errorf("Expected 2480 bytes, got %d", g.Size())
	}
	if n := len(g.Marshal()); n != g.Size() {
		t.Errorf("Expected Marshal to produce %d bytes, got %d", g.Size(), n)
	}
}

func TestGPUShadowGlobalsMatchesWGSLLayout(t *testing.T) {
	ast, err := naga.Parse(GPUShadowGlobalsSource)
	if err != nil {
		t.Fatalf("Expected shadow globals WGSL to parse, got %v", err)
	}
	module, err := naga.Lower(ast)
	if err != nil {
		t.Fatalf("Expected shadow globals WGSL to lower, got %v", err)
	}

	var st *ir.StructType
	for _, typ := range module.Types {
		if s, ok := typ.Inner.(ir.StructType); ok && typ.Name == "ShadowGlobals" {
			st = &s
			break
		}
	}
	if st == nil {
		t.Fatal("Expected a ShadowGlobals struct")
	}

	var g GPUShadowGlobals
	if int(st.Span) != g.Size() {
		t.Errorf("Expected WGSL size %d, got %d", g.Size(), st.Span)
	}

	offsets := map[string]uint32{
		"directional_matrices":    0,
		"other_matrices":          1024,
		"other_tiles":             2048,
		"cascade_culling_spheres": 2304,
		"cascade_data":            2368,
		"atlas_sizes":             2432,
		"distance_fade":           2448,
		"cascade_count":           2464,
		"shadow_mask_mode":        2468,
	}
	for _, m := range st.Members {
		want, ok := offsets[m.Name]
		if ok && m.Offset != want {
			t.Errorf("Expected %s at offset %d, got %d", m.Name, want, m.Offset)
		}
	}
}

func TestGlobalsMarshalOrder(t *testing.T) {
	s := NewShadows()
	cmd := newFakeCommandBuffer()
	s.Setup(newFakeCulling(0), cmd, NewSettings(WithCascadeCount(2)))
	s.ReserveDirectionalShadows(shadowedLight(light.LightTypeDirectional), 0)
	if err := s.Render(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	g := s.Globals()
	buf := g.Marshal()

	floatAt := func(off int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
	}
	if got := floatAt(2432); got != 1024 {
		t.Errorf("Expected directional atlas size 1024 at 2432, got %v", got)
	}
	if got := int32(binary.LittleEndian.Uint32(buf[2464:])); got != 2 {
		t.Errorf("Expected cascade count 2 at 2464, got %d", got)
	}
	if got := int32(binary.LittleEndian.Uint32(buf[2468:])); got != -1 {
		t.Errorf("Expected shadow mask mode -1 at 2468, got %d", got)
	}

	m := mgl32.Mat4(g.DirectionalMatrices[1])
	if got := floatAt(64 + 15*4); got != m[15] {
		t.Errorf("Expected second cascade matrix at offset 64, got %v want %v", got, m[15])
	}
}
